// Package retrieval embeds regulation records, keeps them in a vector index
// and answers semantic queries against a consistent records/index pair.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ziadkadry99/flinsight/internal/embeddings"
	"github.com/ziadkadry99/flinsight/internal/logger"
	"github.com/ziadkadry99/flinsight/internal/metrics"
	"github.com/ziadkadry99/flinsight/internal/regulation"
	"github.com/ziadkadry99/flinsight/internal/vectordb"
)

// DefaultK is the number of records returned when the caller passes k <= 0.
const DefaultK = 5

const defaultBatchSize = 32

// ErrUnavailable means no index has been built or no embedder is configured.
var ErrUnavailable = errors.New("retrieval unavailable")

// Retrieval is the result of a query. Available is false when semantic
// search could not run; callers must then take a non-retrieval path rather
// than read the empty result as "no matches".
type Retrieval struct {
	Records    []regulation.Record
	Distances  []float32
	Generation uint64
	Available  bool
}

// IndexFactory creates an empty index for a new generation.
type IndexFactory func() (vectordb.Index, error)

// Options configures a Retriever.
type Options struct {
	DefaultK  int
	BatchSize int
	NewIndex  IndexFactory
}

// Progress is called after each embedded batch during a rebuild.
type Progress func(done, total int)

// generation pairs records with the index built from them. It is never
// mutated after being published.
type generation struct {
	id      uint64
	records []regulation.Record
	index   vectordb.Index
}

// Retriever answers semantic queries. Queries read one published generation;
// Rebuild builds the next one aside and swaps it in atomically.
type Retriever struct {
	embedder  embeddings.Embedder
	newIndex  IndexFactory
	defaultK  int
	batchSize int

	buildMu sync.Mutex
	current atomic.Pointer[generation]
}

// New creates a Retriever. embedder may be nil, in which case every query
// reports Available=false.
func New(embedder embeddings.Embedder, opts Options) *Retriever {
	r := &Retriever{
		embedder:  embedder,
		newIndex:  opts.NewIndex,
		defaultK:  opts.DefaultK,
		batchSize: opts.BatchSize,
	}
	if r.defaultK <= 0 {
		r.defaultK = DefaultK
	}
	if r.batchSize <= 0 {
		r.batchSize = defaultBatchSize
	}
	if r.newIndex == nil {
		dims := 0
		if embedder != nil {
			dims = embedder.Dimensions()
		}
		r.newIndex = func() (vectordb.Index, error) { return vectordb.NewFlat(dims), nil }
	}
	return r
}

// Rebuild embeds every record of snap and publishes the new records/index
// pair. On failure the previously published pair stays in place. Rebuilds
// are serialized.
func (r *Retriever) Rebuild(ctx context.Context, snap regulation.Snapshot, progress Progress) error {
	if r.embedder == nil {
		return fmt.Errorf("%w: no embedder configured", ErrUnavailable)
	}

	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	records := make([]regulation.Record, len(snap.Records))
	copy(records, snap.Records)

	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.EmbeddingText()
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += r.batchSize {
		end := start + r.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := r.embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return fmt.Errorf("embedding records %d-%d: %w", start, end, err)
		}
		if len(batch) != end-start {
			return fmt.Errorf("%w: got %d vectors for %d records", embeddings.ErrShape, len(batch), end-start)
		}
		vectors = append(vectors, batch...)
		if progress != nil {
			progress(end, len(texts))
		}
	}

	idx, err := r.newIndex()
	if err != nil {
		return fmt.Errorf("creating index: %w", err)
	}
	idx.Reset()
	if err := idx.Add(vectors); err != nil {
		return fmt.Errorf("adding vectors: %w", err)
	}
	if idx.Len() != len(records) {
		return fmt.Errorf("index holds %d vectors for %d records", idx.Len(), len(records))
	}

	r.current.Store(&generation{id: snap.Generation, records: records, index: idx})
	metrics.IndexDocuments.Set(float64(len(records)))
	metrics.IndexGeneration.Set(float64(snap.Generation))
	logger.Component("retrieval").Info().
		Int("records", len(records)).
		Uint64("generation", snap.Generation).
		Str("embedder", r.embedder.Name()).
		Msg("index rebuilt")
	return nil
}

// Search returns up to k records closest to query, closest first. k <= 0
// uses the default. Embedding or index failures yield Available=false.
func (r *Retriever) Search(ctx context.Context, query string, k int) Retrieval {
	if k <= 0 {
		k = r.defaultK
	}
	log := logger.Component("retrieval")

	gen := r.current.Load()
	if gen == nil || r.embedder == nil {
		metrics.RetrievalRequests.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		return Retrieval{}
	}

	if gen.index.Len() == 0 {
		metrics.RetrievalRequests.WithLabelValues(metrics.OutcomeEmpty).Inc()
		return Retrieval{Records: []regulation.Record{}, Distances: []float32{}, Generation: gen.id, Available: true}
	}

	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err == nil && len(vecs) != 1 {
		err = fmt.Errorf("%w: got %d vectors for one query", embeddings.ErrShape, len(vecs))
	}
	if err != nil {
		log.Warn().Err(err).Msg("query embedding failed")
		metrics.RetrievalRequests.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		return Retrieval{Generation: gen.id}
	}

	hits, err := gen.index.Search(ctx, vecs[0], k)
	if err != nil {
		log.Warn().Err(err).Msg("index search failed")
		metrics.RetrievalRequests.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		return Retrieval{Generation: gen.id}
	}

	out := Retrieval{
		Records:    make([]regulation.Record, 0, len(hits)),
		Distances:  make([]float32, 0, len(hits)),
		Generation: gen.id,
		Available:  true,
	}
	for _, h := range hits {
		if h.Position < 0 || h.Position >= len(gen.records) {
			log.Error().Int("position", h.Position).Uint64("generation", gen.id).Msg("hit outside generation")
			continue
		}
		out.Records = append(out.Records, gen.records[h.Position])
		out.Distances = append(out.Distances, h.Distance)
	}

	outcome := metrics.OutcomeHit
	if len(out.Records) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.RetrievalRequests.WithLabelValues(outcome).Inc()
	return out
}

// Ready reports whether a generation has been published.
func (r *Retriever) Ready() bool {
	return r.embedder != nil && r.current.Load() != nil
}

// Generation returns the published generation number, or 0.
func (r *Retriever) Generation() uint64 {
	if g := r.current.Load(); g != nil {
		return g.id
	}
	return 0
}

// Records returns the records of the published generation.
func (r *Retriever) Records() []regulation.Record {
	if g := r.current.Load(); g != nil {
		return g.records
	}
	return nil
}
