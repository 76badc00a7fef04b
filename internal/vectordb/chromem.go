package vectordb

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
)

const collectionName = "regulations"

// ChromemIndex stores vectors in a chromem-go collection keyed by insertion
// position. chromem normalizes what it stores and ranks by cosine similarity,
// so the raw vectors are kept alongside and every candidate is re-scored by
// squared Euclidean distance, ties broken by position.
type ChromemIndex struct {
	dims       int
	embedFunc  chromem.EmbeddingFunc
	db         *chromem.DB
	collection *chromem.Collection
	raw        [][]float32
	initErr    error
}

// NewChromemIndex creates an empty in-memory chromem index. ef is only
// consulted if a document reaches chromem without an embedding.
func NewChromemIndex(dims int, ef chromem.EmbeddingFunc) *ChromemIndex {
	c := &ChromemIndex{dims: dims, embedFunc: ef}
	c.Reset()
	return c
}

func (c *ChromemIndex) Reset() {
	c.raw = nil
	c.db = chromem.NewDB()
	c.collection, c.initErr = c.db.CreateCollection(collectionName, nil, c.embedFunc)
}

func (c *ChromemIndex) Add(vectors [][]float32) error {
	if c.initErr != nil {
		return fmt.Errorf("create collection: %w", c.initErr)
	}
	if len(vectors) == 0 {
		return nil
	}
	dims := c.dims
	if dims <= 0 {
		dims = len(vectors[0])
	}
	for _, v := range vectors {
		if err := checkDims(dims, v); err != nil {
			return err
		}
	}
	c.dims = dims

	start := len(c.raw)
	docs := make([]chromem.Document, len(vectors))
	kept := make([][]float32, len(vectors))
	for i, v := range vectors {
		kept[i] = append([]float32(nil), v...)
		docs[i] = chromem.Document{
			ID:        strconv.Itoa(start + i),
			Embedding: append([]float32(nil), v...),
		}
	}
	if err := c.collection.AddDocuments(context.Background(), docs, 1); err != nil {
		return fmt.Errorf("chromem add: %w", err)
	}
	c.raw = append(c.raw, kept...)
	return nil
}

func (c *ChromemIndex) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if c.initErr != nil {
		return nil, fmt.Errorf("create collection: %w", c.initErr)
	}
	count := c.collection.Count()
	if k <= 0 || count == 0 {
		return []Hit{}, nil
	}
	if err := checkDims(c.dims, query); err != nil {
		return nil, err
	}

	// Ties at the cut-off are only ordered correctly if every candidate is ranked.
	results, err := c.collection.QueryEmbedding(ctx, query, count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		pos, err := strconv.Atoi(r.ID)
		if err != nil || pos < 0 || pos >= len(c.raw) {
			return nil, fmt.Errorf("chromem result id %q is not a stored position", r.ID)
		}
		hits = append(hits, Hit{Position: pos, Distance: squaredL2(query, c.raw[pos])})
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].Distance != hits[b].Distance {
			return hits[a].Distance < hits[b].Distance
		}
		return hits[a].Position < hits[b].Position
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func (c *ChromemIndex) Len() int {
	if c.collection == nil {
		return 0
	}
	return c.collection.Count()
}
