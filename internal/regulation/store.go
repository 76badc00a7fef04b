package regulation

import (
	"context"
	"sync"

	"github.com/ziadkadry99/flinsight/internal/logger"
)

// Snapshot is an immutable, position-addressed view of the records of one
// load. Generation increases with every Load.
type Snapshot struct {
	Generation uint64
	Records    []Record
}

// Len returns the number of records.
func (s Snapshot) Len() int { return len(s.Records) }

// Get returns the record at position pos.
func (s Snapshot) Get(pos int) (Record, bool) {
	if pos < 0 || pos >= len(s.Records) {
		return Record{}, false
	}
	return s.Records[pos], true
}

// Store holds the authoritative ordered regulation list.
type Store struct {
	mu        sync.RWMutex
	snap      Snapshot
	persister Persister
}

// NewStore creates an empty store. persister may be nil.
func NewStore(persister Persister) *Store {
	return &Store{persister: persister}
}

// Load replaces the records with the ones produced by src and returns the
// new snapshot. A failing source yields an empty snapshot on first load and
// keeps the current one afterwards. Duplicate IDs keep the first occurrence.
// Persistence failures are logged and do not affect the result.
func (s *Store) Load(ctx context.Context, src Source) Snapshot {
	log := logger.Component("regulation")

	fetched, err := src.Fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("regulation source unavailable")
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.snap.Generation == 0 {
			s.snap = Snapshot{Generation: 1}
		}
		return s.snap
	}

	records := make([]Record, 0, len(fetched))
	seen := make(map[string]bool, len(fetched))
	for _, r := range fetched {
		if r.ID == "" {
			log.Warn().Str("title", r.Title).Msg("skipping regulation without id")
			continue
		}
		if seen[r.ID] {
			log.Warn().Str("id", r.ID).Msg("skipping duplicate regulation id")
			continue
		}
		seen[r.ID] = true
		r.Date = CanonicalDate(r.Date)
		records = append(records, r)
	}

	if s.persister != nil {
		for _, r := range records {
			if err := s.persister.UpsertRegulation(ctx, r); err != nil {
				log.Warn().Err(err).Str("id", r.ID).Msg("persisting regulation")
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{Generation: s.snap.Generation + 1, Records: records}
	log.Info().Int("records", len(records)).Uint64("generation", s.snap.Generation).Msg("regulations loaded")
	return s.snap
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Get returns the record at pos in the current snapshot. Positions are only
// meaningful against the snapshot they were computed from; prefer
// Snapshot().Get when holding a search result.
func (s *Store) Get(pos int) (Record, bool) {
	return s.Snapshot().Get(pos)
}
