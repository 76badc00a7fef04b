package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/ziadkadry99/flinsight/internal/compliance"
	"github.com/ziadkadry99/flinsight/internal/regulation"
)

// MemoryStore keeps everything in process memory. It backs the "none"
// storage backend.
type MemoryStore struct {
	mu      sync.RWMutex
	regs    []regulation.Record
	regPos  map[string]int
	flights []compliance.FlightAnalysis
	items   []compliance.ActionItem
	updates map[string]compliance.Update
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		regPos:  map[string]int{},
		updates: map[string]compliance.Update{},
	}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) UpsertRegulation(_ context.Context, r regulation.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.regPos[r.ID]; ok {
		m.regs[i] = r
		return nil
	}
	m.regPos[r.ID] = len(m.regs)
	m.regs = append(m.regs, r)
	return nil
}

func (m *MemoryStore) ListRegulations(_ context.Context, category string) ([]regulation.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []regulation.Record{}
	for _, r := range m.regs {
		if category == "" || r.Category == category {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryStore) SaveFlightAnalysis(_ context.Context, fa compliance.FlightAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flights = append(m.flights, fa)
	return nil
}

func (m *MemoryStore) FlightAnalysis(_ context.Context, id string) (*compliance.FlightAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.flights {
		if m.flights[i].ID == id {
			fa := m.flights[i]
			return &fa, nil
		}
	}
	return nil, fmt.Errorf("flight analysis %s: %w", id, ErrNotFound)
}

func (m *MemoryStore) LatestFlightAnalysis(_ context.Context) (*compliance.FlightAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.flights) == 0 {
		return nil, fmt.Errorf("flight analysis: %w", ErrNotFound)
	}
	latest := m.flights[0]
	for _, fa := range m.flights[1:] {
		if !fa.Timestamp.Before(latest.Timestamp) {
			latest = fa
		}
	}
	return &latest, nil
}

func (m *MemoryStore) SaveActionItem(_ context.Context, item compliance.ActionItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
	return nil
}

func (m *MemoryStore) ActionItems(_ context.Context, flightID string) ([]compliance.ActionItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []compliance.ActionItem
	for _, it := range m.items {
		if it.FlightID == flightID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *MemoryStore) Update(_ context.Context, id string) (*compliance.Update, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.updates[id]
	if !ok {
		return nil, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	return &u, nil
}

func (m *MemoryStore) SaveUpdate(_ context.Context, u compliance.Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates[u.ID] = u
	return nil
}
