// Package storage implements the durable store behind regulations, flight
// analyses, action items and regulation updates.
package storage

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/flinsight/internal/compliance"
	"github.com/ziadkadry99/flinsight/internal/config"
	"github.com/ziadkadry99/flinsight/internal/regulation"
)

// ErrNotFound is returned when a requested entry does not exist.
var ErrNotFound = compliance.ErrNotFound

// Store is a complete durable store.
type Store interface {
	regulation.Persister
	compliance.RegulationLister
	compliance.FlightRepository
	compliance.ActionItemRepository
	compliance.UpdateRepository
	Close() error
}

// Open returns the store selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageSQLite:
		return OpenSQLite(cfg.Storage.SQLitePath)
	case config.StorageFirestore:
		return NewFirestore(ctx, cfg.Storage.FirestoreProject, cfg.Storage.FirestoreCredentials)
	case config.StorageNone, "":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}
