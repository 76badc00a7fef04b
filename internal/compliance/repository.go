package compliance

import (
	"context"

	"github.com/ziadkadry99/flinsight/internal/regulation"
)

// FlightRepository stores flight analyses. Lookups of a missing analysis
// return an error wrapping ErrNotFound.
type FlightRepository interface {
	SaveFlightAnalysis(ctx context.Context, fa FlightAnalysis) error
	FlightAnalysis(ctx context.Context, id string) (*FlightAnalysis, error)
	LatestFlightAnalysis(ctx context.Context) (*FlightAnalysis, error)
}

// ActionItemRepository stores generated action items.
type ActionItemRepository interface {
	SaveActionItem(ctx context.Context, item ActionItem) error
	ActionItems(ctx context.Context, flightID string) ([]ActionItem, error)
}

// UpdateRepository stores regulation updates keyed by regulation id.
type UpdateRepository interface {
	Update(ctx context.Context, id string) (*Update, error)
	SaveUpdate(ctx context.Context, u Update) error
}

// RegulationLister lists persisted regulations, optionally by category.
type RegulationLister interface {
	ListRegulations(ctx context.Context, category string) ([]regulation.Record, error)
}

// Documents exposes the in-memory Document Store.
type Documents interface {
	Snapshot() regulation.Snapshot
}

// WeatherReporter renders the current observation at a station. It never
// fails: missing data is rendered as N/A.
type WeatherReporter interface {
	Report(ctx context.Context, station string) string
}
