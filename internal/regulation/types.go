package regulation

import (
	"context"
	"strings"
)

// Category values of a Record. The eCFR scraper produces CategoryRegulation.
const (
	CategoryRegulation          = "regulation"
	CategoryAdvisoryCircular    = "advisory_circular"
	CategoryLegalInterpretation = "legal_interpretation"
)

// Record is one regulation section. ID is unique within a Snapshot.
// A record without AircraftTypes applies generally.
type Record struct {
	ID            string   `json:"id" firestore:"id"`
	Title         string   `json:"title" firestore:"title"`
	Content       string   `json:"content" firestore:"content"`
	Category      string   `json:"category" firestore:"category"`
	Date          string   `json:"date" firestore:"date"`
	AircraftTypes []string `json:"aircraft_types,omitempty" firestore:"aircraft_types,omitempty"`
}

// General reports whether the record carries no aircraft-type tags.
func (r Record) General() bool {
	return len(r.AircraftTypes) == 0
}

// AppliesTo reports whether the record is tagged with the given ICAO type.
func (r Record) AppliesTo(icao string) bool {
	for _, t := range r.AircraftTypes {
		if strings.EqualFold(t, icao) {
			return true
		}
	}
	return false
}

// EmbeddingText is the composite text indexed for semantic search.
func (r Record) EmbeddingText() string {
	return r.ID + " " + r.Title + " " + r.Content
}

// Source produces regulation records, typically by scraping a remote page.
type Source interface {
	Fetch(ctx context.Context) ([]Record, error)
}

// StaticSource serves a fixed record list.
type StaticSource []Record

func (s StaticSource) Fetch(ctx context.Context) ([]Record, error) {
	out := make([]Record, len(s))
	copy(out, s)
	return out, nil
}

// Persister writes records through to durable storage.
type Persister interface {
	UpsertRegulation(ctx context.Context, r Record) error
}
