package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/flinsight/internal/compliance"
	"github.com/ziadkadry99/flinsight/internal/config"
	"github.com/ziadkadry99/flinsight/internal/db"
	"github.com/ziadkadry99/flinsight/internal/regulation"
)

func newSQLite(t *testing.T) Store {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	s := NewSQLite(database)
	t.Cleanup(func() { s.Close() })
	return s
}

func backends(t *testing.T) map[string]Store {
	stores := map[string]Store{
		"sqlite": newSQLite(t),
		"memory": NewMemory(),
	}
	if os.Getenv("FIRESTORE_EMULATOR_HOST") != "" {
		fs, err := NewFirestore(context.Background(), "flinsight-test", "")
		require.NoError(t, err)
		t.Cleanup(func() { fs.Close() })
		stores["firestore"] = fs
	}
	return stores
}

func TestRegulations(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.UpsertRegulation(ctx, regulation.Record{ID: "135.89", Title: "Oxygen", Category: regulation.CategoryRegulation, Date: "2025-03-10"}))
			require.NoError(t, s.UpsertRegulation(ctx, regulation.Record{ID: "AC 135-12B", Title: "Masks", Category: regulation.CategoryAdvisoryCircular, Date: regulation.UnknownDate, AircraftTypes: []string{"GLF5"}}))
			require.NoError(t, s.UpsertRegulation(ctx, regulation.Record{ID: "135.89", Title: "Oxygen (amended)", Category: regulation.CategoryRegulation, Date: "2025-03-11"}))

			all, err := s.ListRegulations(ctx, "")
			require.NoError(t, err)
			require.Len(t, all, 2)

			byID := map[string]regulation.Record{}
			for _, r := range all {
				byID[r.ID] = r
			}
			assert.Equal(t, "Oxygen (amended)", byID["135.89"].Title)
			assert.Nil(t, byID["135.89"].AircraftTypes)
			assert.Equal(t, []string{"GLF5"}, byID["AC 135-12B"].AircraftTypes)

			acs, err := s.ListRegulations(ctx, regulation.CategoryAdvisoryCircular)
			require.NoError(t, err)
			require.Len(t, acs, 1)
			assert.Equal(t, "AC 135-12B", acs[0].ID)
		})
	}
}

func TestFlightAnalyses(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.LatestFlightAnalysis(ctx)
			require.ErrorIs(t, err, ErrNotFound)

			base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
			analysis := compliance.Analysis{
				ApplicableRegulations: []string{"135.89: Oxygen"},
				ComplianceRisks:       []string{"hypoxia"},
				RequiredActions:       []string{"check masks"},
			}
			older := compliance.FlightAnalysis{ID: "f1", FlightRequest: compliance.FlightRequest{Departure: "KJFK", Arrival: "EGLL", Aircraft: "Gulfstream 550", Passengers: 12}, Analysis: analysis, Timestamp: base}
			newer := compliance.FlightAnalysis{ID: "f2", FlightRequest: compliance.FlightRequest{Departure: "KBOS", Arrival: "KLAX", Aircraft: "PC-12"}, Analysis: analysis, Timestamp: base.Add(time.Minute)}
			require.NoError(t, s.SaveFlightAnalysis(ctx, newer))
			require.NoError(t, s.SaveFlightAnalysis(ctx, older))

			latest, err := s.LatestFlightAnalysis(ctx)
			require.NoError(t, err)
			assert.Equal(t, "f2", latest.ID)

			got, err := s.FlightAnalysis(ctx, "f1")
			require.NoError(t, err)
			assert.Equal(t, "KJFK", got.Departure)
			assert.Equal(t, 12, got.Passengers)
			assert.Equal(t, analysis, got.Analysis)
			assert.True(t, base.Equal(got.Timestamp))

			_, err = s.FlightAnalysis(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestActionItems(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().UTC()
			for i, title := range []string{"Inspect oxygen", "Review MEL"} {
				require.NoError(t, s.SaveActionItem(ctx, compliance.ActionItem{
					ID: title, FlightID: "f1", Title: title, Description: "d", DueDate: "1 day before departure",
					ResponsibleRole: "Pilot", Status: compliance.StatusPending, CreatedAt: now.Add(time.Duration(i) * time.Second),
				}))
			}
			require.NoError(t, s.SaveActionItem(ctx, compliance.ActionItem{ID: "other", FlightID: "f2", Title: "x", CreatedAt: now}))

			items, err := s.ActionItems(ctx, "f1")
			require.NoError(t, err)
			require.Len(t, items, 2)
			assert.Equal(t, "Inspect oxygen", items[0].Title)
			assert.Equal(t, compliance.StatusPending, items[1].Status)
		})
	}
}

func TestUpdates(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.Update(ctx, "135.89")
			require.ErrorIs(t, err, ErrNotFound)

			u := compliance.Update{
				Record:    regulation.Record{ID: "135.89", Title: "Oxygen", Date: "2025-05-01", AircraftTypes: []string{"GLF5"}},
				Timestamp: time.Now().UTC(),
			}
			require.NoError(t, s.SaveUpdate(ctx, u))

			got, err := s.Update(ctx, "135.89")
			require.NoError(t, err)
			assert.False(t, got.Processed)
			assert.Nil(t, got.AIAnalysis)

			u.Processed = true
			u.AIAnalysis = &compliance.UpdateAnalysis{Applicability: "Part 135 operators of GLF5"}
			require.NoError(t, s.SaveUpdate(ctx, u))

			got, err = s.Update(ctx, "135.89")
			require.NoError(t, err)
			assert.True(t, got.Processed)
			require.NotNil(t, got.AIAnalysis)
			assert.Equal(t, "Part 135 operators of GLF5", got.AIAnalysis.Applicability)
			assert.Equal(t, []string{"GLF5"}, got.AircraftTypes)
		})
	}
}

func TestOpenBackends(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = config.StorageNone
	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	cfg.Storage.Backend = config.StorageSQLite
	cfg.Storage.SQLitePath = t.TempDir() + "/flinsight.db"
	s, err = Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	cfg.Storage.Backend = "mongo"
	_, err = Open(context.Background(), cfg)
	assert.Error(t, err)
}

func TestStoreSatisfiesCompliance(t *testing.T) {
	var s Store = NewMemory()
	svc := compliance.New(compliance.Deps{Flights: s, ActionItems: s, Updates: s, Regulations: s})
	out, err := svc.GenerateActionItems(context.Background(), "f1")
	require.NoError(t, err)

	items, err := s.ActionItems(context.Background(), "f1")
	require.NoError(t, err)
	assert.Len(t, items, len(out.Value))
}
