package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ziadkadry99/flinsight/internal/compliance"
	"github.com/ziadkadry99/flinsight/internal/db"
	"github.com/ziadkadry99/flinsight/internal/regulation"
)

// SQLiteStore persists to a local SQLite database.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLite wraps an open database.
func NewSQLite(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	return NewSQLite(database), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertRegulation inserts or replaces a regulation by id. Listing order is
// first-insertion order.
func (s *SQLiteStore) UpsertRegulation(ctx context.Context, r regulation.Record) error {
	types, err := marshalTypes(r.AircraftTypes)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO regulations (id, title, content, category, date, aircraft_types, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title, content = excluded.content, category = excluded.category,
		   date = excluded.date, aircraft_types = excluded.aircraft_types, updated_at = excluded.updated_at`,
		r.ID, r.Title, r.Content, r.Category, r.Date, types,
	)
	if err != nil {
		return fmt.Errorf("upserting regulation %s: %w", r.ID, err)
	}
	return nil
}

// ListRegulations returns stored regulations, filtered by category when set.
func (s *SQLiteStore) ListRegulations(ctx context.Context, category string) ([]regulation.Record, error) {
	query := `SELECT id, title, content, category, date, aircraft_types FROM regulations`
	args := []interface{}{}
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing regulations: %w", err)
	}
	defer rows.Close()

	records := []regulation.Record{}
	for rows.Next() {
		var r regulation.Record
		var types string
		if err := rows.Scan(&r.ID, &r.Title, &r.Content, &r.Category, &r.Date, &types); err != nil {
			return nil, fmt.Errorf("scanning regulation: %w", err)
		}
		if r.AircraftTypes, err = unmarshalTypes(types); err != nil {
			return nil, fmt.Errorf("regulation %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SaveFlightAnalysis stores a flight analysis.
func (s *SQLiteStore) SaveFlightAnalysis(ctx context.Context, fa compliance.FlightAnalysis) error {
	analysis, err := json.Marshal(fa.Analysis)
	if err != nil {
		return fmt.Errorf("marshaling analysis: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO flight_analyses (id, departure, arrival, aircraft, date, passengers, analysis, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		fa.ID, fa.Departure, fa.Arrival, fa.Aircraft, fa.Date, fa.Passengers, string(analysis), fa.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting flight analysis: %w", err)
	}
	return nil
}

const flightColumns = `id, departure, arrival, aircraft, date, passengers, analysis, timestamp`

// FlightAnalysis returns the analysis with the given id.
func (s *SQLiteStore) FlightAnalysis(ctx context.Context, id string) (*compliance.FlightAnalysis, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+flightColumns+` FROM flight_analyses WHERE id = ?`, id)
	return scanFlight(row)
}

// LatestFlightAnalysis returns the most recently stored analysis.
func (s *SQLiteStore) LatestFlightAnalysis(ctx context.Context) (*compliance.FlightAnalysis, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+flightColumns+` FROM flight_analyses ORDER BY timestamp DESC LIMIT 1`)
	return scanFlight(row)
}

func scanFlight(row *sql.Row) (*compliance.FlightAnalysis, error) {
	var fa compliance.FlightAnalysis
	var analysis string
	err := row.Scan(&fa.ID, &fa.Departure, &fa.Arrival, &fa.Aircraft, &fa.Date, &fa.Passengers, &analysis, &fa.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("flight analysis: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting flight analysis: %w", err)
	}
	if err := json.Unmarshal([]byte(analysis), &fa.Analysis); err != nil {
		return nil, fmt.Errorf("decoding analysis of %s: %w", fa.ID, err)
	}
	return &fa, nil
}

// SaveActionItem stores an action item.
func (s *SQLiteStore) SaveActionItem(ctx context.Context, item compliance.ActionItem) error {
	status := item.Status
	if status == "" {
		status = compliance.StatusPending
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO action_items (id, flight_id, title, description, due_date, responsible_role, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.FlightID, item.Title, item.Description, item.DueDate, item.ResponsibleRole, status, item.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting action item: %w", err)
	}
	return nil
}

// ActionItems returns a flight's action items in creation order.
func (s *SQLiteStore) ActionItems(ctx context.Context, flightID string) ([]compliance.ActionItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, flight_id, title, description, due_date, responsible_role, status, created_at
		 FROM action_items WHERE flight_id = ? ORDER BY created_at, rowid`, flightID)
	if err != nil {
		return nil, fmt.Errorf("listing action items: %w", err)
	}
	defer rows.Close()

	var items []compliance.ActionItem
	for rows.Next() {
		var it compliance.ActionItem
		if err := rows.Scan(&it.ID, &it.FlightID, &it.Title, &it.Description, &it.DueDate, &it.ResponsibleRole, &it.Status, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning action item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Update returns the stored update for a regulation id.
func (s *SQLiteStore) Update(ctx context.Context, id string) (*compliance.Update, error) {
	var u compliance.Update
	var types string
	var processed bool
	var applicability sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, category, date, aircraft_types, processed, applicability, timestamp
		 FROM faa_updates WHERE id = ?`, id,
	).Scan(&u.ID, &u.Title, &u.Content, &u.Category, &u.Date, &types, &processed, &applicability, &u.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting update: %w", err)
	}
	if u.AircraftTypes, err = unmarshalTypes(types); err != nil {
		return nil, fmt.Errorf("update %s: %w", id, err)
	}
	u.Processed = processed
	if applicability.Valid {
		u.AIAnalysis = &compliance.UpdateAnalysis{Applicability: applicability.String}
	}
	return &u, nil
}

// SaveUpdate inserts or replaces an update by regulation id.
func (s *SQLiteStore) SaveUpdate(ctx context.Context, u compliance.Update) error {
	types, err := marshalTypes(u.AircraftTypes)
	if err != nil {
		return err
	}
	var applicability sql.NullString
	if u.AIAnalysis != nil {
		applicability = sql.NullString{String: u.AIAnalysis.Applicability, Valid: true}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO faa_updates (id, title, content, category, date, aircraft_types, processed, applicability, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title, content = excluded.content, category = excluded.category,
		   date = excluded.date, aircraft_types = excluded.aircraft_types, processed = excluded.processed,
		   applicability = excluded.applicability, timestamp = excluded.timestamp`,
		u.ID, u.Title, u.Content, u.Category, u.Date, types, u.Processed, applicability, u.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving update %s: %w", u.ID, err)
	}
	return nil
}

func marshalTypes(types []string) (string, error) {
	if types == nil {
		types = []string{}
	}
	b, err := json.Marshal(types)
	if err != nil {
		return "", fmt.Errorf("marshaling aircraft types: %w", err)
	}
	return string(b), nil
}

func unmarshalTypes(s string) ([]string, error) {
	var types []string
	if err := json.Unmarshal([]byte(s), &types); err != nil {
		return nil, fmt.Errorf("decoding aircraft types: %w", err)
	}
	if len(types) == 0 {
		return nil, nil
	}
	return types, nil
}
