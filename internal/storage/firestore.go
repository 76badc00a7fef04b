package storage

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/ziadkadry99/flinsight/internal/compliance"
	"github.com/ziadkadry99/flinsight/internal/regulation"
)

// Firestore collection names.
const (
	collRegulations    = "regulations"
	collFlightAnalyses = "flight_analyses"
	collActionItems    = "action_items"
	collUpdates        = "faa_updates"
)

// FirestoreStore persists to Cloud Firestore, one document per entry keyed
// by id.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestore connects to project. credentialsFile may be empty to use
// application default credentials or the emulator.
func NewFirestore(ctx context.Context, project, credentialsFile string) (*FirestoreStore, error) {
	if project == "" {
		return nil, fmt.Errorf("firestore project is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func (f *FirestoreStore) Close() error {
	return f.client.Close()
}

func (f *FirestoreStore) UpsertRegulation(ctx context.Context, r regulation.Record) error {
	if _, err := f.client.Collection(collRegulations).Doc(r.ID).Set(ctx, r); err != nil {
		return fmt.Errorf("upserting regulation %s: %w", r.ID, err)
	}
	return nil
}

func (f *FirestoreStore) ListRegulations(ctx context.Context, category string) ([]regulation.Record, error) {
	q := f.client.Collection(collRegulations).Query
	if category != "" {
		q = q.Where("category", "==", category)
	}
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing regulations: %w", err)
	}
	records := make([]regulation.Record, 0, len(docs))
	for _, doc := range docs {
		var r regulation.Record
		if err := doc.DataTo(&r); err != nil {
			return nil, fmt.Errorf("decoding regulation %s: %w", doc.Ref.ID, err)
		}
		if r.ID == "" {
			r.ID = doc.Ref.ID
		}
		records = append(records, r)
	}
	return records, nil
}

func (f *FirestoreStore) SaveFlightAnalysis(ctx context.Context, fa compliance.FlightAnalysis) error {
	if _, err := f.client.Collection(collFlightAnalyses).Doc(fa.ID).Set(ctx, fa); err != nil {
		return fmt.Errorf("saving flight analysis: %w", err)
	}
	return nil
}

func (f *FirestoreStore) FlightAnalysis(ctx context.Context, id string) (*compliance.FlightAnalysis, error) {
	var fa compliance.FlightAnalysis
	q := f.client.Collection(collFlightAnalyses).Where("id", "==", id).Limit(1)
	if err := first(ctx, q, &fa); err != nil {
		return nil, fmt.Errorf("flight analysis %s: %w", id, err)
	}
	return &fa, nil
}

func (f *FirestoreStore) LatestFlightAnalysis(ctx context.Context) (*compliance.FlightAnalysis, error) {
	var fa compliance.FlightAnalysis
	q := f.client.Collection(collFlightAnalyses).OrderBy("timestamp", firestore.Desc).Limit(1)
	if err := first(ctx, q, &fa); err != nil {
		return nil, fmt.Errorf("latest flight analysis: %w", err)
	}
	return &fa, nil
}

func (f *FirestoreStore) SaveActionItem(ctx context.Context, item compliance.ActionItem) error {
	if _, err := f.client.Collection(collActionItems).Doc(item.ID).Set(ctx, item); err != nil {
		return fmt.Errorf("saving action item: %w", err)
	}
	return nil
}

func (f *FirestoreStore) ActionItems(ctx context.Context, flightID string) ([]compliance.ActionItem, error) {
	docs, err := f.client.Collection(collActionItems).Where("flight_id", "==", flightID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing action items: %w", err)
	}
	items := make([]compliance.ActionItem, 0, len(docs))
	for _, doc := range docs {
		var it compliance.ActionItem
		if err := doc.DataTo(&it); err != nil {
			return nil, fmt.Errorf("decoding action item %s: %w", doc.Ref.ID, err)
		}
		items = append(items, it)
	}
	return items, nil
}

func (f *FirestoreStore) Update(ctx context.Context, id string) (*compliance.Update, error) {
	var u compliance.Update
	q := f.client.Collection(collUpdates).Where("id", "==", id).Limit(1)
	if err := first(ctx, q, &u); err != nil {
		return nil, fmt.Errorf("update %s: %w", id, err)
	}
	return &u, nil
}

func (f *FirestoreStore) SaveUpdate(ctx context.Context, u compliance.Update) error {
	if _, err := f.client.Collection(collUpdates).Doc(u.ID).Set(ctx, u); err != nil {
		return fmt.Errorf("saving update %s: %w", u.ID, err)
	}
	return nil
}

// first decodes the first document of q into v, or returns ErrNotFound.
func first(ctx context.Context, q firestore.Query, v any) error {
	it := q.Documents(ctx)
	defer it.Stop()
	doc, err := it.Next()
	if errors.Is(err, iterator.Done) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return doc.DataTo(v)
}
