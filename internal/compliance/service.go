// Package compliance orchestrates retrieval-augmented prompting for flight
// analysis, action items, regulation chat and update review. Every model
// call has a deterministic fallback, so callers always receive an answer.
package compliance

import (
	"context"
	"time"

	"github.com/ziadkadry99/flinsight/internal/llm"
	"github.com/ziadkadry99/flinsight/internal/regulation"
	"github.com/ziadkadry99/flinsight/internal/retrieval"
)

const (
	// fallbackRecords is how many records the tag-based fallback selects.
	fallbackRecords = 3
	// DefaultLookbackDays bounds how old a regulation may be to count as an update.
	DefaultLookbackDays = 120
)

// Searcher finds regulations semantically related to a query.
type Searcher interface {
	Search(ctx context.Context, query string, k int) retrieval.Retrieval
}

// Deps are the collaborators of a Service. Nil models and repositories are
// allowed: the corresponding step falls back or is skipped.
type Deps struct {
	Retriever Searcher
	Documents Documents
	// Model answers schema-constrained requests; Reasoner answers free-text
	// ones. Reasoner defaults to Model.
	Model    llm.Provider
	Reasoner llm.Provider
	Weather  WeatherReporter

	Flights     FlightRepository
	ActionItems ActionItemRepository
	Updates     UpdateRepository
	Regulations RegulationLister

	Policy       regulation.RankingPolicy
	TopK         int
	LookbackDays int
	Now          func() time.Time
}

// Service is the prompt orchestrator.
type Service struct {
	retriever Searcher
	documents Documents
	model     llm.Provider
	reasoner  llm.Provider
	weather   WeatherReporter

	flights     FlightRepository
	actionItems ActionItemRepository
	updates     UpdateRepository
	regulations RegulationLister

	policy   regulation.RankingPolicy
	topK     int
	lookback time.Duration
	now      func() time.Time
}

// New creates a Service from its dependencies.
func New(d Deps) *Service {
	s := &Service{
		retriever:   d.Retriever,
		documents:   d.Documents,
		model:       d.Model,
		reasoner:    d.Reasoner,
		weather:     d.Weather,
		flights:     d.Flights,
		actionItems: d.ActionItems,
		updates:     d.Updates,
		regulations: d.Regulations,
		policy:      d.Policy,
		topK:        d.TopK,
		now:         d.Now,
	}
	if s.reasoner == nil {
		s.reasoner = s.model
	}
	if s.policy == nil {
		s.policy = regulation.NoopPolicy{}
	}
	if s.topK <= 0 {
		s.topK = retrieval.DefaultK
	}
	days := d.LookbackDays
	if days <= 0 {
		days = DefaultLookbackDays
	}
	s.lookback = time.Duration(days) * 24 * time.Hour
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Policy returns the ranking policy in use.
func (s *Service) Policy() regulation.RankingPolicy {
	return s.policy
}

// Search runs a semantic search with the service's default k when k <= 0.
func (s *Service) Search(ctx context.Context, query string, k int) retrieval.Retrieval {
	if k <= 0 {
		k = s.topK
	}
	if s.retriever == nil {
		return retrieval.Retrieval{}
	}
	return s.retriever.Search(ctx, query, k)
}

func (s *Service) documentRecords() []regulation.Record {
	if s.documents == nil {
		return nil
	}
	return s.documents.Snapshot().Records
}

func (s *Service) complete(ctx context.Context, p llm.Provider, req llm.CompletionRequest) (string, error) {
	if p == nil {
		return "", errNoModel
	}
	resp, err := p.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
