package compliance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ziadkadry99/flinsight/internal/llm"
	"github.com/ziadkadry99/flinsight/internal/logger"
	"github.com/ziadkadry99/flinsight/internal/metrics"
	"github.com/ziadkadry99/flinsight/internal/regulation"
)

// AnalyzeFlight identifies the regulations that apply to a flight, the
// risks they raise, and the actions they require. Only invalid input is an
// error: model, retrieval and persistence failures degrade the answer.
func (s *Service) AnalyzeFlight(ctx context.Context, req FlightRequest) (*FlightResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log := logger.Component("compliance")

	query := s.riskQuery(ctx, req)
	records := s.relevantRecords(ctx, req, query)
	outcome := s.analyze(ctx, req, records)

	fa := FlightAnalysis{
		ID:            uuid.New().String(),
		FlightRequest: req,
		Analysis:      outcome.Value,
		Timestamp:     s.now().UTC(),
	}
	if s.flights != nil {
		if err := s.flights.SaveFlightAnalysis(ctx, fa); err != nil {
			log.Warn().Err(err).Str("flight_id", fa.ID).Msg("persisting flight analysis failed")
		}
	}

	return &FlightResult{FlightID: fa.ID, Details: req, Analysis: outcome}, nil
}

// riskQuery asks the reasoning model to spell out the flight's compliance
// risks; the answer becomes the retrieval query. The flight details are
// used instead when the model is unavailable.
func (s *Service) riskQuery(ctx context.Context, req FlightRequest) string {
	depWeather, arrWeather := "N/A", "N/A"
	if s.weather != nil {
		depWeather = s.weather.Report(ctx, req.Departure)
		arrWeather = s.weather.Report(ctx, req.Arrival)
	}

	text, err := s.complete(ctx, s.reasoner, llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: riskPrompt(req, depWeather, arrWeather)}},
	})
	if err == nil && strings.TrimSpace(text) != "" {
		return text
	}
	if err != nil && !errors.Is(err, errNoModel) {
		logger.Component("compliance").Warn().Err(err).Msg("risk assessment failed, querying with flight details")
	}
	return FlightContext(req)
}

// relevantRecords retrieves the top-k records for query. Without retrieval
// it falls back to tag-based selection over the Document Store.
func (s *Service) relevantRecords(ctx context.Context, req FlightRequest, query string) []regulation.Record {
	res := s.Search(ctx, query, s.topK)
	if res.Available {
		return res.Records
	}
	metrics.RecordFallback("retrieval")
	logger.Component("compliance").Warn().Msg("retrieval unavailable, using tag-based selection")
	return regulation.TagFallback(s.documentRecords(), regulation.IsPriorityAircraft(req.Aircraft),
		regulation.PriorityICAO(s.policy), fallbackRecords)
}

func (s *Service) analyze(ctx context.Context, req FlightRequest, records []regulation.Record) Outcome[Analysis] {
	text, err := s.complete(ctx, s.model, llm.CompletionRequest{
		Messages:       []llm.Message{{Role: llm.RoleUser, Content: analysisPrompt(req, records)}},
		ResponseSchema: AnalysisSchema,
	})
	if err == nil {
		var a Analysis
		if err = llm.DecodeJSON(text, &a); err == nil && !a.Aligned() {
			err = fmt.Errorf("%w: analysis lists are missing or of unequal length", llm.ErrMalformedOutput)
		}
		if err == nil {
			return Fresh(a)
		}
	}

	metrics.RecordFallback("analyze_flight")
	logger.Component("compliance").Warn().Err(err).Int("records", len(records)).Msg("flight analysis fell back to regulation template")
	return Fallback(FallbackAnalysis(records), err.Error())
}
