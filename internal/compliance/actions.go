package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ziadkadry99/flinsight/internal/llm"
	"github.com/ziadkadry99/flinsight/internal/logger"
	"github.com/ziadkadry99/flinsight/internal/metrics"
)

// GenerateActionItems turns a stored flight analysis into a checklist and
// persists each item as pending.
func (s *Service) GenerateActionItems(ctx context.Context, flightID string) (Outcome[[]ActionItem], error) {
	flightID = strings.TrimSpace(flightID)
	if flightID == "" {
		return Outcome[[]ActionItem]{}, fmt.Errorf("%w: Flight ID is required", ErrInvalidInput)
	}
	log := logger.Component("compliance")

	fa := s.flightForActions(ctx, flightID)

	var outcome Outcome[[]ActionItem]
	items, err := s.modelActionItems(ctx, fa)
	if err == nil && len(items) == 0 {
		err = fmt.Errorf("%w: no complete action items", llm.ErrMalformedOutput)
	}
	if err != nil {
		metrics.RecordFallback("action_items")
		log.Warn().Err(err).Str("flight_id", flightID).Msg("action items fell back to checklist")
		outcome = Fallback(FallbackActionItems(fa.Analysis), err.Error())
	} else {
		outcome = Fresh(items)
	}

	now := s.now().UTC()
	for i := range outcome.Value {
		item := &outcome.Value[i]
		item.ID = uuid.New().String()
		item.FlightID = flightID
		item.Status = StatusPending
		item.CreatedAt = now
		if s.actionItems == nil {
			continue
		}
		if err := s.actionItems.SaveActionItem(ctx, *item); err != nil {
			log.Warn().Err(err).Str("title", item.Title).Msg("persisting action item failed")
		}
	}
	return outcome, nil
}

// ActionItems lists the stored action items of a flight in generation order.
// Without an action item store the list is empty.
func (s *Service) ActionItems(ctx context.Context, flightID string) ([]ActionItem, error) {
	flightID = strings.TrimSpace(flightID)
	if flightID == "" {
		return nil, fmt.Errorf("%w: Flight ID is required", ErrInvalidInput)
	}
	if s.actionItems == nil {
		return []ActionItem{}, nil
	}
	items, err := s.actionItems.ActionItems(ctx, flightID)
	if err != nil {
		return nil, fmt.Errorf("listing action items for %s: %w", flightID, err)
	}
	if items == nil {
		items = []ActionItem{}
	}
	return items, nil
}

// flightForActions loads the analysis for flightID, then the most recent
// analysis, then the sample flight.
func (s *Service) flightForActions(ctx context.Context, flightID string) FlightAnalysis {
	if s.flights == nil {
		return SampleFlight()
	}
	log := logger.Component("compliance")

	fa, err := s.flights.FlightAnalysis(ctx, flightID)
	if err == nil && fa != nil {
		return *fa
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		log.Warn().Err(err).Str("flight_id", flightID).Msg("loading flight analysis failed")
	}

	fa, err = s.flights.LatestFlightAnalysis(ctx)
	if err == nil && fa != nil {
		return *fa
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		log.Warn().Err(err).Msg("loading latest flight analysis failed")
	}
	return SampleFlight()
}

func (s *Service) modelActionItems(ctx context.Context, fa FlightAnalysis) ([]ActionItem, error) {
	text, err := s.complete(ctx, s.model, llm.CompletionRequest{
		Messages:       []llm.Message{{Role: llm.RoleUser, Content: actionItemsPrompt(fa)}},
		ResponseSchema: ActionItemsSchema,
	})
	if err != nil {
		return nil, err
	}
	return ParseActionItems(text)
}

// ParseActionItems decodes a model answer holding a JSON array of action
// items, or an object wrapping that array under "action_items". Items with a
// missing field are skipped.
func ParseActionItems(text string) ([]ActionItem, error) {
	raw, err := llm.ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var parsed []ActionItem
	if strings.HasPrefix(raw, "{") {
		var wrapped struct {
			ActionItems []ActionItem `json:"action_items"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %w", llm.ErrMalformedOutput, err)
		}
		parsed = wrapped.ActionItems
	} else if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", llm.ErrMalformedOutput, err)
	}

	items := make([]ActionItem, 0, len(parsed))
	for i, it := range parsed {
		if !it.complete() {
			logger.Component("compliance").Warn().Int("index", i).Str("title", it.Title).Msg("skipping incomplete action item")
			continue
		}
		items = append(items, ActionItem{
			Title:           it.Title,
			Description:     it.Description,
			DueDate:         it.DueDate,
			ResponsibleRole: it.ResponsibleRole,
		})
	}
	return items, nil
}
