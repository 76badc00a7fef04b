package compliance

import (
	"context"
	"sort"
	"strings"

	"github.com/ziadkadry99/flinsight/internal/llm"
	"github.com/ziadkadry99/flinsight/internal/logger"
	"github.com/ziadkadry99/flinsight/internal/regulation"
)

// RecentUpdates returns the regulations dated within the lookback window,
// newest first, each with the model's applicability statement when one
// could be produced. Records with an unknown date are not updates.
func (s *Service) RecentUpdates(ctx context.Context) []Update {
	log := logger.Component("compliance")
	now := s.now().UTC()
	cutoff := now.Add(-s.lookback)

	records := s.storedRegulations(ctx, "")
	recent := make([]regulation.Record, 0, len(records))
	for _, r := range records {
		d, ok := regulation.ParseDate(r.Date)
		if !ok || d.Before(cutoff) {
			continue
		}
		recent = append(recent, r)
	}
	// YYYY-MM-DD sorts lexically.
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Date > recent[j].Date })

	updates := make([]Update, 0, len(recent))
	for _, r := range recent {
		u := Update{Record: r, Timestamp: now}
		if s.updates != nil {
			stored, err := s.updates.Update(ctx, r.ID)
			if err == nil && stored != nil && stored.Processed {
				u.Processed = true
				u.AIAnalysis = stored.AIAnalysis
				u.Timestamp = stored.Timestamp
				updates = append(updates, u)
				continue
			}
			if err := s.updates.SaveUpdate(ctx, u); err != nil {
				log.Warn().Err(err).Str("id", r.ID).Msg("persisting update failed")
			}
		}
		s.reviewUpdate(ctx, &u)
		updates = append(updates, u)
	}

	if icao := regulation.PriorityICAO(s.policy); icao != "" {
		updates = regulation.Prioritize(updates, func(u Update) bool { return u.AppliesTo(icao) })
	}
	return updates
}

// reviewUpdate asks the model who an update applies to and marks it
// processed on success.
func (s *Service) reviewUpdate(ctx context.Context, u *Update) {
	if s.reasoner == nil {
		return
	}
	log := logger.Component("compliance")

	text, err := s.complete(ctx, s.reasoner, llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: applicabilityPrompt(u.Record)}},
	})
	if err != nil {
		log.Warn().Err(err).Str("id", u.ID).Msg("update review failed")
		return
	}
	u.AIAnalysis = &UpdateAnalysis{Applicability: strings.TrimSpace(text)}
	u.Processed = true
	if s.updates != nil {
		if err := s.updates.SaveUpdate(ctx, *u); err != nil {
			log.Warn().Err(err).Str("id", u.ID).Msg("persisting reviewed update failed")
		}
	}
}

// ListRegulations lists regulations matching q, ordered by the ranking policy.
func (s *Service) ListRegulations(ctx context.Context, q regulation.Query) []regulation.Record {
	return regulation.Filter(s.storedRegulations(ctx, q.Category), q, s.policy)
}

// storedRegulations reads the durable store, falling back to the in-memory
// Document Store when it is missing or fails.
func (s *Service) storedRegulations(ctx context.Context, category string) []regulation.Record {
	if s.regulations != nil {
		records, err := s.regulations.ListRegulations(ctx, category)
		if err == nil {
			return records
		}
		logger.Component("compliance").Warn().Err(err).Msg("listing stored regulations failed, using in-memory records")
	}
	return s.documentRecords()
}
