package compliance

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/ziadkadry99/flinsight/internal/llm"
	"github.com/ziadkadry99/flinsight/internal/logger"
	"github.com/ziadkadry99/flinsight/internal/metrics"
	"github.com/ziadkadry99/flinsight/internal/regulation"
	"github.com/ziadkadry99/flinsight/internal/retrieval"
)

// reasonRetrievalUnavailable marks answers built on keyword selection.
const reasonRetrievalUnavailable = "retrieval unavailable"

// Chat answers one question about the regulations. No history is kept: each
// turn retrieves its own context.
func (s *Service) Chat(ctx context.Context, message string) (Outcome[ChatReply], error) {
	if strings.TrimSpace(message) == "" {
		return Outcome[ChatReply]{}, fmt.Errorf("%w: No message provided", ErrInvalidInput)
	}

	var records []regulation.Record
	degraded := ""
	res := s.Search(ctx, message, retrieval.DefaultK)
	if res.Available {
		records = res.Records
	} else {
		metrics.RecordFallback("retrieval")
		logger.Component("compliance").Warn().Msg("retrieval unavailable, selecting chat context by keyword")
		records = keywordRecords(s.documentRecords(), message, retrieval.DefaultK)
		degraded = reasonRetrievalUnavailable
	}
	if records == nil {
		records = []regulation.Record{}
	}

	text, err := s.complete(ctx, s.reasoner, llm.CompletionRequest{
		Messages: chatMessages(retrieval.FormatContext(records), message),
	})
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("%w: empty chat answer", llm.ErrMalformedOutput)
	}
	if err != nil {
		metrics.RecordFallback("chat")
		logger.Component("compliance").Warn().Err(err).Int("records", len(records)).Msg("chat fell back to section listing")
		return Fallback(ChatReply{Response: FallbackChat(records), RegulationsUsed: records}, err.Error()), nil
	}
	reply := ChatReply{Response: text, RegulationsUsed: records}
	if degraded != "" {
		return Fallback(reply, degraded), nil
	}
	return Fresh(reply), nil
}

// keywordRecords picks up to k records without semantic search. Records are
// ordered by how many words of message (four letters or more) occur in their
// title or content, ties in store order. With no hits it returns the first
// k general records.
func keywordRecords(records []regulation.Record, message string, k int) []regulation.Record {
	var words []string
	for _, w := range strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(w) >= 4 {
			words = append(words, w)
		}
	}

	type scored struct {
		rec   regulation.Record
		score int
	}
	var hits []scored
	for _, r := range records {
		text := strings.ToLower(r.Title + " " + r.Content)
		n := 0
		for _, w := range words {
			if strings.Contains(text, w) {
				n++
			}
		}
		if n > 0 {
			hits = append(hits, scored{rec: r, score: n})
		}
	}
	if len(hits) == 0 {
		return regulation.TagFallback(records, false, "", k)
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	if len(hits) > k {
		hits = hits[:k]
	}
	out := make([]regulation.Record, len(hits))
	for i, h := range hits {
		out[i] = h.rec
	}
	return out
}
