// Package metrics exposes Prometheus metrics for the retrieval pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RetrievalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flinsight_retrieval_requests_total",
			Help: "Total number of retrieval queries by outcome",
		},
		[]string{"outcome"},
	)

	IndexDocuments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flinsight_index_documents",
			Help: "Number of records in the published index generation",
		},
	)

	IndexGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flinsight_index_generation",
			Help: "Generation number of the published index",
		},
	)

	Fallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flinsight_fallbacks_total",
			Help: "Total number of degraded answers served from a fallback path",
		},
		[]string{"operation"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flinsight_llm_request_duration_seconds",
			Help:    "Duration of generation model requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "outcome"},
	)

	LLMTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flinsight_llm_tokens_total",
			Help: "Tokens consumed by generation model requests",
		},
		[]string{"provider", "direction"},
	)

	LLMCost = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flinsight_llm_cost_usd_total",
			Help: "Estimated spend on generation model requests in USD",
		},
		[]string{"provider"},
	)
)

// Retrieval outcomes.
const (
	OutcomeHit         = "hit"
	OutcomeEmpty       = "empty"
	OutcomeUnavailable = "unavailable"
)

// ObserveLLM records the duration of a generation call.
func ObserveLLM(provider string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	LLMRequestDuration.WithLabelValues(provider, outcome).Observe(time.Since(start).Seconds())
}

// ObserveUsage records token counts and the estimated cost of one call.
func ObserveUsage(provider string, inputTokens, outputTokens int, costUSD float64) {
	LLMTokens.WithLabelValues(provider, "input").Add(float64(inputTokens))
	LLMTokens.WithLabelValues(provider, "output").Add(float64(outputTokens))
	if costUSD > 0 {
		LLMCost.WithLabelValues(provider).Add(costUSD)
	}
}

// RecordFallback counts one degraded answer for the operation.
func RecordFallback(operation string) {
	Fallbacks.WithLabelValues(operation).Inc()
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
