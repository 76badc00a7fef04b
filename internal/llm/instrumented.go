package llm

import (
	"context"
	"time"

	"github.com/ziadkadry99/flinsight/internal/logger"
	"github.com/ziadkadry99/flinsight/internal/metrics"
)

// InstrumentedProvider records latency, token and cost metrics and logs usage.
type InstrumentedProvider struct {
	provider Provider
}

// NewInstrumentedProvider wraps provider with metrics and debug logging.
func NewInstrumentedProvider(provider Provider) Provider {
	return &InstrumentedProvider{provider: provider}
}

func (p *InstrumentedProvider) Name() string {
	return p.provider.Name()
}

func (p *InstrumentedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()
	resp, err := p.provider.Complete(ctx, req)
	metrics.ObserveLLM(p.provider.Name(), start, err)

	log := logger.Component("llm")
	if err != nil {
		log.Warn().Err(err).Str("provider", p.provider.Name()).Dur("duration", time.Since(start)).Msg("completion failed")
		return nil, err
	}
	cost := EstimateCost(resp.Model, resp.InputTokens, resp.OutputTokens)
	metrics.ObserveUsage(p.provider.Name(), resp.InputTokens, resp.OutputTokens, cost)
	log.Debug().
		Str("provider", p.provider.Name()).
		Str("model", resp.Model).
		Int("input_tokens", resp.InputTokens).
		Int("output_tokens", resp.OutputTokens).
		Float64("cost_usd", cost).
		Dur("duration", time.Since(start)).
		Msg("completion")
	return resp, nil
}
