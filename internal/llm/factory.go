package llm

import (
	"fmt"
	"os"

	"github.com/ziadkadry99/flinsight/internal/config"
)

const defaultOllamaHost = "http://localhost:11434"

// NewProvider creates a new LLM provider based on the given provider type and model.
// Supported provider types: "anthropic", "openai", "google", "ollama".
func NewProvider(providerType config.ProviderType, model string, opts ...Option) (Provider, error) {
	switch providerType {
	case config.ProviderAnthropic:
		apiKey := config.APIKey(providerType)
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		return NewAnthropicProvider(apiKey, model, opts...), nil

	case config.ProviderOpenAI:
		apiKey := config.APIKey(providerType)
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, model, opts...), nil

	case config.ProviderGoogle:
		apiKey := config.APIKey(providerType)
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
		}
		return NewGoogleProvider(apiKey, model, opts...), nil

	case config.ProviderOllama:
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = defaultOllamaHost
		}
		return NewOllamaProvider(host, model, opts...), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

// NewFromConfig creates the configured provider wrapped with metrics and
// the configured rate limit.
func NewFromConfig(cfg *config.Config, opts ...Option) (Provider, error) {
	p, err := NewProvider(cfg.LLM.Provider, cfg.LLM.Model, opts...)
	if err != nil {
		return nil, err
	}
	return NewRateLimitedProvider(NewInstrumentedProvider(p), cfg.LLM.RPM), nil
}
