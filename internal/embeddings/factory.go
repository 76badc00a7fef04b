package embeddings

import (
	"fmt"
	"os"

	"github.com/ziadkadry99/flinsight/internal/config"
	"github.com/ziadkadry99/flinsight/internal/resilience"
)

// NewFromConfig creates the Embedder selected by cfg.Embedding.
func NewFromConfig(cfg *config.Config, policy resilience.Policy) (Embedder, error) {
	dims := cfg.Embedding.Dimensions
	if dims <= 0 {
		dims = DefaultDimensions
	}
	model := cfg.Embedding.Model
	if model == "" {
		model = config.GetPreset(cfg.Embedding.Provider).EmbeddingModel
	}

	switch cfg.Embedding.Provider {
	case config.ProviderOllama:
		return NewOllamaEmbedder(model, dims, os.Getenv("OLLAMA_HOST"), policy), nil
	case config.ProviderOpenAI:
		key := config.APIKey(config.ProviderOpenAI)
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIEmbedder(key, OpenAIModel(model), dims, "", policy), nil
	case config.ProviderGoogle:
		key := config.APIKey(config.ProviderGoogle)
		if key == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
		}
		return NewGoogleEmbedder(key, GoogleModel(model), dims, "", policy), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}
