package config

// DefaultRegulationsURL is the eCFR rendering of 14 CFR Part 135.
const DefaultRegulationsURL = "https://www.ecfr.gov/api/renderer/v1/content/enhanced/2025-03-12/title-14?chapter=I&subchapter=G&part=135"

// modelPresets maps each provider to its generation and embedding defaults.
var modelPresets = map[ProviderType]ModelPreset{
	ProviderGoogle:    {Model: "gemini-2.0-pro-exp", ReasoningModel: "gemini-2.0-flash-thinking-exp-01-21", EmbeddingModel: "text-embedding-004"},
	ProviderOpenAI:    {Model: "gpt-4o", ReasoningModel: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
	ProviderOllama:    {Model: "llama3", ReasoningModel: "llama3", EmbeddingModel: "all-minilm"},
	ProviderAnthropic: {Model: "claude-sonnet-4-5-20250929", ReasoningModel: "claude-haiku-4-5-20251001"},
}

// ModelPreset describes the default models for a provider.
type ModelPreset struct {
	Model          string
	ReasoningModel string
	EmbeddingModel string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           5000,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		LLM: LLMConfig{
			Provider:       ProviderGoogle,
			Model:          modelPresets[ProviderGoogle].Model,
			ReasoningModel: modelPresets[ProviderGoogle].ReasoningModel,
			RPM:            60,
		},
		Embedding: EmbeddingConfig{
			Provider:   ProviderOllama,
			Model:      modelPresets[ProviderOllama].EmbeddingModel,
			Dimensions: 384,
		},
		Retrieval: RetrievalConfig{
			TopK:         5,
			IndexBackend: IndexFlat,
		},
		Storage: StorageConfig{
			Backend:    StorageSQLite,
			SQLitePath: "data/flinsight.db",
		},
		Sources: SourcesConfig{
			RegulationsURL: DefaultRegulationsURL,
			LookbackDays:   120,
		},
		Weather: WeatherConfig{
			BaseURL: "https://avwx.rest",
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: 30,
		},
		Log: LogConfig{
			Level: "info",
		},
		Ranking: RankingConfig{
			PriorityICAO: "GLF5",
		},
	}
}

// GetPreset returns the model preset for the given provider.
// Returns the Google preset if the provider is unknown.
func GetPreset(provider ProviderType) ModelPreset {
	if p, ok := modelPresets[provider]; ok {
		return p
	}
	return modelPresets[ProviderGoogle]
}
