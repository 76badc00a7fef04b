package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderGoogle    ProviderType = "google"
	ProviderOpenAI    ProviderType = "openai"
	ProviderOllama    ProviderType = "ollama"
	ProviderAnthropic ProviderType = "anthropic"
)

// IndexBackend selects the vector index implementation.
type IndexBackend string

const (
	IndexFlat    IndexBackend = "flat"
	IndexChromem IndexBackend = "chromem"
)

// StorageBackend selects the durable store implementation.
type StorageBackend string

const (
	StorageSQLite    StorageBackend = "sqlite"
	StorageFirestore StorageBackend = "firestore"
	StorageNone      StorageBackend = "none"
)

// Config is the top-level flinsight configuration, corresponding to flinsight.yml.
type Config struct {
	Server    ServerConfig    `yaml:"server" koanf:"server"`
	LLM       LLMConfig       `yaml:"llm" koanf:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding" koanf:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval" koanf:"retrieval"`
	Storage   StorageConfig   `yaml:"storage" koanf:"storage"`
	Sources   SourcesConfig   `yaml:"sources" koanf:"sources"`
	Weather   WeatherConfig   `yaml:"weather" koanf:"weather"`
	HTTP      HTTPConfig      `yaml:"http" koanf:"http"`
	Log       LogConfig       `yaml:"log" koanf:"log"`
	Ranking   RankingConfig   `yaml:"ranking" koanf:"ranking"`
}

type ServerConfig struct {
	Port           int      `yaml:"port" koanf:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
}

// LLMConfig configures the generation model. ReasoningModel is used for the
// free-text risk brainstorming step; Model for structured answers.
type LLMConfig struct {
	Provider       ProviderType `yaml:"provider" koanf:"provider"`
	Model          string       `yaml:"model" koanf:"model"`
	ReasoningModel string       `yaml:"reasoning_model" koanf:"reasoning_model"`
	RPM            int          `yaml:"rpm" koanf:"rpm"`
}

type EmbeddingConfig struct {
	Provider   ProviderType `yaml:"provider" koanf:"provider"`
	Model      string       `yaml:"model" koanf:"model"`
	Dimensions int          `yaml:"dimensions" koanf:"dimensions"`
}

type RetrievalConfig struct {
	TopK         int          `yaml:"top_k" koanf:"top_k"`
	IndexBackend IndexBackend `yaml:"index_backend" koanf:"index_backend"`
}

type StorageConfig struct {
	Backend              StorageBackend `yaml:"backend" koanf:"backend"`
	SQLitePath           string         `yaml:"sqlite_path" koanf:"sqlite_path"`
	FirestoreProject     string         `yaml:"firestore_project" koanf:"firestore_project"`
	FirestoreCredentials string         `yaml:"firestore_credentials" koanf:"firestore_credentials"`
}

type SourcesConfig struct {
	RegulationsURL string `yaml:"regulations_url" koanf:"regulations_url"`
	LookbackDays   int    `yaml:"lookback_days" koanf:"lookback_days"`
}

type WeatherConfig struct {
	BaseURL string `yaml:"base_url" koanf:"base_url"`
}

// HTTPConfig bounds every outbound call.
type HTTPConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}

type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Pretty bool   `yaml:"pretty" koanf:"pretty"`
}

// RankingConfig names the aircraft type whose regulations are listed first.
// An empty PriorityICAO disables the reordering.
type RankingConfig struct {
	PriorityICAO string `yaml:"priority_icao" koanf:"priority_icao"`
}
