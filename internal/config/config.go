package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "FLINSIGHT_"

// envFiles are loaded in order before the config is read. Variables already
// present in the process environment are never overwritten.
var envFiles = []string{".env.local", ".env"}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (FLINSIGHT_*). A double underscore in the
// variable name separates nested keys: FLINSIGHT_SERVER__PORT -> server.port.
func Load(path string) (*Config, error) {
	LoadEnvFiles(envFiles...)

	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// LoadEnvFiles loads dotenv files that exist, ignoring missing ones.
func LoadEnvFiles(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
	}
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized generation providers.
var validProviders = map[ProviderType]bool{
	ProviderAnthropic: true,
	ProviderOpenAI:    true,
	ProviderGoogle:    true,
	ProviderOllama:    true,
}

// validEmbeddingProviders excludes Anthropic, which has no embedding API.
var validEmbeddingProviders = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderGoogle: true,
	ProviderOllama: true,
}

var validIndexBackends = map[IndexBackend]bool{
	IndexFlat:    true,
	IndexChromem: true,
}

var validStorageBackends = map[StorageBackend]bool{
	StorageSQLite:    true,
	StorageFirestore: true,
	StorageNone:      true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}

	if c.LLM.Provider == "" {
		return fmt.Errorf("llm.provider is required")
	}
	if !validProviders[c.LLM.Provider] {
		return fmt.Errorf("invalid llm.provider %q: must be one of google, openai, ollama, anthropic", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.LLM.RPM < 0 {
		return fmt.Errorf("llm.rpm must be non-negative")
	}

	if !validEmbeddingProviders[c.Embedding.Provider] {
		return fmt.Errorf("invalid embedding.provider %q: must be one of ollama, openai, google", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive")
	}

	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive")
	}
	if !validIndexBackends[c.Retrieval.IndexBackend] {
		return fmt.Errorf("invalid retrieval.index_backend %q: must be flat or chromem", c.Retrieval.IndexBackend)
	}

	if !validStorageBackends[c.Storage.Backend] {
		return fmt.Errorf("invalid storage.backend %q: must be one of sqlite, firestore, none", c.Storage.Backend)
	}
	if c.Storage.Backend == StorageSQLite && c.Storage.SQLitePath == "" {
		return fmt.Errorf("storage.sqlite_path is required for the sqlite backend")
	}
	if c.Storage.Backend == StorageFirestore && c.Storage.FirestoreProject == "" {
		return fmt.Errorf("storage.firestore_project is required for the firestore backend")
	}

	if c.Sources.LookbackDays < 0 {
		return fmt.Errorf("sources.lookback_days must be non-negative")
	}
	if c.HTTP.TimeoutSeconds < 0 {
		return fmt.Errorf("http.timeout_seconds must be non-negative")
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGoogle:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// APIKey returns the API key for the provider from the environment.
// Google accepts GOOGLE_API_KEY when GEMINI_API_KEY is unset.
func APIKey(provider ProviderType) string {
	if v := os.Getenv(APIKeyEnvVar(provider)); v != "" {
		return v
	}
	if provider == ProviderGoogle {
		return os.Getenv("GOOGLE_API_KEY")
	}
	return ""
}

// WeatherAPIKey returns the AVWX token.
func WeatherAPIKey() string {
	return os.Getenv("METAR_API_KEY")
}
