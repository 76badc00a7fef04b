package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LLM.Provider != ProviderGoogle {
		t.Errorf("expected default provider %q, got %q", ProviderGoogle, cfg.LLM.Provider)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("expected default dimensions 384, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("expected default top_k 5, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.IndexBackend != IndexFlat {
		t.Errorf("expected default index backend %q, got %q", IndexFlat, cfg.Retrieval.IndexBackend)
	}
	if cfg.Sources.LookbackDays != 120 {
		t.Errorf("expected default lookback 120, got %d", cfg.Sources.LookbackDays)
	}
	if cfg.Ranking.PriorityICAO != "GLF5" {
		t.Errorf("expected default priority GLF5, got %q", cfg.Ranking.PriorityICAO)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flinsight.yml")

	original := DefaultConfig()
	original.LLM.Provider = ProviderOpenAI
	original.LLM.Model = "gpt-4o"
	original.Retrieval.TopK = 8
	original.Retrieval.IndexBackend = IndexChromem
	original.Server.AllowedOrigins = []string{"http://localhost:3000", "https://flinsight.example"}
	original.Storage.Backend = StorageNone

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.LLM.Provider != original.LLM.Provider {
		t.Errorf("provider: got %q, want %q", loaded.LLM.Provider, original.LLM.Provider)
	}
	if loaded.LLM.Model != original.LLM.Model {
		t.Errorf("model: got %q, want %q", loaded.LLM.Model, original.LLM.Model)
	}
	if loaded.Retrieval.TopK != 8 {
		t.Errorf("top_k: got %d, want 8", loaded.Retrieval.TopK)
	}
	if loaded.Retrieval.IndexBackend != IndexChromem {
		t.Errorf("index_backend: got %q, want %q", loaded.Retrieval.IndexBackend, IndexChromem)
	}
	if loaded.Storage.Backend != StorageNone {
		t.Errorf("storage.backend: got %q, want %q", loaded.Storage.Backend, StorageNone)
	}
	if len(loaded.Server.AllowedOrigins) != 2 {
		t.Fatalf("allowed_origins length: got %d, want 2", len(loaded.Server.AllowedOrigins))
	}
	for i, v := range loaded.Server.AllowedOrigins {
		if v != original.Server.AllowedOrigins[i] {
			t.Errorf("allowed_origins[%d]: got %q, want %q", i, v, original.Server.AllowedOrigins[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.LLM.Provider != ProviderGoogle {
		t.Errorf("expected default provider, got %q", cfg.LLM.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flinsight.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("FLINSIGHT_LLM__PROVIDER", "openai")
	t.Setenv("FLINSIGHT_SERVER__PORT", "8081")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.LLM.Provider != ProviderOpenAI {
		t.Errorf("env override failed: got %q, want %q", loaded.LLM.Provider, ProviderOpenAI)
	}
	if loaded.Server.Port != 8081 {
		t.Errorf("env override failed: got port %d, want 8081", loaded.Server.Port)
	}
}

func TestLoadEnvFilesDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env.local")
	if err := os.WriteFile(path, []byte("FLINSIGHT_TEST_A=from-file\nFLINSIGHT_TEST_B=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FLINSIGHT_TEST_A", "from-env")
	os.Unsetenv("FLINSIGHT_TEST_B")
	t.Cleanup(func() { os.Unsetenv("FLINSIGHT_TEST_B") })

	LoadEnvFiles(path, filepath.Join(dir, "missing.env"))

	if got := os.Getenv("FLINSIGHT_TEST_A"); got != "from-env" {
		t.Errorf("existing variable overwritten: got %q", got)
	}
	if got := os.Getenv("FLINSIGHT_TEST_B"); got != "from-file" {
		t.Errorf("variable not loaded from file: got %q", got)
	}
}

func TestAPIKeyGoogleFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	if got := APIKey(ProviderGoogle); got != "google-key" {
		t.Errorf("APIKey(google) = %q, want google-key", got)
	}

	t.Setenv("GEMINI_API_KEY", "gemini-key")
	if got := APIKey(ProviderGoogle); got != "gemini-key" {
		t.Errorf("APIKey(google) = %q, want gemini-key", got)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"invalid provider", func(c *Config) { c.LLM.Provider = "invalid" }},
		{"empty provider", func(c *Config) { c.LLM.Provider = "" }},
		{"empty model", func(c *Config) { c.LLM.Model = "" }},
		{"anthropic embeddings", func(c *Config) { c.Embedding.Provider = ProviderAnthropic }},
		{"zero dimensions", func(c *Config) { c.Embedding.Dimensions = 0 }},
		{"zero top_k", func(c *Config) { c.Retrieval.TopK = 0 }},
		{"unknown index", func(c *Config) { c.Retrieval.IndexBackend = "hnsw" }},
		{"unknown storage", func(c *Config) { c.Storage.Backend = "postgres" }},
		{"firestore without project", func(c *Config) { c.Storage.Backend = StorageFirestore }},
		{"negative timeout", func(c *Config) { c.HTTP.TimeoutSeconds = -1 }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetPresetUnknown(t *testing.T) {
	p := GetPreset("nope")
	if p.Model != GetPreset(ProviderGoogle).Model {
		t.Errorf("unknown provider should fall back to google preset, got %q", p.Model)
	}
}
