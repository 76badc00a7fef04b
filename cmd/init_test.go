package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/flinsight/internal/config"
)

// firstChoice picks the first item of every select and takes each default.
type firstChoice struct{}

func (firstChoice) Select(string, []string) (int, error) { return 0, nil }

func (firstChoice) Prompt(_, def string, _ func(string) error) (string, error) { return def, nil }

// ollamaOnly picks Ollama for both providers and the flat index with no storage.
type ollamaOnly struct{ firstChoice }

func (ollamaOnly) Select(label string, _ []string) (int, error) {
	switch label {
	case "Generation model provider":
		return 3, nil
	case "Storage backend":
		return 2, nil
	}
	return 0, nil
}

func TestWriteInitConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("METAR_API_KEY", "")
	path := filepath.Join(t.TempDir(), "flinsight.yml")

	var out bytes.Buffer
	require.NoError(t, writeInitConfig(&out, path, nil))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().LLM, cfg.LLM)
	assert.Contains(t, out.String(), "Wrote "+path)
	assert.Contains(t, out.String(), "Set GEMINI_API_KEY")
	assert.Contains(t, out.String(), "METAR_API_KEY")
}

func TestWriteInitConfigWizard(t *testing.T) {
	t.Setenv("METAR_API_KEY", "token")
	path := filepath.Join(t.TempDir(), "flinsight.yml")

	var out bytes.Buffer
	require.NoError(t, writeInitConfig(&out, path, ollamaOnly{}))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, config.StorageNone, cfg.Storage.Backend)
	assert.NotContains(t, out.String(), "_API_KEY before")
}

func TestWriteInitConfigWizardDefaultsMatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flinsight.yml")
	require.NoError(t, writeInitConfig(&bytes.Buffer{}, path, firstChoice{}))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Storage, cfg.Storage)
	assert.Equal(t, "GLF5", cfg.Ranking.PriorityICAO)
}
