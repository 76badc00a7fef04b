package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// Prompter asks the questions of the init wizard.
type Prompter interface {
	// Select returns the index of the chosen item.
	Select(label string, items []string) (int, error)
	// Prompt returns free text, def when the answer is blank.
	Prompt(label, def string, validate func(string) error) (string, error)
}

// TerminalPrompter asks on the terminal with promptui.
type TerminalPrompter struct{}

func (TerminalPrompter) Select(label string, items []string) (int, error) {
	s := promptui.Select{Label: label, Items: items}
	idx, _, err := s.Run()
	return idx, err
}

func (TerminalPrompter) Prompt(label, def string, validate func(string) error) (string, error) {
	p := promptui.Prompt{Label: label, Default: def}
	if validate != nil {
		p.Validate = validate
	}
	return p.Run()
}

var (
	llmChoices       = []ProviderType{ProviderGoogle, ProviderOpenAI, ProviderAnthropic, ProviderOllama}
	embeddingChoices = []ProviderType{ProviderOllama, ProviderOpenAI, ProviderGoogle}
	indexChoices     = []IndexBackend{IndexFlat, IndexChromem}
	storageChoices   = []StorageBackend{StorageSQLite, StorageFirestore, StorageNone}
)

// RunWizard builds a Config from the answers given to p, starting from
// DefaultConfig. The result is validated but not saved.
func RunWizard(p Prompter) (*Config, error) {
	cfg := DefaultConfig()

	llmProvider, err := choose(p, "Generation model provider", llmChoices)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	preset := GetPreset(llmProvider)
	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = preset.Model
	cfg.LLM.ReasoningModel = preset.ReasoningModel

	embProvider, err := choose(p, "Embedding provider", embeddingChoices)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	cfg.Embedding.Provider = embProvider
	cfg.Embedding.Model = GetPreset(embProvider).EmbeddingModel

	if cfg.Retrieval.IndexBackend, err = choose(p, "Vector index backend", indexChoices); err != nil {
		return nil, fmt.Errorf("index backend: %w", err)
	}

	if cfg.Storage.Backend, err = choose(p, "Storage backend", storageChoices); err != nil {
		return nil, fmt.Errorf("storage backend: %w", err)
	}
	switch cfg.Storage.Backend {
	case StorageSQLite:
		cfg.Storage.SQLitePath, err = p.Prompt("SQLite database path", cfg.Storage.SQLitePath, required)
	case StorageFirestore:
		cfg.Storage.FirestoreProject, err = p.Prompt("Firestore project ID", "", required)
	}
	if err != nil {
		return nil, fmt.Errorf("storage settings: %w", err)
	}

	icao, err := p.Prompt("Priority aircraft ICAO type (blank for none)", cfg.Ranking.PriorityICAO, nil)
	if err != nil {
		return nil, fmt.Errorf("priority aircraft: %w", err)
	}
	cfg.Ranking.PriorityICAO = strings.ToUpper(strings.TrimSpace(icao))

	port, err := p.Prompt("HTTP port", strconv.Itoa(cfg.Server.Port), validPort)
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(strings.TrimSpace(port))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func choose[T ~string](p Prompter, label string, choices []T) (T, error) {
	items := make([]string, len(choices))
	for i, c := range choices {
		items[i] = string(c)
	}
	idx, err := p.Select(label, items)
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(choices) {
		return "", fmt.Errorf("selection %d out of range", idx)
	}
	return choices[idx], nil
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("a value is required")
	}
	return nil
}

func validPort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 || n > 65535 {
		return errors.New("enter a port between 1 and 65535")
	}
	return nil
}
