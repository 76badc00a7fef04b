package config

import (
	"errors"
	"testing"
)

// scriptedPrompter answers selects and prompts from fixed queues. An empty
// prompt answer takes the default, as promptui does.
type scriptedPrompter struct {
	selects []int
	answers []string
	labels  []string
}

func (s *scriptedPrompter) Select(label string, items []string) (int, error) {
	s.labels = append(s.labels, label)
	if len(s.selects) == 0 {
		return 0, errors.New("unexpected select " + label)
	}
	idx := s.selects[0]
	s.selects = s.selects[1:]
	return idx, nil
}

func (s *scriptedPrompter) Prompt(label, def string, validate func(string) error) (string, error) {
	s.labels = append(s.labels, label)
	if len(s.answers) == 0 {
		return "", errors.New("unexpected prompt " + label)
	}
	ans := s.answers[0]
	s.answers = s.answers[1:]
	if ans == "" {
		ans = def
	}
	if validate != nil {
		if err := validate(ans); err != nil {
			return "", err
		}
	}
	return ans, nil
}

func TestRunWizardDefaults(t *testing.T) {
	p := &scriptedPrompter{selects: []int{0, 0, 0, 0}, answers: []string{"", "", ""}}
	cfg, err := RunWizard(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	def := DefaultConfig()
	if cfg.LLM != def.LLM || cfg.Embedding != def.Embedding || cfg.Retrieval != def.Retrieval || cfg.Storage != def.Storage {
		t.Errorf("choosing every default should match DefaultConfig, got %+v", cfg)
	}
	if cfg.Ranking.PriorityICAO != "GLF5" || cfg.Server.Port != 5000 {
		t.Errorf("unexpected ranking/port: %q %d", cfg.Ranking.PriorityICAO, cfg.Server.Port)
	}
}

func TestRunWizardChoices(t *testing.T) {
	p := &scriptedPrompter{
		selects: []int{2, 1, 1, 1},
		answers: []string{"flinsight-prod", " c25b ", "8080"},
	}
	cfg, err := RunWizard(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLM.Provider != ProviderAnthropic || cfg.LLM.Model != GetPreset(ProviderAnthropic).Model {
		t.Errorf("unexpected llm config %+v", cfg.LLM)
	}
	if cfg.Embedding.Provider != ProviderOpenAI || cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("unexpected embedding config %+v", cfg.Embedding)
	}
	if cfg.Retrieval.IndexBackend != IndexChromem {
		t.Errorf("expected chromem backend, got %q", cfg.Retrieval.IndexBackend)
	}
	if cfg.Storage.Backend != StorageFirestore || cfg.Storage.FirestoreProject != "flinsight-prod" {
		t.Errorf("unexpected storage config %+v", cfg.Storage)
	}
	if cfg.Ranking.PriorityICAO != "C25B" {
		t.Errorf("expected normalized ICAO C25B, got %q", cfg.Ranking.PriorityICAO)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
}

func TestRunWizardNoStorageSkipsStorageQuestions(t *testing.T) {
	p := &scriptedPrompter{selects: []int{3, 0, 0, 2}, answers: []string{"", ""}}
	cfg, err := RunWizard(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Backend != StorageNone {
		t.Errorf("expected no storage, got %q", cfg.Storage.Backend)
	}
	for _, l := range p.labels {
		if l == "SQLite database path" || l == "Firestore project ID" {
			t.Errorf("unexpected storage question %q", l)
		}
	}
}

func TestRunWizardRejectsBadPort(t *testing.T) {
	p := &scriptedPrompter{selects: []int{0, 0, 0, 0}, answers: []string{"", "", "99999"}}
	if _, err := RunWizard(p); err == nil {
		t.Fatal("expected an error for an out-of-range port")
	}
}
