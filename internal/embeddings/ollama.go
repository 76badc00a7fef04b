package embeddings

import (
	"context"
	"net/http"
	"strings"

	"github.com/ziadkadry99/flinsight/internal/resilience"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// OllamaEmbedder embeds through a local Ollama server. A whole batch goes
// out in one /api/embed call.
type OllamaEmbedder struct {
	url    string
	model  string
	dims   int
	policy resilience.Policy
	client *http.Client
}

// NewOllamaEmbedder creates an embedder for model (e.g. "all-minilm").
// An empty baseURL means the default local server.
func NewOllamaEmbedder(model string, dimensions int, baseURL string, policy resilience.Policy) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &OllamaEmbedder{
		url:    strings.TrimRight(baseURL, "/") + "/api/embed",
		model:  model,
		dims:   dimensions,
		policy: policy,
		client: &http.Client{},
	}
}

func (e *OllamaEmbedder) Name() string   { return "ollama/" + e.model }
func (e *OllamaEmbedder) Dimensions() int { return e.dims }

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var resp ollamaEmbedResponse
	if err := postJSON(ctx, e.client, e.policy, "ollama", e.url, ollamaEmbedRequest{Model: e.model, Input: texts}, &resp); err != nil {
		return nil, err
	}
	if err := checkShape("ollama", resp.Embeddings, len(texts), e.dims); err != nil {
		return nil, err
	}
	return resp.Embeddings, nil
}
