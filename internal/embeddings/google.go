package embeddings

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ziadkadry99/flinsight/internal/resilience"
)

const defaultGoogleBaseURL = "https://generativelanguage.googleapis.com"

// GoogleModel names a Gemini API embedding model.
type GoogleModel string

const (
	ModelTextEmbedding004   GoogleModel = "text-embedding-004"
	ModelGeminiEmbedding001 GoogleModel = "gemini-embedding-001"
)

// GoogleEmbedder uses the Gemini batchEmbedContents endpoint. Every request
// asks for outputDimensionality so vectors match the index width.
type GoogleEmbedder struct {
	apiKey  string
	model   GoogleModel
	dims    int
	baseURL string
	policy  resilience.Policy
	client  *http.Client
}

// NewGoogleEmbedder creates a Google embedder. An empty baseURL means the
// public endpoint.
func NewGoogleEmbedder(apiKey string, model GoogleModel, dimensions int, baseURL string, policy resilience.Policy) *GoogleEmbedder {
	if baseURL == "" {
		baseURL = defaultGoogleBaseURL
	}
	return &GoogleEmbedder{
		apiKey:  apiKey,
		model:   model,
		dims:    dimensions,
		baseURL: strings.TrimRight(baseURL, "/"),
		policy:  policy,
		client:  &http.Client{},
	}
}

func (e *GoogleEmbedder) Name() string   { return string(e.model) }
func (e *GoogleEmbedder) Dimensions() int { return e.dims }

type googlePart struct {
	Text string `json:"text"`
}

type googleText struct {
	Parts []googlePart `json:"parts"`
}

type googleEmbedRequest struct {
	Model                string     `json:"model"`
	Content              googleText `json:"content"`
	OutputDimensionality int        `json:"outputDimensionality,omitempty"`
}

type googleBatchRequest struct {
	Requests []googleEmbedRequest `json:"requests"`
}

type googleBatchResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

func (e *GoogleEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	model := "models/" + string(e.model)
	batch := googleBatchRequest{Requests: make([]googleEmbedRequest, len(texts))}
	for i, text := range texts {
		batch.Requests[i] = googleEmbedRequest{
			Model:                model,
			Content:              googleText{Parts: []googlePart{{Text: text}}},
			OutputDimensionality: e.dims,
		}
	}

	url := fmt.Sprintf("%s/v1beta/%s:batchEmbedContents?key=%s", e.baseURL, model, e.apiKey)
	var resp googleBatchResponse
	if err := postJSON(ctx, e.client, e.policy, "google", url, batch, &resp); err != nil {
		return nil, err
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		out[i] = emb.Values
	}
	if err := checkShape("google", out, len(texts), e.dims); err != nil {
		return nil, err
	}
	return out, nil
}
