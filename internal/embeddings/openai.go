package embeddings

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ziadkadry99/flinsight/internal/resilience"
)

const maxBatchSize = 100

// OpenAIModel represents a supported OpenAI embedding model.
type OpenAIModel string

const (
	ModelTextEmbedding3Small OpenAIModel = "text-embedding-3-small"
	ModelTextEmbedding3Large OpenAIModel = "text-embedding-3-large"
)

// OpenAIEmbedder generates embeddings using OpenAI's API. The text-embedding-3
// models are asked to shorten their output to the configured dimensions.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      OpenAIModel
	dimensions int
	policy     resilience.Policy
}

// NewOpenAIEmbedder creates a new OpenAI embedder with the given API key and model.
// baseURL overrides the API endpoint when non-empty.
func NewOpenAIEmbedder(apiKey string, model OpenAIModel, dimensions int, baseURL string, policy resilience.Policy) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		dimensions: dimensions,
		policy:     policy,
	}
}

func (e *OpenAIEmbedder) Name() string {
	return string(e.model)
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	allEmbeddings := make([][]float32, 0, len(texts))

	// Batch up to maxBatchSize texts per API call
	for i := 0; i < len(texts); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[i:end]

		var resp openai.EmbeddingResponse
		err := resilience.Do(ctx, e.policy, func(ctx context.Context) error {
			var err error
			resp, err = e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
				Input:      batch,
				Model:      openai.EmbeddingModel(e.model),
				Dimensions: e.dimensions,
			})
			return asStatusError(err)
		})
		if err != nil {
			return nil, unavailable("openai", err)
		}

		vectors := make([][]float32, len(resp.Data))
		for j, emb := range resp.Data {
			vectors[j] = emb.Embedding
		}
		if err := checkShape("openai", vectors, len(batch), e.dimensions); err != nil {
			return nil, err
		}
		allEmbeddings = append(allEmbeddings, vectors...)
	}

	return allEmbeddings, nil
}

// asStatusError exposes the HTTP status of go-openai errors to the retry policy.
func asStatusError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return fmt.Errorf("%w: %w", &resilience.StatusError{Service: "openai", StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return fmt.Errorf("%w: %w", &resilience.StatusError{Service: "openai", StatusCode: reqErr.HTTPStatusCode}, err)
	}
	return err
}
