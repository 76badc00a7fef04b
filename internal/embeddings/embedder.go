package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ziadkadry99/flinsight/internal/resilience"
)

// DefaultDimensions matches all-MiniLM-L6-v2 and the models configured to emulate it.
const DefaultDimensions = 384

// ErrUnavailable reports that the embedding service could not be reached or
// refused the request. Callers degrade instead of treating it as "no matches".
var ErrUnavailable = errors.New("embedding service unavailable")

// ErrShape reports a response whose vector count or width is wrong.
var ErrShape = errors.New("embedding response has unexpected shape")

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed returns one vector per text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}

// postJSON sends body to url under policy and decodes the reply into out.
// Any failure, including a non-200 status, is wrapped in ErrUnavailable.
func postJSON(ctx context.Context, client *http.Client, policy resilience.Policy, provider, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", provider, err)
	}
	err = resilience.Do(ctx, policy, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return &resilience.StatusError{Service: provider, StatusCode: resp.StatusCode, Body: string(msg)}
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
	if err != nil {
		return unavailable(provider, err)
	}
	return nil
}

func unavailable(provider string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, provider, err)
}

// checkShape verifies a batch of vectors against the expected count and width.
// A width of zero accepts any consistent width.
func checkShape(provider string, vectors [][]float32, n, dims int) error {
	if len(vectors) != n {
		return fmt.Errorf("%w: %s returned %d embeddings, expected %d", ErrShape, provider, len(vectors), n)
	}
	for i, v := range vectors {
		if len(v) == 0 || (dims > 0 && len(v) != dims) {
			return fmt.Errorf("%w: %s embedding %d has %d dimensions, expected %d", ErrShape, provider, i, len(v), dims)
		}
	}
	return nil
}
