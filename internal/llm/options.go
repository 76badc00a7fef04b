package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ziadkadry99/flinsight/internal/resilience"
)

// Option configures a provider.
type Option func(*options)

type options struct {
	baseURL string
	policy  resilience.Policy
	client  *http.Client
}

// WithBaseURL overrides the provider endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithPolicy sets the timeout and retry policy applied to each call.
func WithPolicy(p resilience.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithHTTPClient sets the HTTP client used by raw-HTTP providers.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

func buildOptions(defaultBaseURL string, opts []Option) options {
	o := options{
		baseURL: defaultBaseURL,
		policy:  resilience.DefaultPolicy(),
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// postJSON sends body as JSON and returns the raw response body. Non-2xx
// responses become a *resilience.StatusError so transient ones are retried.
func postJSON(ctx context.Context, o options, service, url string, headers map[string]string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", service, err)
	}

	var respBody []byte
	err = resilience.Do(ctx, o.policy, func(ctx context.Context) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			httpReq.Header.Set(k, v)
		}

		httpResp, err := o.client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("%s request failed: %w", service, err)
		}
		defer httpResp.Body.Close()

		respBody, err = io.ReadAll(httpResp.Body)
		if err != nil {
			return fmt.Errorf("failed to read %s response: %w", service, err)
		}
		if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
			return &resilience.StatusError{Service: service, StatusCode: httpResp.StatusCode, Body: string(respBody)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return respBody, nil
}
