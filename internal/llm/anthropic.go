package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	anthropicAPIURL       = "https://api.anthropic.com/v1/messages"
	anthropicVersion      = "2023-06-01"
	anthropicDefaultMax   = 4096
	anthropicSchemaPrompt = "Respond with JSON only, no prose and no code fences. The JSON must match this schema:\n%s"
)

// AnthropicProvider implements Provider using the Anthropic Messages API.
// The API has no JSON mode: structured requests carry the schema in the
// system prompt and prefill the assistant turn with the opening bracket.
type AnthropicProvider struct {
	apiKey string
	model  string
	opts   options
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey string, model string, opts ...Option) *AnthropicProvider {
	return &AnthropicProvider{
		apiKey: apiKey,
		model:  model,
		opts:   buildOptions(anthropicAPIURL, opts),
	}
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	apiReq, prefill := p.buildRequest(req)

	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicVersion,
	}
	respBody, err := postJSON(ctx, p.opts, "anthropic", p.opts.baseURL, headers, apiReq)
	if err != nil {
		return nil, err
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal anthropic response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("anthropic API error (%s): %s", apiResp.Error.Type, apiResp.Error.Message)
	}

	var sb strings.Builder
	sb.WriteString(prefill)
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return &CompletionResponse{
		Content:      sb.String(),
		InputTokens:  apiResp.Usage.InputTokens,
		OutputTokens: apiResp.Usage.OutputTokens,
		Model:        apiResp.Model,
		FinishReason: apiResp.StopReason,
	}, nil
}

// buildRequest maps req onto the Messages API. System messages are joined
// into the system prompt. For structured requests it also returns the text
// used to prefill the assistant turn, which the answer continues.
func (p *AnthropicProvider) buildRequest(req CompletionRequest) (anthropicRequest, string) {
	apiReq := anthropicRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if apiReq.Model == "" {
		apiReq.Model = p.model
	}
	if apiReq.MaxTokens == 0 {
		apiReq.MaxTokens = anthropicDefaultMax
	}

	var system []string
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, msg.Content)
		case RoleUser, RoleAssistant:
			apiReq.Messages = append(apiReq.Messages, anthropicMessage{Role: string(msg.Role), Content: msg.Content})
		}
	}

	var prefill string
	switch {
	case req.ResponseSchema != nil:
		schema, _ := json.MarshalIndent(req.ResponseSchema.JSONSchema(), "", "  ")
		system = append(system, fmt.Sprintf(anthropicSchemaPrompt, schema))
		prefill = "{"
		if req.ResponseSchema.Type == TypeArray {
			prefill = "["
		}
	case req.JSONMode:
		system = append(system, "Respond with a single JSON object only, no prose and no code fences.")
		prefill = "{"
	}
	if prefill != "" {
		apiReq.Messages = append(apiReq.Messages, anthropicMessage{Role: "assistant", Content: prefill})
	}

	apiReq.System = strings.Join(system, "\n\n")
	return apiReq, prefill
}
