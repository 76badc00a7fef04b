package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ziadkadry99/flinsight/internal/resilience"
)

const openAIDefaultMax = 4096

// OpenAIProvider implements Provider on top of go-openai. Schemas are
// described in a system message. JSON mode is only requested for objects,
// since it cannot produce a top-level array.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	opts   options
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey string, model string, opts ...Option) *OpenAIProvider {
	o := buildOptions("", opts)
	cfg := openai.DefaultConfig(apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	cfg.HTTPClient = o.client
	return &OpenAIProvider{client: openai.NewClientWithConfig(cfg), model: model, opts: o}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	chat := p.chatRequest(req)

	var resp openai.ChatCompletionResponse
	err := resilience.Do(ctx, p.opts.policy, func(ctx context.Context) error {
		var err error
		resp, err = p.client.CreateChatCompletion(ctx, chat)
		return asStatusError(err)
	})
	if err != nil {
		return nil, err
	}

	out := &CompletionResponse{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
	}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
		out.FinishReason = string(resp.Choices[0].FinishReason)
	}
	return out, nil
}

func (p *OpenAIProvider) chatRequest(req CompletionRequest) openai.ChatCompletionRequest {
	chat := openai.ChatCompletionRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	}
	if chat.Model == "" {
		chat.Model = p.model
	}
	if chat.MaxTokens == 0 {
		chat.MaxTokens = openAIDefaultMax
	}
	for _, m := range req.Messages {
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	if req.ResponseSchema != nil {
		schema, _ := json.Marshal(req.ResponseSchema.JSONSchema())
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: fmt.Sprintf("Reply with JSON only, matching this schema:\n%s", schema),
		})
	}
	if req.JSONMode || (req.ResponseSchema != nil && req.ResponseSchema.Type == TypeObject) {
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	return chat
}

// asStatusError exposes the HTTP status of go-openai errors so the retry
// policy can classify them.
func asStatusError(err error) error {
	if err == nil {
		return nil
	}
	status, body := 0, ""
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status, body = apiErr.HTTPStatusCode, apiErr.Message
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status == 0 {
		return err
	}
	return fmt.Errorf("%w: %w", &resilience.StatusError{Service: "openai", StatusCode: status, Body: body}, err)
}
