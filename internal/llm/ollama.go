package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// OllamaProvider talks to a local Ollama server over /api/chat. Structured
// requests pass the JSON Schema through the "format" field.
type OllamaProvider struct {
	model string
	opts  options
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(baseURL string, model string, opts ...Option) *OllamaProvider {
	return &OllamaProvider{
		model: model,
		opts:  buildOptions(strings.TrimRight(baseURL, "/"), opts),
	}
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

type ollamaChat struct {
	Model    string       `json:"model"`
	Messages []ollamaTurn `json:"messages"`
	Stream   bool         `json:"stream"`
	Format   any          `json:"format,omitempty"`
	Options  struct {
		Temperature float64 `json:"temperature,omitempty"`
		NumPredict  int     `json:"num_predict,omitempty"`
	} `json:"options"`
}

type ollamaTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type ollamaReply struct {
	Model   string `json:"model"`
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	DoneReason      string `json:"done_reason"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	Error           string `json:"error"`
}

func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	chat := ollamaChat{Model: req.Model}
	for _, m := range req.Messages {
		chat.Messages = append(chat.Messages, ollamaTurn{Role: m.Role, Content: m.Content})
	}
	if chat.Model == "" {
		chat.Model = p.model
	}
	chat.Options.Temperature = req.Temperature
	chat.Options.NumPredict = req.MaxTokens
	if req.ResponseSchema != nil {
		chat.Format = req.ResponseSchema.JSONSchema()
	} else if req.JSONMode {
		chat.Format = "json"
	}

	body, err := postJSON(ctx, p.opts, "ollama", p.opts.baseURL+"/api/chat", nil, chat)
	if err != nil {
		return nil, err
	}

	var reply ollamaReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ollama response: %w", err)
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", reply.Error)
	}
	return &CompletionResponse{
		Content:      reply.Message.Content,
		InputTokens:  reply.PromptEvalCount,
		OutputTokens: reply.EvalCount,
		Model:        reply.Model,
		FinishReason: reply.DoneReason,
	}, nil
}
