package llm

import "errors"

// ErrMalformedOutput is returned when a model answer cannot be parsed into
// the requested shape.
var ErrMalformedOutput = errors.New("malformed model output")

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest contains the parameters for an LLM completion request.
// ResponseSchema implies JSONMode; providers without schema support fall
// back to plain JSON mode.
type CompletionRequest struct {
	Model          string
	Messages       []Message
	MaxTokens      int
	Temperature    float64
	JSONMode       bool
	ResponseSchema *Schema
}

// CompletionResponse contains the result of an LLM completion request.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}
