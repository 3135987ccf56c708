package llms

import "context"

// Chat roles used on the wire (OpenAI-compatible APIs).
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a chat-completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is a synchronous chat-completion backend.
//
// Generate performs exactly one API call per invocation: failures are
// returned to the caller, never retried here. The int return is the
// total token usage reported by the backend (0 when unavailable).
type Provider interface {
	Generate(ctx context.Context, messages []Message) (string, int, error)
	ModelName() string
}
