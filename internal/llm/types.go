package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_model.go -package=mocks docchat/internal/llm Model,Embedder

import "context"

// Message roles. The system role is injected at prompt-assembly time only and
// is never persisted.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Model is the opaque chat-model capability: one blocking call returning the
// full text, or a streaming call yielding incremental deltas via callback.
// A stream is finite and not restartable.
type Model interface {
	// Invoke sends the messages and returns the complete reply.
	Invoke(ctx context.Context, messages []Message) (string, error)
	// Stream sends the messages and delivers reply deltas via callback.
	// A callback error aborts the stream and is returned.
	Stream(ctx context.Context, messages []Message, callback func(delta string) error) error
}

// Embedder converts text into fixed-length vectors. The API key is forwarded
// per call because credentials arrive with each request rather than at
// process start.
type Embedder interface {
	// EmbedTexts embeds a batch of texts, one vector per input.
	EmbedTexts(ctx context.Context, texts []string, apiKey string) ([][]float32, error)
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string, apiKey string) ([]float32, error)
}
