package providers

import "context"

// Message is a single conversation message sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the provider-agnostic completion request. Each
// adapter transforms it to its provider's wire format.
type CompletionRequest struct {
	// Model is the model identifier (e.g. "claude-3-5-haiku-20241022",
	// "gpt-4o-mini").
	Model string `json:"model"`

	// MaxTokens caps the length of the generated response.
	MaxTokens int `json:"max_tokens"`

	// Temperature controls randomness. Lower values give more
	// deterministic output.
	Temperature float64 `json:"temperature"`

	// Messages is the conversation to complete.
	Messages []Message `json:"messages"`
}

// Client is the minimal provider surface the analyzer depends on.
//
// Complete sends a completion request and returns the response text with
// the provider-specific envelope already stripped. Implementations must
// honor context cancellation.
type Client interface {
	// Complete sends the request and returns the generated text content.
	Complete(ctx context.Context, req *CompletionRequest) (string, error)

	// Name returns the provider name ("anthropic" or "openai").
	Name() string
}
