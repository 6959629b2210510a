// Package brain talks to the text-generation backend used for title
// translation and article summarization. The backend is opaque: a
// prompt goes in, a completion comes out.
package brain

import "context"

// Provider is the interface for text backends.
type Provider interface {
	// Name returns the provider name (e.g., "gemini")
	Name() string

	// Available returns true if the provider is configured and ready
	Available() bool

	// Generate sends a prompt and returns the response
	Generate(ctx context.Context, req Request) (Response, error)
}

// Request is a prompt request to a provider.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// Response is the provider's completion.
type Response struct {
	Content string
	Model   string
}
