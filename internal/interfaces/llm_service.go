package interfaces

import (
	"context"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user" or "assistant"
	Role string

	// Content contains the text content of the message
	Content string
}

// LLMService defines the interface for text generation. Implementations
// wrap cloud providers (Anthropic, Google).
type LLMService interface {
	// Chat generates a completion from the conversation history. The
	// system prompt carries the grounding context for the media item.
	Chat(ctx context.Context, system string, messages []Message) (string, error)

	// HealthCheck verifies the provider is configured and reachable
	HealthCheck(ctx context.Context) error

	// GetProviderName returns the provider identifier ("claude", "gemini")
	GetProviderName() string
}
