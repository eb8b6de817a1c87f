package interfaces

import (
	"context"
)

// LLMProvider defines the interface for interacting with Large Language Models
type LLMProvider interface {
	// GetName returns the provider name (e.g., "openai", "gemini", "ollama")
	GetName() string

	// GenerateResponse sends one system prompt and one user prompt and
	// returns the raw text of the reply.
	GenerateResponse(ctx context.Context, prompt, systemPrompt string) (string, error)
}
