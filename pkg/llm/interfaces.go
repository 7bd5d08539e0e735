// Package llm provides OpenAI-compatible and Anthropic generation clients.
package llm

import (
	"context"
)

// GenerationClient defines the interface for text generation.
// Structured objects are produced by generating text and running it
// through ParseJSONResponse. Use this interface for dependency injection
// to enable mocking in tests.
type GenerationClient interface {
	// GenerateText generates a single chat completion.
	GenerateText(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// StreamText streams completion chunks to the channel as they arrive.
	// The channel is not closed by the implementation.
	StreamText(ctx context.Context, prompt string, systemMessage string, temperature float64, chunks chan<- string) error

	// Model returns the configured model name.
	Model() string
}

// ThinkingStreamer streams extended-reasoning output. Implemented by the
// Anthropic client; the reasoning endpoints stream this to the browser.
type ThinkingStreamer interface {
	// StreamThinking streams both thinking and answer text to the channel
	// as it arrives. The channel is not closed by the implementation.
	StreamThinking(ctx context.Context, prompt string, chunks chan<- string) error
}

// Ensure implementations satisfy the interfaces at compile time.
var (
	_ GenerationClient = (*Client)(nil)
	_ ThinkingStreamer = (*AnthropicClient)(nil)
)
