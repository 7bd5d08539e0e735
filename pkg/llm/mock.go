package llm

import (
	"context"
)

// MockGenerationClient is a configurable mock for testing generation
// callers. Set the function fields to control behavior in tests.
type MockGenerationClient struct {
	// GenerateTextFunc is called when GenerateText is invoked.
	// If nil, returns empty string and nil error.
	GenerateTextFunc func(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// StreamTextFunc is called when StreamText is invoked.
	// If nil, returns nil without sending anything.
	StreamTextFunc func(ctx context.Context, prompt string, systemMessage string, temperature float64, chunks chan<- string) error

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	// Call tracking for verification
	GenerateTextCalls int
	StreamTextCalls   int
}

// NewMockGenerationClient creates a new mock with sensible defaults.
func NewMockGenerationClient() *MockGenerationClient {
	return &MockGenerationClient{
		ModelName: "mock-model",
	}
}

// GenerateText implements GenerationClient.
func (m *MockGenerationClient) GenerateText(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error) {
	m.GenerateTextCalls++
	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, prompt, systemMessage, temperature)
	}
	return "", nil
}

// StreamText implements GenerationClient.
func (m *MockGenerationClient) StreamText(ctx context.Context, prompt string, systemMessage string, temperature float64, chunks chan<- string) error {
	m.StreamTextCalls++
	if m.StreamTextFunc != nil {
		return m.StreamTextFunc(ctx, prompt, systemMessage, temperature, chunks)
	}
	return nil
}

// Model implements GenerationClient.
func (m *MockGenerationClient) Model() string {
	return m.ModelName
}

var _ GenerationClient = (*MockGenerationClient)(nil)
