package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// AnthropicClient streams extended-reasoning output from the Anthropic
// API. The relationship and onboarding analysis endpoints stream this
// thinking text straight to the browser.
type AnthropicClient struct {
	client         *anthropic.Client
	model          string
	maxTokens      int
	thinkingBudget int
	logger         *zap.Logger
}

// NewAnthropicClient creates a client for the given thinking model.
func NewAnthropicClient(apiKey, model string, logger *zap.Logger) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	return &AnthropicClient{
		client:         anthropic.NewClient(apiKey),
		model:          model,
		maxTokens:      4000,
		thinkingBudget: 2048,
		logger:         logger.Named("anthropic"),
	}, nil
}

// StreamThinking streams thinking and answer text to the channel as it
// arrives.
func (c *AnthropicClient) StreamThinking(ctx context.Context, prompt string, chunks chan<- string) error {
	start := time.Now()

	send := func(text string) {
		if text == "" {
			return
		}
		select {
		case chunks <- text:
		case <-ctx.Done():
		}
	}

	_, err := c.client.CreateMessagesStream(ctx, anthropic.MessagesStreamRequest{
		MessagesRequest: anthropic.MessagesRequest{
			Model:     anthropic.Model(c.model),
			MaxTokens: c.maxTokens,
			Messages: []anthropic.Message{
				anthropic.NewUserTextMessage(prompt),
			},
			Thinking: &anthropic.Thinking{
				Type:         anthropic.ThinkingTypeEnabled,
				BudgetTokens: c.thinkingBudget,
			},
		},
		OnContentBlockDelta: func(data anthropic.MessagesEventContentBlockDeltaData) {
			send(data.Delta.Thinking)
			if data.Delta.Text != nil {
				send(*data.Delta.Text)
			}
		},
	})
	if err != nil {
		c.logger.Error("Thinking stream failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return fmt.Errorf("create messages stream: %w", err)
	}

	c.logger.Info("Thinking stream completed",
		zap.String("model", c.model),
		zap.Duration("elapsed", time.Since(start)))

	return ctx.Err()
}
