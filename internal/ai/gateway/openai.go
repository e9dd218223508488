// Package gateway wraps the upstream text-generation provider: it applies the
// configured deadline, classifies provider failures into a small taxonomy, and
// exposes a health probe.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/codementor-ai/codementor/internal/ai/tokens"
)

// ChatClient is the slice of the OpenAI client the gateway needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config holds the generation defaults for the upstream model.
type Config struct {
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// GenerateParams overrides the configured defaults for a single call.
// Zero values mean "use the default".
type GenerateParams struct {
	MaxTokens   int
	Temperature *float32
}

// Client is the model gateway.
type Client struct {
	api     ChatClient
	cfg     Config
	counter *tokens.Accountant
}

// New creates a gateway backed by the OpenAI API.
func New(apiKey string, cfg Config, counter *tokens.Accountant) *Client {
	return NewWithClient(openai.NewClient(apiKey), cfg, counter)
}

// NewWithClient creates a gateway over an existing chat client.
func NewWithClient(api ChatClient, cfg Config, counter *tokens.Accountant) *Client {
	return &Client{api: api, cfg: cfg, counter: counter}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.cfg.Model }

// GenerateText sends one prompt (with an optional system message) to the
// provider and returns the generated text. Failures come back as *Error.
func (c *Client) GenerateText(ctx context.Context, prompt, systemMessage string, params GenerateParams) (string, error) {
	var messages []openai.ChatCompletionMessage
	if systemMessage != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemMessage,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	counted := make([]tokens.Message, len(messages))
	for i, m := range messages {
		counted[i] = tokens.Message{Role: m.Role, Content: m.Content}
	}
	if inputTokens := c.counter.CountMessagesTokens(counted); float64(inputTokens) > float64(c.cfg.MaxTokens)*0.8 {
		slog.Warn("input token count is high, may exceed limits",
			"input_tokens", inputTokens,
			"max_tokens", c.cfg.MaxTokens)
	}

	maxTokens := c.cfg.MaxTokens
	if params.MaxTokens > 0 {
		maxTokens = params.MaxTokens
	}
	temperature := c.cfg.Temperature
	if params.Temperature != nil {
		temperature = *params.Temperature
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			return "", &Error{
				Kind: KindTimeout,
				Err:  fmt.Errorf("AI request timeout after %s", c.cfg.Timeout),
			}
		}
		return "", Classify(fmt.Errorf("AI service error: %w", err))
	}

	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindUpstream, Message: "no response generated from AI service"}
	}

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck issues a minimal generation call and returns nil when the
// provider answered.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.GenerateText(ctx, "Hello", "", GenerateParams{MaxTokens: 5})
	return err
}
