package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codementor-ai/codementor/internal/ai/tokens"
)

type fakeChatClient struct {
	lastReq  openai.ChatCompletionRequest
	response string
	err      error
	delay    time.Duration
}

func (f *fakeChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return openai.ChatCompletionResponse{}, ctx.Err()
		}
	}
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.response}},
		},
	}, nil
}

func testGateway(api ChatClient) *Client {
	return NewWithClient(api, Config{
		Model:       "gpt-3.5-turbo",
		MaxTokens:   2000,
		Temperature: 0.7,
		Timeout:     time.Second,
	}, tokens.NewAccountant("gpt-3.5-turbo", nil))
}

func TestGenerateText(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		api := &fakeChatClient{response: "generated output"}
		gw := testGateway(api)

		got, err := gw.GenerateText(context.Background(), "do the thing", "you are a bot", GenerateParams{})
		require.NoError(t, err)
		assert.Equal(t, "generated output", got)

		require.Len(t, api.lastReq.Messages, 2)
		assert.Equal(t, openai.ChatMessageRoleSystem, api.lastReq.Messages[0].Role)
		assert.Equal(t, "you are a bot", api.lastReq.Messages[0].Content)
		assert.Equal(t, openai.ChatMessageRoleUser, api.lastReq.Messages[1].Role)
		assert.Equal(t, 2000, api.lastReq.MaxTokens)
		assert.Equal(t, float32(0.7), api.lastReq.Temperature)
	})

	t.Run("NoSystemMessage", func(t *testing.T) {
		api := &fakeChatClient{response: "ok"}
		gw := testGateway(api)

		_, err := gw.GenerateText(context.Background(), "hi", "", GenerateParams{})
		require.NoError(t, err)
		require.Len(t, api.lastReq.Messages, 1)
		assert.Equal(t, openai.ChatMessageRoleUser, api.lastReq.Messages[0].Role)
	})

	t.Run("ParamOverrides", func(t *testing.T) {
		api := &fakeChatClient{response: "ok"}
		gw := testGateway(api)

		temp := float32(0.2)
		_, err := gw.GenerateText(context.Background(), "hi", "", GenerateParams{MaxTokens: 300, Temperature: &temp})
		require.NoError(t, err)
		assert.Equal(t, 300, api.lastReq.MaxTokens)
		assert.Equal(t, float32(0.2), api.lastReq.Temperature)
	})

	t.Run("UpstreamErrorClassified", func(t *testing.T) {
		api := &fakeChatClient{err: errors.New("rate limit exceeded")}
		gw := testGateway(api)

		_, err := gw.GenerateText(context.Background(), "hi", "", GenerateParams{})
		var gerr *Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, KindRateLimit, gerr.Kind)
	})

	t.Run("DeadlineBecomesTimeout", func(t *testing.T) {
		api := &fakeChatClient{response: "ok", delay: 5 * time.Second}
		gw := NewWithClient(api, Config{
			Model:     "gpt-3.5-turbo",
			MaxTokens: 2000,
			Timeout:   20 * time.Millisecond,
		}, tokens.NewAccountant("gpt-3.5-turbo", nil))

		_, err := gw.GenerateText(context.Background(), "hi", "", GenerateParams{})
		var gerr *Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, KindTimeout, gerr.Kind)
	})

	t.Run("EmptyChoices", func(t *testing.T) {
		api := &emptyChoicesClient{}
		gw := testGateway(api)

		_, err := gw.GenerateText(context.Background(), "hi", "", GenerateParams{})
		var gerr *Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, KindUpstream, gerr.Kind)
		assert.Contains(t, gerr.Error(), "no response generated")
	})
}

type emptyChoicesClient struct{}

func (c *emptyChoicesClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{}, nil
}

func TestHealthCheck(t *testing.T) {
	api := &fakeChatClient{response: "Hi there"}
	gw := testGateway(api)

	require.NoError(t, gw.HealthCheck(context.Background()))
	assert.Equal(t, 5, api.lastReq.MaxTokens)

	api.err = errors.New("authentication failed")
	assert.Error(t, gw.HealthCheck(context.Background()))
}
