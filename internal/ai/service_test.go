package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codementor-ai/codementor/internal/ai/cache"
	"github.com/codementor-ai/codementor/internal/ai/gateway"
	"github.com/codementor-ai/codementor/internal/ai/monitor"
	"github.com/codementor-ai/codementor/internal/ai/retry"
	"github.com/codementor-ai/codementor/internal/ai/tokens"
)

type fakeGenerator struct {
	calls        int
	healthCalls  int
	lastPrompt   string
	lastSystem   string
	lastParams   gateway.GenerateParams
	response     string
	err          error
	healthErr    error
	responseFunc func(prompt string) string
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt, systemMessage string, params gateway.GenerateParams) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastSystem = systemMessage
	f.lastParams = params
	if f.err != nil {
		return "", f.err
	}
	if f.responseFunc != nil {
		return f.responseFunc(prompt), nil
	}
	return f.response, nil
}

func (f *fakeGenerator) HealthCheck(ctx context.Context) error {
	f.healthCalls++
	return f.healthErr
}

type memStore struct {
	values map[string]string
	setErr error
	getErr error
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (s *memStore) Get(ctx context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.values[key]
	if !ok {
		return "", errors.New("key not found")
	}
	return v, nil
}

func (s *memStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

func testConfig() Config {
	return Config{
		Model:       "gpt-3.5-turbo",
		MaxTokens:   2000,
		Temperature: 0.7,
		Timeout:     60 * time.Second,
	}
}

func newTestService(gen TextGenerator, store cache.Store) *Service {
	var c *cache.Cache
	if store != nil {
		c = cache.New(store)
	}
	svc := NewService(gen, c, tokens.NewAccountant("gpt-3.5-turbo", nil), monitor.NewMetrics(), testConfig())
	svc.retry = retry.Config{MaxRetries: 3, BaseDelay: time.Millisecond}
	return svc
}

func TestGenerateCode(t *testing.T) {
	gen := &fakeGenerator{response: "func Add(a, b int) int { return a + b }"}
	svc := newTestService(gen, newMemStore())

	result, err := svc.GenerateCode(context.Background(), GenerateCodeRequest{
		Description: "add two numbers",
		Language:    "go",
		UserID:      "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, gen.response, result.GeneratedCode)
	assert.Equal(t, "go", result.Language)
	assert.Equal(t, "add two numbers", result.Description)
	assert.Equal(t, "gpt-3.5-turbo", result.Metadata.Model)
	assert.Equal(t, result.Metadata.InputTokens+result.Metadata.OutputTokens, result.Metadata.TotalTokens)
	assert.Greater(t, result.Metadata.InputTokens, 0)

	s := svc.Metrics()
	assert.Equal(t, int64(1), s.TotalRequests)
	assert.Equal(t, int64(1), s.SuccessfulRequests)
}

func TestGenerateCodeNeverCached(t *testing.T) {
	gen := &fakeGenerator{response: "code"}
	svc := newTestService(gen, newMemStore())
	req := GenerateCodeRequest{Description: "same request", UserID: "user-1"}

	_, err := svc.GenerateCode(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.GenerateCode(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, gen.calls)
}

func TestExplainCode(t *testing.T) {
	t.Run("CacheHitSkipsGeneration", func(t *testing.T) {
		gen := &fakeGenerator{response: "this code adds numbers"}
		svc := newTestService(gen, newMemStore())
		req := ExplainCodeRequest{Code: "a + b", UserID: "user-1"}

		first, err := svc.ExplainCode(context.Background(), req)
		require.NoError(t, err)

		second, err := svc.ExplainCode(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, 1, gen.calls)
		assert.Equal(t, first.Explanation, second.Explanation)

		s := svc.Metrics()
		assert.Equal(t, int64(2), s.TotalRequests)
		assert.Equal(t, int64(1), s.CacheHits)
	})

	t.Run("ModifiersChangeCacheKey", func(t *testing.T) {
		gen := &fakeGenerator{response: "explanation"}
		svc := newTestService(gen, newMemStore())

		_, err := svc.ExplainCode(context.Background(), ExplainCodeRequest{Code: "a + b", TargetAudience: "beginner"})
		require.NoError(t, err)
		_, err = svc.ExplainCode(context.Background(), ExplainCodeRequest{Code: "a + b", TargetAudience: "expert"})
		require.NoError(t, err)

		assert.Equal(t, 2, gen.calls)
	})

	t.Run("FailingCacheStillSucceeds", func(t *testing.T) {
		gen := &fakeGenerator{response: "explanation"}
		store := newMemStore()
		store.getErr = errors.New("redis down")
		store.setErr = errors.New("redis down")
		svc := newTestService(gen, store)

		result, err := svc.ExplainCode(context.Background(), ExplainCodeRequest{Code: "a + b"})
		require.NoError(t, err)
		assert.Equal(t, "explanation", result.Explanation)
	})

	t.Run("NilCache", func(t *testing.T) {
		gen := &fakeGenerator{response: "explanation"}
		svc := newTestService(gen, nil)

		result, err := svc.ExplainCode(context.Background(), ExplainCodeRequest{Code: "a + b"})
		require.NoError(t, err)
		assert.Equal(t, "explanation", result.Explanation)
	})
}

func TestReviewCode(t *testing.T) {
	gen := &fakeGenerator{response: "looks fine"}
	svc := newTestService(gen, newMemStore())

	result, err := svc.ReviewCode(context.Background(), ReviewCodeRequest{
		Code:       "a + b",
		ReviewType: "security",
	})
	require.NoError(t, err)
	assert.Equal(t, "looks fine", result.Review)
	assert.Equal(t, "security", result.ReviewType)
	assert.Contains(t, gen.lastPrompt, "Review Type: security")
}

func TestOperationErrorTranslation(t *testing.T) {
	tests := []struct {
		name        string
		genErr      error
		wantKind    gateway.Kind
		wantMessage string
	}{
		{
			"RateLimit",
			&gateway.Error{Kind: gateway.KindRateLimit, Err: errors.New("429")},
			gateway.KindRateLimit,
			"AI service rate limit exceeded. Please try again later.",
		},
		{
			"Timeout",
			&gateway.Error{Kind: gateway.KindTimeout, Err: errors.New("deadline")},
			gateway.KindTimeout,
			"AI service request timed out. Please try again.",
		},
		{
			"Authentication",
			&gateway.Error{Kind: gateway.KindAuthentication, Err: errors.New("bad key")},
			gateway.KindAuthentication,
			"AI service authentication failed. Please check configuration.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{err: tt.genErr}
			svc := newTestService(gen, newMemStore())

			_, err := svc.GenerateCode(context.Background(), GenerateCodeRequest{Description: "x"})
			require.Error(t, err)

			var gerr *gateway.Error
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, tt.wantKind, gerr.Kind)
			assert.Equal(t, tt.wantMessage, gerr.Error())
		})
	}

	t.Run("UpstreamKeepsDetail", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("something odd")}
		svc := newTestService(gen, newMemStore())

		_, err := svc.GenerateCode(context.Background(), GenerateCodeRequest{Description: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Failed to generate code")
		assert.Contains(t, err.Error(), "something odd")
		// non-retryable upstream errors stop after the first attempt
		assert.Equal(t, 1, gen.calls)
	})

	t.Run("RetryableErrorExhaustsBudget", func(t *testing.T) {
		gen := &fakeGenerator{err: &gateway.Error{Kind: gateway.KindRateLimit, Err: errors.New("429")}}
		svc := newTestService(gen, newMemStore())

		_, err := svc.GenerateCode(context.Background(), GenerateCodeRequest{Description: "x"})
		require.Error(t, err)
		assert.Equal(t, 4, gen.calls)

		s := svc.Metrics()
		assert.Equal(t, int64(1), s.FailedRequests)
	})
}

func TestHealthCheck(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		gen := &fakeGenerator{}
		svc := newTestService(gen, newMemStore())

		status := svc.HealthCheck(context.Background())
		assert.Equal(t, "healthy", status.Status)
		assert.Equal(t, ServiceName, status.Service)
		assert.Equal(t, "gpt-3.5-turbo", status.Model)
		require.NotNil(t, status.MaxTokens)
		assert.Equal(t, 2000, *status.MaxTokens)
		assert.Empty(t, status.Error)
	})

	t.Run("Unhealthy", func(t *testing.T) {
		gen := &fakeGenerator{healthErr: errors.New("authentication failed")}
		svc := newTestService(gen, newMemStore())

		status := svc.HealthCheck(context.Background())
		assert.Equal(t, "unhealthy", status.Status)
		assert.Contains(t, status.Error, "authentication failed")
		assert.Nil(t, status.MaxTokens)
	})

	t.Run("Cached", func(t *testing.T) {
		gen := &fakeGenerator{}
		svc := newTestService(gen, newMemStore())

		svc.HealthCheck(context.Background())
		svc.HealthCheck(context.Background())
		assert.Equal(t, 1, gen.healthCalls)
	})
}

func TestContextInfo(t *testing.T) {
	svc := newTestService(&fakeGenerator{}, newMemStore())

	info := svc.ContextInfo(context.Background())
	assert.Equal(t, "gpt-3.5-turbo", info.Model)
	assert.Equal(t, 2000, info.MaxTokens)
	assert.Equal(t, float32(0.7), info.Temperature)
	assert.Equal(t, 60.0, info.Timeout)
	assert.ElementsMatch(t, []string{
		"generate_code",
		"explain_code",
		"review_code",
		"generate_questions",
		"generate_answer_explanation",
	}, info.AvailableOperations)
}
