package gateway

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"RateLimit", errors.New("rate limit exceeded"), KindRateLimit},
		{"Quota", errors.New("You exceeded your current quota"), KindRateLimit},
		{"Timeout", errors.New("request timeout"), KindTimeout},
		{"Authentication", errors.New("authentication failed"), KindAuthentication},
		{"APIKey", errors.New("incorrect API key provided"), KindAuthentication},
		{"Unknown", errors.New("something broke"), KindUpstream},
		{"CaseInsensitive", errors.New("RATE LIMIT"), KindRateLimit},
		// first match in table order wins
		{"RateLimitBeforeTimeout", errors.New("rate limit timeout"), KindRateLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gerr := Classify(tt.err)
			assert.Equal(t, tt.want, gerr.Kind)
			assert.ErrorIs(t, gerr, tt.err)
		})
	}
}

func TestClassifyPassesThroughClassified(t *testing.T) {
	original := &Error{Kind: KindTimeout, Message: "deadline hit"}
	wrapped := fmt.Errorf("retrying: %w", original)

	assert.Same(t, original, Classify(original))
	assert.Same(t, original, Classify(wrapped))
}

func TestKindRetryable(t *testing.T) {
	assert.True(t, KindRateLimit.Retryable())
	assert.True(t, KindTimeout.Retryable())
	assert.False(t, KindAuthentication.Retryable())
	assert.False(t, KindUpstream.Retryable())
}

func TestErrorMessage(t *testing.T) {
	t.Run("MessageWins", func(t *testing.T) {
		e := &Error{Kind: KindUpstream, Message: "friendly", Err: errors.New("raw")}
		assert.Equal(t, "friendly", e.Error())
	})

	t.Run("FallsBackToWrapped", func(t *testing.T) {
		e := &Error{Kind: KindUpstream, Err: errors.New("raw")}
		assert.Equal(t, "raw", e.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		inner := errors.New("raw")
		e := &Error{Kind: KindUpstream, Err: inner}
		assert.ErrorIs(t, e, inner)
	})
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindRateLimit, KindOf(errors.New("quota reached")))
	assert.Equal(t, KindUpstream, KindOf(errors.New("boom")))
}
