// Package retry re-executes fallible operations with exponential backoff,
// limited to a fixed budget and only for transient failures.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/codementor-ai/codementor/internal/ai/gateway"
)

// Config holds the retry budget. Delays follow BaseDelay * 2^attempt.
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultConfig returns the standard budget: one initial attempt plus three
// retries at 1s, 2s, 4s.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  time.Second,
	}
}

// Transient substrings for errors that carry no classified kind.
var retryablePatterns = []string{
	"rate limit",
	"quota",
	"timeout",
	"network",
	"connection",
}

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	var gerr *gateway.Error
	if errors.As(err, &gerr) && gerr.Kind.Retryable() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// budget is exhausted. The last error is returned verbatim. Waiting between
// attempts respects ctx cancellation.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !Retryable(err) {
			return err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		delay := cfg.BaseDelay * (1 << attempt)
		slog.Warn("retryable error, backing off",
			"attempt", attempt+1,
			"delay", delay.String(),
			"error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
