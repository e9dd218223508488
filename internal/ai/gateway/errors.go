package gateway

import (
	"errors"
	"strings"
)

// Kind is the classified failure category for an upstream AI call.
type Kind int

const (
	// KindUpstream covers generic provider or network failures.
	KindUpstream Kind = iota
	// KindAuthentication means the provider rejected the credential.
	KindAuthentication
	// KindTimeout means the call exceeded the configured deadline.
	KindTimeout
	// KindRateLimit means the provider signaled quota or throttling.
	KindRateLimit
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindTimeout:
		return "timeout"
	case KindRateLimit:
		return "rate_limit"
	default:
		return "upstream"
	}
}

// Retryable reports whether failures of this kind are expected to be transient.
func (k Kind) Retryable() bool {
	return k == KindRateLimit || k == KindTimeout
}

// Error is a classified upstream failure. Classification happens once, here
// at the gateway boundary; callers switch on Kind instead of re-parsing text.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String() + " error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Ordered substring table; first match wins.
var classifications = []struct {
	substring string
	kind      Kind
}{
	{"rate limit", KindRateLimit},
	{"quota", KindRateLimit},
	{"timeout", KindTimeout},
	{"authentication", KindAuthentication},
	{"api key", KindAuthentication},
}

// Classify wraps err in an *Error with its kind derived from the lowercased
// error message. Already-classified errors pass through unchanged.
func Classify(err error) *Error {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr
	}

	msg := strings.ToLower(err.Error())
	for _, c := range classifications {
		if strings.Contains(msg, c.substring) {
			return &Error{Kind: c.kind, Err: err}
		}
	}
	return &Error{Kind: KindUpstream, Err: err}
}

// KindOf returns the classified kind of any error.
func KindOf(err error) Kind {
	return Classify(err).Kind
}
