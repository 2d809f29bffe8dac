package resilience

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a request failure into exactly one category. The
// classification fixes retryability: the executor never retries a kind
// marked non-retryable even when retries remain.
type Kind string

const (
	// KindConnection covers connection refused/reset and DNS failures.
	KindConnection Kind = "connection"
	// KindTimeout covers elapsed connect or read deadlines.
	KindTimeout Kind = "timeout"
	// KindRateLimited covers HTTP 429 responses from the server.
	KindRateLimited Kind = "rate_limited"
	// KindClient covers HTTP 4xx responses other than 408/429; retrying a
	// caller mistake will not help.
	KindClient Kind = "client"
	// KindServer covers HTTP 5xx responses.
	KindServer Kind = "server"
	// KindParse covers 2xx responses whose body fails to decode.
	KindParse Kind = "parse"
	// KindCancelled covers cooperative cancellation by the caller.
	KindCancelled Kind = "cancelled"
)

// RequestError is the typed failure surfaced by the execution core. It
// carries the classified kind, the retryability verdict that was applied,
// and the last concrete failure detail so callers can branch on failure
// category without string matching.
type RequestError struct {
	// Kind is the failure category.
	Kind Kind

	// StatusCode is the HTTP status, 0 for transport-level failures.
	StatusCode int

	// Detail is the human-readable description.
	Detail string

	// Retryable reports the verdict the executor applied to this failure.
	Retryable bool

	// RetryAfter is the server-requested delay from a 429 Retry-After
	// header, 0 when absent.
	RetryAfter time.Duration

	// Body is the raw response body for HTTP-status failures, nil
	// otherwise. Callers fold API error payloads into their own messages.
	Body []byte

	// Cause is the underlying transport error, if any.
	Cause error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	msg := fmt.Sprintf("%s error", e.Kind)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s [HTTP %d]", msg, e.StatusCode)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// KindOf returns the classified kind of err, or "" when err is not a
// RequestError.
func KindOf(err error) Kind {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

// IsRetryable reports whether err was classified as retryable.
func IsRetryable(err error) bool {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Retryable
	}
	return false
}

// ParseFailure wraps a body-decoding error as a non-retryable parse
// failure. Decoding happens at the call-site after a successful exchange,
// so classification is exposed here rather than in Classify.
func ParseFailure(err error) *RequestError {
	return &RequestError{
		Kind:      KindParse,
		Detail:    fmt.Sprintf("invalid response body: %v", err),
		Retryable: false,
		Cause:     err,
	}
}
