package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Classify maps the outcome of one attempt to a typed failure, or nil for
// success. Exactly one of err or (statusCode, header, body) describes the
// outcome: err covers transport-level failures, the rest an HTTP exchange
// that completed.
func Classify(statusCode int, header http.Header, body []byte, err error) *RequestError {
	if err != nil {
		return classifyTransport(err)
	}
	return classifyStatus(statusCode, header, body)
}

func classifyTransport(err error) *RequestError {
	if errors.Is(err, context.Canceled) {
		return &RequestError{
			Kind:      KindCancelled,
			Detail:    "request cancelled",
			Retryable: false,
			Cause:     err,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &RequestError{
			Kind:      KindTimeout,
			Detail:    "request deadline exceeded",
			Retryable: true,
			Cause:     err,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &RequestError{
			Kind:      KindTimeout,
			Detail:    err.Error(),
			Retryable: true,
			Cause:     err,
		}
	}

	// url.Error wraps the interesting transport error.
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		re := classifyTransport(urlErr.Err)
		re.Cause = err
		return re
	}

	// Remaining transport failures (refused, reset, DNS) are treated as
	// plausibly transient connection problems.
	return &RequestError{
		Kind:      KindConnection,
		Detail:    err.Error(),
		Retryable: true,
		Cause:     err,
	}
}

func classifyStatus(statusCode int, header http.Header, body []byte) *RequestError {
	switch {
	case statusCode < 400:
		return nil

	case statusCode == http.StatusTooManyRequests:
		return &RequestError{
			Kind:       KindRateLimited,
			StatusCode: statusCode,
			Detail:     "rate limited by server",
			Retryable:  true,
			RetryAfter: parseRetryAfter(header),
			Body:       body,
		}

	case statusCode == http.StatusRequestTimeout:
		return &RequestError{
			Kind:       KindTimeout,
			StatusCode: statusCode,
			Detail:     "request timed out at server",
			Retryable:  true,
			Body:       body,
		}

	case statusCode >= 500:
		return &RequestError{
			Kind:       KindServer,
			StatusCode: statusCode,
			Detail:     fmt.Sprintf("HTTP %d %s", statusCode, http.StatusText(statusCode)),
			Retryable:  true,
			Body:       body,
		}

	default:
		return &RequestError{
			Kind:       KindClient,
			StatusCode: statusCode,
			Detail:     fmt.Sprintf("HTTP %d %s", statusCode, http.StatusText(statusCode)),
			Retryable:  false,
			Body:       body,
		}
	}
}

// parseRetryAfter extracts the Retry-After header value. Supports both
// delay-seconds and HTTP-date formats; returns 0 when missing or invalid.
func parseRetryAfter(header http.Header) time.Duration {
	if header == nil {
		return 0
	}
	v := strings.TrimSpace(header.Get("Retry-After"))
	if v == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}

	return 0
}
