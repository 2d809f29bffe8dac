package resilience

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/bcra-go/bcra/pkg/resilience"

// Attempt performs exactly one HTTP round trip under ctx and returns the
// raw exchange or a transport-level failure. The core never constructs
// URLs, headers, or bodies; that belongs to the caller.
type Attempt func(ctx context.Context) (*Response, error)

// Response is the raw outcome of one completed HTTP exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// AttemptRecord describes one attempt as introspectable data, so callers
// and tests can assert on executor behavior without parsing logs.
type AttemptRecord struct {
	// Number is the 1-based attempt number.
	Number int

	// Wait is the time spent blocked on the rate limiter.
	Wait time.Duration

	// Delay is the backoff slept before this attempt (0 for the first).
	Delay time.Duration

	// Duration is how long the attempt itself ran.
	Duration time.Duration

	// Kind is the classified failure kind, "" on success.
	Kind Kind

	// Err is the classified failure, nil on success.
	Err *RequestError
}

// Result carries the successful response plus the full attempt history.
// On failure Response is nil and the history ends with the surfaced error.
type Result struct {
	Response *Response
	Attempts []AttemptRecord
}

// Executor composes the rate limiter, timeout policy, retry policy, and
// classifier around a caller-supplied attempt operation. Safe for
// concurrent use: each Execute call owns its own attempt/retry sequence;
// only the injected RateLimiter is shared.
type Executor struct {
	limiter *RateLimiter
	timeout TimeoutConfig
	policy  RetryPolicy
	logger  *slog.Logger
	tracer  trace.Tracer
}

// ExecutorOption customizes an Executor.
type ExecutorOption func(*Executor)

// WithLogger sets the structured logger used for per-attempt events.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor creates an executor around a shared rate limiter. The
// limiter is injected, never created here: one limiter per target
// endpoint, shared by every executor that talks to it.
func NewExecutor(limiter *RateLimiter, timeout TimeoutConfig, policy RetryPolicy, opts ...ExecutorOption) (*Executor, error) {
	if err := timeout.Validate(); err != nil {
		return nil, err
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	e := &Executor{
		limiter: limiter,
		timeout: timeout,
		policy:  policy,
		logger:  slog.Default(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Timeout returns the timeout configuration applied to each attempt.
func (e *Executor) Timeout() TimeoutConfig {
	return e.timeout
}

// Execute runs op under rate limiting, timeouts, and the retry policy.
// operation names the logical call for logs, metrics, and traces.
//
// The returned Result is always non-nil and carries one AttemptRecord per
// attempt made. On failure the error is a *RequestError reflecting the
// last concrete failure observed, never a generic retries-exhausted
// wrapper. Cancellation surfaces KindCancelled immediately.
func (e *Executor) Execute(ctx context.Context, operation string, op Attempt) (*Result, error) {
	execID := uuid.NewString()
	ctx, span := e.tracer.Start(ctx, "resilience.execute",
		trace.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("execution.id", execID),
		))
	defer span.End()

	result := &Result{}
	var lastErr *RequestError

	maxAttempts := e.policy.MaxAttempts()
	for number := 1; number <= maxAttempts; number++ {
		var delay time.Duration
		if number > 1 {
			delay = e.retryDelay(number-1, lastErr)
			recordRetry(operation)
			e.logger.Debug("retrying request",
				"operation", operation,
				"execution_id", execID,
				"attempt", number,
				"delay", delay,
				"kind", string(lastErr.Kind),
			)
			if err := sleepCtx(ctx, delay); err != nil {
				cancelErr := cancelled(err)
				span.SetStatus(codes.Error, string(KindCancelled))
				return result, cancelErr
			}
		}

		waited, err := e.limiter.Acquire(ctx)
		if err != nil {
			cancelErr := cancelled(err)
			span.SetStatus(codes.Error, string(KindCancelled))
			return result, cancelErr
		}

		attemptCtx, cancel := context.WithTimeout(ctx, e.timeout.Total())
		start := time.Now()
		resp, attemptErr := op(attemptCtx)
		duration := time.Since(start)
		cancel()

		rec := AttemptRecord{
			Number:   number,
			Wait:     waited,
			Delay:    delay,
			Duration: duration,
		}

		var reqErr *RequestError
		if attemptErr != nil && ctx.Err() != nil {
			// The parent context went away mid-attempt; this is the
			// caller stopping us, not a classifiable failure.
			reqErr = cancelled(ctx.Err())
		} else if attemptErr != nil {
			reqErr = Classify(0, nil, nil, attemptErr)
		} else {
			reqErr = Classify(resp.StatusCode, resp.Header, resp.Body, nil)
		}

		if reqErr == nil {
			result.Response = resp
			result.Attempts = append(result.Attempts, rec)
			recordAttempt(operation, "success", duration)
			span.AddEvent("attempt", trace.WithAttributes(
				attribute.Int("number", number),
				attribute.String("outcome", "success"),
			))
			e.logger.Debug("request succeeded",
				"operation", operation,
				"execution_id", execID,
				"attempt", number,
				"status", resp.StatusCode,
				"duration_ms", duration.Milliseconds(),
				"rate_limit_wait_ms", waited.Milliseconds(),
			)
			span.SetStatus(codes.Ok, "")
			return result, nil
		}

		rec.Kind = reqErr.Kind
		rec.Err = reqErr
		result.Attempts = append(result.Attempts, rec)
		lastErr = reqErr

		recordAttempt(operation, string(reqErr.Kind), duration)
		span.AddEvent("attempt", trace.WithAttributes(
			attribute.Int("number", number),
			attribute.String("outcome", string(reqErr.Kind)),
		))
		e.logger.Warn("request attempt failed",
			"operation", operation,
			"execution_id", execID,
			"attempt", number,
			"kind", string(reqErr.Kind),
			"status", reqErr.StatusCode,
			"retryable", reqErr.Retryable,
			"duration_ms", duration.Milliseconds(),
			"error", reqErr.Error(),
		)

		if !reqErr.Retryable {
			span.RecordError(reqErr)
			span.SetStatus(codes.Error, string(reqErr.Kind))
			return result, reqErr
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, string(lastErr.Kind))
	return result, lastErr
}

// retryDelay picks the backoff before the retry numbered attempt. A 429
// with a parseable Retry-After overrides the policy schedule, capped at
// the policy's MaxDelay.
func (e *Executor) retryDelay(attempt int, lastErr *RequestError) time.Duration {
	if lastErr != nil && lastErr.Kind == KindRateLimited && lastErr.RetryAfter > 0 {
		if lastErr.RetryAfter > e.policy.MaxDelay {
			return e.policy.MaxDelay
		}
		return lastErr.RetryAfter
	}
	return e.policy.DelayFor(attempt)
}

func cancelled(cause error) *RequestError {
	return &RequestError{
		Kind:      KindCancelled,
		Detail:    "request cancelled",
		Retryable: false,
		Cause:     cause,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
