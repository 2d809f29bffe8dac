// Package resilience provides the request execution core used by the BCRA
// client: rate limiting, timeout policy, typed error classification, and
// automatic retry with exponential backoff.
//
// The package composes four small pieces around a caller-supplied attempt
// operation (one HTTP round trip):
//   - RateLimiter: a shared token bucket that paces outbound calls
//   - TimeoutConfig: connection and read deadlines applied to each attempt
//   - RetryPolicy: exponential backoff schedule with an optional jitter
//   - Executor: orchestrates acquire -> attempt -> classify -> retry
//
// # Usage
//
// Build an executor once and share it across calls:
//
//	limiter, err := resilience.NewRateLimiter(resilience.DefaultRateLimitConfig())
//	if err != nil {
//	    return err
//	}
//	exec, err := resilience.NewExecutor(limiter,
//	    resilience.DefaultTimeoutConfig(), resilience.DefaultRetryPolicy())
//	if err != nil {
//	    return err
//	}
//
//	result, err := exec.Execute(ctx, "monetarias", func(ctx context.Context) (*resilience.Response, error) {
//	    // perform exactly one HTTP round trip under ctx
//	})
//
// # Retry Behavior
//
// The executor retries transient failures with exponential backoff:
//   - HTTP 5xx server errors
//   - HTTP 429 (rate limited) with Retry-After header support
//   - HTTP 408 and transport-level timeouts
//   - Network errors (connection refused, reset, DNS failures)
//   - Does NOT retry other 4xx client errors or malformed response bodies
//
// Retryability is fixed per failure kind; a non-retryable kind surfaces on
// its first occurrence no matter how many retries remain. When retries are
// exhausted the last concrete failure is surfaced, never a generic wrapper.
//
// # Concurrency
//
// One RateLimiter may be shared by any number of executors and goroutines;
// its bucket is the only mutable shared state in the core. RetryPolicy,
// TimeoutConfig and the classifier are immutable and safe to share without
// synchronization. Each Execute call runs its attempts strictly
// sequentially and owns its own retry budget.
//
// # Cancellation
//
// Every blocking point (rate-limiter wait, backoff sleep, the attempt
// itself) honors context cancellation. A cancelled call surfaces
// KindCancelled immediately, consumes no token, and is never retried.
//
// # Observability
//
// Every attempt emits a structured slog event and updates prometheus
// collectors (attempt counts by outcome, limiter wait time, request
// duration). The Result returned by Execute carries per-attempt records
// (attempt number, limiter wait, backoff delay, classified kind) so tests
// and callers can assert on behavior without parsing logs. Execute also
// opens an OpenTelemetry span; exporter wiring is left to the embedding
// application.
package resilience
