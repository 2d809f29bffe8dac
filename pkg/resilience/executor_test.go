package resilience

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func testLimiter(t *testing.T) *RateLimiter {
	t.Helper()
	rl, err := NewRateLimiter(RateLimitConfig{CallsPerSecond: 1000, Burst: 100})
	if err != nil {
		t.Fatalf("limiter: %v", err)
	}
	return rl
}

func testExecutor(t *testing.T, policy RetryPolicy) *Executor {
	t.Helper()
	exec, err := NewExecutor(testLimiter(t), DefaultTimeoutConfig(), policy)
	if err != nil {
		t.Fatalf("executor: %v", err)
	}
	return exec
}

func fastPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries: maxRetries,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   100 * time.Millisecond,
	}
}

func TestExecutor_SuccessFirstAttempt(t *testing.T) {
	exec := testExecutor(t, fastPolicy(3))

	result, err := exec.Execute(context.Background(), "test", func(ctx context.Context) (*Response, error) {
		return &Response{StatusCode: 200, Body: []byte(`{"ok":true}`)}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Response == nil || result.Response.StatusCode != 200 {
		t.Fatalf("expected 200 response, got %+v", result.Response)
	}
	if len(result.Attempts) != 1 {
		t.Fatalf("expected 1 attempt record, got %d", len(result.Attempts))
	}
	rec := result.Attempts[0]
	if rec.Number != 1 || rec.Kind != "" || rec.Err != nil || rec.Delay != 0 {
		t.Errorf("unexpected first attempt record: %+v", rec)
	}
}

func TestExecutor_RetriesServerErrorThenSucceeds(t *testing.T) {
	exec := testExecutor(t, fastPolicy(3))

	attempts := 0
	result, err := exec.Execute(context.Background(), "test", func(ctx context.Context) (*Response, error) {
		attempts++
		if attempts < 3 {
			return &Response{StatusCode: 503}, nil
		}
		return &Response{StatusCode: 200}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if len(result.Attempts) != 3 {
		t.Fatalf("expected 3 attempt records, got %d", len(result.Attempts))
	}
	if result.Attempts[0].Kind != KindServer || result.Attempts[1].Kind != KindServer {
		t.Errorf("expected server kind on failed attempts: %+v", result.Attempts[:2])
	}
	if result.Attempts[2].Kind != "" {
		t.Errorf("expected success on final attempt, got kind %s", result.Attempts[2].Kind)
	}
}

func TestExecutor_ExhaustsRetriesAndSurfacesLastError(t *testing.T) {
	exec := testExecutor(t, fastPolicy(2))

	attempts := 0
	result, err := exec.Execute(context.Background(), "test", func(ctx context.Context) (*Response, error) {
		attempts++
		return &Response{StatusCode: 503}, nil
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	// max_retries=2 means 3 total attempts.
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}

	var re *RequestError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RequestError, got %T", err)
	}
	if re.Kind != KindServer {
		t.Errorf("surfaced kind = %s, want %s (the last concrete failure)", re.Kind, KindServer)
	}
	if re.StatusCode != 503 {
		t.Errorf("surfaced status = %d, want 503", re.StatusCode)
	}

	// Backoff doubles: the second retry waits twice the first.
	if len(result.Attempts) != 3 {
		t.Fatalf("expected 3 records, got %d", len(result.Attempts))
	}
	d1, d2 := result.Attempts[1].Delay, result.Attempts[2].Delay
	if d1 != 10*time.Millisecond || d2 != 20*time.Millisecond {
		t.Errorf("expected delays [10ms, 20ms], got [%v, %v]", d1, d2)
	}
}

func TestExecutor_ClientErrorNotRetried(t *testing.T) {
	exec := testExecutor(t, fastPolicy(5))

	attempts := 0
	_, err := exec.Execute(context.Background(), "test", func(ctx context.Context) (*Response, error) {
		attempts++
		return &Response{StatusCode: 404}, nil
	})
	if err == nil {
		t.Fatal("expected error")
	}

	if attempts != 1 {
		t.Errorf("expected exactly 1 attempt for a 404, got %d", attempts)
	}
	if KindOf(err) != KindClient {
		t.Errorf("kind = %s, want %s", KindOf(err), KindClient)
	}
	if IsRetryable(err) {
		t.Error("client errors must not be retryable")
	}
}

func TestExecutor_FailFastWithZeroRetries(t *testing.T) {
	exec := testExecutor(t, RetryPolicy{MaxRetries: 0, BaseDelay: 10 * time.Millisecond, MaxDelay: 10 * time.Millisecond})

	attempts := 0
	_, err := exec.Execute(context.Background(), "test", func(ctx context.Context) (*Response, error) {
		attempts++
		return &Response{StatusCode: 500}, nil
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt with max_retries=0, got %d", attempts)
	}
}

func TestExecutor_TransportErrorRetried(t *testing.T) {
	exec := testExecutor(t, fastPolicy(2))

	attempts := 0
	result, err := exec.Execute(context.Background(), "test", func(ctx context.Context) (*Response, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("dial tcp: connection refused")
		}
		return &Response{StatusCode: 200}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	if result.Attempts[0].Kind != KindConnection {
		t.Errorf("first attempt kind = %s, want %s", result.Attempts[0].Kind, KindConnection)
	}
}

func TestExecutor_HonorsRetryAfter(t *testing.T) {
	exec := testExecutor(t, fastPolicy(1))

	header := http.Header{}
	header.Set("Retry-After", "1")

	attempts := 0
	start := time.Now()
	result, err := exec.Execute(context.Background(), "test", func(ctx context.Context) (*Response, error) {
		attempts++
		if attempts == 1 {
			return &Response{StatusCode: 429, Header: header}, nil
		}
		return &Response{StatusCode: 200}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if elapsed := time.Since(start); elapsed < 1*time.Second {
		t.Errorf("expected at least 1s honoring Retry-After, elapsed %v", elapsed)
	}
	if result.Attempts[1].Delay != 1*time.Second {
		t.Errorf("recorded delay = %v, want 1s from Retry-After", result.Attempts[1].Delay)
	}
}

func TestExecutor_RateLimitedWithoutRetryAfterUsesPolicy(t *testing.T) {
	exec := testExecutor(t, fastPolicy(1))

	attempts := 0
	result, err := exec.Execute(context.Background(), "test", func(ctx context.Context) (*Response, error) {
		attempts++
		if attempts == 1 {
			return &Response{StatusCode: 429}, nil
		}
		return &Response{StatusCode: 200}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Attempts[0].Kind != KindRateLimited {
		t.Errorf("kind = %s, want %s", result.Attempts[0].Kind, KindRateLimited)
	}
	if result.Attempts[1].Delay != 10*time.Millisecond {
		t.Errorf("delay = %v, want policy base delay 10ms", result.Attempts[1].Delay)
	}
}

func TestExecutor_AttemptTimeout(t *testing.T) {
	limiter := testLimiter(t)
	timeout := TimeoutConfig{Connect: 10 * time.Millisecond, Read: 40 * time.Millisecond}
	exec, err := NewExecutor(limiter, timeout, RetryPolicy{MaxRetries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("executor: %v", err)
	}

	_, err = exec.Execute(context.Background(), "test", func(ctx context.Context) (*Response, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return &Response{StatusCode: 200}, nil
		}
	})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if KindOf(err) != KindTimeout {
		t.Errorf("kind = %s, want %s", KindOf(err), KindTimeout)
	}
	if !IsRetryable(err) {
		t.Error("timeouts should be classified retryable")
	}
}

func TestExecutor_CancelDuringRetryWait(t *testing.T) {
	limiter := testLimiter(t)
	exec, err := NewExecutor(limiter, DefaultTimeoutConfig(), RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  5 * time.Second,
		MaxDelay:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("executor: %v", err)
	}

	before := limiter.Stats().AvailableTokens

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err = exec.Execute(ctx, "test", func(ctx context.Context) (*Response, error) {
		return &Response{StatusCode: 503}, nil
	})
	elapsed := time.Since(start)

	if KindOf(err) != KindCancelled {
		t.Fatalf("kind = %s, want %s", KindOf(err), KindCancelled)
	}
	if elapsed > 1*time.Second {
		t.Errorf("cancellation surfaced after %v, expected prompt return", elapsed)
	}

	// Exactly one token consumed (for the single attempt made); the
	// cancelled retry wait must not consume another.
	after := limiter.Stats().AvailableTokens
	if consumed := before - after; consumed > 1.1 {
		t.Errorf("cancelled execution consumed %v tokens, want ~1", consumed)
	}
}

func TestExecutor_CancelBeforeStart(t *testing.T) {
	exec := testExecutor(t, fastPolicy(3))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	_, err := exec.Execute(ctx, "test", func(ctx context.Context) (*Response, error) {
		attempts++
		return nil, ctx.Err()
	})
	if KindOf(err) != KindCancelled {
		t.Fatalf("kind = %s, want %s", KindOf(err), KindCancelled)
	}
	if attempts > 1 {
		t.Errorf("cancelled call made %d attempts, want at most 1", attempts)
	}
}

func TestNewExecutor_ValidatesConfig(t *testing.T) {
	limiter := testLimiter(t)

	if _, err := NewExecutor(limiter, TimeoutConfig{}, DefaultRetryPolicy()); err == nil {
		t.Error("expected error for zero timeout config")
	}
	if _, err := NewExecutor(limiter, DefaultTimeoutConfig(), RetryPolicy{MaxRetries: -1, BaseDelay: time.Second, MaxDelay: time.Second}); err == nil {
		t.Error("expected error for invalid retry policy")
	}
}
