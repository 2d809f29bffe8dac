package resilience

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Default rate limit values, matching the published BCRA client defaults.
const (
	DefaultCallsPerSecond = 10.0
	DefaultBurst          = 20
)

// RateLimitConfig describes the sustained call rate and burst allowance
// for one target endpoint. Immutable once constructed; owned by exactly
// one RateLimiter.
type RateLimitConfig struct {
	// CallsPerSecond is the token replenishment rate. Must be > 0.
	CallsPerSecond float64

	// Burst is the maximum number of tokens the bucket can hold.
	// Must be >= 1.
	Burst int
}

// DefaultRateLimitConfig returns the default pacing configuration
// (10 calls/s, burst of 20).
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		CallsPerSecond: DefaultCallsPerSecond,
		Burst:          DefaultBurst,
	}
}

// Validate checks the rate and burst bounds.
func (c RateLimitConfig) Validate() error {
	if c.CallsPerSecond <= 0 {
		return fmt.Errorf("calls_per_second must be > 0, got %v", c.CallsPerSecond)
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be >= 1, got %d", c.Burst)
	}
	return nil
}

// RateLimiter gates outbound calls using a token bucket. One instance is
// constructed per target endpoint and shared by every executor that talks
// to it. The bucket state is guarded by a mutex; waiting always happens
// outside the lock so concurrent callers can race to refill and consume.
//
// A RateLimiter cannot fail; it can only delay.
type RateLimiter struct {
	mu         sync.Mutex
	cfg        RateLimitConfig
	tokens     float64
	lastRefill time.Time

	waits     int64
	waitTotal time.Duration
}

// RateLimitStats is a point-in-time snapshot of limiter state.
type RateLimitStats struct {
	CallsPerSecond  float64
	Burst           int
	AvailableTokens float64
	Waits           int64
	WaitTotal       time.Duration
}

// NewRateLimiter creates a rate limiter with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) (*RateLimiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RateLimiter{
		cfg:        cfg,
		tokens:     float64(cfg.Burst),
		lastRefill: time.Now(),
	}, nil
}

// Acquire blocks until one token is available, then consumes it. It
// returns the time spent waiting. A cancelled context interrupts the wait
// without consuming a token.
func (rl *RateLimiter) Acquire(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return time.Since(start), err
		}
		rl.mu.Lock()
		rl.refillLocked(time.Now())
		if rl.tokens >= 1 {
			rl.tokens--
			waited := time.Since(start)
			if waited > 0 {
				rl.waits++
				rl.waitTotal += waited
			}
			rl.mu.Unlock()
			recordRateLimitWait(waited)
			return waited, nil
		}
		// Time until one whole token has accumulated. Looping instead of
		// sleeping exactly once revalidates the bucket under contention.
		wait := time.Duration((1 - rl.tokens) / rl.cfg.CallsPerSecond * float64(time.Second))
		rl.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return time.Since(start), ctx.Err()
		case <-timer.C:
		}
	}
}

// TryAcquire consumes a token if one is immediately available. It never
// blocks.
func (rl *RateLimiter) TryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked(time.Now())
	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// Reset restores a full bucket.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.tokens = float64(rl.cfg.Burst)
	rl.lastRefill = time.Now()
}

// Stats returns a snapshot of the current limiter state.
func (rl *RateLimiter) Stats() RateLimitStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked(time.Now())
	return RateLimitStats{
		CallsPerSecond:  rl.cfg.CallsPerSecond,
		Burst:           rl.cfg.Burst,
		AvailableTokens: rl.tokens,
		Waits:           rl.waits,
		WaitTotal:       rl.waitTotal,
	}
}

// refillLocked adds tokens for the time elapsed since the last refill,
// capped at the burst size. Must be called with the lock held.
func (rl *RateLimiter) refillLocked(now time.Time) {
	elapsed := now.Sub(rl.lastRefill)
	if elapsed <= 0 {
		return
	}
	rl.tokens += elapsed.Seconds() * rl.cfg.CallsPerSecond
	if max := float64(rl.cfg.Burst); rl.tokens > max {
		rl.tokens = max
	}
	rl.lastRefill = now
}
