package resilience

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Default retry values, matching the published BCRA client defaults.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 1 * time.Second
	DefaultMaxDelay   = 30 * time.Second
)

// RetryPolicy describes the backoff schedule applied between attempts.
// The policy is pure: attempt counting belongs to the executor, not here.
type RetryPolicy struct {
	// MaxRetries is the number of retry attempts after the first try.
	// 0 means fail fast. Must be >= 0.
	MaxRetries int

	// BaseDelay is the delay before the first retry. Must be > 0.
	BaseDelay time.Duration

	// MaxDelay caps the backoff schedule. Must be >= BaseDelay.
	MaxDelay time.Duration

	// JitterFraction adds a uniform random fraction of the computed delay,
	// in [0, delay*JitterFraction], to desynchronize retry storms across
	// client instances. Must be in [0, 1]. 0 disables jitter.
	JitterFraction float64

	// Rand supplies randomness for jitter. Tests inject a seeded source
	// for determinism; nil falls back to the shared global source.
	Rand *rand.Rand
}

// DefaultRetryPolicy returns the default policy: 3 retries, 1s base delay,
// 30s cap, no jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
	}
}

// Validate checks the policy bounds.
func (p RetryPolicy) Validate() error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", p.MaxRetries)
	}
	if p.BaseDelay <= 0 {
		return fmt.Errorf("base_delay must be > 0, got %v", p.BaseDelay)
	}
	if p.MaxDelay < p.BaseDelay {
		return fmt.Errorf("max_delay (%v) must be >= base_delay (%v)", p.MaxDelay, p.BaseDelay)
	}
	if p.JitterFraction < 0 || p.JitterFraction > 1 {
		return fmt.Errorf("jitter_fraction must be in [0, 1], got %v", p.JitterFraction)
	}
	return nil
}

// DelayFor computes the backoff before retry number attempt (1-based:
// attempt 1 is the first retry). The schedule doubles per prior attempt
// and never exceeds MaxDelay, jitter included.
func (p RetryPolicy) DelayFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if p.JitterFraction > 0 {
		delay += p.randFloat() * delay * p.JitterFraction
		if delay > float64(p.MaxDelay) {
			delay = float64(p.MaxDelay)
		}
	}

	return time.Duration(delay)
}

// MaxAttempts returns the total attempt budget, initial try included.
func (p RetryPolicy) MaxAttempts() int {
	return p.MaxRetries + 1
}

func (p RetryPolicy) randFloat() float64 {
	if p.Rand != nil {
		return p.Rand.Float64()
	}
	return rand.Float64()
}
