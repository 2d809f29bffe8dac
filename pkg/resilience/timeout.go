package resilience

import (
	"fmt"
	"time"
)

// Default timeout values, matching the published BCRA client defaults.
const (
	DefaultConnectTimeout = 3050 * time.Millisecond
	DefaultReadTimeout    = 27 * time.Second
)

// TimeoutConfig describes the deadlines applied to one HTTP attempt:
// Connect bounds connection establishment, Read bounds waiting for
// response data once connected. The value is immutable once constructed
// and shared read-only by every attempt.
type TimeoutConfig struct {
	// Connect is the maximum time to establish a connection.
	// Must be > 0.
	Connect time.Duration

	// Read is the maximum time to wait for response data once connected.
	// Must be > 0.
	Read time.Duration
}

// DefaultTimeoutConfig returns the default timeout configuration
// (connect 3.05s, read 27s).
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Connect: DefaultConnectTimeout,
		Read:    DefaultReadTimeout,
	}
}

// TimeoutFromTotal splits a total request budget into connect and read
// deadlines (10% connect, 90% read).
func TimeoutFromTotal(total time.Duration) (TimeoutConfig, error) {
	if total <= 0 {
		return TimeoutConfig{}, fmt.Errorf("total timeout must be > 0, got %v", total)
	}
	return TimeoutConfig{
		Connect: total / 10,
		Read:    total - total/10,
	}, nil
}

// Validate checks that both deadlines are strictly positive.
func (c TimeoutConfig) Validate() error {
	if c.Connect <= 0 {
		return fmt.Errorf("connect timeout must be > 0, got %v", c.Connect)
	}
	if c.Read <= 0 {
		return fmt.Errorf("read timeout must be > 0, got %v", c.Read)
	}
	return nil
}

// Total returns the combined budget for one attempt. The executor uses it
// as the hard deadline around the attempt operation.
func (c TimeoutConfig) Total() time.Duration {
	return c.Connect + c.Read
}

// String implements fmt.Stringer.
func (c TimeoutConfig) String() string {
	return fmt.Sprintf("TimeoutConfig(connect=%v, read=%v)", c.Connect, c.Read)
}
