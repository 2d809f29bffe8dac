// Package config loads the client configuration from a YAML file,
// falling back to the published defaults when no file is present.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bcra-go/bcra/pkg/bcra"
	"github.com/bcra-go/bcra/pkg/resilience"
)

// Duration is a time.Duration that decodes from YAML strings like "27s"
// or "1.5m", or from bare numbers interpreted as seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var seconds float64
	if err := value.Decode(&seconds); err == nil {
		*d = Duration(time.Duration(seconds * float64(time.Second)))
		return nil
	}

	return fmt.Errorf("invalid duration value at line %d", value.Line)
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config is the on-disk client configuration.
type Config struct {
	// BaseURL overrides the API endpoint.
	BaseURL string `yaml:"base_url,omitempty"`

	// Language is the Accept-Language value, default "es-AR".
	Language string `yaml:"language,omitempty"`

	// InsecureTLS disables certificate verification.
	InsecureTLS bool `yaml:"insecure_tls,omitempty"`

	Log       LogConfig       `yaml:"log"`
	Timeout   TimeoutConfig   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Retry     RetryConfig     `yaml:"retry"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: info.
	Level string `yaml:"level,omitempty"`
}

// TimeoutConfig configures per-attempt deadlines. When Total is set and
// Connect/Read are not, the total is split 10% connect / 90% read.
type TimeoutConfig struct {
	Connect Duration `yaml:"connect,omitempty"`
	Read    Duration `yaml:"read,omitempty"`
	Total   Duration `yaml:"total,omitempty"`
}

// RateLimitConfig configures the client-side token bucket.
type RateLimitConfig struct {
	CallsPerSecond float64 `yaml:"calls_per_second,omitempty"`
	Burst          int     `yaml:"burst,omitempty"`
}

// RetryConfig configures the backoff schedule.
type RetryConfig struct {
	// MaxRetries is a pointer so an explicit 0 (fail fast) survives the
	// unset check.
	MaxRetries     *int     `yaml:"max_retries,omitempty"`
	BaseDelay      Duration `yaml:"base_delay,omitempty"`
	MaxDelay       Duration `yaml:"max_delay,omitempty"`
	JitterFraction float64  `yaml:"jitter_fraction,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		BaseURL:  bcra.DefaultBaseURL,
		Language: bcra.DefaultLanguage,
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads the configuration at path. An empty path or a missing file
// yields the defaults; a malformed or invalid file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field-level constraints not covered by the resilience
// config validators.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}

	if c.Timeout.Total != 0 && (c.Timeout.Connect != 0 || c.Timeout.Read != 0) {
		return fmt.Errorf("timeout.total is exclusive with timeout.connect/timeout.read")
	}
	return nil
}

// LogLevel maps the configured level to slog.
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ClientConfig maps the file configuration onto a bcra.Config, keeping
// the published defaults for anything unset.
func (c *Config) ClientConfig() (bcra.Config, error) {
	out := bcra.DefaultConfig()

	if c.BaseURL != "" {
		out.BaseURL = c.BaseURL
	}
	if c.Language != "" {
		out.Language = c.Language
	}
	out.InsecureTLS = c.InsecureTLS

	if c.Timeout.Total != 0 {
		t, err := resilience.TimeoutFromTotal(time.Duration(c.Timeout.Total))
		if err != nil {
			return bcra.Config{}, err
		}
		out.Timeout = t
	}
	if c.Timeout.Connect != 0 {
		out.Timeout.Connect = time.Duration(c.Timeout.Connect)
	}
	if c.Timeout.Read != 0 {
		out.Timeout.Read = time.Duration(c.Timeout.Read)
	}

	if c.RateLimit.CallsPerSecond != 0 {
		out.RateLimit.CallsPerSecond = c.RateLimit.CallsPerSecond
	}
	if c.RateLimit.Burst != 0 {
		out.RateLimit.Burst = c.RateLimit.Burst
	}

	if c.Retry.MaxRetries != nil {
		out.Retry.MaxRetries = *c.Retry.MaxRetries
	}
	if c.Retry.BaseDelay != 0 {
		out.Retry.BaseDelay = time.Duration(c.Retry.BaseDelay)
	}
	if c.Retry.MaxDelay != 0 {
		out.Retry.MaxDelay = time.Duration(c.Retry.MaxDelay)
	}
	if c.Retry.JitterFraction != 0 {
		out.Retry.JitterFraction = c.Retry.JitterFraction
	}

	if err := out.Validate(); err != nil {
		return bcra.Config{}, err
	}
	return out, nil
}
