package bcra

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bcra-go/bcra/pkg/resilience"
)

// DefaultBaseURL is the production BCRA API endpoint.
const DefaultBaseURL = "https://api.bcra.gob.ar"

// DefaultLanguage is the Accept-Language sent with every request.
const DefaultLanguage = "es-AR"

const defaultUserAgent = "bcra-go/1.0"

// Config configures a Client.
type Config struct {
	// BaseURL overrides the API endpoint. Default: DefaultBaseURL.
	BaseURL string

	// Language is the Accept-Language header value. Default: "es-AR".
	Language string

	// UserAgent is the User-Agent header value.
	UserAgent string

	// Timeout holds the per-attempt connect/read deadlines.
	Timeout resilience.TimeoutConfig

	// RateLimit paces outbound calls; one bucket per client.
	RateLimit resilience.RateLimitConfig

	// Retry is the backoff schedule for transient failures.
	Retry resilience.RetryPolicy

	// InsecureTLS disables certificate verification. Not recommended
	// outside of development.
	InsecureTLS bool

	// Logger receives per-attempt events. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with the published defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Language:  DefaultLanguage,
		UserAgent: defaultUserAgent,
		Timeout:   resilience.DefaultTimeoutConfig(),
		RateLimit: resilience.DefaultRateLimitConfig(),
		Retry:     resilience.DefaultRetryPolicy(),
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("base_url is invalid: %w", err)
	}
	if c.Language == "" {
		return fmt.Errorf("language is required")
	}
	if err := c.Timeout.Validate(); err != nil {
		return err
	}
	if err := c.RateLimit.Validate(); err != nil {
		return err
	}
	return c.Retry.Validate()
}

// Client talks to the BCRA API. All calls run through a shared rate
// limiter and the retry executor; a Client is safe for concurrent use.
type Client struct {
	baseURL    string
	language   string
	userAgent  string
	httpClient *http.Client
	limiter    *resilience.RateLimiter
	exec       *resilience.Executor
	logger     *slog.Logger
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	limiter, err := resilience.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	exec, err := resilience.NewExecutor(limiter, cfg.Timeout, cfg.Retry,
		resilience.WithLogger(cfg.Logger))
	if err != nil {
		return nil, err
	}

	if cfg.InsecureTLS {
		cfg.Logger.Warn("TLS verification is disabled; not recommended for production use")
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			MaxVersion:         tls.VersionTLS13,
			InsecureSkipVerify: cfg.InsecureTLS,
		},

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,

		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout.Connect,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   cfg.Timeout.Connect,
		ResponseHeaderTimeout: cfg.Timeout.Read,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		language:  cfg.Language,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout.Total(),
		},
		limiter: limiter,
		exec:    exec,
		logger:  cfg.Logger,
	}, nil
}

// RateLimitStats exposes the shared limiter state for introspection.
func (c *Client) RateLimitStats() resilience.RateLimitStats {
	return c.limiter.Stats()
}

// getJSON performs one logical GET against path, decoding the response
// into out. The closure handed to the executor performs exactly one round
// trip; pacing, deadlines, classification, and retries live in the
// executor.
func (c *Client) getJSON(ctx context.Context, operation, path string, query url.Values, out any) error {
	u := c.baseURL + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	result, err := c.exec.Execute(ctx, operation, func(ctx context.Context) (*resilience.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept-Language", c.language)
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return &resilience.Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       body,
		}, nil
	})
	if err != nil {
		return enrichAPIError(err)
	}

	if err := json.Unmarshal(result.Response.Body, out); err != nil {
		return resilience.ParseFailure(err)
	}
	return nil
}

// enrichAPIError folds the API's error payload ({"errorMessages": [...]})
// into the surfaced detail when present.
func enrichAPIError(err error) error {
	var re *resilience.RequestError
	if !errors.As(err, &re) || len(re.Body) == 0 {
		return err
	}

	var payload struct {
		ErrorMessages []string `json:"errorMessages"`
	}
	if json.Unmarshal(re.Body, &payload) == nil && len(payload.ErrorMessages) > 0 {
		re.Detail = fmt.Sprintf("%s: %s", re.Detail, strings.Join(payload.ErrorMessages, ", "))
	}
	return err
}
