package bcra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcra-go/bcra/pkg/resilience"
)

// testClient builds a Client against server with fast retry settings.
func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.RateLimit = resilience.RateLimitConfig{CallsPerSecond: 1000, Burst: 100}
	cfg.Retry = resilience.RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   50 * time.Millisecond,
	}

	client, err := New(cfg)
	require.NoError(t, err)
	return client
}

func TestNew_Defaults(t *testing.T) {
	client, err := New(DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, "es-AR", client.language)

	stats := client.RateLimitStats()
	assert.Equal(t, 10.0, stats.CallsPerSecond)
	assert.Equal(t, 20, stats.Burst)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout.Connect = -1

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect timeout")
}

func TestClient_SetsHeaders(t *testing.T) {
	var gotLanguage, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLanguage = r.Header.Get("Accept-Language")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := testClient(t, server)
	_, err := client.Variables(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "es-AR", gotLanguage)
	assert.Equal(t, defaultUserAgent, gotAgent)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := testClient(t, server)
	_, err := client.Variables(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestClient_SurfacesClientErrorWithAPIMessages(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status":404,"errorMessages":["Variable no encontrada"]}`))
	}))
	defer server.Close()

	client := testClient(t, server)
	_, err := client.VariableData(context.Background(), 999, SeriesOptions{})
	require.Error(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt32(&attempts), "4xx must not be retried")
	assert.Equal(t, resilience.KindClient, resilience.KindOf(err))
	assert.Contains(t, err.Error(), "Variable no encontrada")
}

func TestClient_MalformedBodyIsParseFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [truncated`))
	}))
	defer server.Close()

	client := testClient(t, server)
	_, err := client.Variables(context.Background())
	require.Error(t, err)

	assert.Equal(t, resilience.KindParse, resilience.KindOf(err))
	assert.False(t, resilience.IsRetryable(err))
}

func TestClient_RateLimited429(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := testClient(t, server)

	start := time.Now()
	_, err := client.Variables(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, atomic.LoadInt32(&attempts))
	assert.GreaterOrEqual(t, time.Since(start), 1*time.Second, "Retry-After must be honored")
}

func TestClient_ConnectionErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	client := testClient(t, server)
	_, err := client.Variables(context.Background())
	require.Error(t, err)
	assert.Equal(t, resilience.KindConnection, resilience.KindOf(err))
}

func TestClient_Cancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
	}))
	defer server.Close()

	client := testClient(t, server)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := client.Variables(ctx)
	require.Error(t, err)
	assert.Equal(t, resilience.KindCancelled, resilience.KindOf(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}
