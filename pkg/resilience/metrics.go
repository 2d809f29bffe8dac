package resilience

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcra_request_attempts_total",
			Help: "Total request attempts by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcra_request_retries_total",
			Help: "Total retries scheduled by operation",
		},
		[]string{"operation"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bcra_request_duration_seconds",
			Help:    "Duration of individual request attempts",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)

	rateLimitWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bcra_rate_limit_wait_seconds",
		Help:    "Time spent waiting on the client-side rate limiter",
		Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})
)

// recordAttempt records one attempt's outcome. outcome is "success" or the
// classified failure kind.
func recordAttempt(operation, outcome string, duration time.Duration) {
	attemptsTotal.WithLabelValues(operation, outcome).Inc()
	requestDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

func recordRetry(operation string) {
	retriesTotal.WithLabelValues(operation).Inc()
}

func recordRateLimitWait(waited time.Duration) {
	if waited > 0 {
		rateLimitWait.Observe(waited.Seconds())
	}
}
