// Package metrics exposes Prometheus collectors for the sentiment pipeline.
package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Classification sources.
const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
	SourceCache    = "cache"
)

var (
	// ClassificationsTotal counts classifier results by source and sentiment.
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_classifications_total",
			Help: "Total number of sentiment classifications",
		},
		[]string{"source", "sentiment"},
	)

	// LLMCallLatency tracks remote classification latency in milliseconds.
	LLMCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulse_llm_call_latency_ms",
			Help:    "Remote text-generation call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(50, 2, 10), // 50ms to ~25s
		},
		[]string{"provider", "status"},
	)

	// BreakerState is 0 closed, 1 half-open, 2 open.
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pulse_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	// BatchSize observes how many emails each batch analysis handled.
	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pulse_batch_size",
			Help:    "Number of emails per batch analysis",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8), // 1 to 128
		},
	)

	// JobsProcessed counts worker jobs by type and status.
	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_jobs_processed_total",
			Help: "Total number of worker jobs processed",
		},
		[]string{"type", "status"},
	)

	// HTTPRequestDuration tracks API latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulse_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
		[]string{"method", "route", "status"},
	)
)

// RecordClassification increments the classification counter.
func RecordClassification(source, sentiment string) {
	ClassificationsTotal.WithLabelValues(source, sentiment).Inc()
}

// RecordLLMCall observes one remote call.
func RecordLLMCall(provider, status string, duration time.Duration) {
	LLMCallLatency.WithLabelValues(provider, status).Observe(float64(duration.Milliseconds()))
}

// SetBreakerState publishes a breaker state.
func SetBreakerState(name string, state float64) {
	BreakerState.WithLabelValues(name).Set(state)
}

// RecordJob increments the job counter.
func RecordJob(jobType, status string) {
	JobsProcessed.WithLabelValues(jobType, status).Inc()
}

// RecordHTTPRequest observes one API request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// RegisterDBPool exports database/sql pool statistics under the given name.
func RegisterDBPool(name string, db *sql.DB) error {
	if db == nil {
		return nil
	}
	return prometheus.Register(collectors.NewDBStatsCollector(db, name))
}
