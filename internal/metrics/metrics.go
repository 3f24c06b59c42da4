// Package metrics exposes Prometheus instrumentation for the API.
//
// The message-write counters exist so operators can see the best-effort
// write path working: every fallback from a transaction and every partial
// failure (message inserted, conversation pointer not advanced) is
// counted. Drift between messages and conversation lastMessage pointers
// is invisible otherwise.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Write strategy label values.
const (
	StrategyAtomic     = "atomic"
	StrategyBestEffort = "best_effort"
)

var (
	// HTTPRequestsTotal counts requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{.005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"method", "path"},
	)

	// MessageWritesTotal counts committed message writes by strategy.
	MessageWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "message_writes_total",
			Help: "Message writes committed, labeled by write strategy.",
		},
		[]string{"strategy"},
	)

	// MessageWriteFallbacksTotal counts transactions abandoned in favor
	// of the best-effort path.
	MessageWriteFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "message_write_fallbacks_total",
			Help: "Message writes that fell back from a transaction to sequential writes.",
		},
	)

	// MessageWritePartialFailuresTotal counts best-effort writes where
	// the message insert succeeded but the conversation update failed.
	// A non-zero rate means lastMessage pointers are drifting.
	MessageWritePartialFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "message_write_partial_failures_total",
			Help: "Best-effort writes that persisted the message but not the conversation update.",
		},
	)
)

// ObserveRequest records one finished HTTP request.
func ObserveRequest(method, path string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
