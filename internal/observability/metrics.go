package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ToolMetrics tracks request count, error count and latency per tool.
// Each instance owns its registry so tests never collide on collectors.
type ToolMetrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewToolMetrics creates and registers the tool instrument set.
func NewToolMetrics() *ToolMetrics {
	registry := prometheus.NewRegistry()

	metrics := &ToolMetrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sourcetree",
			Name:      "tool_requests_total",
			Help:      "Number of tool invocations.",
		}, []string{"tool"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sourcetree",
			Name:      "tool_errors_total",
			Help:      "Number of tool invocations that returned an error.",
		}, []string{"tool"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sourcetree",
			Name:      "tool_duration_seconds",
			Help:      "Tool invocation latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
	}

	registry.MustRegister(metrics.requests, metrics.errors, metrics.duration)

	return metrics
}

// Observe records one invocation of tool with its outcome and duration.
func (m *ToolMetrics) Observe(tool string, start time.Time, err error) {
	m.requests.WithLabelValues(tool).Inc()
	m.duration.WithLabelValues(tool).Observe(time.Since(start).Seconds())

	if err != nil {
		m.errors.WithLabelValues(tool).Inc()
	}
}

// Handler serves the Prometheus scrape endpoint for this instrument set.
func (m *ToolMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry for tests.
func (m *ToolMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
