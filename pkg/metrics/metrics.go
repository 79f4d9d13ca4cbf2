// Package metrics exposes the process and domain Prometheus collectors
// described in SPEC_FULL.md §4.11.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vmctrl_http_requests_total",
			Help: "Total number of HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vmctrl_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Orchestration metrics
	OrchestrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vmctrl_orchestrations_total",
			Help: "Total number of orchestrations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	OrchestrationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vmctrl_orchestration_duration_seconds",
			Help:    "Orchestration duration in seconds by kind",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)

	// Hypervisor client metrics
	ClusterCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vmctrl_cluster_calls_total",
			Help: "Total number of hypervisor cluster API calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	TaskWaitSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vmctrl_task_wait_seconds",
			Help:    "Time spent waiting for a cluster task to reach a terminal state",
			Buckets: []float64{0.5, 1, 2, 5, 10, 15, 30, 60},
		},
		[]string{"operation"},
	)

	// Fleet gauge by server status. It is registered here; nothing in this
	// repository sets its values.
	ServersTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vmctrl_servers_total",
			Help: "Total number of servers by status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(OrchestrationsTotal)
	prometheus.MustRegister(OrchestrationDuration)
	prometheus.MustRegister(ClusterCallsTotal)
	prometheus.MustRegister(TaskWaitSeconds)
	prometheus.MustRegister(ServersTotal)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
