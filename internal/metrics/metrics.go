// Package metrics provides Prometheus metrics for the command engine and
// its HTTP transports.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Command outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeUserError   = "user_error"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
)

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "predictions_commands_total",
				Help: "Commands executed, by verb and outcome",
			},
			[]string{"verb", "outcome"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "predictions_command_duration_seconds",
				Help:    "Time spent executing a command, including its transaction",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"verb"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "predictions_http_requests_total",
				Help: "HTTP requests handled, by route and status code",
			},
			[]string{"route", "code"},
		),
	}

	registry.MustRegister(
		m.CommandsTotal,
		m.CommandDuration,
		m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCommand records one command execution. It is a no-op on a nil receiver.
func (m *Metrics) ObserveCommand(verb, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(verb, outcome).Inc()
	m.CommandDuration.WithLabelValues(verb).Observe(elapsed.Seconds())
}

// ObserveHTTP records one handled HTTP request. It is a no-op on a nil receiver.
func (m *Metrics) ObserveHTTP(route string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
