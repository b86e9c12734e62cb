// Package metrics exposes Prometheus collectors for API traffic, session
// transitions and route guard decisions.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "disastermap"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	APIRequests        *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	SessionEvents      *prometheus.CounterVec
	GuardDecisions     *prometheus.CounterVec
	ShellRequests      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		APIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Requests sent to the disaster API by endpoint and status",
			},
			[]string{"endpoint", "method", "status"},
		),
		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Round trip time of requests to the disaster API",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		SessionEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_events_total",
				Help:      "Session store transitions",
			},
			[]string{"event"},
		),
		GuardDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guard_decisions_total",
				Help:      "Route guard decisions by route and state",
			},
			[]string{"route", "state"},
		),
		ShellRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shell_requests_total",
				Help:      "Requests served by the local shell by status class",
			},
			[]string{"method", "status"},
		),
	}
}

// ObserveAPIRequest records one API round trip. status 0 means the request
// failed before a response arrived.
func (m *Metrics) ObserveAPIRequest(endpoint, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}

	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}

	m.APIRequests.WithLabelValues(endpoint, method, label).Inc()
	m.APIRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// SessionEvent records a session store transition.
func (m *Metrics) SessionEvent(event string) {
	if m == nil {
		return
	}

	m.SessionEvents.WithLabelValues(event).Inc()
}

// GuardDecision records the outcome of a route guard evaluation.
func (m *Metrics) GuardDecision(route, state string) {
	if m == nil {
		return
	}

	m.GuardDecisions.WithLabelValues(route, state).Inc()
}

// ShellRequest records a request served by the local shell.
func (m *Metrics) ShellRequest(method string, status int) {
	if m == nil {
		return
	}

	m.ShellRequests.WithLabelValues(method, strconv.Itoa(status/100)+"xx").Inc()
}

// Handler serves the collectors of gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	//nolint:exhaustruct
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
