// Package metrics holds the gateway's Prometheus instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	registry *prometheus.Registry

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Conversation turn outcomes: parsed cleanly vs rebuilt via fallback.
	TurnsTotal *prometheus.CounterVec

	// Fallback/backfill translation calls.
	TranslateFallbackTotal prometheus.Counter

	// Error metrics
	ErrorsTotal *prometheus.CounterVec
}

// New creates a Metrics instance with all metrics registered.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "kaiwa"
	}

	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"endpoint", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"endpoint"},
	)

	turnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Completed conversation turns by outcome",
		},
		[]string{"outcome"},
	)

	translateFallbackTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translate_fallback_total",
			Help:      "Fallback translations after unparseable model replies",
		},
	)

	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of errors",
		},
		[]string{"endpoint", "error_type"},
	)

	registry.MustRegister(
		requestsTotal,
		requestDuration,
		turnsTotal,
		translateFallbackTotal,
		errorsTotal,
	)

	return &Metrics{
		registry:               registry,
		RequestsTotal:          requestsTotal,
		RequestDuration:        requestDuration,
		TurnsTotal:             turnsTotal,
		TranslateFallbackTotal: translateFallbackTotal,
		ErrorsTotal:            errorsTotal,
	}
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest records a completed request.
func (m *Metrics) RecordRequest(endpoint, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordTurn records a completed conversation turn.
func (m *Metrics) RecordTurn(recovered bool) {
	outcome := "parsed"
	if recovered {
		outcome = "recovered"
		m.TranslateFallbackTotal.Inc()
	}
	m.TurnsTotal.WithLabelValues(outcome).Inc()
}

// RecordError records an error.
func (m *Metrics) RecordError(endpoint, errorType string) {
	m.ErrorsTotal.WithLabelValues(endpoint, errorType).Inc()
}
