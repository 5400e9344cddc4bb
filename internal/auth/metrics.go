package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Authentication outcomes reported to metrics.
const (
	OutcomeSuccess   = "success"
	OutcomeChallenge = "challenge"
	OutcomeDenied    = "denied"
	OutcomeError     = "error"
)

// Metrics holds Prometheus metrics for authentication operations.
type Metrics struct {
	attemptsTotal   *prometheus.CounterVec
	attemptDuration prometheus.Histogram
	registerer      prometheus.Registerer
}

// NewMetrics creates a new Metrics instance registered with
// prometheus.DefaultRegisterer so it is exposed on the default /metrics
// endpoint.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer creates a new Metrics instance with a custom
// registerer. Useful for testing where a private registry is preferred.
func NewMetricsWithRegisterer(namespace string, registerer prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "gateway"
	}
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{registerer: registerer}

	m.attemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Total number of authentication attempts by outcome",
		},
		[]string{"outcome"},
	)

	m.attemptDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "attempt_duration_seconds",
			Help:      "Authentication attempt duration in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	registerer.MustRegister(m.attemptsTotal, m.attemptDuration)

	return m
}

// RecordAttempt records a completed authentication attempt.
func (m *Metrics) RecordAttempt(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.attemptsTotal.WithLabelValues(outcome).Inc()
	m.attemptDuration.Observe(duration.Seconds())
}

// Unregister removes the metrics from the registerer.
func (m *Metrics) Unregister() {
	if m == nil {
		return
	}
	m.registerer.Unregister(m.attemptsTotal)
	m.registerer.Unregister(m.attemptDuration)
}
