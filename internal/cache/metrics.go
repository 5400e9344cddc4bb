package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for cache operations.
type Metrics struct {
	hitsTotal      *prometheus.CounterVec
	missesTotal    *prometheus.CounterVec
	evictionsTotal *prometheus.CounterVec
	sizeGauge      *prometheus.GaugeVec
}

// NewMetrics creates cache metrics registered with the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer creates cache metrics registered with the given
// registerer.
func NewMetricsWithRegisterer(namespace string, registerer prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "gateway"
	}

	m := &Metrics{
		hitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"backend"},
		),
		missesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"backend"},
		),
		evictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "evictions_total",
				Help:      "Total number of cache evictions",
			},
			[]string{"backend"},
		),
		sizeGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "size",
				Help:      "Current number of items in cache",
			},
			[]string{"backend"},
		),
	}

	registerer.MustRegister(m.hitsTotal, m.missesTotal, m.evictionsTotal, m.sizeGauge)

	return m
}

// RecordHit increments the hit counter for a backend.
func (m *Metrics) RecordHit(backend string) {
	if m == nil {
		return
	}
	m.hitsTotal.WithLabelValues(backend).Inc()
}

// RecordMiss increments the miss counter for a backend.
func (m *Metrics) RecordMiss(backend string) {
	if m == nil {
		return
	}
	m.missesTotal.WithLabelValues(backend).Inc()
}

// RecordEviction increments the eviction counter for a backend.
func (m *Metrics) RecordEviction(backend string) {
	if m == nil {
		return
	}
	m.evictionsTotal.WithLabelValues(backend).Inc()
}

// SetSize records the current entry count for a backend.
func (m *Metrics) SetSize(backend string, size int) {
	if m == nil {
		return
	}
	m.sizeGauge.WithLabelValues(backend).Set(float64(size))
}
