// Package metrics provides a prometheus-backed MetricsCollector for
// vectorlite databases.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vectorlite/vectorlite"
)

// Compile-time check that the collector satisfies the root interface.
var _ vectorlite.MetricsCollector = (*PrometheusCollector)(nil)

// PrometheusCollector records operation counts, durations and search fan-out
// to a prometheus registry. Pass it to vectorlite.WithMetricsCollector.
type PrometheusCollector struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	topK       prometheus.Histogram
}

// NewPrometheusCollector registers the vectorlite metrics with the default
// prometheus registerer.
func NewPrometheusCollector() *PrometheusCollector {
	return NewPrometheusCollectorWith(prometheus.DefaultRegisterer)
}

// NewPrometheusCollectorWith registers the vectorlite metrics with r.
// Registering the same metric names twice on one registry panics, so create
// at most one collector per registry.
func NewPrometheusCollectorWith(r prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(r)

	return &PrometheusCollector{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vectorlite_operations_total",
				Help: "Total number of database operations processed",
			},
			[]string{"operation", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "vectorlite_operation_duration_seconds",
				Help: "Duration of database operations in seconds",
				// Buckets covering from microseconds (in-memory mutations)
				// to seconds (flushing a large file).
				Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 0.5, 1, 2.5, 5},
			},
			[]string{"operation"},
		),
		topK: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vectorlite_search_top_k",
				Help:    "Requested k per search call",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
	}
}

func (c *PrometheusCollector) record(op string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.operations.WithLabelValues(op, status).Inc()
	c.duration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordInsert implements vectorlite.MetricsCollector.
func (c *PrometheusCollector) RecordInsert(duration time.Duration, err error) {
	c.record("insert", duration, err)
}

// RecordSearch implements vectorlite.MetricsCollector.
func (c *PrometheusCollector) RecordSearch(k int, duration time.Duration, err error) {
	c.record("search", duration, err)
	c.topK.Observe(float64(k))
}

// RecordDelete implements vectorlite.MetricsCollector.
func (c *PrometheusCollector) RecordDelete(duration time.Duration, err error) {
	c.record("delete", duration, err)
}

// RecordFlush implements vectorlite.MetricsCollector.
func (c *PrometheusCollector) RecordFlush(duration time.Duration, err error) {
	c.record("flush", duration, err)
}
