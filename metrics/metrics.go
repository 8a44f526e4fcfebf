// Package metrics provides Prometheus instrumentation for store operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the interface repositories use to report store operations.
type Recorder interface {
	// RecordOp records one store operation against a collection.
	RecordOp(collection, op string, d time.Duration)
	// RecordOpFailure records a store operation that returned an error.
	RecordOpFailure(collection, op string)
}

// Collector is a Prometheus-backed Recorder.
type Collector struct {
	opDuration *prometheus.HistogramVec
	opFailures *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mflix_store_operation_seconds",
			Help:    "Duration of document store operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"collection", "op"}),
		opFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mflix_store_operation_failures_total",
			Help: "Store operations that returned an error.",
		}, []string{"collection", "op"}),
	}

	reg.MustRegister(c.opDuration, c.opFailures)

	return c
}

// RecordOp records one store operation against a collection.
func (c *Collector) RecordOp(collection, op string, d time.Duration) {
	c.opDuration.WithLabelValues(collection, op).Observe(d.Seconds())
}

// RecordOpFailure records a store operation that returned an error.
func (c *Collector) RecordOpFailure(collection, op string) {
	c.opFailures.WithLabelValues(collection, op).Inc()
}

var _ Recorder = (*Collector)(nil)
