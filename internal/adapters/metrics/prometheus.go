// Package metrics provides Prometheus metrics collection.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements the MetricsCollector port using Prometheus.
type Collector struct {
	features         *prometheus.CounterVec
	coveringEntries  *prometheus.CounterVec
	generateDuration *prometheus.HistogramVec
	storageOps       *prometheus.CounterVec
}

// NewCollector creates a new Prometheus metrics collector.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "geocore"
	}

	return &Collector{
		features: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "features_total",
				Help:      "Processed features by index flavor and outcome",
			},
			[]string{"flavor", "outcome"},
		),

		coveringEntries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "covering_entries_total",
				Help:      "Covering entries produced per index flavor",
			},
			[]string{"flavor"},
		),

		generateDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generate_duration_seconds",
				Help:      "Wall time of whole index generation runs",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"flavor"},
		),

		storageOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_operations_total",
				Help:      "Total number of storage operations",
			},
			[]string{"operation", "status"},
		),
	}
}

// IncFeature counts one processed feature.
func (c *Collector) IncFeature(flavor string, outcome string) {
	c.features.WithLabelValues(flavor, outcome).Inc()
}

// AddCoveringEntries counts covering entries produced by a run.
func (c *Collector) AddCoveringEntries(flavor string, n int) {
	c.coveringEntries.WithLabelValues(flavor).Add(float64(n))
}

// ObserveGenerateDuration records the wall time of a whole run.
func (c *Collector) ObserveGenerateDuration(flavor string, duration time.Duration) {
	c.generateDuration.WithLabelValues(flavor).Observe(duration.Seconds())
}

// IncStorageOperations increments storage operation counter.
func (c *Collector) IncStorageOperations(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	c.storageOps.WithLabelValues(operation, status).Inc()
}
