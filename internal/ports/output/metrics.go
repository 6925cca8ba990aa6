package output

import "time"

// MetricsCollector defines the secondary port for metrics collection.
type MetricsCollector interface {
	// IncFeature counts one processed feature with its outcome
	// (accepted, filtered, skipped).
	IncFeature(flavor string, outcome string)

	// AddCoveringEntries counts covering entries produced by a run.
	AddCoveringEntries(flavor string, n int)

	// ObserveGenerateDuration records the wall time of a whole run.
	ObserveGenerateDuration(flavor string, duration time.Duration)

	// IncStorageOperations increments storage operation counter.
	IncStorageOperations(operation string, success bool)
}

// Feature outcome labels.
const (
	OutcomeAccepted = "accepted"
	OutcomeFiltered = "filtered"
	OutcomeSkipped  = "skipped"
)

// NoOpMetrics is a no-op implementation of MetricsCollector.
type NoOpMetrics struct{}

// IncFeature implements MetricsCollector.
func (n *NoOpMetrics) IncFeature(_ string, _ string) {}

// AddCoveringEntries implements MetricsCollector.
func (n *NoOpMetrics) AddCoveringEntries(_ string, _ int) {}

// ObserveGenerateDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveGenerateDuration(_ string, _ time.Duration) {}

// IncStorageOperations implements MetricsCollector.
func (n *NoOpMetrics) IncStorageOperations(_ string, _ bool) {}
