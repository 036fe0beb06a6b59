// This file contains metrics-related types for observability of S3
// operations.
package s3

import "time"

// Metrics provides observability for S3 operations.
//
// Implementations can use this interface to collect metrics about operation
// counts, latency, throughput, and errors. This is optional - if not
// provided, metrics collection is skipped.
//
// Example implementations:
//   - Prometheus metrics
//   - In-memory counters for testing
type Metrics interface {
	// ObserveOperation records an S3 operation with its duration and outcome.
	ObserveOperation(operation string, duration time.Duration, err error)

	// RecordBytes records bytes transferred for fetch operations.
	RecordBytes(operation string, bytes int64)
}

// noopMetrics is the default no-op metrics implementation.
type noopMetrics struct{}

func (noopMetrics) ObserveOperation(operation string, duration time.Duration, err error) {}
func (noopMetrics) RecordBytes(operation string, bytes int64)                            {}
