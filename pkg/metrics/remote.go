package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	remoteS3 "github.com/DrChat/razmount/pkg/remote/s3"
)

// remoteMetrics is the Prometheus implementation of the remote client
// metrics interface.
//
// It collects:
//   - Operation counts by operation type and status
//   - Operation latency
//   - Bytes fetched from the remote store
type remoteMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTransferred  *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
}

// NewRemoteMetrics creates a Prometheus-backed metrics recorder for the
// remote object client.
//
// Returns nil if metrics are not enabled (InitRegistry not called), which
// causes the client to fall back to its built-in no-op implementation.
func NewRemoteMetrics() remoteS3.Metrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &remoteMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "razmount_remote_operations_total",
				Help: "Total number of remote store operations by operation type and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "razmount_remote_operation_duration_seconds",
				Help: "Duration of remote store operations in seconds",
				Buckets: []float64{
					0.01,  // 10ms
					0.025, // 25ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.25,  // 250ms
					0.5,   // 500ms
					1.0,   // 1s
					2.5,   // 2.5s
					5.0,   // 5s
					10.0,  // 10s
					30.0,  // 30s
				},
			},
			[]string{"operation"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "razmount_remote_bytes_transferred_total",
				Help: "Total bytes fetched from the remote store",
			},
			[]string{"operation"},
		),
		errorsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "razmount_remote_errors_total",
				Help: "Total number of remote operation errors by operation type",
			},
			[]string{"operation"},
		),
	}
}

// ObserveOperation records a remote operation with its duration and outcome.
func (m *remoteMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		m.errorsTotal.WithLabelValues(operation).Inc()
	}

	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordBytes records bytes transferred for fetch operations.
func (m *remoteMetrics) RecordBytes(operation string, bytes int64) {
	m.bytesTransferred.WithLabelValues(operation).Add(float64(bytes))
}
