package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/DrChat/razmount/pkg/hydrate"
)

// engineMetrics is the Prometheus implementation of hydrate.Metrics.
//
// It collects:
//   - Projection callback counts and latency by callback and status
//   - Remote round-trips issued by the engine
//   - Cache hit/miss ratios per callback
//   - Bytes committed to the local hydration cache
//   - Invalidation counts by reason
type engineMetrics struct {
	callbacksTotal   *prometheus.CounterVec
	callbackDuration *prometheus.HistogramVec
	remoteCalls      *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	hydratedBytes    prometheus.Counter
	invalidations    *prometheus.CounterVec
}

// NewEngineMetrics creates a Prometheus-backed metrics recorder for the
// hydration engine.
//
// Returns nil if metrics are not enabled (InitRegistry not called), which
// causes the engine to fall back to its built-in no-op implementation.
func NewEngineMetrics() hydrate.Metrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &engineMetrics{
		callbacksTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "razmount_callbacks_total",
				Help: "Total number of projection callbacks by callback type and status",
			},
			[]string{"callback", "status"},
		),
		callbackDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "razmount_callback_duration_seconds",
				Help: "Duration of projection callbacks in seconds",
				Buckets: []float64{
					0.0005, // 0.5ms, cache hits
					0.001,  // 1ms
					0.005,  // 5ms
					0.01,   // 10ms
					0.05,   // 50ms
					0.1,    // 100ms
					0.5,    // 500ms
					1.0,    // 1s
					5.0,    // 5s
					30.0,   // 30s, operation timeout ceiling
				},
			},
			[]string{"callback"},
		),
		remoteCalls: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "razmount_engine_remote_calls_total",
				Help: "Total remote round-trips issued by the hydration engine",
			},
			[]string{"operation"},
		),
		cacheHits: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "razmount_cache_hits_total",
				Help: "Callbacks served entirely from local state",
			},
			[]string{"callback"},
		),
		cacheMisses: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "razmount_cache_misses_total",
				Help: "Callbacks that required remote traffic",
			},
			[]string{"callback"},
		),
		hydratedBytes: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "razmount_hydrated_bytes_total",
				Help: "Total bytes committed to the local hydration cache",
			},
		),
		invalidations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "razmount_invalidations_total",
				Help: "Cached entries discarded, by reason",
			},
			[]string{"reason"},
		),
	}
}

// ObserveCallback records a projection callback with its duration and outcome.
func (m *engineMetrics) ObserveCallback(callback string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.callbacksTotal.WithLabelValues(callback, status).Inc()
	m.callbackDuration.WithLabelValues(callback).Observe(duration.Seconds())
}

// RecordRemoteCall records one round-trip issued to the remote store.
func (m *engineMetrics) RecordRemoteCall(operation string) {
	m.remoteCalls.WithLabelValues(operation).Inc()
}

// RecordCacheHit records a callback served entirely from local state.
func (m *engineMetrics) RecordCacheHit(callback string) {
	m.cacheHits.WithLabelValues(callback).Inc()
}

// RecordCacheMiss records a callback that required remote traffic.
func (m *engineMetrics) RecordCacheMiss(callback string) {
	m.cacheMisses.WithLabelValues(callback).Inc()
}

// RecordHydratedBytes records bytes committed to the local range store.
func (m *engineMetrics) RecordHydratedBytes(n int64) {
	m.hydratedBytes.Add(float64(n))
}

// RecordInvalidation records a cached entry being discarded.
func (m *engineMetrics) RecordInvalidation(reason string) {
	m.invalidations.WithLabelValues(reason).Inc()
}
