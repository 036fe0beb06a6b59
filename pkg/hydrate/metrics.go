package hydrate

import "time"

// Metrics is the interface for recording hydration engine metrics.
// Implementations must be safe for concurrent use.
type Metrics interface {
	// ObserveCallback records the duration and outcome of a projection
	// callback (enumerate, placeholder_info, file_data).
	ObserveCallback(callback string, duration time.Duration, err error)

	// RecordRemoteCall records one round-trip issued to the remote store.
	RecordRemoteCall(operation string)

	// RecordCacheHit records a callback served entirely from local state.
	RecordCacheHit(callback string)

	// RecordCacheMiss records a callback that required remote traffic.
	RecordCacheMiss(callback string)

	// RecordHydratedBytes records bytes committed to the local range store.
	RecordHydratedBytes(n int64)

	// RecordInvalidation records a cached entry being discarded
	// (tag_changed, size_changed, not_found).
	RecordInvalidation(reason string)
}

// noopMetrics is the default Metrics implementation. It discards all
// observations so the engine never needs nil checks on the hot path.
type noopMetrics struct{}

func (noopMetrics) ObserveCallback(string, time.Duration, error) {}
func (noopMetrics) RecordRemoteCall(string)                      {}
func (noopMetrics) RecordCacheHit(string)                        {}
func (noopMetrics) RecordCacheMiss(string)                       {}
func (noopMetrics) RecordHydratedBytes(int64)                    {}
func (noopMetrics) RecordInvalidation(string)                    {}
