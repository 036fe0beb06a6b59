package remote

import "errors"

// These errors provide a consistent way to classify remote store failures
// across all ObjectClient implementations. The hydration engine checks for
// them with errors.Is and decides retry policy; implementations wrap them
// with additional context:
//
//	if noSuchKey(err) {
//	    return nil, fmt.Errorf("object %s: %w", key, remote.ErrNotFound)
//	}
var (
	// ErrUnavailable indicates a transient network or service failure.
	//
	// This error is returned when:
	//   - The connection to the store failed or timed out
	//   - The service answered with a throttling or 5xx-class response
	//   - Authentication infrastructure was temporarily unreachable
	//
	// This is a transient error. The hydration engine retries it with
	// backoff, bounded, before surfacing an I/O error to the caller.
	ErrUnavailable = errors.New("remote store unavailable")

	// ErrNotFound indicates the object or prefix no longer exists.
	//
	// This error is returned when:
	//   - FetchRange names an object deleted since it was listed
	//   - ListChildren names a prefix with no objects beneath it
	//
	// Not retried. The engine invalidates its cache entry and surfaces a
	// missing-path condition.
	ErrNotFound = errors.New("remote object not found")

	// ErrRangeUnsatisfiable indicates the requested byte range starts at or
	// beyond the object's size.
	//
	// Not retried. Surfaces as an out-of-range read error.
	ErrRangeUnsatisfiable = errors.New("requested range not satisfiable")

	// ErrTagMismatch indicates the object's current version tag no longer
	// matches the tag the fetch was conditioned on.
	//
	// This error is returned when:
	//   - FetchRange names a tag and the object was replaced since it was
	//     listed (the store rejects the conditional read)
	//
	// Not retried. The engine discards cached state for the path and
	// surfaces a stale-content condition.
	ErrTagMismatch = errors.New("remote object tag mismatch")
)
