// Package remote defines the boundary between the hydration engine and the
// remote object store backing the projected tree.
//
// Implementations are pure request/response clients with no local state: they
// list the immediate children of a prefix and fetch byte ranges of a named
// object. All caching, retry, and coalescing policy lives above this boundary
// in the hydration engine.
package remote

import "context"

// ObjectKind distinguishes file objects from directory prefixes in a listing.
type ObjectKind int

const (
	// KindFile is a regular object with byte content.
	KindFile ObjectKind = iota

	// KindDirectory is a hierarchy level inferred from the store's delimiter
	// listing. Object stores cannot represent empty directories; a directory
	// exists only because at least one object lives beneath it.
	KindDirectory
)

func (k ObjectKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// ObjectInfo describes one immediate child returned by a listing.
type ObjectInfo struct {
	// Name is the child's leaf name, relative to the listed prefix. It never
	// contains a path separator.
	Name string

	// Kind reports whether the child is a file object or a directory prefix.
	Kind ObjectKind

	// Size is the object's byte length. Zero for directories.
	Size uint64

	// Tag is the store's opaque version/identity token for the object (an
	// ETag equivalent). Empty for directories, which have no identity of
	// their own in an object store.
	Tag string
}

// ObjectClient is the read-only contract the hydration engine requires from
// the remote store.
//
// Implementations must be safe for concurrent use by multiple goroutines and
// must not retry internally: transient failures are reported as
// ErrUnavailable and retried (bounded) by the engine.
type ObjectClient interface {
	// ListChildren lists the immediate children of the given prefix, one
	// hierarchy level only. The prefix is a forward-slash path relative to
	// the container root; "" lists the root.
	//
	// Returns ErrNotFound if the prefix no longer exists (no object lives at
	// or beneath it), or ErrUnavailable for network or service failures.
	ListChildren(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// FetchRange reads length bytes of the named object starting at offset.
	// It returns exactly length bytes, or fewer only when the range extends
	// past the end of the object.
	//
	// A non-empty tag makes the read conditional on the object still
	// carrying that version tag, so bytes of a replaced object are never
	// returned under the old identity. An empty tag reads unconditionally.
	//
	// Returns ErrNotFound if the object was deleted since it was listed,
	// ErrTagMismatch if a non-empty tag no longer matches the object,
	// ErrRangeUnsatisfiable if offset is at or beyond the object's size, or
	// ErrUnavailable for network or service failures.
	FetchRange(ctx context.Context, key string, tag string, offset uint64, length uint64) ([]byte, error)
}
