// Package rangestore stores the hydrated byte ranges of projected files.
//
// The namespace cache records WHICH ranges of a file are locally resident;
// this package stores the bytes themselves. Splitting the two keeps the
// metadata cache small and lets the byte storage be swapped: in-memory for
// small mounts, BadgerDB-backed for mounts that hydrate more than fits in
// heap.
//
// Content is addressed by (path key, remote tag): bytes cached under a stale
// tag can never be served for the fresh one, which enforces the discard-on-
// change policy without a sweep.
package rangestore

import (
	"context"
	"errors"
)

// ErrRangeNotResident indicates a read of bytes the store does not hold.
//
// The hydration engine consults the namespace cache's range set before
// reading, so hitting this error indicates the two views diverged; the
// engine treats it by re-fetching rather than serving partial data.
var ErrRangeNotResident = errors.New("range not resident in local store")

// Store holds hydrated byte ranges, keyed by path and remote tag.
//
// Implementations must be safe for concurrent use: the hydration engine
// writes ranges for one path while serving reads for others. Writes for the
// same path with a NEW tag implicitly discard bytes held under the old one.
type Store interface {
	// WriteAt stores data at the given offset of the file identified by
	// pathKey under the given remote tag.
	WriteAt(ctx context.Context, pathKey, tag string, offset uint64, data []byte) error

	// ReadAt fills buf with bytes starting at offset. Every requested byte
	// must be resident under the given tag; otherwise ErrRangeNotResident.
	ReadAt(ctx context.Context, pathKey, tag string, buf []byte, offset uint64) error

	// Discard drops all content held for pathKey, under any tag.
	// Discarding an unknown path is a no-op.
	Discard(ctx context.Context, pathKey string) error

	// Close releases the store's resources. For ephemeral on-disk stores
	// this removes the backing directory; hydrated content never survives
	// a mount.
	Close() error
}
