// Package host defines the boundary between the hydration engine and the
// platform filesystem driver that projects the virtual tree. Concrete hosts
// live in subpackages; pkg/host/fuse is the FUSE implementation.
package host

import (
	"context"

	"github.com/DrChat/razmount/internal/logger"
	"github.com/DrChat/razmount/pkg/placeholder"
)

// Projector is the engine surface a projection host drives. Every callback
// is safe for concurrent use; hosts invoke them directly from driver
// threads.
type Projector interface {
	// EnumerateDirectory returns placeholder records for a directory's
	// children.
	EnumerateDirectory(ctx context.Context, path string) ([]placeholder.Placeholder, error)

	// GetPlaceholderInfo returns the placeholder record for one path.
	GetPlaceholderInfo(ctx context.Context, path string) (placeholder.Placeholder, error)

	// GetFileData returns file content for a byte range, hydrating it
	// from the remote store on first touch.
	GetFileData(ctx context.Context, path string, offset, length uint64) ([]byte, error)

	// RefreshDirectory forces the next access to re-list a directory,
	// used when an external change notification arrives.
	RefreshDirectory(ctx context.Context, path string) error
}

// Host mounts the projected tree at a local path.
type Host interface {
	// Mount attaches the projection and blocks until it is unmounted or
	// ctx is cancelled.
	Mount(ctx context.Context) error

	// Unmount detaches the projection. Safe to call from another
	// goroutine while Mount blocks.
	Unmount() error
}

// LoggingSink reports engine notifications through the process logger. It is
// the default sink when no driver-level invalidation channel exists.
type LoggingSink struct{}

func (LoggingSink) PathInvalidated(path, reason string) {
	logger.Info("Invalidated %s (%s)", path, reason)
}

func (LoggingSink) NameSkipped(dir, name string, err error) {
	logger.Warn("Skipping unprojectable name %q in %s: %v", name, dir, err)
}
