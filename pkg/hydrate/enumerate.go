package hydrate

import (
	"context"
	"fmt"
	"time"

	"github.com/DrChat/razmount/pkg/namespace"
	"github.com/DrChat/razmount/pkg/placeholder"
)

// EnumerateDirectory returns placeholder records for the children of path,
// listing the remote store on first touch and serving from the namespace
// cache afterwards. Children whose names cannot be represented locally are
// skipped and reported through the notification sink; they never abort the
// enumeration.
//
// Parameters:
//   - ctx: caller context; bounded further by the engine operation timeout
//   - path: directory path relative to the mount root, "/" for the root
//
// Returns:
//   - Placeholder records in remote listing order
//   - ErrPathNotFound if the path does not resolve
//   - ErrNotDirectory if the path resolves to a file
func (e *Engine) EnumerateDirectory(ctx context.Context, path string) (_ []placeholder.Placeholder, err error) {
	start := time.Now()
	defer func() { e.cfg.Metrics.ObserveCallback("enumerate", time.Since(start), err) }()

	ctx, cancel := e.opContext(ctx)
	defer cancel()

	p := e.caser.NewPath(path)
	ent, err := e.resolvePresent(ctx, p)
	if err != nil {
		return nil, err
	}
	if ent.Kind != namespace.KindDirectory {
		return nil, fmt.Errorf("%s: %w", p, ErrNotDirectory)
	}

	e.lock()
	listed := ent.ChildrenListed
	e.unlock()
	if listed {
		e.cfg.Metrics.RecordCacheHit("enumerate")
	} else {
		e.cfg.Metrics.RecordCacheMiss("enumerate")
		if err := e.ensureListed(ctx, p); err != nil {
			return nil, err
		}
	}

	// Conversion happens under the lock: a concurrent re-listing mutates
	// entry fields in place, so the records must be snapshotted before the
	// lock is dropped.
	e.lock()
	names := e.cache.Children(p)
	entries := make([]*namespace.Entry, 0, len(names))
	for _, name := range names {
		if child := e.cache.Get(p.Join(name)); child != nil {
			entries = append(entries, child)
		}
	}
	placeholders, skipped := placeholder.FromEntries(entries)
	e.unlock()

	for _, name := range skipped {
		e.cfg.Sink.NameSkipped(p.String(), name, placeholder.ErrUnprojectableName)
	}
	return placeholders, nil
}

// GetPlaceholderInfo returns the placeholder record for a single path,
// enumerating ancestor directories on demand. Unlike a plain cache lookup it
// verifies the path still appears in its parent's listing, so a path whose
// backing object vanished reports ErrPathNotFound once the parent has been
// re-validated.
//
// Parameters:
//   - ctx: caller context; bounded further by the engine operation timeout
//   - path: file or directory path relative to the mount root
//
// Returns:
//   - The placeholder record for the path
//   - ErrPathNotFound if no remote object backs the path
func (e *Engine) GetPlaceholderInfo(ctx context.Context, path string) (_ placeholder.Placeholder, err error) {
	start := time.Now()
	defer func() { e.cfg.Metrics.ObserveCallback("placeholder_info", time.Since(start), err) }()

	ctx, cancel := e.opContext(ctx)
	defer cancel()

	p := e.caser.NewPath(path)
	if p.IsRoot() {
		// The mount root is always a known directory and carries no
		// leaf name of its own.
		e.cfg.Metrics.RecordCacheHit("placeholder_info")
		return placeholder.Placeholder{IsDir: true}, nil
	}

	e.lock()
	known := e.cache.Get(p) != nil
	e.unlock()
	if known {
		e.cfg.Metrics.RecordCacheHit("placeholder_info")
	} else {
		e.cfg.Metrics.RecordCacheMiss("placeholder_info")
	}

	ent, err := e.resolvePresent(ctx, p)
	if err != nil {
		return placeholder.Placeholder{}, err
	}

	e.lock()
	ph, err := placeholder.FromEntry(ent)
	e.unlock()
	if err != nil {
		return placeholder.Placeholder{}, fmt.Errorf("%s: %w", p, err)
	}
	return ph, nil
}

// RefreshDirectory forces the next access to dir to re-list the remote
// store, applying tag and size invalidation to refreshed children. It is the
// entry point for out-of-band change notifications; normal callbacks never
// re-list a directory once cached.
//
// Parameters:
//   - ctx: caller context; bounded further by the engine operation timeout
//   - path: directory path relative to the mount root
//
// Returns:
//   - ErrPathNotFound if the directory no longer resolves
func (e *Engine) RefreshDirectory(ctx context.Context, path string) error {
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	p := e.caser.NewPath(path)
	e.lock()
	if ent := e.cache.Get(p); ent != nil && ent.Kind == namespace.KindDirectory {
		ent.ChildrenListed = false
	}
	e.unlock()
	return e.ensureListed(ctx, p)
}
