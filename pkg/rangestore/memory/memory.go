// Package memory implements an in-memory range store.
//
// The default backend: hydrated ranges live in per-file buffers on the heap.
// Suitable for mounts whose working set fits in memory; larger mounts select
// the badger backend instead.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/DrChat/razmount/pkg/rangestore"
)

// Store implements rangestore.Store with per-file heap buffers.
//
// Each file holds one contiguous buffer grown to the highest written offset.
// Which parts of that buffer are valid is the namespace cache's bookkeeping;
// the store additionally tracks its own resident set so that reads of bytes
// never written fail loudly instead of returning zeroes.
//
// Thread Safety:
// A single read-write mutex protects the file map. Writes for the same path
// are serialized by the hydration engine's per-path locking; the mutex here
// guards cross-path concurrent access.
type Store struct {
	mu    sync.RWMutex
	files map[string]*file
}

type file struct {
	tag     string
	data    []byte
	written []span
}

type span struct{ off, end uint64 }

// New creates an empty in-memory range store.
func New() *Store {
	return &Store{files: make(map[string]*file)}
}

// WriteAt stores data at offset. A write under a tag different from the one
// currently held discards the old content first.
func (s *Store) WriteAt(ctx context.Context, pathKey, tag string, offset uint64, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.files[pathKey]
	if f == nil || f.tag != tag {
		f = &file{tag: tag}
		s.files[pathKey] = f
	}

	end := offset + uint64(len(data))
	if end > uint64(len(f.data)) {
		grown := make([]byte, end)
		copy(grown, f.data)
		f.data = grown
	}
	copy(f.data[offset:end], data)
	f.written = mergeSpan(f.written, span{offset, end})

	return nil
}

// ReadAt fills buf from offset. Fails with ErrRangeNotResident if any
// requested byte was never written under this tag.
func (s *Store) ReadAt(ctx context.Context, pathKey, tag string, buf []byte, offset uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(buf) == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f := s.files[pathKey]
	if f == nil || f.tag != tag {
		return fmt.Errorf("%s: %w", pathKey, rangestore.ErrRangeNotResident)
	}

	end := offset + uint64(len(buf))
	if !covered(f.written, span{offset, end}) {
		return fmt.Errorf("%s [%d,%d): %w", pathKey, offset, end, rangestore.ErrRangeNotResident)
	}

	copy(buf, f.data[offset:end])
	return nil
}

// Discard drops all content for a path.
func (s *Store) Discard(ctx context.Context, pathKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, pathKey)
	return nil
}

// Close releases the store. In-memory content simply becomes garbage.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string]*file)
	return nil
}

// mergeSpan inserts a span into a sorted, coalesced span list.
func mergeSpan(spans []span, n span) []span {
	out := spans[:0]
	inserted := false

	for _, sp := range spans {
		switch {
		case sp.end < n.off:
			out = append(out, sp)
		case n.end < sp.off:
			if !inserted {
				out = append(out, n)
				inserted = true
			}
			out = append(out, sp)
		default:
			if sp.off < n.off {
				n.off = sp.off
			}
			if sp.end > n.end {
				n.end = sp.end
			}
		}
	}

	if !inserted {
		out = append(out, n)
	}

	return out
}

// covered reports whether r is fully inside one coalesced span.
func covered(spans []span, r span) bool {
	for _, sp := range spans {
		if sp.off <= r.off && r.end <= sp.end {
			return true
		}
	}
	return false
}
