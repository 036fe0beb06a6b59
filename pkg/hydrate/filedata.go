package hydrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DrChat/razmount/pkg/namespace"
	"github.com/DrChat/razmount/pkg/rangestore"
	"github.com/DrChat/razmount/pkg/remote"
)

// GetFileData returns file content for the requested byte range, fetching
// missing ranges from the remote store and committing them to the local
// range store before serving. Already-hydrated ranges are served without any
// remote traffic. Reads past the end of the file are clamped, so fewer bytes
// than requested may be returned near EOF.
//
// Concurrent requests for overlapping ranges of the same file collapse into
// a single remote fetch: one caller performs the round-trip and the rest
// wait for its completion, then serve from the shared store.
//
// Parameters:
//   - ctx: caller context; bounded further by the engine operation timeout
//   - path: file path relative to the mount root
//   - offset: starting byte offset into the file
//   - length: number of bytes requested
//
// Returns:
//   - The requested bytes, possibly clamped at EOF
//   - ErrPathNotFound if no remote object backs the path
//   - ErrIsDirectory if the path resolves to a directory
//   - remote.ErrRangeUnsatisfiable if offset is at or past EOF
//   - ErrStaleContent if the remote object changed under the cached size
func (e *Engine) GetFileData(ctx context.Context, path string, offset, length uint64) (_ []byte, err error) {
	start := time.Now()
	defer func() { e.cfg.Metrics.ObserveCallback("file_data", time.Since(start), err) }()

	ctx, cancel := e.opContext(ctx)
	defer cancel()

	p := e.caser.NewPath(path)
	fetched := false

	for {
		if _, rerr := e.resolvePresent(ctx, p); rerr != nil {
			return nil, rerr
		}

		// Re-read the entry under the lock: the pointer returned by
		// resolution can be replaced if the path's kind changed in a
		// concurrent re-listing.
		e.lock()
		ent := e.cache.Get(p)
		if ent == nil {
			e.unlock()
			return nil, fmt.Errorf("%s: %w", p, ErrPathNotFound)
		}
		if ent.Kind != namespace.KindFile {
			e.unlock()
			return nil, fmt.Errorf("%s: %w", p, ErrIsDirectory)
		}
		size := ent.Size
		tag := ent.RemoteTag
		if length == 0 {
			e.unlock()
			return []byte{}, nil
		}
		if offset >= size {
			e.unlock()
			return nil, fmt.Errorf("%s: offset %d beyond size %d: %w",
				p, offset, size, remote.ErrRangeUnsatisfiable)
		}
		req := namespace.ByteRange{Off: offset, End: min(offset+length, size)}

		if ent.Ranges.Covers(req) {
			e.unlock()
			buf := make([]byte, req.Len())
			if rerr := e.store.ReadAt(ctx, p.Key(), tag, buf, req.Off); rerr != nil {
				if errors.Is(rerr, rangestore.ErrRangeNotResident) {
					// Metadata says resident but the store
					// disagrees; drop the stale bookkeeping
					// and hydrate again.
					e.lock()
					if cur := e.cache.Get(p); cur != nil {
						cur.ResetContent()
					}
					e.unlock()
					continue
				}
				return nil, rerr
			}
			if fetched {
				e.cfg.Metrics.RecordCacheMiss("file_data")
			} else {
				e.cfg.Metrics.RecordCacheHit("file_data")
			}
			return buf, nil
		}

		// Some portion of the range is missing. Join an overlapping
		// in-flight fetch if one exists, otherwise become the fetcher
		// for the full uncovered span.
		if f := e.overlappingFetchLocked(p, req); f != nil {
			e.unlock()
			select {
			case <-f.done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}

		gaps := ent.Ranges.Gaps(req)
		span := namespace.ByteRange{Off: gaps[0].Off, End: gaps[len(gaps)-1].End}
		ent.State = namespace.ContentFetching
		f := &fetchFlight{span: span, done: make(chan struct{})}
		e.fetches[p.Key()] = append(e.fetches[p.Key()], f)
		e.unlock()

		fetched = true
		data, ferr := e.fetchRange(ctx, p, tag, span)

		e.lock()
		ferr = e.commitFetchLocked(p, tag, span, data, ferr)
		e.removeFetchLocked(p, f)
		close(f.done)
		e.unlock()

		if ferr != nil {
			if errors.Is(ferr, remote.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", p, ErrPathNotFound)
			}
			return nil, ferr
		}
	}
}

// fetchRange issues the remote range read with throttling and bounded retry.
// The read is conditioned on the tag the range was requested under, so the
// store rejects it outright if the object has been replaced.
func (e *Engine) fetchRange(ctx context.Context, p namespace.Path, tag string, span namespace.ByteRange) ([]byte, error) {
	key := e.remotePath(p)
	var data []byte
	err := e.withRetry(ctx, "fetch_range", func(ctx context.Context) error {
		var err error
		data, err = e.client.FetchRange(ctx, key, tag, span.Off, span.Len())
		return err
	})
	return data, err
}

// commitFetchLocked applies the outcome of a remote fetch to the namespace
// cache and the range store. A completed fetch commits even when the
// caller's context has since been cancelled; waiters still benefit from the
// bytes. Caller holds the engine lock.
func (e *Engine) commitFetchLocked(p namespace.Path, tag string, span namespace.ByteRange, data []byte, ferr error) error {
	if errors.Is(ferr, remote.ErrNotFound) {
		e.invalidateMissingLocked(p)
		return ferr
	}
	if errors.Is(ferr, remote.ErrTagMismatch) {
		// The store rejected the conditional read: the object was
		// replaced after it was listed. Drop cached state and flag the
		// parent so the next lookup picks up the new version.
		if cur := e.cache.Get(p); cur != nil {
			cur.ResetContent()
		}
		if parent := e.cache.Get(p.Parent()); parent != nil {
			parent.ChildrenListed = false
		}
		e.discardContent(p, "tag_changed")
		return fmt.Errorf("%s: %w", p, ErrStaleContent)
	}
	if ferr != nil {
		// Leave Fetching only while a fetch is actually in flight.
		if cur := e.cache.Get(p); cur != nil && cur.State == namespace.ContentFetching {
			if cur.Ranges.IsEmpty() {
				cur.State = namespace.ContentNotFetched
			} else {
				cur.State = namespace.ContentCached
			}
		}
		return ferr
	}

	cur := e.cache.Get(p)
	if cur == nil || cur.RemoteTag != tag {
		// The entry was invalidated while the fetch was in flight.
		// The bytes belong to the old object version; drop them.
		return nil
	}
	if uint64(len(data)) < span.Len() {
		// The object shrank under its listed size. Invalidate and
		// flag the parent so the next lookup re-validates.
		cur.ResetContent()
		if parent := e.cache.Get(p.Parent()); parent != nil {
			parent.ChildrenListed = false
		}
		e.discardContent(p, "size_changed")
		return fmt.Errorf("%s: %w", p, ErrStaleContent)
	}

	if err := e.store.WriteAt(context.Background(), p.Key(), tag, span.Off, data); err != nil {
		return fmt.Errorf("committing hydrated range: %w", err)
	}
	cur.Ranges.Insert(namespace.ByteRange{Off: span.Off, End: span.Off + uint64(len(data))})
	cur.State = namespace.ContentCached
	e.cfg.Metrics.RecordHydratedBytes(int64(len(data)))
	return nil
}

// overlappingFetchLocked returns an in-flight fetch whose span overlaps r,
// or nil. Caller holds the engine lock.
func (e *Engine) overlappingFetchLocked(p namespace.Path, r namespace.ByteRange) *fetchFlight {
	for _, f := range e.fetches[p.Key()] {
		if f.span.Overlaps(r) {
			return f
		}
	}
	return nil
}

// removeFetchLocked unregisters a completed fetch. Caller holds the engine
// lock.
func (e *Engine) removeFetchLocked(p namespace.Path, f *fetchFlight) {
	key := p.Key()
	flights := e.fetches[key]
	for i, g := range flights {
		if g == f {
			flights = append(flights[:i], flights[i+1:]...)
			break
		}
	}
	if len(flights) == 0 {
		delete(e.fetches, key)
	} else {
		e.fetches[key] = flights
	}
}
