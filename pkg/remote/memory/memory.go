// Package memory implements an in-memory remote object client.
//
// The store is a flat map of object keys to byte content and version tags,
// mirroring how an object store models a hierarchy: directories exist only
// because objects live beneath them. It is used as a test double for the
// hydration engine and as a fixture backend; the call counters and fault
// hooks exist so tests can assert exactly how many round-trips the engine
// issued.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/DrChat/razmount/pkg/remote"
)

// ObjectClient implements remote.ObjectClient over an in-memory object map.
//
// Thread Safety:
// All operations are protected by a read-write mutex and safe for concurrent
// use, matching the contract the hydration engine relies on.
type ObjectClient struct {
	mu      sync.RWMutex
	objects map[string]*object

	// listCalls and fetchCalls count remote round-trips, for tests that
	// assert coalescing and idempotence.
	listCalls  atomic.Int64
	fetchCalls atomic.Int64

	// failListWith and failFetchWith, when non-nil, force the next matching
	// operation to fail with the given error.
	failListWith  error
	failFetchWith error

	// listBarrier and fetchBarrier, when non-nil, are invoked by
	// ListChildren and FetchRange before touching the object map. Tests
	// use them to hold calls in flight.
	listBarrier  func(prefix string)
	fetchBarrier func(key string)
}

type object struct {
	data []byte
	tag  string
}

// New creates an empty in-memory object client.
func New() *ObjectClient {
	return &ObjectClient{objects: make(map[string]*object)}
}

// Put stores or replaces an object. The tag should change whenever the data
// does, as a real store's ETag would.
func (c *ObjectClient) Put(key string, data []byte, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[strings.TrimPrefix(key, "/")] = &object{data: append([]byte(nil), data...), tag: tag}
}

// Delete removes an object. Deleting a missing key is a no-op.
func (c *ObjectClient) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, strings.TrimPrefix(key, "/"))
}

// ListCalls returns the number of ListChildren invocations so far.
func (c *ObjectClient) ListCalls() int64 { return c.listCalls.Load() }

// FetchCalls returns the number of FetchRange invocations so far.
func (c *ObjectClient) FetchCalls() int64 { return c.fetchCalls.Load() }

// FailListWith forces subsequent ListChildren calls to fail with err.
// Pass nil to restore normal behavior.
func (c *ObjectClient) FailListWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failListWith = err
}

// FailFetchWith forces subsequent FetchRange calls to fail with err.
// Pass nil to restore normal behavior.
func (c *ObjectClient) FailFetchWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failFetchWith = err
}

// SetListBarrier installs a hook invoked at the start of every ListChildren.
// Tests use it to park listings while concurrent callers pile up.
func (c *ObjectClient) SetListBarrier(fn func(prefix string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listBarrier = fn
}

// SetFetchBarrier installs a hook invoked at the start of every FetchRange.
// Tests use it to park fetches while concurrent callers pile up.
func (c *ObjectClient) SetFetchBarrier(fn func(key string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchBarrier = fn
}

// ListChildren lists immediate children of the prefix, one level deep.
//
// Children are derived by scanning keys under the prefix: a key with a
// further "/" contributes a directory child for its first segment, any other
// key contributes a file child. Results are sorted by name for determinism;
// callers must not depend on that ordering for correctness.
func (c *ObjectClient) ListChildren(ctx context.Context, prefix string) ([]remote.ObjectInfo, error) {
	c.listCalls.Add(1)

	c.mu.RLock()
	barrier := c.listBarrier
	c.mu.RUnlock()

	if barrier != nil {
		barrier(prefix)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.failListWith != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, c.failListWith)
	}

	scan := strings.TrimPrefix(prefix, "/")
	if scan != "" {
		scan += "/"
	}

	files := make(map[string]remote.ObjectInfo)
	dirs := make(map[string]bool)

	for key, obj := range c.objects {
		if !strings.HasPrefix(key, scan) {
			continue
		}

		rest := key[len(scan):]
		if rest == "" {
			continue
		}

		if i := strings.IndexByte(rest, '/'); i >= 0 {
			dirs[rest[:i]] = true
			continue
		}

		files[rest] = remote.ObjectInfo{
			Name: rest,
			Kind: remote.KindFile,
			Size: uint64(len(obj.data)),
			Tag:  obj.tag,
		}
	}

	if len(files) == 0 && len(dirs) == 0 && scan != "" {
		return nil, fmt.Errorf("prefix %q: %w", prefix, remote.ErrNotFound)
	}

	children := make([]remote.ObjectInfo, 0, len(files)+len(dirs))
	for name := range dirs {
		children = append(children, remote.ObjectInfo{Name: name, Kind: remote.KindDirectory})
	}
	for _, info := range files {
		children = append(children, info)
	}

	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })

	return children, nil
}

// FetchRange reads a byte range of an object. A non-empty tag makes the read
// conditional: a tag that no longer matches the stored object fails with
// ErrTagMismatch, mirroring a real store's If-Match rejection.
func (c *ObjectClient) FetchRange(ctx context.Context, key string, tag string, offset uint64, length uint64) ([]byte, error) {
	c.fetchCalls.Add(1)

	c.mu.RLock()
	barrier := c.fetchBarrier
	c.mu.RUnlock()

	if barrier != nil {
		barrier(key)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.failFetchWith != nil {
		return nil, fmt.Errorf("fetch %q: %w", key, c.failFetchWith)
	}

	obj, ok := c.objects[strings.TrimPrefix(key, "/")]
	if !ok {
		return nil, fmt.Errorf("object %q: %w", key, remote.ErrNotFound)
	}

	if tag != "" && obj.tag != tag {
		return nil, fmt.Errorf("object %q tag %q is now %q: %w",
			key, tag, obj.tag, remote.ErrTagMismatch)
	}

	if length == 0 {
		return nil, nil
	}

	size := uint64(len(obj.data))
	if offset >= size {
		return nil, fmt.Errorf("object %q offset %d beyond size %d: %w",
			key, offset, size, remote.ErrRangeUnsatisfiable)
	}

	end := offset + length
	if end > size {
		end = size
	}

	return append([]byte(nil), obj.data[offset:end]...), nil
}
