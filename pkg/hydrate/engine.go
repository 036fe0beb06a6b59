// Package hydrate implements the hydration engine: the component that sits
// between projection callbacks coming from the local filesystem host and the
// remote object store, and that owns the namespace cache and the hydrated
// content store.
//
// The engine guarantees that concurrent callbacks for the same path and byte
// span collapse into a single remote round-trip, that repeated callbacks for
// already-hydrated state touch the remote zero times, and that remote
// failures map onto a small set of sentinel errors the host can translate.
package hydrate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DrChat/razmount/internal/logger"
	"github.com/DrChat/razmount/internal/ratelimiter"
	"github.com/DrChat/razmount/pkg/namespace"
	"github.com/DrChat/razmount/pkg/rangestore"
	"github.com/DrChat/razmount/pkg/remote"
)

// ============================================================================
// Configuration
// ============================================================================

const (
	// DefaultOperationTimeout bounds a single projection callback,
	// including any remote round-trips and retry backoff it performs.
	DefaultOperationTimeout = 30 * time.Second

	// DefaultRetryAttempts is the total number of attempts (first try plus
	// retries) made against a remote call that fails as unavailable.
	DefaultRetryAttempts = 3

	// DefaultRetryBackoff is the delay before the first retry. Subsequent
	// retries double the delay up to DefaultMaxRetryBackoff.
	DefaultRetryBackoff = 100 * time.Millisecond

	// DefaultMaxRetryBackoff caps the exponential retry delay.
	DefaultMaxRetryBackoff = 2 * time.Second
)

// Config holds hydration engine settings. The zero value is usable: every
// field falls back to a default or a no-op implementation.
type Config struct {
	// CaseInsensitive selects case-insensitive path identity for the
	// lifetime of the mount. Remote names keep their original spelling in
	// listings either way.
	CaseInsensitive bool

	// OperationTimeout bounds each projection callback end to end.
	OperationTimeout time.Duration

	// RetryAttempts is the total attempt count for unavailable remote
	// calls. Values below 1 mean a single attempt with no retry.
	RetryAttempts int

	// RetryBackoff is the initial retry delay, doubled per attempt.
	RetryBackoff time.Duration

	// MaxRetryBackoff caps the per-attempt retry delay.
	MaxRetryBackoff time.Duration

	// Limiter, when set, throttles every remote round-trip the engine
	// issues. Nil disables throttling.
	Limiter *ratelimiter.RateLimiter

	// Metrics receives engine observations. Nil installs a no-op.
	Metrics Metrics

	// Sink receives invalidation and skipped-name events. Nil installs a
	// no-op.
	Sink NotificationSink
}

func (c *Config) applyDefaults() {
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = DefaultOperationTimeout
	}
	if c.RetryAttempts < 1 {
		c.RetryAttempts = DefaultRetryAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	if c.MaxRetryBackoff <= 0 {
		c.MaxRetryBackoff = DefaultMaxRetryBackoff
	}
	if c.Metrics == nil {
		c.Metrics = noopMetrics{}
	}
	if c.Sink == nil {
		c.Sink = noopSink{}
	}
}

// ============================================================================
// Engine
// ============================================================================

// listFlight tracks one in-flight directory listing so concurrent
// enumerations of the same directory share a single remote call.
type listFlight struct {
	done chan struct{}
}

// fetchFlight tracks one in-flight content fetch. Concurrent readers whose
// requested span overlaps an in-flight span wait for it instead of issuing
// their own round-trip.
type fetchFlight struct {
	span namespace.ByteRange
	done chan struct{}
}

// Engine coordinates projection callbacks against the remote object store.
// All exported methods are safe for concurrent use.
type Engine struct {
	cfg    Config
	caser  namespace.Caser
	client remote.ObjectClient
	store  rangestore.Store

	// mu guards cache, listings and fetches. It is held only across local
	// state transitions, never across a remote round-trip or a wait on
	// another caller's flight.
	mu       sync.Mutex
	cache    *namespace.Cache
	listings map[string]*listFlight
	fetches  map[string][]*fetchFlight
}

// New creates a hydration engine over the given remote client and local
// content store. The engine takes ownership of the namespace cache it
// creates; the content store remains owned by the caller and must outlive
// the engine.
func New(cfg Config, client remote.ObjectClient, store rangestore.Store) *Engine {
	cfg.applyDefaults()
	caser := namespace.Caser{Insensitive: cfg.CaseInsensitive}
	e := &Engine{
		cfg:      cfg,
		caser:    caser,
		client:   client,
		store:    store,
		cache:    namespace.NewCache(caser),
		listings: make(map[string]*listFlight),
		fetches:  make(map[string][]*fetchFlight),
	}
	return e
}

func (e *Engine) lock() {
	e.mu.Lock()
}

func (e *Engine) unlock() {
	e.mu.Unlock()
}

// opContext derives the per-callback deadline context.
func (e *Engine) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.cfg.OperationTimeout)
}

// ============================================================================
// Path resolution
// ============================================================================

// resolveEntry returns the namespace entry for p, enumerating ancestor
// directories on demand. The returned entry pointer is only safe to
// dereference while holding the engine lock; callers that need a stable view
// copy the fields they need.
func (e *Engine) resolveEntry(ctx context.Context, p namespace.Path) (*namespace.Entry, error) {
	e.lock()
	ent := e.cache.Get(p)
	e.unlock()
	if ent != nil {
		return ent, nil
	}
	if p.IsRoot() {
		// The cache always seeds root, so a nil root means the cache
		// was misconstructed.
		return nil, fmt.Errorf("root entry missing: %w", ErrPathNotFound)
	}

	parent := p.Parent()
	pent, err := e.resolveEntry(ctx, parent)
	if err != nil {
		return nil, err
	}
	if pent.Kind != namespace.KindDirectory {
		return nil, fmt.Errorf("%s: parent is a file: %w", p, ErrPathNotFound)
	}
	if err := e.ensureListed(ctx, parent); err != nil {
		return nil, err
	}

	e.lock()
	ent = e.cache.Get(p)
	e.unlock()
	if ent == nil {
		return nil, fmt.Errorf("%s: %w", p, ErrPathNotFound)
	}
	return ent, nil
}

// resolvePresent resolves p and additionally verifies it appears in its
// parent's current child listing. Entries are never deleted from the cache,
// so presence in the parent listing is what distinguishes a live path from
// one whose backing object has vanished.
func (e *Engine) resolvePresent(ctx context.Context, p namespace.Path) (*namespace.Entry, error) {
	if p.IsRoot() {
		e.lock()
		ent := e.cache.Get(p)
		e.unlock()
		return ent, nil
	}

	ent, err := e.resolveEntry(ctx, p)
	if err != nil {
		return nil, err
	}

	// The parent may have been marked for re-listing by an invalidation
	// since the entry was first cached. Re-listing is a no-op when the
	// children are still known.
	parent := p.Parent()
	if err := e.ensureListed(ctx, parent); err != nil {
		return nil, err
	}

	e.lock()
	defer e.unlock()
	if !e.childPresent(parent, p.Base()) {
		return nil, fmt.Errorf("%s: %w", p, ErrPathNotFound)
	}
	ent = e.cache.Get(p)
	if ent == nil {
		return nil, fmt.Errorf("%s: %w", p, ErrPathNotFound)
	}
	return ent, nil
}

// childPresent reports whether name appears in dir's cached child listing.
// Caller holds the engine lock.
func (e *Engine) childPresent(dir namespace.Path, name string) bool {
	want := dir.Join(name).Key()
	for _, child := range e.cache.Children(dir) {
		if dir.Join(child).Key() == want {
			return true
		}
	}
	return false
}

// ============================================================================
// Directory listing
// ============================================================================

// ensureListed guarantees dir's children are cached, issuing at most one
// remote listing regardless of how many callers arrive concurrently. Callers
// that find a listing already in flight wait for it and then re-check; on a
// shared failure each waiter retries once itself so the error it returns is
// its own, not another caller's cancellation.
func (e *Engine) ensureListed(ctx context.Context, dir namespace.Path) error {
	for {
		e.lock()
		ent := e.cache.Get(dir)
		if ent == nil {
			e.unlock()
			return fmt.Errorf("%s: %w", dir, ErrPathNotFound)
		}
		if ent.Kind != namespace.KindDirectory {
			e.unlock()
			return fmt.Errorf("%s: %w", dir, ErrNotDirectory)
		}
		if ent.ChildrenListed {
			e.unlock()
			return nil
		}

		if f, ok := e.listings[dir.Key()]; ok {
			e.unlock()
			select {
			case <-f.done:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		f := &listFlight{done: make(chan struct{})}
		e.listings[dir.Key()] = f
		e.unlock()

		children, err := e.listWithRetry(ctx, dir)

		e.lock()
		if err == nil {
			e.applyListing(dir, children)
		} else if errors.Is(err, remote.ErrNotFound) {
			// The prefix vanished remotely. Flag the parent for
			// re-listing so the next lookup of this directory
			// re-validates against the remote.
			e.invalidateMissingLocked(dir)
		}
		delete(e.listings, dir.Key())
		close(f.done)
		e.unlock()

		if errors.Is(err, remote.ErrNotFound) {
			return fmt.Errorf("%s: %w", dir, ErrPathNotFound)
		}
		return err
	}
}

// listWithRetry issues the remote listing with throttling and bounded retry
// on transient unavailability.
func (e *Engine) listWithRetry(ctx context.Context, dir namespace.Path) ([]remote.ObjectInfo, error) {
	prefix := e.remotePath(dir)
	var children []remote.ObjectInfo
	err := e.withRetry(ctx, "list_children", func(ctx context.Context) error {
		var err error
		children, err = e.client.ListChildren(ctx, prefix)
		return err
	})
	return children, err
}

// remotePath returns the remote store's spelling for p. Under
// case-insensitive comparison the caller's spelling may differ from the
// remote key, which is case-sensitive; the cached display names recover the
// exact remote form.
func (e *Engine) remotePath(p namespace.Path) string {
	e.lock()
	defer e.unlock()
	return e.remotePathLocked(p)
}

func (e *Engine) remotePathLocked(p namespace.Path) string {
	if p.IsRoot() {
		return ""
	}
	name := p.Base()
	if ent := e.cache.Get(p); ent != nil && ent.Name != "" {
		name = ent.Name
	}
	parent := e.remotePathLocked(p.Parent())
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// applyListing installs a fresh child listing for dir, refreshing existing
// entries in place. A changed remote tag or size discards any hydrated
// content so the next read fetches the new object. Caller holds the engine
// lock.
func (e *Engine) applyListing(dir namespace.Path, children []remote.ObjectInfo) {
	names := make([]string, 0, len(children))
	for _, child := range children {
		names = append(names, child.Name)
		cp := dir.Join(child.Name)
		kind := namespace.KindFile
		if child.Kind == remote.KindDirectory {
			kind = namespace.KindDirectory
		}

		existing := e.cache.Get(cp)
		if existing == nil || existing.Kind != kind {
			e.cache.Put(cp, &namespace.Entry{
				Name:      child.Name,
				Kind:      kind,
				Size:      child.Size,
				RemoteTag: child.Tag,
			})
			if existing != nil {
				e.discardContent(cp, "tag_changed")
			}
			continue
		}

		existing.Name = child.Name
		if kind == namespace.KindFile {
			tagChanged := existing.RemoteTag != child.Tag
			sizeChanged := existing.Size != child.Size
			if tagChanged || sizeChanged {
				reason := "tag_changed"
				if !tagChanged {
					reason = "size_changed"
				}
				existing.ResetContent()
				existing.RemoteTag = child.Tag
				existing.Size = child.Size
				e.discardContent(cp, reason)
			}
		}
	}
	e.cache.SetChildren(dir, names)
	if ent := e.cache.Get(dir); ent != nil {
		ent.ChildrenListed = true
	}
}

// invalidateMissingLocked handles a path whose backing object vanished
// remotely: local content is discarded and the parent is flagged for
// re-listing so subsequent lookups report the path as gone. The entry itself
// stays cached. Caller holds the engine lock.
func (e *Engine) invalidateMissingLocked(p namespace.Path) {
	if ent := e.cache.Get(p); ent != nil {
		ent.ResetContent()
		ent.ChildrenListed = false
	}
	if !p.IsRoot() {
		if parent := e.cache.Get(p.Parent()); parent != nil {
			parent.ChildrenListed = false
		}
	}
	e.discardContent(p, "not_found")
}

// discardContent drops hydrated bytes for p and reports the invalidation.
// Caller holds the engine lock; the range store performs its own locking.
func (e *Engine) discardContent(p namespace.Path, reason string) {
	if err := e.store.Discard(context.Background(), p.Key()); err != nil {
		logger.Warn("Failed to discard hydrated content for %s: %v", p, err)
	}
	e.cfg.Metrics.RecordInvalidation(reason)
	e.cfg.Sink.PathInvalidated(p.String(), reason)
}

// ============================================================================
// Remote call plumbing
// ============================================================================

// withRetry runs fn against the remote store, waiting on the rate limiter
// before each attempt and retrying with capped exponential backoff while the
// failure is transient. Non-transient errors return immediately.
func (e *Engine) withRetry(ctx context.Context, operation string, fn func(context.Context) error) error {
	backoff := e.cfg.RetryBackoff
	var err error
	for attempt := 1; attempt <= e.cfg.RetryAttempts; attempt++ {
		if e.cfg.Limiter != nil {
			if werr := e.cfg.Limiter.Wait(ctx); werr != nil {
				return werr
			}
		}
		e.cfg.Metrics.RecordRemoteCall(operation)
		err = fn(ctx)
		if err == nil || !errors.Is(err, remote.ErrUnavailable) {
			return err
		}
		if attempt == e.cfg.RetryAttempts {
			break
		}
		logger.Warn("Remote %s unavailable (attempt %d/%d), retrying in %v: %v",
			operation, attempt, e.cfg.RetryAttempts, backoff, err)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
		if backoff > e.cfg.MaxRetryBackoff {
			backoff = e.cfg.MaxRetryBackoff
		}
	}
	return err
}
