// Package namespace holds the in-memory view of the projected tree: virtual
// paths, per-path entries, hydrated range bookkeeping, and the cache mapping
// one to the other.
//
// The cache is the single source of truth for "what does this path look
// like". It is a pure data structure by contract: all access is serialized
// through the hydration engine's per-path locking, so nothing here takes
// locks of its own.
package namespace

import (
	"path"
	"strings"
)

// Path is a normalized, forward-slash-delimited virtual path relative to the
// mount root. The empty path is the root itself.
//
// Path is an immutable value. Two paths that differ only by case compare
// equal under a case-insensitive Caser; the original spelling is preserved
// for display.
type Path struct {
	raw  string
	fold bool
}

// Caser fixes the namespace's case policy at mount time.
//
// Case-insensitive comparison is the default, matching the semantics of the
// local filesystems a projection usually lands on.
type Caser struct {
	// Insensitive selects case-insensitive path comparison.
	Insensitive bool
}

// NewPath normalizes a raw path under this case policy.
//
// Backslashes are treated as separators (projection hosts on some platforms
// hand paths through in native form), repeated separators collapse, and "."
// and ".." segments resolve lexically. Leading and trailing separators are
// stripped; the result is relative to the mount root.
func (c Caser) NewPath(raw string) Path {
	s := strings.ReplaceAll(raw, `\`, "/")
	s = path.Clean("/" + s)
	s = strings.Trim(s, "/")
	if s == "." {
		s = ""
	}
	return Path{raw: s, fold: c.Insensitive}
}

// Root returns the mount root path.
func (c Caser) Root() Path {
	return Path{fold: c.Insensitive}
}

// String returns the path's display form ("" for the root).
func (p Path) String() string { return p.raw }

// Key returns the comparison form used as the cache key.
func (p Path) Key() string {
	if p.fold {
		return strings.ToLower(p.raw)
	}
	return p.raw
}

// IsRoot reports whether p is the mount root.
func (p Path) IsRoot() bool { return p.raw == "" }

// Base returns the leaf name ("" for the root).
func (p Path) Base() string {
	if i := strings.LastIndexByte(p.raw, '/'); i >= 0 {
		return p.raw[i+1:]
	}
	return p.raw
}

// Parent returns the parent path. The root's parent is the root itself;
// callers use IsRoot to terminate upward walks.
func (p Path) Parent() Path {
	i := strings.LastIndexByte(p.raw, '/')
	if i < 0 {
		return Path{fold: p.fold}
	}
	return Path{raw: p.raw[:i], fold: p.fold}
}

// Join returns the child of p named name.
func (p Path) Join(name string) Path {
	if p.raw == "" {
		return Path{raw: name, fold: p.fold}
	}
	return Path{raw: p.raw + "/" + name, fold: p.fold}
}

// Equal reports whether two paths name the same entry under the case policy.
func (p Path) Equal(q Path) bool { return p.Key() == q.Key() }
