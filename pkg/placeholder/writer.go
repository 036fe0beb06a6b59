// Package placeholder translates namespace entries into the records the
// local filesystem driver materializes on disk.
//
// A placeholder is the minimal stand-in for not-yet-hydrated content: name,
// kind, size, and the remote tag echoed back verbatim so the driver's later
// lookups can be matched against the cached entry. The translation is pure
// and side-effect free; the only failure mode is a remote name that cannot
// legally exist on the local filesystem.
package placeholder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DrChat/razmount/pkg/namespace"
)

// ErrUnprojectableName indicates a remote object name that cannot be
// represented as a local filesystem entry.
//
// Per-entry condition: the enumeration that encountered it skips the single
// child and continues; it never fails the enclosing listing.
var ErrUnprojectableName = errors.New("name cannot be projected locally")

// Placeholder is the OS-facing record for one directory child.
type Placeholder struct {
	// Name is the child's leaf name as the remote store spells it.
	Name string

	// IsDir marks directory placeholders.
	IsDir bool

	// Size is the full remote byte length, independent of how much content
	// is locally hydrated. Zero for directories.
	Size uint64

	// Tag is the remote version token, echoed back verbatim by the driver
	// on subsequent callbacks for this path.
	Tag string
}

// reservedNames are names the projection target may refuse at the filesystem
// level regardless of extension. Rejecting them here turns a driver-level
// write failure into a clean per-entry skip.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// FromEntry translates a namespace entry into its placeholder record.
//
// Returns ErrUnprojectableName (wrapped with the offending name) if the
// entry's name cannot exist on the local filesystem.
func FromEntry(e *namespace.Entry) (Placeholder, error) {
	if err := checkName(e.Name); err != nil {
		return Placeholder{}, err
	}

	p := Placeholder{
		Name:  e.Name,
		IsDir: e.Kind == namespace.KindDirectory,
		Tag:   e.RemoteTag,
	}
	if e.Kind == namespace.KindFile {
		p.Size = e.Size
	}

	return p, nil
}

// FromEntries translates a child set, skipping unprojectable names.
//
// The skipped names are returned so the caller can report them to its
// diagnostics sink; the error is never fatal to the enumeration.
func FromEntries(entries []*namespace.Entry) (placeholders []Placeholder, skipped []string) {
	placeholders = make([]Placeholder, 0, len(entries))

	for _, e := range entries {
		p, err := FromEntry(e)
		if err != nil {
			skipped = append(skipped, e.Name)
			continue
		}
		placeholders = append(placeholders, p)
	}

	return placeholders, skipped
}

// checkName validates a single leaf name against local filesystem rules.
func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name: %w", ErrUnprojectableName)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%q: %w", name, ErrUnprojectableName)
	}

	for _, r := range name {
		if r < 0x20 {
			return fmt.Errorf("%q contains control character: %w", name, ErrUnprojectableName)
		}
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return fmt.Errorf("%q contains %q: %w", name, r, ErrUnprojectableName)
		}
	}

	// Trailing dots and spaces are silently stripped by some local
	// filesystems, which would make the placeholder unmatchable against
	// its cache entry.
	if strings.HasSuffix(name, ".") || strings.HasSuffix(name, " ") {
		return fmt.Errorf("%q has trailing dot or space: %w", name, ErrUnprojectableName)
	}

	base := name
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	if reservedNames[strings.ToUpper(base)] {
		return fmt.Errorf("%q is a reserved device name: %w", name, ErrUnprojectableName)
	}

	return nil
}
