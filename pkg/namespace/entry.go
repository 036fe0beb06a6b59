package namespace

// EntryKind distinguishes directory entries from file entries.
type EntryKind int

const (
	KindDirectory EntryKind = iota
	KindFile
)

func (k EntryKind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// ContentState is the hydration state of a file's content.
//
// The state only moves forward (NotFetched -> Fetching -> Cached); the single
// backward transition is invalidation to NotFetched when the remote tag is
// observed to have changed.
type ContentState int

const (
	// ContentNotFetched means no byte of the file is locally resident.
	ContentNotFetched ContentState = iota

	// ContentFetching means at least one range fetch is in flight and no
	// range has committed yet.
	ContentFetching

	// ContentCached means at least one range is locally resident. The entry's
	// RangeSet records which; a file may be only partially cached.
	ContentCached
)

func (s ContentState) String() string {
	switch s {
	case ContentNotFetched:
		return "not-fetched"
	case ContentFetching:
		return "fetching"
	case ContentCached:
		return "cached"
	default:
		return "unknown"
	}
}

// Entry is the cached metadata for one virtual path.
//
// Entries are created lazily on first reference and never deleted for the
// life of the mount; invalidation resets content state but keeps the path
// known.
type Entry struct {
	// Name is the display form of the leaf name, preserving the remote
	// store's spelling even under case-insensitive comparison.
	Name string

	// Kind reports whether this path is a directory or a file.
	Kind EntryKind

	// Size is the file's full remote byte length, known at listing time.
	// It is reported regardless of how much content is locally hydrated.
	// Zero for directories.
	Size uint64

	// RemoteTag is the store's opaque version token from the last listing
	// that observed this path. A change of tag invalidates cached content.
	// Empty for directories.
	RemoteTag string

	// ChildrenListed records whether this directory's full child set has
	// been fetched and cached. Distinguishes "empty directory" from "not
	// yet enumerated". Always false for files.
	ChildrenListed bool

	// State is the file's hydration state. Directories stay NotFetched;
	// they hydrate child listings, never content.
	State ContentState

	// Ranges is the set of locally resident byte ranges. Meaningful only
	// when State is ContentCached.
	Ranges RangeSet
}

// ResetContent drops all hydration progress, returning the entry to
// NotFetched. Called when the remote tag or size is observed to change, or
// when the remote store reports the object gone.
func (e *Entry) ResetContent() {
	e.State = ContentNotFetched
	e.Ranges.Clear()
}
