package namespace

// Cache maps virtual paths to their entries.
//
// Locking Contract:
// The cache is NOT safe for concurrent use on its own. The hydration engine
// owns the instance and serializes all access through its per-path locking;
// no other component mutates it. Keeping the structure lock-free avoids
// double locking under the engine's mutex scopes.
//
// Eviction:
// None. Content is addressed by sparse byte ranges rather than duplicated
// whole files in memory, and metadata entries are small, so a size-bounded
// eviction policy is left as a production extension.
type Cache struct {
	caser    Caser
	entries  map[string]*Entry
	children map[string][]string
}

// NewCache creates a cache whose root directory entry already exists, since
// the mount root is always a known directory.
func NewCache(caser Caser) *Cache {
	c := &Cache{
		caser:    caser,
		entries:  make(map[string]*Entry),
		children: make(map[string][]string),
	}
	c.entries[caser.Root().Key()] = &Entry{Kind: KindDirectory}
	return c
}

// Caser returns the case policy fixed at construction.
func (c *Cache) Caser() Caser { return c.caser }

// Get returns the entry for a path, or nil if the path is unknown.
func (c *Cache) Get(p Path) *Entry {
	return c.entries[p.Key()]
}

// Put stores or replaces the entry for a path.
func (c *Cache) Put(p Path, e *Entry) {
	c.entries[p.Key()] = e
}

// InvalidateContent resets a file entry's hydration state. Unknown paths and
// directories are no-ops.
func (c *Cache) InvalidateContent(p Path) {
	if e := c.entries[p.Key()]; e != nil && e.Kind == KindFile {
		e.ResetContent()
	}
}

// SetChildren records a directory's child names (display form) after a
// listing, replacing any previous set.
func (c *Cache) SetChildren(p Path, names []string) {
	c.children[p.Key()] = append([]string(nil), names...)
}

// Children returns the recorded child names for a directory. Meaningful only
// when the directory's entry has ChildrenListed set.
func (c *Cache) Children(p Path) []string {
	return c.children[p.Key()]
}

// Len returns the number of known entries, for diagnostics.
func (c *Cache) Len() int { return len(c.entries) }
