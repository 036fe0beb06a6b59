package namespace

import "testing"

func TestCache_RootAlwaysKnown(t *testing.T) {
	caser := Caser{Insensitive: true}
	cache := NewCache(caser)

	root := cache.Get(caser.Root())
	if root == nil {
		t.Fatal("root entry should exist")
	}
	if root.Kind != KindDirectory {
		t.Errorf("root kind = %v, want directory", root.Kind)
	}
	if root.ChildrenListed {
		t.Error("fresh root should not be marked listed")
	}
}

func TestCache_PutGet(t *testing.T) {
	caser := Caser{Insensitive: true}
	cache := NewCache(caser)

	p := caser.NewPath("docs/a.txt")
	cache.Put(p, &Entry{Name: "a.txt", Kind: KindFile, Size: 5, RemoteTag: "v1"})

	// Lookup under different case resolves to the same entry
	got := cache.Get(caser.NewPath("DOCS/A.TXT"))
	if got == nil {
		t.Fatal("case-insensitive lookup should hit")
	}
	if got.Name != "a.txt" || got.Size != 5 {
		t.Errorf("unexpected entry: %+v", got)
	}

	if cache.Get(caser.NewPath("docs/missing.txt")) != nil {
		t.Error("unknown path should miss")
	}
}

func TestCache_InvalidateContent(t *testing.T) {
	caser := Caser{Insensitive: true}
	cache := NewCache(caser)

	p := caser.NewPath("docs/a.txt")
	e := &Entry{Name: "a.txt", Kind: KindFile, Size: 5, RemoteTag: "v1", State: ContentCached}
	e.Ranges.Insert(ByteRange{0, 5})
	cache.Put(p, e)

	cache.InvalidateContent(p)

	got := cache.Get(p)
	if got.State != ContentNotFetched {
		t.Errorf("state = %v, want not-fetched", got.State)
	}
	if !got.Ranges.IsEmpty() {
		t.Error("ranges should be cleared on invalidation")
	}
	if got.RemoteTag != "v1" {
		t.Error("invalidation should not touch the tag; the next listing refreshes it")
	}

	// Directories and unknown paths are no-ops
	cache.InvalidateContent(caser.Root())
	cache.InvalidateContent(caser.NewPath("nope"))
}

func TestCache_Children(t *testing.T) {
	caser := Caser{Insensitive: true}
	cache := NewCache(caser)

	dir := caser.NewPath("docs")
	cache.Put(dir, &Entry{Name: "docs", Kind: KindDirectory, ChildrenListed: true})
	cache.SetChildren(dir, []string{"a.txt", "notes"})

	got := cache.Children(caser.NewPath("DOCS"))
	if len(got) != 2 || got[0] != "a.txt" || got[1] != "notes" {
		t.Errorf("children = %v", got)
	}

	// Replacing on a fresh listing
	cache.SetChildren(dir, []string{"a.txt"})
	if got := cache.Children(dir); len(got) != 1 {
		t.Errorf("children after replace = %v", got)
	}
}
