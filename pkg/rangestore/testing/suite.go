// Package testing provides a reusable conformance suite for rangestore
// implementations. Each backend's tests construct a store and hand it to
// RunStoreSuite, so every backend is held to the same contract.
package testing

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/DrChat/razmount/pkg/rangestore"
)

// RunStoreSuite runs the full conformance suite against a store factory.
// The factory is invoked once per subtest and the returned store is closed
// when the subtest ends.
func RunStoreSuite(t *testing.T, factory func(t *testing.T) rangestore.Store) {
	t.Helper()

	ctx := context.Background()

	t.Run("WriteThenRead", func(t *testing.T) {
		s := factory(t)
		defer func() { _ = s.Close() }()

		data := []byte("hello world")
		if err := s.WriteAt(ctx, "docs/a.txt", "v1", 0, data); err != nil {
			t.Fatalf("WriteAt failed: %v", err)
		}

		buf := make([]byte, len(data))
		if err := s.ReadAt(ctx, "docs/a.txt", "v1", buf, 0); err != nil {
			t.Fatalf("ReadAt failed: %v", err)
		}
		if !bytes.Equal(buf, data) {
			t.Errorf("read %q, want %q", buf, data)
		}

		// Sub-range
		sub := make([]byte, 5)
		if err := s.ReadAt(ctx, "docs/a.txt", "v1", sub, 6); err != nil {
			t.Fatalf("sub-range ReadAt failed: %v", err)
		}
		if string(sub) != "world" {
			t.Errorf("sub-range read %q, want %q", sub, "world")
		}
	})

	t.Run("SparseRanges", func(t *testing.T) {
		s := factory(t)
		defer func() { _ = s.Close() }()

		// Two disjoint ranges far apart
		if err := s.WriteAt(ctx, "big.bin", "v1", 0, []byte("head")); err != nil {
			t.Fatalf("WriteAt head failed: %v", err)
		}
		if err := s.WriteAt(ctx, "big.bin", "v1", 1_000_000, []byte("tail")); err != nil {
			t.Fatalf("WriteAt tail failed: %v", err)
		}

		buf := make([]byte, 4)
		if err := s.ReadAt(ctx, "big.bin", "v1", buf, 1_000_000); err != nil {
			t.Fatalf("ReadAt tail failed: %v", err)
		}
		if string(buf) != "tail" {
			t.Errorf("tail read %q", buf)
		}

		if err := s.ReadAt(ctx, "big.bin", "v1", buf, 0); err != nil {
			t.Fatalf("ReadAt head failed: %v", err)
		}
		if string(buf) != "head" {
			t.Errorf("head read %q", buf)
		}
	})

	t.Run("OverlappingWrites", func(t *testing.T) {
		s := factory(t)
		defer func() { _ = s.Close() }()

		if err := s.WriteAt(ctx, "f", "v1", 0, []byte("aaaaaaaa")); err != nil {
			t.Fatalf("WriteAt failed: %v", err)
		}
		if err := s.WriteAt(ctx, "f", "v1", 4, []byte("bbbb")); err != nil {
			t.Fatalf("overlapping WriteAt failed: %v", err)
		}

		buf := make([]byte, 8)
		if err := s.ReadAt(ctx, "f", "v1", buf, 0); err != nil {
			t.Fatalf("ReadAt failed: %v", err)
		}
		if string(buf) != "aaaabbbb" {
			t.Errorf("read %q, want aaaabbbb", buf)
		}
	})

	t.Run("TagScoping", func(t *testing.T) {
		s := factory(t)
		defer func() { _ = s.Close() }()

		if err := s.WriteAt(ctx, "f", "v1", 0, []byte("old")); err != nil {
			t.Fatalf("WriteAt failed: %v", err)
		}

		// Bytes cached under v1 must not satisfy reads for v2
		buf := make([]byte, 3)
		err := s.ReadAt(ctx, "f", "v2", buf, 0)
		if !errors.Is(err, rangestore.ErrRangeNotResident) {
			t.Fatalf("expected ErrRangeNotResident for stale tag, got %v", err)
		}
	})

	t.Run("NotResident", func(t *testing.T) {
		s := factory(t)
		defer func() { _ = s.Close() }()

		buf := make([]byte, 4)
		err := s.ReadAt(ctx, "never-written", "v1", buf, 0)
		if !errors.Is(err, rangestore.ErrRangeNotResident) {
			t.Fatalf("expected ErrRangeNotResident, got %v", err)
		}

		// Partially resident is still not resident
		if err := s.WriteAt(ctx, "partial", "v1", 0, []byte("ab")); err != nil {
			t.Fatalf("WriteAt failed: %v", err)
		}
		err = s.ReadAt(ctx, "partial", "v1", buf, 0)
		if !errors.Is(err, rangestore.ErrRangeNotResident) {
			t.Fatalf("expected ErrRangeNotResident for partial read, got %v", err)
		}
	})

	t.Run("Discard", func(t *testing.T) {
		s := factory(t)
		defer func() { _ = s.Close() }()

		if err := s.WriteAt(ctx, "f", "v1", 0, []byte("data")); err != nil {
			t.Fatalf("WriteAt failed: %v", err)
		}
		if err := s.Discard(ctx, "f"); err != nil {
			t.Fatalf("Discard failed: %v", err)
		}

		buf := make([]byte, 4)
		err := s.ReadAt(ctx, "f", "v1", buf, 0)
		if !errors.Is(err, rangestore.ErrRangeNotResident) {
			t.Fatalf("expected ErrRangeNotResident after discard, got %v", err)
		}

		// Discarding an unknown path is a no-op
		if err := s.Discard(ctx, "unknown"); err != nil {
			t.Fatalf("Discard of unknown path failed: %v", err)
		}
	})
}
