package fuse

import (
	"context"
	"errors"
	"testing"

	"github.com/winfsp/cgofuse/fuse"

	"github.com/DrChat/razmount/pkg/hydrate"
	"github.com/DrChat/razmount/pkg/placeholder"
	"github.com/DrChat/razmount/pkg/remote"
)

// stubProjector serves a fixed tree: /docs (dir) and /docs/a.txt (5 bytes).
type stubProjector struct{}

func (stubProjector) EnumerateDirectory(ctx context.Context, path string) ([]placeholder.Placeholder, error) {
	switch path {
	case "/", "":
		return []placeholder.Placeholder{{Name: "docs", IsDir: true}}, nil
	case "/docs":
		return []placeholder.Placeholder{{Name: "a.txt", Size: 5, Tag: "v1"}}, nil
	default:
		return nil, hydrate.ErrPathNotFound
	}
}

func (stubProjector) GetPlaceholderInfo(ctx context.Context, path string) (placeholder.Placeholder, error) {
	switch path {
	case "/", "":
		return placeholder.Placeholder{IsDir: true}, nil
	case "/docs":
		return placeholder.Placeholder{Name: "docs", IsDir: true}, nil
	case "/docs/a.txt":
		return placeholder.Placeholder{Name: "a.txt", Size: 5, Tag: "v1"}, nil
	default:
		return placeholder.Placeholder{}, hydrate.ErrPathNotFound
	}
}

func (stubProjector) GetFileData(ctx context.Context, path string, offset, length uint64) ([]byte, error) {
	content := []byte("hello")
	if path != "/docs/a.txt" {
		return nil, hydrate.ErrPathNotFound
	}
	if offset >= uint64(len(content)) {
		return nil, remote.ErrRangeUnsatisfiable
	}
	end := min(offset+length, uint64(len(content)))
	return content[offset:end], nil
}

func (stubProjector) RefreshDirectory(ctx context.Context, path string) error { return nil }

func newTestHost() *Host {
	h := New(stubProjector{}, "/nonexistent")
	h.ctx = context.Background()
	return h
}

func TestErrnoMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"not found", hydrate.ErrPathNotFound, -fuse.ENOENT},
		{"not a directory", hydrate.ErrNotDirectory, -fuse.ENOTDIR},
		{"is a directory", hydrate.ErrIsDirectory, -fuse.EISDIR},
		{"unavailable", remote.ErrUnavailable, -fuse.ENETUNREACH},
		{"timeout", context.DeadlineExceeded, -fuse.ETIMEDOUT},
		{"unknown", errors.New("boom"), -fuse.EIO},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := errno(tc.err); got != tc.want {
				t.Errorf("errno(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestGetattr(t *testing.T) {
	h := newTestHost()

	var st fuse.Stat_t
	if rc := h.Getattr("/docs/a.txt", &st, 0); rc != 0 {
		t.Fatalf("Getattr returned %d", rc)
	}
	if st.Size != 5 {
		t.Errorf("size = %d, want 5", st.Size)
	}
	if st.Mode&fuse.S_IFREG == 0 {
		t.Errorf("mode %o missing S_IFREG", st.Mode)
	}
	if st.Mode&0222 != 0 {
		t.Errorf("mode %o has write bits on a read-only projection", st.Mode)
	}

	if rc := h.Getattr("/docs", &st, 0); rc != 0 {
		t.Fatalf("Getattr dir returned %d", rc)
	}
	if st.Mode&fuse.S_IFDIR == 0 {
		t.Errorf("mode %o missing S_IFDIR", st.Mode)
	}

	if rc := h.Getattr("/nope", &st, 0); rc != -fuse.ENOENT {
		t.Errorf("missing path returned %d, want ENOENT", rc)
	}
}

func TestReaddir(t *testing.T) {
	h := newTestHost()

	var names []string
	rc := h.Readdir("/docs", func(name string, stat *fuse.Stat_t, ofst int64) bool {
		names = append(names, name)
		return true
	}, 0, 0)
	if rc != 0 {
		t.Fatalf("Readdir returned %d", rc)
	}
	want := []string{".", "..", "a.txt"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestReadClampsAndEOF(t *testing.T) {
	h := newTestHost()

	buff := make([]byte, 16)
	n := h.Read("/docs/a.txt", buff, 0, 0)
	if n != 5 || string(buff[:n]) != "hello" {
		t.Errorf("Read = %d %q", n, buff[:n])
	}

	// Reading at EOF is a zero-byte read, not an error.
	if n := h.Read("/docs/a.txt", buff, 5, 0); n != 0 {
		t.Errorf("Read at EOF = %d, want 0", n)
	}
}

func TestWritePathsRefuse(t *testing.T) {
	h := newTestHost()

	if rc := h.Mkdir("/new", 0755); rc != -fuse.EROFS {
		t.Errorf("Mkdir = %d, want EROFS", rc)
	}
	if rc := h.Unlink("/docs/a.txt"); rc != -fuse.EROFS {
		t.Errorf("Unlink = %d, want EROFS", rc)
	}
	if rc, _ := h.Open("/docs/a.txt", 1); rc != -fuse.EROFS {
		t.Errorf("Open for write = %d, want EROFS", rc)
	}
	if rc := h.Write("/docs/a.txt", []byte("x"), 0, 0); rc != -fuse.EROFS {
		t.Errorf("Write = %d, want EROFS", rc)
	}
}
