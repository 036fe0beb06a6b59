package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/DrChat/razmount/pkg/remote"
)

func TestListChildren_OneLevel(t *testing.T) {
	client := New()
	client.Put("docs/a.txt", []byte("hello"), "v1")
	client.Put("docs/notes/b.txt", []byte("world"), "v1")
	client.Put("docs/notes/deep/c.txt", []byte("!"), "v1")
	client.Put("top.txt", []byte("root file"), "v1")

	ctx := context.Background()

	children, err := client.ListChildren(ctx, "docs")
	if err != nil {
		t.Fatalf("ListChildren failed: %v", err)
	}

	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d: %+v", len(children), children)
	}

	// Sorted: a.txt before notes
	if children[0].Name != "a.txt" || children[0].Kind != remote.KindFile || children[0].Size != 5 {
		t.Errorf("unexpected first child: %+v", children[0])
	}
	if children[1].Name != "notes" || children[1].Kind != remote.KindDirectory {
		t.Errorf("unexpected second child: %+v", children[1])
	}
}

func TestListChildren_Root(t *testing.T) {
	client := New()

	// Empty root lists as empty, not missing
	children, err := client.ListChildren(context.Background(), "")
	if err != nil {
		t.Fatalf("empty root should list: %v", err)
	}
	if len(children) != 0 {
		t.Fatalf("expected no children, got %d", len(children))
	}

	client.Put("a.txt", []byte("x"), "v1")
	children, err = client.ListChildren(context.Background(), "")
	if err != nil {
		t.Fatalf("ListChildren failed: %v", err)
	}
	if len(children) != 1 || children[0].Name != "a.txt" {
		t.Fatalf("unexpected root listing: %+v", children)
	}
}

func TestListChildren_MissingPrefix(t *testing.T) {
	client := New()
	client.Put("docs/a.txt", []byte("x"), "v1")

	_, err := client.ListChildren(context.Background(), "gone")
	if !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchRange(t *testing.T) {
	client := New()
	client.Put("docs/a.txt", []byte("hello world"), "v1")

	tests := []struct {
		name    string
		offset  uint64
		length  uint64
		want    string
		wantErr error
	}{
		{name: "full read", offset: 0, length: 11, want: "hello world"},
		{name: "sub range", offset: 6, length: 5, want: "world"},
		{name: "short at EOF", offset: 6, length: 100, want: "world"},
		{name: "offset past end", offset: 11, length: 1, wantErr: remote.ErrRangeUnsatisfiable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := client.FetchRange(context.Background(), "docs/a.txt", "v1", tt.offset, tt.length)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchRange failed: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("got %q, want %q", data, tt.want)
			}
		})
	}
}

func TestFetchRange_TagMismatch(t *testing.T) {
	client := New()
	client.Put("docs/a.txt", []byte("hello"), "v1")
	client.Put("docs/a.txt", []byte("hello again"), "v2")

	_, err := client.FetchRange(context.Background(), "docs/a.txt", "v1", 0, 5)
	if !errors.Is(err, remote.ErrTagMismatch) {
		t.Fatalf("expected ErrTagMismatch, got %v", err)
	}

	// An empty tag reads unconditionally.
	data, err := client.FetchRange(context.Background(), "docs/a.txt", "", 0, 5)
	if err != nil {
		t.Fatalf("unconditional fetch failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q, want %q", data, "hello")
	}
}

func TestFetchRange_DeletedObject(t *testing.T) {
	client := New()
	client.Put("docs/a.txt", []byte("hello"), "v1")
	client.Delete("docs/a.txt")

	_, err := client.FetchRange(context.Background(), "docs/a.txt", "", 0, 5)
	if !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCallCounters(t *testing.T) {
	client := New()
	client.Put("a.txt", []byte("x"), "v1")

	ctx := context.Background()
	_, _ = client.ListChildren(ctx, "")
	_, _ = client.ListChildren(ctx, "")
	_, _ = client.FetchRange(ctx, "a.txt", "", 0, 1)

	if got := client.ListCalls(); got != 2 {
		t.Errorf("ListCalls = %d, want 2", got)
	}
	if got := client.FetchCalls(); got != 1 {
		t.Errorf("FetchCalls = %d, want 1", got)
	}
}

func TestFaultInjection(t *testing.T) {
	client := New()
	client.Put("a.txt", []byte("x"), "v1")

	client.FailFetchWith(remote.ErrUnavailable)
	_, err := client.FetchRange(context.Background(), "a.txt", "", 0, 1)
	if !errors.Is(err, remote.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	client.FailFetchWith(nil)
	if _, err := client.FetchRange(context.Background(), "a.txt", "", 0, 1); err != nil {
		t.Fatalf("fetch should succeed after clearing fault: %v", err)
	}
}
