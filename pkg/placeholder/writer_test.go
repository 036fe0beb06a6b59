package placeholder

import (
	"errors"
	"testing"

	"github.com/DrChat/razmount/pkg/namespace"
)

func TestFromEntry(t *testing.T) {
	file := &namespace.Entry{Name: "a.txt", Kind: namespace.KindFile, Size: 5, RemoteTag: "v1"}

	p, err := FromEntry(file)
	if err != nil {
		t.Fatalf("FromEntry failed: %v", err)
	}
	if p.Name != "a.txt" || p.IsDir || p.Size != 5 || p.Tag != "v1" {
		t.Errorf("unexpected placeholder: %+v", p)
	}

	dir := &namespace.Entry{Name: "notes", Kind: namespace.KindDirectory}
	p, err = FromEntry(dir)
	if err != nil {
		t.Fatalf("FromEntry failed: %v", err)
	}
	if !p.IsDir || p.Size != 0 {
		t.Errorf("unexpected directory placeholder: %+v", p)
	}
}

func TestFromEntry_UnprojectableNames(t *testing.T) {
	tests := []struct {
		name  string
		leaf  string
		legal bool
	}{
		{name: "plain", leaf: "report.pdf", legal: true},
		{name: "spaces inside", leaf: "my file.txt", legal: true},
		{name: "unicode", leaf: "résumé.txt", legal: true},
		{name: "empty", leaf: "", legal: false},
		{name: "dot", leaf: ".", legal: false},
		{name: "dotdot", leaf: "..", legal: false},
		{name: "separator", leaf: "a/b", legal: false},
		{name: "backslash", leaf: `a\b`, legal: false},
		{name: "colon", leaf: "a:b", legal: false},
		{name: "wildcard", leaf: "a*b", legal: false},
		{name: "question", leaf: "a?b", legal: false},
		{name: "pipe", leaf: "a|b", legal: false},
		{name: "control char", leaf: "a\x01b", legal: false},
		{name: "trailing dot", leaf: "name.", legal: false},
		{name: "trailing space", leaf: "name ", legal: false},
		{name: "reserved device", leaf: "CON", legal: false},
		{name: "reserved with extension", leaf: "nul.txt", legal: false},
		{name: "reserved-like prefix is fine", leaf: "CONSOLE.txt", legal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEntry(&namespace.Entry{Name: tt.leaf, Kind: namespace.KindFile})
			if tt.legal && err != nil {
				t.Errorf("name %q should be projectable: %v", tt.leaf, err)
			}
			if !tt.legal && !errors.Is(err, ErrUnprojectableName) {
				t.Errorf("name %q should be unprojectable, got %v", tt.leaf, err)
			}
		})
	}
}

func TestFromEntries_SkipsBadNames(t *testing.T) {
	entries := []*namespace.Entry{
		{Name: "good.txt", Kind: namespace.KindFile, Size: 1},
		{Name: "bad|name", Kind: namespace.KindFile, Size: 2},
		{Name: "notes", Kind: namespace.KindDirectory},
	}

	placeholders, skipped := FromEntries(entries)
	if len(placeholders) != 2 {
		t.Fatalf("expected 2 placeholders, got %d", len(placeholders))
	}
	if len(skipped) != 1 || skipped[0] != "bad|name" {
		t.Errorf("skipped = %v", skipped)
	}
	if placeholders[0].Name != "good.txt" || placeholders[1].Name != "notes" {
		t.Errorf("placeholders = %+v", placeholders)
	}
}
