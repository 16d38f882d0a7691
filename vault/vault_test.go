package vault

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
)

func testVault() *Vault {
	return New("/vault", fstest.MapFS{
		"notes/page10.md":          {Data: []byte("# ten")},
		"notes/page2.md":           {Data: []byte("# two")},
		"notes/page1.MD":           {Data: []byte("# one")},
		"notes/maps/a.xmind":       {Data: []byte("PK")},
		"notes/image.png":          {Data: []byte("png")},
		".xmp/settings.yaml":       {Data: []byte("")},
		".obsidian/workspace.md":   {Data: []byte("hidden")},
		"drafts/xmind/plan.xmind":  {Data: []byte("PK")},
		"index.md":                 {Data: []byte("# index")},
		"drafts/xmind/sub/deep.md": {Data: []byte("# deep")},
	})
}

func TestVault_Exists(t *testing.T) {
	v := testVault()
	tests := []struct {
		path string
		want bool
	}{
		{"notes/maps/a.xmind", true},
		{"drafts/xmind/plan.xmind", true},
		{"notes/maps", false},
		{"notes/missing.xmind", false},
		{"/notes/maps/a.xmind", false},
		{"notes/../notes/maps/a.xmind", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := v.Exists(tt.path); got != tt.want {
			t.Errorf("Exists(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestVault_ReadBinary(t *testing.T) {
	v := testVault()

	data, err := v.ReadBinary("notes/maps/a.xmind")
	if err != nil {
		t.Fatalf("ReadBinary() error = %v", err)
	}
	if string(data) != "PK" {
		t.Errorf("ReadBinary() = %q", data)
	}

	if _, err := v.ReadBinary("../escape"); err == nil {
		t.Error("Expected error for invalid path")
	}
	if _, err := v.ReadBinary("nope.xmind"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadBinary() error = %v, want not exist", err)
	}
}

func TestVault_Documents(t *testing.T) {
	v := testVault()

	docs, err := v.Documents(".")
	if err != nil {
		t.Fatalf("Documents() error = %v", err)
	}
	want := []string{"drafts/xmind/sub/deep.md", "index.md", "notes/page1.MD", "notes/page2.md", "notes/page10.md"}
	if !reflect.DeepEqual(docs, want) {
		t.Errorf("Documents() = %v, want %v", docs, want)
	}

	docs, err = v.Documents("notes")
	if err != nil {
		t.Fatalf("Documents() error = %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("Documents(notes) = %v, want 3 documents", docs)
	}

	if _, err := v.Documents("absent"); err == nil {
		t.Error("Expected error for absent directory")
	}
}

func TestVault_OpenAndRel(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "notes"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "notes", "a.md"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	v, err := Open(root)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !v.Exists("notes/a.md") {
		t.Error("Exists() = false for file on disk")
	}

	rel, err := v.Rel(filepath.Join(root, "notes", "a.md"))
	if err != nil {
		t.Fatalf("Rel() error = %v", err)
	}
	if rel != "notes/a.md" {
		t.Errorf("Rel() = %q, want notes/a.md", rel)
	}
	if _, err := v.Rel(filepath.Dir(root)); !errors.Is(err, ErrOutside) {
		t.Errorf("Rel() error = %v, want ErrOutside", err)
	}

	if u := v.URL("notes/a b.xmind"); !strings.HasPrefix(u, "file:///") || !strings.HasSuffix(u, "/notes/a%20b.xmind") {
		t.Errorf("URL() = %q", u)
	}

	if _, err := Open(filepath.Join(root, "notes", "a.md")); err == nil {
		t.Error("Open() of a file should fail")
	}
}
