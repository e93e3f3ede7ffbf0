package assets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/skinforge/pkg/pak"
)

var tree = map[string][]byte{
	"body.png":                  []byte("body"),
	"classic/arm.png":           []byte("arm-c"),
	"classic/overlays/coat.png": []byte("coat"),
	"slim/arm.png":              []byte("arm-s"),
}

// wantList is the lexical listing order every Source must produce.
var wantList = []string{
	"body.png",
	"classic/arm.png",
	"classic/overlays/coat.png",
	"slim/arm.png",
}

func checkSource(t *testing.T, s Source) {
	t.Helper()

	got, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff(wantList, got); diff != "" {
		t.Fatalf("listing mismatch (-want +got):\n%s", diff)
	}

	for path, want := range tree {
		data, err := s.Read(path)
		if err != nil {
			t.Errorf("read %s: %v", path, err)
			continue
		}
		if !bytes.Equal(data, want) {
			t.Errorf("read %s = %q, want %q", path, data, want)
		}
	}

	if _, err := s.Read("missing.png"); err == nil {
		t.Error("expected error reading missing path")
	}
}

func TestFSSource(t *testing.T) {
	fsys := fstest.MapFS{}
	for path, data := range tree {
		fsys[path] = &fstest.MapFile{Data: data}
	}
	checkSource(t, NewFS(fsys))
}

func TestDirSource(t *testing.T) {
	root := t.TempDir()
	for path, data := range tree {
		full := filepath.Join(root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, data, 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	checkSource(t, NewDir(root))
}

func TestPakSource(t *testing.T) {
	w := pak.NewWriter()
	// Insertion order deliberately unsorted; listing must still be.
	for _, path := range []string{"slim/arm.png", "body.png", "classic/overlays/coat.png", "classic/arm.png"} {
		if err := w.Add(path, tree[path]); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "t.pak")
	if err := w.WriteFile(path); err != nil {
		t.Fatalf("write pack: %v", err)
	}

	src, err := OpenPak(path)
	if err != nil {
		t.Fatalf("open pack: %v", err)
	}
	checkSource(t, src)
}
