// Package assets abstracts where template bytes come from: a directory on
// disk, any fs.FS (including embedded trees), or a pack archive.
package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Faultbox/skinforge/pkg/pak"
)

// Source is a read-only, enumerable set of byte blobs addressed by
// slash-separated paths relative to the source root. List must return a
// stable, lexically sorted listing: the template store turns listing order
// into compositing order, so it has to be reproducible.
type Source interface {
	List() ([]string, error)
	Read(path string) ([]byte, error)
}

// Dir serves files from a directory tree on disk.
type Dir struct {
	root string
}

// NewDir returns a Source rooted at the given directory.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

func (d *Dir) List() ([]string, error) {
	return listFS(os.DirFS(d.root))
}

func (d *Dir) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// FS adapts any fs.FS (embed.FS, fstest.MapFS, ...) into a Source.
type FS struct {
	fsys fs.FS
}

// NewFS returns a Source backed by fsys.
func NewFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

func (f *FS) List() ([]string, error) {
	return listFS(f.fsys)
}

func (f *FS) Read(path string) ([]byte, error) {
	data, err := fs.ReadFile(f.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// listFS walks fsys collecting regular file paths. fs.WalkDir visits
// entries in lexical order, which gives the determinism Source requires.
func listFS(fsys fs.FS) ([]string, error) {
	var paths []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing source: %w", err)
	}
	return paths, nil
}

// Pak serves files from a template pack archive.
type Pak struct {
	archive *pak.Archive
}

// OpenPak opens a pack file as a Source.
func OpenPak(path string) (*Pak, error) {
	a, err := pak.Open(path)
	if err != nil {
		return nil, err
	}
	return &Pak{archive: a}, nil
}

// NewPak wraps an already opened archive.
func NewPak(a *pak.Archive) *Pak {
	return &Pak{archive: a}
}

func (p *Pak) List() ([]string, error) {
	return p.archive.List(), nil
}

func (p *Pak) Read(path string) ([]byte, error) {
	return p.archive.Read(path)
}
