// Package pak implements the skinforge template pack, a single-file
// container for distributing a UV template tree. Entries are stored
// zlib-compressed under their slash-separated path relative to the
// template root.
package pak

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

const (
	pakMagic   = "SFPK"
	pakVersion = uint16(1)

	maxNameLen = 4096
)

// Pack errors.
var (
	ErrInvalidMagic       = errors.New("invalid pack magic")
	ErrUnsupportedVersion = errors.New("unsupported pack version")
	ErrTruncated          = errors.New("truncated pack data")
	ErrNotFound           = errors.New("entry not found")
)

type entry struct {
	name       string
	rawSize    uint32
	compressed []byte
}

// Archive is an opened template pack.
type Archive struct {
	entries map[string]*entry
	names   []string // sorted
}

// Open opens a pack file.
func Open(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening pack: %w", err)
	}
	a, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", path, err)
	}
	return a, nil
}

// Parse reads a pack from raw bytes.
func Parse(data []byte) (*Archive, error) {
	r := bytes.NewReader(data)

	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, ErrTruncated
	}
	if string(magic) != pakMagic {
		return nil, ErrInvalidMagic
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, ErrTruncated
	}
	if version != pakVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, ErrTruncated
	}

	a := &Archive{entries: make(map[string]*entry, count)}
	for i := uint32(0); i < count; i++ {
		e, err := readEntry(r)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		a.entries[e.name] = e
		a.names = append(a.names, e.name)
	}
	sort.Strings(a.names)

	return a, nil
}

func readEntry(r *bytes.Reader) (*entry, error) {
	var nameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return nil, ErrTruncated
	}
	if int(nameLen) == 0 || int(nameLen) > maxNameLen {
		return nil, fmt.Errorf("bad name length %d", nameLen)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, ErrTruncated
	}

	var rawSize, compSize uint32
	if err := binary.Read(r, binary.LittleEndian, &rawSize); err != nil {
		return nil, ErrTruncated
	}
	if err := binary.Read(r, binary.LittleEndian, &compSize); err != nil {
		return nil, ErrTruncated
	}

	compressed := make([]byte, compSize)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, ErrTruncated
	}

	return &entry{
		name:       string(name),
		rawSize:    rawSize,
		compressed: compressed,
	}, nil
}

// List returns every entry path, sorted.
func (a *Archive) List() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

// Contains reports whether the pack holds an entry at path.
func (a *Archive) Contains(path string) bool {
	_, ok := a.entries[path]
	return ok
}

// Read decompresses and returns the entry at path.
func (a *Archive) Read(path string) ([]byte, error) {
	e, ok := a.entries[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	zr, err := zlib.NewReader(bytes.NewReader(e.compressed))
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", path, err)
	}
	defer zr.Close()

	data := make([]byte, e.rawSize)
	if _, err := io.ReadFull(zr, data); err != nil {
		return nil, fmt.Errorf("entry %s: %w", path, err)
	}
	return data, nil
}

// Writer accumulates entries and serializes a pack.
type Writer struct {
	entries []*entry
	seen    map[string]bool
}

// NewWriter returns an empty pack writer.
func NewWriter() *Writer {
	return &Writer{seen: make(map[string]bool)}
}

// Add compresses data and stages it under name. Duplicate names are
// rejected.
func (w *Writer) Add(name string, data []byte) error {
	if name == "" || len(name) > maxNameLen {
		return fmt.Errorf("bad entry name %q", name)
	}
	if w.seen[name] {
		return fmt.Errorf("duplicate entry %q", name)
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("compressing %s: %w", name, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compressing %s: %w", name, err)
	}

	w.seen[name] = true
	w.entries = append(w.entries, &entry{
		name:       name,
		rawSize:    uint32(len(data)),
		compressed: buf.Bytes(),
	})
	return nil
}

// WriteTo serializes the pack. Entries are written in the order they were
// added.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString(pakMagic)
	binary.Write(&buf, binary.LittleEndian, pakVersion)
	binary.Write(&buf, binary.LittleEndian, uint32(len(w.entries)))

	for _, e := range w.entries {
		binary.Write(&buf, binary.LittleEndian, uint16(len(e.name)))
		buf.WriteString(e.name)
		binary.Write(&buf, binary.LittleEndian, e.rawSize)
		binary.Write(&buf, binary.LittleEndian, uint32(len(e.compressed)))
		buf.Write(e.compressed)
	}

	return buf.WriteTo(out)
}

// WriteFile serializes the pack to a file.
func (w *Writer) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating pack: %w", err)
	}
	if _, err := w.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing pack: %w", err)
	}
	return f.Close()
}
