// Package archive gives access to zip containers held in memory. XMind
// documents are plain zip archives, so everything here is format agnostic.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	fixzip "github.com/hidez8891/zip"
)

// ErrNotFound is returned when requested entry is absent from archive.
var ErrNotFound = errors.New("entry not found in archive")

// Reader provides exact name lookup on top of zip central directory.
type Reader struct {
	files []*fixzip.File
	index map[string]*fixzip.File
}

// Open parses data as zip container. Nothing is decompressed at this point.
func Open(data []byte) (*Reader, error) {
	zr, err := fixzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("unable to read zip container: %w", err)
	}

	r := &Reader{
		files: zr.File,
		index: make(map[string]*fixzip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		// first entry wins for duplicated names, same as most unzip tools
		if _, exists := r.index[f.Name]; !exists {
			r.index[f.Name] = f
		}
	}
	return r, nil
}

// Len returns number of entries in the central directory.
func (r *Reader) Len() int {
	return len(r.files)
}

// Find looks up entry by its exact (case-sensitive, slash separated) name.
func (r *Reader) Find(name string) (*fixzip.File, bool) {
	f, ok := r.index[name]
	return f, ok
}

// ReadEntry decompresses named entry fully into memory.
func (r *Reader) ReadEntry(name string) ([]byte, error) {
	f, ok := r.Find(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open entry %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("unable to decompress entry %s: %w", name, err)
	}
	return data, nil
}

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. If an error is returned, processing stops.
type WalkFunc func(file *fixzip.File) error

// Walk visits all files in the archive with names starting with prefix in
// central directory order. Directories are skipped. Entries with path
// traversal components ("..") or absolute names stop the walk with an error.
func Walk(r *Reader, prefix string, walkFn WalkFunc) error {
	for _, f := range r.files {
		name := f.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if err := walkFn(f); err != nil {
			return err
		}
	}
	return nil
}

// isSafePath returns false for absolute paths and those containing ".."
// components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
