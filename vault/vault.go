// Package vault is the host filesystem abstraction: a directory tree of
// Markdown notes addressed with slash separated paths relative to its root.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// DocumentExt is extension of documents processed by the program.
const DocumentExt = ".md"

// ErrOutside is returned for file system paths which do not belong to vault.
var ErrOutside = errors.New("path is outside of vault")

// Vault gives read only access to files under root.
type Vault struct {
	root string
	fsys fs.FS
}

// Open returns vault rooted at directory.
func Open(root string) (*Vault, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("unable to open vault: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("unable to open vault: %s is not a directory", abs)
	}
	return &Vault{root: abs, fsys: os.DirFS(abs)}, nil
}

// New wraps arbitrary file system, root is used only to build absolute
// locations.
func New(root string, fsys fs.FS) *Vault {
	return &Vault{root: root, fsys: fsys}
}

// Root returns absolute vault directory.
func (v *Vault) Root() string {
	return v.root
}

// Exists reports whether p names a regular file.
func (v *Vault) Exists(p string) bool {
	if !fs.ValidPath(p) {
		return false
	}
	fi, err := fs.Stat(v.fsys, p)
	return err == nil && fi.Mode().IsRegular()
}

// ReadBinary returns file content.
func (v *Vault) ReadBinary(p string) ([]byte, error) {
	if !fs.ValidPath(p) {
		return nil, &fs.PathError{Op: "read", Path: p, Err: fs.ErrInvalid}
	}
	return fs.ReadFile(v.fsys, p)
}

// Abs returns operating system path for vault path.
func (v *Vault) Abs(p string) string {
	return filepath.Join(v.root, filepath.FromSlash(p))
}

// URL returns file URL for vault path, used by "Open" control.
func (v *Vault) URL(p string) string {
	abs := filepath.ToSlash(v.Abs(p))
	if !strings.HasPrefix(abs, "/") {
		// windows drive letter
		abs = "/" + abs
	}
	return (&url.URL{Scheme: "file", Path: abs}).String()
}

// Rel converts operating system path to vault path.
func (v *Vault) Rel(osPath string) (string, error) {
	abs, err := filepath.Abs(osPath)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(v.root, abs)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s: %w", osPath, ErrOutside)
	}
	return rel, nil
}

// IsDocument reports whether vault path looks like Markdown document.
func IsDocument(p string) bool {
	return strings.EqualFold(path.Ext(p), DocumentExt)
}

// Documents returns all Markdown documents under vault directory dir ("." for
// whole vault) in natural order. Hidden directories are skipped.
func (v *Vault) Documents(dir string) ([]string, error) {
	var docs []string
	err := fs.WalkDir(v.fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && IsDocument(p) {
			docs = append(docs, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Sort(natural.StringSlice(docs))
	return docs, nil
}
