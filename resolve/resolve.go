// Package resolve turns block targets into vault storage paths.
//
// Targets starting with "/" are vault absolute. Anything else is first tried
// relative to the directory of the current document and then, as a
// fallback, as vault absolute path written without leading slash.
package resolve

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoActiveDocument is returned when current document path is unknown.
	ErrNoActiveDocument = errors.New("could not determine the current document path")
	// ErrFileNotFound is matched by every NotFoundError.
	ErrFileNotFound = errors.New("file does not exist")
)

// NotFoundError names the last attempted storage path.
type NotFoundError struct {
	Path string
	// Tried lists every candidate in order of attempts.
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrFileNotFound, e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}

// Locator reports whether storage path exists in the vault.
type Locator interface {
	Exists(path string) bool
}

// Resolver checks candidates against vault.
type Resolver struct {
	loc Locator
}

func New(loc Locator) *Resolver {
	return &Resolver{loc: loc}
}

// Resolve returns first existing candidate for target.
func (r *Resolver) Resolve(target, current string) (string, error) {
	if current == "" {
		return "", ErrNoActiveDocument
	}
	candidates := Candidates(target, current)
	for _, c := range candidates {
		if r.loc.Exists(c) {
			return c, nil
		}
	}
	return "", &NotFoundError{Path: candidates[len(candidates)-1], Tried: candidates}
}

// Candidates returns storage paths to try for target, in order.
func Candidates(target, current string) []string {
	if strings.HasPrefix(target, "/") {
		return []string{target[1:]}
	}
	relative := Join(current, target)
	if relative == target {
		return []string{target}
	}
	return []string{relative, target}
}

// Join resolves target against directory containing current document. ".."
// segments pop directories (never above vault root), "." and empty segments
// are skipped.
func Join(current, target string) string {
	segments := splitSegments(current)
	if len(segments) > 0 {
		// drop document file name
		segments = segments[:len(segments)-1]
	}
	for _, part := range strings.Split(target, "/") {
		switch part {
		case "..":
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
		case ".", "":
		default:
			segments = append(segments, part)
		}
	}
	return strings.Join(segments, "/")
}

func splitSegments(p string) []string {
	var out []string
	for _, part := range strings.Split(p, "/") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
