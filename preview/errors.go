package preview

import (
	"errors"

	"xmp/directive"
	"xmp/resolve"
	"xmp/thumbnail"
)

// Error is a classified preview failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify maps error returned by any pipeline stage to its failure class.
func Classify(err error) (Kind, bool) {
	var pe *Error
	switch {
	case err == nil:
		return 0, false
	case errors.As(err, &pe):
		return pe.Kind, true
	case errors.Is(err, directive.ErrMissingTarget):
		return KindMissingTarget, true
	case errors.Is(err, resolve.ErrNoActiveDocument):
		return KindNoActiveDocument, true
	case errors.Is(err, resolve.ErrFileNotFound):
		return KindFileNotFound, true
	case errors.Is(err, thumbnail.ErrThumbnailNotFound):
		return KindThumbnailNotFound, true
	case errors.Is(err, thumbnail.ErrCorruptArchive):
		return KindCorruptArchive, true
	}
	return 0, false
}

func classified(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
