// Package preview turns the body of a single xmind block into an HTML
// fragment: directive, location, archive and thumbnail, in that order. Any
// failure along the way ends with a placeholder and a log record, never with
// an error for the caller.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"xmp/directive"
	"xmp/resolve"
	"xmp/settings"
	"xmp/thumbnail"
)

// Storage is the part of host file system pipeline needs.
type Storage interface {
	resolve.Locator
	ReadBinary(path string) ([]byte, error)
}

// Linker is optionally implemented by Storage to produce "Open" control
// target.
type Linker interface {
	URL(path string) string
}

// Oracle knows which document is being rendered.
type Oracle interface {
	ActiveDocument() (string, error)
}

// DocumentPath is an Oracle for a known document.
type DocumentPath string

func (p DocumentPath) ActiveDocument() (string, error) {
	if p == "" {
		return "", resolve.ErrNoActiveDocument
	}
	return string(p), nil
}

// Result carries everything needed to render a single block.
type Result struct {
	Directive directive.Directive
	// Location is storage path of the archive, on FileNotFound it is the last
	// attempted candidate.
	Location string
	Image    *thumbnail.Image
	// ShowButton is effective "Open" control visibility.
	ShowButton bool
	// Link is "Open" control target.
	Link string
	// Err is nil on success, otherwise *Error or context error.
	Err error
}

// Pipeline processes blocks against single storage. It is safe for concurrent
// use, all per block state lives in Result.
type Pipeline struct {
	storage Storage
	log     *zap.Logger
}

func New(storage Storage, log *zap.Logger) *Pipeline {
	return &Pipeline{storage: storage, log: log}
}

// Process runs block through all stages using settings snapshot taken when
// render started.
func (p *Pipeline) Process(ctx context.Context, source string, oracle Oracle, snap settings.Snapshot) (res Result) {
	defer func() {
		var pe *Error
		if errors.As(res.Err, &pe) {
			p.log.Warn("Unable to render preview",
				zap.Stringer("kind", pe.Kind), zap.String("block", source), zap.String("path", res.Location), zap.Error(pe.Err))
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	d, err := directive.Parse(source, snap.Settings)
	if err != nil {
		res.Err = classified(KindMissingTarget, err)
		return res
	}
	res.Directive = d
	res.ShowButton = d.ShowButton(snap.Settings)

	current, err := oracle.ActiveDocument()
	if err != nil {
		if !errors.Is(err, resolve.ErrNoActiveDocument) {
			err = fmt.Errorf("%w: %w", resolve.ErrNoActiveDocument, err)
		}
		res.Err = classified(KindNoActiveDocument, err)
		return res
	}

	loc, err := resolve.New(p.storage).Resolve(d.Target, current)
	if err != nil {
		var nf *resolve.NotFoundError
		if errors.As(err, &nf) {
			res.Location = nf.Path
		}
		kind, _ := Classify(err)
		res.Err = classified(kind, err)
		return res
	}
	res.Location = loc

	data, err := p.storage.ReadBinary(loc)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			p.log.Debug("Archive read failed", zap.String("path", loc), zap.Error(err))
		}
		res.Err = classified(KindFileNotFound, fmt.Errorf("%w: %w", resolve.ErrFileNotFound, err))
		return res
	}

	img, err := thumbnail.Extract(data)
	if err != nil {
		kind, ok := Classify(err)
		if !ok {
			kind = KindCorruptArchive
		}
		res.Err = classified(kind, err)
		return res
	}
	if !img.IsPNG() {
		p.log.Warn("Thumbnail does not look like PNG image", zap.String("path", loc))
	}
	res.Image = img

	if res.ShowButton {
		res.Link = loc
		if l, ok := p.storage.(Linker); ok {
			res.Link = l.URL(loc)
		}
	}

	p.log.Debug("Preview ready", zap.String("path", loc), zap.String("title", img.Title), zap.Float64("zoom", d.Zoom), zap.Stringer("alignment", d.Alignment))
	return res
}
