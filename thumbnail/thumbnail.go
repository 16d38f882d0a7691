// Package thumbnail pulls the preview image XMind embeds into every saved
// document.
package thumbnail

import (
	"errors"
	"fmt"

	"github.com/h2non/filetype"

	"xmp/archive"
)

const (
	// Entry is the fixed location of preview image inside XMind archive.
	Entry = "Thumbnails/thumbnail.png"
	// MimeType is what extracted data is always tagged with.
	MimeType = "image/png"
)

var (
	ErrCorruptArchive    = errors.New("file is not a valid xmind archive")
	ErrThumbnailNotFound = errors.New("no thumbnail found in xmind file")
)

// Image is extracted thumbnail.
type Image struct {
	Data     []byte
	MimeType string
	// Title is root topic of the first sheet, may be empty.
	Title string
}

// IsPNG reports whether data really looks like PNG. XMind always writes PNG,
// but nothing checks what is inside.
func (img *Image) IsPNG() bool {
	return filetype.Is(img.Data, "png")
}

// Open checks container signature and opens it.
func Open(data []byte) (*archive.Reader, error) {
	if !filetype.Is(data, "zip") {
		return nil, ErrCorruptArchive
	}
	r, err := archive.Open(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}
	return r, nil
}

// Extract returns thumbnail from XMind archive content.
func Extract(data []byte) (*Image, error) {
	r, err := Open(data)
	if err != nil {
		return nil, err
	}

	thumb, err := r.ReadEntry(Entry)
	if errors.Is(err, archive.ErrNotFound) {
		return nil, ErrThumbnailNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}

	return &Image{
		Data:     thumb,
		MimeType: MimeType,
		Title:    Title(r),
	}, nil
}
