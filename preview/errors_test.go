package preview

import (
	"errors"
	"fmt"
	"testing"

	"xmp/directive"
	"xmp/resolve"
	"xmp/thumbnail"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
		ok   bool
	}{
		{"nil", nil, 0, false},
		{"missing target", directive.ErrMissingTarget, KindMissingTarget, true},
		{"no active document", fmt.Errorf("wrapped: %w", resolve.ErrNoActiveDocument), KindNoActiveDocument, true},
		{"not found error", &resolve.NotFoundError{Path: "a.xmind"}, KindFileNotFound, true},
		{"corrupt", fmt.Errorf("%w: zip: not a valid zip file", thumbnail.ErrCorruptArchive), KindCorruptArchive, true},
		{"no thumbnail", thumbnail.ErrThumbnailNotFound, KindThumbnailNotFound, true},
		{"classified", fmt.Errorf("outer: %w", classified(KindCorruptArchive, errors.New("x"))), KindCorruptArchive, true},
		{"unknown", errors.New("boom"), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.err)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Classify() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestError(t *testing.T) {
	err := classified(KindThumbnailNotFound, thumbnail.ErrThumbnailNotFound)
	if err.Error() != "thumbnail-not-found: no thumbnail found in xmind file" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, thumbnail.ErrThumbnailNotFound) {
		t.Error("Error must unwrap to cause")
	}
}

func TestKind(t *testing.T) {
	for _, name := range KindNames() {
		k, err := ParseKind(name)
		if err != nil {
			t.Fatalf("ParseKind(%q) error = %v", name, err)
		}
		if k.String() != name || !k.IsValid() {
			t.Errorf("round trip for %q gave %v", name, k)
		}
	}
	if _, err := ParseKind("timeout"); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("ParseKind(timeout) error = %v", err)
	}
}
