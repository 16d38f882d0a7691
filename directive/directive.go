// Package directive parses the body of an xmind fenced block.
//
// Block body is line oriented, one "key: value" directive per line:
//
//	name: roadmap            target {base folder}/roadmap.xmind
//	path: maps/roadmap.xmind target used verbatim
//	zoom: 0.8                image width as a fraction of container width
//	button-display: false    override for "Open" control visibility
//	alignment: right         left, center or right
//
// Unknown keys and malformed values are ignored.
package directive

import (
	"errors"
	"strconv"
	"strings"

	"xmp/common"
	"xmp/settings"
)

// ArchiveExtension is appended to name based targets.
const ArchiveExtension = "xmind"

// ErrMissingTarget is returned when block has neither name nor path directive.
var ErrMissingTarget = errors.New("no valid file path provided")

const (
	keyName      = "name"
	keyPath      = "path"
	keyZoom      = "zoom"
	keyButton    = "button-display"
	keyAlignment = "alignment"
)

// Directive is the parsed block request.
type Directive struct {
	// Target is never empty for successfully parsed directive.
	Target    string
	Zoom      float64
	Button    common.ButtonDisplay
	Alignment common.Alignment
}

// ShowButton resolves per block override against global default.
func (d Directive) ShowButton(s settings.Settings) bool {
	return d.Button.Visible(s.ShowOpenButton)
}

// accumulator collects directives with per field precedence:
//
//   - name: first occurrence wins, beats path regardless of line order
//   - path: first occurrence wins, used only when there is no name
//   - zoom, button-display, alignment: last valid occurrence wins
type accumulator struct {
	name, path string
	zoom       float64
	button     common.ButtonDisplay
	alignment  common.Alignment
}

func (a *accumulator) apply(key, value string) {
	switch key {
	case keyName:
		if a.name == "" {
			a.name = value
		}
	case keyPath:
		if a.path == "" {
			a.path = value
		}
	case keyZoom:
		if z, ok := parseZoom(value); ok {
			a.zoom = z
		}
	case keyButton:
		if b, ok := parseButton(value); ok {
			a.button = b
		}
	case keyAlignment:
		if al, err := common.ParseAlignment(value); err == nil {
			a.alignment = al
		}
	}
}

func (a *accumulator) target(baseFolder string) string {
	if a.name != "" {
		return strings.TrimSuffix(baseFolder, "/") + "/" + a.name + "." + ArchiveExtension
	}
	return a.path
}

// Parse turns block source into Directive. Options absent from the block take
// their values from s.
func Parse(source string, s settings.Settings) (Directive, error) {
	acc := accumulator{
		zoom:      s.DefaultZoom,
		button:    common.ButtonDisplayDefault,
		alignment: s.DefaultAlignment,
	}

	for _, line := range strings.Split(source, "\n") {
		key, value, ok := splitLine(line)
		if !ok {
			continue
		}
		acc.apply(key, value)
	}

	target := acc.target(s.BaseFolder)
	if target == "" {
		return Directive{}, ErrMissingTarget
	}
	return Directive{
		Target:    target,
		Zoom:      acc.zoom,
		Button:    acc.button,
		Alignment: acc.alignment,
	}, nil
}

// splitLine returns directive key and trimmed value. Lines without colon or
// with empty value do not carry a directive.
func splitLine(line string) (string, string, bool) {
	key, value, found := strings.Cut(strings.TrimSpace(line), ":")
	if !found {
		return "", "", false
	}
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}

// parseZoom accepts plain positive decimals only ("0.8", "1", ".5").
func parseZoom(value string) (float64, bool) {
	dots := 0
	for _, r := range value {
		switch {
		case r == '.':
			dots++
		case r < '0' || r > '9':
			return 0, false
		}
	}
	if dots > 1 {
		return 0, false
	}
	z, err := strconv.ParseFloat(value, 64)
	if err != nil || z <= 0 {
		return 0, false
	}
	return z, true
}

func parseButton(value string) (common.ButtonDisplay, bool) {
	switch value {
	case "true", "True", "1":
		return common.ButtonDisplayShown, true
	case "false", "False", "0":
		return common.ButtonDisplayHidden, true
	}
	return common.ButtonDisplayDefault, false
}
