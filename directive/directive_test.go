package directive

import (
	"errors"
	"testing"

	"xmp/common"
	"xmp/settings"
)

func testSettings() settings.Settings {
	return settings.Settings{
		BaseFolder:       "/drafts/xmind",
		ShowOpenButton:   true,
		DefaultZoom:      1.0,
		DefaultAlignment: common.AlignmentCenter,
	}
}

func TestParse_Target(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"name only", "name: roadmap", "/drafts/xmind/roadmap.xmind"},
		{"name with other directives", "zoom: 0.5\nname: roadmap\nalignment: left\nbutton-display: 0", "/drafts/xmind/roadmap.xmind"},
		{"name value trimmed", "name:    road map   ", "/drafts/xmind/road map.xmind"},
		{"name without space", "name:roadmap", "/drafts/xmind/roadmap.xmind"},
		{"path only", "path:  maps/roadmap.xmind  ", "maps/roadmap.xmind"},
		{"absolute path", "path: /drafts/xmind/a.xmind", "/drafts/xmind/a.xmind"},
		{"name then path", "name: roadmap\npath: other.xmind", "/drafts/xmind/roadmap.xmind"},
		{"path then name", "path: other.xmind\nname: roadmap", "/drafts/xmind/roadmap.xmind"},
		{"first name wins", "name: first\nname: second", "/drafts/xmind/first.xmind"},
		{"first path wins", "path: first.xmind\npath: second.xmind", "first.xmind"},
		{"empty name ignored", "name:\npath: p.xmind", "p.xmind"},
		{"crlf line endings", "zoom: 0.5\r\nname: roadmap\r\n", "/drafts/xmind/roadmap.xmind"},
		{"indented lines", "   name: roadmap", "/drafts/xmind/roadmap.xmind"},
		{"path with colon", "path: C:/maps/a.xmind", "C:/maps/a.xmind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(tt.source, testSettings())
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if d.Target != tt.want {
				t.Errorf("Target = %q, want %q", d.Target, tt.want)
			}
		})
	}
}

func TestParse_BaseFolderTrailingSlash(t *testing.T) {
	s := testSettings()
	s.BaseFolder = "maps/"
	d, err := Parse("name: a", s)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if d.Target != "maps/a.xmind" {
		t.Errorf("Target = %q, want maps/a.xmind", d.Target)
	}
}

func TestParse_MissingTarget(t *testing.T) {
	for _, source := range []string{
		"",
		"zoom: 0.5\nalignment: left",
		"name:\npath:   ",
		"filename roadmap",
	} {
		d, err := Parse(source, testSettings())
		if !errors.Is(err, ErrMissingTarget) {
			t.Errorf("Parse(%q) error = %v, want ErrMissingTarget", source, err)
		}
		if d != (Directive{}) {
			t.Errorf("Parse(%q) returned partially filled directive %+v", source, d)
		}
	}
}

func TestParse_Defaults(t *testing.T) {
	s := testSettings()
	s.DefaultZoom = 0.7
	s.DefaultAlignment = common.AlignmentRight

	d, err := Parse("name: a", s)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if d.Zoom != 0.7 {
		t.Errorf("Zoom = %v, want 0.7", d.Zoom)
	}
	if d.Alignment != common.AlignmentRight {
		t.Errorf("Alignment = %v, want right", d.Alignment)
	}
	if d.Button != common.ButtonDisplayDefault {
		t.Errorf("Button = %v, want default", d.Button)
	}
}

func TestParse_LastValidOptionWins(t *testing.T) {
	source := `name: a
zoom: 0.5
zoom: 0.9
zoom: abc
zoom: -1
zoom: 0
alignment: left
alignment: right
alignment: middle
button-display: true
button-display: 0
button-display: maybe`

	d, err := Parse(source, testSettings())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if d.Zoom != 0.9 {
		t.Errorf("Zoom = %v, want 0.9", d.Zoom)
	}
	if d.Alignment != common.AlignmentRight {
		t.Errorf("Alignment = %v, want right", d.Alignment)
	}
	if d.Button != common.ButtonDisplayHidden {
		t.Errorf("Button = %v, want hidden", d.Button)
	}
}

func TestParse_ButtonLiterals(t *testing.T) {
	tests := []struct {
		value string
		want  common.ButtonDisplay
	}{
		{"true", common.ButtonDisplayShown},
		{"True", common.ButtonDisplayShown},
		{"1", common.ButtonDisplayShown},
		{"false", common.ButtonDisplayHidden},
		{"False", common.ButtonDisplayHidden},
		{"0", common.ButtonDisplayHidden},
		{"TRUE", common.ButtonDisplayDefault},
		{"yes", common.ButtonDisplayDefault},
	}
	for _, tt := range tests {
		d, err := Parse("name: a\nbutton-display: "+tt.value, testSettings())
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if d.Button != tt.want {
			t.Errorf("button-display: %s => %v, want %v", tt.value, d.Button, tt.want)
		}
	}
}

func TestParseZoom(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"0.8", 0.8, true},
		{"1", 1, true},
		{".5", 0.5, true},
		{"2.", 2, true},
		{"0", 0, false},
		{"0.0", 0, false},
		{"-0.5", 0, false},
		{"1e-1", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1.2.3", 0, false},
		{".", 0, false},
		{"0.8abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseZoom(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseZoom(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDirective_ShowButton(t *testing.T) {
	on, off := testSettings(), testSettings()
	off.ShowOpenButton = false

	tests := []struct {
		button common.ButtonDisplay
		s      settings.Settings
		want   bool
	}{
		{common.ButtonDisplayDefault, on, true},
		{common.ButtonDisplayDefault, off, false},
		{common.ButtonDisplayShown, off, true},
		{common.ButtonDisplayHidden, on, false},
	}
	for _, tt := range tests {
		d := Directive{Target: "x", Button: tt.button}
		if got := d.ShowButton(tt.s); got != tt.want {
			t.Errorf("ShowButton(%v, default %v) = %v, want %v", tt.button, tt.s.ShowOpenButton, got, tt.want)
		}
	}
}
