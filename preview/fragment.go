package preview

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"html/template"
	"math"
	"path"
	"strconv"
	"strings"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"
)

// Stylesheet has rules fragments depend on: alignment and hover revealed
// "Open" control.
//
//go:embed preview.css
var Stylesheet []byte

// Placeholder is the only text user sees for any failure.
const Placeholder = "Failed to load XMind preview."

const fragmentTemplate = `{{- if .Failed -}}
<div class="xmind-preview-error">{{ .Placeholder }}</div>
{{- else -}}
<div class="xmind-preview xmind-align-{{ .Alignment }}" id="xmind-{{ .ID }}">
<img src="{{ .Src }}" alt="{{ default .Stem .Alt }}" style="width:{{ .Width }}%;height:auto">
{{- if .Link }}
<a class="xmind-open" href="{{ .Link }}" title="{{ .Location }}">Open</a>
{{- end }}
</div>
{{- end -}}
`

var fragmentTmpl = template.Must(template.New("fragment").Funcs(sprig.FuncMap()).Parse(fragmentTemplate))

type fragmentValues struct {
	Failed      bool
	Placeholder string
	Alignment   string
	ID          string
	Src         template.URL
	Alt         string
	Stem        string
	Width       string
	Link        template.URL
	Location    string
}

// Fragment renders result as HTML. Failures produce placeholder without image.
func Fragment(res Result) template.HTML {
	values := fragmentValues{Placeholder: Placeholder}
	if res.Err != nil || res.Image == nil {
		values.Failed = true
	} else {
		stem := strings.TrimSuffix(path.Base(res.Location), path.Ext(res.Location))
		values.Alignment = res.Directive.Alignment.String()
		values.ID = slug.Make(stem)
		values.Src = template.URL("data:" + res.Image.MimeType + ";base64," + base64.StdEncoding.EncodeToString(res.Image.Data))
		values.Alt = res.Image.Title
		values.Stem = stem
		values.Width = Width(res.Directive.Zoom)
		if res.ShowButton && res.Link != "" {
			values.Link = template.URL(res.Link)
			values.Location = res.Location
		}
	}

	buf := new(bytes.Buffer)
	if err := fragmentTmpl.Execute(buf, values); err != nil {
		// this should never happen
		return template.HTML(`<div class="xmind-preview-error">` + Placeholder + `</div>`)
	}
	return template.HTML(buf.String())
}

// Width formats zoom as percentage of container width.
func Width(zoom float64) string {
	return strconv.FormatFloat(math.Round(zoom*10000)/100, 'f', -1, 64)
}
