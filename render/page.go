package render

import (
	"bytes"
	_ "embed"
	"html/template"
	"strings"

	"xmp/misc"
	"xmp/preview"
)

//go:embed default.css
var defaultStylesheet []byte

const pageTemplate = `{{- if .Standalone -}}
<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="generator" content="{{ .Generator }}">
<meta name="xmp-render-pass" content="{{ .Pass }}">
<meta name="xmp-settings-generation" content="{{ .Generation }}">
<title>{{ .Title }}</title>
<style>
{{ .Style }}
{{ .Preview }}
</style>
</head>
<body>
<article>
{{ .Body }}
</article>
</body>
</html>
{{- else -}}
<style>
{{ .Preview }}
</style>
{{ .Body }}
{{- end }}
`

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

type page struct {
	Standalone bool
	Generator  string
	Pass       string
	Generation uint64
	Title      string
	Style      template.CSS
	Preview    template.CSS
	Body       template.HTML
}

// buildPage wraps rendered document body. Fragment mode only carries preview
// rules so output can be embedded into other pages.
func buildPage(p page, style []byte) ([]byte, error) {
	p.Generator = misc.GetAppName() + " " + misc.GetVersion()
	p.Style = template.CSS(style)
	p.Preview = template.CSS(preview.Stylesheet)

	buf := new(bytes.Buffer)
	if err := pageTmpl.Execute(buf, p); err != nil {
		return nil, err
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// trustedHTML marks goldmark output as safe, raw HTML in documents is
// already dropped by the renderer.
func trustedHTML(b []byte) template.HTML {
	return template.HTML(b)
}
