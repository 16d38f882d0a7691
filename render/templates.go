package render

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"xmp/config"
)

// Values is a struct that holds variables we make available for template
// expansion.
type Values struct {
	Context string
	// Name is document file name without extension.
	Name string
	// Dir is vault directory of the document, empty for vault root.
	Dir string
	// Ext is document extension including dot.
	Ext string
	// Vault is base name of vault directory.
	Vault string
}

func buildValues(name config.TemplateFieldName, rel, vaultRoot string) Values {
	dir := path.Dir(rel)
	if dir == "." {
		dir = ""
	}
	ext := path.Ext(rel)
	return Values{
		Context: string(name),
		Name:    strings.TrimSuffix(path.Base(rel), ext),
		Dir:     dir,
		Ext:     ext,
		Vault:   path.Base(strings.ReplaceAll(vaultRoot, `\`, "/")),
	}
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
