package thumbnail

import (
	"encoding/json"
	"strings"

	"github.com/beevik/etree"

	"xmp/archive"
)

const (
	contentJSON = "content.json"
	contentXML  = "content.xml"
)

// sheet is the part of XMind Zen content.json we care about.
type sheet struct {
	Title     string `json:"title"`
	RootTopic struct {
		Title string `json:"title"`
	} `json:"rootTopic"`
}

// Title returns root topic title of the first sheet. Newer documents keep
// content in JSON, XMind 8 and older in XML. Empty string is returned when
// neither could be read.
func Title(r *archive.Reader) string {
	if data, err := r.ReadEntry(contentJSON); err == nil {
		var sheets []sheet
		if err := json.Unmarshal(data, &sheets); err == nil && len(sheets) > 0 {
			return strings.TrimSpace(sheets[0].RootTopic.Title)
		}
	}

	data, err := r.ReadEntry(contentXML)
	if err != nil {
		return ""
	}
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{Permissive: true}
	if err := doc.ReadFromBytes(data); err != nil {
		return ""
	}
	if title := doc.FindElement("//sheet/topic/title"); title != nil {
		return strings.TrimSpace(title.Text())
	}
	return ""
}
