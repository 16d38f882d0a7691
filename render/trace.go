package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"xmp/preview"
)

// treeWriter produces indented text dumps.
type treeWriter struct {
	w *strings.Builder
}

func newTreeWriter() treeWriter {
	return treeWriter{w: &strings.Builder{}}
}

func (tw treeWriter) String() string {
	return tw.w.String()
}

func (tw treeWriter) line(depth int, format string, args ...any) {
	for range depth {
		tw.w.WriteString("  ")
	}
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func (tw treeWriter) text(depth int, label, value string) {
	tw.line(depth, "%s: %s", label, quoteText(value))
}

func quoteText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}

type traceEntry struct {
	index int
	res   preview.Result
}

// traceLog collects preview outcomes per document for debug report. Blocks of
// a document are processed concurrently.
type traceLog struct {
	mu      sync.Mutex
	entries map[string][]traceEntry
}

func newTraceLog() *traceLog {
	return &traceLog{entries: make(map[string][]traceEntry)}
}

func (tl *traceLog) add(doc string, index int, res preview.Result) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.entries[doc] = append(tl.entries[doc], traceEntry{index: index, res: res})
}

// take formats and forgets everything collected for doc.
func (tl *traceLog) take(doc string) []byte {
	tl.mu.Lock()
	entries := tl.entries[doc]
	delete(tl.entries, doc)
	tl.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].index < entries[j].index })

	tw := newTreeWriter()
	tw.text(0, "document", doc)
	for _, e := range entries {
		dumpResult(tw, e.index, e.res)
	}
	return []byte(tw.String())
}

func dumpResult(tw treeWriter, index int, res preview.Result) {
	tw.line(1, "block %d", index)
	if res.Directive.Target != "" {
		d := res.Directive
		tw.text(2, "target", d.Target)
		tw.line(2, "zoom: %s%%", preview.Width(d.Zoom))
		tw.line(2, "alignment: %s", d.Alignment)
		tw.line(2, "button: %s (show %t)", d.Button, res.ShowButton)
	}
	if res.Location != "" {
		tw.text(2, "location", res.Location)
	}
	if res.Image != nil {
		tw.line(2, "image: %s, %d bytes", res.Image.MimeType, len(res.Image.Data))
		tw.text(2, "title", res.Image.Title)
	}
	if res.Link != "" {
		tw.text(2, "link", res.Link)
	}
	if res.Err != nil {
		tw.text(2, "error", res.Err.Error())
	}
}
