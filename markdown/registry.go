// Package markdown renders vault documents to HTML with goldmark and lets
// other packages take over fenced code blocks of a given language.
package markdown

import (
	"bytes"
	"context"
	"html/template"
	"sort"
	"strings"
	"sync"

	"xmp/settings"
)

// BlockContext describes block being processed.
type BlockContext struct {
	// DocumentPath is vault path of the document being rendered.
	DocumentPath string
	// Settings is snapshot taken when document render started.
	Settings settings.Snapshot
	// Index is zero based position of the block among registered blocks of
	// the document.
	Index int
}

// Output collects HTML produced for a single block.
type Output struct {
	buf bytes.Buffer
}

func (o *Output) Write(p []byte) (int, error) {
	return o.buf.Write(p)
}

// WriteHTML appends trusted HTML fragment.
func (o *Output) WriteHTML(h template.HTML) {
	o.buf.WriteString(string(h))
}

func (o *Output) Bytes() []byte {
	return o.buf.Bytes()
}

// BlockFunc produces HTML for block body. Failures are expected to be
// rendered into out, there is nothing to return.
type BlockFunc func(ctx context.Context, source string, out *Output, bctx BlockContext)

// Registry maps fenced block language tags to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]BlockFunc
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]BlockFunc)}
}

// Register installs fn for language, replacing previous handler.
func (r *Registry) Register(lang string, fn BlockFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[strings.TrimSpace(lang)] = fn
}

// Lookup returns handler for language.
func (r *Registry) Lookup(lang string) (BlockFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[lang]
	return fn, ok
}

// Languages returns sorted list of registered languages.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	langs := make([]string, 0, len(r.handlers))
	for l := range r.handlers {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}
