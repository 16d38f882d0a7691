package markdown

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"xmp/settings"
)

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

const sampleDoc = "# Plan\n\nSome *text*.\n\n" +
	"```xmind\nname: first\nzoom: 0.5\n```\n\n" +
	"```go\nfmt.Println(\"<b>\")\n```\n\n" +
	"- item\n\n  ```xmind\n  name: nested\n  ```\n"

func TestRender_RegisteredBlocks(t *testing.T) {
	reg := NewRegistry()

	var (
		mu      sync.Mutex
		sources = map[int]string{}
	)
	reg.Register("xmind", func(_ context.Context, source string, out *Output, bctx BlockContext) {
		mu.Lock()
		sources[bctx.Index] = source
		mu.Unlock()
		if bctx.DocumentPath != "notes/plan.md" {
			t.Errorf("DocumentPath = %q", bctx.DocumentPath)
		}
		out.WriteHTML(template.HTML(fmt.Sprintf(`<div class="block-%d"></div>`, bctx.Index)))
	})

	r := New(reg, 2, testLogger(t))
	html, err := r.Render(context.Background(), "notes/plan.md", []byte(sampleDoc), settings.Snapshot{Settings: settings.Defaults()})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := string(html)

	if !strings.Contains(out, "<h1>Plan</h1>") || !strings.Contains(out, "<em>text</em>") {
		t.Errorf("regular markdown was not rendered:\n%s", out)
	}
	first, second := strings.Index(out, `<div class="block-0"></div>`), strings.Index(out, `<div class="block-1"></div>`)
	if first < 0 || second < 0 || first > second {
		t.Errorf("registered blocks missing or out of order:\n%s", out)
	}
	if !strings.Contains(out, `<pre><code class="language-go">fmt.Println(&quot;&lt;b&gt;&quot;)`) {
		t.Errorf("unregistered block must render as escaped code:\n%s", out)
	}
	if strings.Contains(out, "language-xmind") {
		t.Errorf("registered block rendered as code:\n%s", out)
	}

	if sources[0] != "name: first\nzoom: 0.5\n" {
		t.Errorf("block 0 source = %q", sources[0])
	}
	if strings.TrimSpace(sources[1]) != "name: nested" {
		t.Errorf("block 1 source = %q", sources[1])
	}
}

func TestRender_NoRegisteredBlocks(t *testing.T) {
	r := New(NewRegistry(), 1, testLogger(t))
	html, err := r.Render(context.Background(), "a.md", []byte("```xmind\nname: a\n```\n"), settings.Snapshot{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(string(html), `<pre><code class="language-xmind">name: a`) {
		t.Errorf("block should stay code without handler:\n%s", html)
	}
}

func TestRender_ConcurrencyLimit(t *testing.T) {
	const limit = 2

	var running, peak atomic.Int32
	reg := NewRegistry()
	reg.Register("xmind", func(_ context.Context, _ string, out *Output, _ BlockContext) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		out.WriteHTML("<p>ok</p>")
	})

	doc := strings.Repeat("```xmind\nname: a\n```\n\n", 8)
	r := New(reg, limit, testLogger(t))
	html, err := r.Render(context.Background(), "a.md", []byte(doc), settings.Snapshot{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := strings.Count(string(html), "<p>ok</p>"); got != 8 {
		t.Errorf("rendered %d blocks, want 8", got)
	}
	if peak.Load() > limit {
		t.Errorf("peak concurrency = %d, limit %d", peak.Load(), limit)
	}
}

func TestRender_PanickingBlockDoesNotAffectOthers(t *testing.T) {
	reg := NewRegistry()
	reg.Register("xmind", func(_ context.Context, source string, out *Output, _ BlockContext) {
		if strings.Contains(source, "boom") {
			panic("handler failure")
		}
		out.WriteHTML("<p>fine</p>")
	})

	r := New(reg, 4, zap.NewNop())
	html, err := r.Render(context.Background(), "a.md", []byte("```xmind\nboom\n```\n\n```xmind\nname: a\n```\n"), settings.Snapshot{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(string(html), "<p>fine</p>") {
		t.Errorf("sibling block output lost:\n%s", html)
	}
}

func TestRender_SnapshotIsPassed(t *testing.T) {
	reg := NewRegistry()
	var got settings.Snapshot
	reg.Register("xmind", func(_ context.Context, _ string, _ *Output, bctx BlockContext) {
		got = bctx.Settings
	})

	snap := settings.Snapshot{Settings: settings.Defaults(), Generation: 7}
	if _, err := New(reg, 1, testLogger(t)).Render(context.Background(), "a.md", []byte("```xmind\n```\n"), snap); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != snap {
		t.Errorf("handler got %+v, want %+v", got, snap)
	}
}

func TestRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(NewRegistry(), 1, testLogger(t)).Render(ctx, "a.md", []byte("# a"), settings.Snapshot{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(" xmind ", func(context.Context, string, *Output, BlockContext) {})
	reg.Register("mermaid", func(context.Context, string, *Output, BlockContext) {})

	if _, ok := reg.Lookup("xmind"); !ok {
		t.Error("Lookup(xmind) = false")
	}
	if _, ok := reg.Lookup("XMind"); ok {
		t.Error("language lookup must be exact")
	}
	if got := strings.Join(reg.Languages(), ","); got != "mermaid,xmind" {
		t.Errorf("Languages() = %s", got)
	}
}
