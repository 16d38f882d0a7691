package markdown

import (
	"bytes"
	"context"
	"fmt"
	"runtime/debug"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"xmp/settings"
)

// Renderer converts documents to HTML. It is safe for concurrent use.
type Renderer struct {
	reg   *Registry
	md    goldmark.Markdown
	limit int
	log   *zap.Logger
}

// New creates renderer running at most concurrency block handlers of a single
// document at once.
func New(reg *Registry, concurrency int, log *zap.Logger) *Renderer {
	return &Renderer{
		reg: reg,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				renderer.WithNodeRenderers(util.Prioritized(&blockRenderer{}, 500)),
			),
		),
		limit: max(concurrency, 1),
		log:   log,
	}
}

// Render produces HTML body for document src located at vault path docPath.
// Registered blocks are processed concurrently before document is written,
// failure of one never affects others.
func (r *Renderer) Render(ctx context.Context, docPath string, src []byte, snap settings.Snapshot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := r.md.Parser().Parse(text.NewReader(src))

	blocks := r.takeOver(doc, src)
	if len(blocks) > 0 {
		r.log.Debug("Processing registered blocks", zap.String("document", docPath), zap.Int("count", len(blocks)))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for i, b := range blocks {
		fn, _ := r.reg.Lookup(b.lang)
		bctx := BlockContext{DocumentPath: docPath, Settings: snap, Index: i}
		g.Go(func() error {
			r.runBlock(gctx, fn, b, bctx)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := r.md.Renderer().Render(buf, src, doc); err != nil {
		return nil, fmt.Errorf("unable to render document %s: %w", docPath, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) runBlock(ctx context.Context, fn BlockFunc, b *block, bctx BlockContext) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("Block handler ended with panic",
				zap.String("document", bctx.DocumentPath), zap.Int("block", bctx.Index), zap.String("language", b.lang),
				zap.Any("panic", rec), zap.ByteString("stack", debug.Stack()))
		}
	}()
	fn(ctx, b.source, b.out, bctx)
}

// takeOver replaces fenced code blocks with registered language by block
// nodes and returns them in document order.
func (r *Renderer) takeOver(doc ast.Node, src []byte) []*block {
	var fenced []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if _, ok := r.reg.Lookup(string(fcb.Language(src))); ok {
			fenced = append(fenced, fcb)
		}
		return ast.WalkSkipChildren, nil
	})

	blocks := make([]*block, 0, len(fenced))
	for _, fcb := range fenced {
		b := &block{
			lang:   string(fcb.Language(src)),
			source: blockSource(fcb, src),
			out:    new(Output),
		}
		parent := fcb.Parent()
		parent.ReplaceChild(parent, fcb, b)
		blocks = append(blocks, b)
	}
	return blocks
}

func blockSource(n *ast.FencedCodeBlock, src []byte) string {
	buf := new(bytes.Buffer)
	lines := n.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.String()
}
