package markdown

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// KindBlock is node kind of fenced blocks taken over by registered handlers.
var KindBlock = ast.NewNodeKind("RegisteredBlock")

// block replaces fenced code block in document tree, rendering emits
// whatever handler has written into output.
type block struct {
	ast.BaseBlock
	lang   string
	source string
	out    *Output
}

func (n *block) Kind() ast.NodeKind {
	return KindBlock
}

func (n *block) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Language": n.lang}, nil)
}

type blockRenderer struct{}

func (r *blockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindBlock, r.renderBlock)
}

func (r *blockRenderer) renderBlock(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*block)
	if _, err := w.Write(n.out.Bytes()); err != nil {
		return ast.WalkStop, err
	}
	if err := w.WriteByte('\n'); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}
