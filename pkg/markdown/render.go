package markdown

import (
	"html/template"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.abhg.dev/goldmark/mermaid"
)

const language = "mermaid"

// blockTransformer replaces fenced code blocks whose language is mermaid,
// in any letter case, with mermaid.Block nodes.
type blockTransformer struct{}

func (blockTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	src := reader.Source()
	var fences []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if strings.EqualFold(strings.TrimSpace(string(fence.Language(src))), language) {
			fences = append(fences, fence)
		}
		return ast.WalkSkipChildren, nil
	})

	for _, fence := range fences {
		b := &mermaid.Block{}
		b.SetLines(fence.Lines())
		fence.Parent().ReplaceChild(fence.Parent(), fence, b)
	}
}

// sourceRenderer writes mermaid.Block nodes back out as diagram source
// blocks, <pre><code class="language-mermaid">, leaving the conversion to
// containers to the activator.
type sourceRenderer struct{}

// RegisterFuncs registers the renderer for Mermaid blocks with the provided
// Goldmark Registerer.
func (r *sourceRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(mermaid.Kind, r.Render)
}

// Render renders mermaid.Block nodes.
func (*sourceRenderer) Render(w util.BufWriter, src []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*mermaid.Block)
	if entering {
		_, _ = w.WriteString(`<pre><code class="language-` + language + `">`)
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			template.HTMLEscape(w, line.Value(src))
		}
	} else {
		_, _ = w.WriteString("</code></pre>\n")
	}
	return ast.WalkContinue, nil
}
