// Package markdown turns Markdown documents into HTML pages whose mermaid
// fences are diagram source blocks the activator recognises.
package markdown

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var pageTpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{- range .Scripts}}
<script src="{{.}}"></script>
{{- end}}
</head>
<body>
{{.Body}}</body>
</html>
`))

type Converter struct {
	md      goldmark.Markdown
	scripts []string
}

type Option func(c *Converter)

// WithScript adds a <script src> to the page head, e.g. the renderer bundle
// for pages opened in a browser.
func WithScript(src string) Option {
	return func(c *Converter) {
		c.scripts = append(c.scripts, src)
	}
}

func New(ops ...Option) *Converter {
	c := &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, meta.Meta),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
				parser.WithASTTransformers(util.Prioritized(blockTransformer{}, 100)),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
				renderer.WithNodeRenderers(util.Prioritized(&sourceRenderer{}, 100)),
			),
		),
	}
	for _, o := range ops {
		o(c)
	}
	return c
}

// Page is a converted document.
type Page struct {
	Title string
	HTML  []byte
}

// Convert renders src as a complete HTML page. The title comes from the
// front matter title, else the first level one heading.
func (c *Converter) Convert(src []byte) (*Page, error) {
	ctx := parser.NewContext()
	doc := c.md.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))

	var body bytes.Buffer
	if err := c.md.Renderer().Render(&body, src, doc); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	title, _ := meta.Get(ctx)["title"].(string)
	if title == "" {
		title = firstHeading(doc, src)
	}

	var out bytes.Buffer
	err := pageTpl.Execute(&out, map[string]interface{}{
		"Title":   title,
		"Scripts": c.scripts,
		"Body":    template.HTML(body.String()),
	})
	if err != nil {
		return nil, err
	}
	return &Page{Title: title, HTML: out.Bytes()}, nil
}

func firstHeading(doc ast.Node, src []byte) string {
	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			title = strings.TrimSpace(string(h.Text(src)))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}
