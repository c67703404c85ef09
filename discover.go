package mermaidinit

import (
	"context"
	"strings"

	"cdr.dev/slog"
	"github.com/PuerkitoBio/goquery"

	"github.com/zbysir/mermaidinit/internal/log"
)

const (
	// SourceSelector matches diagram source blocks.
	SourceSelector = `pre code.language-mermaid, code.language-mermaid, pre code[class*="mermaid"]`
	// CodeSelector matches every code-bearing element, for diagnostics.
	CodeSelector = `pre code, code`
	// ContainerSelector matches elements the renderer consumes.
	ContainerSelector = ".mermaid"

	previewLen = 50
)

// Discover returns the diagram source blocks of doc in document order.
func Discover(doc *goquery.Document) *goquery.Selection {
	return doc.Find(SourceSelector)
}

// CodeBlock describes one code-bearing element for troubleshooting.
type CodeBlock struct {
	Index   int
	Class   string
	Preview string
}

// ListCodeBlocks enumerates every code element with its class attribute and
// the start of its text.
func ListCodeBlocks(doc *goquery.Document) []CodeBlock {
	var blocks []CodeBlock
	doc.Find(CodeSelector).Each(func(i int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		blocks = append(blocks, CodeBlock{
			Index:   i,
			Class:   class,
			Preview: preview(s.Text()),
		})
	})
	return blocks
}

func logCodeBlocks(ctx context.Context, doc *goquery.Document) {
	blocks := ListCodeBlocks(doc)
	log.Info(ctx, "no diagram code blocks found, checking all code blocks", slog.F("total", len(blocks)))
	for _, b := range blocks {
		log.Info(ctx, "code block",
			slog.F("index", b.Index),
			slog.F("class", b.Class),
			slog.F("content", b.Preview+"..."),
		)
	}
}

// matchGlobals filters names by case-insensitive substring.
func matchGlobals(names []string, substr string) []string {
	substr = strings.ToLower(substr)
	matched := []string{}
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), substr) {
			matched = append(matched, n)
		}
	}
	return matched
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > previewLen {
		r = r[:previewLen]
	}
	return string(r)
}
