package mermaidinit

import (
	"errors"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StyleMarker is the attribute carried by the injected style element.
const StyleMarker = "data-mermaid-init"

// Stylesheet keeps diagrams centred and off page breaks when printed.
const Stylesheet = `
.mermaid {
  display: flex;
  justify-content: center;
  margin: 1.5em auto;
  padding: 1em 0;
  page-break-inside: avoid !important;
  break-inside: avoid !important;
  page-break-before: auto;
  page-break-after: auto;
}
.mermaid svg {
  max-width: 100%;
  max-height: 800px;
  height: auto;
  page-break-inside: avoid !important;
}
/* keep what follows a diagram close to it */
.mermaid + h1,
.mermaid + h2,
.mermaid + h3,
.mermaid + p {
  margin-top: 1em;
  page-break-before: avoid;
}
`

// EnsureStyle appends the stylesheet to the document head unless a marked
// style element is already present. It reports whether it inserted one.
func EnsureStyle(doc *goquery.Document, extraCSS string) bool {
	if doc.Find("style[" + StyleMarker + "]").Length() > 0 {
		return false
	}

	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "style",
		DataAtom: atom.Style,
		Attr:     []html.Attribute{{Key: StyleMarker}},
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: Stylesheet + extraCSS})

	head := doc.Find("head").First()
	if head.Length() == 0 {
		head = doc.Find("html").First()
	}
	if head.Length() == 0 {
		doc.Selection.AppendNodes(n)
		return true
	}
	head.AppendNodes(n)
	return true
}

var errUnbalanced = errors.New("unbalanced braces")

// ValidateCSS lexes s and rejects bad strings, bad urls and unbalanced blocks.
func ValidateCSS(s string) error {
	l := css.NewLexer(parse.NewInputString(s))
	depth := 0
	for {
		tt, text := l.Next()
		switch tt {
		case css.ErrorToken:
			if l.Err() != io.EOF {
				return l.Err()
			}
			if depth != 0 {
				return errUnbalanced
			}
			return nil
		case css.BadStringToken, css.BadURLToken:
			return fmt.Errorf("malformed token %q", text)
		case css.LeftBraceToken:
			depth++
		case css.RightBraceToken:
			depth--
			if depth < 0 {
				return errUnbalanced
			}
		}
	}
}
