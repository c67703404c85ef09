package mermaidinit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IDPrefix prefixes the ordinal in container ids.
const IDPrefix = "mermaid-"

var (
	ErrDetached    = errors.New("source block is not attached to the document")
	ErrEmptySource = errors.New("source block has no diagram text")
)

// BlockError is a transformation fault of a single source block.
type BlockError struct {
	Ordinal int
	Err     error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block %d: %v", e.Ordinal, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

// newContainer builds <div class="mermaid" id="mermaid-N">text</div>.
func newContainer(ordinal int, text string) *html.Node {
	div := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr: []html.Attribute{
			{Key: "class", Val: "mermaid"},
			{Key: "id", Val: IDPrefix + strconv.Itoa(ordinal)},
		},
	}
	div.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return div
}

// convert replaces block, or the pre wrapping it, with a container.
func convert(root *html.Node, ordinal int, block *goquery.Selection) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &BlockError{Ordinal: ordinal, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	n := block.Get(0)
	if !attached(root, n) {
		return &BlockError{Ordinal: ordinal, Err: ErrDetached}
	}
	text := strings.TrimSpace(block.Text())
	if text == "" {
		return &BlockError{Ordinal: ordinal, Err: ErrEmptySource}
	}

	target := block.Closest("pre")
	if target.Length() == 0 {
		target = block
	}
	target.ReplaceWithNodes(newContainer(ordinal, text))
	return nil
}

func attached(root, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}
