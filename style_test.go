package mermaidinit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureStyle(t *testing.T) {
	doc := newDoc(t, "<p>x</p>")

	assert.True(t, EnsureStyle(doc, ""))
	assert.False(t, EnsureStyle(doc, ""))
	assert.False(t, EnsureStyle(doc, ".extra{}"))

	s := doc.Find("head > style[" + StyleMarker + "]")
	assert.Equal(t, 1, s.Length())
	assert.Contains(t, s.Text(), "page-break-inside: avoid !important;")
	assert.NotContains(t, s.Text(), ".extra")
}

func TestValidateCSS(t *testing.T) {
	cases := []struct {
		Name string
		In   string
		Ok   bool
	}{
		{Name: "Builtin", In: Stylesheet, Ok: true},
		{Name: "Empty", In: "", Ok: true},
		{Name: "Rule", In: ".mermaid svg { max-height: 600px; }", Ok: true},
		{Name: "Extra", In: ".a { color: red; } }", Ok: false},
		{Name: "Open", In: ".a { color: red;", Ok: false},
		{Name: "BadString", In: ".a::after { content: \"oops\n}", Ok: false},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			err := ValidateCSS(c.In)
			if c.Ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
