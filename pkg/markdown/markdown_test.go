package markdown

import (
	"bytes"
	"context"
	"testing"

	"cdr.dev/slog"
	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbysir/mermaidinit"
	"github.com/zbysir/mermaidinit/internal/log"
)

func TestConvert(t *testing.T) {
	cases := []struct {
		Name string
		In   string
		Out  string
	}{
		{
			Name: "Fence",
			In:   "```mermaid\ngraph TD; A-->B\n```\n",
			Out:  "<pre><code class=\"language-mermaid\">graph TD; A--&gt;B\n</code></pre>\n",
		},
		{
			Name: "SpacedInfo",
			In:   "``` mermaid\ngraph LR\n```\n",
			Out:  "<pre><code class=\"language-mermaid\">graph LR\n</code></pre>\n",
		},
		{
			Name: "UpperCase",
			In:   "```Mermaid\nsequenceDiagram\n```\n",
			Out:  "<pre><code class=\"language-mermaid\">sequenceDiagram\n</code></pre>\n",
		},
		{
			Name: "OtherLanguage",
			In:   "```go\nx := \"<a>\"\n```\n",
			Out:  "<pre><code class=\"language-go\">x := &quot;&lt;a&gt;&quot;\n</code></pre>\n",
		},
	}

	c := New()
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			p, err := c.Convert([]byte(tc.In))
			require.NoError(t, err)
			assert.Contains(t, string(p.HTML), tc.Out)
		})
	}
}

func TestTitle(t *testing.T) {
	c := New(WithScript("mermaid.min.js"))

	p, err := c.Convert([]byte("---\ntitle: Architecture\n---\n# Overview\n"))
	require.NoError(t, err)
	assert.Equal(t, "Architecture", p.Title)
	assert.Contains(t, string(p.HTML), "<title>Architecture</title>")
	assert.Contains(t, string(p.HTML), `<script src="mermaid.min.js"></script>`)

	p, err = c.Convert([]byte("intro\n\n# Data *flow*\n\n## Details\n"))
	require.NoError(t, err)
	assert.Equal(t, "Data flow", p.Title)
}

type stubRenderer struct {
	ran int
}

func (*stubRenderer) Version() string { return "" }

func (*stubRenderer) Initialize(mermaidinit.RendererConfig) error { return nil }

func (s *stubRenderer) Run(n *goquery.Selection) mermaidinit.Pending {
	s.ran = n.Length()
	return mermaidinit.Resolved{}
}

type stubEnv struct {
	r *stubRenderer
}

func (e stubEnv) Lookup(string) (mermaidinit.Renderer, bool) { return e.r, true }

func (stubEnv) Globals() []string { return nil }

func TestConvertThenActivate(t *testing.T) {
	src := "# Flows\n\n```mermaid\ngraph TD; A-->B\n```\n\ntext\n\n```mermaid\n  graph LR; B-->C  \n```\n"
	p, err := New().Convert([]byte(src))
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.HTML))
	require.NoError(t, err)

	r := &stubRenderer{}
	a, err := mermaidinit.New(stubEnv{r: r})
	require.NoError(t, err)
	ctx := log.With(context.Background(), slog.Make(&log.Recorder{}))
	res := a.Initialize(ctx, doc)

	assert.Equal(t, 2, res.Converted)
	assert.Equal(t, 2, r.ran)
	assert.Equal(t, "graph TD; A-->B", doc.Find("#mermaid-0").Text())
	assert.Equal(t, "graph LR; B-->C", doc.Find("#mermaid-1").Text())
}
