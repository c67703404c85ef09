package mermaidinit

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoBlocks = `<pre><code class="language-mermaid">graph A</code></pre><pre><code class="language-mermaid">graph B</code></pre>`

func waitResult(t *testing.T, c <-chan Result) Result {
	t.Helper()
	select {
	case r := <-c:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for an activation pass")
	}
	return Result{}
}

func assertNoResult(t *testing.T, c <-chan Result, d time.Duration) {
	t.Helper()
	select {
	case r := <-c:
		t.Fatalf("unexpected activation pass: %+v", r)
	case <-time.After(d):
	}
}

func TestAttachReady(t *testing.T) {
	results := make(chan Result, 4)
	r := &fakeRenderer{}
	a, err := New(&fakeEnv{r: r},
		WithFallbackDelay(50*time.Millisecond),
		WithObserver(func(res Result) { results <- res }),
	)
	require.NoError(t, err)

	ctx, _ := recordCtx()
	p := NewPage(newDoc(t, twoBlocks), true)
	stop := a.Attach(ctx, p)
	defer stop()

	// ran synchronously
	require.Len(t, results, 1)
	first := <-results
	assert.Equal(t, 2, first.Converted)

	second := waitResult(t, results)
	assert.Equal(t, 0, second.Found)
	assert.Equal(t, 2, second.Rendered)

	p.Do(func(doc *goquery.Document) {
		assert.Equal(t, []string{"mermaid-0", "mermaid-1"}, containerIDs(doc))
		assert.Equal(t, 1, doc.Find("style["+StyleMarker+"]").Length())
	})
}

func TestAttachWaitsForReady(t *testing.T) {
	results := make(chan Result, 4)
	a, err := New(&fakeEnv{r: &fakeRenderer{}},
		WithFallbackDelay(time.Hour),
		WithObserver(func(res Result) { results <- res }),
	)
	require.NoError(t, err)

	ctx, _ := recordCtx()
	p := NewPage(newDoc(t, twoBlocks), false)
	stop := a.Attach(ctx, p)
	defer stop()

	assertNoResult(t, results, 20*time.Millisecond)
	p.MarkReady()
	res := waitResult(t, results)
	assert.Equal(t, 2, res.Converted)
}

func TestAttachFallbackBeforeReady(t *testing.T) {
	results := make(chan Result, 4)
	a, err := New(&fakeEnv{r: &fakeRenderer{}},
		WithFallbackDelay(10*time.Millisecond),
		WithObserver(func(res Result) { results <- res }),
	)
	require.NoError(t, err)

	ctx, _ := recordCtx()
	p := NewPage(newDoc(t, twoBlocks), false)
	stop := a.Attach(ctx, p)
	defer stop()

	res := waitResult(t, results)
	assert.Equal(t, 2, res.Converted)

	p.MarkReady()
	res = waitResult(t, results)
	assert.Equal(t, 0, res.Converted)
	assert.Equal(t, 2, res.Rendered)
}

func TestAttachStop(t *testing.T) {
	results := make(chan Result, 4)
	a, err := New(&fakeEnv{r: &fakeRenderer{}},
		WithFallbackDelay(20*time.Millisecond),
		WithObserver(func(res Result) { results <- res }),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPage(newDoc(t, twoBlocks), false)
	a.Attach(ctx, p)
	cancel()
	p.MarkReady()

	assertNoResult(t, results, 60*time.Millisecond)
}

func TestLoadPageRender(t *testing.T) {
	p, err := LoadPage(strings.NewReader("<html><head></head><body>" + twoBlocks + "</body></html>"))
	require.NoError(t, err)
	assert.False(t, p.IsReady())

	a, err := New(&fakeEnv{r: &fakeRenderer{}}, WithFallbackDelay(time.Hour))
	require.NoError(t, err)
	p.MarkReady()
	ctx, _ := recordCtx()
	a.Attach(ctx, p)()

	var b bytes.Buffer
	require.NoError(t, p.Render(&b))
	assert.Contains(t, b.String(), `<div class="mermaid" id="mermaid-1">graph B</div>`)
	assert.NotContains(t, b.String(), "<pre>")
}
