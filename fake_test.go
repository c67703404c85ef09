package mermaidinit

import (
	"context"
	"strings"
	"sync"
	"testing"

	"cdr.dev/slog"
	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/zbysir/mermaidinit/internal/log"
)

type fakeRenderer struct {
	mu      sync.Mutex
	version string
	initErr error
	pending Pending
	configs []RendererConfig
	runs    [][]string
}

func (f *fakeRenderer) Version() string { return f.version }

func (f *fakeRenderer) Initialize(cfg RendererConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs = append(f.configs, cfg)
	return f.initErr
}

func (f *fakeRenderer) Run(nodes *goquery.Selection) Pending {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	nodes.Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		ids = append(ids, id)
	})
	f.runs = append(f.runs, ids)
	if f.pending == nil {
		return Resolved{}
	}
	return f.pending
}

func (f *fakeRenderer) Runs() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.runs...)
}

type fakeEnv struct {
	r       Renderer
	globals []string
}

func (e *fakeEnv) Lookup(name string) (Renderer, bool) {
	if e.r == nil || name != DefaultRendererName {
		return nil, false
	}
	return e.r, true
}

func (e *fakeEnv) Globals() []string { return e.globals }

// manualPending never settles until settle is called.
type manualPending struct {
	onSuccess func()
	onFailure func(error)
}

func (m *manualPending) Then(onSuccess func(), onFailure func(error)) {
	m.onSuccess, m.onFailure = onSuccess, onFailure
}

func (m *manualPending) settle(err error) {
	if err != nil {
		m.onFailure(err)
		return
	}
	m.onSuccess()
}

func newDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><head></head><body>" + body + "</body></html>"))
	require.NoError(t, err)
	return doc
}

func recordCtx() (context.Context, *log.Recorder) {
	rec := &log.Recorder{}
	return log.With(context.Background(), slog.Make(rec)), rec
}
