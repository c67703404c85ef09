package mermaidinit

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Page is a document together with its "structure ready" signal.
// Every access to the document goes through Do, so passes never overlap.
type Page struct {
	mu    sync.Mutex
	doc   *goquery.Document
	ready chan struct{}
	once  sync.Once
}

func NewPage(doc *goquery.Document, ready bool) *Page {
	p := &Page{doc: doc, ready: make(chan struct{})}
	if ready {
		p.MarkReady()
	}
	return p
}

// LoadPage parses r into a page that is not ready yet.
func LoadPage(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return NewPage(doc, false), nil
}

func (p *Page) MarkReady() {
	p.once.Do(func() { close(p.ready) })
}

func (p *Page) Ready() <-chan struct{} {
	return p.ready
}

func (p *Page) IsReady() bool {
	select {
	case <-p.ready:
		return true
	default:
		return false
	}
}

func (p *Page) Do(f func(doc *goquery.Document)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f(p.doc)
}

// Render writes the current document as HTML.
func (p *Page) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return html.Render(w, p.doc.Get(0))
}

// Attach arranges for Initialize to run on p at least once: immediately if the
// page is ready, else when it becomes ready, and again after the fallback
// delay. stop cancels whatever has not fired yet, as does cancelling ctx.
func (a *Activator) Attach(ctx context.Context, p *Page) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	run := func() {
		if ctx.Err() != nil {
			return
		}
		p.Do(func(doc *goquery.Document) {
			a.Initialize(ctx, doc)
		})
	}

	if p.IsReady() {
		run()
	} else {
		go func() {
			select {
			case <-p.Ready():
				run()
			case <-ctx.Done():
			}
		}()
	}

	t := time.AfterFunc(a.fallbackDelay, run)
	return func() {
		t.Stop()
		cancel()
	}
}
