package mermaidinit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cdr.dev/slog"
	"github.com/PuerkitoBio/goquery"

	"github.com/zbysir/mermaidinit/internal/log"
	"github.com/zbysir/mermaidinit/pkg/timetrack"
)

// DefaultFallbackDelay is how long Attach waits before its second trigger.
const DefaultFallbackDelay = 500 * time.Millisecond

// DefaultRendererName is the global the renderer is published under.
const DefaultRendererName = "mermaid"

var ErrRendererMissing = errors.New("renderer library not loaded")

// Activator turns diagram source blocks into renderer containers and asks the
// renderer to draw them. It keeps no state between passes: everything it
// leaves behind lives in the document.
type Activator struct {
	env           Environment
	name          string
	config        RendererConfig
	extraCSS      string
	fallbackDelay time.Duration
	tt            *timetrack.TimeTracker
	observers     []func(Result)
}

type Option interface {
	apply(a *Activator)
}

type OptionFunc func(a *Activator)

func (o OptionFunc) apply(a *Activator) {
	o(a)
}

func WithRendererConfig(c RendererConfig) Option {
	return OptionFunc(func(a *Activator) {
		a.config = c
	})
}

// WithExtraCSS appends css to the injected stylesheet.
func WithExtraCSS(css string) Option {
	return OptionFunc(func(a *Activator) {
		a.extraCSS = css
	})
}

func WithFallbackDelay(d time.Duration) Option {
	return OptionFunc(func(a *Activator) {
		a.fallbackDelay = d
	})
}

func WithRendererName(name string) Option {
	return OptionFunc(func(a *Activator) {
		a.name = name
	})
}

func WithTimeTracker(tt *timetrack.TimeTracker) Option {
	return OptionFunc(func(a *Activator) {
		a.tt = tt
	})
}

// WithObserver registers f to be called with the outcome of every pass.
func WithObserver(f func(Result)) Option {
	return OptionFunc(func(a *Activator) {
		a.observers = append(a.observers, f)
	})
}

func New(env Environment, ops ...Option) (*Activator, error) {
	a := &Activator{
		env:           env,
		name:          DefaultRendererName,
		config:        DefaultRendererConfig,
		fallbackDelay: DefaultFallbackDelay,
	}
	for _, o := range ops {
		o.apply(a)
	}
	if a.extraCSS != "" {
		if err := ValidateCSS(a.extraCSS); err != nil {
			return nil, fmt.Errorf("extra css: %w", err)
		}
	}
	return a, nil
}

// Result summarises one pass.
type Result struct {
	Found     int
	Converted int
	Failed    []*BlockError
	// Rendered is the number of containers handed to the renderer.
	Rendered        int
	RendererMissing bool
}

// Initialize runs one activation pass over doc. It is safe to call again on
// the same document: converted blocks are no longer matched and the
// stylesheet is only injected once.
func (a *Activator) Initialize(ctx context.Context, doc *goquery.Document) (res Result) {
	defer a.tt.Start(ctx, "initialize")()
	defer func() {
		for _, f := range a.observers {
			f(res)
		}
	}()

	EnsureStyle(doc, a.extraCSS)
	log.Info(ctx, "starting initialization")

	r, ok := a.lookup()
	if !ok {
		var globals []string
		if a.env != nil {
			globals = matchGlobals(a.env.Globals(), a.name)
		}
		log.Error(ctx, ErrRendererMissing.Error(),
			slog.F("renderer", a.name),
			slog.F("available_globals", globals),
		)
		res.RendererMissing = true
		return res
	}

	version := r.Version()
	if version == "" {
		version = "unknown"
	}
	log.Info(ctx, "renderer library loaded", slog.F("version", version))

	end := a.tt.Start(ctx, "convert")
	blocks := Discover(doc)
	res.Found = blocks.Length()
	log.Info(ctx, "found code blocks with mermaid class", slog.F("count", res.Found))
	if res.Found == 0 {
		logCodeBlocks(ctx, doc)
	}

	root := doc.Get(0)
	blocks.Each(func(i int, s *goquery.Selection) {
		log.Info(ctx, "processing block", slog.F("ordinal", i), slog.F("content", preview(strings.TrimSpace(s.Text()))+"..."))
		if err := convert(root, i, s); err != nil {
			var be *BlockError
			if !errors.As(err, &be) {
				be = &BlockError{Ordinal: i, Err: err}
			}
			res.Failed = append(res.Failed, be)
			log.Error(ctx, "converting block", slog.F("ordinal", i), slog.Error(be.Err))
			return
		}
		res.Converted++
		log.Info(ctx, "converted block", slog.F("ordinal", i))
	})
	log.Info(ctx, "converted blocks to containers", slog.F("converted", res.Converted))
	end()

	log.Info(ctx, "initializing renderer")
	if err := r.Initialize(a.config); err != nil {
		log.Error(ctx, "initializing renderer", slog.Error(err))
	}

	containers := doc.Find(ContainerSelector)
	res.Rendered = containers.Length()
	log.Info(ctx, "found containers to render", slog.F("count", res.Rendered))
	if res.Rendered == 0 {
		return res
	}

	r.Run(containers).Then(func() {
		log.Info(ctx, "all diagrams rendered")
	}, func(err error) {
		log.Error(ctx, "rendering diagrams", slog.Error(err))
	})
	return res
}

func (a *Activator) lookup() (Renderer, bool) {
	if a.env == nil {
		return nil, false
	}
	return a.env.Lookup(a.name)
}
