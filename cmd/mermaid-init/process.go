package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"cdr.dev/slog"
	"oss.terrastruct.com/xdefer"

	"github.com/zbysir/mermaidinit"
	"github.com/zbysir/mermaidinit/internal/config"
	"github.com/zbysir/mermaidinit/internal/log"
	"github.com/zbysir/mermaidinit/pkg/gojahost"
	"github.com/zbysir/mermaidinit/pkg/markdown"
	"github.com/zbysir/mermaidinit/pkg/timetrack"
)

type processor struct {
	cfg    *config.Config
	md     *markdown.Converter
	pool   *gojahost.Pool
	outDir string
	tt     *timetrack.TimeTracker
}

func newProcessor(ctx context.Context, cfg *config.Config, outDir string) (*processor, error) {
	if cfg.Renderer == "" {
		return nil, fmt.Errorf("no renderer configured: set renderer in %s or pass --renderer", config.DefaultFile)
	}
	cache := gojahost.NewProgramCache(4)
	setup := func(ctx context.Context) (*gojahost.Host, error) {
		h, err := gojahost.NewHost(ctx,
			gojahost.WithGlobalName(cfg.GlobalName),
			gojahost.WithProgramCache(cache),
		)
		if err != nil {
			return nil, err
		}
		if err := h.LoadFile(cfg.Renderer); err != nil {
			return nil, err
		}
		return h, nil
	}
	return &processor{
		cfg:    cfg,
		md:     markdown.New(),
		pool:   gojahost.NewPool(ctx, cfg.Concurrency, setup),
		outDir: outDir,
		tt:     &timetrack.TimeTracker{},
	}, nil
}

func (p *processor) Close(ctx context.Context) {
	p.pool.Close(ctx)
}

type outcome struct {
	In     string
	Out    string
	Result mermaidinit.Result
	Err    error
}

// processAll activates every input, at most cfg.Concurrency at a time.
// Outcomes are returned in input order.
func (p *processor) processAll(ctx context.Context, inputs []string) []outcome {
	outs := make([]outcome, len(inputs))
	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in string) {
			defer wg.Done()
			out, res, err := p.processFile(ctx, in)
			outs[i] = outcome{In: in, Out: out, Result: res, Err: err}
		}(i, in)
	}
	wg.Wait()
	return outs
}

func (p *processor) processFile(ctx context.Context, in string) (out string, res mermaidinit.Result, err error) {
	defer xdefer.Errorf(&err, "failed to activate %s", in)
	ctx = log.With(ctx, log.From(ctx).With(slog.F("input", in)))
	defer p.tt.Start(ctx, "activate "+filepath.Base(in))()

	h, err := p.pool.Get(ctx)
	if err != nil {
		return "", res, err
	}
	h.SetContext(ctx)
	defer func() {
		if perr := p.pool.Put(ctx, h); perr != nil {
			log.Warn(ctx, "returning host to pool", slog.Error(perr))
		}
	}()

	var buf bytes.Buffer
	res, err = p.activate(ctx, h, in, &buf)
	if err != nil {
		return "", res, err
	}

	out = outputPath(in, p.outDir)
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", res, err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		return "", res, err
	}
	return out, res, nil
}

// activate loads in as a page, runs one activation pass against env and
// writes the resulting document to w.
func (p *processor) activate(ctx context.Context, env mermaidinit.Environment, in string, w io.Writer) (mermaidinit.Result, error) {
	src, err := os.ReadFile(in)
	if err != nil {
		return mermaidinit.Result{}, err
	}
	if isMarkdown(in) {
		page, err := p.md.Convert(src)
		if err != nil {
			return mermaidinit.Result{}, err
		}
		src = page.HTML
	}

	page, err := mermaidinit.LoadPage(bytes.NewReader(src))
	if err != nil {
		return mermaidinit.Result{}, err
	}

	var (
		mu  sync.Mutex
		res mermaidinit.Result
	)
	ops := append(p.cfg.ActivatorOptions(),
		mermaidinit.WithTimeTracker(p.tt),
		mermaidinit.WithObserver(func(r mermaidinit.Result) {
			mu.Lock()
			res = r
			mu.Unlock()
		}),
	)
	act, err := mermaidinit.New(env, ops...)
	if err != nil {
		return mermaidinit.Result{}, err
	}

	page.MarkReady()
	stop := act.Attach(ctx, page)
	stop()

	mu.Lock()
	final := res
	mu.Unlock()
	if final.RendererMissing {
		return final, mermaidinit.ErrRendererMissing
	}
	if err := page.Render(w); err != nil {
		return final, err
	}
	return final, nil
}
