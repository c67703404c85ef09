package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"cdr.dev/slog"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/zbysir/mermaidinit/internal/log"
)

// debounce collapses the burst of events editors emit on save.
const debounce = 100 * time.Millisecond

func newWatchCmd(o *rootOpts) *cobra.Command {
	var (
		outDir string
		open   bool
	)
	cmd := &cobra.Command{
		Use:   "watch <input>",
		Short: "Re-activate a file every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := o.setup(cmd)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = cfg.OutDir
			}
			ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			p, err := newProcessor(ctx, cfg, outDir)
			if err != nil {
				return err
			}
			defer p.Close(ctx)

			w := &watcher{p: p, input: args[0], report: func(out outcome) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d diagrams)\n", out.In, out.Out, out.Result.Converted)
			}}
			if open {
				w.opened = func(path string) {
					if err := browser.OpenFile(path); err != nil {
						log.Warn(ctx, "opening browser", slog.Error(err))
					}
				}
			}
			return w.run(ctx)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory, defaults to next to the input")
	cmd.Flags().BoolVar(&open, "open", false, "open the result in the default browser after the first run")
	return cmd
}

type watcher struct {
	p      *processor
	input  string
	report func(outcome)
	// opened is called once with the first successful output
	opened func(path string)
}

func (w *watcher) run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	// Watch the directory rather than the file: editors that save by rename
	// drop a watch placed on the file itself.
	abs, err := filepath.Abs(w.input)
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	w.once(ctx)
	log.Info(ctx, "watching for changes", slog.F("input", w.input))

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			timer = time.After(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn(ctx, "watch error", slog.Error(err))
		case <-timer:
			timer = nil
			w.once(ctx)
		}
	}
}

func (w *watcher) once(ctx context.Context) {
	out, res, err := w.p.processFile(ctx, w.input)
	if err != nil {
		log.Error(ctx, "activation failed", slog.Error(err))
		return
	}
	if w.report != nil {
		w.report(outcome{In: w.input, Out: out, Result: res})
	}
	if w.opened != nil {
		w.opened(out)
		w.opened = nil
	}
}
