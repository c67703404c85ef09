package main

import (
	"fmt"

	"cdr.dev/slog"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/zbysir/mermaidinit/internal/log"
)

func newActivateCmd(o *rootOpts) *cobra.Command {
	var (
		outDir string
		open   bool
	)
	cmd := &cobra.Command{
		Use:   "activate <input>...",
		Short: "Render the diagrams of HTML or Markdown files",
		Long: `Each input is an HTML or Markdown file, or a glob such as docs/**/*.md.
Mermaid code blocks are converted into diagram containers and rendered by
the configured renderer library. Markdown inputs are written as <name>.html,
HTML inputs as <name>.mermaid.html.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := o.setup(cmd)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = cfg.OutDir
			}

			inputs, err := expandInputs(args)
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				return fmt.Errorf("no HTML or Markdown files match %v", args)
			}

			p, err := newProcessor(ctx, cfg, outDir)
			if err != nil {
				return err
			}
			defer p.Close(ctx)

			var failed int
			for _, out := range p.processAll(ctx, inputs) {
				if out.Err != nil {
					failed++
					log.Error(ctx, "activation failed", slog.F("input", out.In), slog.Error(out.Err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d diagrams, %d failed)\n",
					out.In, out.Out, out.Result.Converted, len(out.Result.Failed))
				if open {
					if err := browser.OpenFile(out.Out); err != nil {
						log.Warn(ctx, "opening browser", slog.Error(err))
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d inputs failed", failed, len(inputs))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory, defaults to next to each input")
	cmd.Flags().BoolVar(&open, "open", false, "open each result in the default browser")
	return cmd
}
