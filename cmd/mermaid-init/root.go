package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zbysir/mermaidinit/internal/config"
	"github.com/zbysir/mermaidinit/internal/log"
)

type rootOpts struct {
	cfgFile  string
	logLevel string
	renderer string
}

func newRootCmd() *cobra.Command {
	o := &rootOpts{}
	cmd := &cobra.Command{
		Use:   "mermaid-init",
		Short: "Turn mermaid code blocks in HTML and Markdown into rendered diagrams",
		Long: `mermaid-init finds code blocks marked as mermaid diagrams, replaces them
with diagram containers and hands the containers to a renderer library
loaded into an embedded JavaScript runtime.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&o.cfgFile, "config", config.DefaultFile, "config file path")
	cmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&o.renderer, "renderer", "", "renderer library script (.js, .mjs or .ts)")

	cmd.AddCommand(newActivateCmd(o))
	cmd.AddCommand(newScanCmd(o))
	cmd.AddCommand(newWatchCmd(o))
	return cmd
}

// setup loads the configuration, applies flag overrides and returns a
// context carrying a logger at the configured level.
func (o *rootOpts) setup(cmd *cobra.Command) (context.Context, *config.Config, error) {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.renderer != "" {
		cfg.Renderer = o.renderer
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.Leveled(ctx, log.ParseLevel(cfg.LogLevel))
	return ctx, cfg, nil
}
