package gojahost

import (
	"context"
	"strings"

	"cdr.dev/slog"
	"github.com/dop251/goja"

	"github.com/zbysir/mermaidinit/internal/log"
)

// Printer receives the renderer's console output.
type Printer interface {
	Debug(string)
	Log(string)
	Warn(string)
	Error(string)
}

// logPrinter forwards console output to the logger carried by the host's
// current context.
type logPrinter struct {
	h *Host
}

func (p logPrinter) ctx() context.Context {
	ctx := p.h.ctx
	return log.With(ctx, log.From(ctx).Named("console").With(slog.F("source", "renderer")))
}

func (p logPrinter) Debug(s string) { log.Debug(p.ctx(), s) }

func (p logPrinter) Log(s string) { log.Info(p.ctx(), s) }

func (p logPrinter) Warn(s string) { log.Warn(p.ctx(), s) }

func (p logPrinter) Error(s string) { log.Error(p.ctx(), s) }

func format(call goja.FunctionCall) string {
	parts := make([]string, 0, len(call.Arguments))
	for _, a := range call.Arguments {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " ")
}

func consoleFunc(p func(string)) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		p(format(call))
		return goja.Undefined()
	}
}

func enableConsole(vm *goja.Runtime, printer Printer) error {
	return vm.Set("console", map[string]interface{}{
		"debug": consoleFunc(printer.Debug),
		"log":   consoleFunc(printer.Log),
		"info":  consoleFunc(printer.Log),
		"warn":  consoleFunc(printer.Warn),
		"error": consoleFunc(printer.Error),
	})
}
