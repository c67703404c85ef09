package gojahost

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Transformer rewrites a renderer script into something goja can run.
type Transformer interface {
	Transform(filePath string, code []byte) (out []byte, err error)
}

// EsBuildTransform bundles ES modules and TypeScript sources into an IIFE
// that publishes the module under GlobalName. Plain .js passes through.
type EsBuildTransform struct {
	GlobalName string
	Minify     bool
}

func NewEsBuildTransform(globalName string, minify bool) *EsBuildTransform {
	return &EsBuildTransform{GlobalName: globalName, Minify: minify}
}

var extensionToLoader = map[string]api.Loader{
	".mjs": api.LoaderJS,
	".ts":  api.LoaderTS,
	".tsx": api.LoaderTSX,
}

// NeedsTransform reports whether filePath is rewritten by Transform.
func NeedsTransform(filePath string) bool {
	_, ok := extensionToLoader[filepath.Ext(filePath)]
	return ok
}

func (e *EsBuildTransform) Transform(filePath string, code []byte) ([]byte, error) {
	loader, ok := extensionToLoader[filepath.Ext(filePath)]
	if !ok {
		return code, nil
	}

	result := api.Transform(string(code), api.TransformOptions{
		Loader:            loader,
		Target:            api.ES2017,
		Format:            api.FormatIIFE,
		GlobalName:        e.GlobalName,
		Sourcefile:        filepath.Base(filePath),
		MinifyIdentifiers: e.Minify,
		MinifySyntax:      e.Minify,
		MinifyWhitespace:  e.Minify,
	})

	if len(result.Errors) != 0 {
		m := result.Errors[0]
		if m.Location == nil {
			return nil, fmt.Errorf("%v: %v", filePath, m.Text)
		}
		return nil, fmt.Errorf("%v: (%v:%v) \n%v\n%v^ %v", filePath, m.Location.Line, m.Location.Column, m.Location.LineText, strings.Repeat(" ", m.Location.Column), m.Text)
	}
	return result.Code, nil
}
