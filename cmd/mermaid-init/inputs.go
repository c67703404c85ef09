package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// expandInputs resolves each argument as a doublestar pattern. Plain paths
// pass through unchanged. The result is sorted and free of duplicates.
func expandInputs(args []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, arg := range args {
		var matches []string
		if doublestar.ValidatePathPattern(arg) && strings.ContainsAny(arg, "*?[{") {
			m, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("expanding %s: %w", arg, err)
			}
			matches = m
		} else {
			if _, err := os.Stat(arg); err != nil {
				return nil, err
			}
			matches = []string{arg}
		}
		for _, m := range matches {
			if !isSupported(m) || seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func isSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return isMarkdown(path)
}

// outputPath places the result next to the input unless outDir is set.
// HTML inputs get a .mermaid.html suffix so they are never overwritten.
func outputPath(in, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	if !isMarkdown(in) {
		base += ".mermaid"
	}
	dir := filepath.Dir(in)
	if outDir != "" {
		dir = outDir
	}
	return filepath.Join(dir, base+".html")
}
