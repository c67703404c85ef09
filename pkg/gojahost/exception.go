package gojahost

import (
	"errors"
	"strings"

	"github.com/dop251/goja"
)

// Exception is a JavaScript error with native frames and bytecode offsets
// stripped from its stack.
type Exception struct {
	Text   string
	Stacks []string
}

func (e *Exception) Error() string {
	var b strings.Builder
	b.WriteString(e.Text)
	for _, s := range e.Stacks {
		// frames of Go functions exposed to the runtime
		if strings.HasSuffix(s, "(native)") {
			continue
		}

		// "at f (file.js:1:2(34))" -> "at f (file.js:1:2)"
		if strings.HasSuffix(s, "))") {
			i := strings.LastIndex(s, "(")
			s = s[:i] + s[len(s)-1:]
		} else if strings.HasSuffix(s, ")") {
			i := strings.LastIndex(s, "(")
			s = s[:i]
		}

		b.WriteString("\n\t")
		b.WriteString(strings.TrimSpace(s))
	}

	return b.String()
}

func parseException(s string) error {
	var text strings.Builder
	stack := make([]string, 0)
	for _, line := range strings.Split(s, "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "at") {
			stack = append(stack, line)
			continue
		}
		if text.Len() != 0 {
			text.WriteByte('\n')
		}
		text.WriteString(line)
	}
	return &Exception{
		Text:   text.String(),
		Stacks: stack,
	}
}

// PrettifyException condenses *goja.Exception values. Other errors pass
// through unchanged.
func PrettifyException(err error) error {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return parseException(ex.String())
	}
	return err
}

// valueError turns a rejection reason into an error.
func valueError(v goja.Value) error {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return errors.New("rejected without a reason")
	}
	if err, ok := v.Export().(error); ok {
		return err
	}
	return errors.New(v.String())
}
