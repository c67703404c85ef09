package gojahost

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbysir/mermaidinit"
)

func TestFieldMapping(t *testing.T) {
	vm := goja.New()
	vm.SetFieldNameMapper(TagFieldNameMapper("json", true))

	type untagged struct {
		FontFamily string
		Hidden     string `json:"-"`
	}

	require.NoError(t, vm.Set("cfg", mermaidinit.DefaultRendererConfig))
	require.NoError(t, vm.Set("raw", untagged{FontFamily: "mono", Hidden: "x"}))

	cases := map[string]interface{}{
		"cfg.startOnLoad":     false,
		"cfg.securityLevel":   "loose",
		"cfg.fontFamily":      "arial, sans-serif",
		"raw.fontFamily":      "mono",
		"typeof raw.hidden":   "undefined",
		"typeof cfg.Theme":    "undefined",
		"typeof cfg.logLevel": "string",
	}
	for code, want := range cases {
		v, err := vm.RunString(code)
		require.NoError(t, err, code)
		assert.Equal(t, want, v.Export(), code)
	}
}
