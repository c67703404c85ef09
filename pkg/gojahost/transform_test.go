package gojahost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform(t *testing.T) {
	x := NewEsBuildTransform("mermaid", false)

	t.Run("js", func(t *testing.T) {
		in := []byte(`var mermaid = {};`)
		out, err := x.Transform("mermaid.min.js", in)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("mjs", func(t *testing.T) {
		out, err := x.Transform("mermaid.esm.mjs", []byte(`const m = { version: "1" }; export default m;`))
		require.NoError(t, err)
		assert.Contains(t, string(out), "var mermaid = ")
		t.Logf("%s", out)
	})

	t.Run("ts", func(t *testing.T) {
		out, err := x.Transform("renderer.ts", []byte(`export const version: string = "1";`))
		require.NoError(t, err)
		assert.NotContains(t, string(out), ": string")
	})

	t.Run("error", func(t *testing.T) {
		_, err := x.Transform("broken.mjs", []byte(`export default {`))
		assert.Error(t, err)
	})
}
