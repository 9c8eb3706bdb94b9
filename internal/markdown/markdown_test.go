package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBasics(t *testing.T) {
	out, err := Render([]byte("# Title\n\nSome *emphasis* here."))
	require.NoError(t, err)
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<em>emphasis</em>")
}

func TestRenderHeadingIDs(t *testing.T) {
	out, err := Render([]byte("## Getting Started"))
	require.NoError(t, err)
	assert.Contains(t, out, `id="getting-started"`)
}

func TestRenderXHTMLVoidElements(t *testing.T) {
	out, err := Render([]byte("one\n\n---\n\ntwo"))
	require.NoError(t, err)
	assert.Contains(t, out, "<hr />")
}

func TestRenderGFMTable(t *testing.T) {
	out, err := Render([]byte("| a | b |\n|---|---|\n| 1 | 2 |"))
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
}
