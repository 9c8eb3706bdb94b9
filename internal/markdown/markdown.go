// Package markdown renders markdown bodies to XHTML-compatible markup for
// packaging. Rendering is deliberately minimal: heading ids are generated so
// pages are fragment-addressable, and raw HTML passes through unchanged
// (sanitization of ids and fragments happens downstream).
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithXHTML(), html.WithUnsafe()),
)

// Render converts a markdown body to markup.
func Render(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
