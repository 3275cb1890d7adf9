// Package render turns text in one of the filter's formats into HTML, the
// way a content pipeline formats text before filters run.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Format names understood by ToHTML.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatMoodle   = "moodle"
	FormatPlain    = "plain"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	// Raw HTML is kept; sanitizing is a separate step.
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// ToHTML renders src according to format. HTML and unknown formats are
// returned unchanged.
func ToHTML(format, src string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatMarkdown:
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(src), &buf); err != nil {
			return "", fmt.Errorf("rendering markdown: %w", err)
		}

		return buf.String(), nil
	case FormatMoodle:
		return paragraphs(src, false), nil
	case FormatPlain:
		return paragraphs(src, true), nil
	default:
		return src, nil
	}
}

// paragraphs wraps blank-line separated blocks in <p> and turns single
// newlines into <br />. Plain text is escaped first; moodle text may carry
// inline HTML and is not.
func paragraphs(src string, escape bool) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")

	var b strings.Builder

	for _, block := range strings.Split(src, "\n\n") {
		block = strings.Trim(block, "\n")
		if strings.TrimSpace(block) == "" {
			continue
		}

		if escape {
			block = html.EscapeString(block)
		}

		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(block, "\n", "<br />"))
		b.WriteString("</p>\n")
	}

	return b.String()
}
