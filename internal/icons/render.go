package icons

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Renderer turns an icon key into markup.
//
// The returned markup must contain the key verbatim at least once; Compile
// splits the markup around the first occurrence.
type Renderer interface {
	Render(key string) string
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(key string) string

// Render implements Renderer.
func (f RenderFunc) Render(key string) string { return f(key) }

// Defaults for ImageRenderer.
const (
	DefaultBaseURL   = "/filter/skypeicons/pix"
	DefaultExtension = ".gif"
	DefaultClass     = "emoticon"
)

// ImageRenderer renders an <img> element per icon:
//
//	<img class="emoticon" alt="LABEL" title="LABEL" src="BASE/KEY.EXT"/>
type ImageRenderer struct {
	BaseURL   string
	Extension string
	Class     string
	Labels    LabelSource
}

// Src returns the image URL for key.
func (r ImageRenderer) Src(key string) string {
	base := r.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	return strings.TrimRight(base, "/") + "/" + key + r.Extension
}

// Render implements Renderer.
func (r ImageRenderer) Render(key string) string {
	label := LabelFor(r.Labels, key)

	class := r.Class
	if class == "" {
		class = DefaultClass
	}

	node := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Img,
		Data:     atom.Img.String(),
		Attr: []html.Attribute{
			{Key: "class", Val: class},
			{Key: "alt", Val: label},
			{Key: "title", Val: label},
			{Key: "src", Val: r.Src(key)},
		},
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return ""
	}

	return buf.String()
}

// TemplateRenderer fills a user supplied template. Recognised placeholders
// are {key}, {label} and {src}; {label} is HTML-escaped.
type TemplateRenderer struct {
	Template string
	Image    ImageRenderer
}

// Render implements Renderer.
func (r TemplateRenderer) Render(key string) string {
	return strings.NewReplacer(
		"{key}", key,
		"{label}", html.EscapeString(LabelFor(r.Image.Labels, key)),
		"{src}", r.Image.Src(key),
	).Replace(r.Template)
}
