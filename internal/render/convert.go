package render

import (
	"bytes"
	"html"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Converter turns Markdown into a standalone HTML document.
type Converter interface {
	Name() string
	Convert(markdown string) (string, error)
}

// Renderer names accepted by NewConverter.
const (
	RendererGoldmark     = "goldmark"
	RendererPreformatted = "pre"
)

// Goldmark renders CommonMark with the GitHub extensions, so bare URLs in
// the outline become links.
type Goldmark struct {
	md goldmark.Markdown
}

// NewGoldmark returns a Goldmark converter.
func NewGoldmark() *Goldmark {
	return &Goldmark{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

func (g *Goldmark) Name() string { return RendererGoldmark }

func (g *Goldmark) Convert(markdown string) (string, error) {
	var body bytes.Buffer
	if err := g.md.Convert([]byte(markdown), &body); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("<html><body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body></html>\n")
	return b.String(), nil
}

// Preformatted wraps the escaped Markdown in a pre block. It never fails.
type Preformatted struct{}

func (Preformatted) Name() string { return RendererPreformatted }

func (Preformatted) Convert(markdown string) (string, error) {
	return "<html><body><pre>\n" + html.EscapeString(markdown) + "\n</pre></body></html>\n", nil
}

// fallback tries primary first and degrades to secondary on error.
type fallback struct {
	primary   Converter
	secondary Converter
}

func (f fallback) Name() string { return f.primary.Name() }

func (f fallback) Convert(markdown string) (string, error) {
	out, err := f.primary.Convert(markdown)
	if err == nil {
		return out, nil
	}
	log.Warn().Err(err).Str("renderer", f.primary.Name()).Msg("markdown conversion failed; using preformatted output")
	return f.secondary.Convert(markdown)
}

// NewConverter returns the converter registered under name. Goldmark output
// falls back to preformatted text if conversion fails. Unknown names also
// select the preformatted converter.
func NewConverter(name string) Converter {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", RendererGoldmark, "markdown":
		return fallback{primary: NewGoldmark(), secondary: Preformatted{}}
	case RendererPreformatted, "plain", "text":
		return Preformatted{}
	default:
		log.Warn().Str("renderer", name).Msg("unknown renderer; using preformatted output")
		return Preformatted{}
	}
}
