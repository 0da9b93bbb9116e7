package render

import (
	"bytes"
	"html/template"
	"io"

	"github.com/hyperifyio/faithindex/internal/catalog"
)

// Page holds the document-level strings of the interactive HTML page.
type Page struct {
	Title      string `yaml:"title" json:"title"`
	Heading    string `yaml:"heading" json:"heading"`
	Stylesheet string `yaml:"stylesheet" json:"stylesheet"`
	Script     string `yaml:"script" json:"script"`
}

// DefaultPage returns the page settings used when nothing is configured.
func DefaultPage() Page {
	return Page{
		Title:      "BBC Religions Overview",
		Heading:    "BBC Religions: Overview & Teaching Links",
		Stylesheet: "./src/static/main.css",
		Script:     "./src/static/modal.js",
	}
}

// Merge fills empty fields of p from fallback.
func (p Page) Merge(fallback Page) Page {
	if p.Title == "" {
		p.Title = fallback.Title
	}
	if p.Heading == "" {
		p.Heading = fallback.Heading
	}
	if p.Stylesheet == "" {
		p.Stylesheet = fallback.Stylesheet
	}
	if p.Script == "" {
		p.Script = fallback.Script
	}
	return p
}

const footerHTML = template.HTML(`<footer>
  <p>Academic archival project. All original article content and images remain &copy; BBC.</p>
</footer>`)

const modalHTML = template.HTML(`<div id="link-modal" class="modal" aria-hidden="true">
  <div class="modal-content" role="dialog" aria-modal="true">
    <button id="modal-close" aria-label="Close modal">&times;</button>
    <iframe id="modal-frame" src="" loading="lazy"></iframe>
  </div>
</div>`)

const pageSource = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Page.Title}}</title>
  <link rel="stylesheet" href="{{.Page.Stylesheet}}">
</head>
<body>
<header><h1>{{.Page.Heading}}</h1></header>
<nav id="toc">
  <h2>{{.TOCHeading}}</h2>
  <ul>
{{- range .Sections}}
    <li><a href="#{{.ID}}">{{.Title}}</a></li>
{{- end}}
  </ul>
</nav>
<main>
{{- range .Sections}}
<section id="{{.ID}}">
  <h2>{{.Title}}</h2>
{{- if .Summary}}
  <p class="promo">{{.Summary}}</p>
{{- end}}
{{- range .Groups}}
  <details>
    <summary>{{.Heading}}</summary>
    <ul class="links">
{{- range .Links}}
      <li><a href="#" data-url="{{.Href}}" class="modal-link">{{.Text}}</a></li>
{{- end}}
    </ul>
  </details>
{{- end}}
</section>
{{- end}}
</main>
{{.Footer}}
{{.Modal}}
<script src="{{.Page.Script}}"></script>
</body>
</html>
`

var pageTemplate = template.Must(template.New("page").Parse(pageSource))

type section struct {
	ID      string
	Title   string
	Summary string
	Groups  []catalog.LinkGroup
}

type pageData struct {
	Page       Page
	TOCHeading string
	Sections   []section
	Footer     template.HTML
	Modal      template.HTML
}

// Render writes the complete interactive page for categories to w.
//
// Links are grouped by heading: every link sharing a heading lands in one
// disclosure block, ordered by the heading's first appearance. Hrefs go into
// data-url attributes so the page script can open them in the modal frame.
func (p Page) Render(w io.Writer, categories []catalog.Category) error {
	p = p.Merge(DefaultPage())
	ids := Anchors(categories)
	data := pageData{
		Page:       p,
		TOCHeading: TOCHeading,
		Sections:   make([]section, len(categories)),
		Footer:     footerHTML,
		Modal:      modalHTML,
	}
	for i, c := range categories {
		data.Sections[i] = section{ID: ids[i], Title: c.Title, Summary: c.Summary, Groups: c.Groups()}
	}
	return pageTemplate.Execute(w, data)
}

// HTML renders the page with default settings and returns it as a string.
func HTML(categories []catalog.Category) (string, error) {
	var buf bytes.Buffer
	if err := DefaultPage().Render(&buf, categories); err != nil {
		return "", err
	}
	return buf.String(), nil
}
