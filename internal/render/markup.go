package render

import (
	"bytes"

	"github.com/nao1215/markdown"

	"github.com/hyperifyio/faithindex/internal/catalog"
)

// TOCHeading labels the table of contents in both output formats.
const TOCHeading = "Table of Contents"

// Markup renders the intermediate Markdown outline: a table of contents, a
// rule, then one nested bullet block per category.
//
// Links are grouped by adjacency here: a heading that reappears after a
// different one is emitted again as a separate bold line. The HTML page
// groups by heading instead. The two policies differ on purpose until
// someone confirms which one is intended.
func Markup(categories []catalog.Category) string {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	md.H2(TOCHeading)
	titles := make([]string, 0, len(categories))
	for _, c := range categories {
		titles = append(titles, c.Title)
	}
	if len(titles) > 0 {
		md.BulletList(titles...)
	}
	md.PlainText("")
	md.HorizontalRule()
	md.PlainText("")

	for _, c := range categories {
		md.BulletList(c.Title)
		if c.Summary != "" {
			md.PlainText("  - " + markdown.Italic(c.Summary))
		}
		for _, run := range c.Runs() {
			md.PlainText("  - " + markdown.Bold(run.Heading))
			for _, l := range run.Links {
				md.PlainText("    - " + l.Text + " (" + l.Href + ")")
			}
		}
		md.PlainText("")
	}
	return md.String()
}
