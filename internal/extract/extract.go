package extract

import (
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/hyperifyio/faithindex/internal/catalog"
	"github.com/hyperifyio/faithindex/internal/fetch"
	"github.com/hyperifyio/faithindex/internal/selector"
)

// LayoutExtractor runs the category and detail passes using the selectors of
// a Layout. The zero value uses DefaultLayout.
type LayoutExtractor struct {
	Layout Layout
}

// New returns an extractor for layout, filling unset selectors from
// DefaultLayout.
func New(layout Layout) *LayoutExtractor {
	return &LayoutExtractor{Layout: layout.Merge(DefaultLayout())}
}

func (e *LayoutExtractor) layout() Layout {
	if e == nil {
		return DefaultLayout()
	}
	return e.Layout.Merge(DefaultLayout())
}

// Categories returns one Category per index anchor, in document order. Anchors
// with no text or no resolvable href are skipped.
func (e *LayoutExtractor) Categories(doc *fetch.Document) []catalog.Category {
	if doc == nil || doc.Root == nil {
		return nil
	}
	l := e.layout()
	base := doc.URL.String()
	anchors := l.CategoryLinks.All(doc.Root)
	out := make([]catalog.Category, 0, len(anchors))
	for _, a := range anchors {
		title := cleanText(a)
		if title == "" {
			continue
		}
		href, ok := selector.Attr(a, "href")
		if !ok {
			continue
		}
		abs, err := ResolveHref(base, href)
		if err != nil {
			log.Debug().Err(err).Str("href", href).Msg("skipping index anchor")
			continue
		}
		out = append(out, catalog.Category{Title: title, URL: abs})
	}
	return out
}

// Details returns the promo summary and the accordion links of a detail page.
// Links are resolved against baseURL; every anchor in an accordion's content
// is kept, and one without an href resolves to baseURL.
func (e *LayoutExtractor) Details(doc *fetch.Document, baseURL string) (string, []catalog.Link) {
	if doc == nil || doc.Root == nil {
		return "", nil
	}
	l := e.layout()

	paras := make([]string, 0, 4)
	for _, p := range l.PromoParagraphs.All(doc.Root) {
		paras = append(paras, cleanText(p))
	}
	// Two spaces keep the paragraphs on one Markdown line with a visible gap.
	summary := strings.Join(paras, "  ")

	links := make([]catalog.Link, 0, 32)
	for _, block := range l.Accordions.All(doc.Root) {
		h := l.AccordionHeading.First(block)
		if h == nil {
			continue
		}
		heading := cleanText(h)
		for _, a := range l.AccordionLinks.All(block) {
			// A missing or blank href points back at the page itself.
			href, _ := selector.Attr(a, "href")
			abs, err := resolveOrBase(baseURL, href)
			if err != nil {
				log.Debug().Err(err).Str("href", href).Msg("skipping accordion anchor")
				continue
			}
			links = append(links, catalog.Link{Heading: heading, Text: cleanText(a), Href: abs})
		}
	}
	return summary, links
}

// Fill runs the detail pass for c against its already fetched page.
func (e *LayoutExtractor) Fill(doc *fetch.Document, c *catalog.Category) {
	c.Summary, c.Links = e.Details(doc, c.URL)
}

// cleanText returns the repaired, whitespace-collapsed text of n.
func cleanText(n *html.Node) string {
	return collapseSpaces(Repair(selector.Text(n)))
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}
