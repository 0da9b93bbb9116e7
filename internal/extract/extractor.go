package extract

import (
	"github.com/hyperifyio/faithindex/internal/catalog"
	"github.com/hyperifyio/faithindex/internal/fetch"
)

// Extractor defines the two extraction passes the pipeline runs.
// Implementations can target a different markup without changing callers.
type Extractor interface {
	// Categories lists the traditions found on the index page. Summary and
	// Links of the returned categories are empty.
	Categories(doc *fetch.Document) []catalog.Category
	// Details extracts the summary and the heading-tagged links of one
	// detail page, resolving hrefs against baseURL.
	Details(doc *fetch.Document, baseURL string) (string, []catalog.Link)
}

var _ Extractor = (*LayoutExtractor)(nil)
