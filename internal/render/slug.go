package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperifyio/faithindex/internal/catalog"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives an in-page anchor from a title: lowercase, every run of
// characters outside [a-z0-9] collapsed to one hyphen, hyphens trimmed from
// both ends. Titles with no usable characters become "section".
func Slug(title string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "section"
	}
	return s
}

// Anchors returns one unique anchor per category, in order. Colliding slugs
// get a numeric suffix ("-2", "-3", ...).
func Anchors(categories []catalog.Category) []string {
	out := make([]string, len(categories))
	seen := make(map[string]bool, len(categories))
	for i, c := range categories {
		base := Slug(c.Title)
		id := base
		for n := 2; seen[id]; n++ {
			id = base + "-" + strconv.Itoa(n)
		}
		seen[id] = true
		out[i] = id
	}
	return out
}
