package catalog

// Link is one outbound link found in a collapsible block of a detail page.
// Href is always absolute.
type Link struct {
	Heading string
	Text    string
	Href    string
}

// LinkGroup is a run of links rendered under a single heading.
type LinkGroup struct {
	Heading string
	Links   []Link
}

// Category is one top-level tradition listed on the index page. Title and URL
// come from the index; Summary and Links are filled from the detail page.
type Category struct {
	Title   string
	URL     string
	Summary string
	// Links keeps extraction order so both grouping views can be derived.
	Links []Link
}

// Groups merges links by heading. Headings appear in order of first
// occurrence and every link with that heading lands in the same group,
// regardless of adjacency.
func (c Category) Groups() []LinkGroup {
	groups := make([]LinkGroup, 0, 8)
	index := make(map[string]int)
	for _, l := range c.Links {
		i, ok := index[l.Heading]
		if !ok {
			i = len(groups)
			index[l.Heading] = i
			groups = append(groups, LinkGroup{Heading: l.Heading})
		}
		groups[i].Links = append(groups[i].Links, l)
	}
	return groups
}

// Runs groups consecutive links sharing a heading. A heading that reappears
// after a different one starts a new group.
func (c Category) Runs() []LinkGroup {
	runs := make([]LinkGroup, 0, 8)
	for i, l := range c.Links {
		if i == 0 || l.Heading != c.Links[i-1].Heading {
			runs = append(runs, LinkGroup{Heading: l.Heading})
		}
		last := &runs[len(runs)-1]
		last.Links = append(last.Links, l)
	}
	return runs
}

// LinkCount returns the total number of links across all groups.
func LinkCount(categories []Category) int {
	n := 0
	for _, c := range categories {
		n += len(c.Links)
	}
	return n
}
