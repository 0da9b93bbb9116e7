package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/faithindex/internal/catalog"
	"github.com/hyperifyio/faithindex/internal/fetch"
	"github.com/hyperifyio/faithindex/internal/selector"
)

const indexHTML = `<!doctype html>
<html><body>
<div id="prg-wrapper-featured">
  <div>masthead</div>
  <div>
    <div>intro</div>
    <div><div><div>
      <ul>
        <li><h3><a href="judaism/">Judaism</a></h3></li>
        <li><h3><a href="/religion/religions/candomble/">CandomblÃ©</a></h3></li>
        <li><h3><a href="decor/"><img src="x.png"></a></h3></li>
        <li><h3><a>No href</a></h3></li>
      </ul>
      <ul>
        <li><h3><a href="https://other.example/sikhism/">
            Sikhism
        </a></h3></li>
      </ul>
    </div></div></div>
  </div>
</div>
</body></html>`

const detailHTML = `<!doctype html>
<html><body>
<div id="prg-wrapper-featured">
  <div class="top_promo"><div class="content">
    <p>Judaism is a monotheistic religion.</p>
    <p>It is over 3500 years old.</p>
  </div></div>
  <div class="accordion"><h2>Beliefs</h2>
    <div class="accordion_content"><ul>
      <li><a href="beliefs/god.shtml">God</a></li>
      <li><a href="/religion/religions/judaism/beliefs/torah.shtml">Torah</a></li>
    </ul></div>
  </div>
  <div class="accordion"><p>broken block without a heading</p>
    <div class="accordion_content"><a href="lost.shtml">Lost</a></div>
  </div>
  <div class="accordion"><h2>Holy days</h2>
    <div class="accordion_content"><a href="holydays/pesach.shtml">Pesach</a><a>no href</a></div>
  </div>
</div>
</body></html>`

func mustParse(t *testing.T, rawURL, body string) *fetch.Document {
	t.Helper()
	doc, err := fetch.Parse(rawURL, []byte(body))
	require.NoError(t, err)
	return doc
}

func TestCategories_DefaultLayout(t *testing.T) {
	doc := mustParse(t, "https://www.bbc.co.uk/religion/religions/", indexHTML)
	cats := New(Layout{}).Categories(doc)

	require.Len(t, cats, 3)
	assert.Equal(t, catalog.Category{Title: "Judaism", URL: "https://www.bbc.co.uk/religion/religions/judaism/"}, cats[0])
	assert.Equal(t, "Candomblé", cats[1].Title)
	assert.Equal(t, "https://www.bbc.co.uk/religion/religions/candomble/", cats[1].URL)
	assert.Equal(t, "Sikhism", cats[2].Title)
	assert.Equal(t, "https://other.example/sikhism/", cats[2].URL)
	for _, c := range cats {
		assert.Empty(t, c.Summary)
		assert.Empty(t, c.Links)
	}
}

func TestCategories_NoAnchors(t *testing.T) {
	doc := mustParse(t, "https://www.bbc.co.uk/religion/religions/", `<html><body><p>nothing here</p></body></html>`)
	cats := New(Layout{}).Categories(doc)
	assert.NotNil(t, cats)
	assert.Empty(t, cats)
}

func TestCategories_NilDocument(t *testing.T) {
	var e *LayoutExtractor
	assert.Empty(t, e.Categories(nil))
	summary, links := e.Details(nil, "https://x/")
	assert.Empty(t, summary)
	assert.Empty(t, links)
}

func TestDetails_SummaryAndLinks(t *testing.T) {
	base := "https://www.bbc.co.uk/religion/religions/judaism/"
	doc := mustParse(t, base, detailHTML)
	summary, links := New(Layout{}).Details(doc, base)

	assert.Equal(t, "Judaism is a monotheistic religion.  It is over 3500 years old.", summary)
	require.Len(t, links, 4)
	assert.Equal(t, catalog.Link{Heading: "Beliefs", Text: "God", Href: base + "beliefs/god.shtml"}, links[0])
	assert.Equal(t, "https://www.bbc.co.uk/religion/religions/judaism/beliefs/torah.shtml", links[1].Href)
	assert.Equal(t, "Holy days", links[2].Heading)
	assert.Equal(t, base+"holydays/pesach.shtml", links[2].Href)
	assert.Equal(t, catalog.Link{Heading: "Holy days", Text: "no href", Href: base}, links[3])
}

func TestDetails_AnchorWithoutHrefResolvesToPage(t *testing.T) {
	base := "https://www.bbc.co.uk/religion/religions/judaism/"
	doc := mustParse(t, base, `<div id="prg-wrapper-featured"><div class="accordion"><h2>Texts</h2>
<div class="accordion_content"><a href="god.shtml">God</a><a name="x">Torah</a><a href="">Self</a><a href="  ">Blank</a></div>
</div></div>`)
	_, links := New(Layout{}).Details(doc, base)

	assert.Equal(t, []catalog.Link{
		{Heading: "Texts", Text: "God", Href: base + "god.shtml"},
		{Heading: "Texts", Text: "Torah", Href: base},
		{Heading: "Texts", Text: "Self", Href: base},
		{Heading: "Texts", Text: "Blank", Href: base},
	}, links)
}

func TestDetails_ResolvesAgainstPageNotSiteRoot(t *testing.T) {
	base := "https://archive.example/religion/religions/islam/"
	doc := mustParse(t, base, detailHTML)
	_, links := New(Layout{}).Details(doc, base)
	require.NotEmpty(t, links)
	assert.Equal(t, "https://archive.example/religion/religions/islam/beliefs/god.shtml", links[0].Href)
}

func TestDetails_NoPromo(t *testing.T) {
	base := "https://x/"
	doc := mustParse(t, base, `<div id="prg-wrapper-featured"><div class="accordion"><h2>Scriptures</h2><div class="accordion_content"><a href="https://x/t">Torah</a></div></div></div>`)
	summary, links := New(Layout{}).Details(doc, base)
	assert.Equal(t, "", summary)
	assert.Equal(t, []catalog.Link{{Heading: "Scriptures", Text: "Torah", Href: "https://x/t"}}, links)
}

func TestFill_UsesCategoryURL(t *testing.T) {
	c := catalog.Category{Title: "Judaism", URL: "https://www.bbc.co.uk/religion/religions/judaism/"}
	doc := mustParse(t, c.URL, detailHTML)
	New(Layout{}).Fill(doc, &c)
	assert.NotEmpty(t, c.Summary)
	assert.Len(t, c.Links, 4)
}

func TestCustomLayout_CSS(t *testing.T) {
	layout := Layout{
		CategoryLinks: selector.MustCSS("ul.religions li > a"),
	}
	doc := mustParse(t, "https://mirror.example/index.html", `<ul class="religions"><li><a href="a.html">Bahá'í</a></li><li><a href="b.html">Jainism</a></li></ul>`)
	cats := New(layout).Categories(doc)
	require.Len(t, cats, 2)
	assert.Equal(t, "Bahá'í", cats[0].Title)
	assert.Equal(t, "https://mirror.example/b.html", cats[1].URL)
}

func TestLayout_CompileRejectsBadSelector(t *testing.T) {
	l := DefaultLayout()
	l.Accordions = selector.Selector{Kind: selector.XPath, Expr: "//div[@class="}
	err := l.Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accordions")
}

func TestResolveHref(t *testing.T) {
	cases := []struct {
		base, ref, want string
	}{
		{"https://www.bbc.co.uk/religion/religions/", "islam/", "https://www.bbc.co.uk/religion/religions/islam/"},
		{"https://www.bbc.co.uk/religion/religions/islam/", "../hinduism/", "https://www.bbc.co.uk/religion/religions/hinduism/"},
		{"https://www.bbc.co.uk/religion/religions/islam/", "/news/", "https://www.bbc.co.uk/news/"},
		{"https://www.bbc.co.uk/religion/religions/islam/", "https://other.example/a", "https://other.example/a"},
	}
	for _, tc := range cases {
		got, err := ResolveHref(tc.base, tc.ref)
		require.NoError(t, err, tc.ref)
		assert.Equal(t, tc.want, got, tc.ref)
	}

	_, err := ResolveHref("https://x/", "   ")
	assert.ErrorIs(t, err, ErrEmptyHref)
}

func TestRepair(t *testing.T) {
	assert.Equal(t, "Candomblé", Repair("CandomblÃ©"))
	assert.Equal(t, "Bahá'í", Repair("Bah\u00c3\u00a1'\u00c3\u00ad"))
	// Already-correct text is left alone.
	for _, s := range []string{"", "Judaism", "Candomblé", "Bahá'í", "Shintō", "“quoted”"} {
		assert.Equal(t, s, Repair(s), s)
	}
}
