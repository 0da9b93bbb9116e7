package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/faithindex/internal/fetch"
)

const fixtureIndex = `<!doctype html>
<html><head><title>Religions</title></head><body>
<div id="prg-wrapper-featured">
  <div>masthead</div>
  <div>
    <div>intro</div>
    <div><div><div>
      <ul>
        <li><h3><a href="judaism/">Judaism</a></h3></li>
        <li><h3><a href="islam/">Islam</a></h3></li>
      </ul>
    </div></div></div>
  </div>
</div>
</body></html>`

const fixtureJudaism = `<html><body><div id="prg-wrapper-featured">
  <div class="top_promo"><div class="content"><p>Judaism is a monotheistic religion.</p></div></div>
  <div class="accordion"><h2>Beliefs</h2><div class="accordion_content"><a href="beliefs/god.shtml">God</a></div></div>
  <div class="accordion"><h2>History</h2><div class="accordion_content"><a href="history/overview.shtml">Overview</a></div></div>
  <div class="accordion"><h2>Beliefs</h2><div class="accordion_content"><a href="beliefs/torah.shtml">Torah</a></div></div>
</div></body></html>`

const fixtureIslam = `<html><body><div id="prg-wrapper-featured">
  <div class="accordion"><h2>Scriptures</h2><div class="accordion_content"><a href="texts/quran.shtml">The Qur'an</a></div></div>
</div></body></html>`

type fixture struct {
	srv        *httptest.Server
	indexURL   string
	indexCode  int
	islamCode  int
	indexBody  string
	userAgents atomic.Value
}

func newFixture(t *testing.T, opts ...func(*fixture)) *fixture {
	t.Helper()
	f := &fixture{indexCode: http.StatusOK, islamCode: http.StatusOK, indexBody: fixtureIndex}
	for _, o := range opts {
		o(f)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/religion/religions/", func(w http.ResponseWriter, r *http.Request) {
		f.userAgents.Store(r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/religion/religions/":
			w.WriteHeader(f.indexCode)
			_, _ = w.Write([]byte(f.indexBody))
		case "/religion/religions/judaism/":
			_, _ = w.Write([]byte(fixtureJudaism))
		case "/religion/religions/islam/":
			w.WriteHeader(f.islamCode)
			_, _ = w.Write([]byte(fixtureIslam))
		default:
			http.NotFound(w, r)
		}
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	f.indexURL = f.srv.URL + "/religion/religions/"
	return f
}

func runApp(t *testing.T, cfg Config) error {
	t.Helper()
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()
	return a.Run(context.Background())
}

var (
	navRe     = regexp.MustCompile(`<li><a href="#([^"]+)">`)
	sectionRe = regexp.MustCompile(`<section id="([^"]+)">`)
)

func TestRun_EndToEnd(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	cfg := Config{
		IndexURL:     f.indexURL,
		OutputPath:   filepath.Join(dir, "out.html"),
		MarkdownPath: filepath.Join(dir, "outline.md"),
		DigestPath:   filepath.Join(dir, "digest.html"),
		PDFPath:      filepath.Join(dir, "outline.pdf"),
		ManifestPath: filepath.Join(dir, "manifest.json"),
	}
	require.NoError(t, runApp(t, cfg))

	b, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	page := string(b)

	var nav, ids []string
	for _, m := range navRe.FindAllStringSubmatch(page, -1) {
		nav = append(nav, m[1])
	}
	for _, m := range sectionRe.FindAllStringSubmatch(page, -1) {
		ids = append(ids, m[1])
	}
	assert.Equal(t, []string{"judaism", "islam"}, nav)
	assert.Equal(t, nav, ids)

	assert.Contains(t, page, `<p class="promo">Judaism is a monotheistic religion.</p>`)
	assert.Equal(t, 1, strings.Count(page, "<summary>Beliefs</summary>"))
	assert.Contains(t, page, `data-url="`+f.indexURL+`judaism/beliefs/torah.shtml"`)
	assert.Contains(t, page, `data-url="`+f.indexURL+`islam/texts/quran.shtml"`)
	assert.Equal(t, 1, strings.Count(page, `class="promo"`))

	md, err := os.ReadFile(cfg.MarkdownPath)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(md), "**Beliefs**"))

	digest, err := os.ReadFile(cfg.DigestPath)
	require.NoError(t, err)
	assert.Contains(t, string(digest), "<strong>Beliefs</strong>")

	pdf, err := os.ReadFile(cfg.PDFPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF-"))

	raw, err := os.ReadFile(cfg.ManifestPath)
	require.NoError(t, err)
	var man manifest
	require.NoError(t, json.Unmarshal(raw, &man))
	assert.Equal(t, f.indexURL, man.IndexURL)
	assert.Equal(t, 2, man.Categories)
	assert.Equal(t, 4, man.Links)
	require.Len(t, man.Entries, 2)
	assert.Equal(t, "Judaism", man.Entries[0].Title)
	assert.Len(t, man.Entries[0].SHA256, 64)
	assert.Equal(t, 1, man.Entries[1].Links)
}

func TestRun_SendsUserAgent(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(t.TempDir(), "out.html")
	require.NoError(t, runApp(t, Config{IndexURL: f.indexURL, OutputPath: out}))
	assert.Equal(t, fetch.DefaultUserAgent, f.userAgents.Load())

	require.NoError(t, runApp(t, Config{IndexURL: f.indexURL, OutputPath: out, UserAgent: "archiver-test/1.0"}))
	assert.Equal(t, "archiver-test/1.0", f.userAgents.Load())
}

func TestRun_IndexFailureWritesNothing(t *testing.T) {
	f := newFixture(t, func(f *fixture) { f.indexCode = http.StatusInternalServerError })
	out := filepath.Join(t.TempDir(), "out.html")

	err := runApp(t, Config{IndexURL: f.indexURL, OutputPath: out})
	require.Error(t, err)
	var fe *fetch.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
	assert.NoFileExists(t, out)
}

func TestRun_CategoryFailureIsFatalByDefault(t *testing.T) {
	f := newFixture(t, func(f *fixture) { f.islamCode = http.StatusNotFound })
	out := filepath.Join(t.TempDir(), "out.html")

	err := runApp(t, Config{IndexURL: f.indexURL, OutputPath: out})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `category "Islam"`)
	var fe *fetch.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.NoFileExists(t, out)
}

func TestRun_SkipFailedKeepsCategory(t *testing.T) {
	f := newFixture(t, func(f *fixture) { f.islamCode = http.StatusBadGateway })
	dir := t.TempDir()
	cfg := Config{
		IndexURL:             f.indexURL,
		OutputPath:           filepath.Join(dir, "out.html"),
		ManifestPath:         filepath.Join(dir, "manifest.json"),
		SkipFailedCategories: true,
	}
	require.NoError(t, runApp(t, cfg))

	b, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	page := string(b)
	assert.Contains(t, page, `<section id="islam">`)
	islam := page[strings.Index(page, `<section id="islam">`):]
	islam = islam[:strings.Index(islam, "</section>")]
	assert.NotContains(t, islam, "<details>")

	raw, err := os.ReadFile(cfg.ManifestPath)
	require.NoError(t, err)
	var man manifest
	require.NoError(t, json.Unmarshal(raw, &man))
	assert.Equal(t, 1, man.Skipped)
	assert.Contains(t, man.Entries[1].Error, "502")
}

func TestRun_EmptyIndex(t *testing.T) {
	f := newFixture(t, func(f *fixture) { f.indexBody = `<html><body><p>moved</p></body></html>` })
	out := filepath.Join(t.TempDir(), "out.html")
	require.NoError(t, runApp(t, Config{IndexURL: f.indexURL, OutputPath: out}))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), `<nav id="toc">`)
	assert.NotContains(t, string(b), "<section")
}

func TestRun_OutputError(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	out := filepath.Join(blocker, "out.html")

	err := runApp(t, Config{IndexURL: f.indexURL, OutputPath: out})
	var oe *OutputError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, out, oe.Path)
}

func TestRun_WithCacheDir(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	cfg := Config{IndexURL: f.indexURL, OutputPath: filepath.Join(dir, "out.html"), CacheDir: cacheDir}
	require.NoError(t, runApp(t, cfg))

	metas, err := filepath.Glob(filepath.Join(cacheDir, "*.meta.json"))
	require.NoError(t, err)
	assert.Len(t, metas, 3)

	cfg.CacheClear = true
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	a.Close()
	metas, err = filepath.Glob(filepath.Join(cacheDir, "*.meta.json"))
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestRun_CanceledContext(t *testing.T) {
	f := newFixture(t)
	a, err := New(context.Background(), Config{IndexURL: f.indexURL, OutputPath: filepath.Join(t.TempDir(), "out.html")})
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = a.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(context.Background(), Config{IndexURL: "ftp://example.com/"})
	assert.ErrorIs(t, err, ErrNoIndexURL)

	a, err := New(context.Background(), Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultIndexURL, a.Config().IndexURL)
	assert.Equal(t, DefaultOutputPath, a.Config().OutputPath)
	assert.Equal(t, DefaultDigestRenderer, a.Config().DigestRenderer)
}
