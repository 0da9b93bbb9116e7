package app

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/faithindex/internal/cache"
	"github.com/hyperifyio/faithindex/internal/catalog"
	"github.com/hyperifyio/faithindex/internal/extract"
	"github.com/hyperifyio/faithindex/internal/fetch"
	"github.com/hyperifyio/faithindex/internal/render"
)

type App struct {
	cfg        Config
	httpClient *http.Client
	client     *fetch.Client
	extractor  extract.Extractor
	now        func() time.Time
}

func New(ctx context.Context, cfg Config) (*App, error) {
	applyDefaults(&cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	hc := newArchiveHTTPClient(cfg.Timeout)
	client := &fetch.Client{
		HTTPClient: hc,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.Timeout,
	}
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				return nil, fmt.Errorf("clear cache: %w", err)
			}
		}
		if cfg.CacheMaxAge > 0 {
			n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge)
			if err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache purge failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Msg("expired cache entries purged")
			}
		}
		client.Cache = &cache.PageCache{Dir: cfg.CacheDir}
	}
	a := &App{
		cfg:        cfg,
		httpClient: hc,
		client:     client,
		extractor:  extract.New(cfg.Layout),
		now:        time.Now,
	}
	log.Debug().Str("index", cfg.IndexURL).Str("output", cfg.OutputPath).Bool("skip_failed", cfg.SkipFailedCategories).Msg("app configured")
	return a, nil
}

// Config returns the effective configuration after defaults.
func (a *App) Config() Config { return a.cfg }

func (a *App) Close() {
	a.httpClient.CloseIdleConnections()
}

// Run fetches the index and every category page in order, then writes the
// page and any configured companion outputs. The main page is rendered in
// memory and written once, so a failed run leaves no partial page behind.
func (a *App) Run(ctx context.Context) error {
	start := a.now()

	index, indexBody, err := a.fetchPage(ctx, a.cfg.IndexURL)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	cats := a.extractor.Categories(index)
	log.Info().Str("url", a.cfg.IndexURL).Int("categories", len(cats)).Msg("index extracted")

	man := manifest{
		IndexURL:    a.cfg.IndexURL,
		IndexSHA256: computeSHA256Hex(indexBody),
		UserAgent:   a.client.UserAgent,
		Categories:  len(cats),
		Entries:     make([]manifestEntry, 0, len(cats)),
	}
	if man.UserAgent == "" {
		man.UserAgent = fetch.DefaultUserAgent
	}

	for i := range cats {
		if err := ctx.Err(); err != nil {
			return err
		}
		c := &cats[i]
		entry := manifestEntry{Index: i + 1, Title: c.Title, URL: c.URL}
		doc, body, err := a.fetchPage(ctx, c.URL)
		if err != nil {
			if !a.cfg.SkipFailedCategories {
				return fmt.Errorf("category %q: %w", c.Title, err)
			}
			log.Warn().Err(err).Str("category", c.Title).Msg("category skipped; keeping it without details")
			entry.Error = err.Error()
			man.Skipped++
			man.Entries = append(man.Entries, entry)
			continue
		}
		c.Summary, c.Links = a.extractor.Details(doc, c.URL)
		entry.SHA256 = computeSHA256Hex(body)
		entry.Bytes = len(body)
		entry.Links = len(c.Links)
		man.Entries = append(man.Entries, entry)
		log.Debug().Str("category", c.Title).Int("links", len(c.Links)).Bool("summary", c.Summary != "").Msg("category extracted")
	}
	man.Links = catalog.LinkCount(cats)
	log.Info().Int("categories", len(cats)).Int("links", man.Links).Int("skipped", man.Skipped).Msg("extraction complete")

	var page bytes.Buffer
	if err := a.cfg.Page.Render(&page, cats); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	if err := writeOutput(a.cfg.OutputPath, page.Bytes()); err != nil {
		return err
	}
	log.Info().Str("path", a.cfg.OutputPath).Int("bytes", page.Len()).Msg("page written")

	if err := a.writeExtras(cats, man); err != nil {
		return err
	}
	log.Info().Dur("took", a.now().Sub(start)).Msg("run complete")
	return nil
}

func (a *App) fetchPage(ctx context.Context, rawURL string) (*fetch.Document, []byte, error) {
	body, err := a.client.Get(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}
	doc, err := fetch.Parse(rawURL, body)
	if err != nil {
		return nil, nil, err
	}
	return doc, body, nil
}

// writeExtras writes the optional Markdown outline, HTML digest, PDF and
// manifest, in that order.
func (a *App) writeExtras(cats []catalog.Category, man manifest) error {
	if a.cfg.MarkdownPath == "" && a.cfg.DigestPath == "" && a.cfg.PDFPath == "" && a.cfg.ManifestPath == "" {
		return nil
	}
	markup := render.Markup(cats)

	if p := a.cfg.MarkdownPath; p != "" {
		if err := writeOutput(p, []byte(markup)); err != nil {
			return err
		}
		log.Info().Str("path", p).Msg("markdown outline written")
	}
	if p := a.cfg.DigestPath; p != "" {
		conv := render.NewConverter(a.cfg.DigestRenderer)
		digest, err := conv.Convert(markup)
		if err != nil {
			return fmt.Errorf("convert digest: %w", err)
		}
		if err := writeOutput(p, []byte(digest)); err != nil {
			return err
		}
		log.Info().Str("path", p).Str("renderer", conv.Name()).Msg("digest written")
	}
	if p := a.cfg.PDFPath; p != "" {
		if err := ensureDir(p); err != nil {
			return &OutputError{Path: p, Err: err}
		}
		if err := render.WritePDF(markup, p); err != nil {
			return &OutputError{Path: p, Err: err}
		}
		log.Info().Str("path", p).Msg("pdf written")
	}
	if p := a.cfg.ManifestPath; p != "" {
		man.GeneratedAt = a.now().UTC()
		data, err := man.encode()
		if err != nil {
			return fmt.Errorf("encode manifest: %w", err)
		}
		if err := writeOutput(p, data); err != nil {
			return err
		}
		log.Info().Str("path", p).Msg("manifest written")
	}
	return nil
}

func writeOutput(path string, data []byte) error {
	if err := ensureDir(path); err != nil {
		return &OutputError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &OutputError{Path: path, Err: err}
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
