package app

import (
	"time"

	"github.com/hyperifyio/faithindex/internal/extract"
	"github.com/hyperifyio/faithindex/internal/render"
)

const (
	// DefaultIndexURL is the archived religions index.
	DefaultIndexURL = "https://www.bbc.co.uk/religion/religions"
	// DefaultOutputPath is where the interactive page goes when none is given.
	DefaultOutputPath = "bbc_religions.html"
	// DefaultDigestRenderer converts the Markdown outline for the digest.
	DefaultDigestRenderer = render.RendererGoldmark
)

// Config holds runtime configuration for the application.
type Config struct {
	IndexURL   string
	OutputPath string

	// Optional companion outputs; empty disables each.
	MarkdownPath   string
	DigestPath     string
	DigestRenderer string
	PDFPath        string
	ManifestPath   string

	// HTTP
	UserAgent string
	Timeout   time.Duration

	// Page cache; empty CacheDir disables it.
	CacheDir    string
	CacheMaxAge time.Duration
	CacheClear  bool

	// Behavior
	SkipFailedCategories bool
	Verbose              bool

	Layout extract.Layout
	Page   render.Page
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	return Config{
		IndexURL:       DefaultIndexURL,
		OutputPath:     DefaultOutputPath,
		DigestRenderer: DefaultDigestRenderer,
		Layout:         extract.DefaultLayout(),
		Page:           render.DefaultPage(),
	}
}

// applyDefaults fills zero fields that have a default.
func applyDefaults(cfg *Config) {
	if cfg.IndexURL == "" {
		cfg.IndexURL = DefaultIndexURL
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = DefaultOutputPath
	}
	if cfg.DigestRenderer == "" {
		cfg.DigestRenderer = DefaultDigestRenderer
	}
	cfg.Layout = cfg.Layout.Merge(extract.DefaultLayout())
	cfg.Page = cfg.Page.Merge(render.DefaultPage())
}
