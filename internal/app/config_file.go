package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/faithindex/internal/extract"
	"github.com/hyperifyio/faithindex/internal/render"
)

var (
	// ErrConfigNotFound is returned by LoadConfigFile when the file is missing.
	ErrConfigNotFound = errors.New("config file not found")
	ErrNoIndexURL     = errors.New("config: index URL is required")
	ErrNoOutputPath   = errors.New("config: output path is required")
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	IndexURL string `yaml:"indexURL" json:"indexURL"`
	Output   string `yaml:"output" json:"output"`

	Outputs struct {
		Markdown string `yaml:"markdown" json:"markdown"`
		Digest   string `yaml:"digest" json:"digest"`
		PDF      string `yaml:"pdf" json:"pdf"`
		Manifest string `yaml:"manifest" json:"manifest"`
	} `yaml:"outputs" json:"outputs"`

	Renderer string `yaml:"renderer" json:"renderer"`

	HTTP struct {
		UserAgent string   `yaml:"userAgent" json:"userAgent"`
		Timeout   Duration `yaml:"timeout" json:"timeout"`
	} `yaml:"http" json:"http"`

	Cache struct {
		Dir    string   `yaml:"dir" json:"dir"`
		MaxAge Duration `yaml:"maxAge" json:"maxAge"`
		Clear  bool     `yaml:"clear" json:"clear"`
	} `yaml:"cache" json:"cache"`

	SkipFailed bool `yaml:"skipFailed" json:"skipFailed"`
	Verbose    bool `yaml:"verbose" json:"verbose"`

	Layout extract.Layout `yaml:"layout" json:"layout"`
	Page   render.Page    `yaml:"page" json:"page"`
}

// Duration is a config-file duration. YAML and JSON both accept a Go
// duration string ("45s", "1h30m") or a whole number of seconds.
type Duration time.Duration

func (d *Duration) set(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*d = 0
		return nil
	}
	v, ok := parseTimeout(raw)
	if !ok {
		return fmt.Errorf("invalid duration %q", raw)
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", n.Line)
	}
	if n.Tag == "!!null" {
		return nil
	}
	return d.set(n.Value)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return d.set(s)
	}
	return d.set(raw)
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fc, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fc, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			fc = FileConfig{}
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset in cfg. Explicit values already in cfg are preserved.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, v string) {
		if *dst == "" && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setString(&cfg.IndexURL, fc.IndexURL)
	setString(&cfg.OutputPath, fc.Output)
	setString(&cfg.MarkdownPath, fc.Outputs.Markdown)
	setString(&cfg.DigestPath, fc.Outputs.Digest)
	setString(&cfg.PDFPath, fc.Outputs.PDF)
	setString(&cfg.ManifestPath, fc.Outputs.Manifest)
	setString(&cfg.DigestRenderer, fc.Renderer)
	setString(&cfg.UserAgent, fc.HTTP.UserAgent)
	if cfg.Timeout == 0 && fc.HTTP.Timeout > 0 {
		cfg.Timeout = time.Duration(fc.HTTP.Timeout)
	}
	setString(&cfg.CacheDir, fc.Cache.Dir)
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = time.Duration(fc.Cache.MaxAge)
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.SkipFailedCategories && fc.SkipFailed {
		cfg.SkipFailedCategories = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
	cfg.Layout = cfg.Layout.Merge(fc.Layout)
	cfg.Page = cfg.Page.Merge(fc.Page)
}

// ValidateConfig checks the settings a run cannot do without. It expects
// defaults to have been applied already.
func ValidateConfig(cfg Config) error {
	raw := strings.TrimSpace(cfg.IndexURL)
	if raw == "" {
		return ErrNoIndexURL
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrNoIndexURL, raw)
	}
	if strings.TrimSpace(cfg.OutputPath) == "" {
		return ErrNoOutputPath
	}
	if cfg.Timeout < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative durations are not allowed")
	}
	if err := cfg.Layout.Compile(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
