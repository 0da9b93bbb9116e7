package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/hyperifyio/faithindex/internal/cache"
)

const (
	// DefaultUserAgent identifies the archiver to the remote site.
	DefaultUserAgent = "Mozilla/5.0 (compatible; BBC-Scraper/1.0)"
	// DefaultTimeout bounds each request.
	DefaultTimeout = 20 * time.Second
)

// Client issues single-shot GET requests. It is constructed explicitly and
// passed to whoever needs it; swap HTTPClient to substitute the transport.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
	// Optional on-disk page cache. When set, requests carry the stored
	// validators and a 304 answer is served from disk.
	Cache *cache.PageCache
}

// New returns a Client with the default user agent and timeout.
func New() *Client {
	return &Client{UserAgent: DefaultUserAgent, Timeout: DefaultTimeout}
}

// Document is a parsed page together with the URL it was fetched from.
type Document struct {
	URL  *url.URL
	Root *html.Node
}

// FetchError reports a failed GET: transport failure, timeout or a
// non-success status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Timeout reports whether the request failed because its deadline passed.
func (e *FetchError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Err, &te) && te.Timeout()
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirectFunc()}
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// Get issues one GET and returns the raw body. There are no retries.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("new request: %w", err)}
	}
	// Reject non-HTTP(S) schemes early
	if !isHTTPScheme(req.URL) {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("unsupported URL scheme: %q", req.URL.Scheme)}
	}
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	var cached []byte
	if c.Cache != nil {
		if e, body, err := c.Cache.Lookup(rawURL); err == nil && e.Revalidatable() {
			cached = body
			if e.ETag != "" {
				req.Header.Set("If-None-Match", e.ETag)
			}
			if e.LastModified != "" {
				req.Header.Set("If-Modified-Since", e.LastModified)
			}
		}
	}

	ctx, cancel := context.WithTimeout(req.Context(), c.timeout())
	defer cancel()
	req = req.WithContext(ctx)

	start := time.Now()
	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		log.Debug().Str("url", rawURL).Int("bytes", len(cached)).Dur("took", time.Since(start)).Msg("not modified; served from cache")
		return cached, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	log.Debug().Str("url", rawURL).Int("status", resp.StatusCode).Int("bytes", len(b)).Dur("took", time.Since(start)).Msg("fetched")
	if c.Cache != nil {
		if err := c.Cache.Save(rawURL, resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), b); err != nil {
			log.Warn().Err(err).Str("url", rawURL).Msg("cache save failed")
		}
	}
	return b, nil
}

// Fetch downloads rawURL and parses it. The body is always read as UTF-8
// whatever charset the server declares; the parser tolerates broken markup.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return Parse(rawURL, body)
}

// Parse builds a Document from raw bytes fetched from rawURL.
func Parse(rawURL string, body []byte) (*Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", rawURL, err)
	}
	return &Document{URL: u, Root: root}, nil
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		// Only allow http/https during redirects
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
