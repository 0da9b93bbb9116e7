package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry holds the validators needed to revalidate a cached page.
type Entry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	Bytes        int       `json:"bytes"`
	SavedAt      time.Time `json:"saved_at"`
}

// Revalidatable reports whether the entry carries a validator the server can
// answer with 304 Not Modified.
func (e *Entry) Revalidatable() bool {
	return e != nil && (e.ETag != "" || e.LastModified != "")
}

// PageCache stores fetched pages on disk as <key>.meta.json and <key>.body
// where key is sha256(url). It has no eviction beyond PurgeByAge.
type PageCache struct {
	Dir string
	now func() time.Time
}

func (c *PageCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	return os.MkdirAll(c.Dir, 0o755)
}

func (c *PageCache) key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

func (c *PageCache) metaPath(key string) string { return filepath.Join(c.Dir, key+".meta.json") }
func (c *PageCache) bodyPath(key string) string { return filepath.Join(c.Dir, key+".body") }

func (c *PageCache) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// Lookup returns the entry and body stored for url. A missing entry is
// reported as an error satisfying errors.Is(err, os.ErrNotExist).
func (c *PageCache) Lookup(url string) (*Entry, []byte, error) {
	if err := c.ensureDir(); err != nil {
		return nil, nil, err
	}
	key := c.key(url)
	b, err := os.ReadFile(c.metaPath(key))
	if err != nil {
		return nil, nil, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, nil, fmt.Errorf("decode meta: %w", err)
	}
	body, err := os.ReadFile(c.bodyPath(key))
	if err != nil {
		return nil, nil, err
	}
	return &e, body, nil
}

// Save stores body with its validators. The meta file is written last so a
// crash never leaves meta pointing at a missing body.
func (c *PageCache) Save(url, etag, lastModified string, body []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	key := c.key(url)
	if err := writeAtomic(c.bodyPath(key), body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	meta, err := json.Marshal(Entry{
		URL:          url,
		ETag:         etag,
		LastModified: lastModified,
		Bytes:        len(body),
		SavedAt:      c.clock().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	if err := writeAtomic(c.metaPath(key), meta); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
