package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// manifestEntry is a compact record of one fetched detail page.
type manifestEntry struct {
	Index  int    `json:"index"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	SHA256 string `json:"sha256,omitempty"`
	Bytes  int    `json:"bytes"`
	Links  int    `json:"links"`
	Error  string `json:"error,omitempty"`
}

// manifest captures what a run fetched so two runs can be compared.
type manifest struct {
	IndexURL    string          `json:"index_url"`
	IndexSHA256 string          `json:"index_sha256"`
	UserAgent   string          `json:"user_agent"`
	Categories  int             `json:"categories"`
	Links       int             `json:"links"`
	Skipped     int             `json:"skipped"`
	GeneratedAt time.Time       `json:"generated_at"`
	Entries     []manifestEntry `json:"entries"`
}

// computeSHA256Hex returns a lowercase hex-encoded SHA-256 of b.
func computeSHA256Hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func (m manifest) encode() ([]byte, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
