package extract

import (
	"errors"
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// ErrEmptyHref is returned for anchors without a usable href.
var ErrEmptyHref = errors.New("empty href")

// ResolveHref resolves ref against the page it was found on and returns an
// absolute URL.
func ResolveHref(base, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrEmptyHref
	}
	abs, err := urlParser.ParseRef(base, ref)
	if err != nil {
		return "", err
	}
	return abs.Href(false), nil
}

// resolveOrBase is ResolveHref with an empty ref meaning base itself.
func resolveOrBase(base, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return ResolveHref(base, base)
	}
	return ResolveHref(base, ref)
}
