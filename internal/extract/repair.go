package extract

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Repair undoes the common "UTF-8 bytes decoded as Latin-1" mojibake, e.g.
// "CandomblÃ©" -> "Candomblé". Text that cannot be re-encoded as Latin-1, or
// whose Latin-1 bytes are not valid UTF-8, is returned unchanged.
func Repair(s string) string {
	if isASCII(s) {
		return s
	}
	raw, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		return s
	}
	if !utf8.ValidString(raw) {
		return s
	}
	return raw
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
