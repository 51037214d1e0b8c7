package domain

import (
	"strings"

	"github.com/bbrks/go-blurhash"
)

// SanitizeSubdomain keeps only ASCII letters, digits, '/' and '-'.
func SanitizeSubdomain(raw string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '/', r == '-':
			return r
		default:
			return -1
		}
	}, raw)
}

// ValidBlurhash reports whether hash decodes as a BlurHash.
func ValidBlurhash(hash string) bool {
	// The shortest hash is 6 characters; the decoder indexes without checking.
	if len(hash) < 6 {
		return false
	}
	_, _, err := blurhash.Components(hash)
	return err == nil
}
