// Package wire holds the data-plane formats: the chat payload codec and
// the endpoint normalizer. Everything here is pure and total.
package wire

import (
	"strings"
	"unicode"
)

const (
	schemeSecure   = "wss://"
	schemeInsecure = "ws://"
)

// trimEndpoint strips ordinary whitespace plus the zero-width characters
// that survive copy/paste from chat apps and config UIs.
func trimEndpoint(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
			return true
		}
		return unicode.IsSpace(r)
	})
}

// NormalizeEndpoint coerces arbitrary user/config input into a
// well-formed realtime URL. It never fails; a bare scheme with no host
// is returned unchanged so the caller can reject it.
func NormalizeEndpoint(input string) string {
	s := trimEndpoint(input)
	if s == schemeSecure || s == schemeInsecure {
		return s
	}
	switch {
	case strings.HasPrefix(s, "https://"):
		return schemeSecure + strings.TrimPrefix(s, "https://")
	case strings.HasPrefix(s, "http://"):
		return schemeInsecure + strings.TrimPrefix(s, "http://")
	case strings.HasPrefix(s, schemeSecure), strings.HasPrefix(s, schemeInsecure):
		return s
	default:
		return schemeSecure + s
	}
}
