package export

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Supported single-byte charsets, keyed by their configuration name.
var charsets = map[string]*charmap.Charmap{
	"iso-8859-1":   charmap.ISO8859_1,
	"latin-1":      charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

// LookupCharset resolves a charset name such as "iso-8859-1".
func LookupCharset(name string) (*charmap.Charmap, error) {
	cm, ok := charsets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	return cm, nil
}

// ParseSubstitute validates the configured substitute character.
func ParseSubstitute(s string) (byte, error) {
	if len(s) != 1 || s[0] < 0x20 || s[0] > 0x7e {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSubstitute, s)
	}
	return s[0], nil
}

// Transcode maps text rune by rune into cm. Runes the charset cannot
// represent, including invalid UTF-8, become substitute. It never fails and
// returns the number of substitutions made.
func Transcode(text string, cm *charmap.Charmap, substitute byte) (string, int) {
	var b strings.Builder
	b.Grow(len(text))
	replaced := 0
	for _, r := range text {
		if c, ok := cm.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		b.WriteByte(substitute)
		replaced++
	}
	return b.String(), replaced
}
