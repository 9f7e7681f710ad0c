package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestTranscode(t *testing.T) {
	testCases := []struct {
		name     string
		charset  *charmap.Charmap
		input    string
		expected string
		replaced int
	}{
		{name: "ASCII_Unchanged", charset: charmap.ISO8859_1, input: "STORY 1...\nAs a user", expected: "STORY 1...\nAs a user"},
		{name: "Latin1_Accents", charset: charmap.ISO8859_1, input: "café", expected: "caf\xe9"},
		{name: "Checkmark_Replaced", charset: charmap.ISO8859_1, input: "done ✓", expected: "done ?", replaced: 1},
		{name: "Emoji_Replaced_Once_Per_Rune", charset: charmap.ISO8859_1, input: "📝 notes 🚀", expected: "? notes ?", replaced: 2},
		{name: "Smart_Quotes_Latin1", charset: charmap.ISO8859_1, input: "“hi”", expected: "?hi?", replaced: 2},
		{name: "Smart_Quotes_Windows1252", charset: charmap.Windows1252, input: "“hi” €5", expected: "\x93hi\x94 \x805"},
		{name: "Invalid_UTF8", charset: charmap.ISO8859_1, input: "a\xffb", expected: "a?b", replaced: 1},
		{name: "Empty", charset: charmap.ISO8859_1, input: "", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, n := Transcode(tc.input, tc.charset, '?')
			assert.Equal(t, tc.expected, out)
			assert.Equal(t, tc.replaced, n)
		})
	}
}

func TestTranscode_CustomSubstitute(t *testing.T) {
	out, n := Transcode("a✓b", charmap.ISO8859_1, '#')
	assert.Equal(t, "a#b", out)
	assert.Equal(t, 1, n)
}

func TestLookupCharset(t *testing.T) {
	cm, err := LookupCharset("ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, charmap.ISO8859_1, cm)

	cm, err = LookupCharset("windows-1252")
	require.NoError(t, err)
	assert.Equal(t, charmap.Windows1252, cm)

	_, err = LookupCharset("utf-8")
	assert.ErrorIs(t, err, ErrUnknownCharset)
}

func TestParseSubstitute(t *testing.T) {
	b, err := ParseSubstitute("?")
	require.NoError(t, err)
	assert.Equal(t, byte('?'), b)

	for _, bad := range []string{"", "??", "é", "\n"} {
		_, err := ParseSubstitute(bad)
		assert.ErrorIs(t, err, ErrInvalidSubstitute, "input %q", bad)
	}
}
