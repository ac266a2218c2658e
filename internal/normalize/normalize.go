// Package normalize applies deterministic capitalization fixes to translated text.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Text uppercases the first character of s and every standalone pronoun "i".
// Nothing else is changed, and Text(Text(s)) == Text(s).
func Text(s string) string {
	if s == "" {
		return s
	}

	r, size := utf8.DecodeRuneInString(s)
	if r != utf8.RuneError && unicode.IsLower(r) {
		s = string(unicode.ToUpper(r)) + s[size:]
	}

	return capitalizePronoun(s)
}

// capitalizePronoun replaces each lowercase "i" that has no word character
// on either side, so "i'm" becomes "I'm" while "hawaiʻi" and "mañi" are
// left alone.
func capitalizePronoun(s string) string {
	if !strings.Contains(s, "i") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	prev := utf8.RuneError
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == 'i' && !isWordRune(prev) {
			next, _ := utf8.DecodeRuneInString(s[i+size:])
			if !isWordRune(next) {
				b.WriteByte('I')
				prev, i = r, i+size
				continue
			}
		}
		b.WriteString(s[i : i+size])
		prev, i = r, i+size
	}
	return b.String()
}

// isWordRune reports whether r belongs to a word in any script.
// Combining marks count so "i" followed by an accent stays part of its word.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
