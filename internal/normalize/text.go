// Package normalize canonicalizes free-text identifiers, units of measure,
// numbers and dates coming from unreliable extraction sources.
//
// Every function in this package is total: bad input resolves to a safe
// default and never returns an error.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes and removes combining marks (accents).
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// CleanString lowercases, trims, strips diacritics and then drops every
// character outside [a-z0-9]. It is the universal key for fuzzy equality
// between names and SKUs.
func CleanString(s string) string {
	s = stripMarks(strings.ToLower(strings.TrimSpace(s)))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// lettersOnly lowercases s and keeps only [a-z].
func lettersOnly(s string) string {
	s = stripMarks(strings.ToLower(strings.TrimSpace(s)))

	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
