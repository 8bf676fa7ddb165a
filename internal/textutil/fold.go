// Package textutil normalizes page text for multilingual keyword matching.
package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s, strips diacritics and collapses whitespace, so that
// "Datenschutzerklärung" and "DATENSCHUTZERKLARUNG" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	folded := cases.Fold().String(stripped)
	return strings.Join(strings.Fields(folded), " ")
}

// ContainsAny reports whether the folded text contains any folded keyword.
func ContainsAny(text string, keywords []string) bool {
	return FirstMatch(text, keywords) != ""
}

// FirstMatch returns the first keyword contained in text after folding, or "".
func FirstMatch(text string, keywords []string) string {
	folded := Fold(text)
	if folded == "" {
		return ""
	}
	for _, k := range keywords {
		if fk := Fold(k); fk != "" && strings.Contains(folded, fk) {
			return k
		}
	}
	return ""
}

// HasPhrase reports whether the folded text contains the folded phrase as
// whole words, so "ok" matches "OK, got it" but not "bookmark".
func HasPhrase(text, phrase string) bool {
	return hasFoldedPhrase(Fold(text), Fold(phrase))
}

// HasAnyPhrase reports whether text contains any of the phrases as whole
// words.
func HasAnyPhrase(text string, phrases []string) bool {
	folded := Fold(text)
	for _, p := range phrases {
		if hasFoldedPhrase(folded, Fold(p)) {
			return true
		}
	}
	return false
}

func hasFoldedPhrase(text, phrase string) bool {
	if text == "" || phrase == "" {
		return false
	}
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], phrase)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(phrase)
		if isBoundary(text, start, true) && isBoundary(text, end, false) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

// isBoundary reports whether position i of s is a word boundary. before
// selects the rune preceding i instead of the one at i.
func isBoundary(s string, i int, before bool) bool {
	var r rune
	if before {
		if i == 0 {
			return true
		}
		r, _ = utf8.DecodeLastRuneInString(s[:i])
	} else {
		if i >= len(s) {
			return true
		}
		r, _ = utf8.DecodeRuneInString(s[i:])
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
