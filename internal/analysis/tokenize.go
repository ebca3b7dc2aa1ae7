// Package analysis extracts keyword frequencies from a table's text
// column to suggest what to search for next while tagging.
package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize normalizes a single cell value into keyword tokens: the
// text is uppercased, every rune that is neither a word rune (letter,
// digit, underscore — diacritics included) nor whitespace becomes a
// space, and the result splits on whitespace runs. Tokens shorter than
// minLen runes or in the stopword set are dropped.
func Tokenize(text string, minLen int) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToUpper(text) {
		if isWordRune(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	tokens := fields[:0]
	for _, tok := range fields {
		if utf8.RuneCountInString(tok) < minLen {
			continue
		}
		if IsStopword(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
