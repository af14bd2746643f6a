package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// MinTokenLength is the shortest token, in characters, kept by Tokens.
const MinTokenLength = 3

// TokenSet is an unordered set of normalized tokens.
type TokenSet map[string]struct{}

// Len returns the number of distinct tokens.
func (s TokenSet) Len() int {
	return len(s)
}

// Contains reports whether token is present in the set.
func (s TokenSet) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// Normalize lowercases text, collapses each run of non-alphanumeric characters
// to a single space, and trims the result.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	// Casers carry state and must not be shared across goroutines.
	lowered := cases.Lower(language.Und).String(norm.NFKC.String(text))

	var b strings.Builder
	b.Grow(len(lowered))
	pendingSpace := false
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Tokenize splits normalized text on whitespace and drops tokens shorter than
// MinTokenLength. Order and duplicates are preserved.
func Tokenize(text string) []string {
	fields := strings.Fields(Normalize(text))
	terms := make([]string, 0, len(fields))
	for _, token := range fields {
		if utf8.RuneCountInString(token) < MinTokenLength {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// Tokens returns the distinct tokens of text as a set.
func Tokens(text string) TokenSet {
	terms := Tokenize(text)
	set := make(TokenSet, len(terms))
	for _, term := range terms {
		set[term] = struct{}{}
	}
	return set
}
