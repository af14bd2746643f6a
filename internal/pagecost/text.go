package pagecost

import (
	"unicode/utf8"

	"pagecompare/internal/textutil"
)

const (
	// TextBearingMinChars is the normalized length a page's text must exceed
	// for the page to count as text-bearing.
	TextBearingMinChars = 20
	// NeutralTextCost is returned when neither page has any tokens.
	NeutralTextCost = 0.5
)

// TextCost returns the Jaccard distance between the token sets of a and b.
// Two token-less texts score NeutralTextCost; exactly one token-less text
// scores 1.
func TextCost(a, b string) float64 {
	return tokenCost(textutil.Tokens(a), textutil.Tokens(b))
}

func tokenCost(a, b textutil.TokenSet) float64 {
	switch {
	case a.Len() == 0 && b.Len() == 0:
		return NeutralTextCost
	case a.Len() == 0 || b.Len() == 0:
		return 1
	default:
		return 1 - textutil.Jaccard(a, b)
	}
}

// IsTextBearing reports whether text is long enough, once normalized, to be
// a reliable identity signal.
func IsTextBearing(text string) bool {
	return utf8.RuneCountInString(textutil.Normalize(text)) > TextBearingMinChars
}
