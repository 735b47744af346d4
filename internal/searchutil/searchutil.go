package searchutil

import (
	"strings"
	"unicode"
)

// Normalize lowercases value and turns punctuation and symbols into single
// spaces, so "Frieren: Beyond Journey’s End" and "frieren beyond journey s end"
// compare equal.
func Normalize(value string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return unicode.ToLower(r)
	}, value)
	return strings.Join(strings.Fields(mapped), " ")
}
