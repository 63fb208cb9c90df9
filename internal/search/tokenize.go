package search

import (
	"strings"
	"unicode"
)

// Tokenize returns the set of lowercase word tokens in s. A token is a maximal
// run of letters, numbers and underscores.
func Tokenize(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, w := range words(s) {
		tokens[w] = struct{}{}
	}
	return tokens
}

// words returns every token of s in order, duplicates included.
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
