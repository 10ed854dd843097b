// Package tokenizer turns raw text into index terms.
//
// Indexing and querying both go through Terms, so a query word always
// normalizes to the same term the index stored.
package tokenizer

import (
	"strings"
)

// Punctuation is the ASCII punctuation set removed by Clean.
const Punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var stripper = buildStripper()

func buildStripper() *strings.Replacer {
	pairs := make([]string, 0, 2*len(Punctuation))
	for _, c := range Punctuation {
		pairs = append(pairs, string(c), "")
	}
	return strings.NewReplacer(pairs...)
}

// Clean removes every ASCII punctuation character and lowercases the rest.
// Punctuation is deleted, not replaced, so "don't" becomes "dont".
func Clean(text string) string {
	return strings.ToLower(stripper.Replace(text))
}

// Tokenize splits normalized text on runs of whitespace.
// It never yields empty strings and preserves order.
func Tokenize(normalized string) []string {
	return strings.Fields(normalized)
}

// Terms is Tokenize(Clean(text)).
func Terms(text string) []string {
	return Tokenize(Clean(text))
}

// Frequencies counts occurrences of each term. Every value is at least 1.
func Frequencies(terms []string) map[string]int {
	freq := make(map[string]int, len(terms))
	for _, t := range terms {
		freq[t]++
	}
	return freq
}
