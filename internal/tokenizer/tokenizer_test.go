package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Hello World", "hello world"},
		{"strips punctuation", "This is a test file. Test.", "this is a test file test"},
		{"deletes inside words", "don't re-use e-mail", "dont reuse email"},
		{"all ascii punctuation", Punctuation, ""},
		{"keeps digits", "v1.2 costs $30!", "v12 costs 30"},
		{"keeps non-ascii letters", "Café—Über", "café—über"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.input))
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"single spaces", "a b c", []string{"a", "b", "c"}},
		{"whitespace runs", "  another\tfile\n\nfor  testing ", []string{"another", "file", "for", "testing"}},
		{"only whitespace", " \t\n ", []string{}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			assert.ElementsMatch(t, tt.expected, got)
			assert.Equal(t, len(tt.expected), len(got))
			for _, tok := range got {
				assert.NotEmpty(t, tok)
			}
		})
	}
}

func TestTerms_Idempotent(t *testing.T) {
	inputs := []string{
		"Subdirectory test file. Subdirectory.",
		"Another file for testing.  Another.",
		"MiXeD,,, case!!! and (parens)",
	}

	for _, in := range inputs {
		once := Terms(in)
		twice := Tokenize(Clean(Clean(in)))
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestTerms_PreservesOrder(t *testing.T) {
	assert.Equal(t, []string{"this", "is", "a", "test", "file", "test"}, Terms("This is a test file. Test."))
}

func TestFrequencies(t *testing.T) {
	// Given: the terms of a document with repeats
	terms := Terms("Another file for testing.  Another.")

	// When: counting
	freq := Frequencies(terms)

	// Then: each count equals the occurrences
	assert.Equal(t, map[string]int{"another": 2, "file": 1, "for": 1, "testing": 1}, freq)
	assert.Empty(t, Frequencies(nil))
}
