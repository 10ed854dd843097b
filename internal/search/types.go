// Package search ranks documents against keyword queries with TF-IDF.
package search

import (
	"github.com/Aman-CERP/txtseek/internal/store"
)

// Corpus is one published, immutable view of an index: the inverted index,
// its fingerprint table and the IDF table computed from it. Readers always
// see all three together.
type Corpus struct {
	// Root is the canonical directory the index was built from.
	Root  string
	Index *store.Index
	IDF   IDFTable

	// Generation increases with every publish; result caches key on it.
	Generation uint64
}

// NewCorpus computes the IDF table for idx and wraps both.
func NewCorpus(root string, idx *store.Index, smoothing bool, generation uint64) *Corpus {
	return &Corpus{
		Root:       root,
		Index:      idx,
		IDF:        ComputeIDF(idx, idx.DocumentCount(), smoothing),
		Generation: generation,
	}
}

// TermFrequency returns the raw count of term in doc.
func (c *Corpus) TermFrequency(term, doc string) int {
	return c.Index.TermFrequency(term, doc)
}

// Source provides the currently published corpus, or nil before the first
// publish.
type Source interface {
	Current() *Corpus
}

// Result is one ranked document.
type Result struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
	// Matches holds the frequency of each query term found in the document.
	Matches map[string]int `json:"matches"`
}

// Options configures a query.
type Options struct {
	// Limit caps the number of results (0 = unlimited).
	Limit int
}
