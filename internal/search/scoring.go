package search

import (
	"math"

	"github.com/Aman-CERP/txtseek/internal/store"
)

// IDFTable maps each indexed term to its inverse document frequency.
// It is valid only for the document set it was computed from.
type IDFTable map[string]float64

// ComputeIDF returns idf = ln(n / df) for every term in idx, where df is the
// number of documents containing the term. With smoothing the weight is
// ln(1 + n/df) so a term present in every document keeps a positive weight.
// An empty corpus (n == 0) yields an empty table.
func ComputeIDF(idx *store.Index, n int, smoothing bool) IDFTable {
	idf := make(IDFTable, idx.TermCount())
	if n <= 0 {
		return idf
	}

	for _, term := range idx.Terms() {
		df := idx.DocumentFrequency(term)
		if df == 0 {
			continue
		}
		ratio := float64(n) / float64(df)
		if smoothing {
			idf[term] = math.Log1p(ratio)
		} else {
			idf[term] = math.Log(ratio)
		}
	}
	return idf
}

// TFIDF returns tf(term, doc) * idf(term), or 0 when term has no weight.
func TFIDF(idx *store.Index, idf IDFTable, term, doc string) float64 {
	w, ok := idf[term]
	if !ok {
		return 0
	}
	return float64(idx.TermFrequency(term, doc)) * w
}
