// Package store holds the in-memory inverted index and persists it as a
// snapshot. A snapshot has two tables: term -> document -> frequency, and
// document -> content fingerprint.
package store

import (
	"fmt"
	"maps"
	"slices"
)

// Index is an inverted index plus the fingerprint table of the documents it
// was built from. A document with no terms (empty or unreadable) is tracked
// only in the fingerprint table.
//
// An Index is mutated only while it is being built. Once handed to readers it
// must be treated as immutable.
type Index struct {
	postings     map[string]map[string]int
	fingerprints map[string]string
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		postings:     make(map[string]map[string]int),
		fingerprints: make(map[string]string),
	}
}

// AddDocument records doc with its fingerprint and term counts. Counts below
// 1 are ignored, so a zero frequency is never stored. Adding a document twice
// replaces its earlier postings.
func (idx *Index) AddDocument(doc, fingerprint string, freq map[string]int) {
	if _, ok := idx.fingerprints[doc]; ok {
		idx.removePostings(doc)
	}
	idx.fingerprints[doc] = fingerprint

	for term, n := range freq {
		if n < 1 {
			continue
		}
		docs, ok := idx.postings[term]
		if !ok {
			docs = make(map[string]int)
			idx.postings[term] = docs
		}
		docs[doc] = n
	}
}

func (idx *Index) removePostings(doc string) {
	for term, docs := range idx.postings {
		delete(docs, doc)
		if len(docs) == 0 {
			delete(idx.postings, term)
		}
	}
}

// TermFrequency returns the raw count of term in doc, or 0 when either is
// unknown. It never inserts.
func (idx *Index) TermFrequency(term, doc string) int {
	return idx.postings[term][doc]
}

// DocumentFrequency returns the number of documents containing term.
func (idx *Index) DocumentFrequency(term string) int {
	return len(idx.postings[term])
}

// DocumentCount returns the number of tracked documents, including ones that
// could not be read.
func (idx *Index) DocumentCount() int {
	return len(idx.fingerprints)
}

// TermCount returns the number of distinct terms.
func (idx *Index) TermCount() int {
	return len(idx.postings)
}

// Documents returns every tracked document path, sorted.
func (idx *Index) Documents() []string {
	return slices.Sorted(maps.Keys(idx.fingerprints))
}

// Terms returns every indexed term, sorted.
func (idx *Index) Terms() []string {
	return slices.Sorted(maps.Keys(idx.postings))
}

// Fingerprint returns the stored fingerprint for doc.
func (idx *Index) Fingerprint(doc string) (string, bool) {
	fp, ok := idx.fingerprints[doc]
	return fp, ok
}

// EachPosting calls fn for every document containing term.
func (idx *Index) EachPosting(term string, fn func(doc string, freq int)) {
	for doc, n := range idx.postings[term] {
		fn(doc, n)
	}
}

// Tables returns deep copies of the posting and fingerprint tables.
func (idx *Index) Tables() (map[string]map[string]int, map[string]string) {
	postings := make(map[string]map[string]int, len(idx.postings))
	for term, docs := range idx.postings {
		postings[term] = maps.Clone(docs)
	}
	return postings, maps.Clone(idx.fingerprints)
}

// Equal reports whether both indexes hold identical tables.
func (idx *Index) Equal(other *Index) bool {
	if other == nil {
		return false
	}
	if !maps.Equal(idx.fingerprints, other.fingerprints) || len(idx.postings) != len(other.postings) {
		return false
	}
	for term, docs := range idx.postings {
		if !maps.Equal(docs, other.postings[term]) {
			return false
		}
	}
	return true
}

// IndexFromTables builds an Index from persisted tables, rejecting tables that
// could not have been produced by AddDocument.
func IndexFromTables(postings map[string]map[string]int, fingerprints map[string]string) (*Index, error) {
	idx := NewIndex()
	for doc, fp := range fingerprints {
		idx.fingerprints[doc] = fp
	}

	for term, docs := range postings {
		if term == "" {
			return nil, fmt.Errorf("empty term in index table")
		}
		if len(docs) == 0 {
			return nil, fmt.Errorf("term %q has no postings", term)
		}
		copied := make(map[string]int, len(docs))
		for doc, n := range docs {
			if n < 1 {
				return nil, fmt.Errorf("term %q in %s has frequency %d", term, doc, n)
			}
			if _, ok := fingerprints[doc]; !ok {
				return nil, fmt.Errorf("term %q references untracked document %s", term, doc)
			}
			copied[doc] = n
		}
		idx.postings[term] = copied
	}

	return idx, nil
}
