package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/txtseek/internal/metrics"
	"github.com/Aman-CERP/txtseek/internal/tokenizer"
)

// DefaultCacheSize is the number of ranked result lists kept per engine.
const DefaultCacheSize = 256

// ErrNotReady is returned when no index has been published yet.
var ErrNotReady = errors.New("no index is loaded")

// Engine answers keyword queries against the corpus published by a Source.
type Engine struct {
	source  Source
	cache   *lru.Cache[string, []Result]
	metrics *metrics.Metrics
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithMetrics records query counts and latency.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithCacheSize sets the result cache size; 0 disables caching.
func WithCacheSize(n int) EngineOption {
	return func(e *Engine) {
		if n <= 0 {
			e.cache = nil
			return
		}
		e.cache, _ = lru.New[string, []Result](n)
	}
}

// NewEngine creates an engine reading from source.
func NewEngine(source Source, opts ...EngineOption) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("search engine requires a corpus source")
	}
	cache, err := lru.New[string, []Result](DefaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	e := &Engine{source: source, cache: cache}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Search ranks documents by the sum of tf-idf over the query terms. A query
// term repeated n times contributes n times. Documents scoring 0 are left
// out. Results are ordered by score descending, then path ascending. An
// empty query returns no results and no error.
func (e *Engine) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	corpus := e.source.Current()
	if corpus == nil {
		return nil, ErrNotReady
	}

	terms := tokenizer.Terms(query)
	if len(terms) == 0 {
		return []Result{}, nil
	}

	key := cacheKey(corpus.Generation, terms, opts.Limit)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			e.metrics.ObserveSearch(time.Since(start), len(cached), true)
			return slices.Clone(cached), nil
		}
	}

	results := Rank(corpus, terms)
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	if e.cache != nil {
		e.cache.Add(key, slices.Clone(results))
	}
	e.metrics.ObserveSearch(time.Since(start), len(results), false)

	slog.Debug("search_complete",
		slog.String("query", query),
		slog.Int("terms", len(terms)),
		slog.Int("results", len(results)),
		slog.Duration("duration", time.Since(start)))

	return results, nil
}

// Purge drops every cached result.
func (e *Engine) Purge() {
	if e.cache != nil {
		e.cache.Purge()
	}
}

// Rank scores every document containing at least one of terms.
func Rank(corpus *Corpus, terms []string) []Result {
	scores := make(map[string]float64)
	matches := make(map[string]map[string]int)

	for _, term := range terms {
		w, ok := corpus.IDF[term]
		if !ok {
			continue
		}
		corpus.Index.EachPosting(term, func(doc string, tf int) {
			scores[doc] += float64(tf) * w
			m, ok := matches[doc]
			if !ok {
				m = make(map[string]int)
				matches[doc] = m
			}
			m[term] = tf
		})
	}

	results := make([]Result, 0, len(scores))
	for doc, score := range scores {
		if score <= 0 {
			continue
		}
		results = append(results, Result{Path: doc, Score: score, Matches: matches[doc]})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Path < results[j].Path
	})

	return results
}

func cacheKey(generation uint64, terms []string, limit int) string {
	return fmt.Sprintf("%d|%d|%s", generation, limit, strings.Join(terms, " "))
}
