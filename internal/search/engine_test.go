package search

import (
	"context"
	"math"
	"testing"

	"github.com/Aman-CERP/txtseek/internal/metrics"
	"github.com/Aman-CERP/txtseek/internal/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	corpus *Corpus
}

func (s *staticSource) Current() *Corpus { return s.corpus }

func newEngine(t *testing.T, docs map[string]string, opts ...EngineOption) (*Engine, *staticSource) {
	t.Helper()
	idx := buildIndex(docs)
	src := &staticSource{corpus: NewCorpus("/r", idx, false, 1)}
	e, err := NewEngine(src, opts...)
	require.NoError(t, err)
	return e, src
}

func paths(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Path
	}
	return out
}

func TestSearch_EndToEndExample(t *testing.T) {
	// Given: two documents
	e, _ := newEngine(t, map[string]string{
		"/r/file1.txt": "This is a test file. Test.",
		"/r/file2.txt": "Another file for testing.  Another.",
	})

	// When: searching "test"
	results, err := e.Search(context.Background(), "test", Options{})

	// Then: only file1 matches with 2 * ln(2)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "/r/file1.txt", results[0].Path)
	assert.InDelta(t, 1.3863, results[0].Score, 1e-4)
	assert.Equal(t, map[string]int{"test": 2}, results[0].Matches)
}

func TestSearch_SumsAcrossTerms(t *testing.T) {
	e, _ := newEngine(t, referenceCorpus)

	results, err := e.Search(context.Background(), "Test subdirectory!", Options{})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "/r/subdir/file3.txt", results[0].Path)
	assert.InDelta(t, math.Log(1.5)+2*math.Log(3), results[0].Score, 1e-12)
	assert.Equal(t, "/r/file1.txt", results[1].Path)
	assert.InDelta(t, 2*math.Log(1.5), results[1].Score, 1e-12)
}

func TestSearch_RepeatedQueryTerm(t *testing.T) {
	e, _ := newEngine(t, referenceCorpus)

	once, err := e.Search(context.Background(), "another", Options{})
	require.NoError(t, err)
	twice, err := e.Search(context.Background(), "another another", Options{})
	require.NoError(t, err)

	require.Len(t, once, 1)
	require.Len(t, twice, 1)
	assert.InDelta(t, 2*once[0].Score, twice[0].Score, 1e-12)
}

func TestSearch_ExcludesZeroScores(t *testing.T) {
	// "file" occurs in every document, so its idf is 0.
	e, _ := newEngine(t, referenceCorpus)

	results, err := e.Search(context.Background(), "file", Options{})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_NoMatchAndEmptyQuery(t *testing.T) {
	e, _ := newEngine(t, referenceCorpus)

	tests := []string{"", "   ", "!!! ...", "nonexistentword"}
	for _, q := range tests {
		t.Run(q, func(t *testing.T) {
			results, err := e.Search(context.Background(), q, Options{})
			require.NoError(t, err)
			assert.NotNil(t, results)
			assert.Empty(t, results)
		})
	}
}

func TestSearch_TiesBrokenByPath(t *testing.T) {
	e, _ := newEngine(t, map[string]string{
		"/r/c.txt": "alpha",
		"/r/a.txt": "alpha",
		"/r/b.txt": "alpha",
		"/r/z.txt": "omega",
	})

	results, err := e.Search(context.Background(), "alpha", Options{})

	require.NoError(t, err)
	assert.Equal(t, []string{"/r/a.txt", "/r/b.txt", "/r/c.txt"}, paths(results))
}

func TestSearch_Deterministic(t *testing.T) {
	e, _ := newEngine(t, referenceCorpus, WithCacheSize(0))

	first, err := e.Search(context.Background(), "test another subdirectory", Options{})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := e.Search(context.Background(), "test another subdirectory", Options{})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSearch_Limit(t *testing.T) {
	e, _ := newEngine(t, referenceCorpus)

	results, err := e.Search(context.Background(), "test another subdirectory", Options{Limit: 2})

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_CacheFollowsGeneration(t *testing.T) {
	// Given: a cached result for generation 1
	m := metrics.New()
	e, src := newEngine(t, referenceCorpus, WithMetrics(m))
	first, err := e.Search(context.Background(), "another", Options{})
	require.NoError(t, err)
	require.Len(t, first, 1)

	_, err = e.Search(context.Background(), "another", Options{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("cached")))

	// When: a new corpus is published without the term
	idx := buildIndex(map[string]string{"/r/x.txt": "unrelated", "/r/y.txt": "words"})
	src.corpus = NewCorpus("/r", idx, false, 2)

	// Then: the stale cached result is not served
	results, err := e.Search(context.Background(), "another", Options{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_CachedResultsAreCopies(t *testing.T) {
	e, _ := newEngine(t, referenceCorpus)
	first, err := e.Search(context.Background(), "test", Options{})
	require.NoError(t, err)
	first[0].Path = "mutated"

	again, err := e.Search(context.Background(), "test", Options{})
	require.NoError(t, err)
	assert.Equal(t, "/r/file1.txt", again[0].Path)
}

func TestSearch_NotReady(t *testing.T) {
	e, err := NewEngine(&staticSource{})
	require.NoError(t, err)

	_, err = e.Search(context.Background(), "test", Options{})
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestSearch_EmptyCorpus(t *testing.T) {
	src := &staticSource{corpus: NewCorpus("/r", store.NewIndex(), false, 1)}
	e, err := NewEngine(src)
	require.NoError(t, err)

	results, err := e.Search(context.Background(), "anything", Options{})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_Cancelled(t *testing.T) {
	e, _ := newEngine(t, referenceCorpus)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Search(ctx, "test", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEngine_NilSource(t *testing.T) {
	_, err := NewEngine(nil)
	assert.Error(t, err)
}

func TestCorpus_TermFrequency(t *testing.T) {
	c := NewCorpus("/r", buildIndex(referenceCorpus), false, 1)

	assert.Equal(t, 2, c.TermFrequency("subdirectory", "/r/subdir/file3.txt"))
	assert.Equal(t, 0, c.TermFrequency("subdirectory", "/r/file1.txt"))
}
