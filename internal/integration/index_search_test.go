package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/txtseek/internal/config"
	"github.com/Aman-CERP/txtseek/internal/index"
	"github.com/Aman-CERP/txtseek/internal/search"
	"github.com/Aman-CERP/txtseek/internal/store"
)

// These tests run the whole flow from walking a tree to ranked results,
// across separate managers the way separate CLI runs would.

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func newStack(t *testing.T, backend store.Backend) (*index.Manager, *search.Engine) {
	t.Helper()
	cfg := config.NewConfig()
	mgr := index.NewManager(index.Options{
		Backend: backend,
		Scanner: cfg.ScannerOptions(),
	}, index.Dependencies{})
	engine, err := search.NewEngine(mgr, search.WithCacheSize(cfg.Search.CacheSize))
	require.NoError(t, err)
	return mgr, engine
}

func paths(results []search.Result, root string) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		rel, _ := filepath.Rel(root, r.Path)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestIndexSearch_AcrossRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, backend := range store.Backends() {
		t.Run(string(backend), func(t *testing.T) {
			ctx := context.Background()
			root, err := filepath.EvalSymlinks(t.TempDir())
			require.NoError(t, err)
			writeFiles(t, root, map[string]string{
				"file1.txt":        "This is a sample document.",
				"file2.txt":        "Another sample document.",
				"subdir/file3.txt": "Document in a subdirectory. Sample!",
				"notes.md":         "sample sample sample",
			})

			// Given: a first run that builds and saves the index
			mgr, engine := newStack(t, backend)
			res, err := mgr.Open(ctx, root)
			require.NoError(t, err)
			assert.True(t, res.Rebuilt)
			assert.Equal(t, 3, res.Documents)

			results, err := engine.Search(ctx, "subdirectory", search.Options{})
			require.NoError(t, err)
			assert.Equal(t, []string{"subdir/file3.txt"}, paths(results, root))

			// When: a second run opens the unchanged tree
			mgr2, engine2 := newStack(t, backend)
			res, err = mgr2.Open(ctx, root)
			require.NoError(t, err)

			// Then: the snapshot is reused with identical results
			assert.False(t, res.Rebuilt)
			assert.Equal(t, index.ReasonCacheHit, res.Reason)
			again, err := engine2.Search(ctx, "subdirectory", search.Options{})
			require.NoError(t, err)
			assert.Equal(t, results, again)

			// When: a document changes before a third run
			writeFiles(t, root, map[string]string{"file2.txt": "Another subdirectory mention."})
			mgr3, engine3 := newStack(t, backend)
			res, err = mgr3.Open(ctx, root)
			require.NoError(t, err)

			// Then: the index is rebuilt and both documents rank
			assert.Equal(t, index.ReasonContentChanged, res.Reason)
			results, err = engine3.Search(ctx, "subdirectory", search.Options{})
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"file2.txt", "subdir/file3.txt"}, paths(results, root))
		})
	}
}

func TestIndexSearch_TermInEveryDocument(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.txt": "sample one",
		"b.txt": "sample two",
	})

	mgr, engine := newStack(t, store.BackendJSON)
	_, err := mgr.Open(ctx, root)
	require.NoError(t, err)

	// A term found everywhere has zero weight, so nothing is listed.
	results, err := engine.Search(ctx, "sample", search.Options{})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = engine.Search(ctx, "sample two", search.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt"}, paths(results, root))
}
