package session

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	seekerrors "github.com/Aman-CERP/txtseek/internal/errors"
	"github.com/Aman-CERP/txtseek/internal/index"
	"github.com/Aman-CERP/txtseek/internal/output"
	"github.com/Aman-CERP/txtseek/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	return resolved
}

func newSession(t *testing.T, limit int) *Session {
	t.Helper()
	mgr := index.NewManager(index.Options{DataDir: t.TempDir()}, index.Dependencies{})
	engine, err := search.NewEngine(mgr)
	require.NoError(t, err)
	return New(mgr, engine, limit)
}

var referenceFiles = map[string]string{
	"file1.txt":        "This is a test file. Test.",
	"file2.txt":        "Another file for testing.  Another.",
	"subdir/file3.txt": "Subdirectory test file. Subdirectory.",
}

func TestSession_OpenAndSearch(t *testing.T) {
	root := writeTree(t, referenceFiles)
	s := newSession(t, 0)
	assert.Empty(t, s.Root())

	_, err := s.Open(context.Background(), root)
	require.NoError(t, err)
	results, err := s.Search(context.Background(), "test")

	require.NoError(t, err)
	assert.Equal(t, root, s.Root())
	require.Len(t, results, 2)
	assert.Equal(t, filepath.Join(root, "file1.txt"), results[0].Path)
	assert.Equal(t, filepath.Join(root, "subdir", "file3.txt"), results[1].Path)
}

func TestSession_Limit(t *testing.T) {
	root := writeTree(t, referenceFiles)
	s := newSession(t, 1)
	_, err := s.Open(context.Background(), root)
	require.NoError(t, err)

	results, err := s.Search(context.Background(), "test")

	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSession_Resolve(t *testing.T) {
	root := writeTree(t, referenceFiles)
	s := newSession(t, 0)
	_, err := s.Open(context.Background(), root)
	require.NoError(t, err)

	tests := []struct {
		target string
		want   string
	}{
		{"..", filepath.Dir(root)},
		{".", root},
		{"subdir", filepath.Join(root, "subdir")},
		{root, root},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Resolve(tt.target), tt.target)
	}
}

func TestSession_Cd(t *testing.T) {
	root := writeTree(t, referenceFiles)
	s := newSession(t, 0)
	_, err := s.Open(context.Background(), root)
	require.NoError(t, err)

	// When: moving into a subdirectory
	res, err := s.Cd(context.Background(), "subdir")

	// Then: the index covers only that subtree
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "subdir"), s.Root())
	assert.Equal(t, 1, res.Documents)

	// And: back up again
	_, err = s.Cd(context.Background(), "..")
	require.NoError(t, err)
	assert.Equal(t, root, s.Root())
}

func TestSession_CdMissingKeepsRoot(t *testing.T) {
	root := writeTree(t, referenceFiles)
	s := newSession(t, 0)
	_, err := s.Open(context.Background(), root)
	require.NoError(t, err)

	_, err = s.Cd(context.Background(), "nope")

	assert.True(t, seekerrors.HasCode(err, seekerrors.ErrCodeInvalidRoot))
	assert.Equal(t, root, s.Root())

	_, err = s.Cd(context.Background(), "")
	assert.True(t, seekerrors.HasCode(err, seekerrors.ErrCodeInvalidInput))
}

func TestShell_Commands(t *testing.T) {
	// Given: a shell over the reference tree
	root := writeTree(t, referenceFiles)
	s := newSession(t, 0)
	_, err := s.Open(context.Background(), root)
	require.NoError(t, err)

	input := strings.Join([]string{
		"search test",
		"",
		"search",
		"cd",
		"cd missing",
		"bogus command",
		"cd subdir",
		"search test",
		"exit",
		"search never reached",
	}, "\n")
	out := &bytes.Buffer{}

	// When: running the script
	require.NoError(t, NewShell(s, strings.NewReader(input), out).Run(context.Background()))

	// Then: each command produced its response
	got := out.String()
	assert.Contains(t, got, "Welcome to txtseek")
	assert.Contains(t, got, "["+root+"]> ")
	assert.Contains(t, got, "file1.txt:  0.8109\n")
	assert.Contains(t, got, "subdir/file3.txt:  0.4055\n")
	assert.Contains(t, got, "type something\n")
	assert.Contains(t, got, "Type what you want to search\n")
	assert.Contains(t, got, "Select directory\n")
	assert.Contains(t, got, "Directory 'missing' is not found\n")
	assert.Contains(t, got, "Undefined command: 'bogus command'\n")
	assert.Contains(t, got, "["+filepath.Join(root, "subdir")+"]> ")
	// Inside subdir every term occurs in all documents, so idf is 0.
	assert.Contains(t, got, output.NoResults+"\n")
	assert.Contains(t, got, "Exiting\n")
	assert.Equal(t, 1, strings.Count(got, "file1.txt:"))
}

func TestShell_EndOfInput(t *testing.T) {
	root := writeTree(t, referenceFiles)
	s := newSession(t, 0)
	_, err := s.Open(context.Background(), root)
	require.NoError(t, err)

	err = NewShell(s, strings.NewReader("help\n"), &bytes.Buffer{}).Run(context.Background())

	assert.NoError(t, err)
}

func TestShell_Cancelled(t *testing.T) {
	root := writeTree(t, referenceFiles)
	s := newSession(t, 0)
	_, err := s.Open(context.Background(), root)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A pipe that never delivers input.
	pr, pw := io.Pipe()
	defer pw.Close()

	err = NewShell(s, pr, &bytes.Buffer{}).Run(ctx)

	assert.NoError(t, err)
}

func TestShell_ExitReleasesReader(t *testing.T) {
	// Given: an open session reading from a pipe that stays open
	root := writeTree(t, referenceFiles)
	s := newSession(t, 0)
	_, err := s.Open(context.Background(), root)
	require.NoError(t, err)

	pr, pw := io.Pipe()
	defer pw.Close()
	baseline := runtime.NumGoroutine()

	written := make(chan struct{})
	go func() {
		defer close(written)
		_, _ = io.WriteString(pw, "exit\n")
		// Read by the scanner after the shell has already returned.
		_, _ = io.WriteString(pw, "help\n")
	}()

	// When: the shell exits
	err = NewShell(s, pr, &bytes.Buffer{}).Run(context.Background())
	require.NoError(t, err)
	<-written

	// Then: the reader goroutine does not stay blocked on the line it read
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= baseline
	}, 2*time.Second, 10*time.Millisecond)
}
