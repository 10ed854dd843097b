package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_NoSnapshot(t *testing.T) {
	root := writeTree(t, referenceFiles)
	m := NewManager(Options{}, Dependencies{})

	st, err := m.Status(context.Background(), root)

	require.NoError(t, err)
	assert.False(t, st.Exists)
	assert.True(t, st.Stale)
	assert.Nil(t, m.Current())
}

func TestStatus_TracksChanges(t *testing.T) {
	// Given: an indexed tree
	root := writeTree(t, referenceFiles)
	m := NewManager(Options{}, Dependencies{})
	_, err := m.Open(context.Background(), root)
	require.NoError(t, err)

	st, err := m.Status(context.Background(), root)
	require.NoError(t, err)
	assert.True(t, st.Exists)
	assert.False(t, st.Stale)
	assert.Equal(t, 3, st.Documents)
	assert.False(t, st.CreatedAt.IsZero())

	// When: one file changes and another appears
	writeFile(t, root, "file1.txt", "changed")
	writeFile(t, root, "extra.txt", "new")
	st, err = m.Status(context.Background(), root)

	// Then: both are reported; only the change makes it stale
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "file1.txt")}, st.Changed)
	assert.Equal(t, []string{filepath.Join(root, "extra.txt")}, st.Added)
	assert.True(t, st.Stale)
}

func TestStatus_NewFilesOnly(t *testing.T) {
	tests := []struct {
		detect bool
		stale  bool
	}{
		{detect: false, stale: false},
		{detect: true, stale: true},
	}

	for _, tt := range tests {
		root := writeTree(t, referenceFiles)
		m := NewManager(Options{DetectNewFiles: tt.detect}, Dependencies{})
		_, err := m.Open(context.Background(), root)
		require.NoError(t, err)
		writeFile(t, root, "extra.txt", "new")

		st, err := m.Status(context.Background(), root)

		require.NoError(t, err)
		assert.Equal(t, tt.stale, st.Stale)
	}
}

func TestStatus_CorruptSnapshot(t *testing.T) {
	root := writeTree(t, referenceFiles)
	m := NewManager(Options{}, Dependencies{})
	res, err := m.Open(context.Background(), root)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(res.SnapshotPath, []byte("garbage"), 0o644))

	st, err := m.Status(context.Background(), root)

	require.NoError(t, err)
	assert.True(t, st.Exists)
	assert.True(t, st.Corrupt)
	assert.True(t, st.Stale)
}
