// Package scanner discovers indexable text documents under a root directory.
// It walks the tree with an explicit worklist, never follows symbolic links,
// and reads through an FS collaborator so tests can supply an in-memory tree.
package scanner

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize is the default maximum document size (10MB).
const DefaultMaxFileSize = 10 * 1024 * 1024

// DefaultMaxDepth bounds directory nesting below the root.
const DefaultMaxDepth = 64

// DefaultExtensions are the recognized plain-text extensions.
var DefaultExtensions = []string{".txt"}

// Entry is one child of a listed directory.
type Entry struct {
	Name      string
	IsDir     bool
	IsSymlink bool
	Size      int64
}

// FS is the directory collaborator: list a directory, read a file.
type FS interface {
	List(dir string) ([]Entry, error)
	Read(path string) ([]byte, error)
}

// OSFS is the host filesystem.
type OSFS struct{}

// List returns the entries of dir sorted by name. Symlinks are reported as
// such and never resolved.
func (OSFS) List(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, d := range dirEntries {
		e := Entry{
			Name:      d.Name(),
			IsDir:     d.IsDir(),
			IsSymlink: d.Type()&os.ModeSymlink != 0,
		}
		if !e.IsDir && !e.IsSymlink {
			if info, err := d.Info(); err == nil {
				e.Size = info.Size()
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Read returns the full content of path.
func (OSFS) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Document is a discovered file eligible for indexing.
type Document struct {
	// Path is the absolute path under the canonical root.
	Path string
	// RelPath is Path relative to the root, for display and pattern matching.
	RelPath string
	Size    int64
}

// Options configures the scanner.
type Options struct {
	// Extensions lists recognized extensions, compared case-insensitively.
	Extensions []string

	// ExcludePatterns uses the dir/**, **/name/**, *.ext, prefix* dialect.
	ExcludePatterns []string

	// DataDir is the name of the per-root data directory, always excluded.
	DataDir string

	// MaxFileSize skips larger files (0 = DefaultMaxFileSize).
	MaxFileSize int64

	// MaxDepth bounds nesting below the root (0 = DefaultMaxDepth).
	MaxDepth int
}

func (o Options) withDefaults() Options {
	if len(o.Extensions) == 0 {
		o.Extensions = DefaultExtensions
	}
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = DefaultMaxFileSize
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

// HasExtension reports whether name ends in one of exts (case-insensitive).
func HasExtension(name string, exts []string) bool {
	ext := filepath.Ext(name)
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
