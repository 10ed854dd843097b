package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	seekerrors "github.com/Aman-CERP/txtseek/internal/errors"
)

// defaultExcludeDirs are never descended into.
var defaultExcludeDirs = []string{
	"**/.git/**",
	"**/.hg/**",
	"**/.svn/**",
}

// Scanner discovers indexable documents.
type Scanner struct {
	fs   FS
	opts Options
}

// New creates a Scanner over fsys. A nil fsys means the host filesystem.
func New(fsys FS, opts Options) *Scanner {
	if fsys == nil {
		fsys = OSFS{}
	}
	return &Scanner{fs: fsys, opts: opts.withDefaults()}
}

// FS returns the collaborator the scanner reads through.
func (s *Scanner) FS() FS {
	return s.fs
}

// ResolveRoot returns the canonical absolute form of root: cleaned, with
// symlinks in the root itself resolved. It fails with InvalidRootError when
// root is missing or not a directory.
func ResolveRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", seekerrors.InvalidRootError(root, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", seekerrors.InvalidRootError(abs, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", seekerrors.InvalidRootError(abs, err)
	}
	if !info.IsDir() {
		return "", seekerrors.InvalidRootError(abs, fmt.Errorf("root path is not a directory"))
	}

	return resolved, nil
}

type pending struct {
	dir   string
	depth int
}

// Walk returns every eligible document under root, sorted by path.
// root must already be canonical (see ResolveRoot). Unlistable
// subdirectories are logged and skipped; an unlistable root is an error.
func (s *Scanner) Walk(ctx context.Context, root string) ([]Document, error) {
	var docs []Document
	stack := []pending{{dir: root}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := s.fs.List(cur.dir)
		if err != nil {
			if cur.dir == root {
				return nil, seekerrors.InvalidRootError(root, err)
			}
			slog.Warn("directory_list_failed",
				slog.String("dir", cur.dir),
				slog.String("error", err.Error()))
			continue
		}

		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

		// Push subdirectories in reverse so they pop in lexicographic order.
		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			path := filepath.Join(cur.dir, e.Name)
			rel, _ := filepath.Rel(root, path)

			switch {
			case e.IsSymlink:
				slog.Debug("symlink_skipped", slog.String("path", path))
			case e.IsDir:
				if s.shouldExcludeDir(rel) {
					continue
				}
				if cur.depth+1 > s.opts.MaxDepth {
					slog.Warn("max_depth_reached",
						slog.String("dir", path),
						slog.Int("max_depth", s.opts.MaxDepth))
					continue
				}
				stack = append(stack, pending{dir: path, depth: cur.depth + 1})
			default:
				if !s.eligible(rel) {
					continue
				}
				if e.Size > s.opts.MaxFileSize {
					slog.Debug("file_too_large",
						slog.String("path", path),
						slog.Int64("size", e.Size))
					continue
				}
				docs = append(docs, Document{Path: path, RelPath: rel, Size: e.Size})
			}
		}
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })

	slog.Debug("walk_complete",
		slog.String("root", root),
		slog.Int("documents", len(docs)))

	return docs, nil
}

// Eligible reports whether the absolute path under root would be indexed by
// Walk, ignoring size and depth. The watcher uses it to filter events.
func (s *Scanner) Eligible(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return false
	}
	if dir := filepath.Dir(rel); dir != "." && s.shouldExcludeDir(dir) {
		return false
	}
	return s.eligible(rel)
}

// ExcludedDir reports whether Walk would skip the directory at the absolute
// path under root.
func (s *Scanner) ExcludedDir(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	return s.shouldExcludeDir(rel)
}

func (s *Scanner) eligible(rel string) bool {
	if !HasExtension(rel, s.opts.Extensions) {
		return false
	}
	base := filepath.Base(rel)
	for _, pattern := range s.opts.ExcludePatterns {
		if matchFilePattern(base, rel, pattern) {
			return false
		}
	}
	return true
}

func (s *Scanner) shouldExcludeDir(rel string) bool {
	if s.opts.DataDir != "" && matchDirPattern(rel, s.opts.DataDir) {
		return true
	}
	for _, pattern := range defaultExcludeDirs {
		if matchDirPattern(rel, pattern) {
			return true
		}
	}
	for _, pattern := range s.opts.ExcludePatterns {
		if matchDirPattern(rel, pattern) {
			return true
		}
	}
	return false
}
