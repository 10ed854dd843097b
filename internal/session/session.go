// Package session keeps the state of an interactive search session: the
// current directory and the index opened for it.
package session

import (
	"context"
	"path/filepath"
	"sync"

	seekerrors "github.com/Aman-CERP/txtseek/internal/errors"
	"github.com/Aman-CERP/txtseek/internal/index"
	"github.com/Aman-CERP/txtseek/internal/scanner"
	"github.com/Aman-CERP/txtseek/internal/search"
)

// Opener opens the index for a root.
type Opener interface {
	Open(ctx context.Context, root string) (*index.OpenResult, error)
}

// Searcher answers queries against the published index.
type Searcher interface {
	Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error)
}

// Session is the current root plus the collaborators that serve it.
type Session struct {
	opener   Opener
	searcher Searcher
	limit    int

	mu   sync.RWMutex
	root string
}

// New creates a session with no root. limit caps results (0 = unlimited).
func New(opener Opener, searcher Searcher, limit int) *Session {
	return &Session{opener: opener, searcher: searcher, limit: limit}
}

// Root returns the current directory, or "" before the first Open.
func (s *Session) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Open makes root current and opens its index. On failure the previous
// root stays current.
func (s *Session) Open(ctx context.Context, root string) (*index.OpenResult, error) {
	res, err := s.opener.Open(ctx, root)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.root = res.Root
	s.mu.Unlock()
	return res, nil
}

// Resolve turns a cd argument into a directory path relative to the current
// root: ".." is the parent, "." the root itself, absolute paths are taken
// as is and anything else is joined to the root.
func (s *Session) Resolve(target string) string {
	root := s.Root()
	switch {
	case target == "..":
		return filepath.Dir(root)
	case target == ".":
		return root
	case filepath.IsAbs(target):
		return filepath.Clean(target)
	default:
		return filepath.Join(root, target)
	}
}

// Cd changes directory and re-indexes. Returns the new canonical root.
func (s *Session) Cd(ctx context.Context, target string) (*index.OpenResult, error) {
	if target == "" {
		return nil, seekerrors.New(seekerrors.ErrCodeInvalidInput, "no directory given", nil)
	}

	dir := s.Resolve(target)
	if _, err := scanner.ResolveRoot(dir); err != nil {
		return nil, err
	}
	return s.Open(ctx, dir)
}

// Search ranks the current root's documents for query.
func (s *Session) Search(ctx context.Context, query string) ([]search.Result, error) {
	return s.searcher.Search(ctx, query, search.Options{Limit: s.limit})
}
