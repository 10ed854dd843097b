// Package index owns the lifecycle of the in-memory index for one root:
// loading a snapshot when it is still valid, rebuilding when it is not, and
// publishing the result to readers with a single pointer swap.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	seekerrors "github.com/Aman-CERP/txtseek/internal/errors"
	"github.com/Aman-CERP/txtseek/internal/metrics"
	"github.com/Aman-CERP/txtseek/internal/scanner"
	"github.com/Aman-CERP/txtseek/internal/search"
	"github.com/Aman-CERP/txtseek/internal/store"
	"github.com/Aman-CERP/txtseek/internal/ui"
)

// DataDirName is the per-root directory holding the snapshot.
const DataDirName = ".txtseek"

// Reasons reported in OpenResult.
const (
	ReasonCacheHit           = "cache_hit"
	ReasonNoSnapshot         = "no_snapshot"
	ReasonCorruptSnapshot    = "corrupt_snapshot"
	ReasonSnapshotUnreadable = "snapshot_unreadable"
	ReasonRootChanged        = "root_changed"
	ReasonContentChanged     = "content_changed"
	ReasonNewFiles           = "new_files"
	ReasonForced             = "forced"
)

// Options configures a Manager.
type Options struct {
	// DataDir overrides the snapshot location. When set, each root gets its
	// own subdirectory named after a hash of the root path. When empty the
	// snapshot lives in <root>/.txtseek.
	DataDir string

	// Backend selects the snapshot format. Empty means keep whatever format
	// already exists in the data directory, falling back to the default.
	Backend store.Backend

	Scanner scanner.Options

	// Workers bounds parallel document reads (0 = one per CPU up to 8).
	Workers int

	IDFSmoothing bool

	// DetectNewFiles makes a cache hit also require that no eligible file
	// was added since the snapshot was taken.
	DetectNewFiles bool
}

// Dependencies are the optional collaborators of a Manager.
type Dependencies struct {
	// FS is the directory collaborator (nil = host filesystem).
	FS scanner.FS
	// Renderer receives build progress (nil = discard).
	Renderer ui.Renderer
	// Metrics records opens and builds (nil = disabled).
	Metrics *metrics.Metrics
}

// OpenResult describes how an index became ready.
type OpenResult struct {
	Root         string
	Rebuilt      bool
	Reason       string
	Documents    int
	Terms        int
	ReadErrors   int
	Duration     time.Duration
	SnapshotPath string
	Backend      store.Backend
}

// Manager builds, validates and publishes indexes. It implements
// search.Source. Opens and rebuilds are serialized; Current never blocks.
type Manager struct {
	opts     Options
	scanner  *scanner.Scanner
	fs       scanner.FS
	renderer ui.Renderer
	metrics  *metrics.Metrics

	mu         sync.Mutex
	generation uint64
	current    atomic.Pointer[search.Corpus]
	refresh    singleflight.Group
}

var _ search.Source = (*Manager)(nil)

// NewManager creates a Manager with nothing published.
func NewManager(opts Options, deps Dependencies) *Manager {
	if opts.Scanner.DataDir == "" {
		opts.Scanner.DataDir = DataDirName
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers()
	}

	renderer := deps.Renderer
	if renderer == nil {
		renderer = ui.NopRenderer{}
	}

	sc := scanner.New(deps.FS, opts.Scanner)
	return &Manager{
		opts:     opts,
		scanner:  sc,
		fs:       sc.FS(),
		renderer: renderer,
		metrics:  deps.Metrics,
	}
}

// Current returns the published corpus, or nil before the first open.
func (m *Manager) Current() *search.Corpus {
	return m.current.Load()
}

// Root returns the canonical root of the published corpus.
func (m *Manager) Root() string {
	if c := m.current.Load(); c != nil {
		return c.Root
	}
	return ""
}

// Scanner returns the scanner used for walks, so callers can apply the same
// eligibility rules.
func (m *Manager) Scanner() *scanner.Scanner {
	return m.scanner
}

// DataDir returns the snapshot directory for a canonical root.
func (m *Manager) DataDir(root string) string {
	if m.opts.DataDir == "" {
		return filepath.Join(root, DataDirName)
	}
	sum := sha256.Sum256([]byte(root))
	return filepath.Join(m.opts.DataDir, hex.EncodeToString(sum[:])[:16])
}

func (m *Manager) backend(dataDir string) store.Backend {
	if m.opts.Backend != "" {
		return m.opts.Backend
	}
	if b := store.DetectBackend(dataDir); b != "" {
		return b
	}
	return store.DefaultBackend
}

// Open makes root the current index. A snapshot whose root and fingerprints
// still match is loaded without reading document contents beyond hashing;
// anything else triggers a full rebuild.
func (m *Manager) Open(ctx context.Context, root string) (*OpenResult, error) {
	return m.open(ctx, root, openMode{detectNew: m.opts.DetectNewFiles})
}

// Rebuild reindexes root from scratch, ignoring any snapshot.
func (m *Manager) Rebuild(ctx context.Context, root string) (*OpenResult, error) {
	return m.open(ctx, root, openMode{force: true})
}

// Refresh re-opens the current root. Unlike Open it always treats added
// documents as a reason to rebuild. Concurrent calls share one open.
func (m *Manager) Refresh(ctx context.Context) (*OpenResult, error) {
	root := m.Root()
	if root == "" {
		return nil, seekerrors.New(seekerrors.ErrCodeInvalidInput, "no index is open", nil)
	}

	v, err, _ := m.refresh.Do(root, func() (any, error) {
		return m.open(ctx, root, openMode{detectNew: true})
	})
	if err != nil {
		return nil, err
	}
	return v.(*OpenResult), nil
}

type openMode struct {
	force     bool
	detectNew bool
}

func (m *Manager) open(ctx context.Context, root string, mode openMode) (*OpenResult, error) {
	start := time.Now()

	canon, err := scanner.ResolveRoot(root)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dataDir := m.DataDir(canon)
	backend := m.backend(dataDir)
	result := &OpenResult{
		Root:         canon,
		SnapshotPath: store.SnapshotPath(dataDir, backend),
		Backend:      backend,
	}

	// Without a usable data directory the index still works in memory.
	st, err := store.OpenSnapshotStore(dataDir, backend)
	if err != nil {
		slog.Warn("snapshot_store_unavailable",
			slog.String("data_dir", dataDir),
			slog.String("error", err.Error()))
		st = nil
	} else {
		defer func() { _ = st.Close() }()
	}

	var idx *store.Index
	reason := ReasonForced
	if !mode.force {
		reason = ReasonSnapshotUnreadable
		if st != nil {
			idx, reason, err = m.validate(ctx, st, canon, mode.detectNew)
			if err != nil {
				return nil, err
			}
		}
	}

	if idx == nil {
		m.renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageScanning, Message: canon})
		built, readErrors, err := m.build(ctx, canon)
		if err != nil {
			return nil, err
		}
		idx = built
		result.Rebuilt = true
		result.ReadErrors = readErrors
	}
	result.Reason = reason

	// Publish before saving so a failed save still leaves a usable index.
	m.publish(canon, idx)

	if result.Rebuilt && st != nil {
		m.renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageSaving, Message: st.Path()})
		if err := st.Save(ctx, store.NewSnapshot(canon, idx)); err != nil {
			slog.Warn("snapshot_save_failed",
				append([]any{slog.String("path", st.Path())}, seekerrors.LogAttrs(err)...)...)
		}
	}

	result.Documents = idx.DocumentCount()
	result.Terms = idx.TermCount()
	result.Duration = time.Since(start)

	m.metrics.ObserveOpen(result.Reason, result.Rebuilt, result.Duration,
		result.Documents, result.Terms, result.ReadErrors)
	m.renderer.Complete(ui.CompletionStats{
		Documents:  result.Documents,
		Terms:      result.Terms,
		ReadErrors: result.ReadErrors,
		Duration:   result.Duration,
		Rebuilt:    result.Rebuilt,
		Reason:     result.Reason,
	})

	slog.Info("index_open",
		slog.String("root", canon),
		slog.String("reason", result.Reason),
		slog.Bool("rebuilt", result.Rebuilt),
		slog.Int("documents", result.Documents),
		slog.Int("terms", result.Terms),
		slog.Int("read_errors", result.ReadErrors),
		slog.Int64("duration_ms", result.Duration.Milliseconds()))

	return result, nil
}

// validate loads the snapshot and returns its index when it can be reused.
// A nil index comes with the reason a rebuild is needed.
func (m *Manager) validate(ctx context.Context, st store.SnapshotStore, root string, detectNew bool) (*store.Index, string, error) {
	snap, err := st.Load(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", ctxErr
		}
		if seekerrors.HasCode(err, seekerrors.ErrCodeCorruptSnapshot) {
			slog.Warn("snapshot_corrupt", seekerrors.LogAttrs(err)...)
			return nil, ReasonCorruptSnapshot, nil
		}
		slog.Warn("snapshot_unreadable", seekerrors.LogAttrs(err)...)
		return nil, ReasonSnapshotUnreadable, nil
	}
	if snap == nil {
		return nil, ReasonNoSnapshot, nil
	}
	if snap.Root != root {
		slog.Debug("snapshot_root_mismatch",
			slog.String("snapshot_root", snap.Root),
			slog.String("root", root))
		return nil, ReasonRootChanged, nil
	}

	idx, err := snap.ToIndex()
	if err != nil {
		slog.Warn("snapshot_corrupt", seekerrors.LogAttrs(seekerrors.CorruptSnapshotError(st.Path(), err))...)
		return nil, ReasonCorruptSnapshot, nil
	}

	changed, err := m.changedDocuments(ctx, idx)
	if err != nil {
		return nil, "", err
	}
	if len(changed) > 0 {
		slog.Debug("snapshot_stale",
			slog.Int("changed", len(changed)),
			slog.String("first", changed[0]))
		return nil, ReasonContentChanged, nil
	}

	if detectNew {
		added, err := m.newDocuments(ctx, root, idx)
		if err != nil {
			return nil, "", err
		}
		if len(added) > 0 {
			slog.Debug("snapshot_missing_files",
				slog.Int("added", len(added)),
				slog.String("first", added[0]))
			return nil, ReasonNewFiles, nil
		}
	}

	return idx, ReasonCacheHit, nil
}

func (m *Manager) publish(root string, idx *store.Index) {
	m.generation++
	m.current.Store(search.NewCorpus(root, idx, m.opts.IDFSmoothing, m.generation))
}
