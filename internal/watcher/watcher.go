package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Operation is the kind of change seen for a path.
type Operation int

const (
	// OpCreate means the path appeared.
	OpCreate Operation = iota
	// OpModify means the content changed.
	OpModify
	// OpDelete means the path is gone.
	OpDelete
	// OpRename means the path was moved away.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is one filesystem change.
type FileEvent struct {
	// Path is absolute.
	Path      string
	Operation Operation
	IsDir     bool
	Timestamp time.Time
}

// Options configures a Watcher.
type Options struct {
	// DebounceWindow is the quiet period before a batch is emitted.
	// Default: 200ms
	DebounceWindow time.Duration

	// EventBufferSize is the number of batches buffered for the consumer.
	// Default: 16
	EventBufferSize int
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  200 * time.Millisecond,
		EventBufferSize: 16,
	}
}

// WithDefaults fills zero values from DefaultOptions.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.EventBufferSize <= 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	return o
}

// Filter decides which paths are relevant. *scanner.Scanner implements it.
type Filter interface {
	Eligible(root, path string) bool
	ExcludedDir(root, path string) bool
}

// Watcher delivers debounced batches of relevant changes under one root.
type Watcher struct {
	fsw       *fsnotify.Watcher
	filter    Filter
	debouncer *Debouncer
	events    chan []FileEvent
	errors    chan error
	stopCh    chan struct{}
	opts      Options

	mu       sync.Mutex
	root     string
	stopped  bool
	dropped  atomic.Uint64
	stopOnce sync.Once
}

// New creates a Watcher. It fails when the platform cannot provide
// filesystem notifications.
func New(filter Filter, opts Options) (*Watcher, error) {
	opts = opts.WithDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsw:       fsw,
		filter:    filter,
		debouncer: NewDebouncer(opts.DebounceWindow),
		events:    make(chan []FileEvent, opts.EventBufferSize),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
		opts:      opts,
	}, nil
}

// Start watches root recursively and blocks until ctx is done or Stop is
// called. root must be canonical.
func (w *Watcher) Start(ctx context.Context, root string) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return errors.New("watcher stopped")
	}
	w.root = root
	w.mu.Unlock()

	if err := w.addTree(root); err != nil {
		return fmt.Errorf("add directories to watcher: %w", err)
	}

	go w.forward(ctx)

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

// addTree registers dir and every non-excluded directory below it. Symlinks
// are not followed, matching the scanner.
func (w *Watcher) addTree(dir string) error {
	if err := w.fsw.Add(dir); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("watch_list_failed", slog.String("dir", dir), slog.String("error", err.Error()))
		return nil
	}
	for _, e := range entries {
		if !e.IsDir() || e.Type()&os.ModeSymlink != 0 {
			continue
		}
		sub := filepath.Join(dir, e.Name())
		if w.filter.ExcludedDir(w.root, sub) {
			continue
		}
		if err := w.addTree(sub); err != nil {
			slog.Debug("watch_add_failed", slog.String("dir", sub), slog.String("error", err.Error()))
		}
	}
	return nil
}

func (w *Watcher) handle(event fsnotify.Event) {
	info, statErr := os.Lstat(event.Name)
	isDir := statErr == nil && info.IsDir()

	if isDir {
		if w.filter.ExcludedDir(w.root, event.Name) {
			return
		}
		// A new directory may already hold documents; watch it and let the
		// refresh pick them up.
		if event.Has(fsnotify.Create) {
			if err := w.addTree(event.Name); err != nil {
				w.emitError(err)
			}
			w.debouncer.Add(FileEvent{Path: event.Name, Operation: OpCreate, IsDir: true, Timestamp: time.Now()})
		}
		return
	}

	var op Operation
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpModify
	case event.Has(fsnotify.Remove):
		op = OpDelete
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		// Chmod alone never changes content.
		return
	}

	// A removed directory cannot be stat'ed; its documents are covered by
	// fingerprint validation on refresh, so only file paths are filtered.
	if !w.filter.Eligible(w.root, event.Name) {
		return
	}

	w.debouncer.Add(FileEvent{Path: event.Name, Operation: op, Timestamp: time.Now()})
}

func (w *Watcher) forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case batch, ok := <-w.debouncer.Output():
			if !ok {
				return
			}
			if len(batch) == 0 {
				continue
			}
			select {
			case w.events <- batch:
			default:
				w.dropped.Add(1)
				slog.Warn("watch_batch_dropped", slog.Int("batch_size", len(batch)))
			}
		}
	}
}

func (w *Watcher) emitError(err error) {
	select {
	case w.errors <- err:
	default:
		slog.Warn("watch_error_dropped", slog.String("error", err.Error()))
	}
}

// Events returns debounced batches. It is never closed, so consumers should
// also watch their context.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.events
}

// Errors returns non-fatal watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// DroppedBatches counts batches discarded because the consumer lagged.
func (w *Watcher) DroppedBatches() uint64 {
	return w.dropped.Load()
}

// Stop releases the fsnotify watcher. Safe to call multiple times.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()

		close(w.stopCh)
		w.debouncer.Stop()
		err = w.fsw.Close()
	})
	return err
}
