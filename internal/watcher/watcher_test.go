package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Aman-CERP/txtseek/internal/index"
	"github.com/Aman-CERP/txtseek/internal/metrics"
	"github.com/Aman-CERP/txtseek/internal/scanner"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempRoot(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return root
}

func startWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	sc := scanner.New(nil, scanner.Options{DataDir: index.DataDirName})
	w, err := New(sc, Options{DebounceWindow: 50 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Start(ctx, root)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Stop()
	})

	// Give fsnotify time to register the tree.
	time.Sleep(100 * time.Millisecond)
	return w
}

func TestWatcher_EmitsEligibleChanges(t *testing.T) {
	// Given: a watched root
	root := tempRoot(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, index.DataDirName), 0o755))
	w := startWatcher(t, root)

	// When: a document, a non-document and a data file are written
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, index.DataDirName, "snapshot.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "doc.txt"), []byte("hello"), 0o644))

	// Then: only the document is reported
	batch := receive(t, w.Events())
	require.Len(t, batch, 1)
	assert.Equal(t, filepath.Join(root, "doc.txt"), batch[0].Path)
	assert.Equal(t, OpCreate, batch[0].Operation)
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := tempRoot(t)
	w := startWatcher(t, root)

	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	batch := receive(t, w.Events())
	assert.True(t, batch[0].IsDir)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "a.txt"), []byte("a"), 0o644))

	batch = receive(t, w.Events())
	require.Len(t, batch, 1)
	assert.Equal(t, filepath.Join(sub, "a.txt"), batch[0].Path)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := New(scanner.New(nil, scanner.Options{}), Options{})
	require.NoError(t, err)

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
	assert.Error(t, w.Start(context.Background(), tempRoot(t)))
}

type fakeRefresher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeRefresher) Refresh(ctx context.Context) (*index.OpenResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &index.OpenResult{Reason: index.ReasonContentChanged, Rebuilt: true}, nil
}

func TestRefresher_OneRefreshPerBatch(t *testing.T) {
	// Given: two queued batches
	fake := &fakeRefresher{}
	m := metrics.New()
	r := NewRefresher(fake, m)
	var seen []int
	r.OnRefresh = func(batch []FileEvent, res *index.OpenResult, err error) {
		assert.NoError(t, err)
		seen = append(seen, len(batch))
	}

	events := make(chan []FileEvent, 2)
	events <- []FileEvent{{Path: "/r/a.txt"}, {Path: "/r/b.txt"}}
	events <- []FileEvent{{Path: "/r/c.txt"}}
	close(events)

	// When: running until the channel closes
	r.Run(context.Background(), events)

	// Then: each batch triggered one refresh
	assert.Equal(t, 2, fake.calls)
	assert.Equal(t, []int{2, 1}, seen)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.WatchEventsTotal))
}

func TestRefresher_ErrorsDoNotStopLoop(t *testing.T) {
	fake := &fakeRefresher{err: errors.New("disk gone")}
	r := NewRefresher(fake, nil)
	var errs int
	r.OnRefresh = func(_ []FileEvent, _ *index.OpenResult, err error) {
		if err != nil {
			errs++
		}
	}

	events := make(chan []FileEvent, 2)
	events <- []FileEvent{{Path: "/r/a.txt"}}
	events <- []FileEvent{{Path: "/r/b.txt"}}
	close(events)
	r.Run(context.Background(), events)

	assert.Equal(t, 2, errs)
}

func TestRefresher_EndToEnd(t *testing.T) {
	// Given: an opened index under watch
	root := tempRoot(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha"), 0o644))
	mgr := index.NewManager(index.Options{}, index.Dependencies{})
	_, err := mgr.Open(context.Background(), root)
	require.NoError(t, err)

	w := startWatcher(t, root)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	refreshed := make(chan *index.OpenResult, 4)
	r := NewRefresher(mgr, nil)
	r.OnRefresh = func(_ []FileEvent, res *index.OpenResult, err error) {
		if err == nil {
			refreshed <- res
		}
	}
	go r.Run(ctx, w.Events())

	// When: a new document appears
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("beta"), 0o644))

	// Then: the index picks it up
	select {
	case res := <-refreshed:
		assert.True(t, res.Rebuilt)
	case <-time.After(5 * time.Second):
		t.Fatal("no refresh")
	}
	assert.Equal(t, 1, mgr.Current().TermFrequency("beta", filepath.Join(root, "b.txt")))
}
