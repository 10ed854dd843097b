package watcher

import (
	"context"
	"log/slog"

	seekerrors "github.com/Aman-CERP/txtseek/internal/errors"
	"github.com/Aman-CERP/txtseek/internal/index"
	"github.com/Aman-CERP/txtseek/internal/metrics"
)

// IndexRefresher re-opens the current index.
type IndexRefresher interface {
	Refresh(ctx context.Context) (*index.OpenResult, error)
}

// Refresher applies event batches to an index.
type Refresher struct {
	index   IndexRefresher
	metrics *metrics.Metrics

	// OnRefresh, when set, is called after every refresh attempt.
	OnRefresh func(batch []FileEvent, res *index.OpenResult, err error)
}

// NewRefresher creates a Refresher. m may be nil.
func NewRefresher(idx IndexRefresher, m *metrics.Metrics) *Refresher {
	return &Refresher{index: idx, metrics: m}
}

// Run refreshes once per batch until ctx is done or events is closed.
// Refresh errors are logged and do not stop the loop.
func (r *Refresher) Run(ctx context.Context, events <-chan []FileEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-events:
			if !ok {
				return
			}
			r.Apply(ctx, batch)
		}
	}
}

// Apply refreshes the index for one batch.
func (r *Refresher) Apply(ctx context.Context, batch []FileEvent) {
	r.metrics.ObserveWatchBatch(len(batch))

	res, err := r.index.Refresh(ctx)
	if err != nil {
		slog.Error("watch_refresh_failed",
			append([]any{slog.Int("events", len(batch))}, seekerrors.LogAttrs(err)...)...)
	} else {
		slog.Info("watch_refresh",
			slog.Int("events", len(batch)),
			slog.String("reason", res.Reason),
			slog.Bool("rebuilt", res.Rebuilt),
			slog.Int("documents", res.Documents))
	}

	if r.OnRefresh != nil {
		r.OnRefresh(batch, res, err)
	}
}
