package index

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	seekerrors "github.com/Aman-CERP/txtseek/internal/errors"
	"github.com/Aman-CERP/txtseek/internal/fingerprint"
	"github.com/Aman-CERP/txtseek/internal/store"
	"github.com/Aman-CERP/txtseek/internal/tokenizer"
	"github.com/Aman-CERP/txtseek/internal/ui"
)

const maxDefaultWorkers = 8

func defaultWorkers() int {
	return min(runtime.NumCPU(), maxDefaultWorkers)
}

type docResult struct {
	fingerprint string
	freq        map[string]int
	err         error
}

// build walks root and indexes every eligible document. Unreadable documents
// are tracked with the Failed fingerprint and no terms, and counted in the
// returned read error total.
func (m *Manager) build(ctx context.Context, root string) (*store.Index, int, error) {
	docs, err := m.scanner.Walk(ctx, root)
	if err != nil {
		return nil, 0, err
	}

	total := len(docs)
	step := max(1, total/20)
	results := make([]docResult, total)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := fingerprint.File(m.fs, doc.Path)
			if err != nil {
				results[i] = docResult{fingerprint: fingerprint.Failed, err: err}
			} else {
				results[i] = docResult{
					fingerprint: res.Fingerprint,
					freq:        tokenizer.Frequencies(tokenizer.Terms(string(res.Content))),
				}
			}

			if n := int(done.Add(1)); n%step == 0 || n == total {
				m.renderer.UpdateProgress(ui.ProgressEvent{
					Stage:   ui.StageReading,
					Current: n,
					Total:   total,
					Message: doc.RelPath,
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	m.renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageIndexing, Message: root})

	// Merge in walk order so the result does not depend on scheduling.
	idx := store.NewIndex()
	readErrors := 0
	for i, doc := range docs {
		r := results[i]
		if r.err != nil {
			readErrors++
			slog.Warn("document_unreadable", seekerrors.LogAttrs(r.err)...)
			m.renderer.AddError(ui.ErrorEvent{File: doc.RelPath, Err: r.err, IsWarn: true})
		}
		idx.AddDocument(doc.Path, r.fingerprint, r.freq)
	}

	return idx, readErrors, nil
}

// changedDocuments returns the tracked documents whose current fingerprint
// differs from the recorded one, in path order.
func (m *Manager) changedDocuments(ctx context.Context, idx *store.Index) ([]string, error) {
	docs := idx.Documents()
	stale := make([]bool, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recorded, _ := idx.Fingerprint(doc)
			fp, exists := fingerprint.Current(m.fs, doc)
			stale[i] = !exists || fp != recorded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var changed []string
	for i, doc := range docs {
		if stale[i] {
			changed = append(changed, doc)
		}
	}
	return changed, nil
}

// newDocuments returns eligible documents under root that idx does not track.
func (m *Manager) newDocuments(ctx context.Context, root string, idx *store.Index) ([]string, error) {
	docs, err := m.scanner.Walk(ctx, root)
	if err != nil {
		return nil, err
	}

	var added []string
	for _, doc := range docs {
		if _, ok := idx.Fingerprint(doc.Path); !ok {
			added = append(added, doc.Path)
		}
	}
	slices.Sort(added)
	return added, nil
}
