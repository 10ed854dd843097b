// Package watcher keeps an open index current while txtseek runs.
//
// A Watcher subscribes to fsnotify events for every directory under the
// root, drops events for paths the scanner would not index, and coalesces
// bursts through a Debouncer. Refresher turns each batch into one index
// refresh.
//
// Usage:
//
//	w, err := watcher.New(sc, watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	go func() { _ = w.Start(ctx, root) }()
//	watcher.NewRefresher(mgr, m).Run(ctx, w.Events())
package watcher
