package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/txtseek/internal/index"
	"github.com/Aman-CERP/txtseek/internal/metrics"
	"github.com/Aman-CERP/txtseek/internal/output"
	"github.com/Aman-CERP/txtseek/internal/ui"
	"github.com/Aman-CERP/txtseek/internal/watcher"
)

func newWatchCmd(a *app) *cobra.Command {
	var metricsPort int

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Keep the index of a directory current as files change",
		Long: `Index dir, then refresh the index whenever a text file under it is
created, changed or removed. Runs until interrupted.

With --metrics-port, Prometheus metrics are served on /metrics.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := rootArg(args)
			cfg, err := a.loadConfig(root)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := output.New(cmd.OutOrStdout())

			var m *metrics.Metrics
			var srv *metrics.Server
			if metricsPort > 0 {
				m = metrics.New()
				if srv, err = metrics.Listen(fmt.Sprintf(":%d", metricsPort), m); err != nil {
					return err
				}
			}

			renderer := ui.NewRenderer(ui.NewConfig(cmd.ErrOrStderr()))
			if err := renderer.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = renderer.Stop() }()

			mgr, err := newManager(cfg, renderer, m)
			if err != nil {
				return err
			}
			res, err := mgr.Open(ctx, root)
			if err != nil {
				return err
			}

			debounce, _ := cfg.DebounceDuration()
			w, err := watcher.New(mgr.Scanner(), watcher.Options{DebounceWindow: debounce})
			if err != nil {
				return err
			}
			defer func() { _ = w.Stop() }()

			out.Statusf("", "Watching %s (Ctrl+C to stop)", res.Root)
			if srv != nil {
				out.Statusf("", "Metrics on http://%s/metrics", srv.Addr())
			}

			refresher := watcher.NewRefresher(mgr, m)
			refresher.OnRefresh = func(batch []watcher.FileEvent, res *index.OpenResult, err error) {
				if err != nil {
					out.Error(err.Error())
					return
				}
				if res.Rebuilt {
					out.Successf("%d changes, reindexed %d documents (%s)", len(batch), res.Documents, res.Reason)
				}
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				err := w.Start(gctx, res.Root)
				if gctx.Err() != nil {
					return nil
				}
				return err
			})
			g.Go(func() error {
				refresher.Run(gctx, w.Events())
				return nil
			})
			g.Go(func() error {
				for {
					select {
					case <-gctx.Done():
						return nil
					case err := <-w.Errors():
						slog.Warn("watch_error", slog.String("error", err.Error()))
					}
				}
			})
			if srv != nil {
				g.Go(func() error { return srv.Serve(gctx) })
			}

			return g.Wait()
		},
	}

	cmd.Flags().IntVar(&metricsPort, "metrics-port", 0, "Serve Prometheus metrics on this port (0 = disabled)")

	return cmd
}
