package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/txtseek/internal/session"
	"github.com/Aman-CERP/txtseek/internal/watcher"
)

func newShellCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "shell [dir]",
		Short: "Interactive search session",
		Long: `Start an interactive session rooted at dir (default: the current
directory). Commands:

  cd <dir>        change directory and index it
  search <query>  rank the files of the current directory
  help            show the commands
  exit            leave the session

With --watch the index is refreshed as files change.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := rootArg(args)
			cfg, err := a.loadConfig(root)
			if err != nil {
				return err
			}

			mgr, err := newManager(cfg, nil, nil)
			if err != nil {
				return err
			}
			engine, err := newEngine(cfg, mgr, nil)
			if err != nil {
				return err
			}

			sess := session.New(mgr, engine, cfg.Search.MaxResults)
			res, err := sess.Open(cmd.Context(), root)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if watch {
				debounce, _ := cfg.DebounceDuration()
				w, err := watcher.New(mgr.Scanner(), watcher.Options{DebounceWindow: debounce})
				if err != nil {
					return err
				}
				defer func() { _ = w.Stop() }()

				// Watches the starting directory only; cd does not move it.
				go func() { _ = w.Start(ctx, res.Root) }()
				go watcher.NewRefresher(mgr, nil).Run(ctx, w.Events())
			}

			return session.NewShell(sess, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Refresh the index when files change")

	return cmd
}
