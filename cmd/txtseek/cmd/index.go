package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/txtseek/internal/output"
	"github.com/Aman-CERP/txtseek/internal/ui"
)

func newIndexCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "index [dir]",
		Short: "Build or validate the index of a directory",
		Long: `Index every text file under dir (default: the current directory).

An existing snapshot is reused when the directory and the content of every
indexed file are unchanged. Use --force to rebuild regardless.

Examples:
  txtseek index
  txtseek index ~/notes --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := rootArg(args)
			cfg, err := a.loadConfig(root)
			if err != nil {
				return err
			}

			renderer := ui.NewRenderer(ui.NewConfig(cmd.ErrOrStderr()))
			if err := renderer.Start(cmd.Context()); err != nil {
				return err
			}
			defer func() { _ = renderer.Stop() }()

			mgr, err := newManager(cfg, renderer, nil)
			if err != nil {
				return err
			}

			open := mgr.Open
			if force {
				open = mgr.Rebuild
			}
			res, err := open(cmd.Context(), root)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			if res.Rebuilt {
				out.Successf("Indexed %d documents (%d terms) in %s", res.Documents, res.Terms, res.Root)
			} else {
				out.Successf("Index of %s is up to date (%d documents)", res.Root, res.Documents)
			}
			if res.ReadErrors > 0 {
				out.Warningf("%d documents could not be read and were indexed empty", res.ReadErrors)
			}
			out.Statusf("", "Snapshot: %s", res.SnapshotPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Rebuild even if the snapshot is current")

	return cmd
}
