package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/txtseek/internal/output"
)

func newStatusCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status [dir]",
		Short: "Show whether the saved index of a directory is current",
		Args:  cobra.MaximumNArgs(1),
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

			st, err := mgr.Status(cmd.Context(), root)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			if jsonOutput {
				return out.JSON(st)
			}

			out.Statusf("", "Root:     %s", st.Root)
			out.Statusf("", "Snapshot: %s (%s)", st.SnapshotPath, st.Backend)
			switch {
			case !st.Exists:
				out.Warning("No index yet. Run 'txtseek index' to build it.")
				return nil
			case st.Corrupt:
				out.Warning("Snapshot is unreadable and will be rebuilt on next use.")
				return nil
			}

			out.Statusf("", "Created:  %s", st.CreatedAt.Local().Format(time.DateTime))
			out.Statusf("", "Indexed:  %d documents, %d terms", st.Documents, st.Terms)
			if len(st.Changed) > 0 {
				out.Warningf("%d changed documents", len(st.Changed))
				for _, p := range st.Changed {
					out.Statusf("", "  %s", p)
				}
			}
			if len(st.Added) > 0 {
				out.Statusf("", "%d new documents not in the index", len(st.Added))
			}
			if st.Stale {
				out.Warning("Index is stale and will be rebuilt on next use.")
			} else {
				out.Success("Index is current.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output status as JSON")

	return cmd
}
