package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/txtseek/internal/config"
	seekerrors "github.com/Aman-CERP/txtseek/internal/errors"
	"github.com/Aman-CERP/txtseek/internal/preflight"
	"github.com/Aman-CERP/txtseek/internal/scanner"
)

type doctorReport struct {
	Status  string                  `json:"status"`
	Results []preflight.CheckResult `json:"results"`
}

func newDoctorCmd(a *app) *cobra.Command {
	var verbose, jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor [dir]",
		Short: "Check that a directory can be indexed",
		Long: `Run diagnostics for dir (default: the current directory).

Checks:
  - The directory exists
  - The configuration is valid
  - The snapshot directory is writable
  - Disk space and file descriptor limits
  - Whether the saved index is current`,
		Example: `  txtseek doctor
  txtseek doctor ~/notes --verbose
  txtseek doctor --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := rootArg(args)
			target := preflight.Target{Root: root}

			cfg, err := a.loadConfig(root)
			if err != nil {
				target.ConfigErr = err
				cfg = config.NewConfig()
			}

			if canon, err := scanner.ResolveRoot(root); err == nil {
				if mgr, err := newManager(cfg, nil, nil); err == nil {
					target.DataDir = mgr.DataDir(canon)
					if st, err := mgr.Status(cmd.Context(), canon); err == nil {
						target.Status = st
					}
				}
			}

			checker := preflight.New(
				preflight.WithVerbose(verbose),
				preflight.WithOutput(cmd.OutOrStdout()))
			results := checker.RunAll(cmd.Context(), target)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(doctorReport{Status: checker.SummaryStatus(results), Results: results}); err != nil {
					return err
				}
			} else {
				checker.PrintResults(results)
			}

			if checker.HasCriticalFailures(results) {
				return seekerrors.New(seekerrors.ErrCodeInvalidInput, "system check failed", nil).
					WithSuggestion("Fix the failed checks above and run 'txtseek doctor' again")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed diagnostic info")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
