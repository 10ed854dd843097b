package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/txtseek/internal/output"
	"github.com/Aman-CERP/txtseek/internal/store"
	"github.com/Aman-CERP/txtseek/pkg/version"
)

// versionReport adds the snapshot formats this binary reads and writes to
// the build information, so a snapshot directory can be matched to a build.
type versionReport struct {
	version.BuildInfo
	SnapshotVersion int      `json:"snapshot_version"`
	Backends        []string `json:"backends"`
	DefaultBackend  string   `json:"default_backend"`
}

func newVersionReport() versionReport {
	backends := store.Backends()
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = string(b)
	}
	return versionReport{
		BuildInfo:       version.GetInfo(),
		SnapshotVersion: store.SnapshotVersion,
		Backends:        names,
		DefaultBackend:  string(store.DefaultBackend),
	}
}

func newVersionCmd() *cobra.Command {
	var jsonOutput, shortOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the txtseek version, build details and the snapshot formats
this binary understands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.New(cmd.OutOrStdout())
			switch {
			case shortOutput:
				out.Println(version.Short())
				return nil
			case jsonOutput:
				return out.JSON(newVersionReport())
			}

			r := newVersionReport()
			out.Println(version.String())
			out.Println(fmt.Sprintf("snapshot format v%d, backends: %s (default %s)",
				r.SnapshotVersion, strings.Join(r.Backends, ", "), r.DefaultBackend))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")
	cmd.Flags().BoolVar(&shortOutput, "short", false, "Output only the version number")

	return cmd
}
