package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/txtseek/internal/config"
	seekerrors "github.com/Aman-CERP/txtseek/internal/errors"
	"github.com/Aman-CERP/txtseek/internal/output"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create configuration files",
	}

	cmd.AddCommand(newConfigShowCmd(a))
	cmd.AddCommand(newConfigInitCmd())

	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [dir]",
		Short: "Print the effective configuration for dir",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(rootArg(args))
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var user, force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default configuration file",
		Long: `Write the default configuration to dir/.txtseek.yaml, or with --user to
the user configuration file. An existing file is kept unless --force is
given, in which case it is backed up first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(rootArg(args), config.ProjectFileNames[0])
			if user {
				path = config.GetUserConfigPath()
			}

			out := output.New(cmd.OutOrStdout())
			if _, err := os.Stat(path); err == nil && !force {
				return seekerrors.New(seekerrors.ErrCodeInvalidInput,
					fmt.Sprintf("%s already exists", path), nil).
					WithSuggestion("Use --force to overwrite it")
			}
			backup, err := config.BackupFile(path)
			if err != nil {
				return err
			}

			if err := config.WriteTemplate(path); err != nil {
				return err
			}
			if backup != "" {
				out.Statusf("", "Previous config saved to %s", backup)
			}
			out.Successf("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&user, "user", false, "Write the user configuration instead of the project one")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}
