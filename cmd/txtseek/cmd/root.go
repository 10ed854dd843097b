// Package cmd provides the CLI commands for txtseek.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/txtseek/internal/config"
	seekerrors "github.com/Aman-CERP/txtseek/internal/errors"
	"github.com/Aman-CERP/txtseek/internal/index"
	"github.com/Aman-CERP/txtseek/internal/logging"
	"github.com/Aman-CERP/txtseek/internal/metrics"
	"github.com/Aman-CERP/txtseek/internal/profiling"
	"github.com/Aman-CERP/txtseek/internal/search"
	"github.com/Aman-CERP/txtseek/internal/store"
	"github.com/Aman-CERP/txtseek/internal/ui"
	"github.com/Aman-CERP/txtseek/pkg/version"
)

// app holds the persistent flags and the resources shared by one command
// invocation.
type app struct {
	debug   bool
	dataDir string
	backend string
	profile profiling.Options

	profiler       *profiling.Profiler
	loggingCleanup func()
}

// NewRootCmd creates the root command for the txtseek CLI.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "txtseek",
		Short: "Keyword search over the text files of a directory",
		Long: `txtseek indexes every .txt file under a directory and ranks them
against keyword queries with TF-IDF.

The index is saved next to the documents and reused as long as none of
them changed, so repeated searches start instantly.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.startProfiling()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			a.closeLogging()
			return a.stopProfiling()
		},
	}

	cmd.SetVersionTemplate("txtseek version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging to ~/.txtseek/logs/")
	cmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "Store snapshots under this directory instead of <root>/.txtseek")
	cmd.PersistentFlags().StringVar(&a.backend, "backend", "", "Snapshot backend: json, sqlite, bolt")
	cmd.PersistentFlags().StringVar(&a.profile.CPUProfile, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&a.profile.HeapProfile, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&a.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.AddCommand(newIndexCmd(a))
	cmd.AddCommand(newSearchCmd(a))
	cmd.AddCommand(newShellCmd(a))
	cmd.AddCommand(newWatchCmd(a))
	cmd.AddCommand(newStatusCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newDoctorCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command until completion or an interrupt signal.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprint(os.Stderr, seekerrors.FormatForCLI(err))
	}
	return err
}

// rootArg returns the directory argument, defaulting to the working
// directory.
func rootArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}

// loadConfig loads the configuration for dir, applies the persistent flags
// and sets up logging.
func (a *app) loadConfig(dir string) (*config.Config, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	if a.dataDir != "" {
		cfg.Snapshot.Dir = a.dataDir
	}
	if a.backend != "" {
		cfg.Snapshot.Backend = a.backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := a.setupLogging(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) setupLogging(cfg *config.Config) error {
	if a.loggingCleanup != nil {
		return nil
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	switch {
	case a.debug:
		logCfg = logging.DebugConfig()
	case cfg.Logging.File != "":
		logCfg.FilePath = cfg.Logging.File
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	a.loggingCleanup = cleanup
	slog.SetDefault(logger)

	if logCfg.FilePath != "" {
		slog.Info("logging_enabled",
			slog.String("log_file", logCfg.FilePath),
			slog.String("version", version.Version))
	}
	return nil
}

func (a *app) startProfiling() error {
	if !a.profile.Enabled() {
		return nil
	}
	p, err := profiling.Start(a.profile)
	if err != nil {
		return err
	}
	a.profiler = p
	return nil
}

func (a *app) stopProfiling() error {
	if a.profiler == nil {
		return nil
	}
	err := a.profiler.Stop()
	a.profiler = nil
	return err
}

func (a *app) closeLogging() {
	if a.loggingCleanup != nil {
		a.loggingCleanup()
		a.loggingCleanup = nil
	}
}

// newManager builds an index manager from the configuration.
func newManager(cfg *config.Config, renderer ui.Renderer, m *metrics.Metrics) (*index.Manager, error) {
	backend, err := store.ParseBackend(cfg.Snapshot.Backend)
	if err != nil {
		return nil, seekerrors.ConfigError("invalid snapshot backend", err)
	}

	return index.NewManager(index.Options{
		DataDir:        cfg.Snapshot.Dir,
		Backend:        backend,
		Scanner:        cfg.ScannerOptions(),
		Workers:        cfg.Index.Workers,
		IDFSmoothing:   cfg.Search.IDFSmoothing,
		DetectNewFiles: cfg.Index.DetectNewFiles,
	}, index.Dependencies{
		Renderer: renderer,
		Metrics:  m,
	}), nil
}

// newEngine builds a query engine over mgr.
func newEngine(cfg *config.Config, mgr *index.Manager, m *metrics.Metrics) (*search.Engine, error) {
	return search.NewEngine(mgr,
		search.WithCacheSize(cfg.Search.CacheSize),
		search.WithMetrics(m))
}
