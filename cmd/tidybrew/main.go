// Package main provides the CLI entry point for tidybrew.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/AntoineGS/tidybrew/internal/brew"
	"github.com/AntoineGS/tidybrew/internal/config"
	"github.com/AntoineGS/tidybrew/internal/manager"
	"github.com/AntoineGS/tidybrew/internal/platform"
	tmpl "github.com/AntoineGS/tidybrew/internal/template"
	"github.com/AntoineGS/tidybrew/internal/tui"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var version = "dev"

// errFailures makes the process exit 1 after a batch with failed targets.
var errFailures = errors.New("one or more packages failed")

var (
	brewPath     string
	timeout      time.Duration
	verbose      bool
	noHistory    bool
	noColor      bool
	jsonOutput   bool
	listFilter   string
	showDiff     bool
	assumeYes    bool
	dryRun       bool
	historyLimit int
	historyOp    string
	logFile      *os.File
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "An unexpected error occurred: %v\n", r)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tidybrew",
		Version: version,
		Short:   "Keep Homebrew package lists tidy across machines",
		Long: `tidybrew lists, searches, installs and uninstalls Homebrew packages, and
moves package lists between machines as JSON files.

Configuration is stored in ~/.config/tidybrew/config.yaml.
Run 'tidybrew init' to write the default configuration.
Run without arguments to start the interactive TUI.`,
		SilenceUsage:      true,
		RunE:              runInteractive,
		PersistentPreRunE: setupLogging,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logFile != nil {
				_ = logFile.Close() //nolint:errcheck // best-effort cleanup
				logFile = nil
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&brewPath, "brew", "", "Path to the brew binary (default: auto-detect)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Limit for each brew call, e.g. 30m (default: from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "Do not record batches to the history database")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colors")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Long: `Write ~/.config/tidybrew/config.yaml with default values.
An existing file is left untouched.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List installed casks and formulae",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	listCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the list in the export format")
	listCmd.Flags().StringVarP(&listFilter, "filter", "f", "", "Only show packages fuzzy-matching this pattern")

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search Homebrew for packages",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	installCmd := &cobra.Command{
		Use:   "install <names...>",
		Short: "Install packages one at a time",
		Long: `Install each named package in order. A failure does not stop the batch.
Exits with status 1 when any package failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInstall,
	}

	uninstallCmd := &cobra.Command{
		Use:   "uninstall <names...>",
		Short: "Force-uninstall packages one at a time",
		Long: `Force-uninstall each named package in order. A failure does not stop the batch.
Exits with status 1 when any package failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runUninstall,
	}

	exportCmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Write installed packages to a JSON file",
		Long: `Write the installed casks and formulae to a JSON package list.
Without a path the file name comes from export_name in the configuration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExport,
	}
	exportCmd.Flags().BoolVar(&showDiff, "diff", false, "Show changes against the existing file without writing")

	importCmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Install the missing packages from a JSON file",
		Long: `Compare a package list against the installed packages. Packages that
are already installed are shown and skipped; the rest are installed after
confirmation.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
	importCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Install without asking")
	importCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be installed without installing")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent install and uninstall batches",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of batches to show")
	historyCmd.Flags().StringVar(&historyOp, "op", "", "Only show install or uninstall batches")

	rootCmd.AddCommand(initCmd, listCmd, searchCmd, installCmd, uninstallCmd, exportCmd, importCmd, historyCmd)

	return rootCmd
}

// setupLogging configures the default logger. While the TUI owns the
// terminal, logs go to a file.
func setupLogging(cmd *cobra.Command, _ []string) error {
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	logWriter := os.Stderr

	if !cmd.HasParent() && tui.IsTerminal() {
		logPath := filepath.Join(os.TempDir(), "tidybrew.log")

		f, err := os.Create(logPath) //nolint:gosec // fixed name under the temp dir
		if err == nil {
			logFile = f
			logWriter = f

			if verbose {
				fmt.Fprintf(os.Stderr, "Verbose logs: %s\n", logPath)
			}
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: level,
	})))

	return nil
}

// loadConfig reads the app configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.AppConfig, *platform.Platform, error) {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config from %s: %w", config.AppConfigPath(), err)
	}

	if brewPath != "" {
		cfg.BrewPath = brewPath
	}

	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = timeout
	}

	if noHistory {
		cfg.History = false
	}

	plat := platform.Detect()
	if cfg.Hostname != "" {
		plat = plat.WithHostname(cfg.Hostname)
	}

	return cfg, plat, nil
}

// createManager builds a Manager from the configuration. When mirror is
// set, brew's install and uninstall output is copied to the command output.
func createManager(cmd *cobra.Command, mirror bool) (*manager.Manager, *config.AppConfig, error) {
	cfg, plat, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	bin := config.ExpandPath(cfg.BrewPath)
	if bin == "" {
		bin, err = plat.DetectBrew()
		if err != nil {
			return nil, nil, err
		}
	}

	slog.Debug("using brew", slog.String("path", bin), slog.String("os", plat.OS))

	client := brew.New(bin).WithLogger(slog.Default()).WithTimeout(cfg.Timeout)
	if mirror {
		client = client.WithOutput(cmd.OutOrStdout())
	}

	mgr := manager.New(client, plat).WithLogger(slog.Default())

	if cfg.History {
		if err := mgr.InitStateStore(config.ExpandPath(cfg.HistoryDB), cfg.HistoryKeep); err != nil {
			// Non-fatal: batches still run, they are just not recorded
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not open history database: %v\n", err)
		}
	}

	return mgr, cfg, nil
}

// defaultExportPath renders export_name into the current directory.
func defaultExportPath(cfg *config.AppConfig, plat *platform.Platform) (string, error) {
	engine, err := tmpl.NewEngine(tmpl.NewContextFromPlatform(plat, time.Now()))
	if err != nil {
		return "", err
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	return cfg.ExportPath(engine, dir)
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	if !tui.IsTerminal() {
		return fmt.Errorf("interactive mode requires a terminal; use subcommands (list, search, install, uninstall, export, import) for non-interactive use")
	}

	mgr, cfg, err := createManager(cmd, false)
	if err != nil {
		return err
	}
	defer mgr.Close() //nolint:errcheck // best-effort cleanup

	exportPath, err := defaultExportPath(cfg, mgr.Platform)
	if err != nil {
		slog.Warn("no default export path", slog.String("error", err.Error()))
	}

	return tui.Run(cmd.Context(), mgr, exportPath)
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := config.AppConfigPath()
	if path == "" {
		return fmt.Errorf("could not determine the home directory")
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration already exists at %s\n", path)
		return nil
	}

	if err := config.SaveAppConfig(config.Default()); err != nil {
		return fmt.Errorf("saving app config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "App configuration saved to %s\n", path)

	return nil
}
