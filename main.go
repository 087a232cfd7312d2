// Command i18nkit extracts translation keys from source trees into a defaults
// registry and keeps per-language packs in line with it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minios-linux/i18nkit/config"
	"github.com/minios-linux/i18nkit/i18n"
	"github.com/minios-linux/i18nkit/logging"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors for tables; log lines are colored by the handler.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

var logger = logging.New(os.Stderr, slog.LevelInfo, false)

func logInfo(format string, args ...any) {
	logger.Info(i18n.T(format, args...))
}

func logSuccess(format string, args ...any) {
	logger.Log(context.Background(), logging.LevelSuccess, i18n.T(format, args...))
}

func logWarning(format string, args ...any) {
	logger.Warn(i18n.T(format, args...))
}

func logError(format string, args ...any) {
	logger.Error(i18n.T(format, args...))
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir  string
	logLevel string
	noColor  bool
)

// setupLogging applies I18NKIT_* settings, then the flags on top.
func setupLogging(cmd *cobra.Command) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	levelName := env.LogLevel
	if cmd.Flags().Changed("log-level") {
		levelName = logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}
	logger = logging.New(cmd.ErrOrStderr(), level, noColor || env.NoColor)
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "i18nkit",
		Short: i18n.T("Extract translation keys and keep language packs in sync"),
		Long: `i18nkit: extraction and reconciliation of translation keys.

Scans source trees for translation calls and user-facing string literals,
maintains the defaults registry (key -> English text), and validates and
reorganizes per-language packs against it.

Commands:
  scan            Scan sources and update the defaults registry
  new             Create a language pack pre-filled with every key
  validate        Check packs against the registry
  reorganize      Reorder a pack to match the registry
  scan-app-menus  Two-phase extraction and rewrite of menu definitions
  version         Show version information

Configuration is read from .i18nkit.yaml in --root, with I18NKIT_*
environment variables taking precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd)
		},
	}

	// Global persistent flags, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newScanCmd(),
		newNewCmd(),
		newValidateCmd(),
		newReorganizeCmd(),
		newScanAppMenusCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			logError("%s", line)
		}
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "i18nkit version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// Table helpers
// ---------------------------------------------------------------------------

// progressBar renders percent as a colored bar of width cells followed by
// the right-aligned percentage.
func progressBar(percent, width int) string {
	percent = max(0, min(100, percent))
	filled := percent * width / 100
	color := colorRed
	switch {
	case percent >= 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}
	return color + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + colorReset + fmt.Sprintf(" %3d%%", percent)
}
