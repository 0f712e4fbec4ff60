package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mj1618/uiloc/internal/config"
	"github.com/mj1618/uiloc/internal/logging"
	"github.com/mj1618/uiloc/internal/output"
)

// Set at build time with -ldflags "-X github.com/mj1618/uiloc/cmd.version=...".
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var (
	settings *config.Store
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "uiloc",
	Short: "Find and drive desktop UI controls with locators",
	Long: `uiloc resolves locator strings such as 'name:"File name:" type:Edit > id:Save'
against the accessibility tree and performs clicks, key input and value
changes on the controls it finds.`,
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate)
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Indent JSON output")
	rootCmd.PersistentFlags().String("config", "", "YAML settings file")
	rootCmd.PersistentFlags().String("tree", "", "Use an in-memory control tree loaded from a YAML fixture instead of the desktop")
	rootCmd.PersistentFlags().Bool("verbose-errors", false, "Include the visited tree in not-found errors")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default from settings)")
	rootCmd.PersistentPreRunE = setup
}

// setup loads settings, applies the persistent flag overrides and installs
// the logger. It runs before every subcommand.
func setup(cmd *cobra.Command, args []string) error {
	flags := rootCmd.PersistentFlags()

	format, _ := flags.GetString("format")
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	output.OutputFormat = f
	output.PrettyOutput, _ = flags.GetBool("pretty")

	path, _ := flags.GetString("config")
	store, err := config.Load(path)
	if err != nil {
		return err
	}
	if flags.Changed("verbose-errors") {
		v, _ := flags.GetBool("verbose-errors")
		if err := store.Set("verbose_errors", v); err != nil {
			return err
		}
	}
	if level, _ := flags.GetString("log-level"); level != "" {
		if err := store.Set("log.level", level); err != nil {
			return err
		}
	}
	settings = store

	st := store.Settings()
	logger = logging.Configure(cmd.ErrOrStderr(), st.Log.Level, st.Log.Format)
	return nil
}
