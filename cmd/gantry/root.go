// SPDX-License-Identifier: EPL-2.0

// Package cmd contains all CLI commands for gantry.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gantry-cli/internal/config"
	"gantry-cli/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string
	// chdir runs gantry as if it had been started in another directory
	chdir string

	// loadedCfg is the merged tool configuration, populated by
	// initRootConfig before any RunE fires.
	loadedCfg *config.Config

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "gantry",
		Short: "Reproducible container builds for Python applications",
		Long: TitleStyle.Render("gantry") + SubtitleStyle.Render(" - reproducible container builds for Python applications") + `

gantry reads a declarative descriptor (gantryfile.cue) sitting next to
your pyproject.toml and poetry.lock and turns the project into a
runnable container image: environment established first, a pinned
Poetry release, the dependency layer installed before the source layer,
and one fixed entrypoint.

Images are content-addressed: unchanged inputs mean no rebuild, and a
source-only edit reuses the dependency layer.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'gantry init' next to your pyproject.toml
  2. Check app.name and app.module in gantryfile.cue
  3. Build and start the application with: gantry run

` + SubtitleStyle.Render("Examples:") + `
  gantry build              Build the image (skipped when cached)
  gantry run                Build if needed, then run the application
  gantry run --watch        Re-run on source changes
  gantry plan               Show the build pipeline without building
  gantry verify             Check poetry.lock against pyproject.toml
  gantry config show        Show current configuration`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/gantry/config.cue)")
	rootCmd.PersistentFlags().StringVarP(&chdir, "chdir", "C", "", "run as if gantry had been started in this directory")

	// Add subcommands
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	cfg, err := config.NewProvider().Load(context.Background(), config.LoadOptions{
		ConfigFilePath: cfgFile,
	})
	if err != nil {
		// A broken config never blocks a build; warn and fall back.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	loadedCfg = cfg

	// Apply verbose from config if not set via flag
	if !verbose {
		verbose = cfg.UI.Verbose
	}
	if verbose {
		enableVerboseLogging()
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
