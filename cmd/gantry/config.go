// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gantry-cli/internal/config"
	"gantry-cli/internal/issue"

	"github.com/spf13/cobra"
)

// configCmd is the `gantry config` command tree.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage gantry configuration",
	Long: `Manage gantry configuration.

Configuration is stored in:
  - Linux: ~/.config/gantry/config.cue
  - macOS: ~/Library/Application Support/gantry/config.cue
  - Windows: %APPDATA%\gantry\config.cue

Every value can also be set through GANTRY_* environment variables
(GANTRY_ENGINE, GANTRY_UI_VERBOSE, GANTRY_BUILD_RETRIES, ...).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _, err := configFilePath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateDefaultConfig(); err != nil {
				return err
			}
			path, _, err := configFilePath()
			if err != nil {
				return err
			}
			fmt.Printf("%s Created %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewProvider().Load(cmd.Context(), config.LoadOptions{
				ConfigFilePath: cfgFile,
			})
			if err != nil {
				return err
			}
			fmt.Print(config.GenerateCUE(cfg))
			return nil
		},
	})
}

func showConfig(ctx context.Context) error {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		printIssue(issue.ConfigLoadFailedId)
		return err
	}

	// Style definitions using shared color palette
	headerStyle := TitleStyle
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Println(headerStyle.Render("Current Configuration"))
	fmt.Println()

	path, exists, pathErr := configFilePath()
	if pathErr == nil && exists {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	fmt.Printf("%s: %s\n", keyStyle.Render("engine"), valueStyle.Render(cfg.Engine.String()))
	fmt.Printf("%s: %s\n", keyStyle.Render("ui.color_scheme"), valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Printf("%s: %s\n", keyStyle.Render("ui.verbose"), valueStyle.Render(strconv.FormatBool(cfg.UI.Verbose)))
	fmt.Printf("%s: %s\n", keyStyle.Render("build.force"), valueStyle.Render(strconv.FormatBool(cfg.Build.Force)))
	if cfg.Build.ContextDir != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("build.context_dir"), valueStyle.Render(cfg.Build.ContextDir.String()))
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("build.context_dir"), SubtitleStyle.Render("(system temp)"))
	}
	fmt.Printf("%s: %s\n", keyStyle.Render("build.retries"), valueStyle.Render(strconv.Itoa(cfg.Build.Retries)))

	return nil
}

// configFilePath resolves the config file gantry reads: the --config flag
// when given, otherwise config.cue in the standard config directory. The
// second return reports whether the file exists.
func configFilePath() (string, bool, error) {
	if cfgFile != "" {
		return cfgFile, fileExistsCheck(cfgFile), nil
	}
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve config directory: %w", err)
	}
	path := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	return path, fileExistsCheck(path), nil
}

// fileExistsCheck reports whether path exists and is a regular file.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
