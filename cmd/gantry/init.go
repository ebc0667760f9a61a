// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gantry-cli/pkg/gantryfile"

	"github.com/spf13/cobra"
)

var (
	initName   string
	initModule string

	// initCmd scaffolds a new gantryfile
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a gantryfile.cue in the current directory",
		Long: `Create a starter gantryfile.cue in the current directory.

The scaffold names the application after the directory (override with
--name) and runs the app.main module (override with --module); edit the
file afterwards to pin Python, Poetry, env, ports, and volumes.

An existing gantryfile is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "application name (default: directory name)")
	initCmd.Flags().StringVar(&initModule, "module", "", "python module the entrypoint runs (default: app.main)")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := chdir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine working directory: %w", err)
		}
		dir = wd
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve directory %q: %w", dir, err)
	}

	path := filepath.Join(absDir, gantryfile.Filename)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists; edit it instead of re-initializing", path)
	}

	name := initName
	if name == "" {
		name = deriveAppName(filepath.Base(absDir))
	}
	module := initModule
	if module == "" {
		module = "app.main"
	}

	content, err := scaffoldDescriptor(name, module)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Printf("%s Created %s\n", SuccessStyle.Render("✓"), path)
	fmt.Println()
	fmt.Println(SubtitleStyle.Render("Next steps:"))
	fmt.Println("  1. Check app.name and app.module in " + gantryfile.Filename)
	fmt.Println("  2. Run 'gantry plan' to review the build pipeline")
	fmt.Println("  3. Run 'gantry run' to build and start the application")

	return nil
}

// scaffoldDescriptor renders a minimal descriptor and proves it round-trips
// through the parser before anything lands on disk.
func scaffoldDescriptor(name, module string) (string, error) {
	gf := &gantryfile.Gantryfile{
		App: gantryfile.AppSpec{
			Name:   gantryfile.AppName(name),
			Module: gantryfile.PythonModule(module),
		},
	}
	if err := gf.App.Name.Validate(); err != nil {
		return "", fmt.Errorf("invalid application name %q: %w", name, err)
	}
	if err := gf.App.Module.Validate(); err != nil {
		return "", fmt.Errorf("invalid python module %q: %w", module, err)
	}

	content := gantryfile.GenerateCUE(gf)
	if _, err := gantryfile.ParseBytes([]byte(content), gantryfile.Filename); err != nil {
		return "", fmt.Errorf("generated descriptor does not parse: %w", err)
	}
	return content, nil
}

// deriveAppName bends a directory name into a valid application name:
// lowercase alphanumerics and hyphens, no leading/trailing hyphen. Falls
// back to "app" when nothing usable survives.
func deriveAppName(base string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '-', r == '_', r == ' ', r == '.':
			sb.WriteRune('-')
		}
	}
	name := strings.Trim(sb.String(), "-")
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	if gantryfile.AppName(name).Validate() != nil {
		return "app"
	}
	return name
}
