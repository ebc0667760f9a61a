// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gantry-cli/internal/container"
	"gantry-cli/internal/discovery"
	"gantry-cli/internal/launch"
	"gantry-cli/internal/watch"
	"gantry-cli/pkg/gantryfile"

	"github.com/spf13/cobra"
)

var (
	runWatch    bool
	runNoBuild  bool
	runEnvFiles []string
	runEnvVars  []string
	runPorts    []string
	runVolumes  []string

	// runCmd builds the image if needed, then runs the application
	runCmd = &cobra.Command{
		Use:   "run [-- args...]",
		Short: "Build the image if needed, then run the application",
		Long: `Build the project's image if needed, then run it in the foreground.

The container always starts the descriptor's fixed entrypoint; anything
after -- is appended to it. stdio is attached, and gantry exits with
the application's exit status, unchanged.

Environment precedence, lowest to highest: descriptor env.files,
descriptor env.vars, --env-file, --env-var.

With --watch the application is re-run whenever watched source files
change. Descriptor edits apply on the next change; content-addressed
tagging keeps the rebuild cheap when only source changed.`,
		Args: cobra.ArbitraryArgs,
		RunE: runRun,
	}
)

func init() {
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "re-run the application on source changes")
	runCmd.Flags().BoolVar(&runNoBuild, "no-build", false, "require an existing image; never trigger a build")
	runCmd.Flags().StringArrayVar(&runEnvFiles, "env-file", nil, "extra dotenv file loaded into the container (repeatable)")
	runCmd.Flags().StringArrayVar(&runEnvVars, "env-var", nil, "extra KEY=VALUE for the container, highest precedence (repeatable)")
	runCmd.Flags().StringArrayVarP(&runPorts, "publish", "p", nil, "extra HOST:CONTAINER[/PROTOCOL] port mapping (repeatable)")
	runCmd.Flags().StringArrayVar(&runVolumes, "volume", nil, "extra HOST:CONTAINER[:OPTIONS] mount (repeatable)")
}

func runRun(cmd *cobra.Command, args []string) error {
	gf, proj, err := loadProject()
	if err != nil {
		return err
	}

	eng, err := engineFor("")
	if err != nil {
		return err
	}

	envVars, err := parseEnvVarFlags(runEnvVars)
	if err != nil {
		return err
	}

	opts := launch.Options{
		Build:    baseBuildOptions(),
		NoBuild:  runNoBuild,
		Args:     args,
		EnvFiles: runEnvFiles,
		EnvVars:  envVars,
		Ports:    runPorts,
		Volumes:  runVolumes,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}

	if runWatch {
		return runWatchLoop(cmd.Context(), eng, gf, proj, opts)
	}

	opts.Stdin = os.Stdin
	res := launch.NewLauncher(eng, gf, proj.Root, opts).Run(cmd.Context())
	return finishRun(res)
}

// runWatchLoop re-runs the application whenever watched files change. The
// descriptor is re-read before every run so a gantryfile edit applies on
// the next change; the watcher's patterns stay fixed for its lifetime.
// Stdin is never attached in watch mode.
func runWatchLoop(ctx context.Context, eng container.Engine, gf *gantryfile.Gantryfile, proj *discovery.Project, opts launch.Options) error {
	rerun := func(ctx context.Context, changed []string) error {
		if len(changed) > 0 {
			debugLog.Debug("changes coalesced", "count", len(changed))
			fmt.Printf("%s Changed: %s\n", VerboseHighlightStyle.Render("→"), strings.Join(changed, ", "))
		}

		curGf, curProj, err := discovery.Load(chdir)
		if err != nil {
			// A broken descriptor is not fatal in watch mode; the user
			// fixes it and saves again.
			fmt.Fprintln(os.Stderr, WarningStyle.Render("! ")+formatErrorForDisplay(err, verbose))
			return nil
		}

		res := launch.NewLauncher(eng, curGf, curProj.Root, opts).Run(ctx)
		switch {
		case res.Error != nil:
			fmt.Fprintln(os.Stderr, WarningStyle.Render("! ")+formatErrorForDisplay(res.Error, verbose))
		case res.ExitCode != 0:
			fmt.Fprintf(os.Stderr, "%s Application exited with status %d\n", WarningStyle.Render("!"), int(res.ExitCode))
		}
		return nil
	}

	fmt.Printf("%s Watch mode: initial run of %s\n", VerboseHighlightStyle.Render("→"), CmdStyle.Render(string(gf.App.Name)))
	_ = rerun(ctx, nil)

	fmt.Printf("\n%s Watching for changes (Ctrl+C to stop)...\n\n", VerboseHighlightStyle.Render("→"))

	for {
		w, err := watch.ForProject(gf, proj.Root, rerun)
		if err != nil {
			return err
		}
		debugLog.Debug("watcher started", "root", proj.Root)
		runErr := w.Run(ctx)
		if runErr == nil || ctx.Err() != nil {
			return nil
		}
		// Event overflow or a fatal backend error means changes may have
		// been missed: run once to catch up, then start a fresh watcher.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("! ")+runErr.Error())
		fmt.Fprintln(os.Stderr, SubtitleStyle.Render("Restarting watcher..."))
		_ = rerun(ctx, nil)
	}
}
