// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"gantry-cli/internal/launch"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/shell"
)

var (
	shellPath    string
	shellCommand string
	shellAttach  bool

	// shellCmd opens an interactive shell inside the project's image
	shellCmd = &cobra.Command{
		Use:   "shell",
		Short: "Open an interactive shell in the project's image",
		Long: `Open an interactive shell inside the project's image.

The shell replaces the fixed entrypoint for this container only; the
image itself is unchanged. The container gets no managed name and no
published ports, so a shell can run next to the application. The
descriptor's environment and volumes apply as usual.

Slim (Debian) base images carry /bin/bash; pass --shell /bin/sh for
alpine variants.

With --command the string is split with POSIX shell word rules and run
as a one-off command instead of an interactive shell:

  gantry shell -c "poetry run pytest -k 'smoke and not slow'"

With --attach the shell (or command) joins the container started by
'gantry run' instead of a fresh one: same filesystem, same process
namespace, same environment. The application must be running.`,
		Args: cobra.NoArgs,
		RunE: runShell,
	}
)

func init() {
	shellCmd.Flags().StringVar(&shellPath, "shell", launch.DefaultShell, "shell binary to start inside the container")
	shellCmd.Flags().StringVarP(&shellCommand, "command", "c", "", "run this command in the image instead of an interactive shell")
	shellCmd.Flags().BoolVarP(&shellAttach, "attach", "a", false, "exec into the running application container instead of a new one")
}

func runShell(cmd *cobra.Command, args []string) error {
	gf, proj, err := loadProject()
	if err != nil {
		return err
	}

	eng, err := engineFor("")
	if err != nil {
		return err
	}

	launcher := launch.NewLauncher(eng, gf, proj.Root, launch.Options{
		Build:  baseBuildOptions(),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})

	if shellCommand != "" {
		// Word-splitting happens here on the host; the argv goes to the
		// engine as-is, so no shell inside the container reinterprets it.
		argv, err := shell.Fields(shellCommand, nil)
		if err != nil {
			return fmt.Errorf("invalid --command string: %w", err)
		}
		if len(argv) == 0 {
			return errors.New("--command expanded to an empty command")
		}
		if shellAttach {
			return finishRun(launcher.Attach(cmd.Context(), argv, false))
		}
		return finishRun(launcher.Exec(cmd.Context(), argv))
	}

	if shellAttach {
		return finishRun(launcher.Attach(cmd.Context(), []string{shellPath}, true))
	}
	return finishRun(launcher.Shell(cmd.Context(), shellPath))
}
