// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"fmt"

	"gantry-cli/internal/build"

	"github.com/spf13/cobra"
)

var (
	planDockerfileOnly bool

	// planCmd shows the build pipeline without touching an engine
	planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Show the build pipeline without building",
		Long: `Show what a build would do, without running one.

The plan lists the five pipeline steps, the lock verification findings,
the derived cache keys, and the image tag. With --dockerfile-only it
prints just the rendered Dockerfile, ready to pipe into other tools.

Plans never touch a container engine, so this works on machines with
neither docker nor podman installed.`,
		Args: cobra.NoArgs,
		RunE: runPlan,
	}
)

func init() {
	planCmd.Flags().BoolVar(&planDockerfileOnly, "dockerfile-only", false, "print only the rendered Dockerfile")
}

func runPlan(cmd *cobra.Command, args []string) error {
	gf, proj, err := loadProject()
	if err != nil {
		return err
	}

	// A nil engine is fine here: computing a plan only reads the project
	// tree.
	plan, err := build.NewBuilder(nil, gf, proj.Root, baseBuildOptions()).BuildPlan(cmd.Context())
	if err != nil {
		return reportBuildError(err)
	}

	if planDockerfileOnly {
		fmt.Print(plan.Dockerfile)
		return nil
	}

	fmt.Print(plan.Render())
	return nil
}
