// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"fmt"

	"gantry-cli/internal/build"

	"github.com/spf13/cobra"
)

var (
	buildForce   bool
	buildNoCache bool
	buildTag     string
	buildEngine  string

	// buildCmd builds the project's container image
	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Build the project's container image",
		Long: `Build the project's container image from the gantryfile descriptor.

The pipeline is always the same five steps: establish the runtime
environment, install the pinned Poetry release, install locked
dependencies from pyproject.toml + poetry.lock, copy the source tree,
and set the fixed entrypoint. Dependencies are installed before the
source is copied, so a source-only edit reuses the dependency layer.

The image tag is derived from the build inputs; when an image with that
tag already exists the build is skipped entirely. A stale poetry.lock
fails the build before anything is staged.`,
		Args: cobra.NoArgs,
		RunE: runBuild,
	}
)

func init() {
	buildCmd.Flags().BoolVarP(&buildForce, "force", "f", false, "rebuild even when an image with the derived tag exists")
	buildCmd.Flags().BoolVar(&buildNoCache, "no-cache", false, "disable the engine's layer cache for this build")
	buildCmd.Flags().StringVarP(&buildTag, "tag", "t", "", "tag the image with this reference instead of the derived tag")
	buildCmd.Flags().StringVar(&buildEngine, "engine", "", "container engine to use (docker, podman)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	gf, proj, err := loadProject()
	if err != nil {
		return err
	}

	eng, err := engineFor(buildEngine)
	if err != nil {
		return err
	}

	opts := baseBuildOptions()
	if buildForce {
		opts.Force = true
	}
	opts.NoCache = buildNoCache
	opts.Tag = buildTag

	debugLog.Debug("starting build", "engine", eng.Name(), "root", proj.Root)

	res, err := build.NewBuilder(eng, gf, proj.Root, opts).Build(cmd.Context())
	if err != nil {
		return reportBuildError(err)
	}
	debugLog.Debug("build finished", "tag", res.Tag, "cached", res.Cached)

	if res.Cached {
		fmt.Printf("%s Image %s is up to date (cached)\n", SuccessStyle.Render("✓"), CmdStyle.Render(res.Tag.String()))
		return nil
	}
	fmt.Printf("%s Built %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(res.Tag.String()))
	return nil
}
