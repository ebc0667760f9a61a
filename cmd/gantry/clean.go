// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"fmt"
	"os"

	"gantry-cli/internal/build"
	"gantry-cli/internal/container"
	"gantry-cli/internal/issue"

	"github.com/spf13/cobra"
)

var (
	cleanAll bool

	// cleanCmd removes images gantry built
	cleanCmd = &cobra.Command{
		Use:   "clean",
		Short: "Remove images gantry built for this project",
		Long: `Remove container images gantry built for this project.

Only images carrying the gantry management label are touched; nothing
else on the engine is affected. With --all, every gantry-built image is
removed regardless of project, and no descriptor is needed.`,
		Args: cobra.NoArgs,
		RunE: runClean,
	}
)

func init() {
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "remove every gantry-built image, not just this project's")
}

func runClean(cmd *cobra.Command, args []string) error {
	eng, err := engineFor("")
	if err != nil {
		return err
	}

	labels := map[string]string{build.LabelManaged: "true"}
	if !cleanAll {
		gf, _, err := loadProject()
		if err != nil {
			return err
		}
		labels[build.LabelApp] = string(gf.App.Name)
	}

	tags, err := eng.ListImages(cmd.Context(), container.ListImagesOptions{Labels: labels})
	if err != nil {
		return issue.WrapWithOperation(err, "list images")
	}
	if len(tags) == 0 {
		fmt.Println(SubtitleStyle.Render("Nothing to remove."))
		return nil
	}

	var removed, failed int
	for _, tag := range tags {
		// In --all mode the removal line names the owning application,
		// read from the image's labels. Inspect failures just omit it.
		var app string
		if cleanAll {
			if imgLabels, lerr := container.InspectImageLabels(cmd.Context(), eng, tag); lerr == nil {
				app = imgLabels[build.LabelApp]
			}
		}

		if err := eng.RemoveImage(cmd.Context(), tag, false); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s Could not remove %s: %v\n", WarningStyle.Render("!"), tag, err)
			continue
		}
		removed++
		if app != "" {
			fmt.Printf("%s Removed %s (app: %s)\n", SuccessStyle.Render("✓"), CmdStyle.Render(tag.String()), app)
		} else {
			fmt.Printf("%s Removed %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(tag.String()))
		}
	}

	if failed > 0 {
		return fmt.Errorf("removed %d image(s), failed to remove %d (still in use by a container?)", removed, failed)
	}
	fmt.Printf("\n%s Removed %d image(s)\n", SuccessStyle.Render("✓"), removed)
	return nil
}
