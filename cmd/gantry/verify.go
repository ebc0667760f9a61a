// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"fmt"

	"gantry-cli/internal/build"
	"gantry-cli/internal/issue"
	"gantry-cli/pkg/pyproject"

	"github.com/spf13/cobra"
)

var (
	verifyStrict bool

	// verifyCmd checks the lock file against the manifest
	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Check poetry.lock against pyproject.toml",
		Long: `Check that poetry.lock still satisfies pyproject.toml.

Every declared dependency must appear in the lock with a version its
constraint accepts; stale lock groups and missing lock metadata are
reported as warnings. Errors here are exactly what would fail a build,
before anything is staged.

With --strict, warnings fail verification too.`,
		Args: cobra.NoArgs,
		RunE: runVerify,
	}
)

func init() {
	verifyCmd.Flags().BoolVar(&verifyStrict, "strict", false, "treat warnings as errors")
}

func runVerify(cmd *cobra.Command, args []string) error {
	gf, proj, err := loadProject()
	if err != nil {
		return err
	}

	plan, err := build.NewBuilder(nil, gf, proj.Root, build.Options{}).BuildPlan(cmd.Context())
	if err != nil {
		return reportBuildError(err)
	}

	for _, f := range plan.Findings {
		if f.Severity == pyproject.SeverityError {
			fmt.Println(ErrorStyle.Render("✗") + " " + f.String())
		} else {
			fmt.Println(WarningStyle.Render("!") + " " + f.String())
		}
	}

	errorCount := len(plan.Findings.Errors())
	failed := errorCount > 0
	if verifyStrict && len(plan.Findings) > 0 {
		failed = true
	}

	if failed {
		printIssue(issue.LockOutOfSyncId)
		return fmt.Errorf("lock verification failed with %d finding(s), %d error(s)",
			len(plan.Findings), errorCount)
	}

	if len(plan.Findings) > 0 {
		fmt.Printf("%s %s satisfies %s (%d warning(s))\n",
			SuccessStyle.Render("✓"), pyproject.LockFilename, pyproject.ManifestFilename, len(plan.Findings))
		return nil
	}
	fmt.Printf("%s %s satisfies %s\n",
		SuccessStyle.Render("✓"), pyproject.LockFilename, pyproject.ManifestFilename)
	return nil
}
