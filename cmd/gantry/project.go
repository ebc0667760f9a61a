// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gantry-cli/internal/build"
	"gantry-cli/internal/config"
	"gantry-cli/internal/container"
	"gantry-cli/internal/discovery"
	"gantry-cli/internal/issue"
	"gantry-cli/internal/launch"
	"gantry-cli/pkg/gantryfile"
	"gantry-cli/pkg/pyproject"
)

// loadProject locates and parses the project descriptor, honoring --chdir.
// Failures print the matching guidance card to stderr before returning the
// error, so commands can just bubble it up.
func loadProject() (*gantryfile.Gantryfile, *discovery.Project, error) {
	gf, proj, err := discovery.Load(chdir)
	if err != nil {
		if errors.Is(err, discovery.ErrNoGantryfile) {
			printIssue(issue.GantryfileNotFoundId)
		} else {
			printIssue(issue.GantryfileParseErrorId)
		}
		return nil, nil, err
	}
	return gf, proj, nil
}

// printIssue renders a guidance card for the given issue id to stderr.
func printIssue(id issue.Id) {
	rendered, err := issue.Get(id).Render(renderStyle())
	if err != nil {
		return
	}
	fmt.Fprint(os.Stderr, rendered)
}

// renderStyle maps the configured color scheme to a glamour style name.
func renderStyle() string {
	if loadedCfg == nil {
		return string(config.ColorSchemeDark)
	}
	switch loadedCfg.UI.ColorScheme {
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeDark:
		return "dark"
	default:
		return "auto"
	}
}

// engineFor selects a container engine: the flag wins over the configured
// preference, and "auto" (or nothing) falls back to detection. When no
// engine is available the guidance card is printed before returning.
func engineFor(flagEngine string) (container.Engine, error) {
	pref := flagEngine
	if pref == "" && loadedCfg != nil {
		pref = string(loadedCfg.Engine)
	}

	var (
		eng container.Engine
		err error
	)
	switch pref {
	case "", string(config.EngineAuto):
		eng, err = container.AutoDetectEngine()
	default:
		engineType := container.EngineType(pref)
		if verr := engineType.Validate(); verr != nil {
			return nil, verr
		}
		eng, err = container.NewEngine(engineType)
	}
	if err != nil {
		var notAvail *container.ErrEngineNotAvailable
		if errors.As(err, &notAvail) {
			printIssue(issue.EngineNotFoundId)
		}
		return nil, err
	}
	return eng, nil
}

// baseBuildOptions seeds build options from the loaded configuration.
// Command flags are layered on top by the caller.
func baseBuildOptions() build.Options {
	opts := build.Options{}
	if loadedCfg != nil {
		opts.Force = loadedCfg.Build.Force
		opts.ContextDir = string(loadedCfg.Build.ContextDir)
		opts.Retries = loadedCfg.Build.Retries
	}
	return opts
}

// printIssueFor prints the guidance card matching err, falling back to the
// given id when no sharper classification applies.
func printIssueFor(err error, fallback issue.Id) {
	var ae *issue.ActionableError
	switch {
	case errors.Is(err, build.ErrLockOutOfSync):
		printIssue(issue.LockOutOfSyncId)
	case errors.Is(err, fs.ErrNotExist) && errors.As(err, &ae):
		switch filepath.Base(ae.Resource) {
		case pyproject.ManifestFilename:
			printIssue(issue.ManifestNotFoundId)
		case pyproject.LockFilename:
			printIssue(issue.LockNotFoundId)
		default:
			printIssue(fallback)
		}
	default:
		printIssue(fallback)
	}
}

// reportBuildError prints the guidance card matching a build pipeline
// failure and returns the error unchanged.
func reportBuildError(err error) error {
	printIssueFor(err, issue.BuildFailedId)
	return err
}

// finishRun turns a launch result into the process exit contract: the
// container's exit status becomes gantry's, exactly, via ExitError.
func finishRun(res *launch.Result) error {
	if res.Error != nil {
		printIssueFor(res.Error, issue.LaunchFailedId)
		return &ExitError{Code: res.ExitCode, Err: res.Error}
	}
	if res.ExitCode != 0 {
		return &ExitError{Code: res.ExitCode}
	}
	return nil
}

// parseEnvVarFlags parses repeated KEY=VALUE flag values into a map.
// Later occurrences of the same key win, matching docker CLI behavior.
func parseEnvVarFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --env-var %q: expected KEY=VALUE", pair)
		}
		vars[key] = value
	}
	return vars, nil
}
