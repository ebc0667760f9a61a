// SPDX-License-Identifier: EPL-2.0

package build

import (
	"fmt"
	"sort"

	"gantry-cli/pkg/gantryfile"
)

// EnvVar is one environment assignment rendered into the image.
type EnvVar struct {
	Name  string
	Value string
}

// RuntimeEnv returns the fixed interpreter and tool environment in render
// order. These values are established before any install step so that
// dependency installation and the entrypoint observe identical behavior:
// unbuffered output, no bytecode artifacts (keeps layer content stable), no
// interactive prompts, and installation into the image's system environment
// instead of a virtualenv.
func RuntimeEnv(gf *gantryfile.Gantryfile) []EnvVar {
	return []EnvVar{
		{Name: "PYTHONUNBUFFERED", Value: "1"},
		{Name: "PYTHONDONTWRITEBYTECODE", Value: "1"},
		{Name: "POETRY_NO_INTERACTION", Value: "1"},
		{Name: "POETRY_VIRTUALENVS_CREATE", Value: "false"},
		{Name: "POETRY_VERSION", Value: string(gf.PoetryVersion())},
		{Name: "POETRY_HOME", Value: gf.PoetryHome()},
	}
}

// DescriptorEnv returns the descriptor's env.vars sorted by name. These are
// baked into the image after the fixed runtime environment.
func DescriptorEnv(gf *gantryfile.Gantryfile) []EnvVar {
	vars := gf.Env.GetVars()
	if len(vars) == 0 {
		return nil
	}

	out := make([]EnvVar, 0, len(vars))
	for name, value := range vars {
		out = append(out, EnvVar{Name: string(name), Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// reservedEnvNames are controlled by the build pipeline itself. Descriptor
// env.vars may not redefine them: the pinned tool version and home belong to
// the poetry block, and the interpreter flags are the contract that makes
// installs reproducible.
var reservedEnvNames = map[string]string{
	"PYTHONUNBUFFERED":          "fixed by the runtime environment",
	"PYTHONDONTWRITEBYTECODE":   "fixed by the runtime environment",
	"POETRY_NO_INTERACTION":     "fixed by the runtime environment",
	"POETRY_VIRTUALENVS_CREATE": "fixed by the runtime environment",
	"POETRY_VERSION":            "set via poetry.version",
	"POETRY_HOME":               "set via poetry.home",
	"PATH":                      "managed by the runtime environment",
}

// checkReservedEnv rejects descriptor env.vars that would shadow the fixed
// runtime environment.
func checkReservedEnv(gf *gantryfile.Gantryfile) error {
	for _, v := range DescriptorEnv(gf) {
		if reason, reserved := reservedEnvNames[v.Name]; reserved {
			return fmt.Errorf("env.vars: %q is reserved (%s)", v.Name, reason)
		}
	}
	return nil
}
