// SPDX-License-Identifier: EPL-2.0

package launch

import (
	"maps"

	"gantry-cli/pkg/gantryfile"
)

// BuildEnv assembles the launch-time environment with the documented
// precedence: descriptor env.files, then descriptor env.vars, then
// --env-file flag files, then --env-var flag values (highest).
//
// Descriptor env.vars are already baked into the image; repeating them here
// keeps "vars beat files" true at launch too, since everything resolved
// here shadows the image's ENV. The host environment is never inherited:
// containers see only the image's ENV plus what this function returns.
func BuildEnv(gf *gantryfile.Gantryfile, root string, flagFiles []string, flagVars map[string]string) (map[string]string, error) {
	env := make(map[string]string)

	// 1. Descriptor env.files, relative to the project root.
	for _, path := range gf.Env.GetFiles() {
		if err := LoadEnvFile(env, string(path), root); err != nil {
			return nil, err
		}
	}

	// 2. Descriptor env.vars.
	for name, value := range gf.Env.GetVars() {
		env[string(name)] = value
	}

	// 3. --env-file flag files, relative to where gantry was invoked.
	for _, path := range flagFiles {
		if err := LoadEnvFileFromCwd(env, path, ""); err != nil {
			return nil, err
		}
	}

	// 4. --env-var flag values (highest priority).
	maps.Copy(env, flagVars)

	return env, nil
}
