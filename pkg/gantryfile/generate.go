// SPDX-License-Identifier: EPL-2.0

package gantryfile

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// GenerateCUE renders a Gantryfile back to CUE text. `gantry init` uses it
// to scaffold a descriptor; the output round-trips through ParseBytes.
// Defaulted fields are only emitted when they differ from the defaults, so
// a freshly scaffolded file stays minimal.
func GenerateCUE(gf *Gantryfile) string {
	var sb strings.Builder

	sb.WriteString("// Gantryfile - container build descriptor for gantry\n")
	sb.WriteString("// See https://github.com/gantry-cli/gantry for documentation\n\n")

	sb.WriteString("app: {\n")
	fmt.Fprintf(&sb, "\tname:   %q\n", gf.App.Name)
	fmt.Fprintf(&sb, "\tmodule: %q\n", gf.App.Module)
	if len(gf.App.Args) > 0 {
		sb.WriteString("\targs: [")
		for i, arg := range gf.App.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%q", arg)
		}
		sb.WriteString("]\n")
	}
	sb.WriteString("}\n")

	generatePythonBlock(&sb, gf.Python)
	generatePoetryBlock(&sb, gf.Poetry)
	generateImageBlock(&sb, gf.Image, gf.App.Name)
	generateEnvBlock(&sb, gf.Env)
	generateSourceBlock(&sb, gf.Source)
	generateStringList(&sb, "ports", gf.Ports)
	generateStringList(&sb, "volumes", gf.Volumes)

	return sb.String()
}

// generatePythonBlock emits a python: {...} block for non-default settings.
func generatePythonBlock(sb *strings.Builder, spec PythonSpec) {
	version := spec.Version
	if version == DefaultPythonVersion {
		version = ""
	}
	variant := spec.Variant
	if variant == DefaultImageVariant {
		variant = ""
	}
	if version == "" && variant == "" {
		return
	}
	sb.WriteString("\npython: {\n")
	if version != "" {
		fmt.Fprintf(sb, "\tversion: %q\n", version)
	}
	if variant != "" {
		fmt.Fprintf(sb, "\tvariant: %q\n", variant)
	}
	sb.WriteString("}\n")
}

// generatePoetryBlock emits a poetry: {...} block for non-default settings.
func generatePoetryBlock(sb *strings.Builder, spec PoetrySpec) {
	version := spec.Version
	if version == DefaultPoetryVersion {
		version = ""
	}
	home := spec.Home
	if home == DefaultPoetryHome {
		home = ""
	}
	groups := spec.Groups
	if len(groups) == 1 && groups[0] == DefaultGroup {
		groups = nil
	}
	if version == "" && home == "" && len(groups) == 0 {
		return
	}
	sb.WriteString("\npoetry: {\n")
	if version != "" {
		fmt.Fprintf(sb, "\tversion: %q\n", version)
	}
	if home != "" {
		fmt.Fprintf(sb, "\thome: %q\n", home)
	}
	if len(groups) > 0 {
		sb.WriteString("\tgroups: [")
		for i, group := range groups {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%q", group)
		}
		sb.WriteString("]\n")
	}
	sb.WriteString("}\n")
}

// generateImageBlock emits an image: {...} block. A repository equal to the
// app name is the default and is omitted.
func generateImageBlock(sb *strings.Builder, spec ImageSpec, appName AppName) {
	repository := spec.Repository
	if repository == ImageRepository(appName) {
		repository = ""
	}
	if repository == "" && spec.Base == "" {
		return
	}
	sb.WriteString("\nimage: {\n")
	if repository != "" {
		fmt.Fprintf(sb, "\trepository: %q\n", repository)
	}
	if spec.Base != "" {
		fmt.Fprintf(sb, "\tbase: %q\n", spec.Base)
	}
	sb.WriteString("}\n")
}

// generateEnvBlock emits an env: {...} block with sorted vars. No-op when
// env is nil or empty.
func generateEnvBlock(sb *strings.Builder, env *EnvSpec) {
	if env == nil || (len(env.Files) == 0 && len(env.Vars) == 0) {
		return
	}
	sb.WriteString("\nenv: {\n")
	if len(env.Files) > 0 {
		sb.WriteString("\tfiles: [")
		for i, file := range env.Files {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%q", file)
		}
		sb.WriteString("]\n")
	}
	if len(env.Vars) > 0 {
		sb.WriteString("\tvars: {\n")
		for _, name := range slices.Sorted(maps.Keys(env.Vars)) {
			fmt.Fprintf(sb, "\t\t%s: %q\n", name, env.Vars[name])
		}
		sb.WriteString("\t}\n")
	}
	sb.WriteString("}\n")
}

// generateSourceBlock emits a source: {...} block. No-op when source is nil
// or empty.
func generateSourceBlock(sb *strings.Builder, source *SourceSpec) {
	if source == nil || (len(source.Include) == 0 && len(source.Ignore) == 0) {
		return
	}
	sb.WriteString("\nsource: {\n")
	if len(source.Include) > 0 {
		sb.WriteString("\tinclude: [")
		for i, pattern := range source.Include {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%q", pattern)
		}
		sb.WriteString("]\n")
	}
	if len(source.Ignore) > 0 {
		sb.WriteString("\tignore: [")
		for i, pattern := range source.Ignore {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%q", pattern)
		}
		sb.WriteString("]\n")
	}
	sb.WriteString("}\n")
}

// generateStringList emits a top-level field: [...] list. No-op when empty.
func generateStringList(sb *strings.Builder, field string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s: [", field)
	for i, value := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%q", value)
	}
	sb.WriteString("]\n")
}
