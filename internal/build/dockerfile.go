// SPDX-License-Identifier: EPL-2.0

package build

import (
	"fmt"
	"strings"

	"gantry-cli/pkg/gantryfile"
	"gantry-cli/pkg/pyproject"
)

// Workdir is the application directory inside the image. The dependency
// layer installs into the system environment, so the only thing living here
// is the source tree and the manifest pair.
const Workdir = "/app"

// RenderDockerfile renders the five-step build recipe for the descriptor.
// The output is deterministic: map-backed inputs are sorted before
// rendering, so the same descriptor always produces byte-identical text.
//
// Callers are expected to have validated the descriptor first; in
// particular, env.vars must not collide with the fixed runtime environment
// (see checkReservedEnv).
func RenderDockerfile(gf *gantryfile.Gantryfile) string {
	var sb strings.Builder

	sb.WriteString("# Generated by gantry. Edits are overwritten on every build;\n")
	sb.WriteString("# change the gantryfile instead.\n")
	fmt.Fprintf(&sb, "FROM %s\n\n", gf.BaseImage())

	// Environment establishment: one block before any RUN, shared by
	// installation and the entrypoint.
	sb.WriteString("# Runtime environment, fixed before any install step\n")
	sb.WriteString("ENV")
	runtime := RuntimeEnv(gf)
	for i, v := range runtime {
		if i > 0 {
			sb.WriteString(" \\\n   ")
		}
		fmt.Fprintf(&sb, " %s=%s", v.Name, v.Value)
	}
	sb.WriteString("\n")
	// PATH references POETRY_HOME, so it needs its own instruction: within
	// a single ENV, references resolve against the previous layer's values.
	sb.WriteString("ENV PATH=\"$POETRY_HOME/bin:$PATH\"\n")

	if custom := DescriptorEnv(gf); len(custom) > 0 {
		sb.WriteString("\n# Descriptor environment\n")
		sb.WriteString("ENV")
		for i, v := range custom {
			if i > 0 {
				sb.WriteString(" \\\n   ")
			}
			fmt.Fprintf(&sb, " %s=%q", v.Name, v.Value)
		}
		sb.WriteString("\n")
	}

	// Tool provisioning: exact pin, never "latest".
	sb.WriteString("\n# Pinned dependency manager\n")
	sb.WriteString("RUN pip install \"poetry==$POETRY_VERSION\"\n\n")

	fmt.Fprintf(&sb, "WORKDIR %s\n\n", Workdir)

	// Dependency layer: only the manifest pair enters this layer's input
	// set, so source edits reuse the cached install.
	sb.WriteString("# Dependency layer (cache key: manifest + lock only)\n")
	fmt.Fprintf(&sb, "COPY %s %s ./\n", pyproject.ManifestFilename, pyproject.LockFilename)
	fmt.Fprintf(&sb, "RUN poetry install --only %s --no-root\n\n", strings.Join(gf.Groups(), ","))

	sb.WriteString("# Application source\n")
	sb.WriteString("COPY . ./\n\n")

	// Entrypoint: exactly one foreground command, fixed at build time.
	sb.WriteString(renderCmd(gf.EntrypointArgv()))

	return sb.String()
}

// renderCmd renders the exec-form CMD instruction so the process runs
// without a shell wrapper and receives signals directly.
func renderCmd(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	return fmt.Sprintf("CMD [%s]\n", strings.Join(quoted, ", "))
}
