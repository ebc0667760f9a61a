// SPDX-License-Identifier: EPL-2.0

// gantry builds and runs Python applications in containers, driven by a
// declarative gantryfile.cue descriptor.
package main

import cmd "gantry-cli/cmd/gantry"

func main() {
	cmd.Execute()
}
