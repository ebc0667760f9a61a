// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"os"

	"github.com/charmbracelet/log"
)

// debugLog carries leveled diagnostics for the long-running paths (build
// pipeline, watch loop). User-facing results keep going through the styled
// printers; the logger exists for --verbose troubleshooting detail on
// stderr, where it interleaves cleanly with engine output.
var debugLog = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "gantry",
})

func init() {
	debugLog.SetLevel(log.WarnLevel)
}

// enableVerboseLogging lowers the logger threshold to debug. Called once
// the --verbose flag and the loaded configuration have been reconciled.
func enableVerboseLogging() {
	debugLog.SetLevel(log.DebugLevel)
}
