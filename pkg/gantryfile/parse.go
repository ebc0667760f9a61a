// SPDX-License-Identifier: EPL-2.0

package gantryfile

import (
	_ "embed"
	"fmt"
	"os"

	"gantry-cli/pkg/cueutil"
)

//go:embed gantryfile_schema.cue
var gantryfileSchema string

// Parse reads and parses a gantryfile from the given path.
func Parse(path string) (*Gantryfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gantryfile at %s: %w", path, err)
	}

	return ParseBytes(data, path)
}

// ParseBytes parses gantryfile content from bytes. It runs the 3-step CUE
// flow (compile schema, compile user data, validate and decode), then the
// structural checks the schema cannot express, and finally fills defaults.
// The returned descriptor is ready for use: every optional field holds a
// concrete value.
func ParseBytes(data []byte, path string) (*Gantryfile, error) {
	gf, err := cueutil.ParseAndDecodeString[Gantryfile](
		gantryfileSchema,
		data,
		"#Gantryfile",
		cueutil.WithFilename(path),
	)
	if err != nil {
		return nil, err
	}

	gf.FilePath = path

	if err := gf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gantryfile at %s: %w", path, err)
	}
	gf.ApplyDefaults()

	return gf, nil
}
