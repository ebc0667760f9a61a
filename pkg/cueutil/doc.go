// SPDX-License-Identifier: EPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// The package consolidates the 3-step CUE parsing pattern used by the
// gantryfile and config packages:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with schema
//  3. Validate and decode to Go struct
//
// # Usage
//
//	//go:embed gantryfile_schema.cue
//	var schemaBytes []byte
//
//	gf, err := cueutil.ParseAndDecode[Gantryfile](
//	    schemaBytes,
//	    userFileBytes,
//	    "#Gantryfile",
//	    cueutil.WithFilename("gantryfile.cue"),
//	)
//	if err != nil {
//	    return nil, err  // Error includes CUE path for debugging
//	}
//	return gf, nil
package cueutil
