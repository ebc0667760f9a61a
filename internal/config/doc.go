// SPDX-License-Identifier: EPL-2.0

// Package config handles gantry tool configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/gantry/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/gantry/config.cue on macOS, %APPDATA%\gantry\config.cue
// on Windows). The package provides type-safe configuration access covering container
// engine selection, UI settings, and build behavior. Individual values can also be
// overridden through GANTRY_* environment variables (GANTRY_ENGINE, GANTRY_UI_VERBOSE,
// GANTRY_BUILD_RETRIES, ...).
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations. Tool
// configuration here is distinct from the per-project gantryfile: this package controls
// how the gantry CLI behaves, while the gantryfile describes what to build.
package config
