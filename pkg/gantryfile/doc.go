// SPDX-License-Identifier: EPL-2.0

// Package gantryfile defines the schema and parsing for gantryfile.cue
// descriptors: the declarative input that, together with the project's
// pyproject.toml and poetry.lock, fully determines a build.
//
// A minimal descriptor names the application and its entry module:
//
//	app: {
//		name:   "support-bot"
//		module: "app.bot"
//	}
//
// Everything else carries a documented default: python 3.11 on a slim base,
// a pinned Poetry release installed to /opt/poetry, the main dependency
// group, and an image repository derived from the app name. Parsing unifies
// the file with an embedded CUE schema, then applies structural validation
// the schema cannot express, then fills defaults, so a *Gantryfile obtained
// from Parse is always complete and internally consistent.
package gantryfile
