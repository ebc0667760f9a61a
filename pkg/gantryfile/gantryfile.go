// SPDX-License-Identifier: EPL-2.0

package gantryfile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// Filename is the descriptor file name gantry looks for.
	Filename = "gantryfile.cue"

	// DefaultPythonVersion is the interpreter used when the descriptor
	// declares none.
	DefaultPythonVersion PythonVersion = "3.11"
	// DefaultImageVariant is the base image flavor used when the descriptor
	// declares none.
	DefaultImageVariant = VariantSlim
	// DefaultPoetryVersion is the dependency manager pin used when the
	// descriptor declares none.
	DefaultPoetryVersion ToolVersion = "1.7.1"
	// DefaultPoetryHome is the tool installation root inside the image.
	DefaultPoetryHome = "/opt/poetry"
	// DefaultGroup is the dependency group installed when the descriptor
	// declares none.
	DefaultGroup = "main"
)

var (
	// portSpecRegex validates "HOST:CONTAINER[/PROTOCOL]" publish specs.
	portSpecRegex = regexp.MustCompile(`^[0-9]+:[0-9]+(/(tcp|udp))?$`)

	// groupNameRegex validates Poetry dependency group names.
	groupNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)
)

type (
	// Gantryfile is the decoded descriptor driving a build.
	Gantryfile struct {
		// App identifies the application and its entry module (required).
		App AppSpec `json:"app"`
		// Python selects the interpreter base image (optional, defaulted).
		// Mutually exclusive with Image.Base.
		Python PythonSpec `json:"python,omitempty"`
		// Poetry pins the dependency manager (optional, defaulted).
		Poetry PoetrySpec `json:"poetry,omitempty"`
		// Image controls the repository and base image (optional).
		Image ImageSpec `json:"image,omitempty"`
		// Env declares the environment baked into the image and loaded at
		// launch (optional).
		Env *EnvSpec `json:"env,omitempty"`
		// Source filters the files copied into the source layer (optional).
		Source *SourceSpec `json:"source,omitempty"`
		// Ports lists "HOST:CONTAINER[/PROTOCOL]" publish specs applied at
		// launch (optional).
		Ports []string `json:"ports,omitempty"`
		// Volumes lists "HOST:CONTAINER[:OPTIONS]" mounts applied at launch
		// (optional).
		Volumes []string `json:"volumes,omitempty"`

		// FilePath is where this gantryfile was loaded from, as given to
		// Parse. Not part of the schema.
		FilePath string `json:"-"`
	}

	// AppSpec identifies the packaged application.
	AppSpec struct {
		// Name is the application name; it seeds the default image
		// repository and the managed-container name (required).
		Name AppName `json:"name"`
		// Module is the dotted module path run by the entrypoint (required).
		Module PythonModule `json:"module"`
		// Args are fixed arguments baked into the entrypoint after the
		// module (optional).
		Args []string `json:"args,omitempty"`
	}

	// PythonSpec selects the interpreter base image.
	PythonSpec struct {
		// Version is the interpreter version ("3.11"). Default: 3.11.
		Version PythonVersion `json:"version,omitempty"`
		// Variant is the base image flavor. Default: slim.
		Variant ImageVariant `json:"variant,omitempty"`
	}

	// PoetrySpec pins the dependency manager provisioned into the image.
	PoetrySpec struct {
		// Version is the exact Poetry release to install. Never "latest":
		// builds must be reproducible across time. Default: 1.7.1.
		Version ToolVersion `json:"version,omitempty"`
		// Home is POETRY_HOME inside the image, an absolute container path.
		// Default: /opt/poetry.
		Home string `json:"home,omitempty"`
		// Groups are the dependency groups installed into the image.
		// Default: ["main"], excluding development and test dependencies.
		Groups []string `json:"groups,omitempty"`
	}

	// ImageSpec controls where built images land and what they build from.
	ImageSpec struct {
		// Repository is the repository images are tagged into. Default:
		// the app name.
		Repository ImageRepository `json:"repository,omitempty"`
		// Base is an explicit base image reference overriding the python
		// version/variant pair ("python:3.12-alpine", "my/base:1").
		Base string `json:"base,omitempty"`
	}

	// SourceSpec filters the files staged into the source layer.
	SourceSpec struct {
		// Include lists doublestar patterns selecting source files. Empty
		// means everything under the project root.
		Include []string `json:"include,omitempty"`
		// Ignore lists doublestar patterns excluded from the source layer,
		// on top of the built-in VCS/cache ignores.
		Ignore []string `json:"ignore,omitempty"`
	}
)

// Validate checks the structural rules the CUE schema cannot express, plus
// everything needed for hand-built values. It reports all problems joined,
// not just the first. Call before ApplyDefaults: the python-version vs
// base-image exclusivity check needs the raw descriptor.
func (g *Gantryfile) Validate() error {
	var errs []error

	if err := g.App.Name.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("app.name: %w", err))
	}
	if err := g.App.Module.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("app.module: %w", err))
	}

	if g.Image.Base != "" && (g.Python.Version != "" || g.Python.Variant != "") {
		errs = append(errs, errors.New("image.base and python.version/variant are mutually exclusive: the base image already fixes the interpreter"))
	}
	if g.Python.Version != "" {
		if err := g.Python.Version.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("python.version: %w", err))
		}
	}
	if g.Python.Variant != "" {
		if err := g.Python.Variant.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("python.variant: %w", err))
		}
	}

	if g.Poetry.Version != "" {
		if err := g.Poetry.Version.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("poetry.version: %w", err))
		}
	}
	if g.Poetry.Home != "" && !strings.HasPrefix(g.Poetry.Home, "/") {
		errs = append(errs, fmt.Errorf("poetry.home: %q must be an absolute container path", g.Poetry.Home))
	}
	for _, group := range g.Poetry.Groups {
		if !groupNameRegex.MatchString(group) {
			errs = append(errs, fmt.Errorf("poetry.groups: invalid group name %q", group))
		}
	}

	if g.Image.Repository != "" {
		if err := g.Image.Repository.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("image.repository: %w", err))
		}
	}

	for name := range g.Env.GetVars() {
		if err := name.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("env.vars: %w", err))
		}
	}
	for _, file := range g.Env.GetFiles() {
		if err := file.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("env.files: %w", err))
		}
	}

	if g.Source != nil {
		for _, pattern := range g.Source.Include {
			if !doublestar.ValidatePattern(pattern) {
				errs = append(errs, fmt.Errorf("source.include: invalid pattern %q", pattern))
			}
		}
		for _, pattern := range g.Source.Ignore {
			if !doublestar.ValidatePattern(pattern) {
				errs = append(errs, fmt.Errorf("source.ignore: invalid pattern %q", pattern))
			}
		}
	}

	for _, port := range g.Ports {
		if !portSpecRegex.MatchString(port) {
			errs = append(errs, fmt.Errorf("ports: invalid publish spec %q (want \"HOST:CONTAINER[/tcp|udp]\")", port))
		}
	}
	for _, volume := range g.Volumes {
		if strings.TrimSpace(volume) == "" || !strings.Contains(volume, ":") {
			errs = append(errs, fmt.Errorf("volumes: invalid mount spec %q (want \"HOST:CONTAINER[:OPTIONS]\")", volume))
		}
	}

	return errors.Join(errs...)
}

// ApplyDefaults fills unset optional fields with their documented defaults.
// Parse calls it after validation; hand-built descriptors should do the
// same before use so every consumer sees concrete values.
func (g *Gantryfile) ApplyDefaults() {
	if g.Image.Base == "" {
		if g.Python.Version == "" {
			g.Python.Version = DefaultPythonVersion
		}
		if g.Python.Variant == "" {
			g.Python.Variant = DefaultImageVariant
		}
	}
	if g.Poetry.Version == "" {
		g.Poetry.Version = DefaultPoetryVersion
	}
	if g.Poetry.Home == "" {
		g.Poetry.Home = DefaultPoetryHome
	}
	if len(g.Poetry.Groups) == 0 {
		g.Poetry.Groups = []string{DefaultGroup}
	}
	if g.Image.Repository == "" {
		g.Image.Repository = ImageRepository(g.App.Name)
	}
}

// BaseImage returns the base image reference for the build: an explicit
// image.base wins, otherwise the official python image at the declared
// version and variant ("python:3.11-slim").
func (g *Gantryfile) BaseImage() string {
	if g.Image.Base != "" {
		return g.Image.Base
	}
	version := g.Python.Version
	if version == "" {
		version = DefaultPythonVersion
	}
	variant := g.Python.Variant
	if variant == "" {
		variant = DefaultImageVariant
	}
	if variant == VariantFull {
		return "python:" + version.String()
	}
	return fmt.Sprintf("python:%s-%s", version, variant)
}

// Repository returns the image repository, deriving it from the app name
// when the descriptor does not set one.
func (g *Gantryfile) Repository() ImageRepository {
	if g.Image.Repository != "" {
		return g.Image.Repository
	}
	return ImageRepository(g.App.Name)
}

// Groups returns the dependency groups the image installs.
func (g *Gantryfile) Groups() []string {
	if len(g.Poetry.Groups) > 0 {
		return g.Poetry.Groups
	}
	return []string{DefaultGroup}
}

// PoetryVersion returns the pinned dependency manager version.
func (g *Gantryfile) PoetryVersion() ToolVersion {
	if g.Poetry.Version != "" {
		return g.Poetry.Version
	}
	return DefaultPoetryVersion
}

// PoetryHome returns the tool installation root inside the image.
func (g *Gantryfile) PoetryHome() string {
	if g.Poetry.Home != "" {
		return g.Poetry.Home
	}
	return DefaultPoetryHome
}

// EntrypointArgv returns the fixed container entrypoint command: the pinned
// dependency manager running the application module under the interpreter,
// plus any descriptor-declared args. Exactly one such command exists per
// image; changing it means rebuilding.
func (g *Gantryfile) EntrypointArgv() []string {
	argv := []string{"poetry", "run", "python", "-m", g.App.Module.String()}
	return append(argv, g.App.Args...)
}
