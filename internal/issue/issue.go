// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	GantryfileNotFoundId Id = iota + 1
	GantryfileParseErrorId
	ManifestNotFoundId
	LockNotFoundId
	LockOutOfSyncId
	EngineNotFoundId
	BuildFailedId
	LaunchFailedId
	ConfigLoadFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // project documentation about this issue type
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	gantryfileNotFoundIssue = &Issue{
		id: GantryfileNotFoundId,
		mdMsg: `
# No gantryfile found!

We searched for a gantryfile.cue but couldn't find one in this directory
or any of its parents.

## Things you can try:
- Create a gantryfile in your project root:
~~~
$ gantry init
~~~

- Or run gantry from inside the project:
~~~
$ cd /path/to/your/project
$ gantry build
~~~

## Example gantryfile:
~~~cue
app: {
	name:   "support-bot"
	module: "app.bot"
}

python: version: "3.11"
~~~`,
	}

	gantryfileParseErrorIssue = &Issue{
		id: GantryfileParseErrorId,
		mdMsg: `
# Failed to parse gantryfile!

Your gantryfile.cue contains syntax errors or invalid configuration.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names
- A version range or "latest" where an exact pin is required
- Both image.base and python.version set (they are mutually exclusive)

## Things you can try:
- Check the error message above for the specific field
- Pin tool versions exactly:
~~~cue
poetry: version: "1.7.1"  // not "^1.7" or "latest"
~~~

## Example of a valid descriptor:
~~~cue
app: {
	name:   "support-bot"
	module: "app.bot"
}

python: {
	version: "3.11"
	variant: "slim"
}
~~~`,
	}

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No pyproject.toml found!

The project root has no pyproject.toml, so there is nothing to build a
dependency layer from.

## Things you can try:
- Initialize the project with Poetry:
~~~
$ poetry init
~~~

- Check that the gantryfile sits next to pyproject.toml; gantry treats
  the gantryfile's directory as the project root`,
	}

	lockNotFoundIssue = &Issue{
		id: LockNotFoundId,
		mdMsg: `
# No poetry.lock found!

Reproducible builds need a lock file: without one, installing today and
installing next month can produce different dependency trees.

## Things you can try:
- Generate the lock file and commit it:
~~~
$ poetry lock
$ git add poetry.lock
~~~`,
	}

	lockOutOfSyncIssue = &Issue{
		id: LockOutOfSyncId,
		mdMsg: `
# Lock file out of sync!

poetry.lock no longer satisfies the constraints declared in
pyproject.toml. Building anyway would either fail mid-install or
silently produce an image with the wrong dependency versions, so gantry
stops before any image layer is created.

## Common causes:
- A constraint in pyproject.toml was edited without re-locking
- A dependency was added to a group but never locked
- The lock file was resolved for a different python version

## Things you can try:
- Refresh the lock file:
~~~
$ poetry lock
~~~

- See every finding, not just errors:
~~~
$ gantry verify
~~~`,
	}

	engineNotFoundIssue = &Issue{
		id: EngineNotFoundId,
		mdMsg: `
# Container engine not found!

Building and launching images needs a container engine, but none is
available on this system.

## Supported container engines:
- **Docker**
- **Podman** (rootless containers)

## Things you can try:
- Install Docker:
  - https://docs.docker.com/get-docker/

- Install Podman:
  - Linux: ` + "`sudo apt install podman`" + ` or ` + "`sudo dnf install podman`" + `
  - macOS: ` + "`brew install podman`" + `
  - Windows: Download from https://podman.io

- If the engine is installed but its daemon is down:
~~~
$ systemctl start docker
~~~

- Configure your preferred engine in the gantry config:
~~~cue
engine: "podman"  // or "docker", "auto"
~~~`,
	}

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# Image build failed!

The container engine could not build the image.

## Common causes:
- The base image tag does not exist or cannot be pulled
- A dependency failed to install (network trouble, missing system libs)
- The registry is temporarily unreachable

## Things you can try:
- Pull the base image manually to confirm it exists:
~~~
$ docker pull python:3.11-slim
~~~

- Run with verbose mode to see the full engine output:
~~~
$ gantry --verbose build
~~~

- Slim base images lack compilers; packages with native extensions may
  need the "bookworm" variant:
~~~cue
python: variant: "bookworm"
~~~`,
	}

	launchFailedIssue = &Issue{
		id: LaunchFailedId,
		mdMsg: `
# Container launch failed!

The image exists but the container could not be started. Note that the
application exiting non-zero is NOT a launch failure: gantry passes the
application's exit status through unchanged.

## Common causes:
- A published host port is already taken
- A volume mount path does not exist on the host
- A required dotenv file is missing

## Things you can try:
- Check what is holding the port:
~~~
$ ss -tlnp | grep <port>
~~~

- Mark optional dotenv files with a '?' suffix:
~~~cue
env: files: [".env", ".env.local?"]
~~~

- Run with verbose mode to see the engine invocation:
~~~
$ gantry --verbose run
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the gantry configuration file.

## Configuration file locations:
- Linux: ~/.config/gantry/config.cue
- macOS: ~/Library/Application Support/gantry/config.cue
- Windows: %APPDATA%\gantry\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ gantry config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/gantry/config.cue
~~~

## Example configuration:
~~~cue
engine: "auto"

ui: {
	color_scheme: "auto"
	verbose: false
}
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- The container engine socket requires elevated permissions
- Trying to stage source files you cannot read
- A volume mount points at a protected directory

## Things you can try:
- For Docker, ensure you're in the docker group:
~~~
$ sudo usermod -aG docker $USER
~~~

- Use rootless containers with Podman
- Run gantry from a directory you own`,
	}

	issues = map[Id]*Issue{
		gantryfileNotFoundIssue.Id():   gantryfileNotFoundIssue,
		gantryfileParseErrorIssue.Id(): gantryfileParseErrorIssue,
		manifestNotFoundIssue.Id():     manifestNotFoundIssue,
		lockNotFoundIssue.Id():         lockNotFoundIssue,
		lockOutOfSyncIssue.Id():        lockOutOfSyncIssue,
		engineNotFoundIssue.Id():       engineNotFoundIssue,
		buildFailedIssue.Id():          buildFailedIssue,
		launchFailedIssue.Id():         launchFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		permissionDeniedIssue.Id():     permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
