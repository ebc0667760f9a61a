// SPDX-License-Identifier: EPL-2.0

package pyproject

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testManifestTOML = `
[tool.poetry]
name = "support-bot"
version = "0.1.0"
description = "Telegram support bot"

[tool.poetry.dependencies]
python = "^3.11"
aiogram = "^3.1"
redis = {version = "^5.0", extras = ["hiredis"]}
APScheduler = "~3.10.4"
environs = "^9.5"

[tool.poetry.group.dev.dependencies]
pytest = "^7.4"
ruff = "^0.1"
`

func TestParseManifest(t *testing.T) {
	t.Parallel()

	m, err := ParseManifest([]byte(testManifestTOML))
	if err != nil {
		t.Fatalf("ParseManifest() error = %v", err)
	}

	if m.Name != "support-bot" {
		t.Errorf("Name = %q, want %q", m.Name, "support-bot")
	}
	if m.Version != "0.1.0" {
		t.Errorf("Version = %q, want %q", m.Version, "0.1.0")
	}
	if m.PythonConstraint != "^3.11" {
		t.Errorf("PythonConstraint = %q, want %q", m.PythonConstraint, "^3.11")
	}

	main := m.Groups[MainGroup]
	wantNames := []string{"APScheduler", "aiogram", "environs", "redis"}
	if len(main) != len(wantNames) {
		t.Fatalf("main group has %d dependencies, want %d: %+v", len(main), len(wantNames), main)
	}
	for i, want := range wantNames {
		if main[i].Name != want {
			t.Errorf("main[%d].Name = %q, want %q", i, main[i].Name, want)
		}
	}

	for _, dep := range main {
		if dep.Name == "redis" {
			if dep.Constraint != "^5.0" {
				t.Errorf("redis constraint = %q, want %q", dep.Constraint, "^5.0")
			}
			if len(dep.Extras) != 1 || dep.Extras[0] != "hiredis" {
				t.Errorf("redis extras = %v, want [hiredis]", dep.Extras)
			}
		}
	}

	dev := m.Groups["dev"]
	if len(dev) != 2 || dev[0].Name != "pytest" || dev[1].Name != "ruff" {
		t.Errorf("dev group = %+v, want pytest and ruff", dev)
	}
}

func TestParseManifestNoPoetrySection(t *testing.T) {
	t.Parallel()

	pep621 := `
[project]
name = "something"
version = "1.0.0"
dependencies = ["requests>=2"]
`
	_, err := ParseManifest([]byte(pep621))
	if !errors.Is(err, ErrNoPoetrySection) {
		t.Errorf("ParseManifest() error = %v, want ErrNoPoetrySection", err)
	}
}

func TestParseManifestInvalidTOML(t *testing.T) {
	t.Parallel()

	_, err := ParseManifest([]byte("[tool.poetry\nname = broken"))
	if err == nil {
		t.Fatal("ParseManifest() should reject invalid TOML")
	}
}

func TestParseManifestUnsupportedDependencyValue(t *testing.T) {
	t.Parallel()

	bad := `
[tool.poetry]
name = "x"

[tool.poetry.dependencies]
python = "^3.11"
weird = 42
`
	_, err := ParseManifest([]byte(bad))
	if err == nil {
		t.Fatal("ParseManifest() should reject a numeric dependency value")
	}
	if !strings.Contains(err.Error(), "weird") {
		t.Errorf("error should name the dependency, got: %v", err)
	}
}

func TestParseManifestPathDependency(t *testing.T) {
	t.Parallel()

	src := `
[tool.poetry]
name = "x"

[tool.poetry.dependencies]
python = "^3.11"
shared = {path = "../shared", develop = true}
`
	m, err := ParseManifest([]byte(src))
	if err != nil {
		t.Fatalf("ParseManifest() error = %v", err)
	}
	main := m.Groups[MainGroup]
	if len(main) != 1 || main[0].Source != "path" || main[0].Constraint != "" {
		t.Errorf("path dependency decoded as %+v", main)
	}
}

func TestParseManifestMultipleConstraints(t *testing.T) {
	t.Parallel()

	src := `
[tool.poetry]
name = "x"

[tool.poetry.dependencies]
python = "^3.11"
numpy = [
    {version = "^1.24", python = "<3.12"},
    {version = "^1.26", python = ">=3.12"},
]
`
	m, err := ParseManifest([]byte(src))
	if err != nil {
		t.Fatalf("ParseManifest() error = %v", err)
	}
	main := m.Groups[MainGroup]
	if len(main) != 1 {
		t.Fatalf("main group = %+v, want one entry", main)
	}
	if main[0].Constraint != "^1.24 || ^1.26" {
		t.Errorf("multi-constraint joined as %q, want %q", main[0].Constraint, "^1.24 || ^1.26")
	}
}

func TestParseManifestLegacyDevDependencies(t *testing.T) {
	t.Parallel()

	src := `
[tool.poetry]
name = "x"

[tool.poetry.dependencies]
python = "^3.11"

[tool.poetry.dev-dependencies]
pytest = "^6.0"
`
	m, err := ParseManifest([]byte(src))
	if err != nil {
		t.Fatalf("ParseManifest() error = %v", err)
	}
	dev := m.Groups["dev"]
	if len(dev) != 1 || dev[0].Name != "pytest" {
		t.Errorf("legacy dev-dependencies not mapped to dev group: %+v", dev)
	}
}

func TestLoadManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFilename)
	if err := os.WriteFile(path, []byte(testManifestTOML), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if m.Name != "support-bot" {
		t.Errorf("Name = %q, want %q", m.Name, "support-bot")
	}

	if _, err := LoadManifest(filepath.Join(dir, "nope.toml")); err == nil {
		t.Error("LoadManifest() should fail for a missing file")
	}
}

func TestManifestGroupNames(t *testing.T) {
	t.Parallel()

	m, err := ParseManifest([]byte(testManifestTOML))
	if err != nil {
		t.Fatalf("ParseManifest() error = %v", err)
	}

	got := m.GroupNames()
	want := []string{"main", "dev"}
	if len(got) != len(want) {
		t.Fatalf("GroupNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GroupNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if !m.HasGroup("main") || !m.HasGroup("dev") {
		t.Error("HasGroup should report declared groups")
	}
	if m.HasGroup("docs") {
		t.Error("HasGroup should not report undeclared groups")
	}
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"aiogram", "aiogram"},
		{"Typing_Extensions", "typing-extensions"},
		{"ruamel.yaml", "ruamel-yaml"},
		{"a--b__c..d", "a-b-c-d"},
		{"  APScheduler ", "apscheduler"},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.input); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
