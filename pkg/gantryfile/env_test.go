// SPDX-License-Identifier: EPL-2.0

package gantryfile

import (
	"errors"
	"testing"
)

func TestEnvVarName_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   EnvVarName
		wantErr bool
	}{
		{"upper snake", EnvVarName("BOT_TOKEN"), false},
		{"lowercase", EnvVarName("token"), false},
		{"underscore prefix", EnvVarName("_PRIVATE"), false},
		{"digits after first char", EnvVarName("REDIS_DB_0"), false},
		{"empty is invalid", EnvVarName(""), true},
		{"leading digit is invalid", EnvVarName("1TOKEN"), true},
		{"hyphen is invalid", EnvVarName("BOT-TOKEN"), true},
		{"space is invalid", EnvVarName("BOT TOKEN"), true},
		{"equals is invalid", EnvVarName("TOKEN=x"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.value.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("EnvVarName(%q).Validate() error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidEnvVarName) {
				t.Errorf("error should wrap ErrInvalidEnvVarName, got: %v", err)
			}
		})
	}
}

func TestEnvSpec_NilSafety(t *testing.T) {
	t.Parallel()

	var spec *EnvSpec
	if got := spec.GetFiles(); len(got) != 0 {
		t.Errorf("nil EnvSpec GetFiles() = %v, want empty", got)
	}
	if got := spec.GetVars(); len(got) != 0 {
		t.Errorf("nil EnvSpec GetVars() = %v, want empty", got)
	}
}

func TestEnvSpec_Accessors(t *testing.T) {
	t.Parallel()

	spec := &EnvSpec{
		Files: []DotenvFilePath{".env", ".env.local?"},
		Vars:  map[EnvVarName]string{"TZ": "UTC"},
	}
	if got := spec.GetFiles(); len(got) != 2 {
		t.Errorf("GetFiles() returned %d files, want 2", len(got))
	}
	if got := spec.GetVars()["TZ"]; got != "UTC" {
		t.Errorf("GetVars()[TZ] = %q, want %q", got, "UTC")
	}
}
