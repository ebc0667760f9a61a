// SPDX-License-Identifier: EPL-2.0

package gantryfile

import (
	"errors"
	"testing"
)

func TestPythonVersion_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   PythonVersion
		wantErr bool
	}{
		{"minor version", PythonVersion("3.11"), false},
		{"patch version", PythonVersion("3.11.7"), false},
		{"future major", PythonVersion("4.0"), false},
		{"empty is invalid", PythonVersion(""), true},
		{"major only is invalid", PythonVersion("3"), true},
		{"caret is invalid", PythonVersion("^3.11"), true},
		{"suffix is invalid", PythonVersion("3.11-slim"), true},
		{"four components is invalid", PythonVersion("3.11.7.1"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.value.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("PythonVersion(%q).Validate() error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidPythonVersion) {
				t.Errorf("error should wrap ErrInvalidPythonVersion, got: %v", err)
			}
		})
	}
}

func TestImageVariant_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   ImageVariant
		wantErr bool
	}{
		{"slim", VariantSlim, false},
		{"bookworm", VariantBookworm, false},
		{"alpine", VariantAlpine, false},
		{"full", VariantFull, false},
		{"empty is invalid", ImageVariant(""), true},
		{"unknown flavor is invalid", ImageVariant("buster"), true},
		{"uppercase is invalid", ImageVariant("Slim"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.value.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ImageVariant(%q).Validate() error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidImageVariant) {
					t.Errorf("error should wrap ErrInvalidImageVariant, got: %v", err)
				}
				var varErr *InvalidImageVariantError
				if !errors.As(err, &varErr) {
					t.Errorf("error should be *InvalidImageVariantError, got: %T", err)
				}
			}
		})
	}
}
