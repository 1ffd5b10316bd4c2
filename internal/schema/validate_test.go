package schema

import (
	"strings"
	"testing"
)

func TestValidateConfigYAML_Valid(t *testing.T) {
	doc := `
snogray: ../build/snogray
pbrt: pbrt
threshold: 0.01
update: new
log_dir: /tmp/snogray-test-logs
quiet: true
`
	if err := ValidateConfigYAML([]byte(doc)); err != nil {
		t.Errorf("ValidateConfigYAML: %v", err)
	}
}

func TestValidateConfigYAML_Empty(t *testing.T) {
	if err := ValidateConfigYAML([]byte("{}")); err != nil {
		t.Errorf("empty config should validate: %v", err)
	}
}

func TestValidateConfigYAML_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad update mode", "update: sometimes"},
		{"unknown key", "renderer: snogray"},
		{"negative threshold", "threshold: -1"},
		{"dotted extension", `output_ext: ".exr"`},
		{"wrong type", "quiet: maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateConfigYAML([]byte(tt.doc)); err == nil {
				t.Error("want validation error, got nil")
			}
		})
	}
}

func TestValidateConfigYAML_MalformedYAML(t *testing.T) {
	err := ValidateConfigYAML([]byte(":\n  - ["))
	if err == nil {
		t.Fatal("want error, got nil")
	}
	if !strings.Contains(err.Error(), "invalid YAML") {
		t.Errorf("error = %v, want invalid YAML", err)
	}
}
