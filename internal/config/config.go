// Package config provides configuration loading and validation for the
// snogray-test harness. Configuration lives in a snogray-test.yaml file;
// command-line flags override individual values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/snogglethorpe/snogray-test/internal/schema"
)

// UpdateMode controls when stored reference images are (over)written.
type UpdateMode string

const (
	// UpdateNo never writes reference images.
	UpdateNo UpdateMode = "no"
	// UpdateNew writes a reference image only if none is stored yet.
	UpdateNew UpdateMode = "new"
	// UpdateAll always overwrites stored reference images.
	UpdateAll UpdateMode = "all"
)

// ParseUpdateMode converts a string to an UpdateMode.
func ParseUpdateMode(s string) (UpdateMode, error) {
	switch UpdateMode(s) {
	case UpdateNo, UpdateNew, UpdateAll:
		return UpdateMode(s), nil
	}
	return "", fmt.Errorf("invalid update mode %q (must be no, new, or all)", s)
}

// Config represents the complete harness configuration.
type Config struct {
	// Snogray is the primary renderer executable.
	Snogray string `yaml:"snogray"`
	// SnograyDir is the directory holding the renderer's companion tools,
	// exposed to test scripts.
	SnograyDir string `yaml:"snogray_dir"`
	// Pbrt is the ground-truth reference renderer executable.
	Pbrt string `yaml:"pbrt"`

	// ImageDiff and ImageConvert name external image tools. Empty values
	// select the built-in pipeline.
	ImageDiff    string `yaml:"image_diff"`
	ImageConvert string `yaml:"image_convert"`

	// Threshold is the default maximum average-intensity delta for two
	// images to compare equal; tests override it with compare_threshold.
	Threshold float64 `yaml:"threshold"`

	// Update is the reference update policy: no, new, or all.
	Update string `yaml:"update"`

	// RefSubdir is the per-directory subdirectory holding stored
	// reference images.
	RefSubdir string `yaml:"ref_subdir"`

	// OutputExt and RefExt are the renderer output and reference image
	// extensions (without dot).
	OutputExt string `yaml:"output_ext"`
	RefExt    string `yaml:"ref_ext"`

	// DownsampleWidth is the fixed width reference images are scaled to.
	DownsampleWidth int `yaml:"downsample_width"`

	// LogDir, if set, receives a failure log plus the offending images
	// for every failing test. It must be empty at the start of a run.
	LogDir string `yaml:"log_dir"`

	Quiet bool `yaml:"quiet"`
}

// Load reads and parses a snogray-test.yaml configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadAndValidate reads a config file, checks it against the embedded
// schema, applies defaults and validates the result.
func LoadAndValidate(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := schema.ValidateConfigYAML(data); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied, used when
// no config file is present.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
