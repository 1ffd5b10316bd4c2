package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a configuration for errors.
func Validate(cfg *Config) error {
	if _, err := ParseUpdateMode(cfg.Update); err != nil {
		return &ValidationError{Field: "update", Message: err.Error()}
	}
	if cfg.Threshold < 0 {
		return &ValidationError{Field: "threshold", Message: "must not be negative"}
	}
	if cfg.DownsampleWidth < 0 {
		return &ValidationError{Field: "downsample_width", Message: "must not be negative"}
	}
	if err := validateExt("output_ext", cfg.OutputExt); err != nil {
		return err
	}
	if err := validateExt("ref_ext", cfg.RefExt); err != nil {
		return err
	}
	return nil
}

func validateExt(field, ext string) error {
	if ext == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	if strings.HasPrefix(ext, ".") {
		return &ValidationError{Field: field, Message: "must not include the leading dot"}
	}
	return nil
}
