// Package errors provides structured error types and exit codes for snogray-test.
package errors

import (
	"fmt"
)

// Exit codes returned by the snogray-test binary.
const (
	ExitSuccess          = 0 // All tests passed
	ExitRuntimeError     = 1 // Runtime error or at least one failing test
	ExitConfigError      = 2 // Configuration error (bad update mode, non-empty log dir, etc.)
	ExitEnvironmentError = 3 // Environment error (renderer or image tool not found)
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNotFound
	KindEnvironment
)

// HarnessError is the base error type for snogray-test.
type HarnessError struct {
	Kind    ErrorKind
	Message string
	Test    string // Test file path if applicable
	Cause   error  // Underlying error
}

func (e *HarnessError) Error() string {
	if e.Test != "" {
		return fmt.Sprintf("[%s] %s", e.Test, e.Message)
	}
	return e.Message
}

func (e *HarnessError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *HarnessError) ExitCode() int {
	switch e.Kind {
	case KindConfig:
		return ExitConfigError
	case KindEnvironment:
		return ExitEnvironmentError
	default:
		return ExitRuntimeError
	}
}

// New creates a new runtime error.
func New(message string) *HarnessError {
	return &HarnessError{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *HarnessError {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *HarnessError {
	return &HarnessError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *HarnessError {
	return Config(fmt.Sprintf(format, args...))
}

// Environment creates a new environment error.
func Environment(message string) *HarnessError {
	return &HarnessError{
		Kind:    KindEnvironment,
		Message: message,
	}
}

// Environmentf creates a new environment error with formatting.
func Environmentf(format string, args ...interface{}) *HarnessError {
	return Environment(fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *HarnessError {
	return &HarnessError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// NotFound creates a not found error.
func NotFound(what, name string) *HarnessError {
	return &HarnessError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if he, ok := err.(*HarnessError); ok {
		return he.ExitCode()
	}
	return ExitRuntimeError
}
