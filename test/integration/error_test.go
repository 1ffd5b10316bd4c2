package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/snogglethorpe/snogray-test/internal/cli"
	"github.com/snogglethorpe/snogray-test/internal/errors"
)

func TestMissingRendererExitCode(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PATH", t.TempDir())

	code := cli.Run([]string{"."})
	if code != errors.ExitEnvironmentError {
		t.Errorf("exit code = %d, want %d", code, errors.ExitEnvironmentError)
	}
}

func TestMissingImageToolExitCode(t *testing.T) {
	t.Chdir(t.TempDir())
	bin := stubRenderer(t)

	code := cli.Run([]string{"--snogray=" + bin, "--image-diff=/nonexistent/diff", "."})
	if code != errors.ExitEnvironmentError {
		t.Errorf("exit code = %d, want %d", code, errors.ExitEnvironmentError)
	}
}

func TestBadUpdateModeExitCode(t *testing.T) {
	t.Chdir(t.TempDir())
	bin := stubRenderer(t)

	code := cli.Run([]string{"--snogray=" + bin, "--update=sometimes", "."})
	if code != errors.ExitConfigError {
		t.Errorf("exit code = %d, want %d", code, errors.ExitConfigError)
	}
}

func TestNonEmptyLogDirExitCode(t *testing.T) {
	t.Chdir(t.TempDir())
	bin := stubRenderer(t)

	logDir := filepath.Join(t.TempDir(), "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(logDir, "stale.log"), []byte("old\n"), 0644); err != nil {
		t.Fatal(err)
	}

	code := cli.Run([]string{"--snogray=" + bin, "--log-dir=" + logDir, "."})
	if code != errors.ExitConfigError {
		t.Errorf("exit code = %d, want %d", code, errors.ExitConfigError)
	}
}

func TestExecutionFailureExitCode(t *testing.T) {
	t.Chdir(t.TempDir())
	writeConfig(t)

	bin := filepath.Join(t.TempDir(), "broken-renderer")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\nexit 1\n"), 0755); err != nil {
		t.Fatal(err)
	}
	writeScene(t, filepath.Join("scenes", "cube.lua"))

	code := cli.Run([]string{"--snogray=" + bin, "scenes"})
	if code != errors.ExitRuntimeError {
		t.Errorf("exit code = %d, want %d", code, errors.ExitRuntimeError)
	}
}

func TestMissingTestPathExitCode(t *testing.T) {
	t.Chdir(t.TempDir())
	bin := stubRenderer(t)

	code := cli.Run([]string{"--snogray=" + bin, "no-such-dir"})
	if code != errors.ExitRuntimeError {
		t.Errorf("exit code = %d, want %d", code, errors.ExitRuntimeError)
	}
}
