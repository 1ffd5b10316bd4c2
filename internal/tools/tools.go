// Package tools adapts external image utilities to the harness interfaces.
//
// The harness works out of the box with the built-in pipeline in
// internal/imaging; these adapters are selected instead when the
// configuration names an external image-diff or image-convert executable.
package tools

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/snogglethorpe/snogray-test/internal/imaging"
)

// DiffTool wraps an external image-diff executable.
//
// Contract: the tool is invoked as "tool A B THRESHOLD" and must exit zero
// iff the images are within tolerance, one if they differ. Its combined
// output is the diff report.
type DiffTool struct {
	Path string
}

// Differ reports whether the images at a and b differ beyond threshold.
func (t DiffTool) Differ(a, b string, threshold float64) (bool, error) {
	cmd := exec.Command(t.Path, a, b, strconv.FormatFloat(threshold, 'g', -1, 64))
	out, err := cmd.CombinedOutput()
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, fmt.Errorf("image-diff tool %s: %w\n%s", t.Path, err, out)
}

// DiffReport runs the tool without a threshold and returns its output.
// A nonzero exit is expected when the images differ and is not an error.
func (t DiffTool) DiffReport(a, b string) (string, error) {
	cmd := exec.Command(t.Path, a, b)
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("image-diff tool %s: %w", t.Path, err)
		}
	}
	return string(out), nil
}

// ConvertTool wraps an external image-convert executable.
//
// Contract: "tool [-clamp] [-scale-width N] SRC DST" produces DST from SRC
// and exits zero on success.
type ConvertTool struct {
	Path string
}

// Convert invokes the tool with flags matching opts.
func (t ConvertTool) Convert(src, dst string, opts imaging.ConvertOptions) error {
	var args []string
	if opts.Clamp {
		args = append(args, "-clamp")
	}
	if opts.DownsampleWidth > 0 {
		args = append(args, "-scale-width", strconv.Itoa(opts.DownsampleWidth))
	}
	args = append(args, src, dst)

	out, err := exec.Command(t.Path, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("image-convert tool %s: %w\n%s", t.Path, err, out)
	}
	return nil
}
