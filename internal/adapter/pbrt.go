package adapter

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/snogglethorpe/snogray-test/internal/fsutil"
	"github.com/snogglethorpe/snogray-test/internal/imaging"
	"github.com/snogglethorpe/snogray-test/internal/session"
)

// Pbrt runs the ground-truth reference renderer in the scratch run
// directory and collects the single output image it produces.
type Pbrt struct {
	S *session.Session
}

// Run renders sceneFile with pbrt. The scratch directory is cleared
// first; afterwards exactly one image with the configured output
// extension must exist there.
func (p Pbrt) Run(ctx context.Context, sceneFile, outputPath string, opts Options) (bool, string) {
	if fsutil.Readable(outputPath) {
		return true, ""
	}

	if err := p.S.ClearRunDir(); err != nil {
		return false, fmt.Sprintf("clearing run directory: %v", err)
	}

	absScene, err := filepath.Abs(sceneFile)
	if err != nil {
		return false, err.Error()
	}

	cmd := exec.CommandContext(ctx, p.S.Config.Pbrt, absScene)
	cmd.Dir = p.S.RunDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return false, fmt.Sprintf("%s %s\n%s%v", p.S.Config.Pbrt, absScene, out, err)
	}

	produced, err := p.findOutput()
	if err != nil {
		return false, fmt.Sprintf("%s\n%s", err, out)
	}

	if opts.Clamp {
		err := p.S.Converter().Convert(produced, outputPath, imaging.ConvertOptions{Clamp: true})
		if err != nil {
			return false, fmt.Sprintf("clamping %s: %v", produced, err)
		}
		return true, string(out)
	}

	if err := fsutil.CopyFile(produced, outputPath); err != nil {
		return false, fmt.Sprintf("copying %s: %v", produced, err)
	}
	return true, string(out)
}

// findOutput locates the image pbrt wrote into the run directory.
func (p Pbrt) findOutput() (string, error) {
	pattern := filepath.Join(p.S.RunDir, "*."+p.S.Config.OutputExt)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no output file found (expected *.%s in %s)", p.S.Config.OutputExt, p.S.RunDir)
	}
	// A well-behaved reference renderer produces exactly one image; if
	// more appear, take the first in lexical order.
	return matches[0], nil
}
