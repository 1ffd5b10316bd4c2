package adapter

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/snogglethorpe/snogray-test/internal/fsutil"
	"github.com/snogglethorpe/snogray-test/internal/imaging"
	"github.com/snogglethorpe/snogray-test/internal/session"
)

// Manifest files listing auxiliary scene files to load around the main
// scene, one per line, resolved relative to the test's directory.
const (
	PreloadsManifest  = "PRELOADS"
	PostloadsManifest = "POSTLOADS"
)

// Renderer runs the primary renderer on a scene file.
type Renderer struct {
	S *session.Session
}

// Run renders testFile to outputPath. With opts.Clamp the renderer first
// writes an unclamped sibling which is then clamped into outputPath.
func (r Renderer) Run(ctx context.Context, testFile, outputPath string, opts Options) (bool, string) {
	if fsutil.Readable(outputPath) {
		return true, ""
	}

	dir := filepath.Dir(testFile)
	renderOut := outputPath
	if opts.Clamp {
		renderOut = UnclampedPath(outputPath)
	}

	var args []string
	for _, f := range readManifest(dir, PreloadsManifest) {
		args = append(args, "-l", f)
	}
	args = append(args, testFile)
	for _, f := range readManifest(dir, PostloadsManifest) {
		args = append(args, "-p", f)
	}
	args = append(args, renderOut)

	cmd := exec.CommandContext(ctx, r.S.Config.Snogray, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return false, fmt.Sprintf("%s %s\n%s%v", r.S.Config.Snogray, strings.Join(args, " "), out, err)
	}

	if opts.Clamp {
		err := r.S.Converter().Convert(renderOut, outputPath, imaging.ConvertOptions{Clamp: true})
		if err != nil {
			return false, fmt.Sprintf("clamping %s: %v", renderOut, err)
		}
	}
	return true, string(out)
}

// readManifest returns the auxiliary files named by a manifest in dir,
// resolved relative to dir. A missing manifest is an empty list.
func readManifest(dir, name string) []string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil
	}
	var files []string
	for _, f := range strings.Fields(string(data)) {
		files = append(files, filepath.Join(dir, f))
	}
	return files
}
