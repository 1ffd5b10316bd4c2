package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/snogglethorpe/snogray-test/internal/errors"
)

// SubdirsManifest names the per-directory file listing which
// subdirectories to recurse into, in order. Directories absent from the
// manifest are never visited implicitly.
const SubdirsManifest = "SUBDIRS"

// RunPath runs the tests under path: a file runs directly, a directory
// runs its plain files in listing order and then recurses into the
// subdirectories its manifest names.
func (r *Runner) RunPath(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.NotFound("test path", path)
	}

	if !info.IsDir() {
		r.RunTest(ctx, path)
		return nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return errors.Wrap(err, "reading test directory "+path)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		r.RunTest(ctx, filepath.Join(path, e.Name()))
	}

	for _, sub := range readSubdirs(path) {
		if err := r.RunPath(ctx, filepath.Join(path, sub)); err != nil {
			return err
		}
	}
	return nil
}

func readSubdirs(dir string) []string {
	data, err := os.ReadFile(filepath.Join(dir, SubdirsManifest))
	if err != nil {
		return nil
	}
	return strings.Fields(string(data))
}
