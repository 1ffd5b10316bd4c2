package adapter

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/snogglethorpe/snogray-test/internal/fsutil"
	"github.com/snogglethorpe/snogray-test/internal/session"
)

// ScriptRunner executes an arbitrary test script in the scratch run
// directory. The environment contract exposes the renderer, the script's
// own location, the scratch directories and the quiet flag:
//
//	SNOGRAY      primary renderer executable
//	SNOGRAY_DIR  directory with the renderer's companion tools
//	TEST_SCRIPT  absolute path of the script
//	TEST_DIR     directory containing the script
//	RUN_DIR      fresh scratch working directory (also the cwd)
//	OUT_DIR      designated output directory
//	QUIET        "1" when quiet mode is on, "0" otherwise
type ScriptRunner struct {
	S *session.Session
}

// Run executes scriptFile. Exit status zero is success; the combined
// output is the captured log either way.
func (sc ScriptRunner) Run(ctx context.Context, scriptFile, outputPath string, opts Options) (bool, string) {
	if fsutil.Readable(outputPath) {
		return true, ""
	}

	if err := sc.S.ClearRunDir(); err != nil {
		return false, fmt.Sprintf("clearing run directory: %v", err)
	}

	absScript, err := filepath.Abs(scriptFile)
	if err != nil {
		return false, err.Error()
	}

	quiet := "0"
	if sc.S.Out.Quiet() {
		quiet = "1"
	}

	cmd := exec.CommandContext(ctx, absScript)
	cmd.Dir = sc.S.RunDir
	cmd.Env = append(os.Environ(),
		"SNOGRAY="+sc.S.Config.Snogray,
		"SNOGRAY_DIR="+sc.S.Config.SnograyDir,
		"TEST_SCRIPT="+absScript,
		"TEST_DIR="+filepath.Dir(absScript),
		"RUN_DIR="+sc.S.RunDir,
		"OUT_DIR="+sc.S.OutDir,
		"QUIET="+quiet,
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return false, fmt.Sprintf("%s\n%s%v", absScript, out, err)
	}
	return true, string(out)
}
