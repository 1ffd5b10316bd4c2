// Package session holds the per-run context threaded through the harness:
// resolved configuration, the output writer, and the scratch directories
// shared by every test. A Session is created once per process and passed
// explicitly to the walker, the runner and the execution adapters.
package session

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/snogglethorpe/snogray-test/internal/config"
	"github.com/snogglethorpe/snogray-test/internal/errors"
	"github.com/snogglethorpe/snogray-test/internal/imaging"
	"github.com/snogglethorpe/snogray-test/internal/output"
	"github.com/snogglethorpe/snogray-test/internal/tools"
)

// Session is the run-wide context. The run and out directories are shared
// across all tests and reused sequentially; adapters must treat their
// contents as ephemeral.
type Session struct {
	Config *config.Config
	Out    *output.Writer
	Mode   config.UpdateMode

	// RunDir is the scratch working directory external processes run in.
	// It is cleared before each invocation that uses it.
	RunDir string

	// OutDir receives rendered output images.
	OutDir string

	root string // temp root removed by Release
}

// New builds a Session from a validated configuration. Scratch directories
// are acquired here and must be released with Release, unconditionally,
// at process exit.
func New(cfg *config.Config, out *output.Writer) (*Session, error) {
	mode, err := config.ParseUpdateMode(cfg.Update)
	if err != nil {
		return nil, errors.Config(err.Error())
	}

	if _, err := exec.LookPath(cfg.Snogray); err != nil {
		return nil, errors.Environmentf("renderer not found: %s", cfg.Snogray)
	}
	for _, tool := range []string{cfg.ImageDiff, cfg.ImageConvert} {
		if tool == "" {
			continue
		}
		if _, err := exec.LookPath(tool); err != nil {
			return nil, errors.Environmentf("image tool not found: %s", tool)
		}
	}

	if cfg.LogDir != "" {
		if err := prepareLogDir(cfg.LogDir); err != nil {
			return nil, err
		}
	}

	root, err := os.MkdirTemp("", "snogray-test-")
	if err != nil {
		return nil, errors.Wrap(err, "create scratch directory")
	}

	s := &Session{
		Config: cfg,
		Out:    out,
		Mode:   mode,
		RunDir: filepath.Join(root, "run"),
		OutDir: filepath.Join(root, "out"),
		root:   root,
	}
	if err := os.MkdirAll(s.RunDir, 0755); err != nil {
		os.RemoveAll(root)
		return nil, errors.Wrap(err, "create run directory")
	}
	if err := os.MkdirAll(s.OutDir, 0755); err != nil {
		os.RemoveAll(root)
		return nil, errors.Wrap(err, "create out directory")
	}
	return s, nil
}

// Release removes the scratch directories. Safe to call more than once.
func (s *Session) Release() {
	if s.root != "" {
		os.RemoveAll(s.root)
		s.root = ""
	}
}

// ClearRunDir empties the scratch run directory before an external
// process invocation.
func (s *Session) ClearRunDir() error {
	if err := os.RemoveAll(s.RunDir); err != nil {
		return err
	}
	return os.MkdirAll(s.RunDir, 0755)
}

// Comparator returns the configured image comparator: the external diff
// tool when one is named, the built-in pipeline otherwise.
func (s *Session) Comparator() imaging.Comparator {
	if s.Config.ImageDiff != "" {
		return tools.DiffTool{Path: s.Config.ImageDiff}
	}
	return imaging.BuiltIn{}
}

// Converter returns the configured image converter.
func (s *Session) Converter() imaging.Converter {
	if s.Config.ImageConvert != "" {
		return tools.ConvertTool{Path: s.Config.ImageConvert}
	}
	return imaging.NativeConverter{}
}

// prepareLogDir creates the log directory if needed and rejects a
// non-empty one: stale failure logs would mix with this run's.
func prepareLogDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Configf("cannot create log directory %s: %v", dir, err)
		}
		return nil
	}
	if err != nil {
		return errors.Configf("cannot read log directory %s: %v", dir, err)
	}
	if len(entries) > 0 {
		return errors.Config(fmt.Sprintf("log directory %s is not empty", dir))
	}
	return nil
}
