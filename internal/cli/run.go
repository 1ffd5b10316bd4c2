package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/snogglethorpe/snogray-test/internal/config"
	"github.com/snogglethorpe/snogray-test/internal/errors"
	"github.com/snogglethorpe/snogray-test/internal/runner"
	"github.com/snogglethorpe/snogray-test/internal/session"
)

// ConfigFileName is the configuration file looked up in the working
// directory when --config is not given.
const ConfigFileName = "snogray-test.yaml"

// cmdRun runs the tests under each path, defaulting to the current
// directory.
func cmdRun(paths []string, opts *GlobalOptions) int {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}
	applyOverrides(cfg, opts)
	out.SetQuiet(cfg.Quiet)

	s, err := session.New(cfg, out)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	// Scratch directories are released unconditionally, including on
	// termination signals.
	defer s.Release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(paths) == 0 {
		paths = []string{"."}
	}

	r := runner.New(s)
	for _, p := range paths {
		if err := r.RunPath(ctx, p); err != nil {
			if ctx.Err() != nil {
				out.ErrorPrefix("interrupted")
				return errors.ExitRuntimeError
			}
			out.ErrorPrefix("%v", err)
			return errors.GetExitCode(err)
		}
	}

	printRunSummary(r)

	if r.Stats.Failed > 0 {
		return errors.ExitRuntimeError
	}
	return errors.ExitSuccess
}

// loadConfig resolves the configuration: an explicit --config path must
// exist; otherwise the default file is used when present and built-in
// defaults when not.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadAndValidate(path)
	}
	if _, err := os.Stat(ConfigFileName); err == nil {
		return config.LoadAndValidate(ConfigFileName)
	}
	return config.Default(), nil
}

// applyOverrides layers command-line flags over the file configuration.
func applyOverrides(cfg *config.Config, opts *GlobalOptions) {
	if opts.Quiet {
		cfg.Quiet = true
	}
	if opts.Update != "" {
		cfg.Update = opts.Update
	}
	if opts.LogDir != "" {
		cfg.LogDir = opts.LogDir
	}
	if opts.Snogray != "" {
		cfg.Snogray = opts.Snogray
	}
	if opts.SnograyDir != "" {
		cfg.SnograyDir = opts.SnograyDir
	}
	if opts.Pbrt != "" {
		cfg.Pbrt = opts.Pbrt
	}
	if opts.ImageDiff != "" {
		cfg.ImageDiff = opts.ImageDiff
	}
	if opts.ImageConvert != "" {
		cfg.ImageConvert = opts.ImageConvert
	}
	if opts.ThresholdSet {
		cfg.Threshold = opts.Threshold
	}
}
