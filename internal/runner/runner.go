// Package runner drives one test file through its full lifecycle:
// parameter lookup, execution through the matching adapter, reference and
// companion comparisons, reporting and optional reference updates. The
// walker in this package feeds it files discovered on disk.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/snogglethorpe/snogray-test/internal/adapter"
	"github.com/snogglethorpe/snogray-test/internal/config"
	"github.com/snogglethorpe/snogray-test/internal/fsutil"
	"github.com/snogglethorpe/snogray-test/internal/params"
	"github.com/snogglethorpe/snogray-test/internal/refimage"
	"github.com/snogglethorpe/snogray-test/internal/session"
)

// Stats counts per-run test results.
type Stats struct {
	Run     int
	Passed  int
	Failed  int
	Skipped int
}

// Runner executes tests against a single session. It is not safe for
// concurrent use; tests run strictly sequentially.
type Runner struct {
	S     *session.Session
	Refs  *refimage.Manager
	Stats Stats

	// FailureKinds counts failures per kind across the whole run.
	FailureKinds map[FailureKind]int
}

func New(s *session.Session) *Runner {
	return &Runner{
		S:            s,
		Refs:         refimage.NewManager(s),
		FailureKinds: make(map[FailureKind]int),
	}
}

// RunTest runs one test file through the state machine and reports its
// result. Unsupported extensions return nil without any output. Component
// failures are recorded in the outcome, never propagated as errors, so
// one bad test cannot stop its siblings.
func (r *Runner) RunTest(ctx context.Context, testFile string) *Outcome {
	kind := adapter.KindOf(testFile)
	if kind == adapter.Unsupported {
		return nil
	}

	out := &Outcome{Test: testFile}

	p, err := params.Load(testFile)
	if err != nil {
		out.Fail(ExecutionFailure, "reading test parameters: %v", err)
		r.report(out)
		return out
	}

	if p.Bool("ignore") {
		out.Skipped = true
		r.Stats.Skipped++
		return out
	}

	threshold := r.S.Config.Threshold
	if v := p.Get("compare_threshold", ""); v != "" {
		threshold, err = strconv.ParseFloat(v, 64)
		if err != nil {
			out.Fail(ExecutionFailure, "bad compare_threshold value %q", v)
			r.report(out)
			return out
		}
	}

	opts := adapter.Options{Clamp: p.Bool("clamp_output")}
	testDir := filepath.Dir(testFile)
	base := strings.TrimSuffix(filepath.Base(testFile), filepath.Ext(testFile))
	outputPath := OutputPath(r.S, kind, testFile)
	storedRef := filepath.Join(testDir, r.S.Config.RefSubdir, base+"."+r.S.Config.RefExt)

	ok, log := kind.Adapter(r.S).Run(ctx, testFile, outputPath, opts)
	if !ok {
		out.Fail(ExecutionFailure, "execution failed:\n%s", strings.TrimRight(log, "\n"))
		r.report(out)
		return out
	}
	out.Archive(outputPath)

	if fsutil.Readable(storedRef) && r.S.Mode != config.UpdateAll {
		r.compareReference(out, outputPath, storedRef, threshold)
	}

	r.compareCompanion(ctx, out, kind, p, testFile, outputPath, threshold, opts)
	r.comparePeers(ctx, out, p, testDir, outputPath, threshold, opts)

	if len(out.Failures) == 0 {
		if err := r.applyUpdatePolicy(outputPath, storedRef); err != nil {
			out.Fail(ExecutionFailure, "updating reference image: %v", err)
		}
	}

	r.report(out)
	return out
}

// compareReference checks the derived downsampled reference against the
// stored one.
func (r *Runner) compareReference(out *Outcome, outputPath, storedRef string, threshold float64) {
	differ, err := r.Refs.ReferenceDiffers(outputPath, storedRef, threshold)
	if err != nil {
		out.Fail(ComparisonFailure, "comparing with %s: %v", storedRef, err)
		return
	}
	if !differ {
		return
	}
	derived, err := r.Refs.MakeReferenceImage(outputPath)
	if err != nil {
		out.Fail(ComparisonFailure, "comparing with %s: %v", storedRef, err)
		return
	}
	report, err := r.S.Comparator().DiffReport(derived, storedRef)
	if err != nil {
		report = err.Error()
	}
	out.Fail(ComparisonFailure, "output differs from reference image %s:\n%s",
		storedRef, strings.TrimRight(report, "\n"))
	out.Archive(derived)
}

// compareCompanion runs the ground-truth renderer on the companion scene
// and compares its output against the primary output. The companion
// defaults to the test file itself for reference-format scenes; other
// kinds take part only when they declare one explicitly.
func (r *Runner) compareCompanion(ctx context.Context, out *Outcome, kind adapter.Kind,
	p params.Params, testFile, outputPath string, threshold float64, opts adapter.Options) {

	scene := p.Get("pbrt_reference", "")
	if scene == "" {
		if kind != adapter.ReferenceScene {
			return
		}
		scene = filepath.Base(testFile)
	}
	scenePath := filepath.Join(filepath.Dir(testFile), scene)

	companionOut := companionOutputPath(r.S, scenePath)
	ok, log := adapter.Pbrt{S: r.S}.Run(ctx, scenePath, companionOut, opts)
	if !ok {
		out.Fail(CompanionFailure, "reference render of %s failed:\n%s",
			scene, strings.TrimRight(log, "\n"))
		return
	}
	r.compareOutputs(out, outputPath, companionOut, scene, threshold)
}

// comparePeers renders each compare_with target and compares it against
// the primary output. Every difference is an independent failure entry.
func (r *Runner) comparePeers(ctx context.Context, out *Outcome, p params.Params,
	testDir, outputPath string, threshold float64, opts adapter.Options) {

	for _, peer := range p.GetAll("compare_with", nil) {
		peerPath := filepath.Join(testDir, peer)
		peerOut := OutputPath(r.S, adapter.KindOf(peerPath), peerPath)
		ok, log := adapter.Renderer{S: r.S}.Run(ctx, peerPath, peerOut, opts)
		if !ok {
			out.Fail(CompanionFailure, "render of %s failed:\n%s",
				peer, strings.TrimRight(log, "\n"))
			continue
		}
		r.compareOutputs(out, outputPath, peerOut, peer, threshold)
	}
}

func (r *Runner) compareOutputs(out *Outcome, primary, other, label string, threshold float64) {
	differ, err := r.S.Comparator().Differ(primary, other, threshold)
	if err != nil {
		out.Fail(ComparisonFailure, "comparing with %s: %v", label, err)
		return
	}
	if !differ {
		return
	}
	report, err := r.S.Comparator().DiffReport(primary, other)
	if err != nil {
		report = err.Error()
	}
	out.Fail(ComparisonFailure, "output differs from %s:\n%s",
		label, strings.TrimRight(report, "\n"))
	out.Archive(other)
}

// applyUpdatePolicy writes the stored reference image for a passing test
// according to the session's update mode.
func (r *Runner) applyUpdatePolicy(outputPath, storedRef string) error {
	switch r.S.Mode {
	case config.UpdateAll:
		return r.Refs.UpdateReference(outputPath, storedRef)
	case config.UpdateNew:
		if fsutil.Readable(storedRef) {
			return nil
		}
		return r.Refs.UpdateReference(outputPath, storedRef)
	default:
		return nil
	}
}

// report emits the per-test status line, updates run statistics, and for
// failing tests persists the failure log and offending images into the
// log directory when one is configured.
func (r *Runner) report(out *Outcome) {
	r.Stats.Run++
	if len(out.Failures) == 0 {
		r.Stats.Passed++
		r.S.Out.TestOK(out.Test)
		return
	}

	r.Stats.Failed++
	r.S.Out.TestFailed(out.Test)
	for _, f := range out.Failures {
		r.FailureKinds[f.Kind]++
		r.S.Out.FailureDetail(f.Message)
	}

	if r.S.Config.LogDir != "" {
		if err := r.persistFailure(out); err != nil {
			r.S.Out.ErrorPrefix("writing failure log for %s: %v", out.Test, err)
		}
	}
}

// persistFailure records a failing test in the log directory: a text log
// of its failure entries plus copies of the archived images.
func (r *Runner) persistFailure(out *Outcome) error {
	stem := encodeComponent(strings.TrimSuffix(out.Test, filepath.Ext(out.Test)))

	var b strings.Builder
	fmt.Fprintf(&b, "%s: FAILED\n", out.Test)
	for _, f := range out.Failures {
		fmt.Fprintf(&b, "\n[%s]\n%s\n", f.Kind, f.Message)
	}
	logPath := filepath.Join(r.S.Config.LogDir, stem+".log")
	if err := os.WriteFile(logPath, []byte(b.String()), 0644); err != nil {
		return err
	}

	for _, art := range out.Artifacts {
		if !fsutil.Readable(art) {
			continue
		}
		dst := filepath.Join(r.S.Config.LogDir, filepath.Base(art))
		if err := fsutil.CopyFile(art, dst); err != nil {
			return err
		}
	}
	return nil
}
