package cli

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/snogglethorpe/snogray-test/internal/runner"
)

// printRunSummary prints a formatted summary of the whole run.
// Suppressed in quiet mode unless tests failed.
func printRunSummary(r *runner.Runner) {
	stats := r.Stats
	if out.Quiet() && stats.Failed == 0 {
		return
	}

	out.Println("")
	out.SummaryHeader("Test Summary")

	out.SummaryPassed("Passed", fmt.Sprintf("%d", stats.Passed))
	if stats.Failed > 0 {
		out.SummaryFailed("Failed", fmt.Sprintf("%d", stats.Failed))
	}
	if stats.Skipped > 0 {
		out.SummaryItem("Skipped", fmt.Sprintf("%d", stats.Skipped))
	}
	out.SummaryItem("Total", fmt.Sprintf("%d", stats.Run))

	if stats.Failed > 0 {
		out.Println("")
		out.SummarySectionLabel("Failures by kind:")
		titler := cases.Title(language.English)
		for _, kind := range []runner.FailureKind{
			runner.ExecutionFailure,
			runner.ComparisonFailure,
			runner.CompanionFailure,
		} {
			if n := r.FailureKinds[kind]; n > 0 {
				out.SummaryFailed("  "+titler.String(kind.String()), fmt.Sprintf("%d", n))
			}
		}
	}

	out.Println("")
	if stats.Failed == 0 {
		out.FinalSuccess("All %d tests passed.", stats.Run)
	} else {
		out.FinalFailure("%d of %d tests failed.", stats.Failed, stats.Run)
	}
}
