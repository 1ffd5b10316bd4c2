package runner

import "fmt"

// FailureKind distinguishes why a test failed. Execution failures
// short-circuit the remaining comparisons; comparison and companion
// failures accumulate.
type FailureKind int

const (
	// ExecutionFailure means the primary render or script exited non-zero.
	ExecutionFailure FailureKind = iota
	// ComparisonFailure means an output differed from a reference or peer
	// beyond the threshold.
	ComparisonFailure
	// CompanionFailure means a companion render produced no usable output.
	CompanionFailure
)

func (k FailureKind) String() string {
	switch k {
	case ExecutionFailure:
		return "execution failure"
	case ComparisonFailure:
		return "comparison failure"
	case CompanionFailure:
		return "companion failure"
	default:
		return "failure"
	}
}

// Failure is one recorded failure entry for a test.
type Failure struct {
	Kind    FailureKind
	Message string
}

// Outcome collects what happened to a single test: an ordered list of
// failure entries (empty means pass) plus artifacts to archive into the
// log directory on failure.
type Outcome struct {
	Test      string
	Skipped   bool
	Failures  []Failure
	Artifacts []string
}

// Fail appends a failure entry.
func (o *Outcome) Fail(kind FailureKind, format string, args ...interface{}) {
	o.Failures = append(o.Failures, Failure{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Archive marks a file for copying into the log directory if the test
// ends up failing.
func (o *Outcome) Archive(paths ...string) {
	o.Artifacts = append(o.Artifacts, paths...)
}

// Passed reports whether the test ran and recorded no failures.
func (o *Outcome) Passed() bool {
	return !o.Skipped && len(o.Failures) == 0
}
