// Package gate evaluates promotion rules against a workpad and a test
// analysis, producing a Decision. Grounded on lucasnoah-taintfactory's
// internal/checks.RunGate: every rule runs, none are short-circuited, and
// the result collects every reason rather than stopping at the first
// failure.
package gate

import "github.com/ssdajoker/sologit/internal/analyzer"

// Rules configures which promotion checks apply.
type Rules struct {
	RequireTests        bool `json:"require_tests" yaml:"require_tests"`
	RequireAllTestsPass bool `json:"require_all_tests_pass" yaml:"require_all_tests_pass"`
	RequireFastForward  bool `json:"require_fast_forward" yaml:"require_fast_forward"`
	MaxFilesChanged     *int `json:"max_files_changed,omitempty" yaml:"max_files_changed,omitempty"`
	MaxLinesChanged     *int `json:"max_lines_changed,omitempty" yaml:"max_lines_changed,omitempty"`
	AllowMergeConflicts bool `json:"allow_merge_conflicts" yaml:"allow_merge_conflicts"`
}

// DefaultRules mirrors a conservative out-of-the-box promotion policy.
func DefaultRules() Rules {
	return Rules{
		RequireTests:        true,
		RequireAllTestsPass: true,
		RequireFastForward:  true,
		AllowMergeConflicts: false,
	}
}

// Verdict is the gate's final call on a promotion attempt.
type Verdict string

const (
	VerdictApprove      Verdict = "approve"
	VerdictReject       Verdict = "reject"
	VerdictManualReview Verdict = "manual_review"
)

// ChangeSize is the measured size of the pending promotion, taken from the
// patch engine's preview/stats.
type ChangeSize struct {
	FilesChanged int `json:"files_changed"`
	LinesChanged int `json:"lines_changed"`
}

// Input bundles everything the gate needs to evaluate one promotion
// attempt. Analysis is optional: nil means "tests were not run".
type Input struct {
	WorkpadActive bool
	CanPromote    bool
	Analysis      *analyzer.Report
	ChangeSize    ChangeSize
	HasConflicts  bool
	Rules         Rules
}

// Decision is the gate's structured output.
type Decision struct {
	Verdict    Verdict    `json:"verdict"`
	Reasons    []string   `json:"reasons"`
	Warnings   []string   `json:"warnings"`
	ChangeSize ChangeSize `json:"change_size"`
}
