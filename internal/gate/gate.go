package gate

import (
	"fmt"

	"github.com/ssdajoker/sologit/internal/analyzer"
)

// Evaluate runs every configured rule against in, collecting all reasons
// and warnings (no short-circuiting), and returns the resulting Decision.
func Evaluate(in Input) Decision {
	d := Decision{ChangeSize: in.ChangeSize}
	reject := false

	if !in.WorkpadActive {
		d.Reasons = append(d.Reasons, "workpad is not active")
		reject = true
	}

	if in.Rules.RequireTests && in.Analysis == nil {
		d.Reasons = append(d.Reasons, "tests required but none were run")
		reject = true
	}

	if in.Rules.RequireAllTestsPass && in.Analysis != nil && in.Analysis.Status != analyzer.StatusGreen {
		d.Reasons = append(d.Reasons, fmt.Sprintf("tests failed: %s", summarizeTotals(in.Analysis.Totals)))
		reject = true
	}

	if in.Rules.RequireFastForward && !in.CanPromote {
		d.Reasons = append(d.Reasons, "workpad is not fast-forward eligible")
		reject = true
	}

	if in.HasConflicts {
		d.Reasons = append(d.Reasons, "merge conflicts present")
		reject = true
	}

	// Size overruns are warnings only (manual_review), never reject on their own.
	if in.Rules.MaxFilesChanged != nil && in.ChangeSize.FilesChanged > *in.Rules.MaxFilesChanged {
		d.Warnings = append(d.Warnings, fmt.Sprintf(
			"files_changed %d exceeds max_files_changed %d", in.ChangeSize.FilesChanged, *in.Rules.MaxFilesChanged))
	}
	if in.Rules.MaxLinesChanged != nil && in.ChangeSize.LinesChanged > *in.Rules.MaxLinesChanged {
		d.Warnings = append(d.Warnings, fmt.Sprintf(
			"lines_changed %d exceeds max_lines_changed %d", in.ChangeSize.LinesChanged, *in.Rules.MaxLinesChanged))
	}

	switch {
	case reject:
		d.Verdict = VerdictReject
	case len(d.Warnings) > 0:
		d.Verdict = VerdictManualReview
	default:
		d.Verdict = VerdictApprove
	}
	return d
}

func summarizeTotals(totals map[string]int) string {
	return fmt.Sprintf("%d failed, %d timeout, %d error", totals["failed"], totals["timeout"], totals["error"])
}
