// Package automerge composes the test orchestrator, analyzer, gate, and
// git engine into the single pipeline of spec §4.7:
//
//	run_tests -> analyze -> evaluate_gate -> [promote] -> run_smoke -> [rollback]
//
// Grounded on lucasnoah-taintfactory's internal/orchestrator.Orchestrator.Advance:
// one stage runs at a time, each stage's outcome is recorded before moving
// on, and a failure routes to a distinct handler rather than unwinding the
// whole call.
package automerge

import (
	"github.com/ssdajoker/sologit/internal/analyzer"
	"github.com/ssdajoker/sologit/internal/gate"
)

// StageOutcome is the terminal state of one pipeline stage.
type StageOutcome string

const (
	StageSuccess StageOutcome = "success"
	StageFailure StageOutcome = "failure"
	StageSkipped StageOutcome = "skipped"
)

// StageRecord is a structured log entry for one pipeline stage.
type StageRecord struct {
	Stage      string       `json:"stage"`
	Outcome    StageOutcome `json:"outcome"`
	DurationMS int64        `json:"duration_ms"`
	Detail     string       `json:"detail,omitempty"`
}

// CIStatus is the result of the post-promotion smoke-test stage.
type CIStatus string

const (
	CIStatusSuccess  CIStatus = "success"
	CIStatusFailure  CIStatus = "failure"
	CIStatusUnstable CIStatus = "unstable"
	CIStatusAborted  CIStatus = "aborted"
)

// RollbackRecord is returned when a promoted commit's smoke tests fail.
type RollbackRecord struct {
	RevertedCommit string `json:"reverted_commit"`
	NewPadID       string `json:"new_pad_id"`
	Cause          string `json:"cause"`
}

// Result is the full outcome of one Pipeline.Run call.
type Result struct {
	PadID          string           `json:"pad_id"`
	Stages         []StageRecord    `json:"stages"`
	TestAnalysis   *analyzer.Report `json:"test_analysis,omitempty"`
	Decision       *gate.Decision   `json:"decision,omitempty"`
	PromotedCommit string           `json:"promoted_commit,omitempty"`
	CIStatus       CIStatus         `json:"ci_status,omitempty"`
	CIAnalysis     *analyzer.Report `json:"ci_analysis,omitempty"`
	Rollback       *RollbackRecord  `json:"rollback,omitempty"`
}
