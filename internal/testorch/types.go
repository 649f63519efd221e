// Package testorch runs a batch of TestConfigs against a workpad's working
// tree and collects TestResults, honoring a depends_on partial order and a
// per-test sandbox with timeout and process-group kill semantics.
package testorch

import "time"

// TestConfig describes one test command to run.
type TestConfig struct {
	Name           string            `json:"name" yaml:"name"`
	Command        []string          `json:"command" yaml:"command"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"` // Run rejects 0; runOne alone treats 0 as 300
	Env            map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	DependsOn      []string          `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Cwd            string            `json:"cwd,omitempty" yaml:"cwd,omitempty"`
}

// Status is a TestResult's terminal state.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// TestResult is the outcome of running one TestConfig.
type TestResult struct {
	Name       string    `json:"name"`
	Status     Status    `json:"status"`
	ExitCode   int       `json:"exit_code"`
	DurationMS int64     `json:"duration_ms"`
	Stdout     string    `json:"stdout"`
	Stderr     string    `json:"stderr"`
	StartedAt  time.Time `json:"started_at"`
	Cause      string    `json:"cause,omitempty"` // populated for error/skipped
}

// Mode selects the scheduling strategy.
type Mode string

const (
	ModeParallel   Mode = "parallel"
	ModeSequential Mode = "sequential"
)

// RunOptions configures Run.
type RunOptions struct {
	Mode           Mode
	MaxParallelism int // default min(NumCPU, 8); ignored in sequential mode
	WorkDir        string
}

// Totals summarizes a batch by status.
type Totals map[Status]int

// BatchResult is the aggregate outcome of a test batch.
type BatchResult struct {
	Results     []TestResult `json:"results"`
	AllPassed   bool         `json:"all_passed"`
	Totals      Totals       `json:"totals_by_status"`
	WallClockMS int64        `json:"wall_clock_ms"`
}
