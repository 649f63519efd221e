package automerge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ssdajoker/sologit/internal/analyzer"
	"github.com/ssdajoker/sologit/internal/gate"
	"github.com/ssdajoker/sologit/internal/gitengine"
	"github.com/ssdajoker/sologit/internal/patch"
	"github.com/ssdajoker/sologit/internal/store"
	"github.com/ssdajoker/sologit/internal/testorch"
)

// Pipeline wires the git engine, patch engine, and store into the
// run_tests -> analyze -> evaluate_gate -> promote -> run_smoke -> rollback
// workflow.
type Pipeline struct {
	git   *gitengine.Engine
	patch *patch.Engine
	store *store.Store
	log   *slog.Logger
}

// New creates a Pipeline.
func New(git *gitengine.Engine, patchEng *patch.Engine, st *store.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{git: git, patch: patchEng, store: st, log: logger}
}

// Options configures one Run call.
type Options struct {
	Tests      []testorch.TestConfig
	SmokeTests []testorch.TestConfig
	Rules      gate.Rules
}

// Run executes the full pipeline for padID. Only the promote stage mutates
// trunk; every prior stage is side-effect-free aside from running tests.
func (p *Pipeline) Run(ctx context.Context, padID string, opts Options) (Result, error) {
	result := Result{PadID: padID}

	w, err := p.store.GetWorkpad(padID)
	if err != nil {
		return result, err
	}
	repo, err := p.store.GetRepo(w.RepoID)
	if err != nil {
		return result, err
	}

	batch, stage := p.runTests(ctx, padID, repo, opts.Tests)
	result.Stages = append(result.Stages, stage)

	report := analyzer.Analyze(batch.Results)
	result.TestAnalysis = &report
	result.Stages = append(result.Stages, StageRecord{
		Stage: "analyze", Outcome: StageSuccess, Detail: string(report.Status),
	})

	decision, stage := p.evaluateGate(ctx, padID, w, report, opts.Rules)
	result.Decision = &decision
	result.Stages = append(result.Stages, stage)

	if decision.Verdict != gate.VerdictApprove {
		result.Stages = append(result.Stages, StageRecord{Stage: "promote", Outcome: StageSkipped})
		return result, nil
	}

	commit, stage, err := p.promote(ctx, padID)
	result.Stages = append(result.Stages, stage)
	if err != nil {
		return result, err
	}
	result.PromotedCommit = commit

	smokeBatch, stage := p.runTests(ctx, "", repo, opts.SmokeTests)
	stage.Stage = "run_smoke"
	result.Stages = append(result.Stages, stage)

	ciReport := analyzer.Analyze(smokeBatch.Results)
	result.CIAnalysis = &ciReport
	result.CIStatus = ciStatus(ctx, smokeBatch)

	if result.CIStatus == CIStatusFailure || result.CIStatus == CIStatusUnstable {
		rollback, stage, err := p.rollback(ctx, w.RepoID, commit, result.CIStatus)
		result.Stages = append(result.Stages, stage)
		if err != nil {
			return result, err
		}
		result.Rollback = &rollback
	}

	return result, nil
}

// runTests switches to padID's branch (skipped when padID is empty, i.e.
// the post-promotion smoke run against trunk, which PromoteWorkpad already
// leaves checked out) and runs tests against repo's working tree.
func (p *Pipeline) runTests(ctx context.Context, padID string, repo store.Repository, tests []testorch.TestConfig) (testorch.BatchResult, StageRecord) {
	start := time.Now()
	if padID != "" {
		if err := p.git.SwitchWorkpad(ctx, padID); err != nil {
			return testorch.BatchResult{}, StageRecord{
				Stage: "run_tests", Outcome: StageFailure, Detail: err.Error(),
				DurationMS: time.Since(start).Milliseconds(),
			}
		}
	}

	batch, err := testorch.Run(ctx, tests, testorch.RunOptions{Mode: testorch.ModeParallel, WorkDir: repo.Path})
	outcome := StageSuccess
	detail := ""
	if err != nil {
		outcome = StageFailure
		detail = err.Error()
	} else if !batch.AllPassed {
		outcome = StageFailure
		detail = "one or more tests failed"
	}
	return batch, StageRecord{
		Stage: "run_tests", Outcome: outcome, Detail: detail,
		DurationMS: time.Since(start).Milliseconds(),
	}
}

func (p *Pipeline) evaluateGate(ctx context.Context, padID string, w store.Workpad, report analyzer.Report, rules gate.Rules) (gate.Decision, StageRecord) {
	start := time.Now()
	canPromote, _, err := p.git.CanPromote(ctx, padID)
	if err != nil {
		canPromote = false
	}

	preview, err := p.git.GetWorkpadMergePreview(ctx, padID)
	changeSize := gate.ChangeSize{}
	hasConflicts := err == nil && len(preview.Conflicts) > 0
	if err == nil {
		changeSize.FilesChanged = preview.FilesChanged
		if diffText, derr := p.git.GetDiff(ctx, padID, ""); derr == nil {
			if stats, serr := patch.GetStats(diffText); serr == nil {
				changeSize.LinesChanged = stats.TotalChanges
			}
		}
	}

	decision := gate.Evaluate(gate.Input{
		WorkpadActive: w.Status == store.WorkpadActive,
		CanPromote:    canPromote,
		Analysis:      &report,
		ChangeSize:    changeSize,
		HasConflicts:  hasConflicts,
		Rules:         rules,
	})

	outcome := StageSuccess
	if decision.Verdict == gate.VerdictReject {
		outcome = StageFailure
	}
	return decision, StageRecord{
		Stage: "evaluate_gate", Outcome: outcome, Detail: string(decision.Verdict),
		DurationMS: time.Since(start).Milliseconds(),
	}
}

func (p *Pipeline) promote(ctx context.Context, padID string) (string, StageRecord, error) {
	start := time.Now()
	commit, err := p.git.PromoteWorkpad(ctx, padID)
	if err != nil {
		return "", StageRecord{
			Stage: "promote", Outcome: StageFailure, Detail: err.Error(),
			DurationMS: time.Since(start).Milliseconds(),
		}, err
	}
	p.log.Info("pipeline promoted workpad", "pad_id", padID, "commit", commit)
	return commit, StageRecord{
		Stage: "promote", Outcome: StageSuccess, Detail: commit,
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}

// ciStatus classifies a smoke-test batch: aborted if the run was cancelled,
// unstable if any test timed out, failure if any other test failed, else
// success.
func ciStatus(ctx context.Context, batch testorch.BatchResult) CIStatus {
	if ctx.Err() != nil {
		return CIStatusAborted
	}
	if batch.Totals[testorch.StatusTimeout] > 0 {
		return CIStatusUnstable
	}
	if batch.Totals[testorch.StatusFailed] > 0 || batch.Totals[testorch.StatusError] > 0 {
		return CIStatusFailure
	}
	return CIStatusSuccess
}

func (p *Pipeline) rollback(ctx context.Context, repoID, promotedCommit string, cause CIStatus) (RollbackRecord, StageRecord, error) {
	start := time.Now()
	revertHash, err := p.git.RevertLastCommit(ctx, repoID)
	if err != nil {
		return RollbackRecord{}, StageRecord{
			Stage: "rollback", Outcome: StageFailure, Detail: err.Error(),
			DurationMS: time.Since(start).Milliseconds(),
		}, err
	}

	title := fmt.Sprintf("fix-ci-%s", shortHash(promotedCommit))
	newPadID, err := p.git.CreateWorkpad(ctx, repoID, title)
	if err != nil {
		return RollbackRecord{}, StageRecord{
			Stage: "rollback", Outcome: StageFailure, Detail: err.Error(),
			DurationMS: time.Since(start).Milliseconds(),
		}, err
	}

	p.log.Info("pipeline rolled back", "repo_id", repoID, "reverted_commit", revertHash, "new_pad_id", newPadID, "cause", cause)
	return RollbackRecord{
			RevertedCommit: revertHash,
			NewPadID:       newPadID,
			Cause:          string(cause),
		}, StageRecord{
			Stage: "rollback", Outcome: StageSuccess, Detail: newPadID,
			DurationMS: time.Since(start).Milliseconds(),
		}, nil
}

func shortHash(hash string) string {
	if len(hash) <= 7 {
		return hash
	}
	return hash[:7]
}
