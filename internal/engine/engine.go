// Package engine wires the store, git engine, patch engine, test
// orchestrator, analyzer, promotion gate, auto-merge pipeline, and audit
// trail into one synchronous surface — the replacement for the
// process-global singletons the distilled spec's §9 warns against.
//
// Engine is constructed once per process and threaded through every call
// site (cmd/sologit, or an embedding AI orchestrator via the AIContext
// interface below).
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ssdajoker/sologit/internal/analyzer"
	"github.com/ssdajoker/sologit/internal/audit"
	"github.com/ssdajoker/sologit/internal/automerge"
	"github.com/ssdajoker/sologit/internal/config"
	"github.com/ssdajoker/sologit/internal/gate"
	"github.com/ssdajoker/sologit/internal/gitengine"
	"github.com/ssdajoker/sologit/internal/patch"
	"github.com/ssdajoker/sologit/internal/store"
	"github.com/ssdajoker/sologit/internal/testorch"
)

// Engine bundles every engine-core component behind one handle.
type Engine struct {
	cfg      config.Config
	store    *store.Store
	git      *gitengine.Engine
	patch    *patch.Engine
	pipeline *automerge.Pipeline
	audit    *audit.DB
	log      *slog.Logger
}

// Open constructs an Engine from cfg: opens the store at
// cfg.Sologit.StateRoot, opens the audit trail, and wires the git, patch,
// and auto-merge layers together. Callers must Close the returned Engine.
func Open(cfg config.Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	st, err := store.Open(cfg.Sologit.StateRoot)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	adb, err := audit.Open(filepath.Join(cfg.Sologit.StateRoot, "audit.db"))
	if err != nil {
		return nil, fmt.Errorf("open audit trail: %w", err)
	}

	git := gitengine.New(st, gitengine.ExecGit{}, logger)
	patchEng := patch.New(git)
	pipeline := automerge.New(git, patchEng, st, logger)

	return &Engine{
		cfg:      cfg,
		store:    st,
		git:      git,
		patch:    patchEng,
		pipeline: pipeline,
		audit:    adb,
		log:      logger,
	}, nil
}

// Close releases the audit trail's connection.
func (e *Engine) Close() error {
	return e.audit.Close()
}

// Store exposes the underlying store for read-only CLI listing commands.
func (e *Engine) Store() *store.Store { return e.store }

// AuditEvents returns the recorded lifecycle events for a workpad.
func (e *Engine) AuditEvents(padID string) ([]audit.WorkpadEvent, error) {
	return e.audit.GetWorkpadEvents(padID)
}

// AuditPipelineHistory returns the recorded auto-merge pipeline stage
// history for a workpad.
func (e *Engine) AuditPipelineHistory(padID string) ([]audit.PipelineRun, error) {
	return e.audit.GetPipelineHistory(padID)
}

// ImportArchive creates a repository from an in-memory zip or tar.gz
// archive.
func (e *Engine) ImportArchive(ctx context.Context, data []byte, name string) (string, error) {
	id, err := e.git.InitFromArchive(ctx, data, name)
	if err != nil {
		return "", err
	}
	_ = e.audit.LogWorkpadEvent(id, "", "created", "repo imported from archive")
	return id, nil
}

// ImportURL clones a remote repository, inheriting its default branch as
// trunk.
func (e *Engine) ImportURL(ctx context.Context, url, name string) (string, error) {
	id, err := e.git.InitFromURL(ctx, url, name)
	if err != nil {
		return "", err
	}
	_ = e.audit.LogWorkpadEvent(id, "", "created", "repo cloned from "+url)
	return id, nil
}

// CreateWorkpad opens a new ephemeral branch off trunk.
func (e *Engine) CreateWorkpad(ctx context.Context, repoID, title string) (string, error) {
	padID, err := e.git.CreateWorkpad(ctx, repoID, title)
	if err != nil {
		return "", err
	}
	_ = e.audit.LogWorkpadEvent(repoID, padID, "created", title)
	return padID, nil
}

// ApplyPatch applies a unified diff to a workpad as a single checkpoint
// commit.
func (e *Engine) ApplyPatch(ctx context.Context, padID, diffText, message string) (string, error) {
	hash, err := e.patch.Apply(ctx, padID, diffText, message, patch.ApplyOptions{Validate: true})
	if err != nil {
		return "", err
	}
	_ = e.audit.LogWorkpadEvent("", padID, "checkpoint", hash)
	return hash, nil
}

// PreviewPatch reports whether a diff applies cleanly, its size stats, and
// an advisory recommendation, without mutating the workpad's tree.
func (e *Engine) PreviewPatch(ctx context.Context, padID, diffText string) (patch.Preview, error) {
	return e.patch.Preview(ctx, padID, diffText)
}

// RunTests runs a test batch against a workpad's working tree and
// analyzes the results in one call, without evaluating the promotion
// gate.
func (e *Engine) RunTests(ctx context.Context, padID string, tests []testorch.TestConfig) (testorch.BatchResult, analyzer.Report, error) {
	w, err := e.store.GetWorkpad(padID)
	if err != nil {
		return testorch.BatchResult{}, analyzer.Report{}, err
	}
	repo, err := e.store.GetRepo(w.RepoID)
	if err != nil {
		return testorch.BatchResult{}, analyzer.Report{}, err
	}
	if err := e.git.SwitchWorkpad(ctx, padID); err != nil {
		return testorch.BatchResult{}, analyzer.Report{}, err
	}
	batch, err := testorch.Run(ctx, tests, testorch.RunOptions{
		Mode:           testorch.ModeParallel,
		MaxParallelism: e.cfg.Sologit.Sandbox.MaxParallelism,
		WorkDir:        repo.Path,
	})
	if err != nil {
		return batch, analyzer.Report{}, err
	}
	return batch, analyzer.Analyze(batch.Results), nil
}

// Promote runs the full run_tests -> analyze -> evaluate_gate -> [promote]
// -> run_smoke -> [rollback] pipeline for padID, using the configured
// gate rules and smoke test batch.
func (e *Engine) Promote(ctx context.Context, padID string) (automerge.Result, error) {
	result, err := e.pipeline.Run(ctx, padID, automerge.Options{
		Tests:      e.cfg.Sologit.Tests,
		SmokeTests: e.cfg.Sologit.SmokeTests,
		Rules:      e.cfg.Sologit.GateRules,
	})
	if err != nil {
		return result, err
	}
	for _, stage := range result.Stages {
		_ = e.audit.LogPipelineStage(padID, stage.Stage, string(stage.Outcome), int(stage.DurationMS), stage.Detail)
	}
	if result.Rollback != nil {
		w, werr := e.store.GetWorkpad(padID)
		repoID := ""
		if werr == nil {
			repoID = w.RepoID
		}
		_ = e.audit.LogRollback(repoID, result.Rollback.RevertedCommit, result.Rollback.NewPadID, result.Rollback.Cause)
	}
	return result, nil
}

// GateDecisionOnly evaluates the promotion gate against a workpad's
// current test analysis without running the rest of the pipeline —
// useful for a CLI "would this promote" dry run.
func (e *Engine) GateDecisionOnly(ctx context.Context, padID string, report analyzer.Report, rules gate.Rules) (gate.Decision, error) {
	canPromote, _, err := e.git.CanPromote(ctx, padID)
	if err != nil {
		return gate.Decision{}, err
	}
	preview, err := e.git.GetWorkpadMergePreview(ctx, padID)
	if err != nil {
		return gate.Decision{}, err
	}
	return gate.Evaluate(gate.Input{
		WorkpadActive: true,
		CanPromote:    canPromote,
		Analysis:      &report,
		ChangeSize:    gate.ChangeSize{FilesChanged: preview.FilesChanged},
		HasConflicts:  len(preview.Conflicts) > 0,
		Rules:         rules,
	}), nil
}
