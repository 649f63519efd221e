// Package gitengine wraps a git working tree: repository import, workpad
// branch lifecycle, fast-forward-only promotion, diffing, and the repo map.
// It shells out to the git binary with explicit argv (never a shell
// string) and classifies known stderr sentinels into precondition errors
// rather than generic subprocess failures.
package gitengine

import (
	"context"
	"os/exec"
	"strings"

	"github.com/ssdajoker/sologit/internal/errs"
)

// GitRunner executes a git subcommand in dir and returns combined stdout.
// An interface so tests can substitute a fake without invoking real git.
type GitRunner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecGit implements GitRunner by shelling out to the git binary.
type ExecGit struct{}

func (ExecGit) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, classify("git", args, output, err)
	}
	return output, nil
}

// classify turns known git stderr sentinels into typed Precondition errors,
// per spec §9; anything unrecognized surfaces as a SubprocessError.
func classify(command string, args []string, output string, cause error) error {
	exitCode := -1
	if exitErr, ok := cause.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	}

	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "not possible to fast-forward") || strings.Contains(lower, "fast-forward"):
		return &errs.PreconditionError{Op: command, Reason: "not_fast_forward", Details: map[string]any{"git_output": output}}
	case strings.Contains(lower, "conflict"):
		return &errs.PreconditionError{Op: command, Reason: "merge_conflict", Details: map[string]any{"git_output": output}}
	case strings.Contains(lower, "unknown revision") || strings.Contains(lower, "bad revision"):
		return &errs.PreconditionError{Op: command, Reason: "unknown_revision", Details: map[string]any{"git_output": output}}
	}

	return &errs.SubprocessError{
		Command:  command,
		Args:     args,
		Stdout:   output,
		Stderr:   output,
		ExitCode: exitCode,
		Err:      cause,
	}
}
