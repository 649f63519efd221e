package gitengine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ssdajoker/sologit/internal/errs"
	"github.com/ssdajoker/sologit/internal/store"
)

// Engine wraps a Store and a GitRunner to provide the git-level operations
// of spec §4.2. It is constructed once at process start and threaded
// through calls, per spec §9 ("replace global singletons").
type Engine struct {
	store *store.Store
	git   GitRunner
	locks *repoLocks
	log   *slog.Logger
}

// New creates an Engine backed by st, issuing git commands via runner.
func New(st *store.Store, runner GitRunner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: st, git: runner, locks: newRepoLocks(), log: logger}
}

func (e *Engine) repoPath(repoID string) (string, store.Repository, error) {
	repo, err := e.store.GetRepo(repoID)
	if err != nil {
		return "", store.Repository{}, err
	}
	return repo.Path, repo, nil
}

// currentBranch returns the branch checked out at HEAD, or "" if detached.
func (e *Engine) currentBranch(ctx context.Context, dir string) (string, error) {
	out, err := e.git.Run(ctx, dir, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		return "", nil // detached HEAD; not an error for our purposes
	}
	return strings.TrimSpace(out), nil
}

// revParse resolves a ref to its commit hash.
func (e *Engine) revParse(ctx context.Context, dir, ref string) (string, error) {
	out, err := e.git.Run(ctx, dir, "rev-parse", ref)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// isAncestor reports whether ancestor is an ancestor of (or equal to) descendant.
func (e *Engine) isAncestor(ctx context.Context, dir, ancestor, descendant string) (bool, error) {
	_, err := e.git.Run(ctx, dir, "merge-base", "--is-ancestor", ancestor, descendant)
	if err == nil {
		return true, nil
	}
	var sub *errs.SubprocessError
	if isSubprocessErrorWithCode(err, 1, &sub) {
		// git merge-base --is-ancestor exits 1 (not an error) when false.
		return false, nil
	}
	return false, err
}

func padBranch(padID string) string {
	return fmt.Sprintf("workpad/%s", padID)
}

// isSubprocessErrorWithCode reports whether err is a *errs.SubprocessError
// with the given exit code, assigning it to *target when true.
func isSubprocessErrorWithCode(err error, code int, target **errs.SubprocessError) bool {
	sub, ok := err.(*errs.SubprocessError)
	if !ok || sub.ExitCode != code {
		return false
	}
	*target = sub
	return true
}
