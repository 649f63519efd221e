package gitengine

import (
	"context"
	"time"

	"github.com/ssdajoker/sologit/internal/errs"
	"github.com/ssdajoker/sologit/internal/store"
)

// CreateWorkpad creates branch workpad/<pad_id> at the current trunk tip
// and records it in the store with status=active.
func (e *Engine) CreateWorkpad(ctx context.Context, repoID, title string) (string, error) {
	repo, err := e.store.GetRepo(repoID)
	if err != nil {
		return "", err
	}

	lock := e.locks.get(repoID)
	lock.Lock()
	defer lock.Unlock()

	trunkTip, err := e.revParse(ctx, repo.Path, repo.Trunk)
	if err != nil {
		return "", &errs.PreconditionError{Op: "create_workpad", Reason: "repository has no commits yet"}
	}

	padID, err := e.store.CreateWorkpad(store.Workpad{
		RepoID:       repoID,
		Title:        title,
		BaseTrunkTip: trunkTip,
	})
	if err != nil {
		return "", err
	}
	branch := padBranch(padID)

	if _, err := e.git.Run(ctx, repo.Path, "branch", branch, trunkTip); err != nil {
		_ = e.store.DeleteWorkpad(padID)
		return "", err
	}
	if err := e.store.UpdateWorkpad(padID, func(w *store.Workpad) { w.Branch = branch }); err != nil {
		return "", err
	}
	e.log.Info("workpad created", "repo_id", repoID, "pad_id", padID, "branch", branch)
	return padID, nil
}

// ListWorkpadsFiltered is a pure view over the store; no mutation.
func (e *Engine) ListWorkpadsFiltered(filter store.ListFilter) []store.Workpad {
	return e.store.ListWorkpads(filter)
}

// GetActiveWorkpad returns the workpad whose branch is currently checked
// out for repoID, or (Workpad{}, false) when HEAD is on trunk.
func (e *Engine) GetActiveWorkpad(ctx context.Context, repoID string) (store.Workpad, bool, error) {
	repo, err := e.store.GetRepo(repoID)
	if err != nil {
		return store.Workpad{}, false, err
	}
	branch, err := e.currentBranch(ctx, repo.Path)
	if err != nil {
		return store.Workpad{}, false, err
	}
	if branch == "" || branch == repo.Trunk {
		return store.Workpad{}, false, nil
	}
	for _, w := range e.store.ListWorkpads(store.ListFilter{RepoID: repoID, Status: store.WorkpadActive}) {
		if w.Branch == branch {
			return w, true, nil
		}
	}
	return store.Workpad{}, false, nil
}

// SwitchWorkpad checks out the workpad's branch and touches last_activity.
func (e *Engine) SwitchWorkpad(ctx context.Context, padID string) error {
	w, err := e.store.GetWorkpad(padID)
	if err != nil {
		return err
	}
	if w.Status != store.WorkpadActive {
		return &errs.PreconditionError{Op: "switch_workpad", Reason: "workpad is not active"}
	}
	repo, err := e.store.GetRepo(w.RepoID)
	if err != nil {
		return err
	}

	lock := e.locks.get(w.RepoID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := e.git.Run(ctx, repo.Path, "checkout", w.Branch); err != nil {
		return err
	}
	return e.store.TouchActivity(padID)
}

// ApplyCommitOnWorkpad creates a single commit on a workpad's branch from a
// set of staged tree changes.
// message becomes the commit message verbatim.
func (e *Engine) ApplyCommitOnWorkpad(ctx context.Context, padID, message string) (string, error) {
	w, err := e.store.GetWorkpad(padID)
	if err != nil {
		return "", err
	}
	if w.Status != store.WorkpadActive {
		return "", &errs.PreconditionError{Op: "apply_commit_on_workpad", Reason: "workpad is not active"}
	}
	repo, err := e.store.GetRepo(w.RepoID)
	if err != nil {
		return "", err
	}

	lock := e.locks.get(w.RepoID)
	lock.Lock()
	defer lock.Unlock()

	if branch, err := e.currentBranch(ctx, repo.Path); err != nil || branch != w.Branch {
		if _, err := e.git.Run(ctx, repo.Path, "checkout", w.Branch); err != nil {
			return "", err
		}
	}

	if _, err := e.git.Run(ctx, repo.Path, "-c", "user.email=sologit@localhost", "-c", "user.name=sologit",
		"commit", "-m", message); err != nil {
		return "", err
	}
	hash, err := e.revParse(ctx, repo.Path, "HEAD")
	if err != nil {
		return "", err
	}
	if err := e.store.TouchActivity(padID); err != nil {
		return "", err
	}
	return hash, nil
}

// CanPromote reports whether trunk's tip is an ancestor of the workpad's
// tip and the workpad has at least one commit beyond trunk. It performs no
// filesystem writes.
func (e *Engine) CanPromote(ctx context.Context, padID string) (bool, string, error) {
	w, err := e.store.GetWorkpad(padID)
	if err != nil {
		return false, "", err
	}
	if w.Status != store.WorkpadActive {
		return false, "workpad_not_active", nil
	}
	repo, err := e.store.GetRepo(w.RepoID)
	if err != nil {
		return false, "", err
	}

	lock := e.locks.get(w.RepoID)
	lock.RLock()
	defer lock.RUnlock()

	trunkTip, err := e.revParse(ctx, repo.Path, repo.Trunk)
	if err != nil {
		return false, "", err
	}
	padTip, err := e.revParse(ctx, repo.Path, w.Branch)
	if err != nil {
		return false, "", err
	}
	if padTip == trunkTip {
		return false, "no_new_commits", nil
	}
	ok, err := e.isAncestor(ctx, repo.Path, trunkTip, padTip)
	if err != nil {
		return false, "", err
	}
	if !ok {
		return false, "not_fast_forward", nil
	}
	return true, "", nil
}

// PromoteWorkpad performs a fast-forward-only merge of the workpad branch
// into trunk. It never falls back to a merge commit: if fast-forward is
// not legal, it fails with CannotPromote and trunk is left untouched.
func (e *Engine) PromoteWorkpad(ctx context.Context, padID string) (string, error) {
	w, err := e.store.GetWorkpad(padID)
	if err != nil {
		return "", err
	}
	repo, err := e.store.GetRepo(w.RepoID)
	if err != nil {
		return "", err
	}

	lock := e.locks.get(w.RepoID)
	lock.Lock()
	defer lock.Unlock()

	ok, reason, err := e.canPromoteLocked(ctx, repo, w)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &errs.PreconditionError{Op: "promote_workpad", Reason: reason}
	}

	if branch, err := e.currentBranch(ctx, repo.Path); err != nil || branch != repo.Trunk {
		if _, err := e.git.Run(ctx, repo.Path, "checkout", repo.Trunk); err != nil {
			return "", err
		}
	}
	if _, err := e.git.Run(ctx, repo.Path, "merge", "--ff-only", w.Branch); err != nil {
		return "", &errs.PreconditionError{Op: "promote_workpad", Reason: "not_fast_forward", Details: map[string]any{"cause": err.Error()}}
	}

	trunkTip, err := e.revParse(ctx, repo.Path, repo.Trunk)
	if err != nil {
		return "", err
	}
	if err := e.store.UpdateWorkpad(padID, func(w *store.Workpad) {
		w.Status = store.WorkpadPromoted
		w.LastActivityAt = time.Now().UTC()
	}); err != nil {
		return "", err
	}
	e.log.Info("workpad promoted", "repo_id", w.RepoID, "pad_id", padID, "trunk_tip", trunkTip)
	return trunkTip, nil
}

// canPromoteLocked is CanPromote's logic, reused by PromoteWorkpad under an
// already-held write lock (avoids a RLock-then-Lock upgrade race).
func (e *Engine) canPromoteLocked(ctx context.Context, repo store.Repository, w store.Workpad) (bool, string, error) {
	if w.Status != store.WorkpadActive {
		return false, "workpad_not_active", nil
	}
	trunkTip, err := e.revParse(ctx, repo.Path, repo.Trunk)
	if err != nil {
		return false, "", err
	}
	padTip, err := e.revParse(ctx, repo.Path, w.Branch)
	if err != nil {
		return false, "", err
	}
	if padTip == trunkTip {
		return false, "no_new_commits", nil
	}
	ok, err := e.isAncestor(ctx, repo.Path, trunkTip, padTip)
	if err != nil {
		return false, "", err
	}
	if !ok {
		return false, "not_fast_forward", nil
	}
	return true, "", nil
}

// RevertLastCommit appends a commit to trunk that inverts its current tip.
// Trunk history stays append-only: this is a new commit, never a reset.
func (e *Engine) RevertLastCommit(ctx context.Context, repoID string) (string, error) {
	repo, err := e.store.GetRepo(repoID)
	if err != nil {
		return "", err
	}

	lock := e.locks.get(repoID)
	lock.Lock()
	defer lock.Unlock()

	if branch, err := e.currentBranch(ctx, repo.Path); err != nil || branch != repo.Trunk {
		if _, err := e.git.Run(ctx, repo.Path, "checkout", repo.Trunk); err != nil {
			return "", err
		}
	}
	if _, err := e.git.Run(ctx, repo.Path, "-c", "user.email=sologit@localhost", "-c", "user.name=sologit",
		"revert", "--no-edit", "HEAD"); err != nil {
		return "", err
	}
	hash, err := e.revParse(ctx, repo.Path, repo.Trunk)
	if err != nil {
		return "", err
	}
	e.log.Info("trunk reverted", "repo_id", repoID, "revert_commit", hash)
	return hash, nil
}

// CleanupWorkpads deletes branches for workpads untouched for at least
// days matching the given status filters, and returns their ids.
func (e *Engine) CleanupWorkpads(ctx context.Context, repoID string, days int, status store.WorkpadStatus) ([]string, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	candidates := e.store.ListWorkpads(store.ListFilter{RepoID: repoID, Status: status})

	var deleted []string
	for _, w := range candidates {
		if w.LastActivityAt.After(cutoff) {
			continue
		}
		repo, err := e.store.GetRepo(w.RepoID)
		if err != nil {
			continue
		}
		lock := e.locks.get(w.RepoID)
		lock.Lock()
		_, _ = e.git.Run(ctx, repo.Path, "branch", "-D", w.Branch)
		lock.Unlock()

		if err := e.store.UpdateWorkpad(w.ID, func(w *store.Workpad) { w.Status = store.WorkpadDeleted }); err != nil {
			continue
		}
		deleted = append(deleted, w.ID)
	}
	e.log.Info("workpads cleaned up", "repo_id", repoID, "count", len(deleted))
	return deleted, nil
}
