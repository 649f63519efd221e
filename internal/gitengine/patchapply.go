package gitengine

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/ssdajoker/sologit/internal/errs"
	"github.com/ssdajoker/sologit/internal/store"
)

// CheckPatchConflicts checks out padID's branch and runs `git apply --check`
// against diffText without mutating the tree further, reporting which files
// (if any) the patch cannot cleanly apply to.
func (e *Engine) CheckPatchConflicts(ctx context.Context, padID, diffText string) ([]string, error) {
	w, err := e.store.GetWorkpad(padID)
	if err != nil {
		return nil, err
	}
	repo, err := e.store.GetRepo(w.RepoID)
	if err != nil {
		return nil, err
	}

	lock := e.locks.get(w.RepoID)
	lock.Lock()
	defer lock.Unlock()

	if err := e.checkoutBranchLocked(ctx, repo, w.Branch); err != nil {
		return nil, err
	}

	tmp, err := writeTempPatch(diffText)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp)

	_, err = e.git.Run(ctx, repo.Path, "apply", "--check", "--unsafe-paths", tmp)
	if err == nil {
		return nil, nil
	}
	return conflictingFilesFromError(err), nil
}

// ApplyPatch applies diffText to padID's working tree and commits it as a
// single checkpoint. On any failure after a tree mutation began, the tree
// is restored to its pre-apply state (all-or-nothing, spec §4.3).
func (e *Engine) ApplyPatch(ctx context.Context, padID, diffText, message string, files []string) (string, error) {
	w, err := e.store.GetWorkpad(padID)
	if err != nil {
		return "", err
	}
	if w.Status != store.WorkpadActive {
		return "", &errs.PreconditionError{Op: "apply_patch", Reason: "workpad is not active"}
	}
	repo, err := e.store.GetRepo(w.RepoID)
	if err != nil {
		return "", err
	}

	lock := e.locks.get(w.RepoID)
	lock.Lock()
	defer lock.Unlock()

	if err := e.checkoutBranchLocked(ctx, repo, w.Branch); err != nil {
		return "", err
	}

	tmp, err := writeTempPatch(diffText)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp)

	restore := func() {
		_, _ = e.git.Run(ctx, repo.Path, "checkout", "--", ".")
		_, _ = e.git.Run(ctx, repo.Path, "clean", "-fd")
	}

	if _, err := e.git.Run(ctx, repo.Path, "apply", "--check", "--unsafe-paths", tmp); err != nil {
		return "", &errs.PreconditionError{Op: "apply_patch", Reason: "patch_conflict",
			Details: map[string]any{"files": conflictingFilesFromError(err)}}
	}
	if _, err := e.git.Run(ctx, repo.Path, "apply", "--unsafe-paths", tmp); err != nil {
		restore()
		return "", &errs.PreconditionError{Op: "apply_patch", Reason: "patch_conflict",
			Details: map[string]any{"files": conflictingFilesFromError(err)}}
	}
	if _, err := e.git.Run(ctx, repo.Path, "add", "-A"); err != nil {
		restore()
		return "", err
	}
	if _, err := e.git.Run(ctx, repo.Path, "-c", "user.email=sologit@localhost", "-c", "user.name=sologit",
		"commit", "-m", message); err != nil {
		restore()
		return "", err
	}

	hash, err := e.revParse(ctx, repo.Path, "HEAD")
	if err != nil {
		return "", err
	}
	parent := w.BaseTrunkTip
	if n := len(w.Checkpoints); n > 0 {
		parent = w.Checkpoints[n-1].Hash
	}
	cp := store.Checkpoint{
		Hash:      hash,
		Message:   message,
		Author:    "sologit",
		Timestamp: time.Now().UTC(),
		Files:     files,
		Parent:    parent,
	}
	if err := e.store.AppendCheckpoint(padID, cp); err != nil {
		return "", err
	}
	e.log.Info("patch applied", "repo_id", w.RepoID, "pad_id", padID, "commit", hash, "files", len(files))
	return hash, nil
}

// checkoutBranchLocked checks out branch if it isn't already HEAD. Caller
// must hold the repo's write lock.
func (e *Engine) checkoutBranchLocked(ctx context.Context, repo store.Repository, branch string) error {
	current, err := e.currentBranch(ctx, repo.Path)
	if err != nil {
		return err
	}
	if current == branch {
		return nil
	}
	_, err = e.git.Run(ctx, repo.Path, "checkout", branch)
	return err
}

func writeTempPatch(diffText string) (string, error) {
	f, err := os.CreateTemp("", "sologit-patch-*.diff")
	if err != nil {
		return "", &errs.StoreError{Path: "", Cause: err}
	}
	defer f.Close()
	if _, err := f.WriteString(diffText); err != nil {
		return "", &errs.StoreError{Path: f.Name(), Cause: err}
	}
	return f.Name(), nil
}

// conflictingFilesFromError extracts file paths from git apply's stderr,
// e.g. "error: a/foo.go: patch does not apply" or
// "error: patch failed: a/foo.go:12".
func conflictingFilesFromError(err error) []string {
	sub, ok := err.(*errs.SubprocessError)
	if !ok {
		return nil
	}
	var files []string
	seen := map[string]bool{}
	for _, line := range strings.Split(sub.Stderr, "\n") {
		line = strings.TrimSpace(line)
		var path string
		switch {
		case strings.HasPrefix(line, "error: patch failed: "):
			path = strings.SplitN(strings.TrimPrefix(line, "error: patch failed: "), ":", 2)[0]
		case strings.HasPrefix(line, "error: "):
			rest := strings.TrimPrefix(line, "error: ")
			if idx := strings.Index(rest, ":"); idx > 0 {
				path = rest[:idx]
			}
		}
		path = strings.TrimPrefix(path, "a/")
		path = strings.TrimPrefix(path, "b/")
		if path != "" && !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}
	return files
}
