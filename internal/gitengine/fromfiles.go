package gitengine

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ssdajoker/sologit/internal/errs"
)

// GenerateDiffFromFiles writes the given desired file contents into padID's
// working tree and captures the resulting unified diff against HEAD,
// leaving the tree exactly as it was found. It fails Precondition if the
// tree is already dirty (spec Open Question 3): the caller must start from
// a clean workpad.
func (e *Engine) GenerateDiffFromFiles(ctx context.Context, padID string, files map[string]string) (string, error) {
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

	if err := e.checkoutBranchLocked(ctx, repo, w.Branch); err != nil {
		return "", err
	}

	status, err := e.git.Run(ctx, repo.Path, "status", "--porcelain")
	if err != nil {
		return "", err
	}
	if status != "" {
		return "", &errs.PreconditionError{Op: "create_patch_from_files", Reason: "workpad tree is dirty"}
	}

	for path, content := range files {
		target := filepath.Join(repo.Path, path)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return "", &errs.StoreError{Path: target, Cause: err}
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return "", &errs.StoreError{Path: target, Cause: err}
		}
	}

	diff, diffErr := e.git.Run(ctx, repo.Path, "diff", "--no-color", "HEAD")

	_, _ = e.git.Run(ctx, repo.Path, "checkout", "--", ".")
	_, _ = e.git.Run(ctx, repo.Path, "clean", "-fd")

	if diffErr != nil {
		return "", diffErr
	}
	return diff, nil
}
