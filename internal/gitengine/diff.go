package gitengine

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
)

// GetDiff returns the unified diff between base (default: trunk tip) and
// the workpad's current tip.
func (e *Engine) GetDiff(ctx context.Context, padID, base string) (string, error) {
	w, err := e.store.GetWorkpad(padID)
	if err != nil {
		return "", err
	}
	repo, err := e.store.GetRepo(w.RepoID)
	if err != nil {
		return "", err
	}
	if base == "" {
		base = repo.Trunk
	}

	lock := e.locks.get(w.RepoID)
	lock.RLock()
	defer lock.RUnlock()

	return e.git.Run(ctx, repo.Path, "diff", base, w.Branch)
}

// FileEntry is one node of a repo map tree.
type FileEntry struct {
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
}

// GetRepoMap returns a filtered listing of the working tree: excludes
// .git/ and anything matched by .gitignore.
func (e *Engine) GetRepoMap(ctx context.Context, repoID string) ([]FileEntry, error) {
	repo, err := e.store.GetRepo(repoID)
	if err != nil {
		return nil, err
	}

	lock := e.locks.get(repoID)
	lock.RLock()
	defer lock.RUnlock()

	out, err := e.git.Run(ctx, repo.Path, "ls-files", "--cached", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}

	var entries []FileEntry
	scanner := bufio.NewScanner(strings.NewReader(out))
	seenDirs := map[string]bool{}
	for scanner.Scan() {
		p := scanner.Text()
		if p == "" {
			continue
		}
		dir := filepath.Dir(p)
		for dir != "." && dir != "/" && !seenDirs[dir] {
			seenDirs[dir] = true
			entries = append(entries, FileEntry{Path: dir, IsDir: true})
			dir = filepath.Dir(dir)
		}
		entries = append(entries, FileEntry{Path: p})
	}
	return entries, nil
}

// GetFileContents reads the given paths from the workpad's working tree,
// straight off disk (the AI orchestrator collaborator interface, spec §6).
func (e *Engine) GetFileContents(ctx context.Context, padID string, paths []string) (map[string]string, error) {
	w, err := e.store.GetWorkpad(padID)
	if err != nil {
		return nil, err
	}
	repo, err := e.store.GetRepo(w.RepoID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(filepath.Join(repo.Path, p))
		if err != nil {
			continue
		}
		out[p] = string(data)
	}
	return out, nil
}

// CompareResult is the outcome of comparing two workpads.
type CompareResult struct {
	FilesChanged int      `json:"files_changed"`
	FilesDetails []string `json:"files_details"`
	Diff         string   `json:"diff"`
}

// CompareWorkpads diffs padA's tip against padB's tip.
func (e *Engine) CompareWorkpads(ctx context.Context, padAID, padBID string) (CompareResult, error) {
	padA, err := e.store.GetWorkpad(padAID)
	if err != nil {
		return CompareResult{}, err
	}
	padB, err := e.store.GetWorkpad(padBID)
	if err != nil {
		return CompareResult{}, err
	}
	if padA.RepoID != padB.RepoID {
		return CompareResult{}, &workpadRepoMismatchError{padAID, padBID}
	}
	repo, err := e.store.GetRepo(padA.RepoID)
	if err != nil {
		return CompareResult{}, err
	}

	lock := e.locks.get(padA.RepoID)
	lock.RLock()
	defer lock.RUnlock()

	filesOut, err := e.git.Run(ctx, repo.Path, "diff", "--name-only", padA.Branch, padB.Branch)
	if err != nil {
		return CompareResult{}, err
	}
	diff, err := e.git.Run(ctx, repo.Path, "diff", padA.Branch, padB.Branch)
	if err != nil {
		return CompareResult{}, err
	}

	var files []string
	for _, line := range strings.Split(filesOut, "\n") {
		if line != "" {
			files = append(files, line)
		}
	}
	return CompareResult{FilesChanged: len(files), FilesDetails: files, Diff: diff}, nil
}

// MergePreview is the result of get_workpad_merge_preview.
type MergePreview struct {
	CanFastForward bool     `json:"can_fast_forward"`
	CommitsAhead   int      `json:"commits_ahead"`
	CommitsBehind  int      `json:"commits_behind"`
	FilesChanged   int      `json:"files_changed"`
	FilesDetails   []string `json:"files_details"`
	Conflicts      []string `json:"conflicts"`
	ReadyToPromote bool     `json:"ready_to_promote"`
}

// GetWorkpadMergePreview reports whether padID can be fast-forwarded into
// trunk, how far ahead/behind it is, and what it would change.
func (e *Engine) GetWorkpadMergePreview(ctx context.Context, padID string) (MergePreview, error) {
	w, err := e.store.GetWorkpad(padID)
	if err != nil {
		return MergePreview{}, err
	}
	repo, err := e.store.GetRepo(w.RepoID)
	if err != nil {
		return MergePreview{}, err
	}

	lock := e.locks.get(w.RepoID)
	lock.RLock()
	defer lock.RUnlock()

	ahead, behind, err := e.countAheadBehind(ctx, repo.Path, repo.Trunk, w.Branch)
	if err != nil {
		return MergePreview{}, err
	}

	canFF, _, err := e.canPromoteLocked(ctx, repo, w)
	if err != nil {
		return MergePreview{}, err
	}

	filesOut, err := e.git.Run(ctx, repo.Path, "diff", "--name-only", repo.Trunk, w.Branch)
	if err != nil {
		return MergePreview{}, err
	}
	var files []string
	for _, line := range strings.Split(filesOut, "\n") {
		if line != "" {
			files = append(files, line)
		}
	}

	var conflicts []string
	if !canFF && behind > 0 {
		conflictOut, _ := e.git.Run(ctx, repo.Path, "merge-tree", repo.Trunk, w.Branch)
		if strings.Contains(conflictOut, "<<<<<<<") {
			conflicts = files
		}
	}

	return MergePreview{
		CanFastForward: canFF,
		CommitsAhead:   ahead,
		CommitsBehind:  behind,
		FilesChanged:   len(files),
		FilesDetails:   files,
		Conflicts:      conflicts,
		ReadyToPromote: canFF && len(conflicts) == 0,
	}, nil
}

func (e *Engine) countAheadBehind(ctx context.Context, dir, trunk, branch string) (ahead, behind int, err error) {
	out, err := e.git.Run(ctx, dir, "rev-list", "--left-right", "--count", trunk+"..."+branch)
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return 0, 0, nil
	}
	behind = atoiSafe(fields[0])
	ahead = atoiSafe(fields[1])
	return ahead, behind, nil
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

type workpadRepoMismatchError struct {
	padA, padB string
}

func (e *workpadRepoMismatchError) Error() string {
	return "workpads " + e.padA + " and " + e.padB + " belong to different repositories"
}
