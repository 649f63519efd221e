package patch

import (
	"context"

	"github.com/ssdajoker/sologit/internal/gitengine"
)

// Engine composes the pure diff-text transforms in this package with the
// Git Engine's working-tree mutations, so apply() can be a single
// all-or-nothing call (spec §4.3).
type Engine struct {
	git *gitengine.Engine
}

// New creates a patch Engine delegating tree mutations to git.
func New(git *gitengine.Engine) *Engine {
	return &Engine{git: git}
}

// DetectConflicts checks whether diffText applies cleanly to padID's
// current tree, without mutating it.
func (e *Engine) DetectConflicts(ctx context.Context, padID, diffText string) (ConflictReport, error) {
	files, err := e.git.CheckPatchConflicts(ctx, padID, diffText)
	if err != nil {
		return ConflictReport{}, err
	}
	return ConflictReport{
		HasConflicts:     len(files) > 0,
		ConflictingFiles: files,
		Details:          files,
	}, nil
}

// Preview reports whether diffText can apply, its size stats, and an
// advisory recommendation.
func (e *Engine) Preview(ctx context.Context, padID, diffText string) (Preview, error) {
	stats, err := GetStats(diffText)
	if err != nil {
		return Preview{}, err
	}
	conflicts, err := e.DetectConflicts(ctx, padID, diffText)
	if err != nil {
		return Preview{}, err
	}
	return Preview{
		CanApply:       !conflicts.HasConflicts,
		Stats:          stats,
		ConflictFiles:  conflicts.ConflictingFiles,
		Recommendation: recommendFor(stats, conflicts.ConflictingFiles),
	}, nil
}

// ApplyOptions configures Apply.
type ApplyOptions struct {
	Validate bool // run the conflict check first; the zero value skips it (syntax is always checked)
}

// Apply validates (unless disabled), then applies diffText to padID's tree
// as a single commit, returning the new checkpoint hash. All-or-nothing:
// on any failure the tree is left exactly as it was before the call.
func (e *Engine) Apply(ctx context.Context, padID, diffText, message string, opts ApplyOptions) (string, error) {
	stats, err := GetStats(diffText)
	if err != nil {
		return "", err
	}

	// GetStats above already parsed diffText, which covers syntax validation;
	// when requested we additionally check it applies cleanly before committing.
	if opts.Validate {
		conflicts, err := e.DetectConflicts(ctx, padID, diffText)
		if err != nil {
			return "", err
		}
		if conflicts.HasConflicts {
			return "", conflictError(conflicts.ConflictingFiles)
		}
	}

	return e.git.ApplyPatch(ctx, padID, diffText, message, stats.FilesList)
}

// FromFiles generates a unified diff for padID from a set of desired file
// contents, without applying it. Fails Precondition if the workpad's tree
// is already dirty (spec Open Question 3).
func (e *Engine) FromFiles(ctx context.Context, padID string, files map[string]string) (string, error) {
	return e.git.GenerateDiffFromFiles(ctx, padID, files)
}
