package engine

import (
	"context"

	"github.com/ssdajoker/sologit/internal/gitengine"
)

// AIContext is the minimal collaborator contract an AI orchestration layer
// needs against this engine: read the repo map, read file contents, and
// apply a patch. Model routing, cost tracking, and prompt construction are
// out of scope (spec.md §1 Non-goals) — this interface exists so an
// external orchestrator can drive the engine without reaching past it into
// gitengine/patch internals directly.
type AIContext interface {
	GetRepoMap(ctx context.Context, repoID string) ([]gitengine.FileEntry, error)
	GetFileContents(ctx context.Context, padID string, paths []string) (map[string]string, error)
	Apply(ctx context.Context, padID, diffText, message string) (string, error)
}

var _ AIContext = (*Engine)(nil)

// GetRepoMap returns a filtered file listing for repoID, excluding .git/
// and anything matched by .gitignore.
func (e *Engine) GetRepoMap(ctx context.Context, repoID string) ([]gitengine.FileEntry, error) {
	return e.git.GetRepoMap(ctx, repoID)
}

// GetFileContents reads the contents of the given paths from padID's
// working tree.
func (e *Engine) GetFileContents(ctx context.Context, padID string, paths []string) (map[string]string, error) {
	return e.git.GetFileContents(ctx, padID, paths)
}

// Apply is the AIContext-facing name for ApplyPatch, phrased as the
// collaborator contract's verb rather than the engine's own.
func (e *Engine) Apply(ctx context.Context, padID, diffText, message string) (string, error) {
	return e.ApplyPatch(ctx, padID, diffText, message)
}
