package patch

import "github.com/ssdajoker/sologit/internal/errs"

// conflictError builds the PatchConflict{files} error from §4.3.
func conflictError(files []string) error {
	return &errs.PreconditionError{
		Op:      "apply",
		Reason:  "patch_conflict",
		Details: map[string]any{"files": files},
	}
}
