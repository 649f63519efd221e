package cli

import (
	"context"
	"errors"

	"github.com/ssdajoker/sologit/internal/errs"
)

// ExitCode maps an engine error to the process exit code spec §6 assigns
// to each error kind. nil maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	kind, ok := errs.KindOf(err)
	if !ok {
		return 1
	}
	switch kind {
	case errs.KindNotFound:
		return 2
	case errs.KindPrecondition:
		return 3
	case errs.KindMalformed:
		return 2
	case errs.KindStore:
		return 4
	case errs.KindSubprocess:
		return 5
	case errs.KindCancelled:
		return 130
	default:
		return 1
	}
}
