package gitengine

import (
	"errors"
	"testing"

	"github.com/ssdajoker/sologit/internal/errs"
)

func TestClassifyFastForwardSentinel(t *testing.T) {
	err := classify("merge", []string{"--ff-only", "workpad/p1"}, "fatal: Not possible to fast-forward, aborting.", errors.New("exit status 128"))
	k, ok := errs.KindOf(err)
	if !ok || k != errs.KindPrecondition {
		t.Fatalf("Kind = %v, want precondition", k)
	}
	var pe *errs.PreconditionError
	if !errors.As(err, &pe) || pe.Reason != "not_fast_forward" {
		t.Fatalf("Reason = %v, want not_fast_forward", err)
	}
}

func TestClassifyConflictSentinel(t *testing.T) {
	err := classify("apply", nil, "error: patch failed\nCONFLICT (content): Merge conflict in a.go", errors.New("exit status 1"))
	var pe *errs.PreconditionError
	if !errors.As(err, &pe) || pe.Reason != "merge_conflict" {
		t.Fatalf("Reason = %v, want merge_conflict", err)
	}
}

func TestClassifyUnknownFallsBackToSubprocess(t *testing.T) {
	err := classify("status", nil, "some unrelated failure", errors.New("exit status 1"))
	var se *errs.SubprocessError
	if !errors.As(err, &se) {
		t.Fatalf("expected a SubprocessError, got %T", err)
	}
}
