package cli

import (
	"testing"

	"github.com/ssdajoker/sologit/internal/errs"
)

func TestExitCodeMapsErrorKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"not_found", &errs.NotFoundError{Resource: "workpad", ID: "p1"}, 2},
		{"precondition", &errs.PreconditionError{Op: "promote", Reason: "not_fast_forward"}, 3},
		{"malformed", &errs.MalformedError{What: "patch", Hint: "bad hunk header"}, 2},
		{"subprocess", &errs.SubprocessError{Command: "git", ExitCode: 1}, 5},
		{"store", &errs.StoreError{Path: "/tmp/x"}, 4},
		{"cancelled", &errs.CancelledError{Op: "run_tests"}, 130},
	}
	for _, c := range cases {
		if got := ExitCode(c.err); got != c.want {
			t.Errorf("%s: ExitCode() = %d, want %d", c.name, got, c.want)
		}
	}
}
