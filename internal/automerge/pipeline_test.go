package automerge

import (
	"context"
	"strings"
	"testing"

	"github.com/ssdajoker/sologit/internal/gate"
	"github.com/ssdajoker/sologit/internal/gitengine"
	"github.com/ssdajoker/sologit/internal/patch"
	"github.com/ssdajoker/sologit/internal/store"
	"github.com/ssdajoker/sologit/internal/testorch"
)

// fakeGit is a scripted gitengine.GitRunner. Exact-key responses are tried
// first (for refs that must resolve to distinct fixed hashes); unmatched
// keys fall back to the first matching prefix in registration order, then to a
// silent ("", nil) success, mirroring internal/patch's test fake.
type fakeGit struct {
	exact    map[string]fakeResp
	prefixes []prefixResp
}

type fakeResp struct {
	out string
	err error
}

type prefixResp struct {
	prefix string
	resp   fakeResp
}

func newFakeGit() *fakeGit {
	return &fakeGit{exact: make(map[string]fakeResp)}
}

func (f *fakeGit) on(args string, out string, err error) {
	f.exact[args] = fakeResp{out: out, err: err}
}

func (f *fakeGit) onPrefix(prefix string, out string, err error) {
	f.prefixes = append(f.prefixes, prefixResp{prefix: prefix, resp: fakeResp{out: out, err: err}})
}

func (f *fakeGit) Run(_ context.Context, _ string, args ...string) (string, error) {
	key := strings.Join(args, " ")
	if r, ok := f.exact[key]; ok {
		return r.out, r.err
	}
	for _, p := range f.prefixes {
		if strings.HasPrefix(key, p.prefix) {
			return p.resp.out, p.resp.err
		}
	}
	return "", nil
}

const sampleSmokeDiff = "--- a/app.py\n+++ b/app.py\n@@ -1,1 +1,2 @@\n-old\n+new\n+line2\n"

// fixture wires a Pipeline against a fakeGit with the registrations common
// to every scenario: a trunk and workpad at distinct, fixed tips, a clean
// fast-forward preview, and a promote/rollback-capable checkout sequence.
func fixture(t *testing.T) (*Pipeline, *fakeGit, string, string) {
	t.Helper()
	git := newFakeGit()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	ge := gitengine.New(st, git, nil)
	patchEng := patch.New(ge)
	pipe := New(ge, patchEng, st, nil)

	dir := t.TempDir()
	repoID, err := st.CreateRepo(store.Repository{Name: "acme", Trunk: "main", Path: dir})
	if err != nil {
		t.Fatalf("CreateRepo: %v", err)
	}
	padID, err := st.CreateWorkpad(store.Workpad{RepoID: repoID, Branch: "workpad/p1", BaseTrunkTip: "TRUNKTIP", Status: store.WorkpadActive})
	if err != nil {
		t.Fatalf("CreateWorkpad: %v", err)
	}

	git.on("rev-parse main", "TRUNKTIP", nil)
	git.on("rev-parse workpad/p1", "PADTIP", nil)
	git.on("merge-base --is-ancestor TRUNKTIP PADTIP", "", nil)
	git.on("rev-list --left-right --count main...workpad/p1", "0\t1", nil)
	git.on("diff --name-only main workpad/p1", "app.py", nil)
	git.on("diff main workpad/p1", sampleSmokeDiff, nil)
	git.on("checkout workpad/p1", "", nil)
	git.on("checkout main", "", nil)
	git.on("merge --ff-only workpad/p1", "", nil)
	git.on("-c user.email=sologit@localhost -c user.name=sologit revert --no-edit HEAD", "", nil)
	git.onPrefix("branch ", "", nil)

	return pipe, git, repoID, padID
}

func TestRunApprovesPromotesAndPassesSmoke(t *testing.T) {
	pipe, _, _, padID := fixture(t)

	result, err := pipe.Run(context.Background(), padID, Options{
		Tests:      []testorch.TestConfig{{Name: "unit", Command: []string{"true"}, TimeoutSeconds: 30}},
		SmokeTests: []testorch.TestConfig{{Name: "smoke", Command: []string{"true"}, TimeoutSeconds: 30}},
		Rules:      gate.DefaultRules(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Decision == nil || result.Decision.Verdict != gate.VerdictApprove {
		t.Fatalf("Decision = %+v, want approve", result.Decision)
	}
	if result.PromotedCommit == "" {
		t.Error("PromotedCommit is empty, want the new trunk tip")
	}
	if result.CIStatus != CIStatusSuccess {
		t.Errorf("CIStatus = %q, want success", result.CIStatus)
	}
	if result.Rollback != nil {
		t.Errorf("Rollback = %+v, want nil", result.Rollback)
	}
}

func TestRunRejectsOnFailingTestsAndSkipsPromote(t *testing.T) {
	pipe, _, _, padID := fixture(t)

	result, err := pipe.Run(context.Background(), padID, Options{
		Tests: []testorch.TestConfig{{Name: "unit", Command: []string{"false"}, TimeoutSeconds: 30}},
		Rules: gate.DefaultRules(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Decision == nil || result.Decision.Verdict != gate.VerdictReject {
		t.Fatalf("Decision = %+v, want reject", result.Decision)
	}
	if result.PromotedCommit != "" {
		t.Errorf("PromotedCommit = %q, want empty (promotion should be skipped)", result.PromotedCommit)
	}
	foundSkip := false
	for _, s := range result.Stages {
		if s.Stage == "promote" && s.Outcome == StageSkipped {
			foundSkip = true
		}
	}
	if !foundSkip {
		t.Errorf("Stages = %+v, want a skipped promote stage", result.Stages)
	}
}

func TestRunRollsBackOnSmokeTestFailure(t *testing.T) {
	pipe, _, repoID, padID := fixture(t)
	_ = repoID

	result, err := pipe.Run(context.Background(), padID, Options{
		Tests:      []testorch.TestConfig{{Name: "unit", Command: []string{"true"}, TimeoutSeconds: 30}},
		SmokeTests: []testorch.TestConfig{{Name: "smoke", Command: []string{"false"}, TimeoutSeconds: 30}},
		Rules:      gate.DefaultRules(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.CIStatus != CIStatusFailure {
		t.Fatalf("CIStatus = %q, want failure", result.CIStatus)
	}
	if result.Rollback == nil {
		t.Fatal("Rollback is nil, want a record")
	}
	if result.Rollback.NewPadID == "" {
		t.Error("Rollback.NewPadID is empty")
	}
	if !strings.HasPrefix(result.Rollback.Cause, "failure") {
		t.Errorf("Rollback.Cause = %q, want it to name the CI status", result.Rollback.Cause)
	}
}
