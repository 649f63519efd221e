package store

import (
	"testing"

	"github.com/ssdajoker/sologit/internal/errs"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestCreateAndGetRepo(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateRepo(Repository{Name: "acme", Trunk: "main"})
	if err != nil {
		t.Fatalf("CreateRepo: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty repo id")
	}

	got, err := s.GetRepo(id)
	if err != nil {
		t.Fatalf("GetRepo: %v", err)
	}
	if got.Name != "acme" || got.Trunk != "main" {
		t.Errorf("GetRepo = %+v, want Name=acme Trunk=main", got)
	}

	// Round-trip through a fresh Store pointed at the same root.
	reopened, err := Open(s.Root())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := reopened.GetRepo(id); err != nil {
		t.Fatalf("GetRepo after reopen: %v", err)
	}
}

func TestCreateRepoDuplicateID(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateRepo(Repository{ID: "fixed", Name: "a"}); err != nil {
		t.Fatalf("first CreateRepo: %v", err)
	}
	_, err := s.CreateRepo(Repository{ID: "fixed", Name: "b"})
	if err == nil {
		t.Fatal("expected error creating a repo with a duplicate id")
	}
	if k, ok := errs.KindOf(err); !ok || k != errs.KindPrecondition {
		t.Errorf("Kind = %v, want precondition", k)
	}
}

func TestGetRepoNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRepo("nope")
	if k, ok := errs.KindOf(err); !ok || k != errs.KindNotFound {
		t.Errorf("Kind = %v, want not_found", k)
	}
}

func TestWorkpadLifecycle(t *testing.T) {
	s := newTestStore(t)
	repoID, _ := s.CreateRepo(Repository{Name: "acme"})

	padID, err := s.CreateWorkpad(Workpad{RepoID: repoID, Title: "add login", Branch: "workpad/p1"})
	if err != nil {
		t.Fatalf("CreateWorkpad: %v", err)
	}

	w, err := s.GetWorkpad(padID)
	if err != nil {
		t.Fatalf("GetWorkpad: %v", err)
	}
	if w.Status != WorkpadActive {
		t.Errorf("Status = %q, want active", w.Status)
	}
	if w.TestStatus != TestStatusUnknown {
		t.Errorf("TestStatus = %q, want unknown", w.TestStatus)
	}

	if err := s.AppendCheckpoint(padID, Checkpoint{Hash: "abc123", Message: "first patch"}); err != nil {
		t.Fatalf("AppendCheckpoint: %v", err)
	}
	w, _ = s.GetWorkpad(padID)
	if len(w.Checkpoints) != 1 {
		t.Fatalf("Checkpoints = %d, want 1", len(w.Checkpoints))
	}

	if err := s.UpdateWorkpad(padID, func(w *Workpad) { w.Status = WorkpadPromoted }); err != nil {
		t.Fatalf("UpdateWorkpad: %v", err)
	}

	// Invariant 3: once status != active, no new checkpoints.
	if err := s.AppendCheckpoint(padID, Checkpoint{Hash: "def456"}); err == nil {
		t.Fatal("expected AppendCheckpoint on a promoted workpad to fail")
	}
}

func TestListWorkpadsFilter(t *testing.T) {
	s := newTestStore(t)
	repoA, _ := s.CreateRepo(Repository{Name: "a"})
	repoB, _ := s.CreateRepo(Repository{Name: "b"})

	p1, _ := s.CreateWorkpad(Workpad{RepoID: repoA, Title: "p1"})
	_, _ = s.CreateWorkpad(Workpad{RepoID: repoB, Title: "p2"})
	_ = s.UpdateWorkpad(p1, func(w *Workpad) { w.TestStatus = TestStatusGreen })

	got := s.ListWorkpads(ListFilter{RepoID: repoA})
	if len(got) != 1 || got[0].ID != p1 {
		t.Fatalf("ListWorkpads(RepoID=a) = %+v, want [p1]", got)
	}

	got = s.ListWorkpads(ListFilter{TestStatus: TestStatusGreen})
	if len(got) != 1 || got[0].ID != p1 {
		t.Fatalf("ListWorkpads(TestStatus=green) = %+v, want [p1]", got)
	}

	if len(s.ListWorkpads(ListFilter{})) != 2 {
		t.Fatalf("expected 2 workpads total")
	}
}

func TestDeleteRepoNotFound(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeleteRepo("nope"); err == nil {
		t.Fatal("expected error deleting unknown repo")
	}
}
