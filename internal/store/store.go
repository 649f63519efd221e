package store

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ssdajoker/sologit/internal/errs"
)

// Store persists Repository and Workpad metadata under root, per spec §4.1:
//
//	<root>/repos/<repo_id>/       git working tree (owned by the git engine)
//	<root>/state/repos.json       map of repo_id -> Repository
//	<root>/state/workpads.json    map of pad_id -> Workpad
//
// A single coarse mutex guards both in-memory maps; every mutation
// read-modify-persists under the write lock, so readers never see a torn
// snapshot — they see either the state before or after a mutation.
type Store struct {
	root string

	mu       sync.RWMutex
	repos    map[string]Repository
	workpads map[string]Workpad
}

// Open loads (or initializes) a Store rooted at root.
func Open(root string) (*Store, error) {
	s := &Store{
		root:     root,
		repos:    make(map[string]Repository),
		workpads: make(map[string]Workpad),
	}

	if err := os.MkdirAll(s.stateDir(), 0o755); err != nil {
		return nil, &errs.StoreError{Path: s.stateDir(), Cause: err}
	}

	var reposDoc schemaDoc[Repository]
	if err := readJSON(s.reposPath(), &reposDoc); err == nil {
		s.repos = reposDoc.Items
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	if s.repos == nil {
		s.repos = make(map[string]Repository)
	}

	var padsDoc schemaDoc[Workpad]
	if err := readJSON(s.workpadsPath(), &padsDoc); err == nil {
		s.workpads = padsDoc.Items
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	if s.workpads == nil {
		s.workpads = make(map[string]Workpad)
	}

	return s, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

func (s *Store) stateDir() string      { return filepath.Join(s.root, "state") }
func (s *Store) reposPath() string     { return filepath.Join(s.stateDir(), "repos.json") }
func (s *Store) workpadsPath() string  { return filepath.Join(s.stateDir(), "workpads.json") }
func (s *Store) RepoDir(id string) string {
	return filepath.Join(s.root, "repos", id)
}

func (s *Store) persistReposLocked() error {
	return writeJSON(s.reposPath(), schemaDoc[Repository]{V: currentSchemaVersion, Items: s.repos})
}

func (s *Store) persistWorkpadsLocked() error {
	return writeJSON(s.workpadsPath(), schemaDoc[Workpad]{V: currentSchemaVersion, Items: s.workpads})
}

// --- Repositories ---

// CreateRepo inserts a new Repository row. meta.ID is generated if unset.
func (s *Store) CreateRepo(meta Repository) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if meta.ID == "" {
		meta.ID = newRepoID(meta.Name, meta.OriginURL)
	}
	if _, exists := s.repos[meta.ID]; exists {
		return "", &errs.PreconditionError{Op: "create_repo", Reason: "repo id already exists"}
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	s.repos[meta.ID] = meta
	if err := s.persistReposLocked(); err != nil {
		delete(s.repos, meta.ID)
		return "", err
	}
	return meta.ID, nil
}

// GetRepo returns the Repository with the given id.
func (s *Store) GetRepo(id string) (Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.repos[id]
	if !ok {
		return Repository{}, &errs.NotFoundError{Resource: "repository", ID: id}
	}
	return r, nil
}

// ListRepos returns all repositories, sorted by id for determinism.
func (s *Store) ListRepos() []Repository {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Repository, 0, len(s.repos))
	for _, r := range s.repos {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpdateRepo performs an atomic read-modify-write of a Repository.
func (s *Store) UpdateRepo(id string, fn func(*Repository)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.repos[id]
	if !ok {
		return &errs.NotFoundError{Resource: "repository", ID: id}
	}
	fn(&r)
	s.repos[id] = r
	return s.persistReposLocked()
}

// DeleteRepo removes a Repository row (the caller is responsible for
// removing the working tree via the git engine).
func (s *Store) DeleteRepo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.repos[id]; !ok {
		return &errs.NotFoundError{Resource: "repository", ID: id}
	}
	delete(s.repos, id)
	return s.persistReposLocked()
}

// --- Workpads ---

// CreateWorkpad inserts a new Workpad row. meta.ID is generated if unset.
func (s *Store) CreateWorkpad(meta Workpad) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if meta.ID == "" {
		meta.ID = newPadID()
	}
	if _, exists := s.workpads[meta.ID]; exists {
		return "", &errs.PreconditionError{Op: "create_workpad", Reason: "workpad id already exists"}
	}
	now := time.Now().UTC()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.LastActivityAt = now
	if meta.Status == "" {
		meta.Status = WorkpadActive
	}
	if meta.TestStatus == "" {
		meta.TestStatus = TestStatusUnknown
	}
	s.workpads[meta.ID] = meta
	if err := s.persistWorkpadsLocked(); err != nil {
		delete(s.workpads, meta.ID)
		return "", err
	}
	return meta.ID, nil
}

// GetWorkpad returns the Workpad with the given id.
func (s *Store) GetWorkpad(id string) (Workpad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workpads[id]
	if !ok {
		return Workpad{}, &errs.NotFoundError{Resource: "workpad", ID: id}
	}
	return w, nil
}

// ListFilter narrows ListWorkpads' result set.
type ListFilter struct {
	RepoID     string
	Status     WorkpadStatus
	TestStatus TestStatus
	SortBy     string // "created_at" (default), "last_activity_at", "title"
	Reverse    bool
}

// ListWorkpads returns workpads matching filter, sorted per filter.SortBy.
// It is a pure view: no mutation.
func (s *Store) ListWorkpads(filter ListFilter) []Workpad {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Workpad, 0, len(s.workpads))
	for _, w := range s.workpads {
		if filter.RepoID != "" && w.RepoID != filter.RepoID {
			continue
		}
		if filter.Status != "" && w.Status != filter.Status {
			continue
		}
		if filter.TestStatus != "" && w.TestStatus != filter.TestStatus {
			continue
		}
		out = append(out, w)
	}

	less := func(i, j int) bool {
		switch filter.SortBy {
		case "last_activity_at":
			return out[i].LastActivityAt.Before(out[j].LastActivityAt)
		case "title":
			return out[i].Title < out[j].Title
		default:
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
	}
	sort.Slice(out, less)
	if filter.Reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// UpdateWorkpad performs an atomic read-modify-write of a Workpad.
func (s *Store) UpdateWorkpad(id string, fn func(*Workpad)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workpads[id]
	if !ok {
		return &errs.NotFoundError{Resource: "workpad", ID: id}
	}
	fn(&w)
	s.workpads[id] = w
	return s.persistWorkpadsLocked()
}

// DeleteWorkpad removes a Workpad row.
func (s *Store) DeleteWorkpad(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workpads[id]; !ok {
		return &errs.NotFoundError{Resource: "workpad", ID: id}
	}
	delete(s.workpads, id)
	return s.persistWorkpadsLocked()
}

// TouchActivity updates a workpad's last_activity_at to now.
func (s *Store) TouchActivity(id string) error {
	return s.UpdateWorkpad(id, func(w *Workpad) {
		w.LastActivityAt = time.Now().UTC()
	})
}

// AppendCheckpoint appends a Checkpoint to a workpad's history and touches
// last_activity_at, failing if the workpad is no longer active (spec
// invariant 3: once status != active the workpad is immutable).
func (s *Store) AppendCheckpoint(id string, cp Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workpads[id]
	if !ok {
		return &errs.NotFoundError{Resource: "workpad", ID: id}
	}
	if w.Status != WorkpadActive {
		return &errs.PreconditionError{Op: "append_checkpoint", Reason: "workpad is not active"}
	}
	w.Checkpoints = append(w.Checkpoints, cp)
	w.LastActivityAt = time.Now().UTC()
	s.workpads[id] = w
	return s.persistWorkpadsLocked()
}
