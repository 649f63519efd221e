// Package store persists Repository and Workpad metadata under a fixed
// per-process state root, with atomic write-temp-then-rename durability and
// a coarse per-store lock so readers never observe a torn write.
package store

import "time"

// WorkpadStatus is the lifecycle state of a Workpad.
type WorkpadStatus string

const (
	WorkpadActive    WorkpadStatus = "active"
	WorkpadPromoted  WorkpadStatus = "promoted"
	WorkpadDeleted   WorkpadStatus = "deleted"
)

// TestStatus is the last-known test outcome recorded against a Workpad.
type TestStatus string

const (
	TestStatusUnknown TestStatus = "unknown"
	TestStatusGreen   TestStatus = "green"
	TestStatusRed     TestStatus = "red"
)

// Repository is the persisted metadata for one imported/cloned repo.
type Repository struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`        // absolute path of the working copy
	Trunk       string    `json:"trunk"`       // trunk branch name
	OriginURL   string    `json:"origin_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Checkpoint records one applied patch on a workpad. Its Hash equals the
// underlying git commit hash (spec Open Question 1: 1:1 with commits).
type Checkpoint struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	Files     []string  `json:"files"`
	Parent    string    `json:"parent,omitempty"`
}

// Workpad is the persisted metadata for one ephemeral branch derived from
// trunk.
type Workpad struct {
	ID             string        `json:"id"`
	RepoID         string        `json:"repo_id"`
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"` // display-only, no bearing on invariants
	Tags           []string      `json:"tags,omitempty"`        // display-only
	Branch         string        `json:"branch"`
	Status         WorkpadStatus `json:"status"`
	TestStatus     TestStatus    `json:"test_status"`
	BaseTrunkTip   string        `json:"base_trunk_tip"` // trunk tip hash at creation time
	Checkpoints    []Checkpoint  `json:"checkpoints"`
	CreatedAt      time.Time     `json:"created_at"`
	LastActivityAt time.Time     `json:"last_activity_at"`
}

// schemaDoc is the top-level envelope written to each state file. Readers
// tolerate newer minor versions by ignoring unknown fields (the default
// behavior of encoding/json on a typed struct).
type schemaDoc[T any] struct {
	V     int            `json:"v"`
	Items map[string]T   `json:"items"`
}

const currentSchemaVersion = 1
