package audit

import "fmt"

// WorkpadEvent is a row in the workpad_events table.
type WorkpadEvent struct {
	ID        int
	RepoID    string
	PadID     string
	Event     string
	Detail    string
	Timestamp string
}

// PipelineRun is a row in the pipeline_runs table.
type PipelineRun struct {
	ID         int
	PadID      string
	Stage      string
	Outcome    string
	DurationMs int
	Detail     string
	Timestamp  string
}

// Rollback is a row in the rollbacks table.
type Rollback struct {
	ID             int
	RepoID         string
	RevertedCommit string
	NewPadID       string
	Cause          string
	Timestamp      string
}

// LogWorkpadEvent records a workpad lifecycle event.
func (d *DB) LogWorkpadEvent(repoID, padID, event, detail string) error {
	_, err := d.conn.Exec(
		`INSERT INTO workpad_events (repo_id, pad_id, event, detail) VALUES (?, ?, ?, ?)`,
		repoID, padID, event, detail,
	)
	if err != nil {
		return fmt.Errorf("log workpad event: %w", err)
	}
	return nil
}

// LogPipelineStage records one automerge pipeline stage's outcome.
func (d *DB) LogPipelineStage(padID, stage, outcome string, durationMs int, detail string) error {
	_, err := d.conn.Exec(
		`INSERT INTO pipeline_runs (pad_id, stage, outcome, duration_ms, detail) VALUES (?, ?, ?, ?, ?)`,
		padID, stage, outcome, durationMs, detail,
	)
	if err != nil {
		return fmt.Errorf("log pipeline stage: %w", err)
	}
	return nil
}

// LogRollback records a rollback handler invocation.
func (d *DB) LogRollback(repoID, revertedCommit, newPadID, cause string) error {
	_, err := d.conn.Exec(
		`INSERT INTO rollbacks (repo_id, reverted_commit, new_pad_id, cause) VALUES (?, ?, ?, ?)`,
		repoID, revertedCommit, newPadID, cause,
	)
	if err != nil {
		return fmt.Errorf("log rollback: %w", err)
	}
	return nil
}

// GetPipelineHistory returns every recorded pipeline stage for padID,
// oldest first.
func (d *DB) GetPipelineHistory(padID string) ([]PipelineRun, error) {
	rows, err := d.conn.Query(
		`SELECT id, pad_id, stage, outcome, duration_ms, detail, timestamp
		 FROM pipeline_runs WHERE pad_id = ? ORDER BY id ASC`,
		padID,
	)
	if err != nil {
		return nil, fmt.Errorf("query pipeline history: %w", err)
	}
	defer rows.Close()

	var out []PipelineRun
	for rows.Next() {
		var r PipelineRun
		if err := rows.Scan(&r.ID, &r.PadID, &r.Stage, &r.Outcome, &r.DurationMs, &r.Detail, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan pipeline run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetWorkpadEvents returns every recorded event for padID, oldest first.
func (d *DB) GetWorkpadEvents(padID string) ([]WorkpadEvent, error) {
	rows, err := d.conn.Query(
		`SELECT id, repo_id, pad_id, event, detail, timestamp
		 FROM workpad_events WHERE pad_id = ? ORDER BY id ASC`,
		padID,
	)
	if err != nil {
		return nil, fmt.Errorf("query workpad events: %w", err)
	}
	defer rows.Close()

	var out []WorkpadEvent
	for rows.Next() {
		var e WorkpadEvent
		if err := rows.Scan(&e.ID, &e.RepoID, &e.PadID, &e.Event, &e.Detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan workpad event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
