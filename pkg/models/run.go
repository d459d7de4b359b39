package models

import "time"

const (
	RunStatusSuccess = "success"
	RunStatusError   = "error"
	RunStatusDryRun  = "dry_run"
)

// RunResult summarises one sync run.
type RunResult struct {
	ID           string
	TableID      string
	StartedAt    time.Time
	FinishedAt   time.Time
	RowsRead     int
	RowsDeleted  int
	RowsInserted int
	Batches      int
	Status       string
	// FailedStage is empty unless Status is RunStatusError.
	FailedStage string
	Error       string
}

func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
