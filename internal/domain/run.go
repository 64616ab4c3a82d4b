package domain

import "time"

// RunStatus enumerates the lifecycle states of a scoring run.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunPartial RunStatus = "partial"
	RunError   RunStatus = "error"
)

// ScoringRun is one row of the append-only execution log. A run is created
// when scoring starts and finalized exactly once; finalized rows are never
// mutated.
type ScoringRun struct {
	ID         string     `json:"id" db:"id"`
	AccountID  string     `json:"account_id" db:"account_id"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	Status     RunStatus  `json:"status" db:"status"`

	UnitsTotal  int `json:"units_total" db:"units_total"`
	UnitsScored int `json:"units_scored" db:"units_scored"`
	HighRisk    int `json:"high_risk" db:"high_risk"`
	MediumRisk  int `json:"medium_risk" db:"medium_risk"`
	LowRisk     int `json:"low_risk" db:"low_risk"`

	ErrorDetail string `json:"error_detail,omitempty" db:"error_detail"`
}

// Duration returns how long the run took, or the elapsed time so far for a
// run that has not finished.
func (r ScoringRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// IsTerminal returns true once the run has been finalized.
func (r ScoringRun) IsTerminal() bool {
	return r.Status != RunRunning
}

// RunCounts carries the tallies recorded when a run is finalized.
type RunCounts struct {
	UnitsTotal  int
	UnitsScored int
	HighRisk    int
	MediumRisk  int
	LowRisk     int
}
