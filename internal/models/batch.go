package models

import "time"

// Batch job status constants
const (
	BatchStatusPending   = "pending"
	BatchStatusRunning   = "running"
	BatchStatusCompleted = "completed"
	BatchStatusFailed    = "failed"
)

// BatchJob tracks the single in-flight (or last-finished) batch analysis run.
// It is a single slot, not a history log; a new job overwrites it.
type BatchJob struct {
	ID                 string    `json:"id"`
	Status             string    `json:"status"`
	TotalHoldings      int       `json:"total_holdings"`
	ProcessedHoldings  int       `json:"processed_holdings"`
	SuccessfulHoldings int       `json:"successful_holdings"`
	FailedHoldings     int       `json:"failed_holdings"`
	ProgressPct        float64   `json:"progress_pct"`
	StartedAt          time.Time `json:"started_at"`
	FinishedAt         time.Time `json:"finished_at,omitempty"`
	Error              string    `json:"error,omitempty"`
}

// IsActive reports whether the job still occupies the slot.
func (j *BatchJob) IsActive() bool {
	return j.Status == BatchStatusPending || j.Status == BatchStatusRunning
}

// Progress recomputes ProgressPct from the processed and total counters.
func (j *BatchJob) Progress() float64 {
	if j.TotalHoldings == 0 {
		return 0
	}
	return float64(j.ProcessedHoldings) / float64(j.TotalHoldings) * 100
}
