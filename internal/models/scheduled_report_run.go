package models

import "time"

// RunStatus captures the run lifecycle. completed and failed are terminal.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// ScheduledReportRun is the audit record of one execution attempt.
type ScheduledReportRun struct {
	ID                string     `db:"id" json:"id"`
	ScheduledReportID string     `db:"scheduled_report_id" json:"scheduledReportId"`
	Status            RunStatus  `db:"status" json:"status"`
	StartedAt         time.Time  `db:"started_at" json:"startedAt"`
	CompletedAt       *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	FileURL           *string    `db:"file_url" json:"fileUrl,omitempty"`
	RecipientCount    *int       `db:"recipient_count" json:"recipientCount,omitempty"`
	ErrorMessage      *string    `db:"error_message" json:"errorMessage,omitempty"`
}
