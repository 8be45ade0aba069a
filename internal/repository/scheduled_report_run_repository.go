package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/salon-reports-api/internal/models"
)

// ErrRunFinalized is returned when finishing a run that already reached a terminal state.
var ErrRunFinalized = errors.New("scheduled report run already finalized")

const runColumns = `id, scheduled_report_id, status, started_at, completed_at, file_url, recipient_count, error_message`

// ScheduledReportRunRepository persists run audit records.
type ScheduledReportRunRepository struct {
	db *sqlx.DB
}

// NewScheduledReportRunRepository constructs the repository.
func NewScheduledReportRunRepository(db *sqlx.DB) *ScheduledReportRunRepository {
	return &ScheduledReportRunRepository{db: db}
}

// Create inserts a run, defaulting to running/now.
func (r *ScheduledReportRunRepository) Create(ctx context.Context, run *models.ScheduledReportRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = models.RunStatusRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	const query = `INSERT INTO scheduled_report_runs (` + runColumns + `)
VALUES (:id, :scheduled_report_id, :status, :started_at, :completed_at, :file_url, :recipient_count, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create scheduled report run: %w", err)
	}
	return nil
}

// UpdateRunParams defines the fields set when a run finishes.
type UpdateRunParams struct {
	Status         *models.RunStatus
	CompletedAt    *time.Time
	FileURL        *string
	RecipientCount *int
	ErrorMessage   *string
}

// Finish applies params to a run still in running state. A second call returns ErrRunFinalized.
func (r *ScheduledReportRunRepository) Finish(ctx context.Context, id string, params UpdateRunParams) error {
	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	argPos := 1

	if params.Status != nil {
		set = append(set, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *params.Status)
		argPos++
	}
	if params.CompletedAt != nil {
		set = append(set, fmt.Sprintf("completed_at = $%d", argPos))
		args = append(args, *params.CompletedAt)
		argPos++
	}
	if params.FileURL != nil {
		set = append(set, fmt.Sprintf("file_url = $%d", argPos))
		args = append(args, *params.FileURL)
		argPos++
	}
	if params.RecipientCount != nil {
		set = append(set, fmt.Sprintf("recipient_count = $%d", argPos))
		args = append(args, *params.RecipientCount)
		argPos++
	}
	if params.ErrorMessage != nil {
		set = append(set, fmt.Sprintf("error_message = $%d", argPos))
		args = append(args, *params.ErrorMessage)
		argPos++
	}

	if len(set) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE scheduled_report_runs SET %s WHERE id = $%d AND status = 'running'", strings.Join(set, ", "), argPos)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("finish scheduled report run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish scheduled report run: %w", err)
	}
	if affected == 0 {
		return ErrRunFinalized
	}
	return nil
}

// GetByID returns a run by id.
func (r *ScheduledReportRunRepository) GetByID(ctx context.Context, id string) (*models.ScheduledReportRun, error) {
	const query = `SELECT ` + runColumns + ` FROM scheduled_report_runs WHERE id = $1`
	var run models.ScheduledReportRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, fmt.Errorf("get scheduled report run: %w", err)
	}
	return &run, nil
}

// ListByReport returns a page of runs for a report, newest first, plus the total count.
func (r *ScheduledReportRunRepository) ListByReport(ctx context.Context, reportID string, page, pageSize int) ([]models.ScheduledReportRun, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM scheduled_report_runs WHERE scheduled_report_id = $1`, reportID); err != nil {
		return nil, 0, fmt.Errorf("count scheduled report runs: %w", err)
	}

	page, pageSize = normalizePage(page, pageSize)
	const query = `SELECT ` + runColumns + `
FROM scheduled_report_runs WHERE scheduled_report_id = $1 ORDER BY started_at DESC LIMIT $2 OFFSET $3`
	var runs []models.ScheduledReportRun
	if err := r.db.SelectContext(ctx, &runs, query, reportID, pageSize, (page-1)*pageSize); err != nil {
		return nil, 0, fmt.Errorf("list scheduled report runs: %w", err)
	}
	return runs, total, nil
}
