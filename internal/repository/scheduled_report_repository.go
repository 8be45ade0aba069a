package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/salon-reports-api/internal/models"
)

const scheduledReportColumns = `id, organization_id, template_id, report_type, name, schedule_type, schedule_config, recipients, format, filters, next_run_at, last_run_at, is_active, created_at, updated_at`

// ScheduledReportRepository persists scheduled report definitions.
type ScheduledReportRepository struct {
	db *sqlx.DB
}

// NewScheduledReportRepository constructs the repository.
func NewScheduledReportRepository(db *sqlx.DB) *ScheduledReportRepository {
	return &ScheduledReportRepository{db: db}
}

// ListDue returns active reports whose next run is at or before now, oldest first.
// A non-positive limit returns every due report.
func (r *ScheduledReportRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]models.ScheduledReport, error) {
	query := `SELECT ` + scheduledReportColumns + `
FROM scheduled_reports WHERE is_active = TRUE AND next_run_at <= $1 ORDER BY next_run_at ASC`
	args := []interface{}{now}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	var reports []models.ScheduledReport
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, fmt.Errorf("list due scheduled reports: %w", err)
	}
	return reports, nil
}

// Claim pushes next_run_at to leaseUntil if the report is still active and due at now,
// returning the value it held before. claimed is false when another scan got there first.
func (r *ScheduledReportRepository) Claim(ctx context.Context, id string, now, leaseUntil time.Time) (prior time.Time, claimed bool, err error) {
	const query = `UPDATE scheduled_reports AS r SET next_run_at = $2, updated_at = NOW()
FROM (SELECT id, next_run_at FROM scheduled_reports WHERE id = $1 FOR UPDATE) AS prev
WHERE r.id = prev.id AND r.is_active = TRUE AND prev.next_run_at <= $3
RETURNING prev.next_run_at`
	if err := r.db.GetContext(ctx, &prior, query, id, leaseUntil, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("claim scheduled report: %w", err)
	}
	return prior, true, nil
}

// Release puts next_run_at back to a previous value, undoing a claim.
func (r *ScheduledReportRepository) Release(ctx context.Context, id string, nextRunAt time.Time) error {
	const query = `UPDATE scheduled_reports SET next_run_at = $1, updated_at = NOW() WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, nextRunAt, id); err != nil {
		return fmt.Errorf("release scheduled report: %w", err)
	}
	return nil
}

// Advance records a successful run and moves the schedule forward.
func (r *ScheduledReportRepository) Advance(ctx context.Context, id string, lastRunAt, nextRunAt time.Time) error {
	const query = `UPDATE scheduled_reports SET last_run_at = $1, next_run_at = $2, updated_at = NOW() WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, lastRunAt, nextRunAt, id); err != nil {
		return fmt.Errorf("advance scheduled report: %w", err)
	}
	return nil
}

// Create inserts a scheduled report with generated defaults.
func (r *ScheduledReportRepository) Create(ctx context.Context, report *models.ScheduledReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now
	const query = `INSERT INTO scheduled_reports (` + scheduledReportColumns + `)
VALUES (:id, :organization_id, :template_id, :report_type, :name, :schedule_type, :schedule_config, :recipients, :format, :filters, :next_run_at, :last_run_at, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("create scheduled report: %w", err)
	}
	return nil
}

// GetByID returns a report by id. sql.ErrNoRows is wrapped when absent.
func (r *ScheduledReportRepository) GetByID(ctx context.Context, id string) (*models.ScheduledReport, error) {
	const query = `SELECT ` + scheduledReportColumns + ` FROM scheduled_reports WHERE id = $1`
	var report models.ScheduledReport
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		return nil, fmt.Errorf("get scheduled report: %w", err)
	}
	return &report, nil
}

// List returns a page of reports plus the unpaged total.
func (r *ScheduledReportRepository) List(ctx context.Context, filter models.ScheduledReportFilter) ([]models.ScheduledReport, int, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.OrganizationID != "" {
		args = append(args, filter.OrganizationID)
		where = append(where, fmt.Sprintf("organization_id = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM scheduled_reports"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count scheduled reports: %w", err)
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf("SELECT %s FROM scheduled_reports%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		scheduledReportColumns, clause, len(args)-1, len(args))

	var reports []models.ScheduledReport
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list scheduled reports: %w", err)
	}
	return reports, total, nil
}

// SetActive toggles is_active. Reactivation does not touch next_run_at.
func (r *ScheduledReportRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE scheduled_reports SET is_active = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("set scheduled report active: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set scheduled report active: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set scheduled report active: %w", sql.ErrNoRows)
	}
	return nil
}

func normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
