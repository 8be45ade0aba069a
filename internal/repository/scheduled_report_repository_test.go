package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/salon-reports-api/internal/models"
)

func newScheduledReportRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var scheduledReportRowColumns = []string{"id", "organization_id", "template_id", "report_type", "name", "schedule_type", "schedule_config", "recipients", "format", "filters", "next_run_at", "last_run_at", "is_active", "created_at", "updated_at"}

func scheduledReportRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(scheduledReportRowColumns).
		AddRow("rep-1", "org-1", nil, "sales_summary", "Weekly revenue", "weekly", `{"timeUtc":"09:00"}`,
			`[{"email":"owner@salon.test"}]`, "pdf", `{"locationId":"loc-1"}`, now.Add(-time.Hour), nil, true, now, now)
}

func TestScheduledReportRepositoryListDue(t *testing.T) {
	db, mock, cleanup := newScheduledReportRepoMock(t)
	defer cleanup()
	repo := NewScheduledReportRepository(db)

	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM scheduled_reports WHERE is_active = TRUE AND next_run_at <= $1 ORDER BY next_run_at ASC LIMIT $2")).
		WithArgs(now, 25).
		WillReturnRows(scheduledReportRows(now))

	reports, err := repo.ListDue(context.Background(), now, 25)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	report := reports[0]
	assert.Equal(t, "rep-1", report.ID)
	assert.Equal(t, models.ScheduleWeekly, report.ScheduleType)
	assert.Equal(t, "09:00", report.ScheduleConfig.TimeUTC)
	require.Len(t, report.Recipients, 1)
	assert.Equal(t, "owner@salon.test", report.Recipients[0].Email)
	loc, ok := report.Filters.LocationID()
	assert.True(t, ok)
	assert.Equal(t, "loc-1", loc)
	assert.Nil(t, report.TemplateID)
	require.NotNil(t, report.ReportType)
	assert.Equal(t, "sales_summary", *report.ReportType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledReportRepositoryListDueWithoutLimit(t *testing.T) {
	db, mock, cleanup := newScheduledReportRepoMock(t)
	defer cleanup()
	repo := NewScheduledReportRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY next_run_at ASC") + "$").
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows(scheduledReportRowColumns))

	reports, err := repo.ListDue(context.Background(), now, 0)
	require.NoError(t, err)
	assert.Empty(t, reports)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledReportRepositoryListDueError(t *testing.T) {
	db, mock, cleanup := newScheduledReportRepoMock(t)
	defer cleanup()
	repo := NewScheduledReportRepository(db)

	mock.ExpectQuery("FROM scheduled_reports").WillReturnError(errors.New("connection reset"))

	_, err := repo.ListDue(context.Background(), time.Now(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list due scheduled reports")
}

func TestScheduledReportRepositoryClaim(t *testing.T) {
	db, mock, cleanup := newScheduledReportRepoMock(t)
	defer cleanup()
	repo := NewScheduledReportRepository(db)

	now := time.Date(2024, 3, 10, 9, 5, 0, 0, time.UTC)
	lease := now.Add(15 * time.Minute)
	prior := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("RETURNING prev.next_run_at")).
		WithArgs("rep-1", lease, now).
		WillReturnRows(sqlmock.NewRows([]string{"next_run_at"}).AddRow(prior))

	got, claimed, err := repo.Claim(context.Background(), "rep-1", now, lease)
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.True(t, prior.Equal(got))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledReportRepositoryClaimLost(t *testing.T) {
	db, mock, cleanup := newScheduledReportRepoMock(t)
	defer cleanup()
	repo := NewScheduledReportRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("RETURNING prev.next_run_at")).
		WillReturnRows(sqlmock.NewRows([]string{"next_run_at"}))

	_, claimed, err := repo.Claim(context.Background(), "rep-1", now, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, claimed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledReportRepositoryReleaseAndAdvance(t *testing.T) {
	db, mock, cleanup := newScheduledReportRepoMock(t)
	defer cleanup()
	repo := NewScheduledReportRepository(db)

	prior := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	next := time.Date(2024, 3, 17, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE scheduled_reports SET next_run_at = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(prior, "rep-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE scheduled_reports SET last_run_at = $1, next_run_at = $2, updated_at = NOW() WHERE id = $3")).
		WithArgs(prior, next, "rep-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Release(context.Background(), "rep-1", prior))
	require.NoError(t, repo.Advance(context.Background(), "rep-1", prior, next))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledReportRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newScheduledReportRepoMock(t)
	defer cleanup()
	repo := NewScheduledReportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scheduled_reports")).
		WithArgs(sqlmock.AnyArg(), "org-1", nil, "sales_summary", "Daily", models.ScheduleDaily,
			sqlmock.AnyArg(), sqlmock.AnyArg(), "pdf", sqlmock.AnyArg(), sqlmock.AnyArg(), nil, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	reportType := "sales_summary"
	report := &models.ScheduledReport{
		OrganizationID: "org-1",
		ReportType:     &reportType,
		Name:           "Daily",
		ScheduleType:   models.ScheduleDaily,
		Recipients:     models.Recipients{{Email: "a@salon.test"}},
		Format:         "pdf",
		NextRunAt:      time.Now().UTC(),
		IsActive:       true,
	}
	require.NoError(t, repo.Create(context.Background(), report))
	assert.NotEmpty(t, report.ID)
	assert.False(t, report.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledReportRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, cleanup := newScheduledReportRepoMock(t)
	defer cleanup()
	repo := NewScheduledReportRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM scheduled_reports WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestScheduledReportRepositoryList(t *testing.T) {
	db, mock, cleanup := newScheduledReportRepoMock(t)
	defer cleanup()
	repo := NewScheduledReportRepository(db)

	active := true
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM scheduled_reports WHERE organization_id = $1 AND is_active = $2")).
		WithArgs("org-1", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))
	mock.ExpectQuery(regexp.QuoteMeta("FROM scheduled_reports WHERE organization_id = $1 AND is_active = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4")).
		WithArgs("org-1", true, 20, 20).
		WillReturnRows(scheduledReportRows(now))

	reports, total, err := repo.List(context.Background(), models.ScheduledReportFilter{
		OrganizationID: "org-1",
		Active:         &active,
		Page:           2,
	})
	require.NoError(t, err)
	assert.Equal(t, 41, total)
	assert.Len(t, reports, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledReportRepositorySetActive(t *testing.T) {
	db, mock, cleanup := newScheduledReportRepoMock(t)
	defer cleanup()
	repo := NewScheduledReportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE scheduled_reports SET is_active = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(false, "rep-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE scheduled_reports SET is_active = $1")).
		WithArgs(true, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SetActive(context.Background(), "rep-1", false))
	err := repo.SetActive(context.Background(), "missing", true)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizePage(t *testing.T) {
	page, size := normalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	_, size = normalizePage(3, 500)
	assert.Equal(t, 100, size)
}
