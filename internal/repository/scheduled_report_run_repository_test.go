package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/salon-reports-api/internal/models"
)

func TestScheduledReportRunRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newScheduledReportRepoMock(t)
	defer cleanup()
	repo := NewScheduledReportRunRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scheduled_report_runs")).
		WithArgs(sqlmock.AnyArg(), "rep-1", models.RunStatusRunning, sqlmock.AnyArg(), nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	run := &models.ScheduledReportRun{ScheduledReportID: "rep-1"}
	require.NoError(t, repo.Create(context.Background(), run))
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, models.RunStatusRunning, run.Status)
	assert.False(t, run.StartedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledReportRunRepositoryFinishCompleted(t *testing.T) {
	db, mock, cleanup := newScheduledReportRepoMock(t)
	defer cleanup()
	repo := NewScheduledReportRunRepository(db)

	now := time.Date(2024, 3, 10, 9, 1, 0, 0, time.UTC)
	status := models.RunStatusCompleted
	url := "scheduled-reports/org-1/rep-1/20240310_090000.pdf"
	count := 2

	mock.ExpectExec(regexp.QuoteMeta("UPDATE scheduled_report_runs SET status = $1, completed_at = $2, file_url = $3, recipient_count = $4 WHERE id = $5 AND status = 'running'")).
		WithArgs(status, now, url, count, "run-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Finish(context.Background(), "run-1", UpdateRunParams{
		Status:         &status,
		CompletedAt:    &now,
		FileURL:        &url,
		RecipientCount: &count,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledReportRunRepositoryFinishTwice(t *testing.T) {
	db, mock, cleanup := newScheduledReportRepoMock(t)
	defer cleanup()
	repo := NewScheduledReportRunRepository(db)

	status := models.RunStatusFailed
	message := "boom"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE scheduled_report_runs SET status = $1, error_message = $2 WHERE id = $3 AND status = 'running'")).
		WithArgs(status, message, "run-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Finish(context.Background(), "run-1", UpdateRunParams{Status: &status, ErrorMessage: &message})
	assert.ErrorIs(t, err, ErrRunFinalized)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledReportRunRepositoryFinishNoop(t *testing.T) {
	db, mock, cleanup := newScheduledReportRepoMock(t)
	defer cleanup()
	repo := NewScheduledReportRunRepository(db)

	require.NoError(t, repo.Finish(context.Background(), "run-1", UpdateRunParams{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledReportRunRepositoryListByReport(t *testing.T) {
	db, mock, cleanup := newScheduledReportRepoMock(t)
	defer cleanup()
	repo := NewScheduledReportRunRepository(db)

	started := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	completed := started.Add(time.Minute)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM scheduled_report_runs WHERE scheduled_report_id = $1")).
		WithArgs("rep-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY started_at DESC LIMIT $2 OFFSET $3")).
		WithArgs("rep-1", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "scheduled_report_id", "status", "started_at", "completed_at", "file_url", "recipient_count", "error_message"}).
			AddRow("run-1", "rep-1", "completed", started, completed, "scheduled-reports/org-1/rep-1/20240310_090000.pdf", 1, nil))

	runs, total, err := repo.ListByReport(context.Background(), "rep-1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, runs, 1)
	assert.Equal(t, models.RunStatusCompleted, runs[0].Status)
	require.NotNil(t, runs[0].RecipientCount)
	assert.Equal(t, 1, *runs[0].RecipientCount)
	assert.Nil(t, runs[0].ErrorMessage)
	require.NoError(t, mock.ExpectationsWereMet())
}
