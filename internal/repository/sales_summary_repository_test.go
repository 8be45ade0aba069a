package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/salon-reports-api/internal/models"
)

func TestSalesSummaryRepositoryList(t *testing.T) {
	db, mock, cleanup := newScheduledReportRepoMock(t)
	defer cleanup()
	repo := NewSalesSummaryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM phorest_daily_sales_summary WHERE organization_id = $1 AND summary_date >= $2 AND summary_date <= $3 ORDER BY summary_date ASC")).
		WithArgs("org-1", "2024-03-03", "2024-03-10").
		WillReturnRows(sqlmock.NewRows([]string{"summary_date", "total_revenue", "total_transactions"}).
			AddRow("2024-03-03", []byte("120.50"), int64(4)).
			AddRow("2024-03-04", []byte("80.00"), int64(2)))

	rows, err := repo.List(context.Background(), models.SalesSummaryFilter{
		OrganizationID: "org-1",
		DateFrom:       "2024-03-03",
		DateTo:         "2024-03-10",
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "120.50", rows[0]["total_revenue"])
	assert.Equal(t, int64(2), rows[1]["total_transactions"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSalesSummaryRepositoryListByLocation(t *testing.T) {
	db, mock, cleanup := newScheduledReportRepoMock(t)
	defer cleanup()
	repo := NewSalesSummaryRepository(db)

	location := "loc-1"
	mock.ExpectQuery(regexp.QuoteMeta("AND location_id = $4 ORDER BY summary_date ASC")).
		WithArgs("org-1", "2024-03-09", "2024-03-09", location).
		WillReturnRows(sqlmock.NewRows([]string{"summary_date"}))

	rows, err := repo.List(context.Background(), models.SalesSummaryFilter{
		OrganizationID: "org-1",
		DateFrom:       "2024-03-09",
		DateTo:         "2024-03-09",
		LocationID:     &location,
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
	require.NotNil(t, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}
