package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/salon-reports-api/internal/models"
)

// SalesSummaryRepository reads the POS daily sales summary synced from Phorest.
type SalesSummaryRepository struct {
	db *sqlx.DB
}

// NewSalesSummaryRepository constructs the repository.
func NewSalesSummaryRepository(db *sqlx.DB) *SalesSummaryRepository {
	return &SalesSummaryRepository{db: db}
}

// List returns raw rows for an organisation within an inclusive date window.
// Every column is returned since templates may reference any field by name.
func (r *SalesSummaryRepository) List(ctx context.Context, filter models.SalesSummaryFilter) ([]models.SalesSummaryRow, error) {
	var builder strings.Builder
	builder.WriteString("SELECT * FROM phorest_daily_sales_summary WHERE organization_id = $1 AND summary_date >= $2 AND summary_date <= $3")
	args := []interface{}{filter.OrganizationID, filter.DateFrom, filter.DateTo}
	if filter.LocationID != nil && *filter.LocationID != "" {
		args = append(args, *filter.LocationID)
		builder.WriteString(fmt.Sprintf(" AND location_id = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY summary_date ASC")

	rows, err := r.db.QueryxContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query daily sales summary: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	result := make([]models.SalesSummaryRow, 0)
	for rows.Next() {
		raw := make(map[string]interface{})
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("scan daily sales summary: %w", err)
		}
		result = append(result, normalizeRow(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily sales summary: %w", err)
	}
	return result, nil
}

// normalizeRow turns driver byte slices (text, numeric) into strings so rows serialise cleanly.
func normalizeRow(raw map[string]interface{}) models.SalesSummaryRow {
	row := make(models.SalesSummaryRow, len(raw))
	for key, value := range raw {
		if b, ok := value.([]byte); ok {
			row[key] = string(b)
			continue
		}
		row[key] = value
	}
	return row
}
