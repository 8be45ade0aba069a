package models

// SalesSummaryRow is one raw row of the daily sales summary store.
type SalesSummaryRow map[string]interface{}

// SalesSummaryFilter selects rows for report generation. Dates are YYYY-MM-DD.
type SalesSummaryFilter struct {
	OrganizationID string
	DateFrom       string
	DateTo         string
	LocationID     *string
}
