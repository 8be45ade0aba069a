package dto

import (
	"time"

	"github.com/noah-isme/salon-reports-api/internal/models"
)

// ProcessReportsResponse is the body returned by the scan trigger.
type ProcessReportsResponse struct {
	Success   bool               `json:"success"`
	Processed int                `json:"processed"`
	Results   []ReportScanResult `json:"results"`
}

// ReportScanResult is the per-report outcome of one scan pass.
type ReportScanResult struct {
	ReportID  string           `json:"reportId"`
	Name      string           `json:"name"`
	Status    models.RunStatus `json:"status"`
	NextRunAt *time.Time       `json:"nextRunAt,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// ProcessReportsError is the body returned when a scan aborts.
type ProcessReportsError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// DateRange is an inclusive YYYY-MM-DD window.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ReportPayload is the generated report content.
type ReportPayload struct {
	DateRange   DateRange                `json:"dateRange"`
	Title       string                   `json:"title"`
	ReportType  string                   `json:"reportType,omitempty"`
	TemplateID  string                   `json:"templateId,omitempty"`
	RowCount    int                      `json:"rowCount"`
	Rows        []models.SalesSummaryRow `json:"rows,omitempty"`
	Totals      map[string]float64       `json:"totals,omitempty"`
	Labels      map[string]string        `json:"labels,omitempty"`
	GeneratedAt time.Time                `json:"generatedAt"`
}

// CreateScheduledReportRequest captures POST /scheduled-reports.
type CreateScheduledReportRequest struct {
	OrganizationID string                 `json:"organizationId" validate:"required"`
	TemplateID     *string                `json:"templateId,omitempty" validate:"required_without=ReportType,excluded_with=ReportType"`
	ReportType     *string                `json:"reportType,omitempty" validate:"required_without=TemplateID"`
	Name           string                 `json:"name" validate:"required,max=200"`
	ScheduleType   models.ScheduleType    `json:"scheduleType" validate:"required,oneof=daily weekly monthly first_of_month last_of_month"`
	ScheduleConfig models.ScheduleConfig  `json:"scheduleConfig"`
	Recipients     []models.Recipient     `json:"recipients" validate:"required,min=1,dive"`
	Format         string                 `json:"format" validate:"omitempty,oneof=pdf csv xlsx"`
	Filters        map[string]interface{} `json:"filters,omitempty"`
}

// ListScheduledReportsQuery captures GET /scheduled-reports query parameters.
type ListScheduledReportsQuery struct {
	OrganizationID string `form:"organizationId"`
	Active         *bool  `form:"active"`
	Page           int    `form:"page"`
	PageSize       int    `form:"page_size"`
}

// SetActiveRequest toggles a scheduled report.
type SetActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}
