package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/salon-reports-api/internal/models"
)

// ReportTemplateRepository reads custom report templates.
type ReportTemplateRepository struct {
	db *sqlx.DB
}

// NewReportTemplateRepository constructs the repository.
func NewReportTemplateRepository(db *sqlx.DB) *ReportTemplateRepository {
	return &ReportTemplateRepository{db: db}
}

// GetByID returns the template; a missing row wraps sql.ErrNoRows.
func (r *ReportTemplateRepository) GetByID(ctx context.Context, id string) (*models.ReportTemplate, error) {
	const query = `SELECT id, organization_id, name, config, created_at FROM custom_report_templates WHERE id = $1`
	var tpl models.ReportTemplate
	if err := r.db.GetContext(ctx, &tpl, query, id); err != nil {
		return nil, fmt.Errorf("get report template: %w", err)
	}
	return &tpl, nil
}
