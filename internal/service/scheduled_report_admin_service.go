package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/salon-reports-api/internal/dto"
	"github.com/noah-isme/salon-reports-api/internal/models"
	appErrors "github.com/noah-isme/salon-reports-api/pkg/errors"
)

type scheduledReportCatalog interface {
	Create(ctx context.Context, report *models.ScheduledReport) error
	GetByID(ctx context.Context, id string) (*models.ScheduledReport, error)
	List(ctx context.Context, filter models.ScheduledReportFilter) ([]models.ScheduledReport, int, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type runHistoryStore interface {
	ListByReport(ctx context.Context, reportID string, page, pageSize int) ([]models.ScheduledReportRun, int, error)
}

// ScheduledReportAdminService manages scheduled report definitions and exposes run history.
type ScheduledReportAdminService struct {
	reports       scheduledReportCatalog
	runs          runHistoryStore
	templates     templateStore
	validator     *validator.Validate
	logger        *zap.Logger
	defaultFormat string
	now           func() time.Time
}

// NewScheduledReportAdminService constructs the service.
func NewScheduledReportAdminService(reports scheduledReportCatalog, runs runHistoryStore, templates templateStore, validate *validator.Validate, logger *zap.Logger, defaultFormat string) *ScheduledReportAdminService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultFormat == "" {
		defaultFormat = "pdf"
	}
	return &ScheduledReportAdminService{
		reports:       reports,
		runs:          runs,
		templates:     templates,
		validator:     validate,
		logger:        logger,
		defaultFormat: defaultFormat,
		now:           time.Now,
	}
}

// Create validates and stores a new scheduled report with its first next_run_at.
func (s *ScheduledReportAdminService) Create(ctx context.Context, req dto.CreateScheduledReportRequest, claims *models.JWTClaims) (*models.ScheduledReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheduled report payload")
	}
	if err := validateScheduleConfig(req.ScheduleConfig); err != nil {
		return nil, err
	}
	if !claims.CanAccessOrganization(req.OrganizationID) {
		return nil, appErrors.ErrForbidden
	}
	if req.TemplateID != nil {
		tpl, err := s.templates.GetByID(ctx, *req.TemplateID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "templateId does not reference an existing template")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report template")
		}
		if tpl.OrganizationID != req.OrganizationID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "templateId belongs to another organization")
		}
	}

	format := strings.ToLower(req.Format)
	if format == "" {
		format = s.defaultFormat
	}
	report := &models.ScheduledReport{
		OrganizationID: req.OrganizationID,
		TemplateID:     req.TemplateID,
		ReportType:     req.ReportType,
		Name:           strings.TrimSpace(req.Name),
		ScheduleType:   req.ScheduleType,
		ScheduleConfig: req.ScheduleConfig,
		Recipients:     models.Recipients(req.Recipients),
		Format:         format,
		Filters:        models.ReportFilters(req.Filters),
		IsActive:       true,
	}
	report.NextRunAt = NextRunAt(*report, s.now())

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create scheduled report")
	}
	s.logger.Sugar().Infow("scheduled report created", "report_id", report.ID, "organization_id", report.OrganizationID, "next_run_at", report.NextRunAt)
	return report, nil
}

// List returns reports visible to the caller. Tenant users are pinned to their own organization.
func (s *ScheduledReportAdminService) List(ctx context.Context, query dto.ListScheduledReportsQuery, claims *models.JWTClaims) ([]models.ScheduledReport, *models.Pagination, error) {
	if claims == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	filter := models.ScheduledReportFilter{
		OrganizationID: query.OrganizationID,
		Active:         query.Active,
		Page:           query.Page,
		PageSize:       query.PageSize,
	}
	if !claims.CanAccessOrganization(filter.OrganizationID) {
		if filter.OrganizationID != "" {
			return nil, nil, appErrors.ErrForbidden
		}
		filter.OrganizationID = claims.OrganizationID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	rows, total, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scheduled reports")
	}
	return rows, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns a report the caller may see.
func (s *ScheduledReportAdminService) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.ScheduledReport, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scheduled report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduled report")
	}
	if !claims.CanAccessOrganization(report.OrganizationID) {
		return nil, appErrors.ErrForbidden
	}
	return report, nil
}

// SetActive pauses or resumes a report. next_run_at is left as is, so a resumed
// report whose time has passed runs on the next scan.
func (s *ScheduledReportAdminService) SetActive(ctx context.Context, id string, active bool, claims *models.JWTClaims) (*models.ScheduledReport, error) {
	report, err := s.Get(ctx, id, claims)
	if err != nil {
		return nil, err
	}
	if err := s.reports.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scheduled report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update scheduled report")
	}
	report.IsActive = active
	return report, nil
}

// ListRuns returns the run history of a report, newest first.
func (s *ScheduledReportAdminService) ListRuns(ctx context.Context, id string, page, pageSize int, claims *models.JWTClaims) ([]models.ScheduledReportRun, *models.Pagination, error) {
	if _, err := s.Get(ctx, id, claims); err != nil {
		return nil, nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	runs, total, err := s.runs.ListByReport(ctx, id, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scheduled report runs")
	}
	return runs, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

func validateScheduleConfig(cfg models.ScheduleConfig) error {
	if cfg.TimeUTC != "" {
		if _, _, ok := ParseTimeOfDay(cfg.TimeUTC); !ok {
			return appErrors.Clone(appErrors.ErrValidation, "scheduleConfig.timeUtc must be HH:MM")
		}
	}
	if cfg.DayOfWeek != nil && (*cfg.DayOfWeek < 0 || *cfg.DayOfWeek > 6) {
		return appErrors.Clone(appErrors.ErrValidation, "scheduleConfig.dayOfWeek must be between 0 and 6")
	}
	if cfg.DayOfMonth != nil && (*cfg.DayOfMonth < 1 || *cfg.DayOfMonth > 31) {
		return appErrors.Clone(appErrors.ErrValidation, "scheduleConfig.dayOfMonth must be between 1 and 31")
	}
	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "scheduleConfig.timezone is not a known zone")
		}
	}
	return nil
}
