package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/salon-reports-api/internal/dto"
	"github.com/noah-isme/salon-reports-api/internal/models"
	appErrors "github.com/noah-isme/salon-reports-api/pkg/errors"
	"github.com/noah-isme/salon-reports-api/pkg/logger"
	"github.com/noah-isme/salon-reports-api/pkg/response"
)

type reportScanner interface {
	ProcessDue(ctx context.Context) (*dto.ProcessReportsResponse, error)
}

type scheduledReportAdmin interface {
	Create(ctx context.Context, req dto.CreateScheduledReportRequest, claims *models.JWTClaims) (*models.ScheduledReport, error)
	List(ctx context.Context, query dto.ListScheduledReportsQuery, claims *models.JWTClaims) ([]models.ScheduledReport, *models.Pagination, error)
	Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.ScheduledReport, error)
	SetActive(ctx context.Context, id string, active bool, claims *models.JWTClaims) (*models.ScheduledReport, error)
	ListRuns(ctx context.Context, id string, page, pageSize int, claims *models.JWTClaims) ([]models.ScheduledReportRun, *models.Pagination, error)
}

// ScheduledReportHandler exposes the scan trigger and scheduled report management.
type ScheduledReportHandler struct {
	scanner reportScanner
	admin   scheduledReportAdmin
	logger  *zap.Logger
}

// NewScheduledReportHandler constructs the handler.
func NewScheduledReportHandler(scanner reportScanner, admin scheduledReportAdmin, logger *zap.Logger) *ScheduledReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduledReportHandler{scanner: scanner, admin: admin, logger: logger}
}

// Process godoc
// @Summary Run one scan over due scheduled reports
// @Tags Scheduled Reports
// @Produce json
// @Param X-Cron-Secret header string false "Shared trigger secret"
// @Success 200 {object} dto.ProcessReportsResponse
// @Failure 409 {object} dto.ProcessReportsError
// @Failure 500 {object} dto.ProcessReportsError
// @Router /scheduled-reports/process [post]
func (h *ScheduledReportHandler) Process(c *gin.Context) {
	result, err := h.scanner.ProcessDue(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, appErrors.ErrScanInProgress) {
			status = http.StatusConflict
		}
		logger.FromContext(h.logger, c).Error("scheduled report scan failed", zap.Error(err))
		response.Raw(c, status, dto.ProcessReportsError{Success: false, Error: err.Error()})
		return
	}
	response.Raw(c, http.StatusOK, result)
}

// List godoc
// @Summary List scheduled reports
// @Tags Scheduled Reports
// @Produce json
// @Param organizationId query string false "Organization (platform admins only)"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /scheduled-reports [get]
func (h *ScheduledReportHandler) List(c *gin.Context) {
	var query dto.ListScheduledReportsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	items, pagination, err := h.admin.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get a scheduled report
// @Tags Scheduled Reports
// @Produce json
// @Param id path string true "Scheduled report ID"
// @Success 200 {object} response.Envelope
// @Router /scheduled-reports/{id} [get]
func (h *ScheduledReportHandler) Get(c *gin.Context) {
	report, err := h.admin.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Create godoc
// @Summary Create a scheduled report
// @Tags Scheduled Reports
// @Accept json
// @Produce json
// @Param payload body dto.CreateScheduledReportRequest true "Scheduled report"
// @Success 201 {object} response.Envelope
// @Router /scheduled-reports [post]
func (h *ScheduledReportHandler) Create(c *gin.Context) {
	var req dto.CreateScheduledReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	report, err := h.admin.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}

// SetActive godoc
// @Summary Pause or resume a scheduled report
// @Tags Scheduled Reports
// @Accept json
// @Produce json
// @Param id path string true "Scheduled report ID"
// @Param payload body dto.SetActiveRequest true "Active flag"
// @Success 200 {object} response.Envelope
// @Router /scheduled-reports/{id}/active [patch]
func (h *ScheduledReportHandler) SetActive(c *gin.Context) {
	var req dto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "isActive is required"))
		return
	}
	report, err := h.admin.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Runs godoc
// @Summary List runs of a scheduled report
// @Tags Scheduled Reports
// @Produce json
// @Param id path string true "Scheduled report ID"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /scheduled-reports/{id}/runs [get]
func (h *ScheduledReportHandler) Runs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	runs, pagination, err := h.admin.ListRuns(c.Request.Context(), c.Param("id"), page, size, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, pagination)
}
