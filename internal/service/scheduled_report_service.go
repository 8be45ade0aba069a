package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/salon-reports-api/internal/dto"
	"github.com/noah-isme/salon-reports-api/internal/models"
	"github.com/noah-isme/salon-reports-api/internal/repository"
	appErrors "github.com/noah-isme/salon-reports-api/pkg/errors"
)

// ScanLockKey guards a scan pass across processes.
const ScanLockKey = "scheduled-reports:scan-lock"

const (
	templateCacheKeyPrefix = "report-template:"
	fileTimestampLayout    = "20060102_150405"
)

// Skip reasons reported to metrics.
const (
	skipNotClaimed = "not_claimed"
	skipClaimError = "claim_error"
	skipRunCreate  = "run_create_error"
)

type dueReportStore interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]models.ScheduledReport, error)
	Claim(ctx context.Context, id string, now, leaseUntil time.Time) (time.Time, bool, error)
	Release(ctx context.Context, id string, nextRunAt time.Time) error
	Advance(ctx context.Context, id string, lastRunAt, nextRunAt time.Time) error
}

type runRecorderStore interface {
	Create(ctx context.Context, run *models.ScheduledReportRun) error
	Finish(ctx context.Context, id string, params repository.UpdateRunParams) error
}

type templateStore interface {
	GetByID(ctx context.Context, id string) (*models.ReportTemplate, error)
}

type payloadGenerator interface {
	Generate(ctx context.Context, report *models.ScheduledReport, tpl *models.ReportTemplate) (*dto.ReportPayload, error)
}

// AdvancePolicy decides whether a finished run moves next_run_at forward.
type AdvancePolicy int

// AdvanceOnSuccessOnly advances completed runs; failed runs keep their prior next_run_at
// and are retried on the next scan without backoff.
const AdvanceOnSuccessOnly AdvancePolicy = iota

func (p AdvancePolicy) advances(status models.RunStatus) bool {
	return status == models.RunStatusCompleted
}

// ScheduledReportServiceConfig governs a scan pass.
type ScheduledReportServiceConfig struct {
	BatchLimit       int
	ClaimEnabled     bool
	ClaimLease       time.Duration
	ScanLockTTL      time.Duration
	FilePrefix       string
	DefaultFormat    string
	TemplateCacheTTL time.Duration
	Policy           AdvancePolicy
	Clock            func() time.Time
}

// ScheduledReportService runs due scheduled reports.
type ScheduledReportService struct {
	reports   dueReportStore
	runs      runRecorderStore
	templates templateStore
	generator payloadGenerator
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       ScheduledReportServiceConfig
	now       func() time.Time
}

// NewScheduledReportService constructs the scanner.
func NewScheduledReportService(reports dueReportStore, runs runRecorderStore, templates templateStore, generator payloadGenerator, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg ScheduledReportServiceConfig) *ScheduledReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ClaimLease <= 0 {
		cfg.ClaimLease = 15 * time.Minute
	}
	if cfg.ScanLockTTL <= 0 {
		cfg.ScanLockTTL = 10 * time.Minute
	}
	if cfg.FilePrefix == "" {
		cfg.FilePrefix = "scheduled-reports"
	}
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "pdf"
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &ScheduledReportService{
		reports:   reports,
		runs:      runs,
		templates: templates,
		generator: generator,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return now().UTC() },
	}
}

// ProcessDue performs one scan pass over active reports whose next_run_at has passed.
// Reports are processed sequentially and independently; only a failure to list them aborts the pass.
func (s *ScheduledReportService) ProcessDue(ctx context.Context) (*dto.ProcessReportsResponse, error) {
	start := time.Now()

	unlock, err := s.cache.Lock(ctx, ScanLockKey, s.cfg.ScanLockTTL)
	switch {
	case errors.Is(err, appErrors.ErrLockHeld):
		s.metrics.ObserveScan(ScanOutcomeLocked, time.Since(start))
		return nil, appErrors.ErrScanInProgress
	case err != nil:
		s.logger.Warn("scan lock unavailable, continuing with row claims only", zap.Error(err))
	default:
		defer unlock(context.WithoutCancel(ctx))
	}

	due, err := s.reports.ListDue(ctx, s.now(), s.cfg.BatchLimit)
	if err != nil {
		s.metrics.ObserveScan(ScanOutcomeFailed, time.Since(start))
		s.logger.Error("list due scheduled reports failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load due scheduled reports")
	}

	results := make([]dto.ReportScanResult, 0, len(due))
	for i := range due {
		if ctx.Err() != nil {
			s.logger.Warn("scan interrupted", zap.Int("remaining", len(due)-i), zap.Error(ctx.Err()))
			break
		}
		if result, ok := s.processReport(ctx, &due[i]); ok {
			results = append(results, result)
		}
	}

	s.metrics.ObserveScan(ScanOutcomeCompleted, time.Since(start))
	s.logger.Info("scheduled report scan finished",
		zap.Int("due", len(due)),
		zap.Int("processed", len(results)),
		zap.Duration("duration", time.Since(start)),
	)
	return &dto.ProcessReportsResponse{Success: true, Processed: len(results), Results: results}, nil
}

// processReport runs a single due report. ok is false when the report was skipped
// without a run record.
func (s *ScheduledReportService) processReport(ctx context.Context, report *models.ScheduledReport) (dto.ReportScanResult, bool) {
	log := s.logger.With(zap.String("report_id", report.ID), zap.String("organization_id", report.OrganizationID))
	now := s.now()
	prior := report.NextRunAt

	if s.cfg.ClaimEnabled {
		claimedFrom, claimed, err := s.reports.Claim(ctx, report.ID, now, now.Add(s.cfg.ClaimLease))
		if err != nil {
			log.Warn("claim scheduled report failed", zap.Error(err))
			s.metrics.RecordSkip(skipClaimError)
			return dto.ReportScanResult{}, false
		}
		if !claimed {
			log.Info("scheduled report claimed elsewhere or no longer due")
			s.metrics.RecordSkip(skipNotClaimed)
			return dto.ReportScanResult{}, false
		}
		prior = claimedFrom
	}

	run, err := s.startRun(ctx, report.ID, now)
	if err != nil {
		log.Error("create scheduled report run failed", zap.Error(err))
		s.metrics.RecordSkip(skipRunCreate)
		s.release(ctx, log, report.ID, prior)
		return dto.ReportScanResult{}, false
	}
	log = log.With(zap.String("run_id", run.ID))

	result := dto.ReportScanResult{ReportID: report.ID, Name: report.Name}

	payload, genErr := s.generate(ctx, report)
	outcome := runOutcome{err: genErr}
	if genErr != nil {
		result.Status = models.RunStatusFailed
		result.Error = genErr.Error()
		log.Warn("scheduled report failed", zap.Error(genErr))
	} else {
		result.Status = models.RunStatusCompleted
		outcome.fileURL = s.buildFileURL(report, run.StartedAt)
		outcome.recipientCount = len(report.Recipients)
		if payload != nil {
			log = log.With(zap.String("title", payload.Title), zap.Int("row_count", payload.RowCount))
		}
	}

	if err := s.finishRun(ctx, run, outcome); err != nil {
		log.Error("finish scheduled report run failed", zap.String("status", string(result.Status)), zap.Error(err))
		if result.Error != "" {
			result.Error += "; "
		}
		result.Error += fmt.Sprintf("run %s was not finalized: %v", run.ID, err)
		s.release(ctx, log, report.ID, prior)
		return result, true
	}

	if !s.cfg.Policy.advances(result.Status) {
		s.release(ctx, log, report.ID, prior)
		return result, true
	}

	next := NextRunAt(*report, now)
	if err := s.reports.Advance(ctx, report.ID, run.StartedAt, next); err != nil {
		log.Error("advance scheduled report failed", zap.Error(err))
		result.Error = fmt.Sprintf("report completed but schedule was not advanced: %v", err)
		return result, true
	}
	result.NextRunAt = &next
	log.Info("scheduled report completed", zap.Time("next_run_at", next))
	return result, true
}

func (s *ScheduledReportService) startRun(ctx context.Context, reportID string, startedAt time.Time) (*models.ScheduledReportRun, error) {
	run := &models.ScheduledReportRun{
		ScheduledReportID: reportID,
		Status:            models.RunStatusRunning,
		StartedAt:         startedAt,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

type runOutcome struct {
	err            error
	fileURL        string
	recipientCount int
}

func (s *ScheduledReportService) finishRun(ctx context.Context, run *models.ScheduledReportRun, outcome runOutcome) error {
	completedAt := s.now()
	params := repository.UpdateRunParams{CompletedAt: &completedAt}
	status := models.RunStatusCompleted
	if outcome.err != nil {
		status = models.RunStatusFailed
		message := outcome.err.Error()
		params.ErrorMessage = &message
	} else {
		params.FileURL = &outcome.fileURL
		params.RecipientCount = &outcome.recipientCount
	}
	params.Status = &status

	if err := s.runs.Finish(ctx, run.ID, params); err != nil {
		return err
	}
	run.Status = status
	run.CompletedAt = &completedAt
	run.FileURL = params.FileURL
	run.RecipientCount = params.RecipientCount
	run.ErrorMessage = params.ErrorMessage
	s.metrics.RecordRun(status)
	return nil
}

func (s *ScheduledReportService) release(ctx context.Context, log *zap.Logger, reportID string, prior time.Time) {
	if !s.cfg.ClaimEnabled {
		return
	}
	if err := s.reports.Release(context.WithoutCancel(ctx), reportID, prior); err != nil {
		log.Error("release scheduled report claim failed; it will run after the lease expires",
			zap.Time("prior_next_run_at", prior), zap.Error(err))
	}
}

func (s *ScheduledReportService) generate(ctx context.Context, report *models.ScheduledReport) (*dto.ReportPayload, error) {
	var tpl *models.ReportTemplate
	if report.TemplateID != nil && *report.TemplateID != "" {
		loaded, err := s.loadTemplate(ctx, *report.TemplateID)
		if err != nil {
			return nil, err
		}
		tpl = loaded
	}
	return s.generator.Generate(ctx, report, tpl)
}

func (s *ScheduledReportService) loadTemplate(ctx context.Context, id string) (*models.ReportTemplate, error) {
	key := templateCacheKeyPrefix + id
	var cached models.ReportTemplate
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	tpl, err := s.templates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrTemplateNotFound, fmt.Sprintf("report template %s not found", id))
		}
		return nil, err
	}
	_ = s.cache.Set(ctx, key, tpl, s.cfg.TemplateCacheTTL)
	return tpl, nil
}

// buildFileURL returns <prefix>/<organization>/<report>/<YYYYMMDD_HHMMSS>.<format>.
func (s *ScheduledReportService) buildFileURL(report *models.ScheduledReport, startedAt time.Time) string {
	format := strings.ToLower(strings.TrimSpace(report.Format))
	if format == "" {
		format = s.cfg.DefaultFormat
	}
	filename := fmt.Sprintf("%s.%s", startedAt.UTC().Format(fileTimestampLayout), format)
	return path.Join(s.cfg.FilePrefix, report.OrganizationID, report.ID, filename)
}
