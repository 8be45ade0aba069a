package app

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/salon-reports-api/internal/repository"
	"github.com/noah-isme/salon-reports-api/internal/service"
	"github.com/noah-isme/salon-reports-api/pkg/cache"
	"github.com/noah-isme/salon-reports-api/pkg/config"
	"github.com/noah-isme/salon-reports-api/pkg/database"
)

// Container holds the wired dependencies shared by the HTTP server and the CLI.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	DB    *sqlx.DB
	Redis *redis.Client

	Metrics   *service.MetricsService
	Cache     *service.CacheService
	Auth      *service.AuthService
	Scanner   *service.ScheduledReportService
	Admin     *service.ScheduledReportAdminService
	Generator *service.ReportGenerator
}

// New connects to Postgres and, when enabled, Redis, then builds the services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	c := &Container{Config: cfg, Logger: logger, DB: db, Redis: redisClient}
	c.build()
	return c, nil
}

func (c *Container) build() {
	cfg := c.Config

	reportRepo := repository.NewScheduledReportRepository(c.DB)
	runRepo := repository.NewScheduledReportRunRepository(c.DB)
	templateRepo := repository.NewReportTemplateRepository(c.DB)
	salesRepo := repository.NewSalesSummaryRepository(c.DB)
	cacheRepo := repository.NewCacheRepository(c.Redis, c.Logger)

	c.Metrics = service.NewMetricsService()
	c.Cache = service.NewCacheService(cacheRepo, c.Metrics, cfg.Reports.TemplateCacheTTL, c.Logger, c.Redis != nil)
	c.Auth = service.NewAuthService(c.Logger, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
	})

	c.Generator = service.NewReportGenerator(salesRepo, service.ReportGeneratorConfig{
		Fields: service.DefaultMetricFieldMap().Merge(cfg.Reports.MetricFieldMap),
	}, c.Logger)

	c.Scanner = service.NewScheduledReportService(reportRepo, runRepo, templateRepo, c.Generator, c.Cache, c.Metrics, c.Logger, service.ScheduledReportServiceConfig{
		BatchLimit:       cfg.Scheduler.BatchLimit,
		ClaimEnabled:     cfg.Scheduler.ClaimEnabled,
		ClaimLease:       cfg.Scheduler.ClaimLease,
		ScanLockTTL:      cfg.Scheduler.ScanLockTTL,
		FilePrefix:       cfg.Reports.FilePrefix,
		DefaultFormat:    cfg.Reports.DefaultFormat,
		TemplateCacheTTL: cfg.Reports.TemplateCacheTTL,
		Policy:           service.AdvanceOnSuccessOnly,
	})

	c.Admin = service.NewScheduledReportAdminService(reportRepo, runRepo, templateRepo, validator.New(), c.Logger, cfg.Reports.DefaultFormat)
}

// Close releases the database and Redis connections.
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("close redis", zap.Error(err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("close postgres", zap.Error(err))
		}
	}
}
