package app

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/salon-reports-api/api/swagger"
	"github.com/noah-isme/salon-reports-api/internal/handler"
	"github.com/noah-isme/salon-reports-api/internal/middleware"
	"github.com/noah-isme/salon-reports-api/internal/models"
	"github.com/noah-isme/salon-reports-api/pkg/config"
	"github.com/noah-isme/salon-reports-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/salon-reports-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/salon-reports-api/pkg/middleware/requestid"
)

// Router builds the gin engine with operational and API routes.
func (c *Container) Router() *gin.Engine {
	cfg := c.Config
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(c.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(c.Metrics))

	deps := map[string]handler.Pinger{"postgres": c.DB}
	if c.Redis != nil {
		deps["redis"] = redisPinger{c}
	}
	metricsHandler := handler.NewMetricsHandler(c.Metrics, deps)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	reports := handler.NewScheduledReportHandler(c.Scanner, c.Admin, c.Logger)

	api := r.Group(cfg.APIPrefix)
	api.POST("/scheduled-reports/process", middleware.TriggerAuth(cfg.Scheduler.TriggerSecret, c.Auth), reports.Process)

	managers := []models.UserRole{models.RolePlatformAdmin, models.RoleOwner, models.RoleAdmin, models.RoleManager}
	secured := api.Group("/scheduled-reports", middleware.JWT(c.Auth))
	secured.GET("", middleware.RequireRoles(managers...), reports.List)
	secured.POST("", middleware.RequireRoles(models.RolePlatformAdmin, models.RoleOwner, models.RoleAdmin), reports.Create)
	secured.GET("/:id", middleware.RequireRoles(managers...), reports.Get)
	secured.PATCH("/:id/active", middleware.RequireRoles(models.RolePlatformAdmin, models.RoleOwner, models.RoleAdmin), reports.SetActive)
	secured.GET("/:id/runs", middleware.RequireRoles(managers...), reports.Runs)

	return r
}

type redisPinger struct {
	c *Container
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.c.Redis.Ping(ctx).Err()
}
