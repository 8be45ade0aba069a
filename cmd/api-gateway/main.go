package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/salon-reports-api/internal/app"
	"github.com/noah-isme/salon-reports-api/pkg/config"
	appErrors "github.com/noah-isme/salon-reports-api/pkg/errors"
	"github.com/noah-isme/salon-reports-api/pkg/jobs"
	"github.com/noah-isme/salon-reports-api/pkg/logger"
)

// @title Salon Reports API
// @version 1.0.0
// @description Scheduled report processing for salon organizations
// @BasePath /
// @schemes http

const scanJobName = "scheduled-reports-scan"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := app.New(ctx, cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init dependencies", "error", err)
	}
	defer container.Close()

	scheduler := jobs.NewScheduler(jobs.SchedulerConfig{Logger: logr})
	if cfg.Scheduler.Enabled {
		err := scheduler.Register(scanJobName, cfg.Scheduler.Cron, func(ctx context.Context) error {
			result, err := container.Scanner.ProcessDue(ctx)
			if errors.Is(err, appErrors.ErrScanInProgress) {
				logr.Info("scheduled report scan skipped, another scan holds the lock")
				return nil
			}
			if err != nil {
				return err
			}
			logr.Info("scheduled report scan finished", zap.Int("processed", result.Processed))
			return nil
		})
		if err != nil {
			logr.Sugar().Fatalw("failed to register scan job", "error", err)
		}
		scheduler.Start()
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           container.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "scheduler", cfg.Scheduler.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown", "error", err)
	}
}
