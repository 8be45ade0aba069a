package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/salon-reports-api/internal/app"
	"github.com/noah-isme/salon-reports-api/internal/models"
	"github.com/noah-isme/salon-reports-api/internal/service"
	"github.com/noah-isme/salon-reports-api/pkg/config"
	"github.com/noah-isme/salon-reports-api/pkg/logger"
)

func newScanCommand() *cobra.Command {
	var batchLimit int
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Process due scheduled reports once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("limit") {
				cfg.Scheduler.BatchLimit = batchLimit
			}
			logr, err := logger.New(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logr.Sync() //nolint:errcheck

			container, err := app.New(cmd.Context(), cfg, logr)
			if err != nil {
				return err
			}
			defer container.Close()

			result, err := container.Scanner.ProcessDue(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().IntVar(&batchLimit, "limit", 0, "maximum reports to process (0 means all due)")
	return cmd
}

func newTokenCommand() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a service token accepted by the scan trigger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			expiry := cfg.JWT.Expiration
			if ttl > 0 {
				expiry = ttl
			}
			auth := service.NewAuthService(nil, service.AuthConfig{
				AccessTokenSecret: cfg.JWT.Secret,
				AccessTokenExpiry: expiry,
			})
			token, expiresAt, err := auth.IssueToken(subject, models.RoleService, "")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "cron", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_EXPIRATION)")
	return cmd
}
