package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "report-scanner",
	Short: "Run scheduled report scans outside the HTTP server",
	Long: `report-scanner processes due scheduled reports once and prints the result.
It also mints service tokens for external schedulers that call the HTTP trigger.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(newScanCommand())
	rootCmd.AddCommand(newTokenCommand())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
