// Package main implements nestctl, the operator CLI for catalog maintenance.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nestlings/planner/config"
	"github.com/nestlings/planner/internal/app"
	"github.com/nestlings/planner/internal/platform/logger"
)

var (
	// version information
	version = "dev"

	// logMode overrides log.mode from the configuration when set
	logMode string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nestctl",
	Short: "Operator CLI for the Nestlings Planner catalog",
	Long: `nestctl runs maintenance tasks against the Nestlings Planner database
using the same configuration as the API server (config.yaml, .env and
NESTLINGS_* environment variables).`,
	Version:       version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "logger mode: development, production or test")
}

// bootstrap loads configuration and wires the application. Callers must
// close the returned App.
func bootstrap(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if logMode != "" {
		cfg.Log.Mode = logMode
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	return app.New(ctx, cfg, log)
}
