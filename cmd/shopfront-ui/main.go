package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nickabs/shopfront/internal/logger"
	"github.com/nickabs/shopfront/internal/ui/config"
	"github.com/nickabs/shopfront/internal/ui/monitoring"
	"github.com/nickabs/shopfront/internal/ui/server"
	"github.com/nickabs/shopfront/internal/version"
	"github.com/spf13/cobra"

	// root certificates for https API urls when the binary runs in a scratch image
	_ "golang.org/x/crypto/x509roots/fallback"
)

func main() {
	cmd := &cobra.Command{
		Use:   "shopfront-ui",
		Short: "Shopfront web client",
		Long:  `Server rendered storefront that uses the shopfront API for catalog, account and cart operations`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
		SilenceUsage: true,
	}

	cmd.Version = version.Get().String()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load UI configuration: %w", err)
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
	slog.SetDefault(appLogger)

	appLogger.Info("Starting UI server",
		slog.String("version", version.Get().Version),
		slog.String("environment", cfg.Environment),
		slog.String("api", cfg.APIBaseURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiClient := server.NewAPIClient(cfg, appLogger)

	monitor := monitoring.New(apiClient, appLogger, monitoring.Options{
		FlushInterval: cfg.MonitorFlushInterval,
		MaxQueue:      cfg.MonitorMaxQueue,
	})
	monitor.Start(ctx)

	uiServer := server.NewServer(cfg, appLogger, apiClient, monitor)

	serverErr := uiServer.Start(ctx)

	// ctx is cancelled at this point, so the final flush gets its own deadline
	flushCtx, cancel := context.WithTimeout(context.Background(), server.ServerShutdownTimeout)
	defer cancel()
	if err := monitor.Stop(flushCtx); err != nil {
		appLogger.Warn("could not flush error monitor", slog.String("error", err.Error()))
	}

	if serverErr != nil {
		appLogger.Error("UI server error", slog.String("error", serverErr.Error()))
		return serverErr
	}

	appLogger.Info("UI server shutdown complete")
	return nil
}
