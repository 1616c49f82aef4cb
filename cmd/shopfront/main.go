package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nickabs/shopfront/internal/database"
	"github.com/nickabs/shopfront/internal/logger"
	"github.com/nickabs/shopfront/internal/mailer"
	"github.com/nickabs/shopfront/internal/server"
	"github.com/nickabs/shopfront/internal/server/config"
	"github.com/nickabs/shopfront/internal/version"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "shopfront",
		Short:        "Shopfront API service",
		Long:         `REST API for the shopfront catalog, customer accounts and carts`,
		SilenceUsage: true,
	}
	rootCmd.Version = version.Get().String()

	var migrate bool
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(migrate)
		},
	}
	serveCmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending database migrations before starting")

	var status bool
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(status)
		},
	}
	migrateCmd.Flags().BoolVar(&status, "status", false, "list applied and pending migrations without changing the database")

	rootCmd.AddCommand(serveCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(migrate bool) error {
	cfg, corsConfigs, err := config.NewServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
	slog.SetDefault(appLogger)

	appLogger.Info("Starting shopfront API",
		slog.String("version", version.Get().Version),
		slog.String("environment", cfg.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := connect(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	if migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return err
		}
		appLogger.Info("database migrations applied")
	}

	var transport mailer.Transport
	if cfg.SMTPHost != "" {
		transport = mailer.NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	} else {
		appLogger.Warn("SMTP_HOST is not set, emails will be logged instead of sent")
	}
	mail := mailer.New(cfg.EmailFrom, transport, appLogger)

	apiServer := server.NewServer(pool, cfg, corsConfigs, appLogger, mail)

	// Start closes the pool on shutdown
	if err := apiServer.Start(ctx); err != nil {
		appLogger.Error("server error", slog.String("error", err.Error()))
		return err
	}

	appLogger.Info("server shutdown complete")
	return nil
}

func runMigrations(status bool) error {
	cfg, _, err := config.NewServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
	slog.SetDefault(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := connect(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if status {
		return database.MigrationStatus(ctx, pool)
	}

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}
	appLogger.Info("database migrations applied")
	return nil
}

// connect creates the connection pool and checks the database can be reached
func connect(ctx context.Context, cfg *config.ServerEnvironment, appLogger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = cfg.DBMaxConnections
	poolConfig.MinConns = cfg.DBMinConnections
	poolConfig.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = cfg.DBConnectTimeout

	pingCtx, cancel := context.WithTimeout(ctx, config.DatabasePingTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(pingCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	appLogger.Info("connected to PostgreSQL",
		slog.String("host", poolConfig.ConnConfig.Host),
		slog.String("database", poolConfig.ConnConfig.Database),
	)
	return pool, nil
}
