package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/seabattle/internal/api"
	"github.com/mcoot/seabattle/internal/config"
	"github.com/mcoot/seabattle/internal/factory"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		host     string
		port     int
		storage  string
		redisURL string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "seabattle-server",
		Short: "Sea battle WebSocket session server",
		Long: `seabattle-server hosts two-player sea battle games over WebSocket.

Configuration is read from SEABATTLE_* environment variables; flags
override the environment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("host") {
				cfg.Host = host
			}
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("storage") {
				cfg.Storage = storage
			}
			if flags.Changed("redis-url") {
				cfg.RedisURL = redisURL
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return run(cmd.Context(), cfg)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (env: SEABATTLE_HOST)")
	cmd.Flags().IntVarP(&port, "port", "p", 3000, "Listen port (env: SEABATTLE_PORT)")
	cmd.Flags().StringVar(&storage, "storage", factory.StorageTypeMemory, "Storage backend: memory, redis (env: SEABATTLE_STORAGE)")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "Redis URL (env: SEABATTLE_REDIS_URL)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error (env: SEABATTLE_LOG_LEVEL)")

	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(cfg.Factory(logger))
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close error", slog.String("error", err.Error()))
		}
	}()

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The coordinator outlives the listener so queued disconnects drain
	coordCtx, stopCoordinator := context.WithCancel(context.Background())
	coordDone := make(chan struct{})
	go func() {
		defer close(coordDone)
		app.Coordinator.Run(coordCtx)
	}()

	server := api.NewServer(app.Router, cfg.Server(), logger)
	server.OnShutdown(app.Hub.Close)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	var runErr error
	select {
	case err := <-errCh:
		runErr = err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		runErr = server.Shutdown(context.Background())
	}

	stopCoordinator()
	<-coordDone

	if runErr != nil {
		logger.Error("server error", slog.String("error", runErr.Error()))
		return runErr
	}
	logger.Info("server stopped")
	return nil
}
