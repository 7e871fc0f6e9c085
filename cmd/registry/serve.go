package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/campus-hub/course-registry/config"
	"github.com/campus-hub/course-registry/internal/infrastructure/persistence/postgres"
	httpserver "github.com/campus-hub/course-registry/internal/interface/http"
	"github.com/campus-hub/course-registry/pkg/logger"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()

	log.Info("starting course registry",
		logger.String("version", cfg.App.Version),
		logger.String("storage", string(cfg.Storage.Driver)),
	)
	if cfg.UsesDevelopmentSecret() {
		log.Warn("JWT_SECRET not set, signing tokens with the development secret")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. STORAGE
	// ─────────────────────────────────────────────────────────────────────────
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if a.pg != nil && cfg.Database.AutoMigrate {
		log.Info("running database migrations...")
		applied, err := postgres.NewMigrator(a.pg).Up(ctx)
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("migrations completed", logger.Int("applied", applied))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	gate, err := a.gate()
	if err != nil {
		return fmt.Errorf("failed to create access gate: %w", err)
	}
	if err := a.ensureAdmin(ctx, gate); err != nil {
		return err
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.MaxBodyBytes = cfg.HTTP.MaxBodyBytes
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.TrustedProxies = cfg.HTTP.TrustedProxies
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpConfig.Release = !cfg.IsDevelopment()
	httpConfig.Version = cfg.App.Version

	deps := httpserver.Dependencies{
		Directory:     a.directory(),
		Gate:          gate,
		Logger:        log,
		HealthChecker: a.health,
	}
	if a.limiter != nil {
		deps.RateLimiter = a.limiter
	}

	server, err := httpserver.NewServer(httpConfig, deps)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("course registry is running", logger.String("http_address", server.Address()))

	select {
	case <-ctx.Done():
		log.Info("received shutdown signal")
	case err := <-errCh:
		return err
	}

	log.Info("starting graceful shutdown...", logger.Duration("timeout", cfg.App.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	log.Info("course registry stopped")
	return nil
}
