package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fundlift/mailroom/internal"
	"github.com/fundlift/mailroom/internal/email"
	"github.com/fundlift/mailroom/internal/handler/api"
	"github.com/fundlift/mailroom/internal/middleware"
	"github.com/fundlift/mailroom/internal/postgres"
	"github.com/fundlift/mailroom/internal/router"
	"github.com/fundlift/mailroom/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	// Verify database connection
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize stores
	templateStore := postgres.NewTemplateStore(pool)
	logStore := postgres.NewEmailLogStore(pool)

	// Initialize template registry and seed the catalog
	registry, err := email.NewRegistry(templateStore)
	if err != nil {
		return fmt.Errorf("failed to initialize template registry: %w", err)
	}
	if err := registry.Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed templates: %w", err)
	}
	logger.Info("Template registry initialized")

	// Initialize variable resolver from brand configuration
	resolver := email.NewResolver(email.GlobalVariables{
		AppName:      cfg.Brand.AppName,
		LogoURL:      cfg.Brand.LogoURL,
		DashboardURL: cfg.Brand.DashboardURL,
		WebURL:       cfg.Brand.WebURL,
		SupportEmail: cfg.Brand.SupportEmail,
		LegalName:    cfg.Brand.LegalName,
		LegalAddress: cfg.Brand.LegalAddress,
	})

	// Initialize renderer with the embedded master layout
	renderer, err := email.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}

	// Select delivery provider
	var sender email.Sender
	switch cfg.Email.Provider {
	case "postmark":
		sender = email.NewPostmarkSender(cfg.Email.PostmarkToken, cfg.Email.From)
		logger.Info("Using Postmark delivery provider")
	default:
		sender = email.NewSMTPSender(&email.SMTPConfig{
			Host:     cfg.Email.Host,
			Port:     int(cfg.Email.Port),
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			FromName: cfg.Email.FromName,
		}, logger)
		logger.Info("Using SMTP delivery provider", "host", cfg.Email.Host, "port", cfg.Email.Port)
	}

	// Initialize telemetry
	emailMetrics := telemetry.NewEmailMetrics(prometheus.DefaultRegisterer, "mailroom")
	httpMetrics := middleware.NewMetrics("mailroom")

	// Initialize orchestrator
	service := email.NewService(registry, resolver, renderer, logStore, sender, logger, emailMetrics)

	// Build router
	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithRequestLogger(logger),
		router.Logger(logger),
		router.CORS([]string{cfg.Brand.DashboardURL, cfg.Brand.WebURL}),
		httpMetrics.Middleware,
	)

	emailHandler := api.NewEmailHandler(service, logger)
	emailHandler.RegisterRoutes(r)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := pool.Ping(req.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	r.Handle(http.MethodGet, "/metrics", httpMetrics.Handler())

	// Start server with graceful shutdown
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting email service", "address", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-stopCtx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
