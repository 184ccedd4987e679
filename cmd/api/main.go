package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/straye-as/expense-gateway/docs"
	"github.com/straye-as/expense-gateway/internal/config"
	"github.com/straye-as/expense-gateway/internal/crm"
	"github.com/straye-as/expense-gateway/internal/http/handler"
	"github.com/straye-as/expense-gateway/internal/http/middleware"
	"github.com/straye-as/expense-gateway/internal/http/router"
	"github.com/straye-as/expense-gateway/internal/jobs"
	"github.com/straye-as/expense-gateway/internal/logger"
	"github.com/straye-as/expense-gateway/internal/service"
	"github.com/straye-as/expense-gateway/internal/spool"
	"go.uber.org/zap"
)

// @title Straye Expense Gateway
// @version 1.0
// @description Relay between the expense-report form and the CRM's REST API

// @contact.name API Support
// @contact.email support@straye.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3000
// @BasePath /api

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging", "production":
		docs.SwaggerInfo.Host = ""
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	if cfg.CRM.AccessToken == "" {
		// The gateway still starts; every relay call reports a configuration
		// error until the token appears.
		log.Warn("CRM access token not configured")
	}

	// CRM client and attachment spool
	crmClient := crm.NewClient(&cfg.CRM, log)

	sp, err := spool.New(cfg.Upload.TempDir, log)
	if err != nil {
		return fmt.Errorf("failed to initialize attachment spool: %w", err)
	}

	// Services
	entityService := service.NewEntityService(crmClient, &cfg.CRM, &cfg.Entities, log)
	expenseService := service.NewExpenseService(crmClient, &cfg.CRM, sp, log)
	associationService := service.NewAssociationService(crmClient, &cfg.CRM, log)

	// Handlers
	expenseHandler := handler.NewExpenseHandler(expenseService, &cfg.Upload, log)
	entityHandler := handler.NewEntityHandler(entityService, log)
	associationHandler := handler.NewAssociationHandler(associationService, log)

	// Rate limiter and router
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	rt := router.NewRouter(cfg, log, rateLimiter, expenseHandler, entityHandler, associationHandler)

	// Initialize and start scheduler for the entity cache warm job
	var scheduler *jobs.Scheduler
	if cfg.Entities.WarmCron != "" {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterEntityWarmJob(
			scheduler,
			entityService,
			log,
			cfg.Entities.WarmCron,
			cfg.CRM.RequestTimeoutDuration()*3,
			true, // warm once at startup
		); err != nil {
			log.Error("Failed to register entity warm job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with entity warm job",
				zap.String("cron_expr", cfg.Entities.WarmCron),
			)
		}
	} else {
		log.Info("Entity warm job disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
