package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rivalscope/rivalscope/internal/api"
	"github.com/rivalscope/rivalscope/internal/config"
	"github.com/rivalscope/rivalscope/internal/observability"
	"github.com/rivalscope/rivalscope/internal/repository/postgres"
	"github.com/rivalscope/rivalscope/internal/services/crawler"
	"github.com/rivalscope/rivalscope/internal/services/intel"
	"github.com/rivalscope/rivalscope/internal/services/profile"
	"github.com/rivalscope/rivalscope/internal/services/seo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(string(cfg.Env), cfg.GetLogLevel())
	defer logger.Sync()

	logger.Info("Starting RivalScope API",
		zap.String("version", cfg.App.Version),
		zap.String("environment", string(cfg.Env)),
	)

	// Connect to PostgreSQL
	db, err := postgres.New(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
	)

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Initialize metrics
	metrics := observability.NewMetrics(cfg.App.Name)

	// Build services
	builder := intel.NewBuilder(repos.Snapshots, repos.Changes, cfg.Crawler.ChangeWindow)
	intelSvc := intel.NewService(builder, repos.Insights, logger)
	profileSvc := profile.NewService(builder, repos.Competitors, repos.Insights, logger)
	seoSvc := seo.NewService(repos.Snapshots, repos.Changes, repos.SEOSnapshots, cfg.Crawler.ChangeWindow, logger)
	trigger := crawler.NewTrigger(repos.Competitors, repos.CrawlJobs, cfg.Crawler.StaleJobAge, logger)

	// Create router
	router := api.NewRouter(api.RouterConfig{
		DB:         db,
		Repos:      repos,
		Trigger:    trigger,
		Intel:      intelSvc,
		Profiles:   profileSvc,
		SEO:        seoSvc,
		Metrics:    metrics,
		Logger:     logger,
		EnableCORS: cfg.Server.EnableCORS,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening", zap.String("addr", cfg.Server.Addr()))
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatal("Server error", zap.Error(err))

	case sig := <-shutdown:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed, forcing close", zap.Error(err))
			server.Close()
		}

		logger.Info("Server stopped gracefully")
	}
}

// initLogger creates a configured zap logger
func initLogger(env, level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build()
	if err != nil {
		// Fall back to basic logger
		logger, _ = zap.NewProduction()
	}

	return logger
}
