package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rivalscope/rivalscope/internal/config"
	"github.com/rivalscope/rivalscope/internal/domain"
	"github.com/rivalscope/rivalscope/internal/events"
	"github.com/rivalscope/rivalscope/internal/observability"
	"github.com/rivalscope/rivalscope/internal/repository/postgres"
	"github.com/rivalscope/rivalscope/internal/services/crawler"
	"github.com/rivalscope/rivalscope/internal/storage"
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

	logger.Info("Starting RivalScope Worker",
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

	// Connect to Redis (optional, events degrade to a no-op)
	var publisher crawler.EventPublisher
	redisPublisher, err := events.NewRedisPublisher(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, event publishing disabled", zap.Error(err))
		publisher = events.NopPublisher{}
	} else {
		defer redisPublisher.Close()
		publisher = redisPublisher
		logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr()))
	}

	// Connect to MinIO for screenshot blobs
	screenshots, err := storage.NewMinIOClient(cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to create storage client", zap.Error(err))
	}
	if err := screenshots.EnsureBucket(context.Background()); err != nil {
		// Uploads will warn per page; crawls still produce snapshots.
		logger.Warn("Failed to ensure screenshot bucket", zap.Error(err))
	} else {
		logger.Info("Connected to MinIO", zap.String("endpoint", cfg.Storage.Endpoint))
	}

	repos := postgres.NewRepositories(db)
	metrics := observability.NewMetrics(cfg.App.Name)

	runner := crawler.NewRunner(
		cfg.Crawler,
		func() (crawler.PageFetcher, error) {
			return crawler.NewBrowserFetcher(cfg.Crawler, logger)
		},
		repos.Competitors,
		repos.Pages,
		repos.Snapshots,
		repos.CrawlJobs,
		repos.Changes,
		screenshots,
		publisher,
		metrics,
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	// One invocation processes at most one pending job, so external
	// scheduling (cron, queue consumer) controls the crawl cadence.
	switch err := runner.RunNextPending(ctx); {
	case err == nil:
		logger.Info("Worker finished")

	case errors.Is(err, domain.ErrNotFoundVal):
		logger.Info("No pending crawl jobs")

	default:
		logger.Fatal("Crawl job failed", zap.Error(err))
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
		logger, _ = zap.NewProduction()
	}

	return logger
}
