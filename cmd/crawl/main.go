package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rivalscope/rivalscope/internal/config"
	"github.com/rivalscope/rivalscope/internal/events"
	"github.com/rivalscope/rivalscope/internal/observability"
	"github.com/rivalscope/rivalscope/internal/repository/postgres"
	"github.com/rivalscope/rivalscope/internal/services/crawler"
	"github.com/rivalscope/rivalscope/internal/storage"
)

// One-shot crawl: enqueue a job for a competitor and run it in-process.
// Useful for local runs without the worker.
func main() {
	competitorFlag := flag.String("competitor", "", "Competitor ID to crawl (required)")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall crawl timeout")
	headless := flag.Bool("headless", true, "Run browser in headless mode")
	flag.Parse()

	godotenv.Load()

	if *competitorFlag == "" {
		fmt.Fprintln(os.Stderr, "-competitor is required")
		flag.Usage()
		os.Exit(1)
	}
	competitorID, err := uuid.Parse(*competitorFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid competitor id: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Crawler.Headless = *headless

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.New(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	var publisher crawler.EventPublisher
	redisPublisher, err := events.NewRedisPublisher(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, event publishing disabled", zap.Error(err))
		publisher = events.NopPublisher{}
	} else {
		defer redisPublisher.Close()
		publisher = redisPublisher
	}

	screenshots, err := storage.NewMinIOClient(cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to create storage client", zap.Error(err))
	}
	if err := screenshots.EnsureBucket(context.Background()); err != nil {
		logger.Warn("Failed to ensure screenshot bucket", zap.Error(err))
	}

	repos := postgres.NewRepositories(db)
	metrics := observability.NewMetrics(cfg.App.Name)

	trigger := crawler.NewTrigger(repos.Competitors, repos.CrawlJobs, cfg.Crawler.StaleJobAge, logger)
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

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	jobID, err := trigger.Enqueue(ctx, competitorID)
	if err != nil {
		logger.Fatal("Failed to enqueue crawl job", zap.Error(err))
	}
	fmt.Printf("Crawl job %s enqueued\n", jobID)

	if err := runner.RunCrawl(ctx, jobID); err != nil {
		logger.Fatal("Crawl failed", zap.Error(err))
	}

	job, err := repos.CrawlJobs.GetByID(ctx, jobID)
	if err != nil {
		logger.Fatal("Failed to load finished job", zap.Error(err))
	}
	fmt.Println("---")
	fmt.Printf("Status:         %s\n", job.Status)
	fmt.Printf("Pages crawled:  %d\n", job.PagesCrawled)
	fmt.Printf("Changes found:  %d\n", job.ChangesFound)
	for _, e := range job.Errors {
		fmt.Printf("Error:          %s\n", e)
	}
}
