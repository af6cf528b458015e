package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rivalscope/rivalscope/internal/config"
	"github.com/rivalscope/rivalscope/internal/repository/postgres"
	"github.com/rivalscope/rivalscope/internal/services/intel"
	"github.com/rivalscope/rivalscope/internal/services/profile"
	"github.com/rivalscope/rivalscope/internal/services/seo"
)

// One-shot analyzer run: build the requested insight for a competitor
// from stored snapshots and print it as JSON.
func main() {
	competitorFlag := flag.String("competitor", "", "Competitor ID to analyze (required)")
	kind := flag.String("kind", "report", "Analysis to run: report, baseline, strategic or seo")
	output := flag.String("output", "", "Output file for JSON result (empty for stdout)")
	timeout := flag.Duration("timeout", time.Minute, "Analysis timeout")
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

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.New(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repos := postgres.NewRepositories(db)
	builder := intel.NewBuilder(repos.Snapshots, repos.Changes, cfg.Crawler.ChangeWindow)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var result any
	switch *kind {
	case "report":
		result, err = intel.NewService(builder, repos.Insights, logger).GenerateReport(ctx, competitorID)
	case "baseline":
		result, err = profile.NewService(builder, repos.Competitors, repos.Insights, logger).GenerateBaseline(ctx, competitorID)
	case "strategic":
		result, err = profile.NewService(builder, repos.Competitors, repos.Insights, logger).GenerateStrategic(ctx, competitorID)
	case "seo":
		result, err = seo.NewService(repos.Snapshots, repos.Changes, repos.SEOSnapshots, cfg.Crawler.ChangeWindow, logger).Generate(ctx, competitorID)
	default:
		fmt.Fprintf(os.Stderr, "unknown kind %q\n", *kind)
		os.Exit(1)
	}
	if err != nil {
		logger.Fatal("Analysis failed", zap.String("kind", *kind), zap.Error(err))
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatal("Failed to encode result", zap.Error(err))
	}

	if *output == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		logger.Fatal("Failed to write output file", zap.Error(err))
	}
	fmt.Printf("Result written to %s\n", *output)
}
