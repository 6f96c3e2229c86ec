package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"strava-notion-sync/internal/config"
	"strava-notion-sync/internal/metrics"
	"strava-notion-sync/internal/notion"
	"strava-notion-sync/internal/strava"
	"strava-notion-sync/internal/sync"
)

func main() {
	// Load .env for local runs; absence is fine in deployment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Set up logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting strava-notion-sync",
		"window_days", cfg.SyncWindowDays,
		"log_level", cfg.LogLevel)

	stravaClient := strava.NewClient(cfg)
	notionClient := notion.NewClient(cfg)
	syncer := sync.New(stravaClient, notionClient, cfg)

	runErr := syncer.Run(context.Background())

	if cfg.MetricsPushURL != "" {
		if err := metrics.Push(cfg.MetricsPushURL, "strava_notion_sync"); err != nil {
			logger.Error("Failed to push metrics", "error", err)
		}
	}

	if runErr != nil {
		logger.Error("Sync run failed", "error", runErr)
		os.Exit(1)
	}

	logger.Info("Sync run finished")
}
