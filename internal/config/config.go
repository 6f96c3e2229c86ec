package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Strava API configuration
	StravaClientID     string
	StravaClientSecret string
	StravaRefreshToken string

	// Notion API configuration
	NotionToken          string
	NotionActivitiesDBID string
	NotionPlannedDBID    string

	// Sync configuration
	SyncWindowDays int

	// Metrics configuration
	MetricsPushURL string

	// Logging configuration
	LogLevel string
}

// Load reads configuration from environment variables
// It fails fast if required variables are missing
func Load() (*Config, error) {
	cfg := &Config{
		// Optional values with defaults
		SyncWindowDays: getEnvInt("SYNC_WINDOW_DAYS", 7),
		MetricsPushURL: getEnv("METRICS_PUSH_URL", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	// Required values
	var missingVars []string

	cfg.StravaClientID = os.Getenv("STRAVA_CLIENT_ID")
	if cfg.StravaClientID == "" {
		missingVars = append(missingVars, "STRAVA_CLIENT_ID")
	}

	cfg.StravaClientSecret = os.Getenv("STRAVA_CLIENT_SECRET")
	if cfg.StravaClientSecret == "" {
		missingVars = append(missingVars, "STRAVA_CLIENT_SECRET")
	}

	cfg.StravaRefreshToken = os.Getenv("STRAVA_REFRESH_TOKEN")
	if cfg.StravaRefreshToken == "" {
		missingVars = append(missingVars, "STRAVA_REFRESH_TOKEN")
	}

	cfg.NotionToken = os.Getenv("NOTION_TOKEN")
	if cfg.NotionToken == "" {
		missingVars = append(missingVars, "NOTION_TOKEN")
	}

	cfg.NotionActivitiesDBID = os.Getenv("NOTION_ACTIVITIES_DB_ID")
	if cfg.NotionActivitiesDBID == "" {
		missingVars = append(missingVars, "NOTION_ACTIVITIES_DB_ID")
	}

	cfg.NotionPlannedDBID = os.Getenv("NOTION_PLANNED_DB_ID")
	if cfg.NotionPlannedDBID == "" {
		missingVars = append(missingVars, "NOTION_PLANNED_DB_ID")
	}

	if len(missingVars) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	if cfg.SyncWindowDays < 1 {
		return nil, fmt.Errorf("SYNC_WINDOW_DAYS must be at least 1, got %d", cfg.SyncWindowDays)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
