package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ProjectID         string
	Port              string
	AlertWebhookURL   string
	SourcesConfigPath string

	ExtractionInterval time.Duration
	MonitorInterval    time.Duration

	RetryAttempts int
	RetryBackoff  time.Duration

	MaxStoredItems int

	GenAIAPIKey  string
	GenAIModel   string
	GenAIEnabled bool
}

func Load() (*Config, error) {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT environment variable is required but not set")
	}

	alertWebhookURL := os.Getenv("ALERT_WEBHOOK_URL")
	if alertWebhookURL == "" {
		slog.Warn("ALERT_WEBHOOK_URL not set, alert notifications will be skipped")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		slog.Info("Defaulting to port", "port", port)
	}

	sourcesConfigPath := os.Getenv("SOURCES_CONFIG_PATH")
	if sourcesConfigPath == "" {
		sourcesConfigPath = "config/sources.yaml"
	}

	extractionInterval, err := durationEnv("EXTRACTION_INTERVAL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	monitorInterval, err := durationEnv("MONITOR_INTERVAL", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	retryAttempts := 3
	if v := os.Getenv("RETRY_ATTEMPTS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RETRY_ATTEMPTS %q: %w", v, err)
		}
		retryAttempts = parsed
	}

	retryBackoff, err := durationEnv("RETRY_BACKOFF", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	maxStoredItems := 10000
	if v := os.Getenv("MAX_STORED_ITEMS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_STORED_ITEMS %q: %w", v, err)
		}
		maxStoredItems = parsed
	}

	genAIAPIKey := os.Getenv("GEMINI_API_KEY")
	if genAIAPIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, content generation will be skipped")
	}

	genAIModel := os.Getenv("GEMINI_MODEL")
	if genAIModel == "" {
		genAIModel = "gemini-2.0-flash"
	}

	return &Config{
		ProjectID:          projectID,
		Port:               port,
		AlertWebhookURL:    alertWebhookURL,
		SourcesConfigPath:  sourcesConfigPath,
		ExtractionInterval: extractionInterval,
		MonitorInterval:    monitorInterval,
		RetryAttempts:      retryAttempts,
		RetryBackoff:       retryBackoff,
		MaxStoredItems:     maxStoredItems,
		GenAIAPIKey:        genAIAPIKey,
		GenAIModel:         genAIModel,
		GenAIEnabled:       genAIAPIKey != "",
	}, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
