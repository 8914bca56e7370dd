package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mwapsam/ubungo-iq/internal/models"
)

func TestLoad(t *testing.T) {
	// Set test environment variables (auto-cleaned up after test)
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
	t.Setenv("ALERT_WEBHOOK_URL", "https://test.webhook")
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.ProjectID != "test-project" {
		t.Errorf("Expected test-project, got %s", cfg.ProjectID)
	}
	if cfg.AlertWebhookURL != "https://test.webhook" {
		t.Errorf("Expected https://test.webhook, got %s", cfg.AlertWebhookURL)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected 9090, got %s", cfg.Port)
	}
	if cfg.ExtractionInterval != 24*time.Hour {
		t.Errorf("Expected default 24h, got %s", cfg.ExtractionInterval)
	}
	if cfg.MonitorInterval != 30*time.Minute {
		t.Errorf("Expected default 30m, got %s", cfg.MonitorInterval)
	}
	if cfg.RetryAttempts != 3 {
		t.Errorf("Expected default RetryAttempts 3, got %d", cfg.RetryAttempts)
	}
	if cfg.RetryBackoff != 10*time.Minute {
		t.Errorf("Expected default RetryBackoff 10m, got %s", cfg.RetryBackoff)
	}
	if cfg.MaxStoredItems != 10000 {
		t.Errorf("Expected default MaxStoredItems 10000, got %d", cfg.MaxStoredItems)
	}
	if !cfg.GenAIEnabled {
		t.Error("Expected GenAIEnabled when GEMINI_API_KEY is set")
	}
}

func TestLoad_MissingProjectID(t *testing.T) {
	// Do NOT set GOOGLE_CLOUD_PROJECT
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")

	_, err := Load()
	if err == nil {
		t.Error("Load() should return an error when GOOGLE_CLOUD_PROJECT is not set")
	}
}

func TestLoad_CustomIntervals(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
	t.Setenv("EXTRACTION_INTERVAL", "30m")
	t.Setenv("MONITOR_INTERVAL", "2h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.ExtractionInterval != 30*time.Minute {
		t.Errorf("Expected 30m, got %s", cfg.ExtractionInterval)
	}
	if cfg.MonitorInterval != 2*time.Hour {
		t.Errorf("Expected 2h, got %s", cfg.MonitorInterval)
	}
}

func TestLoad_InvalidInterval(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
	t.Setenv("EXTRACTION_INTERVAL", "not-a-duration")

	_, err := Load()
	if err == nil {
		t.Error("Load() should return error for invalid EXTRACTION_INTERVAL")
	}
}

func TestLoad_GenAIDisabledWithoutKey(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.GenAIEnabled {
		t.Error("Expected GenAIEnabled false without GEMINI_API_KEY")
	}
	if cfg.GenAIModel != "gemini-2.0-flash" {
		t.Errorf("Expected default model, got %s", cfg.GenAIModel)
	}
}

func TestLoadSources_FileMissing(t *testing.T) {
	sources, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadSources() returned unexpected error: %v", err)
	}
	if len(sources) != 3 {
		t.Fatalf("Expected 3 default sources, got %d", len(sources))
	}
	websites := map[string]bool{}
	for _, s := range sources {
		websites[s.Website] = true
		if !s.Enabled {
			t.Errorf("default source %s should be enabled", s.Website)
		}
	}
	for _, w := range []string{models.WebsiteAlibaba, models.WebsiteGlobalTrade, models.WebsiteEtsy} {
		if !websites[w] {
			t.Errorf("default sources missing %s", w)
		}
	}
}

func TestLoadSources_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	content := `sources:
  - name: Alibaba
    website: alibaba
    base_url: https://www.alibaba.com
    enabled: true
    scrape_frequency_hours: 12
  - name: Etsy
    website: etsy
    base_url: https://www.etsy.com
    enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	sources, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources() returned unexpected error: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(sources))
	}
	if sources[0].ScrapeFrequencyHours != 12 {
		t.Errorf("Expected configured frequency 12, got %d", sources[0].ScrapeFrequencyHours)
	}
	if sources[1].ScrapeFrequencyHours != 24 {
		t.Errorf("Expected defaulted frequency 24, got %d", sources[1].ScrapeFrequencyHours)
	}
	if sources[1].MaxItemsPerScrape != 50 {
		t.Errorf("Expected defaulted max items 50, got %d", sources[1].MaxItemsPerScrape)
	}
	if sources[1].Enabled {
		t.Error("Expected etsy disabled")
	}
}

func TestLoadSources_DuplicateWebsite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	content := `sources:
  - name: One
    website: alibaba
    base_url: https://www.alibaba.com
  - name: Two
    website: alibaba
    base_url: https://www.alibaba.com
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSources(path); err == nil {
		t.Error("LoadSources() should reject duplicate websites")
	}
}
