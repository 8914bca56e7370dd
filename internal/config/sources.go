package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Mwapsam/ubungo-iq/internal/models"
)

type sourcesFile struct {
	Sources []models.Source `yaml:"sources"`
}

// defaultSources seed the pipeline when no sources file is present, so a
// fresh deployment starts monitoring without any manual setup.
func defaultSources() []models.Source {
	return []models.Source{
		{
			Name:                 "Alibaba",
			Website:              models.WebsiteAlibaba,
			BaseURL:              "https://www.alibaba.com",
			Enabled:              true,
			ScrapeFrequencyHours: 24,
			MaxItemsPerScrape:    50,
			RequestDelaySeconds:  2,
		},
		{
			Name:                 "Global Trade",
			Website:              models.WebsiteGlobalTrade,
			BaseURL:              "https://www.globaltrade.net",
			Enabled:              true,
			ScrapeFrequencyHours: 24,
			MaxItemsPerScrape:    50,
			RequestDelaySeconds:  2,
		},
		{
			Name:                 "Etsy",
			Website:              models.WebsiteEtsy,
			BaseURL:              "https://www.etsy.com",
			Enabled:              true,
			ScrapeFrequencyHours: 24,
			MaxItemsPerScrape:    50,
			RequestDelaySeconds:  2,
		},
	}
}

// LoadSources reads the marketplace definitions from the YAML file at path.
// A missing file falls back to the built-in defaults; a malformed file is an
// error so a bad edit never silently disables monitoring.
func LoadSources(path string) ([]models.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("Sources file not found, using built-in defaults", "path", path)
			return defaultSources(), nil
		}
		return nil, fmt.Errorf("reading sources file %s: %w", path, err)
	}

	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing sources file %s: %w", path, err)
	}
	if len(f.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s defines no sources", path)
	}

	seen := make(map[string]bool, len(f.Sources))
	for i := range f.Sources {
		s := &f.Sources[i]
		if s.Website == "" {
			return nil, fmt.Errorf("source %q has no website", s.Name)
		}
		if seen[s.Website] {
			return nil, fmt.Errorf("duplicate source website %q", s.Website)
		}
		seen[s.Website] = true

		if s.ScrapeFrequencyHours <= 0 {
			s.ScrapeFrequencyHours = 24
		}
		if s.MaxItemsPerScrape <= 0 {
			s.MaxItemsPerScrape = 50
		}
		if s.RequestDelaySeconds <= 0 {
			s.RequestDelaySeconds = 2
		}
	}

	return f.Sources, nil
}
