package models

import (
	"errors"
	"time"
)

// ErrSourceNotFound is returned when a configured source cannot be located.
var ErrSourceNotFound = errors.New("source not found")

// Known marketplace identifiers. Each maps to one extraction adapter.
const (
	WebsiteAlibaba     = "alibaba"
	WebsiteGlobalTrade = "globaltrade"
	WebsiteEtsy        = "etsy"
)

// Source is the configuration for one marketplace being monitored.
// Website is unique across sources; the scheduler mutates the status
// fields immediately before and after each extraction run.
type Source struct {
	Name    string `firestore:"name" yaml:"name" validate:"required"`
	Website string `firestore:"website" yaml:"website" validate:"required"`
	BaseURL string `firestore:"baseURL" yaml:"base_url" validate:"required,url"`

	Enabled              bool    `firestore:"enabled" yaml:"enabled"`
	ScrapeFrequencyHours int     `firestore:"scrapeFrequencyHours" yaml:"scrape_frequency_hours"`
	MaxItemsPerScrape    int     `firestore:"maxItemsPerScrape" yaml:"max_items_per_scrape"`
	RequestDelaySeconds  float64 `firestore:"requestDelaySeconds" yaml:"request_delay_seconds"`
	UserAgent            string  `firestore:"userAgent" yaml:"user_agent"`

	// ScrapingConfig holds the per-source selector rules as a JSON blob so
	// minor markup drift is a config edit, not an adapter change.
	ScrapingConfig string `firestore:"scrapingConfig,omitempty" yaml:"scraping_config"`

	LastScraped         time.Time `firestore:"lastScraped,omitempty" yaml:"-"`
	LastSuccess         time.Time `firestore:"lastSuccess,omitempty" yaml:"-"`
	ConsecutiveFailures int       `firestore:"consecutiveFailures" yaml:"-"`

	CreatedAt time.Time `firestore:"createdAt" yaml:"-"`
	UpdatedAt time.Time `firestore:"updatedAt" yaml:"-"`
}

const unhealthyFailureThreshold = 5

// IsDue reports whether the source should be scraped at now: never scraped,
// or the configured interval has elapsed since the last run.
func (s *Source) IsDue(now time.Time) bool {
	if !s.Enabled {
		return false
	}
	if s.LastScraped.IsZero() {
		return true
	}
	next := s.LastScraped.Add(time.Duration(s.ScrapeFrequencyHours) * time.Hour)
	return !now.Before(next)
}

// IsHealthy reports whether the source is below the consecutive-failure
// cutoff. Unhealthy sources are skipped by the scheduler until an operator
// intervenes or a manual run succeeds.
func (s *Source) IsHealthy() bool {
	return s.ConsecutiveFailures < unhealthyFailureThreshold
}
