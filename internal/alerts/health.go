package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/Mwapsam/ubungo-iq/internal/models"
)

const staleDataCutoff = 48 * time.Hour

// failingSourceThreshold is the consecutive-failure count at which a source
// is reported, independent of the scheduler's own health gating.
const failingSourceThreshold = 3

// SourceLister reads the configured marketplaces for health evaluation.
type SourceLister interface {
	ListSources(ctx context.Context) ([]models.Source, error)
}

// CheckSourceHealth reports pipeline problems: sources that keep failing and
// sources whose data has gone stale. Disabled sources are ignored, as are
// sources that have never scraped (nothing can be stale before a first run).
func CheckSourceHealth(ctx context.Context, sources SourceLister, now time.Time) ([]models.MarketAlert, error) {
	all, err := sources.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	failing := 0
	stale := 0
	for i := range all {
		src := &all[i]
		if !src.Enabled {
			continue
		}
		if src.ConsecutiveFailures >= failingSourceThreshold {
			failing++
		}
		if !src.LastScraped.IsZero() && src.LastScraped.Before(now.Add(-staleDataCutoff)) {
			stale++
		}
	}

	var alerts []models.MarketAlert
	if failing > 0 {
		alerts = append(alerts, models.MarketAlert{
			Type:           models.AlertScrapingFailure,
			Level:          models.LevelHigh,
			Title:          "Scraping Failures Detected",
			Message:        fmt.Sprintf("%d sources have 3+ consecutive failures", failing),
			CreatedAt:      now,
			ActionRequired: "Check scraping logs and fix configuration issues",
		})
	}
	if stale > 0 {
		alerts = append(alerts, models.MarketAlert{
			Type:           models.AlertStaleData,
			Level:          models.LevelMedium,
			Title:          "Stale Data Sources",
			Message:        fmt.Sprintf("%d sources haven't scraped in 48+ hours", stale),
			CreatedAt:      now,
			ActionRequired: "Review scraping schedules and source availability",
		})
	}
	return alerts, nil
}

// MonitorResult summarizes one monitoring pass for callers and logs.
type MonitorResult struct {
	Alerts          []models.MarketAlert `json:"-"`
	AlertsGenerated int                  `json:"alerts_generated"`
	CriticalAlerts  int                  `json:"critical_alerts"`
	HighAlerts      int                  `json:"high_alerts"`
}

// Summarize builds the result counts for one batch of alerts.
func Summarize(alerts []models.MarketAlert) MonitorResult {
	result := MonitorResult{Alerts: alerts, AlertsGenerated: len(alerts)}
	for i := range alerts {
		switch alerts[i].Level {
		case models.LevelCritical:
			result.CriticalAlerts++
		case models.LevelHigh:
			result.HighAlerts++
		}
	}
	return result
}

// Urgent filters a batch down to the levels worth notifying about.
func Urgent(alerts []models.MarketAlert) []models.MarketAlert {
	var out []models.MarketAlert
	for i := range alerts {
		if alerts[i].Level == models.LevelCritical || alerts[i].Level == models.LevelHigh {
			out = append(out, alerts[i])
		}
	}
	return out
}
