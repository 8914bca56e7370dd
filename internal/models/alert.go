package models

import "time"

// AlertLevel classifies alert severity.
type AlertLevel string

const (
	LevelLow      AlertLevel = "low"
	LevelMedium   AlertLevel = "medium"
	LevelHigh     AlertLevel = "high"
	LevelCritical AlertLevel = "critical"
)

// SortRank orders levels for the final alert list. The ordering reproduces
// the historical sort, which compared the level strings lexically, so
// "medium" outranks "high" and "critical" in the returned list. Downstream
// consumers (notification grouping, counts) key on the level itself, not on
// this rank. See Severity for the strength ordering.
func (l AlertLevel) SortRank() int {
	switch l {
	case LevelMedium:
		return 3
	case LevelLow:
		return 2
	case LevelHigh:
		return 1
	case LevelCritical:
		return 0
	default:
		return -1
	}
}

// Severity orders levels by actual urgency, critical highest.
func (l AlertLevel) Severity() int {
	switch l {
	case LevelCritical:
		return 4
	case LevelHigh:
		return 3
	case LevelMedium:
		return 2
	case LevelLow:
		return 1
	default:
		return 0
	}
}

// AlertType enumerates detectable market-change signals.
type AlertType string

const (
	AlertPriceSurge     AlertType = "price_surge"
	AlertPriceDrop      AlertType = "price_drop"
	AlertSupplyShortage AlertType = "supply_shortage"
	// AlertNewSupplier is reserved: no detector emits it yet, but the value
	// is part of the wire vocabulary consumed by dashboards.
	AlertNewSupplier        AlertType = "new_supplier"
	AlertVerificationChange AlertType = "verification_change"
	AlertDemandSpike        AlertType = "demand_spike"
	AlertQualityIssue       AlertType = "quality_issue"
	AlertMarketTrend        AlertType = "market_trend"

	// Pipeline health, not market signals.
	AlertScrapingFailure AlertType = "scraping_failure"
	AlertStaleData       AlertType = "stale_data"
)

// MarketAlert is a classified market-change notification. Alerts are derived
// values: the engine returns them and callers decide whether to cache,
// persist, or dispatch.
type MarketAlert struct {
	Type             AlertType      `json:"type"`
	Level            AlertLevel     `json:"level"`
	Title            string         `json:"title"`
	Message          string         `json:"message"`
	AffectedProducts int            `json:"affected_products"`
	DataPoints       map[string]any `json:"data_points,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	ActionRequired   string         `json:"action_required"`
	UrgencyScore     int            `json:"urgency_score"`
}
