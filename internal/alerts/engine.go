package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Mwapsam/ubungo-iq/internal/analysis"
	"github.com/Mwapsam/ubungo-iq/internal/models"
)

// Detection thresholds. Price and supply changes are percentages, demand is
// the minimum view growth percentage, quality is an absolute rating floor,
// verification is a rate floor.
const (
	priceChangeThreshold  = 15.0
	supplyChangeThreshold = 25.0
	demandSpikeThreshold  = 200.0
	qualityRatingFloor    = 3.5
	verificationRateFloor = 60.0
)

// comparisonWindow is the span of each of the two periods being compared:
// current covers the trailing week, previous the week before that.
const comparisonWindow = 7 * 24 * time.Hour

// ItemLister reads listings inside an observation window, across every
// marketplace.
type ItemLister interface {
	ListAllItemsBetween(ctx context.Context, start, end time.Time) ([]models.ScrapedItem, error)
}

// ReportSource produces the market-intelligence report the trend detector
// reads. *analysis.Analyzer satisfies it.
type ReportSource interface {
	GenerateReport(ctx context.Context) (*analysis.Report, error)
}

// Engine compares the trailing week of listings against the week before and
// emits alerts for significant movements in price, supply, demand, quality,
// and verification, plus standout categories from the full report.
type Engine struct {
	items   ItemLister
	reports ReportSource
	logger  *slog.Logger
	now     func() time.Time
}

func NewEngine(items ItemLister, reports ReportSource, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{items: items, reports: reports, logger: logger, now: time.Now}
}

// MonitorMarketChanges runs every detector over the two comparison windows.
// The returned alerts are ordered by level rank then urgency, both
// descending. Individual detectors that need no previous-window data still
// run when the previous window is empty; comparison detectors simply find
// nothing to compare.
func (e *Engine) MonitorMarketChanges(ctx context.Context) ([]models.MarketAlert, error) {
	now := e.now()
	current, err := e.items.ListAllItemsBetween(ctx, now.Add(-comparisonWindow), now)
	if err != nil {
		return nil, fmt.Errorf("failed to list current window: %w", err)
	}
	previous, err := e.items.ListAllItemsBetween(ctx, now.Add(-2*comparisonWindow), now.Add(-comparisonWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to list previous window: %w", err)
	}

	var alerts []models.MarketAlert
	alerts = append(alerts, detectPriceChanges(current, previous, now)...)
	alerts = append(alerts, detectSupplyChanges(current, previous, now)...)
	alerts = append(alerts, detectDemandChanges(current, previous, now)...)
	alerts = append(alerts, detectQualityChanges(current, previous, now)...)
	alerts = append(alerts, detectVerificationChanges(current, previous, now)...)
	alerts = append(alerts, e.detectMarketTrends(ctx, now)...)

	sort.SliceStable(alerts, func(i, j int) bool {
		if ri, rj := alerts[i].Level.SortRank(), alerts[j].Level.SortRank(); ri != rj {
			return ri > rj
		}
		return alerts[i].UrgencyScore > alerts[j].UrgencyScore
	})

	e.logger.Info("market monitoring complete",
		"alerts", len(alerts),
		"current_items", len(current),
		"previous_items", len(previous))
	return alerts, nil
}

var alertTitleCaser = cases.Title(language.English)

func prettyCategory(category string) string {
	return alertTitleCaser.String(strings.ReplaceAll(category, "-", " "))
}

func categoryOf(item *models.ScrapedItem) string {
	if item.Category == "" {
		return "uncategorized"
	}
	return item.Category
}

func categoryAveragePrices(items []models.ScrapedItem) (map[string]float64, map[string]int) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range items {
		item := &items[i]
		price := item.CurrentPriceValue()
		if price <= 0 {
			continue
		}
		cat := categoryOf(item)
		sums[cat] += price
		counts[cat]++
	}
	averages := make(map[string]float64, len(sums))
	for cat, sum := range sums {
		averages[cat] = sum / float64(counts[cat])
	}
	return averages, counts
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func detectPriceChanges(current, previous []models.ScrapedItem, now time.Time) []models.MarketAlert {
	currentAvg, currentCounts := categoryAveragePrices(current)
	previousAvg, _ := categoryAveragePrices(previous)

	var alerts []models.MarketAlert
	for _, category := range sortedKeys(currentAvg) {
		prevPrice, ok := previousAvg[category]
		if !ok || prevPrice == 0 {
			continue
		}
		curPrice := currentAvg[category]
		change := (curPrice - prevPrice) / prevPrice * 100
		if change < priceChangeThreshold && change > -priceChangeThreshold {
			continue
		}

		alert := models.MarketAlert{
			AffectedProducts: currentCounts[category],
			CreatedAt:        now,
			UrgencyScore:     int(abs(change)),
			DataPoints: map[string]any{
				"category":       category,
				"current_price":  curPrice,
				"previous_price": prevPrice,
				"change_percent": change,
			},
		}
		if change > 0 {
			alert.Type = models.AlertPriceSurge
			alert.Level = models.LevelMedium
			if change > 25 {
				alert.Level = models.LevelHigh
			}
			alert.Title = fmt.Sprintf("Price Surge Alert: %s", prettyCategory(category))
			alert.Message = fmt.Sprintf("Average prices increased %.1f%% (%d products)", change, currentCounts[category])
			alert.ActionRequired = "Consider accelerating purchases before prices rise further"
		} else {
			alert.Type = models.AlertPriceDrop
			alert.Level = models.LevelMedium
			alert.Title = fmt.Sprintf("Price Drop Opportunity: %s", prettyCategory(category))
			alert.Message = fmt.Sprintf("Average prices decreased %.1f%% (%d products)", abs(change), currentCounts[category])
			alert.ActionRequired = "Opportunity to negotiate better prices or increase order volume"
		}
		alerts = append(alerts, alert)
	}
	return alerts
}

func supplierCountsByCountry(items []models.ScrapedItem) map[string]int {
	seen := make(map[string]map[string]struct{})
	for i := range items {
		item := &items[i]
		country := item.SupplierCountryValue()
		if country == "" || item.SupplierName == "" {
			continue
		}
		if seen[country] == nil {
			seen[country] = make(map[string]struct{})
		}
		seen[country][item.SupplierName] = struct{}{}
	}
	counts := make(map[string]int, len(seen))
	for country, suppliers := range seen {
		counts[country] = len(suppliers)
	}
	return counts
}

func detectSupplyChanges(current, previous []models.ScrapedItem, now time.Time) []models.MarketAlert {
	currentCounts := supplierCountsByCountry(current)
	previousCounts := supplierCountsByCountry(previous)

	var alerts []models.MarketAlert
	for _, country := range sortedKeys(currentCounts) {
		prevCount, ok := previousCounts[country]
		if !ok || prevCount == 0 {
			continue
		}
		curCount := currentCounts[country]
		change := float64(curCount-prevCount) / float64(prevCount) * 100
		if change >= -supplyChangeThreshold {
			continue
		}

		alerts = append(alerts, models.MarketAlert{
			Type:             models.AlertSupplyShortage,
			Level:            models.LevelHigh,
			Title:            fmt.Sprintf("Supply Shortage Alert: %s", country),
			Message:          fmt.Sprintf("Supplier count dropped %.1f%% in %s", abs(change), country),
			AffectedProducts: curCount,
			CreatedAt:        now,
			ActionRequired:   "Diversify supplier base or secure backup suppliers",
			UrgencyScore:     80,
			DataPoints: map[string]any{
				"country":        country,
				"current_count":  curCount,
				"previous_count": prevCount,
				"change_percent": change,
			},
		})
	}
	return alerts
}

func detectDemandChanges(current, previous []models.ScrapedItem, now time.Time) []models.MarketAlert {
	previousViews := make(map[string]int, len(previous))
	for i := range previous {
		item := &previous[i]
		previousViews[item.SourceWebsite+"|"+item.ExternalID] = item.Views
	}

	type spike struct {
		title    string
		increase float64
	}
	spikesByCategory := make(map[string][]spike)
	for i := range current {
		item := &current[i]
		if item.Views <= 100 {
			continue
		}
		prevViews, ok := previousViews[item.SourceWebsite+"|"+item.ExternalID]
		if !ok || prevViews <= 0 {
			continue
		}
		increase := float64(item.Views-prevViews) / float64(prevViews) * 100
		if increase < demandSpikeThreshold {
			continue
		}
		cat := categoryOf(item)
		spikesByCategory[cat] = append(spikesByCategory[cat], spike{title: item.Title, increase: increase})
	}

	var alerts []models.MarketAlert
	for _, category := range sortedKeys(spikesByCategory) {
		spikes := spikesByCategory[category]
		if len(spikes) < 3 {
			continue
		}
		var total float64
		titles := make([]string, 0, 3)
		for _, s := range spikes {
			total += s.increase
			if len(titles) < 3 {
				titles = append(titles, s.title)
			}
		}
		avg := total / float64(len(spikes))

		alerts = append(alerts, models.MarketAlert{
			Type:             models.AlertDemandSpike,
			Level:            models.LevelMedium,
			Title:            fmt.Sprintf("Demand Spike: %s", prettyCategory(category)),
			Message:          fmt.Sprintf("Average %.0f%% increase in views for %d products", avg, len(spikes)),
			AffectedProducts: len(spikes),
			CreatedAt:        now,
			ActionRequired:   "Monitor inventory levels and consider increasing stock",
			UrgencyScore:     int(avg / 10),
			DataPoints: map[string]any{
				"category":         category,
				"average_increase": avg,
				"top_products":     titles,
			},
		})
	}
	return alerts
}

func ratingsByCountry(items []models.ScrapedItem) (map[string]float64, map[string]int) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range items {
		item := &items[i]
		country := item.SupplierCountryValue()
		rating := item.RatingValue()
		if country == "" || rating <= 0 {
			continue
		}
		sums[country] += rating
		counts[country]++
	}
	averages := make(map[string]float64, len(sums))
	for country, sum := range sums {
		averages[country] = sum / float64(counts[country])
	}
	return averages, counts
}

func detectQualityChanges(current, previous []models.ScrapedItem, now time.Time) []models.MarketAlert {
	currentAvg, currentCounts := ratingsByCountry(current)
	previousAvg, _ := ratingsByCountry(previous)

	var alerts []models.MarketAlert
	for _, country := range sortedKeys(currentAvg) {
		prevRating, ok := previousAvg[country]
		if !ok {
			continue
		}
		curRating := currentAvg[country]
		drop := prevRating - curRating
		if curRating >= qualityRatingFloor || drop < 0.3 {
			continue
		}

		alerts = append(alerts, models.MarketAlert{
			Type:             models.AlertQualityIssue,
			Level:            models.LevelHigh,
			Title:            fmt.Sprintf("Quality Alert: %s Suppliers", country),
			Message:          fmt.Sprintf("Average rating dropped %.1f points to %.1f", drop, curRating),
			AffectedProducts: currentCounts[country],
			CreatedAt:        now,
			ActionRequired:   "Review supplier quality and consider additional verification",
			UrgencyScore:     int(drop * 20),
			DataPoints: map[string]any{
				"country":         country,
				"current_rating":  curRating,
				"previous_rating": prevRating,
				"rating_drop":     drop,
			},
		})
	}
	return alerts
}

func verificationRate(items []models.ScrapedItem) (rate float64, total, verified int) {
	total = len(items)
	if total == 0 {
		return 0, 0, 0
	}
	for i := range items {
		if items[i].VerificationValue() == "Verified" {
			verified++
		}
	}
	return float64(verified) / float64(total) * 100, total, verified
}

func detectVerificationChanges(current, previous []models.ScrapedItem, now time.Time) []models.MarketAlert {
	curRate, curTotal, curVerified := verificationRate(current)
	prevRate, prevTotal, _ := verificationRate(previous)
	if curTotal == 0 || prevTotal == 0 {
		return nil
	}

	drop := prevRate - curRate
	if curRate >= verificationRateFloor || curRate >= prevRate || drop < 5.0 {
		return nil
	}

	return []models.MarketAlert{{
		Type:             models.AlertVerificationChange,
		Level:            models.LevelMedium,
		Title:            "Supplier Verification Rate Decline",
		Message:          fmt.Sprintf("Verified suppliers dropped %.1f%% to %.1f%%", drop, curRate),
		AffectedProducts: curTotal - curVerified,
		CreatedAt:        now,
		ActionRequired:   "Review supplier verification processes and requirements",
		UrgencyScore:     int(drop * 2),
		DataPoints: map[string]any{
			"current_rate":  curRate,
			"previous_rate": prevRate,
			"rate_drop":     drop,
		},
	}}
}

// detectMarketTrends reads the full report for standout categories. Report
// failures are logged and swallowed so a broken analyzer never blocks the
// comparison detectors.
func (e *Engine) detectMarketTrends(ctx context.Context, now time.Time) []models.MarketAlert {
	if e.reports == nil {
		return nil
	}
	report, err := e.reports.GenerateReport(ctx)
	if err != nil {
		e.logger.Warn("trend detection skipped, report generation failed", "error", err)
		return nil
	}

	top := report.Trends.TopPerformingCategories
	if len(top) == 0 || top[0].Average <= 1000 {
		return nil
	}
	return []models.MarketAlert{{
		Type:           models.AlertMarketTrend,
		Level:          models.LevelLow,
		Title:          fmt.Sprintf("Trending Category: %s", prettyCategory(top[0].Category)),
		Message:        fmt.Sprintf("Strong performance with %.0f average views", top[0].Average),
		CreatedAt:      now,
		ActionRequired: "Consider expanding inventory in this trending category",
		UrgencyScore:   30,
		DataPoints: map[string]any{
			"category":      top[0].Category,
			"average_views": top[0].Average,
		},
	}}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
