package trends

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/Mwapsam/ubungo-iq/internal/models"
)

const (
	trendWindow          = 7 * 24 * time.Hour
	minCategoryFrequency = 3
	topKeywordsPerGroup  = 5
	maxSampleItems       = 5
)

// ItemLister reads recently scraped listings for one website.
type ItemLister interface {
	ListItemsSince(ctx context.Context, website string, since time.Time) ([]models.ScrapedItem, error)
}

// TopicStore persists trending-topic aggregates.
type TopicStore interface {
	// GetTopic returns nil, nil when no topic has that ID.
	GetTopic(ctx context.Context, docID string) (*models.TrendingTopic, error)
	SaveTopic(ctx context.Context, topic models.TrendingTopic) error
}

// Aggregator recomputes trending topics from the trailing listing window.
type Aggregator struct {
	items  ItemLister
	topics TopicStore
	now    func() time.Time
}

func NewAggregator(items ItemLister, topics TopicStore) *Aggregator {
	return &Aggregator{items: items, topics: topics, now: time.Now}
}

type categoryTrend struct {
	frequency   int
	totalViews  int64
	totalSales  int64
	ratingSum   float64
	ratingCount int
	samples     []models.SampleItem
	keywords    map[string]int
}

// Analyze groups the website's last seven days of listings by category,
// counts title and tag keywords inside each group, and writes one topic per
// leading keyword of every group that cleared the frequency floor. Returns
// how many topics were written.
func (a *Aggregator) Analyze(ctx context.Context, website string) (int, error) {
	now := a.now()
	since := now.Add(-trendWindow)

	items, err := a.items.ListItemsSince(ctx, website, since)
	if err != nil {
		return 0, fmt.Errorf("failed to list recent items for %s: %w", website, err)
	}

	groups := make(map[string]*categoryTrend)
	for i := range items {
		item := &items[i]
		category := item.Category
		if category == "" {
			category = "uncategorized"
		}

		group, ok := groups[category]
		if !ok {
			group = &categoryTrend{keywords: make(map[string]int)}
			groups[category] = group
		}

		group.frequency++
		group.totalViews += int64(item.Views)
		group.totalSales += int64(item.Sales)
		if item.Rating > 0 {
			group.ratingSum += item.Rating
			group.ratingCount++
		}
		group.samples = append(group.samples, models.SampleItem{
			ID:    item.DocID,
			Title: item.Title,
			URL:   item.URL,
			Price: formatPrice(item.CurrentPrice, item.PriceCurrency),
		})

		for _, keyword := range ExtractKeywords(item.Title + " " + item.Tags) {
			group.keywords[keyword]++
		}
	}

	written := 0
	for category, group := range groups {
		if group.frequency < minCategoryFrequency {
			continue
		}

		for _, kw := range topKeywords(group.keywords, topKeywordsPerGroup) {
			samples := group.samples
			if len(samples) > maxSampleItems {
				samples = samples[:maxSampleItems]
			}

			var avgRating float64
			if group.ratingCount > 0 {
				avgRating = group.ratingSum / float64(group.ratingCount)
			}

			if err := a.upsertTopic(ctx, website, kw.word, category, kw.count, group, samples, avgRating, now); err != nil {
				slog.Warn("Failed to save trending topic",
					"website", website, "topic", kw.word, "category", category, "error", err)
				continue
			}
			written++
		}
	}

	slog.Info("Trend analysis completed",
		"website", website,
		"categories", len(groups),
		"topics_written", written)
	return written, nil
}

func (a *Aggregator) upsertTopic(ctx context.Context, website, keyword, category string, frequency int, group *categoryTrend, samples []models.SampleItem, avgRating float64, now time.Time) error {
	docID := models.TopicDocID(website, keyword, category)

	topic := models.TrendingTopic{
		DocID:         docID,
		SourceWebsite: website,
		Topic:         keyword,
		Category:      category,
		Frequency:     frequency,
		TotalViews:    group.totalViews,
		TotalSales:    group.totalSales,
		AverageRating: avgRating,
		SampleItems:   samples,
		FirstSeen:     now,
		LastUpdated:   now,
	}

	existing, err := a.topics.GetTopic(ctx, docID)
	if err != nil {
		return err
	}
	if existing != nil {
		topic.FirstSeen = existing.FirstSeen
		topic.ContentGenerated = existing.ContentGenerated
	}

	return a.topics.SaveTopic(ctx, topic)
}

type keywordCount struct {
	word  string
	count int
}

func topKeywords(counts map[string]int, limit int) []keywordCount {
	sorted := make([]keywordCount, 0, len(counts))
	for word, count := range counts {
		sorted = append(sorted, keywordCount{word, count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].word < sorted[j].word
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func formatPrice(amount float64, currency string) string {
	if amount == 0 {
		return ""
	}
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	if currency != "" {
		return s + " " + currency
	}
	return s
}
