package trends

import (
	"context"
	"testing"
	"time"

	"github.com/Mwapsam/ubungo-iq/internal/models"
)

type mockItemLister struct {
	items []models.ScrapedItem
}

func (m *mockItemLister) ListItemsSince(ctx context.Context, website string, since time.Time) ([]models.ScrapedItem, error) {
	var out []models.ScrapedItem
	for _, item := range m.items {
		if item.SourceWebsite == website && !item.ScrapedAt.Before(since) {
			out = append(out, item)
		}
	}
	return out, nil
}

type mockTopicStore struct {
	topics map[string]*models.TrendingTopic
}

func newMockTopicStore() *mockTopicStore {
	return &mockTopicStore{topics: make(map[string]*models.TrendingTopic)}
}

func (m *mockTopicStore) GetTopic(ctx context.Context, docID string) (*models.TrendingTopic, error) {
	topic, ok := m.topics[docID]
	if !ok {
		return nil, nil
	}
	copied := *topic
	return &copied, nil
}

func (m *mockTopicStore) SaveTopic(ctx context.Context, topic models.TrendingTopic) error {
	copied := topic
	m.topics[topic.DocID] = &copied
	return nil
}

func scrapedItem(website, id, title, category string, views int, age time.Duration) models.ScrapedItem {
	return models.ScrapedItem{
		DocID:         models.ItemDocID(website, id),
		SourceWebsite: website,
		ExternalID:    id,
		Title:         title,
		URL:           "https://example.com/" + id,
		Category:      category,
		Views:         views,
		ScrapedAt:     time.Now().Add(-age),
	}
}

func TestAnalyze_BelowFrequencyFloor(t *testing.T) {
	lister := &mockItemLister{items: []models.ScrapedItem{
		scrapedItem(models.WebsiteAlibaba, "a1", "ceramic mug", "Drinkware", 100, time.Hour),
		scrapedItem(models.WebsiteAlibaba, "a2", "ceramic bowl", "Drinkware", 100, time.Hour),
	}}
	store := newMockTopicStore()

	written, err := NewAggregator(lister, store).Analyze(context.Background(), models.WebsiteAlibaba)
	if err != nil {
		t.Fatalf("Analyze() returned unexpected error: %v", err)
	}
	if written != 0 {
		t.Errorf("written = %d, want 0 for a two-item category", written)
	}
	if len(store.topics) != 0 {
		t.Errorf("stored %d topics, want 0", len(store.topics))
	}
}

func TestAnalyze_AtFrequencyFloor(t *testing.T) {
	lister := &mockItemLister{items: []models.ScrapedItem{
		scrapedItem(models.WebsiteAlibaba, "a1", "ceramic mug", "Drinkware", 100, time.Hour),
		scrapedItem(models.WebsiteAlibaba, "a2", "ceramic bowl", "Drinkware", 200, time.Hour),
		scrapedItem(models.WebsiteAlibaba, "a3", "ceramic vase", "Drinkware", 300, time.Hour),
	}}
	store := newMockTopicStore()

	written, err := NewAggregator(lister, store).Analyze(context.Background(), models.WebsiteAlibaba)
	if err != nil {
		t.Fatalf("Analyze() returned unexpected error: %v", err)
	}
	if written == 0 {
		t.Fatal("three items in one category should produce topics")
	}

	docID := models.TopicDocID(models.WebsiteAlibaba, "ceramic", "Drinkware")
	topic := store.topics[docID]
	if topic == nil {
		t.Fatal("expected a ceramic topic for Drinkware")
	}
	if topic.Frequency != 3 {
		t.Errorf("Frequency = %d, want 3 (ceramic appears in every title)", topic.Frequency)
	}
	if topic.TotalViews != 600 {
		t.Errorf("TotalViews = %d, want 600", topic.TotalViews)
	}
	if len(topic.SampleItems) != 3 {
		t.Errorf("SampleItems = %d, want 3", len(topic.SampleItems))
	}
	if topic.FirstSeen.IsZero() || topic.LastUpdated.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestAnalyze_TopKeywordsCapped(t *testing.T) {
	lister := &mockItemLister{items: []models.ScrapedItem{
		scrapedItem(models.WebsiteAlibaba, "a1", "alpha bravo charlie delta echo foxtrot golf", "Misc", 10, time.Hour),
		scrapedItem(models.WebsiteAlibaba, "a2", "alpha bravo charlie delta echo foxtrot golf", "Misc", 10, time.Hour),
		scrapedItem(models.WebsiteAlibaba, "a3", "alpha bravo charlie delta echo foxtrot golf", "Misc", 10, time.Hour),
	}}
	store := newMockTopicStore()

	written, err := NewAggregator(lister, store).Analyze(context.Background(), models.WebsiteAlibaba)
	if err != nil {
		t.Fatalf("Analyze() returned unexpected error: %v", err)
	}
	if written != 5 {
		t.Errorf("written = %d, want 5 (seven candidate keywords, top five kept)", written)
	}
}

func TestAnalyze_UncategorizedFallback(t *testing.T) {
	lister := &mockItemLister{items: []models.ScrapedItem{
		scrapedItem(models.WebsiteAlibaba, "a1", "widget spinner", "", 10, time.Hour),
		scrapedItem(models.WebsiteAlibaba, "a2", "widget gadget", "", 10, time.Hour),
		scrapedItem(models.WebsiteAlibaba, "a3", "widget gizmo", "", 10, time.Hour),
	}}
	store := newMockTopicStore()

	if _, err := NewAggregator(lister, store).Analyze(context.Background(), models.WebsiteAlibaba); err != nil {
		t.Fatal(err)
	}

	docID := models.TopicDocID(models.WebsiteAlibaba, "widget", "uncategorized")
	if store.topics[docID] == nil {
		t.Error("items without a category should aggregate under uncategorized")
	}
}

func TestAnalyze_WindowExcludesOldItems(t *testing.T) {
	lister := &mockItemLister{items: []models.ScrapedItem{
		scrapedItem(models.WebsiteAlibaba, "a1", "ceramic mug", "Drinkware", 10, time.Hour),
		scrapedItem(models.WebsiteAlibaba, "a2", "ceramic bowl", "Drinkware", 10, time.Hour),
		scrapedItem(models.WebsiteAlibaba, "a3", "ceramic vase", "Drinkware", 10, 8*24*time.Hour),
	}}
	store := newMockTopicStore()

	written, err := NewAggregator(lister, store).Analyze(context.Background(), models.WebsiteAlibaba)
	if err != nil {
		t.Fatal(err)
	}
	if written != 0 {
		t.Errorf("written = %d, want 0: the stale item must not count toward the floor", written)
	}
}

func TestAnalyze_UpdatePreservesFirstSeenAndContentFlag(t *testing.T) {
	website := models.WebsiteAlibaba
	firstSeen := time.Now().Add(-72 * time.Hour)
	docID := models.TopicDocID(website, "ceramic", "Drinkware")

	store := newMockTopicStore()
	store.topics[docID] = &models.TrendingTopic{
		DocID:            docID,
		SourceWebsite:    website,
		Topic:            "ceramic",
		Category:         "Drinkware",
		Frequency:        2,
		TotalViews:       50,
		ContentGenerated: true,
		FirstSeen:        firstSeen,
		LastUpdated:      firstSeen,
	}

	lister := &mockItemLister{items: []models.ScrapedItem{
		scrapedItem(website, "a1", "ceramic mug", "Drinkware", 100, time.Hour),
		scrapedItem(website, "a2", "ceramic bowl", "Drinkware", 200, time.Hour),
		scrapedItem(website, "a3", "ceramic vase", "Drinkware", 300, time.Hour),
	}}

	if _, err := NewAggregator(lister, store).Analyze(context.Background(), website); err != nil {
		t.Fatal(err)
	}

	topic := store.topics[docID]
	if topic.Frequency != 3 {
		t.Errorf("Frequency = %d, want recomputed 3", topic.Frequency)
	}
	if topic.TotalViews != 600 {
		t.Errorf("TotalViews = %d, want recomputed 600 (overwritten, not accumulated)", topic.TotalViews)
	}
	if !topic.FirstSeen.Equal(firstSeen) {
		t.Error("FirstSeen must survive the refresh")
	}
	if !topic.ContentGenerated {
		t.Error("ContentGenerated must survive the refresh")
	}
	if !topic.LastUpdated.After(firstSeen) {
		t.Error("LastUpdated should advance")
	}
}

func TestTrendingScoreDecay(t *testing.T) {
	now := time.Now()
	topic := models.TrendingTopic{Frequency: 5, TotalViews: 2000, LastUpdated: now}

	approx := func(got, want float64) bool {
		diff := got - want
		return diff < 1e-9 && diff > -1e-9
	}

	if fresh := topic.TrendingScore(now); !approx(fresh, 10) {
		t.Errorf("fresh score = %v, want 10", fresh)
	}

	topic.LastUpdated = now.Add(-3 * 24 * time.Hour)
	if decayed := topic.TrendingScore(now); !approx(decayed, 7) {
		t.Errorf("three-day score = %v, want 7", decayed)
	}

	topic.LastUpdated = now.Add(-30 * 24 * time.Hour)
	if floored := topic.TrendingScore(now); !approx(floored, 1) {
		t.Errorf("floored score = %v, want 1 (decay floor 0.1)", floored)
	}
}
