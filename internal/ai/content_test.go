package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Mwapsam/ubungo-iq/internal/models"
)

type mockTopicSource struct {
	topics  []models.TrendingTopic
	saved   []models.TrendingTopic
	listErr error
}

func (m *mockTopicSource) ListUngeneratedTopics(ctx context.Context) ([]models.TrendingTopic, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]models.TrendingTopic(nil), m.topics...), nil
}

func (m *mockTopicSource) SaveTopic(ctx context.Context, topic models.TrendingTopic) error {
	m.saved = append(m.saved, topic)
	return nil
}

type mockQueueStore struct {
	created   []models.GenerationRequest
	pending   []models.GenerationRequest
	updated   []models.GenerationRequest
	createErr error
}

func (m *mockQueueStore) CreateGenerationRequest(ctx context.Context, req models.GenerationRequest) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	m.created = append(m.created, req)
	return fmt.Sprintf("req-%d", len(m.created)), nil
}

func (m *mockQueueStore) ListUnprocessedRequests(ctx context.Context, limit int) ([]models.GenerationRequest, error) {
	if limit > len(m.pending) {
		limit = len(m.pending)
	}
	return append([]models.GenerationRequest(nil), m.pending[:limit]...), nil
}

func (m *mockQueueStore) UpdateGenerationRequest(ctx context.Context, req models.GenerationRequest) error {
	m.updated = append(m.updated, req)
	return nil
}

type mockGenerator struct {
	outline      string
	outlineErr   error
	outlineCalls int
	content      string
	err          error
	calls        int
}

func (m *mockGenerator) GenerateOutline(ctx context.Context, req *models.GenerationRequest) (string, error) {
	m.outlineCalls++
	if m.outlineErr != nil {
		return "", m.outlineErr
	}
	return m.outline, nil
}

func (m *mockGenerator) GenerateArticle(ctx context.Context, req *models.GenerationRequest) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.content, nil
}

func topic(name string, frequency int, views int64, updated time.Time) models.TrendingTopic {
	return models.TrendingTopic{
		DocID:         models.TopicDocID("etsy", name, "decor"),
		SourceWebsite: "etsy",
		Topic:         name,
		Category:      "decor",
		Frequency:     frequency,
		TotalViews:    views,
		LastUpdated:   updated,
		SampleItems: []models.SampleItem{
			{Title: name + " one"}, {Title: name + " two"},
			{Title: name + " three"}, {Title: name + " four"},
		},
	}
}

func TestQueueTrendingContent(t *testing.T) {
	now := time.Now()
	topics := &mockTopicSource{}
	// Seven candidates with descending scores; only the top five queue.
	for i := 0; i < 7; i++ {
		topics.topics = append(topics.topics, topic(fmt.Sprintf("topic%d", i), 10-i, 1000, now))
	}
	queue := &mockQueueStore{}

	queued, err := NewPipeline(topics, queue, nil, nil).QueueTrendingContent(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if queued != 5 {
		t.Fatalf("queued = %d, want 5", queued)
	}
	if len(queue.created) != 5 {
		t.Fatalf("created = %d requests", len(queue.created))
	}

	first := queue.created[0]
	if first.Title != "Market Analysis: Topic0 Trends" {
		t.Errorf("title = %q", first.Title)
	}
	if first.ContentType != "trend_analysis" || first.Priority != "normal" {
		t.Errorf("request = %+v", first)
	}
	samples, ok := first.Context["sample_items"].([]string)
	if !ok || len(samples) != 3 {
		t.Errorf("sample_items = %v, want first 3 titles", first.Context["sample_items"])
	}
	if first.Context["source"] != "etsy" {
		t.Errorf("source = %v", first.Context["source"])
	}

	if len(topics.saved) != 5 {
		t.Fatalf("saved = %d topics, want the queued ones marked", len(topics.saved))
	}
	for _, saved := range topics.saved {
		if !saved.ContentGenerated {
			t.Errorf("topic %s not marked as generated", saved.Topic)
		}
	}
}

func TestQueueTrendingContent_OrdersByScore(t *testing.T) {
	now := time.Now()
	// A stale high-frequency topic decays below a fresh smaller one.
	stale := topic("stale", 20, 10000, now.Add(-9*24*time.Hour))
	fresh := topic("fresh", 5, 10000, now)

	topics := &mockTopicSource{topics: []models.TrendingTopic{stale, fresh}}
	queue := &mockQueueStore{}

	if _, err := NewPipeline(topics, queue, nil, nil).QueueTrendingContent(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(queue.created) != 2 {
		t.Fatalf("created = %d", len(queue.created))
	}
	if queue.created[0].Title != "Market Analysis: Fresh Trends" {
		t.Errorf("first queued = %q, want the fresh topic first", queue.created[0].Title)
	}
}

func TestQueueTrendingContent_CreateFailureSkipsMarking(t *testing.T) {
	topics := &mockTopicSource{topics: []models.TrendingTopic{topic("only", 5, 100, time.Now())}}
	queue := &mockQueueStore{createErr: errors.New("queue full")}

	queued, err := NewPipeline(topics, queue, nil, nil).QueueTrendingContent(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if queued != 0 {
		t.Errorf("queued = %d, want 0", queued)
	}
	if len(topics.saved) != 0 {
		t.Error("a topic whose request failed must stay unmarked")
	}
}

func TestProcessQueue(t *testing.T) {
	queue := &mockQueueStore{pending: []models.GenerationRequest{
		{ID: "r1", Title: "T1"},
		{ID: "r2", Title: "T2"},
		{ID: "r3", Title: "T3"},
		{ID: "r4", Title: "T4"},
	}}
	gen := &mockGenerator{outline: "## Pricing\n## Suppliers", content: "one two three four"}

	completed, err := NewPipeline(nil, queue, gen, nil).ProcessQueue(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if completed != 3 {
		t.Errorf("completed = %d, want a batch of 3", completed)
	}
	if gen.outlineCalls != 3 || gen.calls != 3 {
		t.Errorf("generator calls = %d outline, %d article, want 3 each", gen.outlineCalls, gen.calls)
	}
	if len(queue.updated) != 3 {
		t.Fatalf("updated = %d requests", len(queue.updated))
	}
	for _, req := range queue.updated {
		if !req.Processed || req.Status != "completed" {
			t.Errorf("request %s = %+v", req.ID, req)
		}
		if req.GeneratedOutline != "## Pricing\n## Suppliers" {
			t.Errorf("outline = %q, want it stored on the request", req.GeneratedOutline)
		}
		if req.WordCount != 4 {
			t.Errorf("word count = %d, want 4", req.WordCount)
		}
	}
}

func TestProcessQueue_OutlineFailure(t *testing.T) {
	queue := &mockQueueStore{pending: []models.GenerationRequest{{ID: "r1", Title: "T1"}}}
	gen := &mockGenerator{outlineErr: errors.New("model unavailable"), content: "unused"}

	completed, err := NewPipeline(nil, queue, gen, nil).ProcessQueue(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if completed != 0 {
		t.Errorf("completed = %d, want 0", completed)
	}
	if gen.calls != 0 {
		t.Error("article generation must not run when the outline step fails")
	}
	if len(queue.updated) != 1 {
		t.Fatal("failed request must still be updated")
	}
	if !queue.updated[0].Processed || queue.updated[0].Status != "failed" {
		t.Errorf("request = %+v, want processed with failed status", queue.updated[0])
	}
}

func TestProcessQueue_GenerationFailure(t *testing.T) {
	queue := &mockQueueStore{pending: []models.GenerationRequest{{ID: "r1", Title: "T1"}}}
	gen := &mockGenerator{outline: "## Pricing", err: errors.New("model unavailable")}

	completed, err := NewPipeline(nil, queue, gen, nil).ProcessQueue(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if completed != 0 {
		t.Errorf("completed = %d, want 0", completed)
	}
	if len(queue.updated) != 1 {
		t.Fatal("failed request must still be updated")
	}
	if !queue.updated[0].Processed || queue.updated[0].Status != "failed" {
		t.Errorf("request = %+v, want processed with failed status", queue.updated[0])
	}
}

func TestProcessQueue_NoGenerator(t *testing.T) {
	queue := &mockQueueStore{pending: []models.GenerationRequest{{ID: "r1"}}}

	completed, err := NewPipeline(nil, queue, nil, nil).ProcessQueue(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if completed != 0 || len(queue.updated) != 0 {
		t.Error("without a generator the queue must be left untouched")
	}
}
