package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Mwapsam/ubungo-iq/internal/models"
)

const (
	// How many topics one queueing pass promotes into requests.
	topicsPerQueuePass = 5
	// How many queued requests one processing pass generates.
	requestsPerProcessPass = 3
	// How many sample listings travel with a request.
	samplesPerRequest = 3
)

// TopicSource reads and updates trending topics for content selection.
type TopicSource interface {
	ListUngeneratedTopics(ctx context.Context) ([]models.TrendingTopic, error)
	SaveTopic(ctx context.Context, topic models.TrendingTopic) error
}

// QueueStore persists the generation queue.
type QueueStore interface {
	CreateGenerationRequest(ctx context.Context, req models.GenerationRequest) (string, error)
	ListUnprocessedRequests(ctx context.Context, limit int) ([]models.GenerationRequest, error)
	UpdateGenerationRequest(ctx context.Context, req models.GenerationRequest) error
}

// Generator produces content for one request in two steps, outline first
// and then the article body written against it. *Client satisfies it.
type Generator interface {
	GenerateOutline(ctx context.Context, req *models.GenerationRequest) (string, error)
	GenerateArticle(ctx context.Context, req *models.GenerationRequest) (string, error)
}

// Pipeline moves trending topics into the generation queue and drains the
// queue through the article generator.
type Pipeline struct {
	topics    TopicSource
	queue     QueueStore
	generator Generator
	logger    *slog.Logger
	now       func() time.Time
}

func NewPipeline(topics TopicSource, queue QueueStore, generator Generator, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{topics: topics, queue: queue, generator: generator, logger: logger, now: time.Now}
}

var topicTitleCaser = cases.Title(language.English)

// QueueTrendingContent promotes the strongest unqueued topics into
// generation requests and marks them so the next pass picks fresh ones.
// Returns how many requests were queued.
func (p *Pipeline) QueueTrendingContent(ctx context.Context) (int, error) {
	topics, err := p.topics.ListUngeneratedTopics(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list topics: %w", err)
	}

	now := p.now()
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].TrendingScore(now) > topics[j].TrendingScore(now)
	})
	if len(topics) > topicsPerQueuePass {
		topics = topics[:topicsPerQueuePass]
	}

	queued := 0
	for i := range topics {
		topic := topics[i]

		samples := make([]string, 0, samplesPerRequest)
		for _, s := range topic.SampleItems {
			if len(samples) == samplesPerRequest {
				break
			}
			samples = append(samples, s.Title)
		}

		req := models.GenerationRequest{
			ContentType: "trend_analysis",
			Title:       fmt.Sprintf("Market Analysis: %s Trends", topicTitleCaser.String(topic.Topic)),
			Priority:    "normal",
			TopicDocID:  topic.DocID,
			Context: map[string]any{
				"source":       topic.SourceWebsite,
				"frequency":    topic.Frequency,
				"sample_items": samples,
			},
			ScheduledFor: now,
			CreatedAt:    now,
		}
		if _, err := p.queue.CreateGenerationRequest(ctx, req); err != nil {
			p.logger.Warn("failed to queue topic", "topic", topic.Topic, "error", err)
			continue
		}

		topic.ContentGenerated = true
		if err := p.topics.SaveTopic(ctx, topic); err != nil {
			p.logger.Warn("failed to mark topic as queued", "topic", topic.Topic, "error", err)
		}
		queued++
	}

	p.logger.Info("content queueing pass complete", "queued", queued)
	return queued, nil
}

// ProcessQueue generates content for the next batch of queued requests.
// Each request goes through two model calls, an outline and then the article
// written against it; the outline is stored on the request so a failed article
// step leaves the plan inspectable. Requests whose generation fails are still
// marked processed with a failed status so a poisoned request cannot wedge the
// queue. Returns how many requests were completed.
func (p *Pipeline) ProcessQueue(ctx context.Context) (int, error) {
	if p.generator == nil {
		return 0, nil
	}

	requests, err := p.queue.ListUnprocessedRequests(ctx, requestsPerProcessPass)
	if err != nil {
		return 0, fmt.Errorf("failed to list generation queue: %w", err)
	}

	completed := 0
	for i := range requests {
		req := requests[i]
		req.Processed = true

		outline, outlineErr := p.generator.GenerateOutline(ctx, &req)
		switch {
		case outlineErr != nil:
			req.Status = "failed"
			p.logger.Error("outline generation failed", "title", req.Title, "error", outlineErr)
		case outline == "":
			req.Status = "skipped"
		default:
			req.GeneratedOutline = outline

			content, genErr := p.generator.GenerateArticle(ctx, &req)
			switch {
			case genErr != nil:
				req.Status = "failed"
				p.logger.Error("article generation failed", "title", req.Title, "error", genErr)
			case content == "":
				req.Status = "skipped"
			default:
				req.Status = "completed"
				req.GeneratedContent = content
				req.WordCount = len(strings.Fields(content))
				completed++
			}
		}

		if err := p.queue.UpdateGenerationRequest(ctx, req); err != nil {
			p.logger.Warn("failed to persist generation result", "id", req.ID, "error", err)
		}
	}

	p.logger.Info("generation pass complete", "processed", len(requests), "completed", completed)
	return completed, nil
}
