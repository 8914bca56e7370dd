package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Mwapsam/ubungo-iq/internal/models"
)

const (
	sourcesCollection = "sources"
	itemsCollection   = "scraped_items"
	topicsCollection  = "trending_topics"
	logsCollection    = "extraction_logs"
	queueCollection   = "generation_queue"
)

type Client struct {
	client *firestore.Client
	logger *slog.Logger
}

func New(ctx context.Context, projectID string, logger *slog.Logger) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{client: client, logger: logger}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// GetItem retrieves a listing by its document ID. Missing items return
// nil, nil.
func (c *Client) GetItem(ctx context.Context, docID string) (*models.ScrapedItem, error) {
	doc, err := c.client.Collection(itemsCollection).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item %s: %w", docID, err)
	}
	if !doc.Exists() {
		return nil, nil
	}

	var item models.ScrapedItem
	if err := doc.DataTo(&item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item data: %w", err)
	}
	item.DocID = doc.Ref.ID
	return &item, nil
}

// TryCreateItem creates a new listing document. Create fails if the document
// already exists, which the ingestion engine relies on to detect concurrent
// first sightings.
func (c *Client) TryCreateItem(ctx context.Context, item models.ScrapedItem) error {
	_, err := c.client.Collection(itemsCollection).Doc(item.DocID).Create(ctx, item)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return models.ErrItemExists
		}
		return err
	}
	return nil
}

// UpdateItem overwrites a listing with its merged state. The ingestion engine
// reads, merges, and writes, so a whole-document set is the right shape here.
func (c *Client) UpdateItem(ctx context.Context, item models.ScrapedItem) error {
	_, err := c.client.Collection(itemsCollection).Doc(item.DocID).Set(ctx, item)
	return err
}

// ListItemsSince returns one website's listings first seen at or after the
// cutoff.
func (c *Client) ListItemsSince(ctx context.Context, website string, since time.Time) ([]models.ScrapedItem, error) {
	iter := c.client.Collection(itemsCollection).
		Where("sourceWebsite", "==", website).
		Where("scrapedAt", ">=", since).
		Documents(ctx)
	return collectItems(iter)
}

// ListAllItemsSince returns listings from every website first seen at or
// after the cutoff.
func (c *Client) ListAllItemsSince(ctx context.Context, since time.Time) ([]models.ScrapedItem, error) {
	iter := c.client.Collection(itemsCollection).
		Where("scrapedAt", ">=", since).
		Documents(ctx)
	return collectItems(iter)
}

// ListAllItemsBetween returns listings first seen inside [start, end).
func (c *Client) ListAllItemsBetween(ctx context.Context, start, end time.Time) ([]models.ScrapedItem, error) {
	iter := c.client.Collection(itemsCollection).
		Where("scrapedAt", ">=", start).
		Where("scrapedAt", "<", end).
		Documents(ctx)
	return collectItems(iter)
}

func collectItems(iter *firestore.DocumentIterator) ([]models.ScrapedItem, error) {
	defer iter.Stop()

	var items []models.ScrapedItem
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate items: %w", err)
		}
		var item models.ScrapedItem
		if err := doc.DataTo(&item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal item %s: %w", doc.Ref.ID, err)
		}
		item.DocID = doc.Ref.ID
		items = append(items, item)
	}
	return items, nil
}

// TrimOldItems deletes the oldest listings (by first sighting) once the
// collection exceeds maxItems.
func (c *Client) TrimOldItems(ctx context.Context, maxItems int) error {
	collectionRef := c.client.Collection(itemsCollection)

	countSnapshot, err := collectionRef.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get item count for trimming: %w", err)
	}
	countValue, ok := countSnapshot["all"]
	if !ok {
		return fmt.Errorf("count aggregation result for trimming was invalid: 'all' key missing")
	}
	pbValue, ok := countValue.(*firestorepb.Value)
	if !ok {
		return fmt.Errorf("count aggregation result for trimming has unexpected type %T", countValue)
	}
	currentCount := int(pbValue.GetIntegerValue())

	if currentCount <= maxItems {
		return nil
	}
	numToDelete := currentCount - maxItems
	c.logger.Info("trimming old items", "current", currentCount, "max", maxItems, "deleting", numToDelete)

	iter := collectionRef.
		OrderBy("scrapedAt", firestore.Asc).
		Limit(numToDelete).
		Documents(ctx)
	defer iter.Stop()

	deleted := 0
	bulkWriter := c.client.BulkWriter(ctx)
	defer bulkWriter.End()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to iterate items for trimming: %w", err)
		}
		if _, delErr := bulkWriter.Delete(doc.Ref); delErr != nil {
			c.logger.Warn("failed to queue item delete", "doc", doc.Ref.ID, "error", delErr)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		bulkWriter.Flush()
		c.logger.Info("flushed item deletions", "deleted", deleted)
	}
	return nil
}

// GetTopic retrieves a trending topic by document ID. Missing topics return
// nil, nil.
func (c *Client) GetTopic(ctx context.Context, docID string) (*models.TrendingTopic, error) {
	doc, err := c.client.Collection(topicsCollection).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get topic %s: %w", docID, err)
	}
	if !doc.Exists() {
		return nil, nil
	}

	var topic models.TrendingTopic
	if err := doc.DataTo(&topic); err != nil {
		return nil, fmt.Errorf("failed to unmarshal topic data: %w", err)
	}
	topic.DocID = doc.Ref.ID
	return &topic, nil
}

// SaveTopic upserts a trending-topic aggregate.
func (c *Client) SaveTopic(ctx context.Context, topic models.TrendingTopic) error {
	_, err := c.client.Collection(topicsCollection).Doc(topic.DocID).Set(ctx, topic)
	return err
}

// ListUngeneratedTopics returns every topic not yet queued for content
// generation. Ranking happens in memory because the trending score is
// derived, not stored.
func (c *Client) ListUngeneratedTopics(ctx context.Context) ([]models.TrendingTopic, error) {
	iter := c.client.Collection(topicsCollection).
		Where("contentGenerated", "==", false).
		Documents(ctx)
	defer iter.Stop()

	var topics []models.TrendingTopic
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate topics: %w", err)
		}
		var topic models.TrendingTopic
		if err := doc.DataTo(&topic); err != nil {
			return nil, fmt.Errorf("failed to unmarshal topic %s: %w", doc.Ref.ID, err)
		}
		topic.DocID = doc.Ref.ID
		topics = append(topics, topic)
	}
	return topics, nil
}

// CreateExtractionLog writes a new run record and returns its document ID.
func (c *Client) CreateExtractionLog(ctx context.Context, log models.ExtractionLog) (string, error) {
	docRef := c.client.Collection(logsCollection).NewDoc()
	if _, err := docRef.Create(ctx, log); err != nil {
		return "", fmt.Errorf("failed to create extraction log: %w", err)
	}
	return docRef.ID, nil
}

// UpdateExtractionLog finalizes a run record.
func (c *Client) UpdateExtractionLog(ctx context.Context, log models.ExtractionLog) error {
	if log.ID == "" {
		return fmt.Errorf("extraction log has no ID")
	}
	_, err := c.client.Collection(logsCollection).Doc(log.ID).Set(ctx, log)
	return err
}

// ListSources returns every configured marketplace.
func (c *Client) ListSources(ctx context.Context) ([]models.Source, error) {
	iter := c.client.Collection(sourcesCollection).Documents(ctx)
	defer iter.Stop()

	var sources []models.Source
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate sources: %w", err)
		}
		var src models.Source
		if err := doc.DataTo(&src); err != nil {
			return nil, fmt.Errorf("failed to unmarshal source %s: %w", doc.Ref.ID, err)
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// GetSource retrieves one marketplace configuration by website key.
func (c *Client) GetSource(ctx context.Context, website string) (*models.Source, error) {
	doc, err := c.client.Collection(sourcesCollection).Doc(website).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrSourceNotFound
		}
		return nil, fmt.Errorf("failed to get source %s: %w", website, err)
	}

	var src models.Source
	if err := doc.DataTo(&src); err != nil {
		return nil, fmt.Errorf("failed to unmarshal source data: %w", err)
	}
	return &src, nil
}

// SaveSource upserts a marketplace configuration keyed by website.
func (c *Client) SaveSource(ctx context.Context, src models.Source) error {
	if src.Website == "" {
		return fmt.Errorf("source has no website key")
	}
	_, err := c.client.Collection(sourcesCollection).Doc(src.Website).Set(ctx, src)
	return err
}

// SeedSources creates any configured source that does not exist yet. Existing
// documents keep their status fields, so a restart never resets failure
// counters or scrape history.
func (c *Client) SeedSources(ctx context.Context, sources []models.Source) error {
	for i := range sources {
		src := sources[i]
		if src.CreatedAt.IsZero() {
			src.CreatedAt = time.Now()
		}
		src.UpdatedAt = time.Now()
		_, err := c.client.Collection(sourcesCollection).Doc(src.Website).Create(ctx, src)
		if err != nil {
			if status.Code(err) == codes.AlreadyExists {
				continue
			}
			return fmt.Errorf("failed to seed source %s: %w", src.Website, err)
		}
		c.logger.Info("seeded source", "website", src.Website)
	}
	return nil
}

// UpdateSourceStatus writes only the scheduler-owned status fields so
// concurrent config edits are never clobbered.
func (c *Client) UpdateSourceStatus(ctx context.Context, src models.Source) error {
	_, err := c.client.Collection(sourcesCollection).Doc(src.Website).Update(ctx, []firestore.Update{
		{Path: "lastScraped", Value: src.LastScraped},
		{Path: "lastSuccess", Value: src.LastSuccess},
		{Path: "consecutiveFailures", Value: src.ConsecutiveFailures},
		{Path: "updatedAt", Value: time.Now()},
	})
	return err
}

// CreateGenerationRequest queues a content-generation request and returns its
// document ID.
func (c *Client) CreateGenerationRequest(ctx context.Context, req models.GenerationRequest) (string, error) {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, err := c.client.Collection(queueCollection).Doc(id).Create(ctx, req); err != nil {
		return "", fmt.Errorf("failed to create generation request: %w", err)
	}
	return id, nil
}

// ListUnprocessedRequests returns queued generation requests, highest
// priority first, oldest schedule first within a priority.
func (c *Client) ListUnprocessedRequests(ctx context.Context, limit int) ([]models.GenerationRequest, error) {
	iter := c.client.Collection(queueCollection).
		Where("processed", "==", false).
		OrderBy("priority", firestore.Desc).
		OrderBy("scheduledFor", firestore.Asc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var requests []models.GenerationRequest
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate generation queue: %w", err)
		}
		var req models.GenerationRequest
		if err := doc.DataTo(&req); err != nil {
			return nil, fmt.Errorf("failed to unmarshal request %s: %w", doc.Ref.ID, err)
		}
		req.ID = doc.Ref.ID
		requests = append(requests, req)
	}
	return requests, nil
}

// UpdateGenerationRequest overwrites a queued request with its new state.
func (c *Client) UpdateGenerationRequest(ctx context.Context, req models.GenerationRequest) error {
	if req.ID == "" {
		return fmt.Errorf("generation request has no ID")
	}
	_, err := c.client.Collection(queueCollection).Doc(req.ID).Set(ctx, req)
	return err
}
