package ingest

import (
	"context"
	"time"

	"github.com/Mwapsam/ubungo-iq/internal/models"
)

// ItemStore abstracts the storage layer for scraped listings.
type ItemStore interface {
	// GetItem returns nil, nil when no item has that ID.
	GetItem(ctx context.Context, docID string) (*models.ScrapedItem, error)
	// TryCreateItem fails with models.ErrItemExists when the ID is taken.
	TryCreateItem(ctx context.Context, item models.ScrapedItem) error
	UpdateItem(ctx context.Context, item models.ScrapedItem) error
	ListItemsSince(ctx context.Context, website string, since time.Time) ([]models.ScrapedItem, error)
	TrimOldItems(ctx context.Context, maxItems int) error
}

// LogStore records extraction-run history.
type LogStore interface {
	CreateExtractionLog(ctx context.Context, log models.ExtractionLog) (string, error)
	UpdateExtractionLog(ctx context.Context, log models.ExtractionLog) error
}

// Validator checks adapter output before it reaches storage.
type Validator interface {
	ValidateStruct(s interface{}) error
}
