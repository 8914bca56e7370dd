package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Mwapsam/ubungo-iq/internal/models"
)

// GlobalTradeAdapter extracts supplier directory listings. The directory
// leans heavily on supplier attributes (country, verification, tenure)
// rather than engagement counts.
type GlobalTradeAdapter struct{}

func NewGlobalTradeAdapter() *GlobalTradeAdapter {
	return &GlobalTradeAdapter{}
}

func (a *GlobalTradeAdapter) Website() string {
	return models.WebsiteGlobalTrade
}

func (a *GlobalTradeAdapter) Extract(ctx context.Context, source *models.Source) (*Result, error) {
	sel, err := ResolveSelectors(source)
	if err != nil {
		return nil, err
	}

	listURL := strings.TrimSuffix(source.BaseURL, "/") + sel.SearchPath
	slog.Info("Fetching listing page", "website", a.Website(), "url", listURL)

	client := newFetchClient(source)
	doc, err := client.fetchDocument(ctx, listURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing page: %w", err)
	}

	if doc.Find(sel.Container.Item).Length() == 0 {
		return nil, fmt.Errorf("no %q elements found on %s. Potential block or page structure change", sel.Container.Item, listURL)
	}

	return parseListings(doc, source, sel), nil
}
