package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Mwapsam/ubungo-iq/internal/models"
)

// AlibabaAdapter extracts wholesale listings from Alibaba search pages.
// The search results are server-rendered, so a plain fetch is enough.
type AlibabaAdapter struct{}

func NewAlibabaAdapter() *AlibabaAdapter {
	return &AlibabaAdapter{}
}

func (a *AlibabaAdapter) Website() string {
	return models.WebsiteAlibaba
}

func (a *AlibabaAdapter) Extract(ctx context.Context, source *models.Source) (*Result, error) {
	sel, err := ResolveSelectors(source)
	if err != nil {
		return nil, err
	}

	searchURL := strings.TrimSuffix(source.BaseURL, "/") + sel.SearchPath
	slog.Info("Fetching listing page", "website", a.Website(), "url", searchURL)

	client := newFetchClient(source)
	doc, err := client.fetchDocument(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing page: %w", err)
	}

	if doc.Find(sel.Container.Item).Length() == 0 {
		return nil, fmt.Errorf("no %q elements found on %s. Potential block or page structure change", sel.Container.Item, searchURL)
	}

	result := parseListings(doc, source, sel)

	// Wholesale context only Alibaba listings carry.
	for i := range result.Items {
		item := &result.Items[i]
		if item.MinimumOrderQuantity > 0 && item.OrderUnits == "" {
			item.OrderUnits = "pieces"
		}
	}

	return result, nil
}
