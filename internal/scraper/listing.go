package scraper

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Mwapsam/ubungo-iq/internal/models"
	"github.com/Mwapsam/ubungo-iq/internal/util"
)

// countryRegion maps supplier countries to the coarse regions the supply
// detectors group by.
var countryRegion = map[string]string{
	"China":          "Asia",
	"India":          "Asia",
	"Vietnam":        "Asia",
	"Thailand":       "Asia",
	"South Korea":    "Asia",
	"Japan":          "Asia",
	"Turkey":         "Europe",
	"Germany":        "Europe",
	"Italy":          "Europe",
	"United Kingdom": "Europe",
	"Poland":         "Europe",
	"United States":  "North America",
	"Canada":         "North America",
	"Mexico":         "North America",
	"Brazil":         "South America",
}

// RegionForCountry returns the coarse region for a supplier country, or ""
// when the country is unknown.
func RegionForCountry(country string) string {
	return countryRegion[country]
}

// parseListings walks the listing container elements and extracts one
// normalized item per listing. Listings missing an identity (external ID,
// URL, title) are reported in Result.Errors and skipped rather than failing
// the batch.
func parseListings(doc *goquery.Document, source *models.Source, sel ListingSelectors) *Result {
	result := &Result{}

	doc.Find(sel.Container.Item).EachWithBreak(func(idx int, s *goquery.Selection) bool {
		if source.MaxItemsPerScrape > 0 && len(result.Items) >= source.MaxItemsPerScrape {
			return false
		}
		if sel.Container.IgnoreModifier != "" && s.Is(sel.Container.IgnoreModifier) {
			return true
		}

		item, err := parseListing(s, source, sel)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("listing %d: %v", idx, err))
			return true
		}
		result.Items = append(result.Items, *item)
		return true
	})

	if len(result.Errors) > 0 {
		slog.Warn("Some listings failed to parse",
			"website", source.Website,
			"parsed", len(result.Items),
			"failed", len(result.Errors))
	}
	return result
}

func parseListing(s *goquery.Selection, source *models.Source, sel ListingSelectors) (*models.NormalizedItem, error) {
	item := &models.NormalizedItem{}

	// Title and listing URL.
	titleSelection := s.Find(sel.Elements.TitleLink)
	if titleSelection.Length() > 0 {
		actualLink := titleSelection.First()
		if !actualLink.Is("a") {
			actualLink = titleSelection.Find("a").First()
		}
		if actualLink.Length() > 0 {
			item.Title = strings.TrimSpace(actualLink.Text())
			if href, exists := actualLink.Attr("href"); exists {
				item.URL = util.NormalizeListingURL(source.BaseURL, href)
			}
		}
	}
	if item.Title == "" || item.URL == "" {
		return nil, fmt.Errorf("missing title or URL")
	}

	// External ID: explicit attribute first, URL-derived fallback.
	if sel.Elements.ProductID != "" {
		if id, exists := s.Attr(sel.Elements.ProductID); exists && id != "" {
			item.ExternalID = id
		}
	}
	if item.ExternalID == "" {
		item.ExternalID = externalIDFromURL(item.URL)
	}
	if item.ExternalID == "" {
		return nil, fmt.Errorf("no external ID for %s", item.URL)
	}

	// Pricing.
	if text := elementText(s, sel.Elements.Price); text != "" {
		item.CurrentPrice, item.PriceCurrency = util.ExtractPrice(text)
	}
	if text := elementText(s, sel.Elements.OriginalPrice); text != "" {
		item.OriginalPrice, _ = util.ExtractPrice(text)
	}
	if item.OriginalPrice > 0 && item.CurrentPrice > 0 && item.OriginalPrice > item.CurrentPrice {
		item.DiscountPercentage = (item.OriginalPrice - item.CurrentPrice) / item.OriginalPrice * 100
	}

	// Order terms.
	if text := elementText(s, sel.Elements.MOQ); text != "" {
		item.MinimumOrderQuantity = util.ExtractNumber(text)
	}
	if text := elementText(s, sel.Elements.Orders); text != "" {
		item.Sales = util.ExtractNumber(text)
		item.RecentOrders = item.Sales
	}

	// Ratings and engagement.
	if text := elementText(s, sel.Elements.Rating); text != "" {
		item.Rating = util.ExtractFloat(text)
	}
	if text := elementText(s, sel.Elements.RatingCount); text != "" {
		item.RatingCount = util.ExtractNumber(text)
	}
	if text := elementText(s, sel.Elements.Views); text != "" {
		item.Views = util.ExtractNumber(text)
	}
	if text := elementText(s, sel.Elements.Likes); text != "" {
		item.Likes = util.ExtractNumber(text)
	}

	// Supplier.
	item.SupplierName = elementText(s, sel.Elements.Supplier)
	if location := elementText(s, sel.Elements.Location); location != "" {
		item.SupplierLocation = location
		item.SupplierCountry = countryFromLocation(location)
		item.SupplierRegion = RegionForCountry(item.SupplierCountry)
	}
	if sel.Elements.Verified != "" && s.Find(sel.Elements.Verified).Length() > 0 {
		item.VerificationStatus = "Verified"
	}
	if text := elementText(s, sel.Elements.YearsBadge); text != "" {
		item.YearsInBusiness = util.ExtractNumber(text)
	}

	item.Category = elementText(s, sel.Elements.Category)

	if sel.Elements.Image != "" {
		if src, exists := s.Find(sel.Elements.Image).First().Attr("src"); exists && src != "" {
			item.ImageURLs = []string{util.NormalizeListingURL(source.BaseURL, src)}
		}
	}

	item.RawData = map[string]any{
		"pricing": map[string]any{
			"current_price": item.CurrentPrice,
			"currency":      item.PriceCurrency,
		},
		"supplier": map[string]any{
			"name":                item.SupplierName,
			"country":             item.SupplierCountry,
			"region":              item.SupplierRegion,
			"verification_status": item.VerificationStatus,
			"years_in_business":   item.YearsInBusiness,
		},
		"logistics": map[string]any{
			"moq": item.MinimumOrderQuantity,
		},
	}

	return item, nil
}

func elementText(s *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	found := s.Find(selector)
	if found.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(found.First().Text())
}

// externalIDFromURL derives a stable listing ID from the final URL path
// segment, e.g. ".../product-detail/widget_1601234.html" -> "widget_1601234".
func externalIDFromURL(listingURL string) string {
	u, err := url.Parse(listingURL)
	if err != nil {
		return ""
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ""
	}
	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]
	last = strings.TrimSuffix(last, ".html")
	return last
}

func countryFromLocation(location string) string {
	parts := strings.Split(location, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}
