package ingest

import (
	"time"

	"github.com/Mwapsam/ubungo-iq/internal/models"
)

// applyUpdate folds a re-sighting into the stored item. Only the volatile
// fields refresh: listing text, pricing levels, rating, engagement counts,
// and market signals, and each scalar overwrites only when the new
// observation carries a value (zero means the adapter did not see the
// field). List fields are replaced wholesale when observed, and the raw
// payload is merged one section at a time so a partial observation never
// wipes sections from an earlier richer one. Specification and supplier
// scalars are fixed at first sighting; see newItem.
func applyUpdate(existing *models.ScrapedItem, in *models.NormalizedItem, now time.Time) {
	setString := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	setInt := func(dst *int, src int) {
		if src != 0 {
			*dst = src
		}
	}
	setFloat := func(dst *float64, src float64) {
		if src != 0 {
			*dst = src
		}
	}
	setStrings := func(dst *[]string, src []string) {
		if src != nil {
			*dst = src
		}
	}

	setString(&existing.Title, in.Title)
	setString(&existing.Description, in.Description)
	setString(&existing.Category, in.Category)
	setString(&existing.Tags, in.Tags)

	setFloat(&existing.CurrentPrice, in.CurrentPrice)
	setFloat(&existing.OriginalPrice, in.OriginalPrice)

	setFloat(&existing.Rating, in.Rating)
	setInt(&existing.RatingCount, in.RatingCount)

	setInt(&existing.Views, in.Views)
	setInt(&existing.Sales, in.Sales)
	setInt(&existing.RecentOrders, in.RecentOrders)
	setInt(&existing.TrendingRank, in.TrendingRank)

	setString(&existing.SeasonalDemand, in.SeasonalDemand)
	setString(&existing.PriceTrend, in.PriceTrend)
	setFloat(&existing.ShippingCost, in.ShippingCost)

	if in.BulkPricingTiers != nil {
		existing.BulkPricingTiers = in.BulkPricingTiers
	}
	setStrings(&existing.Certifications, in.Certifications)
	setStrings(&existing.ColorOptions, in.ColorOptions)
	setStrings(&existing.ProductFeatures, in.ProductFeatures)
	setStrings(&existing.ReviewHighlights, in.ReviewHighlights)
	setStrings(&existing.CommonComplaints, in.CommonComplaints)
	setStrings(&existing.SupplierCertifications, in.SupplierCertifications)
	setStrings(&existing.SearchKeywords, in.SearchKeywords)
	setStrings(&existing.ShippingMethods, in.ShippingMethods)
	setStrings(&existing.ImageURLs, in.ImageURLs)
	setStrings(&existing.VideoURLs, in.VideoURLs)

	if in.RawData != nil {
		if existing.RawData == nil {
			existing.RawData = make(map[string]any, len(in.RawData))
		}
		for key, value := range in.RawData {
			existing.RawData[key] = value
		}
	}

	existing.UpdatedAt = now
}

// newItem builds the stored form of a first-sighting. Identity,
// specification, and supplier-profile scalars are written here and never
// refreshed by later sightings: a listing's material, order terms, and
// supplier identity do not legitimately change under the same external ID,
// and silently overwriting them would let one bad parse poison the
// supply and verification alert baselines.
func newItem(source *models.Source, in *models.NormalizedItem, now time.Time) models.ScrapedItem {
	item := models.ScrapedItem{
		DocID:         models.ItemDocID(source.Website, in.ExternalID),
		SourceWebsite: source.Website,
		ExternalID:    in.ExternalID,
		URL:           in.URL,

		PriceCurrency:      in.PriceCurrency,
		DiscountPercentage: in.DiscountPercentage,

		MinimumOrderQuantity: in.MinimumOrderQuantity,
		OrderUnits:           in.OrderUnits,
		LeadTimeDays:         in.LeadTimeDays,

		Material:   in.Material,
		Dimensions: in.Dimensions,

		SupplierName:       in.SupplierName,
		SupplierLocation:   in.SupplierLocation,
		SupplierCountry:    in.SupplierCountry,
		SupplierRegion:     in.SupplierRegion,
		YearsInBusiness:    in.YearsInBusiness,
		VerificationStatus: in.VerificationStatus,
		SupplierRating:     in.SupplierRating,

		Likes:          in.Likes,
		PortOfShipment: in.PortOfShipment,

		ScrapedAt: now,
		UpdatedAt: now,
	}
	applyUpdate(&item, in, now)
	return item
}
