package models

// Two-tier metric resolution: analytic code reads a metric through one of
// these accessors, which prefer the typed field and fall back to the
// corresponding section of the free-form RawData payload. This replaces the
// runtime attribute probing the dashboards used to do.

func (i *ScrapedItem) rawSection(name string) map[string]any {
	if i.RawData == nil {
		return nil
	}
	section, _ := i.RawData[name].(map[string]any)
	return section
}

func rawFloat(section map[string]any, key string) float64 {
	switch v := section[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func rawInt(section map[string]any, key string) int {
	switch v := section[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func rawString(section map[string]any, key string) string {
	s, _ := section[key].(string)
	return s
}

// CurrentPriceValue returns the listing price, or 0 when unknown.
func (i *ScrapedItem) CurrentPriceValue() float64 {
	if i.CurrentPrice > 0 {
		return i.CurrentPrice
	}
	return rawFloat(i.rawSection("pricing"), "current_price")
}

// DiscountValue returns the discount percentage, or 0 when unknown.
func (i *ScrapedItem) DiscountValue() float64 {
	if i.DiscountPercentage > 0 {
		return i.DiscountPercentage
	}
	return rawFloat(i.rawSection("pricing"), "discount_percentage")
}

// BulkTierCount returns how many bulk-pricing tiers the listing advertises.
func (i *ScrapedItem) BulkTierCount() int {
	if len(i.BulkPricingTiers) > 0 {
		return len(i.BulkPricingTiers)
	}
	tiers, _ := i.rawSection("pricing")["bulk_pricing_tiers"].([]any)
	return len(tiers)
}

// SupplierCountryValue returns the supplier country, or "" when unknown.
func (i *ScrapedItem) SupplierCountryValue() string {
	if i.SupplierCountry != "" {
		return i.SupplierCountry
	}
	return rawString(i.rawSection("supplier"), "country")
}

// SupplierRegionValue returns the supplier region, or "" when unknown.
func (i *ScrapedItem) SupplierRegionValue() string {
	if i.SupplierRegion != "" {
		return i.SupplierRegion
	}
	return rawString(i.rawSection("supplier"), "region")
}

// VerificationValue returns the supplier verification status string.
func (i *ScrapedItem) VerificationValue() string {
	if i.VerificationStatus != "" {
		return i.VerificationStatus
	}
	return rawString(i.rawSection("supplier"), "verification_status")
}

// YearsInBusinessValue returns supplier tenure in years, or 0 when unknown.
func (i *ScrapedItem) YearsInBusinessValue() int {
	if i.YearsInBusiness > 0 {
		return i.YearsInBusiness
	}
	return rawInt(i.rawSection("supplier"), "years_in_business")
}

// SupplierRatingValue returns the supplier rating, or 0 when unknown.
func (i *ScrapedItem) SupplierRatingValue() float64 {
	if i.SupplierRating > 0 {
		return i.SupplierRating
	}
	return rawFloat(i.rawSection("supplier"), "rating")
}

// MOQValue returns the minimum order quantity, or 0 when unknown.
func (i *ScrapedItem) MOQValue() int {
	if i.MinimumOrderQuantity > 0 {
		return i.MinimumOrderQuantity
	}
	return rawInt(i.rawSection("logistics"), "moq")
}

// LeadTimeValue returns the lead time in days, or 0 when unknown.
func (i *ScrapedItem) LeadTimeValue() int {
	if i.LeadTimeDays > 0 {
		return i.LeadTimeDays
	}
	return rawInt(i.rawSection("logistics"), "lead_time_days")
}

// ShippingCostValue returns the shipping cost, or 0 when unknown.
func (i *ScrapedItem) ShippingCostValue() float64 {
	if i.ShippingCost > 0 {
		return i.ShippingCost
	}
	return rawFloat(i.rawSection("logistics"), "shipping_cost")
}

// RatingValue returns the listing rating, or 0 when unknown.
func (i *ScrapedItem) RatingValue() float64 {
	if i.Rating > 0 {
		return i.Rating
	}
	return rawFloat(i.rawSection("quality"), "rating")
}

// CertificationsValue returns listing certifications from either tier.
func (i *ScrapedItem) CertificationsValue() []string {
	if len(i.Certifications) > 0 {
		return i.Certifications
	}
	raw, _ := i.rawSection("quality")["certifications"].([]any)
	if len(raw) == 0 {
		return nil
	}
	certs := make([]string, 0, len(raw))
	for _, c := range raw {
		if s, ok := c.(string); ok {
			certs = append(certs, s)
		}
	}
	return certs
}

// PriceTrendValue returns the reported price-trend label, or "".
func (i *ScrapedItem) PriceTrendValue() string {
	if i.PriceTrend != "" {
		return i.PriceTrend
	}
	return rawString(i.rawSection("market_intelligence"), "price_trend")
}

// SeasonalDemandValue returns the reported seasonal-demand label, or "".
func (i *ScrapedItem) SeasonalDemandValue() string {
	if i.SeasonalDemand != "" {
		return i.SeasonalDemand
	}
	return rawString(i.rawSection("market_intelligence"), "seasonal_demand")
}
