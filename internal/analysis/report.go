package analysis

import "time"

// Report is the comprehensive market-intelligence snapshot. Sub-analyses
// that had no usable data carry an Error marker instead of zeroed metrics,
// so a consumer can tell "no data" from "all zeros".
type Report struct {
	GeneratedAt   time.Time `json:"generated_at"`
	DataPeriod    string    `json:"data_period"`
	TotalProducts int       `json:"total_products"`

	Pricing       PricingAnalysis      `json:"pricing_analysis"`
	Suppliers     SupplierAnalysis     `json:"supplier_intelligence"`
	Logistics     LogisticsAnalysis    `json:"logistics_insights"`
	Quality       QualityAnalysis      `json:"quality_metrics"`
	Trends        TrendAnalysis        `json:"market_trends"`
	Opportunities []ContentOpportunity `json:"content_opportunities"`
	Alerts        []ReportAlert        `json:"alerts"`
}

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type CategoryAverage struct {
	Category string  `json:"category"`
	Average  float64 `json:"average"`
}

type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type PricingAnalysis struct {
	Error string `json:"error,omitempty"`

	TotalProductsWithPricing int     `json:"total_products_with_pricing"`
	AveragePrice             float64 `json:"average_price"`
	MedianPrice              float64 `json:"median_price"`
	PriceRange               Range   `json:"price_range"`

	ProductsWithDiscounts int     `json:"products_with_discounts"`
	AverageDiscount       float64 `json:"average_discount"`
	DiscountRate          float64 `json:"discount_rate"`

	BulkPricingAvailability int               `json:"bulk_pricing_availability"`
	CategoryPricing         []CategoryAverage `json:"category_pricing"`
}

type SupplierAnalysis struct {
	Error string `json:"error,omitempty"`

	TotalSuppliers int          `json:"total_suppliers"`
	ByCountry      []LabelCount `json:"by_country"`
	ByRegion       []LabelCount `json:"by_region"`

	VerificationRate float64 `json:"verification_rate"`

	AverageYears         float64 `json:"average_years"`
	ExperiencedSuppliers int     `json:"experienced_suppliers"`

	AverageRating      float64 `json:"average_rating"`
	HighRatedSuppliers int     `json:"high_rated_suppliers"`
}

type LogisticsAnalysis struct {
	Error string `json:"error,omitempty"`

	MOQAverage float64 `json:"moq_average"`
	MOQMedian  float64 `json:"moq_median"`
	MOQRange   Range   `json:"moq_range"`

	SmallBusinessFriendly int `json:"small_business_friendly"`
	MediumOrders          int `json:"medium_orders"`
	LargeOrders           int `json:"large_orders"`

	AverageLeadTimeDays float64 `json:"average_lead_time_days"`
	FastDelivery        int     `json:"fast_delivery"`
	StandardDelivery    int     `json:"standard_delivery"`
	SlowDelivery        int     `json:"slow_delivery"`

	AverageShippingCost float64 `json:"average_shipping_cost"`
	ShippingCostRange   Range   `json:"shipping_cost_range"`
}

type QualityAnalysis struct {
	Error string `json:"error,omitempty"`

	AverageRating float64 `json:"average_rating"`
	HighQuality   int     `json:"high_quality"`
	GoodQuality   int     `json:"good_quality"`
	FairQuality   int     `json:"fair_quality"`

	TotalCertifications  int      `json:"total_certifications"`
	CommonCertifications []string `json:"common_certifications"`
	CertifiedProducts    int      `json:"certified_products"`
}

type TrendAnalysis struct {
	PriceMovements          map[string]int    `json:"price_movements"`
	SeasonalPatterns        map[string]int    `json:"seasonal_patterns"`
	TrendingProducts        int               `json:"trending_products"`
	TopPerformingCategories []CategoryAverage `json:"top_performing_categories"`
}

type ContentOpportunity struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	DataPoints string `json:"data_points"`
	ValueScore int    `json:"value_score"`
}

type ReportAlert struct {
	Type    string `json:"type"`
	Level   string `json:"level"`
	Message string `json:"message"`
	Action  string `json:"action"`
}
