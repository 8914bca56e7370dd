package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Mwapsam/ubungo-iq/internal/models"
)

const reportWindow = 30 * 24 * time.Hour

// ItemLister reads the listing corpus the report is computed over.
type ItemLister interface {
	ListAllItemsSince(ctx context.Context, since time.Time) ([]models.ScrapedItem, error)
}

// Analyzer builds market-intelligence reports over the trailing 30 days.
type Analyzer struct {
	items ItemLister
	now   func() time.Time
}

func NewAnalyzer(items ItemLister) *Analyzer {
	return &Analyzer{items: items, now: time.Now}
}

// GenerateReport computes every sub-analysis over the window. A sub-analysis
// without usable data reports its Error marker; the report itself only fails
// when the corpus cannot be read.
func (a *Analyzer) GenerateReport(ctx context.Context) (*Report, error) {
	now := a.now()
	items, err := a.items.ListAllItemsSince(ctx, now.Add(-reportWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to list items for report: %w", err)
	}

	report := &Report{
		GeneratedAt:   now,
		DataPeriod:    "30 days",
		TotalProducts: len(items),
		Pricing:       analyzePricing(items),
		Suppliers:     analyzeSuppliers(items),
		Logistics:     analyzeLogistics(items),
		Quality:       analyzeQuality(items),
		Trends:        analyzeTrends(items),
	}
	report.Opportunities = identifyOpportunities(report)
	report.Alerts = generateReportAlerts(items)

	return report, nil
}

func analyzePricing(items []models.ScrapedItem) PricingAnalysis {
	var prices, discounts []float64
	bulkAvailable := 0
	categoryPrices := make(map[string][]float64)

	for i := range items {
		item := &items[i]
		price := item.CurrentPriceValue()
		if price <= 0 {
			continue
		}
		prices = append(prices, price)
		if d := item.DiscountValue(); d > 0 {
			discounts = append(discounts, d)
		}
		if item.BulkTierCount() > 0 {
			bulkAvailable++
		}
		if item.Category != "" {
			categoryPrices[item.Category] = append(categoryPrices[item.Category], price)
		}
	}

	if len(prices) == 0 {
		return PricingAnalysis{Error: "No pricing data available"}
	}

	return PricingAnalysis{
		TotalProductsWithPricing: len(prices),
		AveragePrice:             mean(prices),
		MedianPrice:              median(prices),
		PriceRange:               Range{Min: minOf(prices), Max: maxOf(prices)},
		ProductsWithDiscounts:    len(discounts),
		AverageDiscount:          mean(discounts),
		DiscountRate:             float64(len(discounts)) / float64(len(prices)) * 100,
		BulkPricingAvailability:  bulkAvailable,
		CategoryPricing:          topCategoryAverages(categoryPrices, 5),
	}
}

func analyzeSuppliers(items []models.ScrapedItem) SupplierAnalysis {
	countries := make(map[string]int)
	regions := make(map[string]int)
	total, verified := 0, 0
	var years []float64
	var ratings []float64

	for i := range items {
		item := &items[i]
		country := item.SupplierCountryValue()
		if country == "" {
			continue
		}
		total++
		countries[country]++
		if region := item.SupplierRegionValue(); region != "" {
			regions[region]++
		}
		if item.VerificationValue() == "Verified" {
			verified++
		}
		if y := item.YearsInBusinessValue(); y > 0 {
			years = append(years, float64(y))
		}
		if r := item.SupplierRatingValue(); r > 0 {
			ratings = append(ratings, r)
		}
	}

	if total == 0 {
		return SupplierAnalysis{Error: "No supplier data available"}
	}

	experienced := 0
	for _, y := range years {
		if y >= 10 {
			experienced++
		}
	}
	highRated := 0
	for _, r := range ratings {
		if r >= 4.5 {
			highRated++
		}
	}

	return SupplierAnalysis{
		TotalSuppliers:       total,
		ByCountry:            topLabelCounts(countries, 10),
		ByRegion:             topLabelCounts(regions, len(regions)),
		VerificationRate:     float64(verified) / float64(total) * 100,
		AverageYears:         mean(years),
		ExperiencedSuppliers: experienced,
		AverageRating:        mean(ratings),
		HighRatedSuppliers:   highRated,
	}
}

func analyzeLogistics(items []models.ScrapedItem) LogisticsAnalysis {
	var moqs, leadTimes, shippingCosts []float64

	for i := range items {
		item := &items[i]
		moq := item.MOQValue()
		if moq <= 0 {
			continue
		}
		moqs = append(moqs, float64(moq))
		if lt := item.LeadTimeValue(); lt > 0 {
			leadTimes = append(leadTimes, float64(lt))
		}
		if sc := item.ShippingCostValue(); sc > 0 {
			shippingCosts = append(shippingCosts, sc)
		}
	}

	if len(moqs) == 0 {
		return LogisticsAnalysis{Error: "No logistics data available"}
	}

	out := LogisticsAnalysis{
		MOQAverage:          mean(moqs),
		MOQMedian:           median(moqs),
		MOQRange:            Range{Min: minOf(moqs), Max: maxOf(moqs)},
		AverageLeadTimeDays: mean(leadTimes),
		AverageShippingCost: mean(shippingCosts),
	}
	if len(shippingCosts) > 0 {
		out.ShippingCostRange = Range{Min: minOf(shippingCosts), Max: maxOf(shippingCosts)}
	}

	for _, m := range moqs {
		switch {
		case m <= 100:
			out.SmallBusinessFriendly++
		case m <= 500:
			out.MediumOrders++
		default:
			out.LargeOrders++
		}
	}
	for _, lt := range leadTimes {
		switch {
		case lt <= 7:
			out.FastDelivery++
		case lt <= 21:
			out.StandardDelivery++
		default:
			out.SlowDelivery++
		}
	}

	return out
}

func analyzeQuality(items []models.ScrapedItem) QualityAnalysis {
	var ratings []float64
	certified := 0
	allCerts := make(map[string]struct{})
	var certOrder []string

	for i := range items {
		item := &items[i]
		rating := item.RatingValue()
		if rating <= 0 {
			continue
		}
		ratings = append(ratings, rating)
		certs := item.CertificationsValue()
		if len(certs) > 0 {
			certified++
		}
		for _, c := range certs {
			if _, seen := allCerts[c]; !seen {
				allCerts[c] = struct{}{}
				certOrder = append(certOrder, c)
			}
		}
	}

	if len(ratings) == 0 {
		return QualityAnalysis{Error: "No quality data available"}
	}

	out := QualityAnalysis{
		AverageRating:       mean(ratings),
		TotalCertifications: len(allCerts),
		CertifiedProducts:   certified,
	}
	for _, r := range ratings {
		switch {
		case r >= 4.5:
			out.HighQuality++
		case r >= 4.0:
			out.GoodQuality++
		default:
			out.FairQuality++
		}
	}
	if len(certOrder) > 10 {
		certOrder = certOrder[:10]
	}
	out.CommonCertifications = certOrder

	return out
}

func analyzeTrends(items []models.ScrapedItem) TrendAnalysis {
	priceMovements := make(map[string]int)
	seasonalPatterns := make(map[string]int)
	categoryViews := make(map[string][]float64)

	trending := 0
	for i := range items {
		item := &items[i]
		if item.IsTrending() {
			trending++
		}
		if item.Category == "" {
			continue
		}
		if trend := item.PriceTrendValue(); trend != "" {
			priceMovements[trend]++
		}
		if seasonal := item.SeasonalDemandValue(); seasonal != "" {
			seasonalPatterns[seasonal]++
		}
		if item.Views > 0 {
			categoryViews[item.Category] = append(categoryViews[item.Category], float64(item.Views))
		}
	}

	return TrendAnalysis{
		PriceMovements:          priceMovements,
		SeasonalPatterns:        seasonalPatterns,
		TrendingProducts:        trending,
		TopPerformingCategories: topCategoryAverages(categoryViews, 5),
	}
}

var titleCaser = cases.Title(language.English)

// identifyOpportunities turns the strongest report signals into content
// briefs, highest value first.
func identifyOpportunities(report *Report) []ContentOpportunity {
	var opportunities []ContentOpportunity

	if report.Pricing.Error == "" {
		top := report.Pricing.CategoryPricing
		if len(top) > 3 {
			top = top[:3]
		}
		for _, cp := range top {
			pretty := titleCaser.String(strings.ReplaceAll(cp.Category, "-", " "))
			opportunities = append(opportunities, ContentOpportunity{
				Type:       "price_analysis",
				Title:      fmt.Sprintf("Price Analysis: %s Market Trends", pretty),
				DataPoints: fmt.Sprintf("$%.2f average price analysis", cp.Average),
				ValueScore: 8,
			})
		}
	}

	if report.Suppliers.Error == "" && len(report.Suppliers.ByCountry) > 0 {
		opportunities = append(opportunities, ContentOpportunity{
			Type:       "supplier_guide",
			Title:      fmt.Sprintf("Supplier Guide: Why %s Dominates B2B Manufacturing", report.Suppliers.ByCountry[0].Label),
			DataPoints: fmt.Sprintf("%d suppliers analyzed", report.Suppliers.TotalSuppliers),
			ValueScore: 9,
		})
	}

	if report.Logistics.Error == "" {
		opportunities = append(opportunities, ContentOpportunity{
			Type:       "procurement_guide",
			Title:      fmt.Sprintf("MOQ Strategy: Optimizing Orders from %.0f Unit Minimums", report.Logistics.MOQAverage),
			DataPoints: "MOQ range analysis with cost optimization",
			ValueScore: 7,
		})
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].ValueScore > opportunities[j].ValueScore
	})
	return opportunities
}

func generateReportAlerts(items []models.ScrapedItem) []ReportAlert {
	var alerts []ReportAlert
	if len(items) == 0 {
		return alerts
	}

	rising := 0
	unverified := 0
	for i := range items {
		item := &items[i]
		if item.PriceTrendValue() == "Rising" {
			rising++
		}
		if item.VerificationValue() != "Verified" {
			unverified++
		}
	}

	if float64(rising) > float64(len(items))*0.3 {
		alerts = append(alerts, ReportAlert{
			Type:    "price_alert",
			Level:   "warning",
			Message: fmt.Sprintf("Price increases detected in %d products", rising),
			Action:  "Consider accelerating procurement decisions",
		})
	}

	if float64(unverified) > float64(len(items))*0.4 {
		alerts = append(alerts, ReportAlert{
			Type:    "supplier_alert",
			Level:   "info",
			Message: fmt.Sprintf("%d products from unverified suppliers", unverified),
			Action:  "Review supplier verification requirements",
		})
	}

	return alerts
}

func topCategoryAverages(data map[string][]float64, limit int) []CategoryAverage {
	out := make([]CategoryAverage, 0, len(data))
	for category, values := range data {
		out = append(out, CategoryAverage{Category: category, Average: mean(values)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func topLabelCounts(data map[string]int, limit int) []LabelCount {
	out := make([]LabelCount, 0, len(data))
	for label, count := range data {
		out = append(out, LabelCount{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
