package models

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrItemExists is returned when attempting to create an item that already exists.
var ErrItemExists = errors.New("item already exists")

// PriceTier is one row of a bulk-pricing ladder.
type PriceTier struct {
	MinQuantity int     `firestore:"minQuantity" json:"min_quantity"`
	Price       float64 `firestore:"price" json:"price"`
}

// SampleItem is a lightweight item reference stored on trending topics.
type SampleItem struct {
	ID    string `firestore:"id" json:"id"`
	Title string `firestore:"title" json:"title"`
	URL   string `firestore:"url" json:"url"`
	Price string `firestore:"price" json:"price"`
}

// NormalizedItem is the common shape every extraction adapter must emit.
// Numeric zero values mean "not observed": adapters leave fields they could
// not extract at zero, and the ingestion engine treats zero as absent when
// deciding what to overwrite. Slice fields are nil when not observed and
// non-nil (possibly empty) when the adapter extracted them.
type NormalizedItem struct {
	ExternalID  string `validate:"required"`
	URL         string `validate:"required,url"`
	Title       string `validate:"required"`
	Description string
	Category    string
	Tags        string

	CurrentPrice       float64
	OriginalPrice      float64
	DiscountPercentage float64
	PriceCurrency      string
	BulkPricingTiers   []PriceTier

	MinimumOrderQuantity int
	OrderUnits           string
	LeadTimeDays         int

	Material        string
	Dimensions      string
	Certifications  []string
	ColorOptions    []string
	ProductFeatures []string

	Rating           float64
	RatingCount      int
	ReviewHighlights []string
	CommonComplaints []string

	SupplierName           string
	SupplierLocation       string
	SupplierCountry        string
	SupplierRegion         string
	YearsInBusiness        int
	VerificationStatus     string
	SupplierCertifications []string
	SupplierRating         float64

	Views        int
	Likes        int
	Sales        int
	RecentOrders int
	TrendingRank int

	SearchKeywords []string
	SeasonalDemand string
	PriceTrend     string

	ShippingCost    float64
	ShippingMethods []string
	PortOfShipment  string

	ImageURLs []string
	VideoURLs []string

	RawData map[string]any
}

// ScrapedItem is one persisted listing. Identity is (SourceWebsite,
// ExternalID); re-sightings update the record in place. The pipeline never
// hard-deletes items itself (trimming is a storage retention policy).
type ScrapedItem struct {
	DocID         string `firestore:"-"`
	SourceWebsite string `firestore:"sourceWebsite"`
	ExternalID    string `firestore:"externalID"`

	URL         string `firestore:"url"`
	Title       string `firestore:"title"`
	Description string `firestore:"description,omitempty"`
	Category    string `firestore:"category,omitempty"`
	Tags        string `firestore:"tags,omitempty"`

	CurrentPrice       float64     `firestore:"currentPrice,omitempty"`
	OriginalPrice      float64     `firestore:"originalPrice,omitempty"`
	DiscountPercentage float64     `firestore:"discountPercentage,omitempty"`
	PriceCurrency      string      `firestore:"priceCurrency,omitempty"`
	BulkPricingTiers   []PriceTier `firestore:"bulkPricingTiers,omitempty"`

	MinimumOrderQuantity int    `firestore:"minimumOrderQuantity,omitempty"`
	OrderUnits           string `firestore:"orderUnits,omitempty"`
	LeadTimeDays         int    `firestore:"leadTimeDays,omitempty"`

	Material        string   `firestore:"material,omitempty"`
	Dimensions      string   `firestore:"dimensions,omitempty"`
	Certifications  []string `firestore:"certifications,omitempty"`
	ColorOptions    []string `firestore:"colorOptions,omitempty"`
	ProductFeatures []string `firestore:"productFeatures,omitempty"`

	Rating           float64  `firestore:"rating,omitempty"`
	RatingCount      int      `firestore:"ratingCount,omitempty"`
	ReviewHighlights []string `firestore:"reviewHighlights,omitempty"`
	CommonComplaints []string `firestore:"commonComplaints,omitempty"`

	SupplierName           string   `firestore:"supplierName,omitempty"`
	SupplierLocation       string   `firestore:"supplierLocation,omitempty"`
	SupplierCountry        string   `firestore:"supplierCountry,omitempty"`
	SupplierRegion         string   `firestore:"supplierRegion,omitempty"`
	YearsInBusiness        int      `firestore:"yearsInBusiness,omitempty"`
	VerificationStatus     string   `firestore:"verificationStatus,omitempty"`
	SupplierCertifications []string `firestore:"supplierCertifications,omitempty"`
	SupplierRating         float64  `firestore:"supplierRating,omitempty"`

	Views        int `firestore:"views,omitempty"`
	Likes        int `firestore:"likes,omitempty"`
	Sales        int `firestore:"sales,omitempty"`
	RecentOrders int `firestore:"recentOrders,omitempty"`
	TrendingRank int `firestore:"trendingRank,omitempty"`

	SearchKeywords []string `firestore:"searchKeywords,omitempty"`
	SeasonalDemand string   `firestore:"seasonalDemand,omitempty"`
	PriceTrend     string   `firestore:"priceTrend,omitempty"`

	ShippingCost    float64  `firestore:"shippingCost,omitempty"`
	ShippingMethods []string `firestore:"shippingMethods,omitempty"`
	PortOfShipment  string   `firestore:"portOfShipment,omitempty"`

	ImageURLs []string `firestore:"imageURLs,omitempty"`
	VideoURLs []string `firestore:"videoURLs,omitempty"`

	RawData map[string]any `firestore:"rawData,omitempty"`

	ContentGenerated bool `firestore:"contentGenerated"`

	ScrapedAt time.Time `firestore:"scrapedAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// ItemDocID derives the stable storage identity for (website, externalID).
// Hashing keeps marketplace IDs with arbitrary characters safe to use as
// document IDs.
func ItemDocID(website, externalID string) string {
	sum := sha256.Sum256([]byte(website + "|" + externalID))
	return hex.EncodeToString(sum[:])
}

// IsTrending is a cheap popularity heuristic used by dashboard snapshots.
func (i *ScrapedItem) IsTrending() bool {
	if i.Views == 0 && i.Likes == 0 && i.Sales == 0 {
		return false
	}
	score := i.Views + i.Likes*2 + i.Sales*5
	return score > 100
}
