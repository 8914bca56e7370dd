package scraper

import (
	"encoding/json"
	"fmt"

	"github.com/Mwapsam/ubungo-iq/internal/models"
)

// ListingSelectors are the CSS rules an adapter walks to pull fields out of
// a marketplace listing page. Sources can override individual rules through
// their scraping_config JSON blob so markup drift is a config edit.
type ListingSelectors struct {
	SearchPath string `json:"search_path"` // appended to the source base URL

	Container ListingContainer `json:"container"`
	Elements  ListingElements  `json:"elements"`
}

type ListingContainer struct {
	Item           string `json:"item"`
	IgnoreModifier string `json:"ignore_modifier"`
}

type ListingElements struct {
	TitleLink     string `json:"title_link"`
	Price         string `json:"price"`
	OriginalPrice string `json:"original_price"`
	MOQ           string `json:"moq"`
	Orders        string `json:"orders"`
	Rating        string `json:"rating"`
	RatingCount   string `json:"rating_count"`
	Views         string `json:"views"`
	Likes         string `json:"likes"`
	Supplier      string `json:"supplier"`
	Location      string `json:"location"`
	Verified      string `json:"verified"`
	YearsBadge    string `json:"years_badge"`
	Image         string `json:"image"`
	Category      string `json:"category"`
	ProductID     string `json:"product_id_attr"` // attribute on the item node
}

// ResolveSelectors merges the source's scraping_config overrides over the
// built-in defaults for its website. Empty fields keep the default rule.
func ResolveSelectors(source *models.Source) (ListingSelectors, error) {
	sel := DefaultSelectors(source.Website)
	if source.ScrapingConfig == "" {
		return sel, nil
	}

	var override ListingSelectors
	if err := json.Unmarshal([]byte(source.ScrapingConfig), &override); err != nil {
		return ListingSelectors{}, fmt.Errorf("failed to parse scraping config for %s: %w", source.Website, err)
	}

	mergeSelectors(&sel, &override)
	return sel, nil
}

func mergeSelectors(base, override *ListingSelectors) {
	if override.SearchPath != "" {
		base.SearchPath = override.SearchPath
	}
	if override.Container.Item != "" {
		base.Container.Item = override.Container.Item
	}
	if override.Container.IgnoreModifier != "" {
		base.Container.IgnoreModifier = override.Container.IgnoreModifier
	}

	merge := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	merge(&base.Elements.TitleLink, override.Elements.TitleLink)
	merge(&base.Elements.Price, override.Elements.Price)
	merge(&base.Elements.OriginalPrice, override.Elements.OriginalPrice)
	merge(&base.Elements.MOQ, override.Elements.MOQ)
	merge(&base.Elements.Orders, override.Elements.Orders)
	merge(&base.Elements.Rating, override.Elements.Rating)
	merge(&base.Elements.RatingCount, override.Elements.RatingCount)
	merge(&base.Elements.Views, override.Elements.Views)
	merge(&base.Elements.Likes, override.Elements.Likes)
	merge(&base.Elements.Supplier, override.Elements.Supplier)
	merge(&base.Elements.Location, override.Elements.Location)
	merge(&base.Elements.Verified, override.Elements.Verified)
	merge(&base.Elements.YearsBadge, override.Elements.YearsBadge)
	merge(&base.Elements.Image, override.Elements.Image)
	merge(&base.Elements.Category, override.Elements.Category)
	merge(&base.Elements.ProductID, override.Elements.ProductID)
}

// DefaultSelectors returns the built-in rules for a marketplace. Unknown
// websites get a generic listing shape so a new source with a full
// scraping_config works without a code change.
func DefaultSelectors(website string) ListingSelectors {
	switch website {
	case models.WebsiteAlibaba:
		return ListingSelectors{
			SearchPath: "/trade/search?tab=all&SearchText=trending",
			Container: ListingContainer{
				Item:           ".organic-list-offer-outter, .product-card",
				IgnoreModifier: ".ad-card",
			},
			Elements: ListingElements{
				TitleLink:     ".elements-title-normal a, h2.title a",
				Price:         ".elements-offer-price-normal, .price",
				MOQ:           ".element-offer-minorder-normal, .min-order",
				Orders:        ".sale-count, .element-sold",
				Rating:        ".seb-supplier-review-score, .rating",
				RatingCount:   ".seb-supplier-review-count, .rating-count",
				Supplier:      ".organic-list-offer-right .supplier a, .company-name",
				Location:      ".seller-country, .supplier-location",
				Verified:      ".verified-supplier-icon, .badge-verified",
				YearsBadge:    ".supplier-year, .years-badge",
				Image:         ".seb-img-switcher img, .product-image img",
				ProductID:     "data-p4p-id",
			},
		}
	case models.WebsiteGlobalTrade:
		return ListingSelectors{
			SearchPath: "/suppliers/trending",
			Container: ListingContainer{
				Item: ".supplier-listing, .listing-row",
			},
			Elements: ListingElements{
				TitleLink:  ".listing-title a",
				Price:      ".listing-price",
				MOQ:        ".listing-moq",
				Supplier:   ".listing-company",
				Location:   ".listing-country",
				Verified:   ".listing-verified",
				YearsBadge: ".listing-years",
				Category:   ".listing-category",
				Image:      ".listing-image img",
				ProductID:  "data-listing-id",
			},
		}
	case models.WebsiteEtsy:
		return ListingSelectors{
			SearchPath: "/c/trending",
			Container: ListingContainer{
				Item: ".listing-link-card, li.wt-list-unstyled div[data-listing-id]",
			},
			Elements: ListingElements{
				TitleLink:   "a.listing-link, h3 a",
				Price:       ".currency-value, .lc-price",
				Rating:      ".stars-svg, .review-rating",
				RatingCount: ".review-count, .wt-text-caption span",
				Likes:       ".favorite-count",
				Supplier:    ".shop-name, .v2-listing-card__shop p",
				Image:       "img.listing-image, .placeholder img",
				ProductID:   "data-listing-id",
			},
		}
	default:
		return ListingSelectors{
			SearchPath: "/",
			Container:  ListingContainer{Item: ".listing"},
			Elements: ListingElements{
				TitleLink: "a",
				Price:     ".price",
			},
		}
	}
}
