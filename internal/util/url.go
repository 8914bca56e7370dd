package util

import (
	"net/url"
	"strings"
)

// trackingParams are stripped before a listing URL is stored, so the same
// listing reached through different campaigns dedupes to one document.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"spm", "ref", "gclid", "fbclid",
}

// NormalizeListingURL resolves href against the marketplace base URL and
// strips tracking parameters. Returns the input unchanged when it cannot be
// parsed.
func NormalizeListingURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if !u.IsAbs() {
		base, err := url.Parse(baseURL)
		if err != nil {
			return href
		}
		u = base.ResolveReference(u)
	}

	q := u.Query()
	for _, p := range trackingParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	u.Fragment = ""

	return u.String()
}
