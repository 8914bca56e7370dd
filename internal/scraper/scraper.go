package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/Mwapsam/ubungo-iq/internal/models"
)

// Result is the outcome of one extraction run against a marketplace.
// Per-listing parse failures land in Errors; a non-nil error from Extract
// means the whole run failed (fetch error, block, markup change).
type Result struct {
	Items  []models.NormalizedItem
	Errors []string
}

// Adapter extracts listings from one marketplace.
type Adapter interface {
	Website() string
	Extract(ctx context.Context, source *models.Source) (*Result, error)
}

// Registry maps website identifiers to their adapters.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Website()] = a
	}
	return r
}

// ForWebsite returns the adapter registered for website.
func (r *Registry) ForWebsite(website string) (Adapter, error) {
	a, ok := r.adapters[website]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for website %q", website)
	}
	return a, nil
}

// Websites lists the registered website identifiers.
func (r *Registry) Websites() []string {
	out := make([]string, 0, len(r.adapters))
	for w := range r.adapters {
		out = append(out, w)
	}
	return out
}

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// fetchClient fetches marketplace pages with a per-source request delay so
// adapters stay inside each site's tolerance.
type fetchClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

func newFetchClient(source *models.Source) *fetchClient {
	delay := source.RequestDelaySeconds
	if delay <= 0 {
		delay = 1
	}
	ua := source.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &fetchClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Duration(delay*float64(time.Second))), 1),
		userAgent:  ua,
	}
}

func (c *fetchClient) fetchDocument(ctx context.Context, urlStr string) (*goquery.Document, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL %s: %w", urlStr, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme %s: only http and https allowed", parsedURL.Scheme)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for URL %s: %w", urlStr, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %s: %w", urlStr, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL %s: status code %d", urlStr, res.StatusCode)
	}

	return goquery.NewDocumentFromReader(res.Body)
}
