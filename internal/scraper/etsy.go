package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"golang.org/x/net/html"

	"github.com/Mwapsam/ubungo-iq/internal/models"
)

// EtsyAdapter extracts handmade-goods listings. Etsy assembles its listing
// grid client-side, so the page is rendered in a headless browser before the
// markup is walked.
type EtsyAdapter struct {
	renderTimeout time.Duration
}

func NewEtsyAdapter() *EtsyAdapter {
	return &EtsyAdapter{renderTimeout: 90 * time.Second}
}

func (a *EtsyAdapter) Website() string {
	return models.WebsiteEtsy
}

func (a *EtsyAdapter) Extract(ctx context.Context, source *models.Source) (*Result, error) {
	sel, err := ResolveSelectors(source)
	if err != nil {
		return nil, err
	}

	pageURL := strings.TrimSuffix(source.BaseURL, "/") + sel.SearchPath
	slog.Info("Rendering listing page", "website", a.Website(), "url", pageURL)

	rendered, err := a.renderPage(ctx, source, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to render listing page: %w", err)
	}

	return a.parseRendered(rendered, source, sel, pageURL)
}

// parseRendered walks rendered page HTML. Split out from Extract so the
// markup handling is testable without a browser.
func (a *EtsyAdapter) parseRendered(rendered string, source *models.Source, sel ListingSelectors, pageURL string) (*Result, error) {
	root, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered HTML: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	if doc.Find(sel.Container.Item).Length() == 0 {
		return nil, fmt.Errorf("no %q elements found on %s. Potential block or page structure change", sel.Container.Item, pageURL)
	}

	return parseListings(doc, source, sel), nil
}

func (a *EtsyAdapter) renderPage(ctx context.Context, source *models.Source, pageURL string) (string, error) {
	ua := source.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(ua),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, a.renderTimeout)
	defer cancelTimeout()

	var rendered string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(time.Duration(source.RequestDelaySeconds*float64(time.Second))),
		chromedp.OuterHTML("html", &rendered),
	)
	if err != nil {
		return "", err
	}
	return rendered, nil
}
