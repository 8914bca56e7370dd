package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/Mwapsam/ubungo-iq/internal/models"
	"github.com/Mwapsam/ubungo-iq/internal/util"
)

const (
	colorLow      = 3092790  // #2F3136
	colorMedium   = 16753920 // #FFA500
	colorHigh     = 16711680 // #FF0000
	colorCritical = 10038562 // #992D22

	// One message carries at most this many embeds.
	maxEmbedsPerMessage = 10

	// Medium alerts are a digest, not a list; only the top few are sent.
	mediumAlertLimit = 5

	// Each message is retried this many times before the batch is abandoned.
	postAttempts = 3
)

type Client struct {
	webhookURL  string
	client      *http.Client
	limiter     *rate.Limiter
	maxAttempts int
}

func New(webhookURL string) *Client {
	return &Client{
		webhookURL:  webhookURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		limiter:     rate.NewLimiter(rate.Every(2*time.Second), 1),
		maxAttempts: postAttempts,
	}
}

// SendAlerts posts one notification batch. Critical and high alerts are each
// listed in full; medium alerts are capped at the top five. Low alerts are
// never sent. A missing webhook URL makes this a no-op so the pipeline runs
// without a configured channel.
func (c *Client) SendAlerts(ctx context.Context, alerts []models.MarketAlert) error {
	if c.webhookURL == "" || len(alerts) == 0 {
		return nil
	}

	var critical, high, medium []models.MarketAlert
	for i := range alerts {
		switch alerts[i].Level {
		case models.LevelCritical:
			critical = append(critical, alerts[i])
		case models.LevelHigh:
			high = append(high, alerts[i])
		case models.LevelMedium:
			medium = append(medium, alerts[i])
		}
	}
	if len(medium) > mediumAlertLimit {
		medium = medium[:mediumAlertLimit]
	}

	included := len(critical) + len(high) + len(medium)
	if included == 0 {
		return nil
	}

	var content string
	if len(critical) > 0 {
		content = fmt.Sprintf("CRITICAL Market Alert: %d critical issues", len(critical))
	} else {
		content = fmt.Sprintf("Market Alert: %d alerts detected", included)
	}

	embeds := make([]webhookEmbed, 0, included)
	for _, group := range [][]models.MarketAlert{critical, high, medium} {
		for i := range group {
			embeds = append(embeds, formatAlertEmbed(&group[i]))
		}
	}

	// The content header goes only on the first message of the batch.
	for len(embeds) > 0 {
		chunk := embeds
		if len(chunk) > maxEmbedsPerMessage {
			chunk = chunk[:maxEmbedsPerMessage]
		}
		embeds = embeds[len(chunk):]
		if err := c.post(ctx, content, chunk); err != nil {
			return err
		}
		content = ""
	}
	return nil
}

type webhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []webhookEmbed `json:"embeds"`
}

type webhookEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type webhookEmbedFooter struct {
	Text string `json:"text,omitempty"`
}

type webhookEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Fields      []webhookEmbedField `json:"fields,omitempty"`
	Footer      webhookEmbedFooter  `json:"footer,omitempty"`
}

func formatAlertEmbed(alert *models.MarketAlert) webhookEmbed {
	embed := webhookEmbed{
		Title:       alert.Title,
		Description: alert.Message,
		Color:       levelColor(alert.Level),
		Footer:      webhookEmbedFooter{Text: string(alert.Type)},
	}
	if !alert.CreatedAt.IsZero() {
		embed.Timestamp = alert.CreatedAt.Format(time.RFC3339)
	}
	if alert.ActionRequired != "" {
		embed.Fields = append(embed.Fields, webhookEmbedField{
			Name:  "Action",
			Value: alert.ActionRequired,
		})
	}
	if alert.AffectedProducts > 0 {
		embed.Fields = append(embed.Fields, webhookEmbedField{
			Name:   "Affected products",
			Value:  fmt.Sprintf("%d", alert.AffectedProducts),
			Inline: true,
		})
	}
	if alert.UrgencyScore > 0 {
		embed.Fields = append(embed.Fields, webhookEmbedField{
			Name:   "Urgency",
			Value:  fmt.Sprintf("%d", alert.UrgencyScore),
			Inline: true,
		})
	}
	return embed
}

func levelColor(level models.AlertLevel) int {
	switch level {
	case models.LevelCritical:
		return colorCritical
	case models.LevelHigh:
		return colorHigh
	case models.LevelMedium:
		return colorMedium
	default:
		return colorLow
	}
}

// post delivers one message, retrying transient failures with exponential
// backoff. The rate limiter gates every attempt, not just the first.
func (c *Client) post(ctx context.Context, content string, embeds []webhookEmbed) error {
	payload := webhookPayload{Content: content, Embeds: embeds}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	parsedURL, err := url.Parse(c.webhookURL)
	if err != nil {
		return err
	}
	q := parsedURL.Query()
	q.Set("wait", "true")
	parsedURL.RawQuery = q.Encode()
	postURL := parsedURL.String()

	return util.RetryWithBackoff(ctx, c.maxAttempts, func(int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, "POST", postURL, bytes.NewReader(payloadBytes))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook status: %s, body: %s", resp.Status, string(bodyBytes))
	})
}
