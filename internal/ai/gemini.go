package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/Mwapsam/ubungo-iq/internal/models"
)

// Client wraps the Gemini API for market-analysis article generation. A nil
// Client is valid and generates nothing, so the pipeline runs without a key.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, modelID string) (*Client, error) {
	if apiKey == "" {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{client: client, model: modelID}, nil
}

// GenerateOutline produces the section plan for one queued request. A low
// temperature keeps the structure stable between runs.
func (c *Client) GenerateOutline(ctx context.Context, req *models.GenerationRequest) (string, error) {
	if c == nil || c.client == nil {
		return "", nil
	}
	return c.generate(ctx, buildOutlinePrompt(req), 0.2)
}

// GenerateArticle produces the article body for one queued request, following
// the outline when the request carries one.
func (c *Client) GenerateArticle(ctx context.Context, req *models.GenerationRequest) (string, error) {
	if c == nil || c.client == nil {
		return "", nil
	}
	return c.generate(ctx, buildPrompt(req), 0.4)
}

func (c *Client) generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return text, nil
}

func buildOutlinePrompt(req *models.GenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Draft a section outline for a B2B market analysis article titled %q.\n\n", req.Title)
	b.WriteString("Audience: procurement managers sourcing from online marketplaces.\n")
	b.WriteString("Return 4-6 markdown headings, each with one line on what the section covers.\n")
	writeObservedData(&b, req)
	return b.String()
}

func buildPrompt(req *models.GenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a B2B market analysis article titled %q.\n\n", req.Title)
	b.WriteString("Audience: procurement managers sourcing from online marketplaces.\n")
	b.WriteString("Tone: practical and data-driven. 600-900 words, markdown headings.\n")

	if req.GeneratedOutline != "" {
		b.WriteString("\nFollow this outline:\n")
		b.WriteString(req.GeneratedOutline)
		b.WriteString("\n")
	}

	writeObservedData(&b, req)

	b.WriteString("\nCover pricing context, supplier considerations, and a short outlook.")
	return b.String()
}

func writeObservedData(b *strings.Builder, req *models.GenerationRequest) {
	if len(req.Context) == 0 {
		return
	}
	b.WriteString("\nObserved data:\n")
	if source, ok := req.Context["source"].(string); ok && source != "" {
		fmt.Fprintf(b, "- Marketplace: %s\n", source)
	}
	if freq, ok := req.Context["frequency"]; ok {
		fmt.Fprintf(b, "- Listings matching the topic this week: %v\n", freq)
	}
	if samples, ok := req.Context["sample_items"].([]string); ok && len(samples) > 0 {
		fmt.Fprintf(b, "- Example listings: %s\n", strings.Join(samples, "; "))
	}
}
