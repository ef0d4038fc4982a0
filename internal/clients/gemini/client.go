// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/interfaces"
)

const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultMaxURLs = 20
)

// Client implements the GeminiClient interface
type Client struct {
	client  *genai.Client
	model   string
	maxURLs int
	logger  *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxURLs sets the maximum URLs for URL context
func WithMaxURLs(maxURLs int) ClientOption {
	return func(c *Client) {
		c.maxURLs = maxURLs
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client:  genaiClient,
		model:   DefaultModel,
		maxURLs: DefaultMaxURLs,
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GenerateWithURLContext generates content using Gemini's URL context tool.
// The urls are listed ahead of the prompt as references.
func (c *Client) GenerateWithURLContext(ctx context.Context, prompt string, urls []string) (string, error) {
	if len(urls) > c.maxURLs {
		urls = urls[:c.maxURLs]
	}

	c.logger.Debug().Str("model", c.model).Int("urls", len(urls)).Msg("Generating content with URL context")

	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{URLContext: &genai.URLContext{}}},
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(withReferences(prompt, urls)), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content with URL context: %w", err)
	}

	return extractTextFromResponse(result)
}

// withReferences prepends a reference URL list to the prompt
func withReferences(prompt string, urls []string) string {
	if len(urls) == 0 {
		return prompt
	}

	var sb strings.Builder
	sb.WriteString("Reference URLs:\n")
	for _, u := range urls {
		sb.WriteString("- ")
		sb.WriteString(u)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(prompt)
	return sb.String()
}

// extractTextFromResponse joins the text parts of the first candidate
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	return sb.String(), nil
}

// Ensure Client implements GeminiClient
var _ interfaces.GeminiClient = (*Client)(nil)
