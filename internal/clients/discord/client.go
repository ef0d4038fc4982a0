// Package discord provides a bot client for posting to a Discord channel
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/interfaces"
)

const (
	DefaultBaseURL   = "https://discord.com/api/v10"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 1 // requests per second

	// MaxMessageLength is Discord's content limit per message
	MaxMessageLength = 2000
)

// Client implements the Notifier interface for one channel
type Client struct {
	baseURL    string
	token      string
	channelID  string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

var _ interfaces.Notifier = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a bot client posting to channelID
func NewClient(token, channelID string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		token:     token,
		channelID: channelID,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Discord API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

type messagePayload struct {
	Content string `json:"content"`
}

// SendMessage posts content, split into chunks that fit the message limit
func (c *Client) SendMessage(ctx context.Context, content string) error {
	chunks := SplitMessage(content, MaxMessageLength)
	for i, chunk := range chunks {
		body, err := json.Marshal(messagePayload{Content: chunk})
		if err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
		if err := c.post(ctx, "application/json", body); err != nil {
			return fmt.Errorf("message part %d/%d: %w", i+1, len(chunks), err)
		}
	}

	c.logger.Info().Int("parts", len(chunks)).Int("length", len(content)).Msg("Message sent to Discord")
	return nil
}

// SendFile posts a file attachment with an optional caption
func (c *Client) SendFile(ctx context.Context, content, filename string, data []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	payload, err := json.Marshal(messagePayload{Content: content})
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	if err := w.WriteField("payload_json", string(payload)); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}

	part, err := w.CreateFormFile("files[0]", filename)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close multipart body: %w", err)
	}

	if err := c.post(ctx, w.FormDataContentType(), buf.Bytes()); err != nil {
		return err
	}

	c.logger.Info().Str("file", filename).Int("size", len(data)).Msg("File sent to Discord")
	return nil
}

// post performs a rate-limited POST to the channel messages endpoint
func (c *Client) post(ctx context.Context, contentType string, body []byte) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	path := fmt.Sprintf("/channels/%s/messages", c.channelID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Content-Type", contentType)

	c.logger.Debug().Str("channel", c.channelID).Int("bytes", len(body)).Msg("Discord API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(msg),
			Endpoint:   path,
		}
	}

	return nil
}

// SplitMessage breaks content into chunks of at most limit bytes, cutting on
// line boundaries where possible. Lines longer than limit are hard-split.
func SplitMessage(content string, limit int) []string {
	if len(content) <= limit {
		return []string{content}
	}

	var chunks []string
	var current []string
	size := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = current[:0]
			size = 0
		}
	}

	for _, line := range strings.Split(content, "\n") {
		for len(line) > limit {
			flush()
			cut := limit
			// Do not cut through a multi-byte rune
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}

		needed := len(line)
		if len(current) > 0 {
			needed++
		}
		if len(current) > 0 && size+needed > limit {
			flush()
			needed = len(line)
		}
		current = append(current, line)
		size += needed
	}
	flush()

	return chunks
}
