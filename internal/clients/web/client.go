// Package web provides a plain HTTP document fetcher for filing downloads
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/interfaces"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 2                // requests per second
	DefaultMaxSize   = 50 * 1024 * 1024 // 50MB
	userAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Client implements the DocumentFetcher interface
type Client struct {
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	maxSize    int64
}

var _ interfaces.DocumentFetcher = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

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

// WithMaxSize caps the number of bytes read from a response body
func WithMaxSize(n int64) ClientOption {
	return func(c *Client) {
		c.maxSize = n
	}
}

// NewClient creates a document fetcher. Cookies persist across requests so
// IR sites that set a session cookie on redirect still serve the file.
func NewClient(opts ...ClientOption) *Client {
	jar, _ := cookiejar.New(nil)

	c := &Client{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		maxSize: DefaultMaxSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch downloads a document and returns its body
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/pdf,*/*")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", url).Dur("elapsed", elapsed).Msg("Document fetch failed")
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("document download failed with status: %d", resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, c.maxSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read document content: %w", err)
	}

	c.logger.Debug().Str("url", url).Int("size", len(content)).Dur("elapsed", elapsed).Msg("Fetched document")

	return content, nil
}
