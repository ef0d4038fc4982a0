// Package interfaces defines service contracts for Vigil
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/vigil/internal/models"
)

// BrokerClient provides access to one brokerage account
type BrokerClient interface {
	// Account returns the account label (e.g. "invest", "isa")
	Account() string

	// GetPositions retrieves open positions with normalised tickers
	GetPositions(ctx context.Context) ([]models.Position, error)

	// GetCash retrieves the account balance
	GetCash(ctx context.Context) (*models.AccountCash, error)
}

// MarketDataClient provides daily price history
type MarketDataClient interface {
	// GetEOD retrieves end-of-day bars, newest first
	GetEOD(ctx context.Context, ticker string, opts ...EODOption) ([]models.EODBar, error)
}

// EODOption configures EOD data requests
type EODOption func(*EODParams)

// EODParams holds EOD query parameters
type EODParams struct {
	From     time.Time
	To       time.Time
	Exchange string
}

// WithDateRange sets the date range for EOD query
func WithDateRange(from, to time.Time) EODOption {
	return func(p *EODParams) {
		p.From = from
		p.To = to
	}
}

// WithExchange overrides the exchange suffix for the ticker
func WithExchange(exchange string) EODOption {
	return func(p *EODParams) {
		p.Exchange = exchange
	}
}

// SearchClient provides web and news search
type SearchClient interface {
	// Search runs a query and returns ranked results
	Search(ctx context.Context, query string, opts ...SearchOption) ([]models.NewsItem, error)
}

// SearchOption configures search requests
type SearchOption func(*SearchParams)

// SearchParams holds search query parameters
type SearchParams struct {
	MaxResults int
	Topic      string // "general" or "news"
	Depth      string // "basic" or "advanced"
}

// WithMaxResults caps the number of results
func WithMaxResults(n int) SearchOption {
	return func(p *SearchParams) {
		p.MaxResults = n
	}
}

// WithTopic sets the search topic
func WithTopic(topic string) SearchOption {
	return func(p *SearchParams) {
		p.Topic = topic
	}
}

// WithDepth sets the search depth
func WithDepth(depth string) SearchOption {
	return func(p *SearchParams) {
		p.Depth = depth
	}
}

// GeminiClient provides access to Gemini API
type GeminiClient interface {
	// GenerateWithURLContext generates content using URL context
	GenerateWithURLContext(ctx context.Context, prompt string, urls []string) (string, error)
}

// Notifier delivers messages and attachments to a chat channel
type Notifier interface {
	// SendMessage posts text, splitting it if it exceeds the channel limit
	SendMessage(ctx context.Context, content string) error

	// SendFile posts a file attachment with an optional caption
	SendFile(ctx context.Context, content, filename string, data []byte) error
}

// DocumentFetcher downloads remote documents such as filing PDFs
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
