// Package trading212 provides a client for the Trading 212 public API
package trading212

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/interfaces"
	"github.com/bobmcallan/vigil/internal/models"
)

const (
	DefaultBaseURL   = "https://live.trading212.com"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 1 // requests per second
)

// Client implements the BrokerClient interface for one account
type Client struct {
	account    string
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

var _ interfaces.BrokerClient = (*Client)(nil)

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

// NewClient creates a client for the named account using key/secret basic auth
func NewClient(account, apiKey, apiSecret string, opts ...ClientOption) *Client {
	c := &Client{
		account:   account,
		baseURL:   DefaultBaseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
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

// Account returns the account label
func (c *Client) Account() string {
	return c.account
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Trading212 API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(c.apiKey + ":" + c.apiSecret))
	req.Header.Set("Authorization", "Basic "+credentials)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("account", c.account).Str("url", path).Msg("Trading212 API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

type positionData struct {
	Instrument struct {
		Ticker       string `json:"ticker"`
		Name         string `json:"name"`
		CurrencyCode string `json:"currencyCode"`
	} `json:"instrument"`
	Quantity         float64 `json:"quantity"`
	AveragePricePaid float64 `json:"averagePricePaid"`
	CurrentPrice     float64 `json:"currentPrice"`
	WalletImpact     struct {
		CurrentValue float64 `json:"currentValue"`
	} `json:"walletImpact"`
}

// GetPositions retrieves open positions with tickers normalised by ParseTicker
func (c *Client) GetPositions(ctx context.Context) ([]models.Position, error) {
	var data []positionData
	if err := c.get(ctx, "/api/v0/equity/positions", &data); err != nil {
		return nil, err
	}

	positions := make([]models.Position, 0, len(data))
	for _, p := range data {
		value := p.WalletImpact.CurrentValue
		if value == 0 {
			value = p.Quantity * p.CurrentPrice
		}
		positions = append(positions, models.Position{
			Ticker:       ParseTicker(p.Instrument.Ticker),
			TickerFull:   p.Instrument.Ticker,
			CompanyName:  p.Instrument.Name,
			Currency:     p.Instrument.CurrencyCode,
			Quantity:     p.Quantity,
			AveragePrice: p.AveragePricePaid,
			CurrentPrice: p.CurrentPrice,
			TotalValue:   value,
		})
	}

	c.logger.Debug().Str("account", c.account).Int("positions", len(positions)).Msg("Positions fetched")
	return positions, nil
}

type cashData struct {
	Free     float64 `json:"free"`
	Total    float64 `json:"total"`
	Invested float64 `json:"invested"`
	PPL      float64 `json:"ppl"`
	Result   float64 `json:"result"`
	Blocked  float64 `json:"blocked"`
}

// GetCash retrieves the account balance
func (c *Client) GetCash(ctx context.Context) (*models.AccountCash, error) {
	var data cashData
	if err := c.get(ctx, "/api/v0/equity/account/cash", &data); err != nil {
		return nil, err
	}

	return &models.AccountCash{
		Free:     data.Free,
		Total:    data.Total,
		Invested: data.Invested,
		PPL:      data.PPL,
		Result:   data.Result,
		Blocked:  data.Blocked,
	}, nil
}
