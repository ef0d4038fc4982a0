// Package common provides shared utilities for Vigil
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Vigil
type Config struct {
	Environment string           `toml:"environment"`
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Clients     ClientsConfig    `toml:"clients"`
	Analysis    AnalysisConfig   `toml:"analysis"`
	Confidence  ConfidenceConfig `toml:"confidence"`
	Schedule    ScheduleConfig   `toml:"schedule"`
	Logging     LoggingConfig    `toml:"logging"`
}

// ServerConfig holds HTTP server configuration for serve mode
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"min=1,max=65535"`
}

// StorageConfig holds snapshot storage configuration
type StorageConfig struct {
	Path     string `toml:"path" validate:"required"`
	Versions int    `toml:"versions" validate:"min=0"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Trading212 Trading212Config `toml:"trading212"`
	EODHD      EODHDConfig      `toml:"eodhd"`
	Tavily     TavilyConfig     `toml:"tavily"`
	Gemini     GeminiConfig     `toml:"gemini"`
	Discord    DiscordConfig    `toml:"discord"`
}

// Trading212Config holds brokerage credentials for both accounts
type Trading212Config struct {
	BaseURL      string `toml:"base_url" validate:"required,url"`
	InvestKey    string `toml:"invest_key"`
	InvestSecret string `toml:"invest_secret"`
	ISAKey       string `toml:"isa_key"`
	ISASecret    string `toml:"isa_secret"`
	RateLimit    int    `toml:"rate_limit" validate:"min=1"`
	Timeout      string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *Trading212Config) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 10*time.Second)
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url" validate:"required,url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit" validate:"min=1"`
	Timeout   string `toml:"timeout"`
	History   int    `toml:"history_days" validate:"min=50"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 30*time.Second)
}

// TavilyConfig holds Tavily search API configuration
type TavilyConfig struct {
	BaseURL   string `toml:"base_url" validate:"required,url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit" validate:"min=1"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *TavilyConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 30*time.Second)
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// DiscordConfig holds Discord bot configuration
type DiscordConfig struct {
	BaseURL   string `toml:"base_url" validate:"required,url"`
	Token     string `toml:"token"`
	ChannelID string `toml:"channel_id"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *DiscordConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 15*time.Second)
}

// Enabled reports whether both token and channel are configured
func (c *DiscordConfig) Enabled() bool {
	return c.Token != "" && c.ChannelID != ""
}

// AnalysisConfig holds the static lookups the daily run relies on
type AnalysisConfig struct {
	// WatchList is analysed when the broker returns no positions.
	WatchList    []string          `toml:"watch_list"`
	CompanyNames map[string]string `toml:"company_names"`
	Exchanges    map[string]string `toml:"exchanges"`
	Sectors      map[string]string `toml:"sectors"`
	NewsResults  int               `toml:"news_results" validate:"min=0"`
	AlertHighRSI float64           `toml:"alert_high_rsi" validate:"gte=0,lte=100"`
	AlertLowRSI  float64           `toml:"alert_low_rsi" validate:"gte=0,lte=100"`
}

// CompanyName returns the configured display name for a ticker, or the ticker itself.
func (c *AnalysisConfig) CompanyName(ticker string) string {
	if name, ok := c.CompanyNames[ticker]; ok && name != "" {
		return name
	}
	return ticker
}

// Sector returns the configured sector for a ticker, or "Other".
func (c *AnalysisConfig) Sector(ticker string) string {
	if s, ok := c.Sectors[ticker]; ok && s != "" {
		return s
	}
	return "Other"
}

// ConfidenceConfig holds the synthesis weights
type ConfidenceConfig struct {
	TechnicalWeight   float64 `toml:"technical_weight" validate:"gte=0,lte=1"`
	FundamentalWeight float64 `toml:"fundamental_weight" validate:"gte=0,lte=1"`
	SentimentWeight   float64 `toml:"sentiment_weight" validate:"gte=0,lte=1"`
	Workers           int     `toml:"workers" validate:"min=1"`
}

// ScheduleConfig holds the cron schedule for serve mode
type ScheduleConfig struct {
	Cron     string `toml:"cron" validate:"required"`
	Timezone string `toml:"timezone" validate:"required"`
}

// Location loads the configured timezone, falling back to UTC.
func (c *ScheduleConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=console json"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path:     "data",
			Versions: 3,
		},
		Clients: ClientsConfig{
			Trading212: Trading212Config{
				BaseURL:   "https://live.trading212.com",
				RateLimit: 1,
				Timeout:   "10s",
			},
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
				History:   400,
			},
			Tavily: TavilyConfig{
				BaseURL:   "https://api.tavily.com",
				RateLimit: 2,
				Timeout:   "30s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
			Discord: DiscordConfig{
				BaseURL: "https://discord.com/api/v10",
				Timeout: "15s",
			},
		},
		Analysis: AnalysisConfig{
			WatchList: []string{
				"MSFT", "NVDA", "META", "GOOGL", "AMD", "ASML", "AVGO", "AMZN", "UBER", "ORCL", "TTD",
				"NWG", "BARC",
				"CELH", "NBIS", "ZENA", "ALT",
				"VUSA", "VFEM", "COPX",
			},
			CompanyNames: map[string]string{
				"MSFT": "Microsoft", "NVDA": "NVIDIA", "META": "Meta Facebook",
				"GOOGL": "Alphabet Google", "AMD": "AMD", "ASML": "ASML",
				"AVGO": "Broadcom", "AMZN": "Amazon", "UBER": "Uber",
				"ORCL": "Oracle", "TTD": "Trade Desk", "NWG": "NatWest",
				"BARC": "Barclays", "CELH": "Celsius Holdings", "NBIS": "Nebius",
				"ZENA": "ZenaTech", "ALT": "Altimmune", "VUSA": "Vanguard S&P 500",
				"VFEM": "Vanguard EM", "COPX": "Copper Miners",
			},
			Exchanges: map[string]string{
				"NWG": "LSE", "BARC": "LSE", "VUSA": "LSE", "VFEM": "LSE", "COPX": "LSE",
			},
			Sectors: map[string]string{
				"MSFT": "Technology", "NVDA": "Technology", "META": "Technology",
				"GOOGL": "Technology", "AMD": "Technology", "ASML": "Technology",
				"AVGO": "Technology", "AMZN": "Consumer Discretionary", "UBER": "Technology",
				"ORCL": "Technology", "TTD": "Technology", "NWG": "Financial",
				"BARC": "Financial", "CELH": "Consumer Staples", "NBIS": "Technology",
				"ZENA": "Industrials", "ALT": "Healthcare", "VUSA": "ETF (S&P 500)",
				"VFEM": "ETF (Emerging Markets)", "COPX": "Commodities (Copper)",
			},
			NewsResults:  2,
			AlertHighRSI: 65,
			AlertLowRSI:  35,
		},
		Confidence: ConfidenceConfig{
			TechnicalWeight:   0.40,
			FundamentalWeight: 0.35,
			SentimentWeight:   0.25,
			Workers:           4,
		},
		Schedule: ScheduleConfig{
			Cron:     "0 9 * * *",
			Timezone: "Europe/London",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks field constraints declared on the config structs.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VIGIL_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("VIGIL_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("VIGIL_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("VIGIL_LOG_LEVEL"); level != "" {
		config.Logging.Level = strings.ToLower(level)
	}

	if path := os.Getenv("VIGIL_DATA_PATH"); path != "" {
		config.Storage.Path = filepath.Clean(path)
	}

	if cron := os.Getenv("VIGIL_SCHEDULE"); cron != "" {
		config.Schedule.Cron = cron
	}

	// Credential lookups keep the variable names the job has always used
	setFromEnv(&config.Clients.Trading212.InvestKey, "T212_INVEST_KEY")
	setFromEnv(&config.Clients.Trading212.InvestSecret, "T212_INVEST_SECRET")
	setFromEnv(&config.Clients.Trading212.ISAKey, "T212_ISA_KEY")
	setFromEnv(&config.Clients.Trading212.ISASecret, "T212_ISA_SECRET")
	setFromEnv(&config.Clients.Tavily.APIKey, "TAVILY_API_KEY")
	setFromEnv(&config.Clients.EODHD.APIKey, "EODHD_API_KEY", "VIGIL_EODHD_API_KEY")
	setFromEnv(&config.Clients.Gemini.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	setFromEnv(&config.Clients.Discord.Token, "DISCORD_TOKEN")
	setFromEnv(&config.Clients.Discord.ChannelID, "DISCORD_CHANNEL_ID")
}

// setFromEnv assigns the first non-empty environment variable to dst.
func setFromEnv(dst *string, names ...string) {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			*dst = v
			return
		}
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
