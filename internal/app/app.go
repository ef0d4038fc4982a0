// Package app wires configuration, clients and services into the daily
// analysis pipeline shared by every command.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/vigil/internal/clients/discord"
	"github.com/bobmcallan/vigil/internal/clients/eodhd"
	"github.com/bobmcallan/vigil/internal/clients/gemini"
	"github.com/bobmcallan/vigil/internal/clients/tavily"
	"github.com/bobmcallan/vigil/internal/clients/trading212"
	"github.com/bobmcallan/vigil/internal/clients/web"
	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/confidence"
	"github.com/bobmcallan/vigil/internal/interfaces"
	"github.com/bobmcallan/vigil/internal/services/charts"
	"github.com/bobmcallan/vigil/internal/services/fundamentals"
	"github.com/bobmcallan/vigil/internal/services/synthesis"
	"github.com/bobmcallan/vigil/internal/services/tracker"
	"github.com/bobmcallan/vigil/internal/storage"
)

// App holds all initialized clients and services.
type App struct {
	Config  *common.Config
	Logger  *common.Logger
	Store   interfaces.SnapshotStore
	Metrics *common.Metrics

	Brokers  []interfaces.BrokerClient
	Market   interfaces.MarketDataClient
	Search   interfaces.SearchClient
	Gemini   interfaces.GeminiClient
	Notifier interfaces.Notifier

	TrackerService      interfaces.TrackerService
	FundamentalsService interfaces.FundamentalsService
	ChartService        interfaces.ChartService
	SynthesisService    interfaces.SynthesisService

	Runner      *Runner
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the given path, then VIGIL_CONFIG,
// then vigil.toml next to the binary, then config/vigil.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("VIGIL_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "vigil.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/vigil.toml"
		}
	}
	return configPath
}

// NewApp loads configuration and initializes every client and service.
// configPath may be empty, in which case ResolveConfigPath applies.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewAppWithConfig(ctx, config, common.NewLoggerFromConfig(config.Logging))
}

// NewAppWithConfig initializes the app from an already loaded config.
// Clients without credentials are left unset and the services degrade
// accordingly.
func NewAppWithConfig(ctx context.Context, config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	store, err := storage.NewFileStore(logger, &config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := &App{
		Config:      config,
		Logger:      logger,
		Store:       store,
		Metrics:     common.NewMetrics(),
		StartupTime: startupStart,
	}

	a.initClients(ctx)

	synthConfig := confidence.DefaultConfig().
		WithWeights(confidence.Weights{
			Technical:   config.Confidence.TechnicalWeight,
			Fundamental: config.Confidence.FundamentalWeight,
			Sentiment:   config.Confidence.SentimentWeight,
		}).
		WithWorkers(config.Confidence.Workers)
	if err := synthConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid confidence config: %w", err)
	}

	fetcher := web.NewClient(web.WithLogger(logger))

	a.TrackerService = tracker.NewService(store, a.Brokers, a.Market, a.Search, config, logger)
	a.FundamentalsService = fundamentals.NewService(store, a.Search, fetcher, a.Gemini, config, logger)
	a.ChartService = charts.NewService(store, config, logger)
	a.SynthesisService = synthesis.NewService(store, confidence.NewSynthesizer(synthConfig, logger), logger)

	a.Runner = NewRunner(store, a.TrackerService, a.FundamentalsService, a.ChartService, a.SynthesisService, a.Notifier, a.Metrics, logger)

	logger.Info().
		Int("brokers", len(a.Brokers)).
		Bool("search", a.Search != nil).
		Bool("gemini", a.Gemini != nil).
		Bool("discord", a.Notifier != nil).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

func (a *App) initClients(ctx context.Context) {
	cfg := a.Config.Clients
	logger := a.Logger

	t212 := cfg.Trading212
	accounts := []struct {
		name, key, secret string
	}{
		{tracker.AccountInvest, t212.InvestKey, t212.InvestSecret},
		{tracker.AccountISA, t212.ISAKey, t212.ISASecret},
	}
	for _, acc := range accounts {
		if acc.key == "" {
			logger.Warn().Str("account", acc.name).Msg("Trading 212 key not configured - account skipped")
			continue
		}
		a.Brokers = append(a.Brokers, trading212.NewClient(acc.name, acc.key, acc.secret,
			trading212.WithBaseURL(t212.BaseURL),
			trading212.WithLogger(logger),
			trading212.WithRateLimit(t212.RateLimit),
			trading212.WithTimeout(t212.GetTimeout()),
		))
	}

	if cfg.EODHD.APIKey == "" {
		logger.Warn().Msg("EODHD API key not configured - price history requests will fail")
	}
	a.Market = eodhd.NewClient(cfg.EODHD.APIKey,
		eodhd.WithBaseURL(cfg.EODHD.BaseURL),
		eodhd.WithLogger(logger),
		eodhd.WithRateLimit(cfg.EODHD.RateLimit),
		eodhd.WithTimeout(cfg.EODHD.GetTimeout()),
		eodhd.WithExchanges(a.Config.Analysis.Exchanges),
	)

	if cfg.Tavily.APIKey != "" {
		a.Search = tavily.NewClient(cfg.Tavily.APIKey,
			tavily.WithBaseURL(cfg.Tavily.BaseURL),
			tavily.WithLogger(logger),
			tavily.WithRateLimit(cfg.Tavily.RateLimit),
			tavily.WithTimeout(cfg.Tavily.GetTimeout()),
		)
	} else {
		logger.Warn().Msg("Tavily API key not configured - news and filing discovery unavailable")
	}

	if cfg.Gemini.APIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey,
			gemini.WithLogger(logger),
			gemini.WithModel(cfg.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			a.Gemini = client
		}
	}

	if cfg.Discord.Enabled() {
		a.Notifier = discord.NewClient(cfg.Discord.Token, cfg.Discord.ChannelID,
			discord.WithBaseURL(cfg.Discord.BaseURL),
			discord.WithLogger(logger),
			discord.WithTimeout(cfg.Discord.GetTimeout()),
		)
	} else {
		logger.Info().Msg("Discord not configured - chat updates disabled")
	}
}

// NewScheduler creates a cron scheduler that runs the full pipeline.
func (a *App) NewScheduler() (*Scheduler, error) {
	return NewScheduler(&a.Config.Schedule, func(ctx context.Context) error {
		_, err := a.Runner.Run(ctx)
		return err
	}, a.Logger)
}
