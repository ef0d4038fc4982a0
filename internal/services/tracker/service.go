// Package tracker produces the daily technical report from brokerage holdings
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/interfaces"
	"github.com/bobmcallan/vigil/internal/models"
	"github.com/bobmcallan/vigil/internal/signals"
)

// Broker account labels
const (
	AccountInvest = "invest"
	AccountISA    = "isa"
)

// Service implements TrackerService
type Service struct {
	store       interfaces.SnapshotStore
	brokers     []interfaces.BrokerClient
	market      interfaces.MarketDataClient
	search      interfaces.SearchClient
	computer    *signals.Computer
	analysis    common.AnalysisConfig
	historyDays int
	logger      *common.Logger
	now         func() time.Time
}

var _ interfaces.TrackerService = (*Service)(nil)

// NewService creates a tracker. search may be nil, in which case holdings
// are reported without news.
func NewService(
	store interfaces.SnapshotStore,
	brokers []interfaces.BrokerClient,
	market interfaces.MarketDataClient,
	search interfaces.SearchClient,
	config *common.Config,
	logger *common.Logger,
) *Service {
	return &Service{
		store:       store,
		brokers:     brokers,
		market:      market,
		search:      search,
		computer:    signals.NewComputer(),
		analysis:    config.Analysis,
		historyDays: config.Clients.EODHD.History,
		logger:      logger,
		now:         time.Now,
	}
}

// Analyze runs the technical analysis for every holding and saves the daily
// report and portfolio split.
func (s *Service) Analyze(ctx context.Context) (*models.DailyReport, error) {
	now := s.now()

	holdings, accounts := s.fetchHoldings(ctx)

	tickers := make([]string, 0, len(holdings))
	byTicker := make(map[string]models.Position, len(holdings))
	for _, h := range holdings {
		tickers = append(tickers, h.Ticker)
		byTicker[h.Ticker] = h
	}
	if len(tickers) == 0 {
		s.logger.Info().Int("watch_list", len(s.analysis.WatchList)).Msg("No brokerage holdings, analysing watch list")
		tickers = append(tickers, s.analysis.WatchList...)
	}

	report := &models.DailyReport{
		Timestamp:      now,
		Holdings:       make([]models.HoldingAnalysis, 0, len(tickers)),
		PortfolioValue: accounts.InvestTotal + accounts.ISATotal,
		Accounts:       accounts,
	}

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		analysis, ok := s.analyzeTicker(ctx, ticker, now)
		if !ok {
			continue
		}

		if h, held := byTicker[ticker]; held {
			analysis.Quantity = h.Quantity
			analysis.AveragePrice = h.AveragePrice
			analysis.CurrentPrice = h.CurrentPrice
			analysis.TotalValue = h.TotalValue
		}

		report.Holdings = append(report.Holdings, analysis)
		report.Summary.Add(analysis.Signal)
	}

	s.logger.Info().
		Int("analysed", report.Summary.Total).
		Int("bullish", report.Summary.Bullish).
		Int("bearish", report.Summary.Bearish).
		Int("neutral", report.Summary.Neutral).
		Msg("Technical analysis complete")

	if err := s.store.SaveDailyReport(ctx, report); err != nil {
		return nil, err
	}
	if err := s.store.SavePortfolioSplit(ctx, s.buildSplit(report)); err != nil {
		return nil, err
	}

	return report, nil
}

// analyzeTicker computes indicators, signals and news for one ticker.
// Returns false when the ticker has too little price history.
func (s *Service) analyzeTicker(ctx context.Context, ticker string, now time.Time) (models.HoldingAnalysis, bool) {
	from := now.AddDate(0, 0, -s.historyDays)
	bars, err := s.market.GetEOD(ctx, ticker, interfaces.WithDateRange(from, now))
	if err != nil {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Failed to get price history")
		return models.HoldingAnalysis{}, false
	}

	ind, ok := s.computer.Compute(bars)
	if !ok {
		s.logger.Debug().Str("ticker", ticker).Int("bars", len(bars)).Msg("Not enough history, skipping")
		return models.HoldingAnalysis{}, false
	}

	set := signals.Classify(*ind)
	company := s.analysis.CompanyName(ticker)

	return models.HoldingAnalysis{
		Ticker:       ticker,
		Company:      company,
		Signal:       set.Overall,
		Signals:      set.Tags,
		Indicators:   *ind,
		News:         s.news(ctx, ticker, company, now),
		CurrentPrice: ind.Price,
	}, true
}

// news searches recent headlines. Failures yield no news.
func (s *Service) news(ctx context.Context, ticker, company string, now time.Time) []models.NewsItem {
	if s.search == nil || s.analysis.NewsResults == 0 {
		return []models.NewsItem{}
	}

	query := fmt.Sprintf("%s %s stock news %d", ticker, company, now.Year())
	items, err := s.search.Search(ctx, query, interfaces.WithMaxResults(s.analysis.NewsResults))
	if err != nil {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("News search failed")
		return []models.NewsItem{}
	}
	if len(items) > s.analysis.NewsResults {
		items = items[:s.analysis.NewsResults]
	}
	return items
}

// fetchHoldings collects positions from every broker account and merges
// duplicate tickers by summing quantity and value. Merged order follows the
// first appearance of each ticker.
func (s *Service) fetchHoldings(ctx context.Context) ([]models.Position, models.AccountSummary) {
	var summary models.AccountSummary
	var merged []models.Position
	index := make(map[string]int)

	for _, b := range s.brokers {
		positions, err := b.GetPositions(ctx)
		if err != nil {
			s.logger.Warn().Str("account", b.Account()).Err(err).Msg("Failed to get positions")
			positions = nil
		}

		cash, err := b.GetCash(ctx)
		if err != nil {
			s.logger.Warn().Str("account", b.Account()).Err(err).Msg("Failed to get account cash")
			cash = &models.AccountCash{}
		}

		switch b.Account() {
		case AccountInvest:
			summary.Invest = len(positions)
			summary.InvestTotal = cash.Total
			summary.InvestCash = cash.Free
		case AccountISA:
			summary.ISA = len(positions)
			summary.ISATotal = cash.Total
			summary.ISACash = cash.Free
		}

		for _, p := range positions {
			if i, ok := index[p.Ticker]; ok {
				merged[i].Quantity += p.Quantity
				merged[i].TotalValue += p.TotalValue
				continue
			}
			index[p.Ticker] = len(merged)
			merged = append(merged, p)
		}
	}

	s.logger.Info().
		Int("positions", len(merged)).
		Int("invest", summary.Invest).
		Int("isa", summary.ISA).
		Msg("Fetched brokerage holdings")

	return merged, summary
}

// buildSplit computes each held position's share of the total portfolio value.
func (s *Service) buildSplit(report *models.DailyReport) *models.PortfolioSplit {
	split := &models.PortfolioSplit{
		Timestamp:  report.Timestamp,
		TotalValue: report.PortfolioValue,
		Cash:       report.Accounts.InvestCash + report.Accounts.ISACash,
		Holdings:   []models.SplitHolding{},
	}

	for _, h := range report.Holdings {
		if h.TotalValue <= 0 {
			continue
		}
		pct := 0.0
		if report.PortfolioValue > 0 {
			pct = h.TotalValue / report.PortfolioValue * 100
		}
		split.Holdings = append(split.Holdings, models.SplitHolding{
			Ticker:   h.Ticker,
			Sector:   s.analysis.Sector(h.Ticker),
			Value:    h.TotalValue,
			Quantity: h.Quantity,
			Pct:      pct,
		})
	}

	return split
}
