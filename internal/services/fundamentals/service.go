// Package fundamentals extracts filing metrics for holdings flagged by RSI
package fundamentals

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/interfaces"
	"github.com/bobmcallan/vigil/internal/models"
	"github.com/bobmcallan/vigil/internal/storage"
)

// Filing sources
const (
	SourceSearch = "search"
	SourceSEC    = "sec"
	SourceGemini = "gemini"
)

const searchResults = 5

// Service implements FundamentalsService
type Service struct {
	store       interfaces.SnapshotStore
	search      interfaces.SearchClient
	fetcher     interfaces.DocumentFetcher
	gemini      interfaces.GeminiClient
	highRSI     float64
	lowRSI      float64
	logger      *common.Logger
	extractText func([]byte) (string, error)
	now         func() time.Time
}

var _ interfaces.FundamentalsService = (*Service)(nil)

// NewService creates a fundamentals service. gemini may be nil to disable the
// model fallback when regex parsing finds nothing.
func NewService(
	store interfaces.SnapshotStore,
	search interfaces.SearchClient,
	fetcher interfaces.DocumentFetcher,
	gemini interfaces.GeminiClient,
	config *common.Config,
	logger *common.Logger,
) *Service {
	return &Service{
		store:       store,
		search:      search,
		fetcher:     fetcher,
		gemini:      gemini,
		highRSI:     config.Analysis.AlertHighRSI,
		lowRSI:      config.Analysis.AlertLowRSI,
		logger:      logger,
		extractText: extractPDFText,
		now:         time.Now,
	}
}

// Alerts returns the holdings whose RSI sits outside the alert band
func (s *Service) Alerts(report *models.DailyReport) []models.RSIAlert {
	alerts := []models.RSIAlert{}
	if report == nil {
		return alerts
	}
	for _, h := range report.Holdings {
		rsi := h.Indicators.RSIOrNeutral()
		if rsi > s.highRSI || rsi < s.lowRSI {
			alerts = append(alerts, models.RSIAlert{
				Ticker:  h.Ticker,
				Company: h.Company,
				Signal:  h.Signal,
				RSI:     rsi,
			})
		}
	}
	return alerts
}

// ExtractAll extracts and saves fundamentals for each alert in order.
// Only context cancellation stops the batch.
func (s *Service) ExtractAll(ctx context.Context, alerts []models.RSIAlert) ([]*models.FundamentalReport, error) {
	reports := make([]*models.FundamentalReport, 0, len(alerts))

	for _, alert := range alerts {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		s.logger.Info().Str("ticker", alert.Ticker).Float64("rsi", alert.RSI).Msg("Extracting fundamentals")

		report := s.Extract(ctx, alert)
		if err := s.store.SaveFundamentals(ctx, report); err != nil {
			s.logger.Warn().Str("ticker", alert.Ticker).Err(err).Msg("Failed to save fundamentals")
		}
		reports = append(reports, report)
	}

	return reports, nil
}

// Extract finds the latest filing for a holding and parses its metrics
func (s *Service) Extract(ctx context.Context, alert models.RSIAlert) *models.FundamentalReport {
	report := &models.FundamentalReport{
		Ticker:        alert.Ticker,
		Company:       alert.Company,
		SignalTrigger: string(alert.Signal),
		Timestamp:     s.now(),
		Data:          &models.FundamentalRecord{},
		Status:        models.FundamentalStatusPending,
	}

	filing, err := s.discover(ctx, alert.Ticker, alert.Company)
	if err != nil {
		report.Status = models.FundamentalStatusError
		report.Error = err.Error()
		s.logger.Warn().Str("ticker", alert.Ticker).Err(err).Msg("Filing search failed")
		return report
	}

	report.SourceURL = filing.URL
	report.Source = filing.Source

	if filing.Source != SourceSearch || !isPDF(filing.URL) {
		report.Status = models.FundamentalStatusSECFallback
		return report
	}

	text, err := s.download(ctx, alert.Ticker, filing.URL)
	if err != nil || strings.TrimSpace(text) == "" {
		report.Status = models.FundamentalStatusPDFExtractFailed
		if err != nil {
			report.Error = err.Error()
		}
		return report
	}

	report.Data = ParseFinancials(text)
	if report.Data.IsEmpty() {
		if rec := s.askModel(ctx, alert, filing.URL); !rec.IsEmpty() {
			report.Data = rec
			report.Source = SourceGemini
		}
	}

	if report.Data.IsEmpty() {
		report.Status = models.FundamentalStatusParsedEmpty
	} else {
		report.Status = models.FundamentalStatusSuccess
	}

	s.logger.Info().Str("ticker", alert.Ticker).Str("status", report.Status).Msg("Fundamentals extracted")
	return report
}

// discover searches for an investor-relations document, falling back to the
// SEC EDGAR filing index.
func (s *Service) discover(ctx context.Context, ticker, company string) (models.FilingSource, error) {
	if s.search == nil {
		return models.FilingSource{}, fmt.Errorf("no search client configured")
	}

	year := s.now().Year() - 1
	queries := []string{
		fmt.Sprintf("%s %s investor relations %d 10-K annual report PDF", ticker, company, year),
		fmt.Sprintf("%s %s %d Q3 Q4 earnings report PDF", ticker, company, year),
	}

	for _, q := range queries {
		results, err := s.search.Search(ctx, q, interfaces.WithMaxResults(searchResults))
		if err != nil {
			return models.FilingSource{}, err
		}
		for _, r := range results {
			u := strings.ToLower(r.URL)
			if strings.Contains(u, ".pdf") || strings.Contains(u, "investor") {
				return models.FilingSource{URL: r.URL, Title: r.Title, Source: SourceSearch}, nil
			}
		}
	}

	return models.FilingSource{
		URL:    fmt.Sprintf("https://www.sec.gov/cgi-bin/browse-edgar?action=getcompany&CIK=%s&type=10-K&count=10", ticker),
		Title:  fmt.Sprintf("SEC EDGAR - %s", ticker),
		Source: SourceSEC,
	}, nil
}

// download fetches the filing, keeps a copy under filings/ and returns its text.
func (s *Service) download(ctx context.Context, ticker, url string) (string, error) {
	if s.fetcher == nil {
		return "", fmt.Errorf("no document fetcher configured")
	}

	data, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if path, err := s.store.WriteRaw(storage.FilingsDir, strings.ToUpper(ticker)+".pdf", data); err != nil {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Failed to keep filing copy")
	} else {
		s.logger.Debug().Str("ticker", ticker).Str("path", path).Int("size", len(data)).Msg("Filing downloaded")
	}

	return s.extractText(data)
}

const modelPrompt = `Read the financial filing for %s (%s) at the reference URL.
Return only a JSON object with these keys, using null for anything not stated:
revenue_billions, cogs_billions, gross_profit_billions, gross_margin_pct,
operating_income_billions, net_income_billions, eps, eps_guidance.
Monetary amounts are in billions of the reporting currency.`

// askModel asks Gemini to read the filing when regex parsing finds nothing.
func (s *Service) askModel(ctx context.Context, alert models.RSIAlert, url string) *models.FundamentalRecord {
	if s.gemini == nil {
		return nil
	}

	out, err := s.gemini.GenerateWithURLContext(ctx, fmt.Sprintf(modelPrompt, alert.Company, alert.Ticker), []string{url})
	if err != nil {
		s.logger.Warn().Str("ticker", alert.Ticker).Err(err).Msg("Gemini extraction failed")
		return nil
	}

	rec, err := parseModelJSON(out)
	if err != nil {
		s.logger.Warn().Str("ticker", alert.Ticker).Err(err).Msg("Gemini returned unusable metrics")
		return nil
	}
	return rec
}

// parseModelJSON decodes the first JSON object in a model reply.
func parseModelJSON(out string) (*models.FundamentalRecord, error) {
	start := strings.Index(out, "{")
	end := strings.LastIndex(out, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var rec models.FundamentalRecord
	if err := json.Unmarshal([]byte(out[start:end+1]), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode metrics: %w", err)
	}
	return &rec, nil
}

func isPDF(url string) bool {
	return strings.Contains(strings.ToLower(url), ".pdf")
}
