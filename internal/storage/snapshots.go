package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bobmcallan/vigil/internal/interfaces"
	"github.com/bobmcallan/vigil/internal/models"
)

// Snapshot keys under the reports directory
const (
	KeyDailyReport    = "daily_report"
	KeyPortfolioSplit = "portfolio_split"
	KeySynthesis      = "synthesis_report"
	KeyFullAnalysis   = "full_analysis"
)

// Subdirectory names exposed for raw writes
const (
	ChartsDir  = dirCharts
	FilingsDir = dirFilings
)

var _ interfaces.SnapshotStore = (*FileStore)(nil)

func (fs *FileStore) reportsDir() string {
	return filepath.Join(fs.basePath, dirReports)
}

func (fs *FileStore) fundamentalsDir() string {
	return filepath.Join(fs.basePath, dirFundamentals)
}

// --- Daily report ---

func (fs *FileStore) GetDailyReport(ctx context.Context) (*models.DailyReport, error) {
	var report models.DailyReport
	if err := fs.readJSON(fs.reportsDir(), KeyDailyReport, &report); err != nil {
		return nil, fmt.Errorf("daily report: %w", err)
	}
	return &report, nil
}

func (fs *FileStore) SaveDailyReport(ctx context.Context, report *models.DailyReport) error {
	if err := fs.writeJSON(fs.reportsDir(), KeyDailyReport, report, true); err != nil {
		return fmt.Errorf("failed to save daily report: %w", err)
	}
	fs.logger.Debug().Int("holdings", len(report.Holdings)).Msg("Daily report saved")
	return nil
}

// --- Portfolio split ---

func (fs *FileStore) GetPortfolioSplit(ctx context.Context) (*models.PortfolioSplit, error) {
	var split models.PortfolioSplit
	if err := fs.readJSON(fs.reportsDir(), KeyPortfolioSplit, &split); err != nil {
		return nil, fmt.Errorf("portfolio split: %w", err)
	}
	return &split, nil
}

func (fs *FileStore) SavePortfolioSplit(ctx context.Context, split *models.PortfolioSplit) error {
	if err := fs.writeJSON(fs.reportsDir(), KeyPortfolioSplit, split, false); err != nil {
		return fmt.Errorf("failed to save portfolio split: %w", err)
	}
	fs.logger.Debug().Int("holdings", len(split.Holdings)).Msg("Portfolio split saved")
	return nil
}

// --- Fundamentals ---

func (fs *FileStore) GetFundamentals(ctx context.Context, ticker string) (*models.FundamentalReport, error) {
	var report models.FundamentalReport
	if err := fs.readJSON(fs.fundamentalsDir(), strings.ToUpper(ticker), &report); err != nil {
		return nil, fmt.Errorf("fundamentals for %s: %w", ticker, err)
	}
	return &report, nil
}

func (fs *FileStore) SaveFundamentals(ctx context.Context, report *models.FundamentalReport) error {
	if report.Ticker == "" {
		return fmt.Errorf("fundamentals report has no ticker")
	}
	if err := fs.writeJSON(fs.fundamentalsDir(), strings.ToUpper(report.Ticker), report, false); err != nil {
		return fmt.Errorf("failed to save fundamentals: %w", err)
	}
	fs.logger.Debug().Str("ticker", report.Ticker).Str("status", report.Status).Msg("Fundamentals saved")
	return nil
}

func (fs *FileStore) ListFundamentals(ctx context.Context) ([]string, error) {
	keys, err := fs.listKeys(fs.fundamentalsDir())
	if err != nil {
		return nil, fmt.Errorf("failed to list fundamentals: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// --- Synthesis ---

func (fs *FileStore) GetSynthesis(ctx context.Context) (*models.PortfolioSynthesis, error) {
	var synthesis models.PortfolioSynthesis
	if err := fs.readJSON(fs.reportsDir(), KeySynthesis, &synthesis); err != nil {
		return nil, fmt.Errorf("synthesis: %w", err)
	}
	return &synthesis, nil
}

func (fs *FileStore) SaveSynthesis(ctx context.Context, synthesis *models.PortfolioSynthesis) error {
	if err := fs.writeJSON(fs.reportsDir(), KeySynthesis, synthesis, true); err != nil {
		return fmt.Errorf("failed to save synthesis: %w", err)
	}
	fs.logger.Debug().Int("holdings", synthesis.TotalHoldings).Msg("Synthesis saved")
	return nil
}

// --- Run result ---

func (fs *FileStore) GetRunResult(ctx context.Context) (*models.RunResult, error) {
	var result models.RunResult
	if err := fs.readJSON(fs.reportsDir(), KeyFullAnalysis, &result); err != nil {
		return nil, fmt.Errorf("run result: %w", err)
	}
	return &result, nil
}

func (fs *FileStore) SaveRunResult(ctx context.Context, result *models.RunResult) error {
	if err := fs.writeJSON(fs.reportsDir(), KeyFullAnalysis, result, true); err != nil {
		return fmt.Errorf("failed to save run result: %w", err)
	}
	fs.logger.Debug().Str("id", result.ID).Msg("Run result saved")
	return nil
}
