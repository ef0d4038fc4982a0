package interfaces

import (
	"context"

	"github.com/bobmcallan/vigil/internal/models"
)

// SnapshotStore persists run snapshots as flat JSON documents
type SnapshotStore interface {
	// Daily technical report
	GetDailyReport(ctx context.Context) (*models.DailyReport, error)
	SaveDailyReport(ctx context.Context, report *models.DailyReport) error

	// Portfolio allocation used for charts
	GetPortfolioSplit(ctx context.Context) (*models.PortfolioSplit, error)
	SavePortfolioSplit(ctx context.Context, split *models.PortfolioSplit) error

	// Per-ticker fundamentals
	GetFundamentals(ctx context.Context, ticker string) (*models.FundamentalReport, error)
	SaveFundamentals(ctx context.Context, report *models.FundamentalReport) error
	ListFundamentals(ctx context.Context) ([]string, error)

	// Confidence synthesis
	GetSynthesis(ctx context.Context) (*models.PortfolioSynthesis, error)
	SaveSynthesis(ctx context.Context, synthesis *models.PortfolioSynthesis) error

	// Pipeline run record
	GetRunResult(ctx context.Context) (*models.RunResult, error)
	SaveRunResult(ctx context.Context, result *models.RunResult) error

	// WriteRaw writes binary data to a subdirectory atomically and returns its path
	WriteRaw(subdir, key string, data []byte) (string, error)

	// ReadRaw reads binary data written by WriteRaw
	ReadRaw(subdir, key string) ([]byte, error)
}
