package interfaces

import (
	"context"

	"github.com/bobmcallan/vigil/internal/models"
)

// TrackerService produces the daily technical report
type TrackerService interface {
	// Analyze fetches holdings, computes indicators and signals, and saves
	// the daily report and portfolio split
	Analyze(ctx context.Context) (*models.DailyReport, error)

	// FormatReport renders a report as chat text
	FormatReport(report *models.DailyReport) string
}

// FundamentalsService extracts filing metrics for RSI-alerted holdings
type FundamentalsService interface {
	// Alerts returns holdings whose RSI crosses the alert thresholds
	Alerts(report *models.DailyReport) []models.RSIAlert

	// ExtractAll runs extraction for every alert and saves each result
	ExtractAll(ctx context.Context, alerts []models.RSIAlert) ([]*models.FundamentalReport, error)

	// Extract runs extraction for one holding
	Extract(ctx context.Context, alert models.RSIAlert) *models.FundamentalReport
}

// ChartService renders portfolio charts
type ChartService interface {
	// Render draws all charts for a split and returns the written file names
	Render(ctx context.Context, split *models.PortfolioSplit) ([]string, error)
}

// SynthesisService combines the daily report with fundamentals into verdicts
type SynthesisService interface {
	// Synthesize scores every holding in the latest report and saves the result
	Synthesize(ctx context.Context) (*models.PortfolioSynthesis, error)
}
