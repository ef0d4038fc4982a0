package models

import "time"

// HoldingAnalysis is one analysed ticker in the daily technical report.
type HoldingAnalysis struct {
	Ticker       string       `json:"ticker"`
	Company      string       `json:"company"`
	Signal       Outlook      `json:"signal"`
	Signals      []Signal     `json:"signals"`
	Indicators   IndicatorSet `json:"indicators"`
	News         []NewsItem   `json:"news"`
	Quantity     float64      `json:"quantity"`
	AveragePrice float64      `json:"average_price"`
	CurrentPrice float64      `json:"current_price"`
	TotalValue   float64      `json:"total_value"`
}

// SignalSet rebuilds the classifier output stored on the analysis.
func (h HoldingAnalysis) SignalSet() SignalSet {
	return SignalSet{Tags: h.Signals, Overall: h.Signal}
}

// ReportSummary counts holdings per outlook.
type ReportSummary struct {
	Total   int `json:"total"`
	Bullish int `json:"bullish"`
	Bearish int `json:"bearish"`
	Neutral int `json:"neutral"`
}

// Add counts one holding with the given outlook.
func (s *ReportSummary) Add(o Outlook) {
	s.Total++
	switch o {
	case OutlookBullish:
		s.Bullish++
	case OutlookBearish:
		s.Bearish++
	default:
		s.Neutral++
	}
}

// AccountSummary records per-account totals and position counts.
type AccountSummary struct {
	InvestTotal float64 `json:"invest_total"`
	InvestCash  float64 `json:"invest_cash"`
	ISATotal    float64 `json:"isa_total"`
	ISACash     float64 `json:"isa_cash"`
	Invest      int     `json:"invest"`
	ISA         int     `json:"isa"`
}

// DailyReport is the technical analysis snapshot for one run.
type DailyReport struct {
	Timestamp      time.Time         `json:"timestamp"`
	Holdings       []HoldingAnalysis `json:"holdings"`
	PortfolioValue float64           `json:"portfolio_value"`
	Accounts       AccountSummary    `json:"accounts"`
	Summary        ReportSummary     `json:"summary"`
}

// SplitHolding is one holding's share of the portfolio value.
type SplitHolding struct {
	Ticker   string  `json:"ticker"`
	Sector   string  `json:"sector,omitempty"`
	Value    float64 `json:"value"`
	Quantity float64 `json:"quantity"`
	Pct      float64 `json:"pct"`
}

// PortfolioSplit is the allocation snapshot used for charts.
type PortfolioSplit struct {
	Timestamp  time.Time      `json:"timestamp"`
	TotalValue float64        `json:"total_value"`
	Cash       float64        `json:"cash"`
	Holdings   []SplitHolding `json:"holdings"`
}

// Step statuses recorded in a RunResult
const (
	StepStatusSuccess = "success"
	StepStatusError   = "error"
	StepStatusSkipped = "skipped"
)

// StepResult records the outcome of one pipeline step.
type StepResult struct {
	Status            string   `json:"status"`
	Error             string   `json:"error,omitempty"`
	HoldingsCount     int      `json:"holdings_count,omitempty"`
	AlertsFound       int      `json:"alerts_found,omitempty"`
	Extracted         []string `json:"extracted,omitempty"`
	Charts            []string `json:"charts,omitempty"`
	AverageConfidence float64  `json:"average_confidence,omitempty"`
	ARated            int      `json:"a_rated,omitempty"`
	SellCandidates    int      `json:"sell_candidates,omitempty"`
	DurationMs        int64    `json:"duration_ms"`
}

// RunResult is the record of a full pipeline run.
type RunResult struct {
	ID        string                `json:"id"`
	Timestamp time.Time             `json:"timestamp"`
	Steps     map[string]StepResult `json:"steps"`
}

// RSIAlert flags a holding whose RSI warrants a fundamentals check.
type RSIAlert struct {
	Ticker  string  `json:"ticker"`
	Company string  `json:"company"`
	Signal  Outlook `json:"signal"`
	RSI     float64 `json:"rsi"`
}
