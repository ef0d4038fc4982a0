// Package models defines data structures for Vigil
package models

import (
	"time"
)

// EODBar represents a single day's price data
type EODBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// IndicatorSet is the per-holding technical snapshot for one analysis run.
// RSI is optional; a nil reading is treated as NeutralRSI.
type IndicatorSet struct {
	Price               float64  `json:"price"`
	RSI                 *float64 `json:"rsi,omitempty"`
	MACDLine            float64  `json:"macd_line"`
	MACDSignal          float64  `json:"macd_signal"`
	MACDHist            float64  `json:"macd_hist"`
	SMA20               float64  `json:"sma_20"`
	SMA50               float64  `json:"sma_50"`
	EMA20               float64  `json:"ema_20"`
	Volume              int64    `json:"volume"`
	AvgVolume20         int64    `json:"avg_volume_20"`
	YearHigh            float64  `json:"year_high"`
	YearLow             float64  `json:"year_low"`
	DistanceFromHighPct float64  `json:"distance_from_high_pct"`
	DistanceFromLowPct  float64  `json:"distance_from_low_pct"`
}

// NeutralRSI is assumed when no RSI reading is available.
const NeutralRSI = 50.0

// RSIOrNeutral returns the RSI reading, or NeutralRSI when none was recorded.
func (i IndicatorSet) RSIOrNeutral() float64 {
	if i.RSI == nil {
		return NeutralRSI
	}
	return *i.RSI
}

// NewsItem represents a news article returned by search
type NewsItem struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	URL     string  `json:"url,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// FundamentalRecord holds metrics scraped from a financial filing.
// Every field is optional; nil means the metric was not extracted.
type FundamentalRecord struct {
	RevenueBillions         *float64 `json:"revenue_billions,omitempty"`
	COGSBillions            *float64 `json:"cogs_billions,omitempty"`
	GrossProfitBillions     *float64 `json:"gross_profit_billions,omitempty"`
	GrossMarginPct          *float64 `json:"gross_margin_pct,omitempty"`
	OperatingIncomeBillions *float64 `json:"operating_income_billions,omitempty"`
	NetIncomeBillions       *float64 `json:"net_income_billions,omitempty"`
	EPS                     *float64 `json:"eps,omitempty"`
	EPSGuidance             *float64 `json:"eps_guidance,omitempty"`
}

// IsEmpty reports whether no metric is present. A nil record is empty.
func (f *FundamentalRecord) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.RevenueBillions == nil &&
		f.COGSBillions == nil &&
		f.GrossProfitBillions == nil &&
		f.GrossMarginPct == nil &&
		f.OperatingIncomeBillions == nil &&
		f.NetIncomeBillions == nil &&
		f.EPS == nil &&
		f.EPSGuidance == nil
}

// Float returns a pointer to v, for building FundamentalRecord literals.
func Float(v float64) *float64 {
	return &v
}

// ValueOf dereferences an optional metric, reading nil as zero.
func ValueOf(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Fundamental extraction statuses
const (
	FundamentalStatusPending          = "pending"
	FundamentalStatusSuccess          = "success"
	FundamentalStatusParsedEmpty      = "parsed_empty"
	FundamentalStatusPDFExtractFailed = "pdf_extract_failed"
	FundamentalStatusSECFallback      = "sec_fallback"
	FundamentalStatusError            = "error"
)

// FundamentalReport is the per-ticker extraction snapshot written to storage.
type FundamentalReport struct {
	Ticker        string             `json:"ticker"`
	Company       string             `json:"company"`
	SignalTrigger string             `json:"signal_trigger"`
	Timestamp     time.Time          `json:"timestamp"`
	Data          *FundamentalRecord `json:"data"`
	Status        string             `json:"status"`
	Error         string             `json:"error,omitempty"`
	SourceURL     string             `json:"source_url,omitempty"`
	Source        string             `json:"source,omitempty"`
}

// FilingSource is a discovered investor-relations document.
type FilingSource struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Source string `json:"source"` // "search" or "sec"
}
