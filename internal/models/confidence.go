package models

import (
	"fmt"
	"strconv"
	"time"
)

// Contribution is one scored adjustment with its human-readable reason.
type Contribution struct {
	Reason string  `json:"reason"`
	Delta  float64 `json:"delta"`
}

// String renders the contribution as "reason: +delta". A zero delta renders
// the reason alone.
func (c Contribution) String() string {
	if c.Delta == 0 {
		return c.Reason
	}
	sign := "+"
	if c.Delta < 0 {
		sign = "-"
	}
	d := c.Delta
	if d < 0 {
		d = -d
	}
	return fmt.Sprintf("%s: %s%s", c.Reason, sign, strconv.FormatFloat(d, 'f', -1, 64))
}

// ScoreComponent is a 0-10 sub-score with the adjustments that produced it.
type ScoreComponent struct {
	Score   float64        `json:"score"`
	Details []Contribution `json:"details"`
}

// ConfidenceBreakdown groups the three sub-scores of a verdict.
type ConfidenceBreakdown struct {
	Technical   ScoreComponent `json:"technical"`
	Fundamental ScoreComponent `json:"fundamental"`
	Sentiment   ScoreComponent `json:"sentiment"`
}

// Action is the recommended portfolio action for a holding.
type Action string

const (
	ActionHold             Action = "HOLD"
	ActionWatch            Action = "WATCH"
	ActionConsiderReducing Action = "CONSIDER REDUCING"
	ActionReduce           Action = "REDUCE"
	ActionSell             Action = "SELL"
)

// ConfidenceVerdict is the synthesized recommendation for one holding.
type ConfidenceVerdict struct {
	Ticker     string              `json:"ticker"`
	Company    string              `json:"company"`
	Confidence float64             `json:"confidence"`
	Rating     string              `json:"rating"`
	Action     Action              `json:"action"`
	Reason     string              `json:"reason"`
	Suggestion string              `json:"suggestion"`
	Breakdown  ConfidenceBreakdown `json:"breakdown"`
}

// SynthesisSummary holds the aggregate counts of a PortfolioSynthesis.
type SynthesisSummary struct {
	ARated            int     `json:"a_rated"`
	WatchList         int     `json:"watch_list"`
	SellCandidates    int     `json:"sell_candidates"`
	AverageConfidence float64 `json:"average_confidence"`
}

// PortfolioSynthesis is the ranked, bucketed result across all holdings.
type PortfolioSynthesis struct {
	Timestamp      time.Time           `json:"timestamp"`
	TotalHoldings  int                 `json:"total_holdings"`
	Summary        SynthesisSummary    `json:"summary"`
	ARated         []ConfidenceVerdict `json:"a_rated"`
	WatchList      []ConfidenceVerdict `json:"watch_list"`
	SellCandidates []ConfidenceVerdict `json:"sell_candidates"`
	AllHoldings    []ConfidenceVerdict `json:"all_holdings"`
}

// ScoringInput is everything the synthesizer needs for one holding.
type ScoringInput struct {
	Ticker       string
	Company      string
	Indicators   IndicatorSet
	Signals      SignalSet
	News         []NewsItem
	Fundamentals *FundamentalRecord
}
