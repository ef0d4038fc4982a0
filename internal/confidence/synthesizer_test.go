package confidence

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vigil/internal/models"
)

func strongInput(ticker string) models.ScoringInput {
	return models.ScoringInput{
		Ticker:     ticker,
		Company:    ticker + " Corp",
		Indicators: models.IndicatorSet{RSI: models.Float(28), MACDHist: 0.5, Price: 500, SMA20: 480, SMA50: 450},
		Signals:    tags(models.SignalRSIOversold, models.SignalMACDBullish),
		News:       []models.NewsItem{{Title: ticker + " beats earnings"}},
	}
}

func neutralInput(ticker string) models.ScoringInput {
	return models.ScoringInput{
		Ticker:     ticker,
		Indicators: models.IndicatorSet{RSI: models.Float(72), MACDHist: -0.1, Price: 420, SMA20: 410, SMA50: 400},
		Signals:    tags(models.SignalRSIHigh, models.SignalMACDBearish),
		News:       []models.NewsItem{{Title: "Raises guidance", Content: "on cloud growth"}},
	}
}

func weakInput(ticker string) models.ScoringInput {
	return models.ScoringInput{
		Ticker:     ticker,
		Indicators: models.IndicatorSet{RSI: models.Float(80), MACDHist: -0.5, Price: 90, SMA20: 95, SMA50: 100},
		Signals:    tags(models.SignalRSIOverbought, models.SignalMACDBearish, models.SignalBearishTrend),
		Fundamentals: &models.FundamentalRecord{
			EPS:         models.Float(-1),
			EPSGuidance: models.Float(-2),
		},
		News: []models.NewsItem{
			{Title: "Shares plunge"},
			{Title: "Crash fears"},
			{Title: "Layoff round"},
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig().WithWeights(Weights{Technical: 0.5, Fundamental: 0.3, Sentiment: 0.2})
	assert.NoError(t, cfg.Validate())

	cfg = DefaultConfig().WithWeights(Weights{Technical: -0.1, Fundamental: 0.6, Sentiment: 0.5})
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig().WithWeights(Weights{Technical: 0.4, Fundamental: 0.3, Sentiment: 0.2})
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Grades = []Grade{{Min: 5, Rating: "B"}, {Min: 6, Rating: "A"}}
	assert.Error(t, cfg.Validate())
}

func TestConfig_Grades(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		confidence float64
		rating     string
		action     models.Action
	}{
		{10, "A+", models.ActionHold},
		{8.0, "A+", models.ActionHold},
		{7.99, "A", models.ActionHold},
		{7.0, "A", models.ActionHold},
		{6.99, "B+", models.ActionHold},
		{6.0, "B+", models.ActionHold},
		{5.0, "B", models.ActionWatch},
		{4.99, "C", models.ActionConsiderReducing},
		{4.0, "C", models.ActionConsiderReducing},
		{3.0, "D", models.ActionReduce},
		{2.99, "F", models.ActionSell},
		{0, "F", models.ActionSell},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.confidence), func(t *testing.T) {
			g := cfg.grade(tt.confidence)
			assert.Equal(t, tt.rating, g.Rating)
			assert.Equal(t, tt.action, g.Action)
		})
	}
}

func TestSynthesizer_WeightedArithmetic(t *testing.T) {
	s := NewSynthesizer(DefaultConfig(), nil)
	assert.Equal(t, 4.0, s.weighted(10, 0, 0))
	assert.Equal(t, 0.0, s.weighted(0, 0, 0))
	assert.Equal(t, 10.0, s.weighted(10, 10, 10))
	assert.Equal(t, 3.5, s.weighted(0, 10, 0))
	assert.Equal(t, 2.5, s.weighted(0, 0, 10))
	// 7.25 rounds half to even
	assert.Equal(t, 7.2, s.weighted(10, 5, 6))
}

func TestSynthesizer_AlternateWeights(t *testing.T) {
	s := NewSynthesizer(DefaultConfig().WithWeights(Weights{Technical: 1}), nil)
	v := s.Score(strongInput("NVDA"))
	assert.Equal(t, 10.0, v.Confidence)
	assert.Equal(t, "A+", v.Rating)
}

func TestSynthesizer_Score_EndToEnd(t *testing.T) {
	s := NewSynthesizer(DefaultConfig(), nil)
	v := s.Score(strongInput("NVDA"))

	assert.Equal(t, "NVDA", v.Ticker)
	assert.Equal(t, "NVDA Corp", v.Company)
	assert.Equal(t, 10.0, v.Breakdown.Technical.Score)
	assert.Equal(t, 5.0, v.Breakdown.Fundamental.Score)
	assert.Equal(t, 6.0, v.Breakdown.Sentiment.Score)
	assert.Equal(t, 7.2, v.Confidence)
	assert.Equal(t, "A", v.Rating)
	assert.Equal(t, models.ActionHold, v.Action)
	assert.Equal(t, "Solid position", v.Reason)
	assert.Equal(t, "Hold NVDA - Solid position", v.Suggestion)
	assert.Len(t, v.Breakdown.Technical.Details, 4)
}

func TestSynthesizer_Score_Watch(t *testing.T) {
	s := NewSynthesizer(DefaultConfig(), nil)
	v := s.Score(neutralInput("MSFT"))

	assert.Equal(t, 4.5, v.Breakdown.Technical.Score)
	assert.Equal(t, 6.0, v.Breakdown.Sentiment.Score)
	assert.Equal(t, 5.0, v.Confidence)
	assert.Equal(t, "B", v.Rating)
	assert.Equal(t, models.ActionWatch, v.Action)
	assert.Equal(t, "Hold MSFT - Neutral, watch for changes", v.Suggestion)
}

func TestSynthesizer_Score_RiskFactors(t *testing.T) {
	s := NewSynthesizer(DefaultConfig(), nil)
	v := s.Score(weakInput("XYZ"))

	assert.Equal(t, 0.0, v.Breakdown.Technical.Score)
	assert.Equal(t, 0.0, v.Breakdown.Fundamental.Score)
	assert.Equal(t, 2.0, v.Breakdown.Sentiment.Score)
	assert.Equal(t, 0.5, v.Confidence)
	assert.Equal(t, "F", v.Rating)
	assert.Equal(t, models.ActionSell, v.Action)
	assert.Equal(t, "Consider reducing XYZ position. Risk factors: RSI overbought, Weak fundamentals, Negative sentiment", v.Suggestion)
}

func TestSynthesizer_Score_LowWithoutRiskFactors(t *testing.T) {
	s := NewSynthesizer(DefaultConfig(), nil)
	v := s.Score(models.ScoringInput{
		Ticker:     "ABC",
		Indicators: models.IndicatorSet{RSI: models.Float(50), MACDHist: -1, Price: 90, SMA20: 95, SMA50: 100},
		Signals:    tags(models.SignalMACDBearish),
	})

	assert.Equal(t, 3.5, v.Breakdown.Technical.Score)
	assert.Equal(t, 4.4, v.Confidence)
	assert.Equal(t, "C", v.Rating)
	assert.Equal(t, "Consider reducing ABC position. Risk factors: ", v.Suggestion)
}

func TestSynthesizer_Synthesize(t *testing.T) {
	s := NewSynthesizer(DefaultConfig(), nil)
	fixed := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	inputs := []models.ScoringInput{
		weakInput("WEAK"),
		neutralInput("MSFT"),
		{Ticker: "ZERO"},
		strongInput("NVDA"),
	}

	result := s.Synthesize(inputs)

	assert.Equal(t, fixed, result.Timestamp)
	assert.Equal(t, 4, result.TotalHoldings)

	var order []string
	for _, v := range result.AllHoldings {
		order = append(order, v.Ticker)
	}
	assert.Equal(t, []string{"NVDA", "ZERO", "MSFT", "WEAK"}, order)

	require.Len(t, result.ARated, 1)
	assert.Equal(t, "NVDA", result.ARated[0].Ticker)
	require.Len(t, result.WatchList, 2)
	assert.Equal(t, "ZERO", result.WatchList[0].Ticker)
	assert.Equal(t, 5.2, result.WatchList[0].Confidence)
	assert.Equal(t, "MSFT", result.WatchList[1].Ticker)
	require.Len(t, result.SellCandidates, 1)
	assert.Equal(t, "WEAK", result.SellCandidates[0].Ticker)

	assert.Equal(t, models.SynthesisSummary{
		ARated:            1,
		WatchList:         2,
		SellCandidates:    1,
		AverageConfidence: 4.5,
	}, result.Summary)
}

func TestSynthesizer_Synthesize_PartitionAndStableTies(t *testing.T) {
	s := NewSynthesizer(DefaultConfig().WithWorkers(8), nil)

	var inputs []models.ScoringInput
	for i := 0; i < 30; i++ {
		switch i % 3 {
		case 0:
			inputs = append(inputs, strongInput(fmt.Sprintf("S%02d", i)))
		case 1:
			inputs = append(inputs, neutralInput(fmt.Sprintf("N%02d", i)))
		default:
			inputs = append(inputs, weakInput(fmt.Sprintf("W%02d", i)))
		}
	}

	result := s.Synthesize(inputs)

	assert.Equal(t, result.TotalHoldings,
		len(result.ARated)+len(result.WatchList)+len(result.SellCandidates))
	assert.Len(t, result.ARated, 10)
	assert.Len(t, result.WatchList, 10)
	assert.Len(t, result.SellCandidates, 10)

	for i := 1; i < len(result.AllHoldings); i++ {
		assert.GreaterOrEqual(t, result.AllHoldings[i-1].Confidence, result.AllHoldings[i].Confidence)
	}

	// ties keep input order
	assert.Equal(t, "S00", result.ARated[0].Ticker)
	assert.Equal(t, "S27", result.ARated[9].Ticker)
	assert.Equal(t, "N01", result.WatchList[0].Ticker)
	assert.Equal(t, "W02", result.SellCandidates[0].Ticker)

	sequential := NewSynthesizer(DefaultConfig().WithWorkers(1), nil)
	expected := sequential.Synthesize(inputs)
	assert.Equal(t, expected.AllHoldings, result.AllHoldings)
}

func TestSynthesizer_Synthesize_Empty(t *testing.T) {
	s := NewSynthesizer(DefaultConfig(), nil)
	result := s.Synthesize(nil)

	assert.Equal(t, 0, result.TotalHoldings)
	assert.Equal(t, 0.0, result.Summary.AverageConfidence)
	assert.Empty(t, result.ARated)
	assert.Empty(t, result.WatchList)
	assert.Empty(t, result.SellCandidates)
	assert.Empty(t, result.AllHoldings)
}

func TestSynthesizer_ConfigIsCopied(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSynthesizer(cfg, nil)
	cfg.Grades[0].Rating = "changed"

	assert.Equal(t, "A+", s.Config().Grades[0].Rating)
}

func TestSynthesizer_Score_DecodedHoldingWithoutRSI(t *testing.T) {
	var h models.HoldingAnalysis
	raw := `{"ticker":"ABC","indicators":{"macd_hist":-0.1,"price":10,"sma_20":10,"sma_50":10}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &h))

	s := NewSynthesizer(DefaultConfig(), nil)
	v := s.Score(models.ScoringInput{Ticker: h.Ticker, Indicators: h.Indicators, Signals: h.SignalSet()})

	assert.Equal(t, 5.5, v.Breakdown.Technical.Score)
	assert.Equal(t, []string{"RSI sweet spot (50): +1.5", "MACD bearish: -1"}, detailStrings(v.Breakdown.Technical))
	assert.Equal(t, 5.2, v.Confidence)
	assert.NotContains(t, v.Suggestion, "oversold")
}
