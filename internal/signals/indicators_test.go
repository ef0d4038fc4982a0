package signals

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/vigil/internal/models"
)

// generateBars builds newest-first bars from closes (closes[0] is the latest).
func generateBars(closes []float64) []models.EODBar {
	now := time.Now()
	bars := make([]models.EODBar, len(closes))
	for i, c := range closes {
		bars[i] = models.EODBar{
			Date:     now.AddDate(0, 0, -i),
			Open:     c,
			High:     c + 0.5,
			Low:      c - 0.5,
			Close:    c,
			AdjClose: c,
			Volume:   1000000,
		}
	}
	return bars
}

// generateTrendBars builds days bars where each session moves by dailyChange.
// bars[0] = startPrice, bars[i] = startPrice - i*dailyChange.
func generateTrendBars(startPrice, dailyChange float64, days int) []models.EODBar {
	closes := make([]float64, days)
	for i := range closes {
		closes[i] = startPrice - float64(i)*dailyChange
	}
	return generateBars(closes)
}

func flatCloses(price float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

func TestSMA(t *testing.T) {
	tests := []struct {
		name     string
		bars     []models.EODBar
		period   int
		expected float64
	}{
		{
			name:     "simple 3-day SMA",
			bars:     generateBars([]float64{10, 20, 30}),
			period:   3,
			expected: 20.0,
		},
		{
			name:     "uses latest bars only",
			bars:     generateBars([]float64{10, 20, 30, 40, 50}),
			period:   2,
			expected: 15.0,
		},
		{
			name:     "insufficient data",
			bars:     generateBars([]float64{10, 20}),
			period:   5,
			expected: 0.0,
		},
		{
			name:     "zero period",
			bars:     generateBars([]float64{10, 20, 30}),
			period:   0,
			expected: 0.0,
		},
		{
			name:     "nil bars",
			bars:     nil,
			period:   5,
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SMA(tt.bars, tt.period)
			assert.InDelta(t, tt.expected, result, 0.01)
		})
	}
}

func TestEMA_EmptyBars(t *testing.T) {
	assert.Equal(t, 0.0, EMA(nil, 10))
	assert.Equal(t, 0.0, EMA([]models.EODBar{}, 10))
}

func TestEMA_PeriodEqualsLen(t *testing.T) {
	// Seed is the SMA of all bars with no further smoothing
	bars := generateBars([]float64{10, 20, 30})
	assert.InDelta(t, 20.0, EMA(bars, 3), 0.01)
}

func TestEMA_PeriodGreaterThanLen(t *testing.T) {
	bars := generateBars([]float64{10, 20})
	assert.Equal(t, 0.0, EMA(bars, 5))
}

func TestEMA_Flat(t *testing.T) {
	bars := generateBars(flatCloses(42, 10))
	assert.InDelta(t, 42.0, EMA(bars, 5), 0.01)
}

func TestEMA_WithExtraBars(t *testing.T) {
	// Seed from oldest 5: (10+20+30+40+50)/5 = 30, k = 1/3
	// 60 -> 40, 70 -> 50
	bars := generateBars([]float64{70, 60, 50, 40, 30, 20, 10})
	assert.InDelta(t, 50.0, EMA(bars, 5), 0.01)
}

func TestEMA_ExtremeValues_NoOverflow(t *testing.T) {
	bars := generateBars(flatCloses(1e15, 5))
	result := EMA(bars, 5)
	assert.False(t, math.IsInf(result, 0))
	assert.False(t, math.IsNaN(result))
}

func TestRSI_InsufficientData(t *testing.T) {
	assert.Equal(t, 50.0, RSI(nil, 14))
	assert.Equal(t, 50.0, RSI(generateBars([]float64{100}), 14))
	assert.Equal(t, 50.0, RSI(generateTrendBars(100, 1, 14), 14))
}

func TestRSI_MonotonicGrowth(t *testing.T) {
	bars := generateTrendBars(130, 1.0, 30)
	assert.Equal(t, 100.0, RSI(bars, 14))
}

func TestRSI_MonotonicDecline(t *testing.T) {
	bars := generateTrendBars(50, -1.0, 30)
	assert.InDelta(t, 0.0, RSI(bars, 14), 1e-9)
}

func TestRSI_AllSamePrice(t *testing.T) {
	bars := generateBars(flatCloses(100, 15))
	assert.Equal(t, 50.0, RSI(bars, 14))
}

func TestRSI_Alternating(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 100
		} else {
			closes[i] = 98
		}
	}
	result := RSI(generateBars(closes), 14)
	assert.Greater(t, result, 20.0)
	assert.Less(t, result, 80.0)
}

func TestRSI_ExactlyPeriodPlusOne(t *testing.T) {
	// 14 changes: 10 gains of 1, 4 losses of 1 -> RS = 10/4 -> RSI = 71.43
	closes := []float64{100}
	for i := 0; i < 14; i++ {
		prev := closes[len(closes)-1]
		if i < 4 {
			closes = append(closes, prev+1) // older bars higher: a loss going forward
		} else {
			closes = append(closes, prev-1)
		}
	}
	result := RSI(generateBars(closes), 14)
	assert.InDelta(t, 71.43, result, 0.01)
}

func TestMACD_InsufficientData(t *testing.T) {
	line, signal, hist := MACD(generateBars(flatCloses(10, 20)), 12, 26, 9)
	assert.Equal(t, 0.0, line)
	assert.Equal(t, 0.0, signal)
	assert.Equal(t, 0.0, hist)
}

func TestMACD_Flat(t *testing.T) {
	line, signal, hist := MACD(generateBars(flatCloses(100, 60)), 12, 26, 9)
	assert.InDelta(t, 0.0, line, 1e-9)
	assert.InDelta(t, 0.0, signal, 1e-9)
	assert.InDelta(t, 0.0, hist, 1e-9)
}

func TestMACD_Uptrend(t *testing.T) {
	line, signal, hist := MACD(generateTrendBars(200, 1.0, 120), 12, 26, 9)
	assert.Greater(t, line, 0.0)
	assert.Greater(t, signal, 0.0)
	assert.InDelta(t, line-signal, hist, 1e-12)
}

func TestMACD_Downtrend(t *testing.T) {
	line, _, _ := MACD(generateTrendBars(100, -1.0, 120), 12, 26, 9)
	assert.Less(t, line, 0.0)
}

func TestAverageVolume(t *testing.T) {
	bars := generateBars(flatCloses(50, 25))
	bars[0].Volume = 3000000
	assert.Equal(t, int64(1100000), AverageVolume(bars, 20))
	assert.Equal(t, int64(0), AverageVolume(bars[:10], 20))
}

func TestHigh52Week_Window(t *testing.T) {
	bars := generateBars(flatCloses(100, 300))
	bars[260].High = 500 // outside the 252-day window
	bars[100].High = 150
	assert.InDelta(t, 150.0, High52Week(bars), 0.01)
}

func TestLow52Week_Window(t *testing.T) {
	bars := generateBars(flatCloses(100, 300))
	bars[260].Low = 1
	bars[10].Low = 80
	assert.InDelta(t, 80.0, Low52Week(bars), 0.01)
}

func TestHighLow52Week_Empty(t *testing.T) {
	assert.Equal(t, 0.0, High52Week(nil))
	assert.Equal(t, 0.0, Low52Week(nil))
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 10.0, DistanceFromHigh(90, 100), 1e-9)
	assert.InDelta(t, 50.0, DistanceFromLow(120, 80), 1e-9)
	assert.Equal(t, 0.0, DistanceFromHigh(90, 0))
	assert.Equal(t, 0.0, DistanceFromLow(90, 0))
}
