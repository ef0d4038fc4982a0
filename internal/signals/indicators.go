// Package signals provides technical indicator calculations and signal classification
package signals

import (
	"math"

	"github.com/bobmcallan/vigil/internal/models"
)

// Bars are newest-first throughout this package: bars[0] is the latest session.

// closes returns close prices oldest-first.
func closes(bars []models.EODBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[len(bars)-1-i] = b.Close
	}
	return out
}

// SMA calculates Simple Moving Average of the latest period closes
func SMA(bars []models.EODBar, period int) float64 {
	if period <= 0 || len(bars) < period {
		return 0
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += bars[i].Close
	}
	return sum / float64(period)
}

// emaSeries returns the EMA of values (oldest-first) seeded with the SMA of the
// first period values. The result is aligned so out[0] corresponds to values[period-1].
func emaSeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	k := 2.0 / float64(period+1)
	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)

	out := make([]float64, 0, len(values)-period+1)
	out = append(out, seed)
	prev := seed
	for _, v := range values[period:] {
		prev = (v-prev)*k + prev
		out = append(out, prev)
	}
	return out
}

// EMA calculates Exponential Moving Average for the given period
func EMA(bars []models.EODBar, period int) float64 {
	series := emaSeries(closes(bars), period)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// RSI calculates the Relative Strength Index with Wilder smoothing
func RSI(bars []models.EODBar, period int) float64 {
	if period <= 0 || len(bars) < period+1 {
		return models.NeutralRSI
	}

	c := closes(bars)

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := c[i] - c[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	for i := period + 1; i < len(c); i++ {
		change := c[i] - c[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return models.NeutralRSI
		}
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// MACD calculates Moving Average Convergence Divergence.
// Returns MACD line, signal line, and histogram for the latest bar.
func MACD(bars []models.EODBar, fastPeriod, slowPeriod, signalPeriod int) (float64, float64, float64) {
	if len(bars) < slowPeriod || fastPeriod >= slowPeriod {
		return 0, 0, 0
	}

	c := closes(bars)
	fast := emaSeries(c, fastPeriod)
	slow := emaSeries(c, slowPeriod)

	// Align fast to slow: slow[0] is at index slowPeriod-1, fast[0] at fastPeriod-1.
	offset := slowPeriod - fastPeriod
	line := make([]float64, len(slow))
	for i := range slow {
		line[i] = fast[i+offset] - slow[i]
	}

	macdLine := line[len(line)-1]
	signal := emaSeries(line, signalPeriod)
	if len(signal) == 0 {
		return macdLine, macdLine, 0
	}
	signalLine := signal[len(signal)-1]

	return macdLine, signalLine, macdLine - signalLine
}

// AverageVolume calculates average volume over a period
func AverageVolume(bars []models.EODBar, period int) int64 {
	if period <= 0 || len(bars) < period {
		return 0
	}

	var sum int64
	for i := 0; i < period; i++ {
		sum += bars[i].Volume
	}
	return sum / int64(period)
}

// High52Week returns the highest high in the last 252 trading days
func High52Week(bars []models.EODBar) float64 {
	period := 252
	if len(bars) < period {
		period = len(bars)
	}

	high := 0.0
	for i := 0; i < period; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
	}
	return high
}

// Low52Week returns the lowest low in the last 252 trading days
func Low52Week(bars []models.EODBar) float64 {
	period := 252
	if len(bars) < period {
		period = len(bars)
	}

	low := math.MaxFloat64
	for i := 0; i < period; i++ {
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	if low == math.MaxFloat64 {
		return 0
	}
	return low
}

// DistanceFromHigh returns how far price sits below the high, in percent
func DistanceFromHigh(price, high float64) float64 {
	if high == 0 {
		return 0
	}
	return (high - price) / high * 100
}

// DistanceFromLow returns how far price sits above the low, in percent
func DistanceFromLow(price, low float64) float64 {
	if low == 0 {
		return 0
	}
	return (price - low) / low * 100
}
