package signals

import (
	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/models"
)

// MinBars is the shortest history that yields a complete indicator set.
const MinBars = 50

// Indicator periods
const (
	rsiPeriod    = 14
	macdFast     = 12
	macdSlow     = 26
	macdSignal   = 9
	volumePeriod = 20
)

// Computer derives indicator snapshots from daily bars
type Computer struct{}

// NewComputer creates a new indicator computer
func NewComputer() *Computer {
	return &Computer{}
}

// Compute calculates the indicator set from newest-first bars.
// Returns false when fewer than MinBars bars are available.
func (c *Computer) Compute(bars []models.EODBar) (*models.IndicatorSet, bool) {
	if len(bars) < MinBars {
		return nil, false
	}

	price := bars[0].Close
	macdLine, signalLine, hist := MACD(bars, macdFast, macdSlow, macdSignal)
	high := High52Week(bars)
	low := Low52Week(bars)

	return &models.IndicatorSet{
		Price:               common.Round(price, 2),
		RSI:                 models.Float(common.Round(RSI(bars, rsiPeriod), 2)),
		MACDLine:            common.Round(macdLine, 4),
		MACDSignal:          common.Round(signalLine, 4),
		MACDHist:            common.Round(hist, 4),
		SMA20:               common.Round(SMA(bars, 20), 2),
		SMA50:               common.Round(SMA(bars, 50), 2),
		EMA20:               common.Round(EMA(bars, 20), 2),
		Volume:              bars[0].Volume,
		AvgVolume20:         AverageVolume(bars, volumePeriod),
		YearHigh:            common.Round(high, 2),
		YearLow:             common.Round(low, 2),
		DistanceFromHighPct: common.Round(DistanceFromHigh(price, high), 1),
		DistanceFromLowPct:  common.Round(DistanceFromLow(price, low), 1),
	}, true
}
