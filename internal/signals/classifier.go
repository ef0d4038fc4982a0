package signals

import (
	"strings"

	"github.com/bobmcallan/vigil/internal/models"
)

// RSI tier thresholds. Boundaries are exclusive: 75.0 is not overbought.
const (
	RSIOverbought = 75.0
	RSIOversold   = 30.0
	RSIHigh       = 65.0
	RSILow        = 40.0
)

// Classify derives signal tags and an overall outlook from an indicator set.
// Each tag casts at most one bullish and one bearish vote; ties are neutral.
func Classify(ind models.IndicatorSet) models.SignalSet {
	tags := make([]models.Signal, 0, 3)

	switch rsi := ind.RSIOrNeutral(); {
	case rsi > RSIOverbought:
		tags = append(tags, models.SignalRSIOverbought)
	case rsi < RSIOversold:
		tags = append(tags, models.SignalRSIOversold)
	case rsi > RSIHigh:
		tags = append(tags, models.SignalRSIHigh)
	case rsi < RSILow:
		tags = append(tags, models.SignalRSILow)
	}

	if ind.MACDHist > 0 {
		tags = append(tags, models.SignalMACDBullish)
	} else {
		tags = append(tags, models.SignalMACDBearish)
	}

	if ind.Price > ind.SMA20 && ind.SMA20 > ind.SMA50 {
		tags = append(tags, models.SignalBullishTrend)
	} else if ind.Price < ind.SMA20 && ind.SMA20 < ind.SMA50 {
		tags = append(tags, models.SignalBearishTrend)
	}

	return models.SignalSet{Tags: tags, Overall: tally(tags)}
}

var (
	bullishMarkers = []string{"BULLISH", "OVERSOLD", "LOW"}
	bearishMarkers = []string{"BEARISH", "OVERBOUGHT", "HIGH"}
)

func tally(tags []models.Signal) models.Outlook {
	bull, bear := 0, 0
	for _, tag := range tags {
		if containsAny(string(tag), bullishMarkers) {
			bull++
		}
		if containsAny(string(tag), bearishMarkers) {
			bear++
		}
	}

	switch {
	case bull > bear:
		return models.OutlookBullish
	case bear > bull:
		return models.OutlookBearish
	default:
		return models.OutlookNeutral
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
