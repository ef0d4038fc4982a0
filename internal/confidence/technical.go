package confidence

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/models"
)

// Technical scores indicators and their derived signal tags.
func (s *Scorer) Technical(ind models.IndicatorSet, signals models.SignalSet) models.ScoreComponent {
	c := newComponent()
	rsi := ind.RSIOrNeutral()

	switch {
	case rsi >= 40 && rsi <= 60:
		c.add("RSI sweet spot (50)", 1.5)
	case rsi < 30:
		c.add(fmt.Sprintf("RSI oversold (%s)", common.FormatNumber(rsi)), 3)
	case rsi < 40:
		c.add(fmt.Sprintf("RSI low (%s)", common.FormatNumber(rsi)), 1.5)
	case rsi > 75:
		c.add(fmt.Sprintf("RSI overbought (%s)", common.FormatNumber(rsi)), -3)
	case rsi > 65:
		c.add(fmt.Sprintf("RSI high (%s)", common.FormatNumber(rsi)), -1.5)
	}

	if ind.MACDHist > 0 {
		c.add("MACD bullish", 1)
	} else {
		c.add("MACD bearish", -1)
	}

	switch {
	case ind.Price > ind.SMA20 && ind.SMA20 > ind.SMA50:
		c.add("Uptrend (price>MA20>MA50)", 2)
	case ind.Price < ind.SMA20 && ind.SMA20 < ind.SMA50:
		c.add("Downtrend", -2)
	case ind.Price > ind.SMA20:
		c.add("Above SMA20", 1)
	}

	for _, tag := range signals.Tags {
		name := string(tag)
		switch {
		case strings.Contains(name, "OVERBOUGHT"):
			c.add(name, -1.5)
		case strings.Contains(name, "OVERSOLD"):
			c.add(name, 1)
		case strings.Contains(name, "BULLISH") && tag != models.SignalMACDBullish:
			c.add(name, 0.5)
		case strings.Contains(name, "BEARISH") && tag != models.SignalMACDBearish:
			c.add(name, -0.5)
		}
	}

	return c.result()
}
