package models

// Signal is a discrete technical signal tag derived from an IndicatorSet.
type Signal string

const (
	SignalRSIOverbought Signal = "RSI_OVERBOUGHT"
	SignalRSIOversold   Signal = "RSI_OVERSOLD"
	SignalRSIHigh       Signal = "RSI_HIGH"
	SignalRSILow        Signal = "RSI_LOW"
	SignalMACDBullish   Signal = "MACD_BULLISH"
	SignalMACDBearish   Signal = "MACD_BEARISH"
	SignalBullishTrend  Signal = "BULLISH_TREND"
	SignalBearishTrend  Signal = "BEARISH_TREND"
)

// Outlook is the overall directional label for a SignalSet.
type Outlook string

const (
	OutlookBullish Outlook = "BULLISH"
	OutlookBearish Outlook = "BEARISH"
	OutlookNeutral Outlook = "NEUTRAL"
)

// SignalSet is the ordered list of signal tags plus the derived outlook.
type SignalSet struct {
	Tags    []Signal `json:"signals"`
	Overall Outlook  `json:"signal"`
}
