package tracker

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/models"
	"github.com/bobmcallan/vigil/internal/signals"
)

const (
	maxStable     = 10
	maxTechnicals = 5
)

// FormatReport renders the daily report as chat-friendly markdown
func (s *Service) FormatReport(report *models.DailyReport) string {
	return FormatReport(report)
}

// FormatReport renders the daily report grouped into alert, watch and stable
// RSI bands, followed by the key technicals of the first holdings.
func FormatReport(report *models.DailyReport) string {
	var lines []string
	lines = append(lines,
		fmt.Sprintf("📊 **Portfolio Analysis** - %s", report.Timestamp.Format("2006-01-02 15:04")),
		"",
		fmt.Sprintf("**Summary:** %d 🟢 Bullish | %d 🟡 Neutral | %d 🔴 Bearish",
			report.Summary.Bullish, report.Summary.Neutral, report.Summary.Bearish),
		"",
	)

	var alerts, watch, stable []string
	for _, h := range report.Holdings {
		rsi := common.FormatNumber(h.Indicators.RSIOrNeutral())
		price := common.FormatNumber(h.Indicators.Price)

		switch r := h.Indicators.RSIOrNeutral(); {
		case r > signals.RSIOverbought:
			alerts = append(alerts, fmt.Sprintf("🔴 **%s** - RSI: %s (OVERBOUGHT) | $%s", h.Ticker, rsi, price))
		case r < signals.RSIOversold:
			alerts = append(alerts, fmt.Sprintf("🟢 **%s** - RSI: %s (OVERSOLD) | $%s", h.Ticker, rsi, price))
		case r > signals.RSIHigh:
			watch = append(watch, fmt.Sprintf("🟡 **%s** - RSI: %s | $%s", h.Ticker, rsi, price))
		case r < signals.RSILow:
			watch = append(watch, fmt.Sprintf("🟢 **%s** - RSI: %s | $%s", h.Ticker, rsi, price))
		default:
			stable = append(stable, fmt.Sprintf("⚪ **%s** - RSI: %s | $%s", h.Ticker, rsi, price))
		}
	}

	if len(alerts) > 0 {
		lines = append(lines, "**🚨 ALERTS:**")
		lines = append(lines, alerts...)
		lines = append(lines, "")
	}

	if len(watch) > 0 {
		lines = append(lines, "**👀 WATCH:**")
		lines = append(lines, watch...)
		lines = append(lines, "")
	}

	if len(stable) > 0 {
		lines = append(lines, "**📈 STABLE:**")
		if len(stable) > maxStable {
			lines = append(lines, stable[:maxStable]...)
			lines = append(lines, fmt.Sprintf("... and %d more", len(stable)-maxStable))
		} else {
			lines = append(lines, stable...)
		}
		lines = append(lines, "")
	}

	lines = append(lines, "**📊 Key Technicals:**")
	for i, h := range report.Holdings {
		if i == maxTechnicals {
			break
		}
		ind := h.Indicators
		lines = append(lines, fmt.Sprintf("**%s**: Price $%s | RSI %s | MACD %.4f | SMA20 $%s | Vol %s",
			h.Ticker,
			common.FormatNumber(ind.Price),
			common.FormatNumber(ind.RSIOrNeutral()),
			ind.MACDHist,
			common.FormatNumber(ind.SMA20),
			common.FormatVolumeMillions(ind.Volume),
		))
	}

	return strings.Join(lines, "\n")
}
