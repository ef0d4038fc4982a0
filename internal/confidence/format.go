package confidence

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/vigil/internal/models"
)

// maxStrongHolds caps the strong-holds section of the message.
const maxStrongHolds = 5

// overallScore is "0" for an empty portfolio and one decimal place otherwise.
func overallScore(p models.PortfolioSynthesis) string {
	if p.TotalHoldings == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", p.Summary.AverageConfidence)
}

// FormatSynthesisMessage renders a synthesis as a chat-ready summary.
func FormatSynthesisMessage(p models.PortfolioSynthesis) string {
	var lines []string

	lines = append(lines, "🎯 **PORTFOLIO CONFIDENCE ANALYSIS**", "")
	lines = append(lines, fmt.Sprintf("**Overall Score:** %s/10", overallScore(p)))
	lines = append(lines, fmt.Sprintf("🟢 A-Rated: %d | 🟡 Watch: %d | 🔴 Sell: %d",
		p.Summary.ARated, p.Summary.WatchList, p.Summary.SellCandidates))
	lines = append(lines, "")

	if len(p.ARated) > 0 {
		lines = append(lines, "**🟢 STRONG HOLDS:**")
		for i, v := range p.ARated {
			if i == maxStrongHolds {
				break
			}
			lines = append(lines, fmt.Sprintf("• **%s** (%s) - Confidence: %.1f/10",
				v.Ticker, v.Rating, v.Confidence))
		}
		lines = append(lines, "")
	}

	if len(p.SellCandidates) > 0 {
		lines = append(lines, "**🔴 SELL CONSIDERATION:**")
		for _, v := range p.SellCandidates {
			lines = append(lines, fmt.Sprintf("• **%s** (%s) - %s", v.Ticker, v.Rating, v.Suggestion))
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
