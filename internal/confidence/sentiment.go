package confidence

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/vigil/internal/models"
)

var (
	positiveKeywords = []string{"beat", "raise", "growth", "bullish", "upgrade", "profit", "soar", "rally", "record"}
	negativeKeywords = []string{"miss", "cut", "downgrade", "loss", "fear", "crash", "plunge", "warning", "layoff"}
)

// maxSentimentSwing caps the adjustment from news in either direction.
const maxSentimentSwing = 3

// Sentiment scores news items by keyword presence. Each item counts at most
// once per keyword set.
func (s *Scorer) Sentiment(news []models.NewsItem) models.ScoreComponent {
	if len(news) == 0 {
		return neutralComponent("No news")
	}

	positive, negative := 0, 0
	for _, item := range news {
		text := strings.ToLower(item.Title + " " + item.Content)
		if containsKeyword(text, positiveKeywords) {
			positive++
		}
		if containsKeyword(text, negativeKeywords) {
			negative++
		}
	}

	c := newComponent()
	switch {
	case positive > negative:
		d := min(maxSentimentSwing, positive-negative)
		c.add(fmt.Sprintf("Positive news (%d)", positive), float64(d))
	case negative > positive:
		d := min(maxSentimentSwing, negative-positive)
		c.add(fmt.Sprintf("Negative news (%d)", negative), -float64(d))
	}

	return c.result()
}

func containsKeyword(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
