package confidence

import (
	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/models"
)

const (
	neutralScore = 5.0
	minScore     = 0.0
	maxScore     = 10.0
)

// Scorer computes the three 0-10 sub-scores. It holds no state.
type Scorer struct{}

// NewScorer creates a new sub-score calculator
func NewScorer() *Scorer {
	return &Scorer{}
}

// component accumulates contributions on top of the neutral base score.
type component struct {
	score   float64
	details []models.Contribution
}

func newComponent() *component {
	return &component{score: neutralScore, details: []models.Contribution{}}
}

func (c *component) add(reason string, delta float64) {
	c.score += delta
	c.details = append(c.details, models.Contribution{Reason: reason, Delta: delta})
}

func (c *component) result() models.ScoreComponent {
	return models.ScoreComponent{
		Score:   common.Round(clamp(c.score), 1),
		Details: c.details,
	}
}

func clamp(v float64) float64 {
	if v < minScore {
		return minScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}

// neutralComponent is the fixed 5.0 result for absent input.
func neutralComponent(label string) models.ScoreComponent {
	return models.ScoreComponent{
		Score:   neutralScore,
		Details: []models.Contribution{{Reason: label + ": 5"}},
	}
}
