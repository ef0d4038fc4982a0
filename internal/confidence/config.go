// Package confidence scores holdings on technical, fundamental and sentiment
// inputs and synthesizes a portfolio-level verdict.
package confidence

import (
	"errors"
	"fmt"
	"math"

	"github.com/bobmcallan/vigil/internal/models"
)

// Weights blend the three sub-scores into the final confidence.
type Weights struct {
	Technical   float64 `json:"technical"`
	Fundamental float64 `json:"fundamental"`
	Sentiment   float64 `json:"sentiment"`
}

// Grade maps a minimum confidence to a rating, action and reason.
type Grade struct {
	Min    float64
	Rating string
	Action models.Action
	Reason string
}

// Config is the immutable scoring configuration used by a Synthesizer.
type Config struct {
	Weights Weights
	// Grades are evaluated in order; the first with Min <= confidence wins.
	Grades []Grade
	// Fallback applies when no grade matches.
	Fallback Grade
	// ARatedMin and WatchMin bound the aggregation buckets.
	ARatedMin float64
	WatchMin  float64
	// Workers caps concurrent scoring in Synthesize.
	Workers int
}

// DefaultConfig returns the standard weights and rating scale.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{Technical: 0.40, Fundamental: 0.35, Sentiment: 0.25},
		Grades: []Grade{
			{Min: 8, Rating: "A+", Action: models.ActionHold, Reason: "Strong buy/hold signal"},
			{Min: 7, Rating: "A", Action: models.ActionHold, Reason: "Solid position"},
			{Min: 6, Rating: "B+", Action: models.ActionHold, Reason: "Positive, monitor"},
			{Min: 5, Rating: "B", Action: models.ActionWatch, Reason: "Neutral, watch for changes"},
			{Min: 4, Rating: "C", Action: models.ActionConsiderReducing, Reason: "Caution advised"},
			{Min: 3, Rating: "D", Action: models.ActionReduce, Reason: "Higher risk"},
		},
		Fallback:  Grade{Rating: "F", Action: models.ActionSell, Reason: "High risk - consider exit"},
		ARatedMin: 7,
		WatchMin:  5,
		Workers:   4,
	}
}

// WithWeights returns a copy of the config using the given weights.
func (c Config) WithWeights(w Weights) Config {
	c.Weights = w
	return c
}

// WithWorkers returns a copy of the config with the worker cap set.
func (c Config) WithWorkers(n int) Config {
	c.Workers = n
	return c
}

// Validate checks weights are non-negative and sum to 1.
func (c Config) Validate() error {
	w := c.Weights
	if w.Technical < 0 || w.Fundamental < 0 || w.Sentiment < 0 {
		return errors.New("confidence weights must be non-negative")
	}
	if sum := w.Technical + w.Fundamental + w.Sentiment; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("confidence weights must sum to 1, got %g", sum)
	}
	for i := 1; i < len(c.Grades); i++ {
		if c.Grades[i].Min >= c.Grades[i-1].Min {
			return fmt.Errorf("grade %q must have a lower minimum than %q", c.Grades[i].Rating, c.Grades[i-1].Rating)
		}
	}
	if c.WatchMin > c.ARatedMin {
		return errors.New("watch threshold must not exceed a-rated threshold")
	}
	return nil
}

// grade returns the first matching grade for a confidence value.
func (c Config) grade(confidence float64) Grade {
	for _, g := range c.Grades {
		if confidence >= g.Min {
			return g
		}
	}
	return c.Fallback
}
