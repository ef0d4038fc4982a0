package confidence

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/models"
)

// Risk factor thresholds for low-confidence suggestions
const (
	riskRSIHigh        = 70.0
	riskRSILow         = 35.0
	riskWeakSubScore   = 4.0
	suggestReduceBelow = 5.0
)

// Synthesizer turns per-holding inputs into verdicts and a ranked portfolio view.
type Synthesizer struct {
	config Config
	scorer *Scorer
	logger *common.Logger
	now    func() time.Time
}

// NewSynthesizer creates a synthesizer with the given scoring configuration.
// The config is copied; later changes by the caller have no effect.
func NewSynthesizer(config Config, logger *common.Logger) *Synthesizer {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	config.Grades = append([]Grade(nil), config.Grades...)
	return &Synthesizer{
		config: config,
		scorer: NewScorer(),
		logger: logger,
		now:    time.Now,
	}
}

// Config returns the scoring configuration in use.
func (s *Synthesizer) Config() Config {
	c := s.config
	c.Grades = append([]Grade(nil), c.Grades...)
	return c
}

// Score produces the verdict for one holding.
func (s *Synthesizer) Score(in models.ScoringInput) models.ConfidenceVerdict {
	tech := s.scorer.Technical(in.Indicators, in.Signals)
	fund := s.scorer.Fundamental(in.Fundamentals)
	sent := s.scorer.Sentiment(in.News)

	confidence := s.weighted(tech.Score, fund.Score, sent.Score)

	g := s.config.grade(confidence)

	suggestion := fmt.Sprintf("Hold %s - %s", in.Ticker, g.Reason)
	if confidence < suggestReduceBelow {
		var risks []string
		if in.Indicators.RSIOrNeutral() > riskRSIHigh {
			risks = append(risks, "RSI overbought")
		}
		if in.Indicators.RSIOrNeutral() < riskRSILow {
			risks = append(risks, "RSI oversold - potential trap")
		}
		if fund.Score < riskWeakSubScore {
			risks = append(risks, "Weak fundamentals")
		}
		if sent.Score < riskWeakSubScore {
			risks = append(risks, "Negative sentiment")
		}
		suggestion = fmt.Sprintf("Consider reducing %s position. Risk factors: %s", in.Ticker, strings.Join(risks, ", "))
	}

	return models.ConfidenceVerdict{
		Ticker:     in.Ticker,
		Company:    in.Company,
		Confidence: confidence,
		Rating:     g.Rating,
		Action:     g.Action,
		Reason:     g.Reason,
		Suggestion: suggestion,
		Breakdown: models.ConfidenceBreakdown{
			Technical:   tech,
			Fundamental: fund,
			Sentiment:   sent,
		},
	}
}

// weighted blends sub-scores into a confidence rounded to one decimal.
// Explicit conversions keep the products from being fused.
func (s *Synthesizer) weighted(tech, fund, sent float64) float64 {
	w := s.config.Weights
	sum := float64(tech*w.Technical) + float64(fund*w.Fundamental) + float64(sent*w.Sentiment)
	return common.Round(sum, 1)
}

// Synthesize scores every holding, ranks by confidence (stable on ties in
// input order) and partitions into a-rated, watch and sell buckets.
func (s *Synthesizer) Synthesize(inputs []models.ScoringInput) models.PortfolioSynthesis {
	verdicts := s.scoreAll(inputs)

	sort.SliceStable(verdicts, func(i, j int) bool {
		return verdicts[i].Confidence > verdicts[j].Confidence
	})

	result := models.PortfolioSynthesis{
		Timestamp:      s.now(),
		TotalHoldings:  len(verdicts),
		ARated:         []models.ConfidenceVerdict{},
		WatchList:      []models.ConfidenceVerdict{},
		SellCandidates: []models.ConfidenceVerdict{},
		AllHoldings:    verdicts,
	}

	total := 0.0
	for _, v := range verdicts {
		total += v.Confidence
		switch {
		case v.Confidence >= s.config.ARatedMin:
			result.ARated = append(result.ARated, v)
		case v.Confidence >= s.config.WatchMin:
			result.WatchList = append(result.WatchList, v)
		default:
			result.SellCandidates = append(result.SellCandidates, v)
		}
	}

	result.Summary = models.SynthesisSummary{
		ARated:         len(result.ARated),
		WatchList:      len(result.WatchList),
		SellCandidates: len(result.SellCandidates),
	}
	if len(verdicts) > 0 {
		result.Summary.AverageConfidence = common.Round(total/float64(len(verdicts)), 1)
	}

	s.logger.Debug().
		Int("holdings", result.TotalHoldings).
		Int("a_rated", result.Summary.ARated).
		Int("sell_candidates", result.Summary.SellCandidates).
		Float64("average_confidence", result.Summary.AverageConfidence).
		Msg("Portfolio synthesis complete")

	return result
}

// scoreAll scores inputs with at most config.Workers goroutines.
// The returned slice is in input order.
func (s *Synthesizer) scoreAll(inputs []models.ScoringInput) []models.ConfidenceVerdict {
	verdicts := make([]models.ConfidenceVerdict, len(inputs))

	workers := s.config.Workers
	if workers <= 1 || len(inputs) <= 1 {
		for i, in := range inputs {
			verdicts[i] = s.Score(in)
		}
		return verdicts
	}

	semaphore := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range inputs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			verdicts[idx] = s.Score(inputs[idx])
		}(i)
	}
	wg.Wait()

	return verdicts
}
