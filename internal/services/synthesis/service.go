// Package synthesis scores the latest daily report into portfolio verdicts
package synthesis

import (
	"context"
	"fmt"

	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/confidence"
	"github.com/bobmcallan/vigil/internal/interfaces"
	"github.com/bobmcallan/vigil/internal/models"
)

// Service implements SynthesisService
type Service struct {
	store       interfaces.SnapshotStore
	synthesizer *confidence.Synthesizer
	logger      *common.Logger
}

var _ interfaces.SynthesisService = (*Service)(nil)

// NewService creates a synthesis service around a configured synthesizer
func NewService(store interfaces.SnapshotStore, synthesizer *confidence.Synthesizer, logger *common.Logger) *Service {
	return &Service{
		store:       store,
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// Synthesize loads the daily report and any stored fundamentals, scores every
// holding and saves the result.
func (s *Service) Synthesize(ctx context.Context) (*models.PortfolioSynthesis, error) {
	report, err := s.store.GetDailyReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily report: %w", err)
	}

	inputs := make([]models.ScoringInput, 0, len(report.Holdings))
	withFundamentals := 0
	for _, h := range report.Holdings {
		in := models.ScoringInput{
			Ticker:     h.Ticker,
			Company:    h.Company,
			Indicators: h.Indicators,
			Signals:    h.SignalSet(),
			News:       h.News,
		}
		if f, err := s.store.GetFundamentals(ctx, h.Ticker); err == nil && f.Data != nil {
			in.Fundamentals = f.Data
			withFundamentals++
		}
		inputs = append(inputs, in)
	}

	result := s.synthesizer.Synthesize(inputs)

	if err := s.store.SaveSynthesis(ctx, &result); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("holdings", result.TotalHoldings).
		Int("with_fundamentals", withFundamentals).
		Int("a_rated", result.Summary.ARated).
		Int("watch", result.Summary.WatchList).
		Int("sell", result.Summary.SellCandidates).
		Float64("average", result.Summary.AverageConfidence).
		Msg("Synthesis complete")

	return &result, nil
}
