// Package charts renders portfolio allocation charts as PNG files
package charts

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/interfaces"
	"github.com/bobmcallan/vigil/internal/models"
	"github.com/bobmcallan/vigil/internal/storage"
)

// Chart names, also used as file names under charts/
const (
	ChartSector = "sector_heatmap"
	ChartPie    = "holdings_pie"
	ChartBars   = "holdings_bars"
)

const (
	pieSlices   = 8
	topHoldings = 12
	othersLabel = "Others"
)

// Service implements ChartService
type Service struct {
	store    interfaces.SnapshotStore
	analysis common.AnalysisConfig
	logger   *common.Logger
}

var _ interfaces.ChartService = (*Service)(nil)

// NewService creates a chart service
func NewService(store interfaces.SnapshotStore, config *common.Config, logger *common.Logger) *Service {
	return &Service{
		store:    store,
		analysis: config.Analysis,
		logger:   logger,
	}
}

// FileName returns the stored file name for a chart
func FileName(chart string) string {
	return chart + ".png"
}

// Render draws every chart for the split and stores them. A chart that
// fails does not stop the others; the returned names are those written.
func (s *Service) Render(ctx context.Context, split *models.PortfolioSplit) ([]string, error) {
	if split == nil || len(split.Holdings) == 0 {
		s.logger.Info().Msg("No holdings with value, skipping charts")
		return []string{}, nil
	}

	renders := []struct {
		name string
		fn   func() ([]byte, error)
	}{
		{ChartSector, func() ([]byte, error) { return RenderSectorChart(split, s.SectorTotals(split.Holdings)) }},
		{ChartPie, func() ([]byte, error) { return RenderHoldingsPie(split, PieSlices(split.Holdings)) }},
		{ChartBars, func() ([]byte, error) { return RenderTopHoldings(split, TopHoldings(split.Holdings)) }},
	}

	written := []string{}
	var errs []error
	for _, r := range renders {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		data, err := r.fn()
		if err != nil {
			s.logger.Warn().Str("chart", r.name).Err(err).Msg("Failed to render chart")
			errs = append(errs, fmt.Errorf("%s: %w", r.name, err))
			continue
		}

		path, err := s.store.WriteRaw(storage.ChartsDir, FileName(r.name), data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.name, err))
			continue
		}

		s.logger.Info().Str("chart", r.name).Str("path", path).Msg("Chart saved")
		written = append(written, r.name)
	}

	return written, errors.Join(errs...)
}

// SectorTotal is the combined value and share of one sector.
type SectorTotal struct {
	Sector string
	Value  float64
	Pct    float64
}

// SectorTotals groups holdings by sector, ordered by ascending value.
func (s *Service) SectorTotals(holdings []models.SplitHolding) []SectorTotal {
	index := map[string]int{}
	var totals []SectorTotal

	for _, h := range holdings {
		sector := h.Sector
		if sector == "" {
			sector = s.analysis.Sector(h.Ticker)
		}
		i, ok := index[sector]
		if !ok {
			i = len(totals)
			index[sector] = i
			totals = append(totals, SectorTotal{Sector: sector})
		}
		totals[i].Value += h.Value
		totals[i].Pct += h.Pct
	}

	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].Value != totals[j].Value {
			return totals[i].Value < totals[j].Value
		}
		return totals[i].Sector < totals[j].Sector
	})
	return totals
}

// byValueDesc returns a copy of holdings sorted by descending value.
func byValueDesc(holdings []models.SplitHolding) []models.SplitHolding {
	sorted := make([]models.SplitHolding, len(holdings))
	copy(sorted, holdings)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })
	return sorted
}

// PieSlices returns the eight largest holdings plus an "Others" slice
// carrying the remainder when it has value.
func PieSlices(holdings []models.SplitHolding) []models.SplitHolding {
	sorted := byValueDesc(holdings)
	if len(sorted) <= pieSlices {
		return sorted
	}

	slices := sorted[:pieSlices]
	others := models.SplitHolding{Ticker: othersLabel}
	for _, h := range sorted[pieSlices:] {
		others.Value += h.Value
		others.Pct += h.Pct
	}
	if others.Value > 0 {
		slices = append(slices, others)
	}
	return slices
}

// TopHoldings returns up to twelve holdings by descending value.
func TopHoldings(holdings []models.SplitHolding) []models.SplitHolding {
	sorted := byValueDesc(holdings)
	if len(sorted) > topHoldings {
		sorted = sorted[:topHoldings]
	}
	return sorted
}
