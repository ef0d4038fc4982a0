package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/models"
)

var palette = []drawing.Color{
	drawing.ColorFromHex("440154"),
	drawing.ColorFromHex("3b528b"),
	drawing.ColorFromHex("21918c"),
	drawing.ColorFromHex("5ec962"),
	drawing.ColorFromHex("fde725"),
	drawing.ColorFromHex("2563eb"),
	drawing.ColorFromHex("f59e0b"),
	drawing.ColorFromHex("ef4444"),
	drawing.ColorFromHex("9ca3af"),
}

func colour(i int) drawing.Color {
	return palette[i%len(palette)]
}

func moneyFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return common.FormatMoney("£", f)
	}
	return ""
}

// renderBars draws a vertical bar chart with a zero-based value axis.
func renderBars(title string, width int, bars []chart.Value) ([]byte, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no values to chart")
	}

	max := 0.0
	for i := range bars {
		if bars[i].Value > max {
			max = bars[i].Value
		}
		bars[i].Style = chart.Style{
			FillColor:   colour(i),
			StrokeColor: colour(i),
		}
	}
	if max <= 0 {
		return nil, fmt.Errorf("no positive values to chart")
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    width,
		Height:   600,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 60, Left: 10, Right: 20, Bottom: 20},
		},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: max * 1.3},
			ValueFormatter: moneyFormatter,
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderSectorChart draws sector allocation in ascending value order.
func RenderSectorChart(split *models.PortfolioSplit, sectors []SectorTotal) ([]byte, error) {
	bars := make([]chart.Value, len(sectors))
	for i, s := range sectors {
		bars[i] = chart.Value{
			Value: s.Value,
			Label: fmt.Sprintf("%s %s (%.1f%%)", s.Sector, common.FormatMoney("£", s.Value), s.Pct),
		}
	}
	return renderBars(fmt.Sprintf("Sector Allocation - %s", stamp(split)), 1200, bars)
}

// RenderHoldingsPie draws the largest holdings with the remainder as "Others".
func RenderHoldingsPie(split *models.PortfolioSplit, slices []models.SplitHolding) ([]byte, error) {
	if len(slices) == 0 {
		return nil, fmt.Errorf("no values to chart")
	}

	values := make([]chart.Value, len(slices))
	for i, h := range slices {
		values[i] = chart.Value{
			Value: h.Value,
			Label: fmt.Sprintf("%s %.1f%%", h.Ticker, h.Pct),
			Style: chart.Style{FillColor: colour(i)},
		}
	}

	graph := chart.PieChart{
		Title:  fmt.Sprintf("Holdings Breakdown - %s", stamp(split)),
		Width:  800,
		Height: 800,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderTopHoldings draws the largest holdings by value.
func RenderTopHoldings(split *models.PortfolioSplit, top []models.SplitHolding) ([]byte, error) {
	bars := make([]chart.Value, len(top))
	for i, h := range top {
		bars[i] = chart.Value{
			Value: h.Value,
			Label: fmt.Sprintf("%s (%.1f%%)", h.Ticker, h.Pct),
		}
	}
	return renderBars(fmt.Sprintf("Top Holdings - %s", stamp(split)), 1400, bars)
}

func stamp(split *models.PortfolioSplit) string {
	if split.Timestamp.IsZero() {
		return ""
	}
	return split.Timestamp.Format("2006-01-02 15:04")
}
