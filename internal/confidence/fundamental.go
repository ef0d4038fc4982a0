package confidence

import (
	"fmt"

	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/models"
)

// Fundamental scores extracted filing metrics. An absent or empty record is neutral.
// Within a non-empty record, missing revenue and margin read as zero.
func (s *Scorer) Fundamental(rec *models.FundamentalRecord) models.ScoreComponent {
	if rec.IsEmpty() {
		return neutralComponent("No fundamentals available")
	}

	c := newComponent()

	revenue := models.ValueOf(rec.RevenueBillions)
	switch {
	case revenue > 50:
		c.add(fmt.Sprintf("Large cap revenue ($%sB)", common.FormatNumber(revenue)), 1.5)
	case revenue > 10:
		c.add(fmt.Sprintf("Mid cap revenue ($%sB)", common.FormatNumber(revenue)), 1)
	}

	margin := models.ValueOf(rec.GrossMarginPct)
	switch {
	case margin > 60:
		c.add(fmt.Sprintf("High margin (%s%%)", common.FormatNumber(margin)), 2)
	case margin > 50:
		c.add(fmt.Sprintf("Good margin (%s%%)", common.FormatNumber(margin)), 1)
	case margin < 20:
		c.add(fmt.Sprintf("Low margin (%s%%)", common.FormatNumber(margin)), -2)
	}

	eps := models.ValueOf(rec.EPS)
	guidance := models.ValueOf(rec.EPSGuidance)
	if eps != 0 && guidance != 0 {
		switch {
		case guidance > eps:
			c.add(fmt.Sprintf("Raising guidance (%s->%s)", common.FormatNumber(eps), common.FormatNumber(guidance)), 2.5)
		case guidance < eps*0.9:
			c.add("Guidance cut", -3)
		default:
			c.add("Stable guidance", 1)
		}
	}

	if eps > 0 {
		c.add(fmt.Sprintf("Positive EPS (%s)", common.FormatNumber(eps)), 1)
	}

	if models.ValueOf(rec.OperatingIncomeBillions) > 0 {
		c.add("Operating profit", 1)
	}

	return c.result()
}
