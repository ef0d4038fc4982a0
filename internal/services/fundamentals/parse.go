package fundamentals

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/models"
)

// Amounts at or above this are taken to be stated in millions.
const millionsThreshold = 100

const amount = `[:\s]+\$?(\d+\.?\d*)`

func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

var (
	revenuePatterns = patterns(
		`(?:Total\s+)?Revenue`+amount+`\s*(?:billion|B)`,
		`Net\s+Sales`+amount+`\s*(?:billion|B)`,
		`Product\s+Revenue`+amount+`\s*(?:billion|B)`,
		`Service\s+Revenue`+amount+`\s*(?:billion|B)`,
	)
	cogsPatterns = patterns(
		`Cost\s+of\s+(?:Revenue|Products|Sales)` + amount + `\s*(?:billion|B)`,
	)
	operatingIncomePatterns = patterns(
		`Operating\s+Income`+amount+`\s*(?:billion|B)`,
		`Operating\s+Profit`+amount+`\s*(?:billion|B)`,
	)
	netIncomePatterns = patterns(
		`Net\s+Income`+amount+`\s*(?:billion|B)`,
		`Net\s+(?:Earnings|Profit)`+amount+`\s*(?:billion|B)`,
	)
	epsPatterns = patterns(
		`(?:Diluted\s+)?EPS`+amount,
		`Earnings\s+per\s+Share`+amount,
	)
	guidancePatterns = patterns(
		`(?:FY|Full\s+Year)\s*(?:20\d\d)?\s*(?:EPS|earnings).*?(?:guidance|outlook|expected)`+amount,
		`(?:Forward|Estimated)\s+EPS`+amount,
		`20\d\d\s*(?:EPS|earnings).*?guidance`+amount,
	)

	textCleaner = strings.NewReplacer(",", "", "$", "", "(", "-", ")", "")
)

// firstMatch returns the number captured by the first matching pattern.
func firstMatch(text string, res []*regexp.Regexp) (float64, bool) {
	for _, re := range res {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		return v, true
	}
	return 0, false
}

// billions normalises an amount that may be stated in millions.
func billions(v float64) float64 {
	if v < millionsThreshold {
		return v
	}
	return v / 1000
}

// ParseFinancials scans filing text for headline metrics. Absent metrics
// stay nil; gross profit and margin are derived when both revenue and cost
// of revenue are found.
func ParseFinancials(text string) *models.FundamentalRecord {
	text = textCleaner.Replace(text)
	rec := &models.FundamentalRecord{}

	if v, ok := firstMatch(text, revenuePatterns); ok {
		rec.RevenueBillions = models.Float(billions(v))
	}
	if v, ok := firstMatch(text, cogsPatterns); ok {
		rec.COGSBillions = models.Float(billions(v))
	}
	if rec.RevenueBillions != nil && rec.COGSBillions != nil {
		rev := *rec.RevenueBillions
		gross := rev - *rec.COGSBillions
		rec.GrossProfitBillions = models.Float(gross)
		if rev > 0 {
			rec.GrossMarginPct = models.Float(common.Round(gross/rev*100, 1))
		}
	}
	if v, ok := firstMatch(text, operatingIncomePatterns); ok {
		rec.OperatingIncomeBillions = models.Float(billions(v))
	}
	if v, ok := firstMatch(text, netIncomePatterns); ok {
		rec.NetIncomeBillions = models.Float(billions(v))
	}
	if v, ok := firstMatch(text, epsPatterns); ok {
		rec.EPS = models.Float(v)
	}
	if v, ok := firstMatch(text, guidancePatterns); ok {
		rec.EPSGuidance = models.Float(v)
	}

	return rec
}
