package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Round rounds v to the given number of decimal places using the exact decimal
// value of v, with ties going to the even digit.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// FormatNumber renders v with the shortest decimal representation (no trailing zeros).
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatMoney renders a value with a currency symbol and thousands separators, e.g. "£12,345".
func FormatMoney(symbol string, v float64) string {
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(math.Round(v)), 'f', 0, 64)

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + symbol + b.String()
	}
	return symbol + b.String()
}

// FormatVolumeMillions renders a share volume in millions, e.g. "12.3M".
func FormatVolumeMillions(v int64) string {
	return fmt.Sprintf("%.1fM", float64(v)/1e6)
}
