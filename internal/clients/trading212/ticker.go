package trading212

import "strings"

// instrumentTickers maps full instrument codes whose base symbol differs from
// the listing symbol.
var instrumentTickers = map[string]string{
	"VFEGl_EQ": "VFEM",
	"COPXl_EQ": "COPX",
	"VUAGl_EQ": "VUSA",
	"NWGl_EQ":  "NWG",
	"BARCl_EQ": "BARC",
	"RBSl_EQ":  "NWG",
}

// shortCodes maps truncated base symbols to their listing symbol.
var shortCodes = map[string]string{
	"FB":   "META",
	"AMZ":  "AMZN",
	"NVD":  "NVDA",
	"MSF":  "MSFT",
	"ASM":  "ASML",
	"TT8":  "TTD",
	"UT8":  "UBER",
	"ABE":  "ABEA",
	"ORC":  "ORCL",
	"ORCd": "ORCL",
	"YND":  "YNDX",
	"1YD":  "YNDX",
	"FB2A": "META",
}

// ParseTicker converts an instrument code such as "AMDd_US_EQ" or "BARCl_EQ"
// to a plain symbol.
func ParseTicker(full string) string {
	if t, ok := instrumentTickers[full]; ok {
		return t
	}

	base, _, _ := strings.Cut(full, "_")
	if strings.HasSuffix(base, "d") || strings.HasSuffix(base, "l") {
		base = base[:len(base)-1]
	}

	if t, ok := shortCodes[base]; ok {
		return t
	}
	return base
}
