package fundamentals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vigil/internal/models"
)

func TestParseFinancials_FullStatement(t *testing.T) {
	text := `NVIDIA Announces Financial Results for Third Quarter
Total Revenue: $26.04 billion, up 18% from previous quarter
Cost of Revenue: $6.50 billion
Operating Income: $16.9 billion
Net Income: $14.88 billion
Diluted EPS: $0.60
Full Year EPS guidance: $2.95`

	rec := ParseFinancials(text)

	require.NotNil(t, rec.RevenueBillions)
	assert.Equal(t, 26.04, *rec.RevenueBillions)
	assert.Equal(t, 6.5, *rec.COGSBillions)
	assert.InDelta(t, 19.54, *rec.GrossProfitBillions, 1e-9)
	assert.Equal(t, 75.0, *rec.GrossMarginPct)
	assert.Equal(t, 16.9, *rec.OperatingIncomeBillions)
	assert.Equal(t, 14.88, *rec.NetIncomeBillions)
	assert.Equal(t, 0.6, *rec.EPS)
	assert.Equal(t, 2.95, *rec.EPSGuidance)
}

func TestParseFinancials(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		check func(t *testing.T, rec *models.FundamentalRecord)
	}{
		{
			name: "millions normalised with thousands separators",
			text: "Net Sales: 1,250.5 B for the year",
			check: func(t *testing.T, rec *models.FundamentalRecord) {
				require.NotNil(t, rec.RevenueBillions)
				assert.InDelta(t, 1.2505, *rec.RevenueBillions, 1e-12)
			},
		},
		{
			name: "revenue without cost leaves gross fields empty",
			text: "Revenue: 61.9 billion",
			check: func(t *testing.T, rec *models.FundamentalRecord) {
				assert.Equal(t, 61.9, *rec.RevenueBillions)
				assert.Nil(t, rec.COGSBillions)
				assert.Nil(t, rec.GrossProfitBillions)
				assert.Nil(t, rec.GrossMarginPct)
			},
		},
		{
			name: "zero revenue skips margin",
			text: "Revenue: 0 billion. Cost of Sales: 1.5 billion",
			check: func(t *testing.T, rec *models.FundamentalRecord) {
				assert.Equal(t, -1.5, *rec.GrossProfitBillions)
				assert.Nil(t, rec.GrossMarginPct)
			},
		},
		{
			name: "earnings per share wording",
			text: "Earnings per Share: 3.30",
			check: func(t *testing.T, rec *models.FundamentalRecord) {
				assert.Equal(t, 3.3, *rec.EPS)
				assert.Nil(t, rec.EPSGuidance)
			},
		},
		{
			name: "forward EPS guidance",
			text: "Forward EPS: 4.10",
			check: func(t *testing.T, rec *models.FundamentalRecord) {
				assert.Equal(t, 4.1, *rec.EPSGuidance)
			},
		},
		{
			name: "operating profit and net earnings",
			text: "operating profit: 2.2 B and net earnings: 1.1 B",
			check: func(t *testing.T, rec *models.FundamentalRecord) {
				assert.Equal(t, 2.2, *rec.OperatingIncomeBillions)
				assert.Equal(t, 1.1, *rec.NetIncomeBillions)
			},
		},
		{
			name: "nothing recognisable",
			text: "Forward-looking statements involve risks and uncertainties.",
			check: func(t *testing.T, rec *models.FundamentalRecord) {
				assert.True(t, rec.IsEmpty())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ParseFinancials(tt.text))
		})
	}
}

func TestParseModelJSON(t *testing.T) {
	rec, err := parseModelJSON("```json\n{\"revenue_billions\": 12.5, \"eps\": null, \"gross_margin_pct\": 41.2}\n```")
	require.NoError(t, err)
	assert.Equal(t, 12.5, *rec.RevenueBillions)
	assert.Equal(t, 41.2, *rec.GrossMarginPct)
	assert.Nil(t, rec.EPS)

	_, err = parseModelJSON("I could not read the document.")
	assert.Error(t, err)

	_, err = parseModelJSON("{not json}")
	assert.Error(t, err)
}

func TestExtractPDFText_Invalid(t *testing.T) {
	_, err := extractPDFText([]byte("this is not a pdf"))
	assert.Error(t, err)
}
