package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 4.0, Round(4.0, 1))
	assert.Equal(t, 7.2, Round(7.25, 1))
	assert.Equal(t, 7.3, Round(7.35, 1))
	assert.Equal(t, 6.1, Round(6.05+0.0001, 1))
	assert.Equal(t, 0.1235, Round(0.12345, 4))
	assert.Equal(t, -2.2, Round(-2.25, 1))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "28", FormatNumber(28))
	assert.Equal(t, "1.5", FormatNumber(1.5))
	assert.Equal(t, "500.25", FormatNumber(500.25))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "£0", FormatMoney("£", 0))
	assert.Equal(t, "£999", FormatMoney("£", 999))
	assert.Equal(t, "£1,000", FormatMoney("£", 1000))
	assert.Equal(t, "£12,345,678", FormatMoney("£", 12345678.4))
	assert.Equal(t, "-$1,500", FormatMoney("$", -1500))
}

func TestFormatVolumeMillions(t *testing.T) {
	assert.Equal(t, "12.3M", FormatVolumeMillions(12_345_678))
}
