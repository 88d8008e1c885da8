package finance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs float64
		want string
	}{
		{0, "0s"},
		{0.9, "0s"},
		{59, "59s"},
		{60, "1m"},
		{3600, "1h"},
		{90061, "1d 1h 1m 1s"},
		{SecondsPerYear, "1y 6h"},
		{math.Inf(1), Infinite},
		{-1, Infinite},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.secs), "FormatDuration(%v)", tt.secs)
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "R$ 1.234,50", FormatMoney(1234.5, 2, BRL))
	assert.Equal(t, "R$ 1.000.000,00", FormatMoney(1_000_000, 2, BRL))
	assert.Equal(t, "R$ 0,0001", FormatMoney(0.00011371, 4, BRL))
	assert.Equal(t, "$1,234.57", FormatMoney(1234.567, 2, USD))
	assert.Equal(t, "-$12.00", FormatMoney(-12, 2, USD))
	assert.Equal(t, "$999", FormatMoney(999.4, 0, USD))
}

func TestCurrencyByCode(t *testing.T) {
	assert.Equal(t, USD, CurrencyByCode("USD"))
	assert.Equal(t, BRL, CurrencyByCode("nope"))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "25.00%", FormatPercent(25, 2))
	assert.Equal(t, "8.00000%", FormatPercent(8, 5))
}

func TestParseAmount(t *testing.T) {
	for in, want := range map[string]float64{
		"1,000,000": 1_000_000,
		"4.5":       4.5,
		" 4.5% ":    4.5,
		"50_000":    50_000,
		"-3":        -3,
	} {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseAmount("")
	assert.Error(t, err)
	_, err = ParseAmount("abc")
	assert.Error(t, err)
}
