package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRateTiers(t *testing.T) {
	table, err := ParseRateTiers("100:6, 20:5, 10000:8, 1000:7, 5000:7.5")
	require.NoError(t, err)
	require.Len(t, table, 5)

	// Tiers come back sorted ascending by threshold regardless of input order.
	assert.True(t, table[0].Threshold.Equal(decimal.NewFromInt(20)))
	assert.True(t, table[0].DailyRatePercent.Equal(decimal.NewFromInt(5)))
	assert.True(t, table[4].Threshold.Equal(decimal.NewFromInt(10000)))
	assert.True(t, table[4].DailyRatePercent.Equal(decimal.NewFromInt(8)))
}

func TestParseRateTiers_SkipsEmptySegments(t *testing.T) {
	table, err := ParseRateTiers("20:5,,100:6,")
	require.NoError(t, err)
	assert.Len(t, table, 2)
}

func TestParseRateTiers_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{name: "missing rate", raw: "20"},
		{name: "bad threshold", raw: "abc:5"},
		{name: "bad rate", raw: "20:xyz"},
		{name: "negative rate", raw: "20:-5"},
		{name: "empty input", raw: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRateTiers(tc.raw)
			assert.Error(t, err)
		})
	}
}
