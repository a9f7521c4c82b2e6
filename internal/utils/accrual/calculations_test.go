package accrual_test

import (
	"testing"
	"time"

	"github.com/finovest/invest_ledger_app/internal/core/domain"
	"github.com/finovest/invest_ledger_app/internal/utils/accrual"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-01 was a Monday.
var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func dep(amount int64, rate float64, start time.Time) domain.Deposit {
	return domain.Deposit{
		DepositID:        "dep-1",
		Amount:           decimal.NewFromInt(amount),
		DailyRatePercent: decimal.NewFromFloat(rate),
		WindowDays:       60,
		StartTime:        start,
		Status:           domain.DepositActive,
	}
}

func TestBusinessMinutes(t *testing.T) {
	saturday := monday.AddDate(0, 0, 5)

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int64
	}{
		{"zero interval", monday, monday, 0},
		{"inverted interval", monday.Add(time.Hour), monday, 0},
		{"one full weekday", monday, monday.AddDate(0, 0, 1), 1440},
		{"partial weekday", monday.Add(9 * time.Hour), monday.Add(17 * time.Hour), 8 * 60},
		{"weekend only", saturday, saturday.AddDate(0, 0, 2), 0},
		{"full week", monday, monday.AddDate(0, 0, 7), 5 * 1440},
		{"friday into saturday", monday.AddDate(0, 0, 4).Add(23 * time.Hour), saturday.Add(6 * time.Hour), 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, accrual.BusinessMinutes(tt.start, tt.end))
		})
	}
}

func TestAccruedProfit_FullBusinessDay(t *testing.T) {
	d := dep(1000, 5, monday)

	got, err := accrual.AccruedProfit(d, monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(50)), "got %s", got)
}

func TestAccruedProfit_WeekendEarnsNothing(t *testing.T) {
	saturday := monday.AddDate(0, 0, 5)
	d := dep(5000, 8, saturday)

	got, err := accrual.AccruedProfit(d, saturday.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.True(t, got.IsZero(), "weekend-only interval must accrue zero, got %s", got)
}

func TestAccruedProfit_NonDecreasingUntilCap(t *testing.T) {
	d := dep(1000, 5, monday)

	prev := decimal.Zero
	for day := 0; day <= domain.AccrualCapDays; day++ {
		got, err := accrual.AccruedProfit(d, monday.AddDate(0, 0, day))
		require.NoError(t, err)
		assert.True(t, got.GreaterThanOrEqual(prev), "accrual decreased on day %d: %s < %s", day, got, prev)
		assert.False(t, got.IsNegative())
		prev = got
	}

	atCap, err := accrual.AccruedProfit(d, d.MaturityTime())
	require.NoError(t, err)
	wellPastCap, err := accrual.AccruedProfit(d, d.MaturityTime().AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.True(t, atCap.Equal(wellPastCap), "accrual must freeze at the cap: %s vs %s", atCap, wellPastCap)
}

func TestAccruedProfit_ExplicitEndTimeCaps(t *testing.T) {
	end := monday.AddDate(0, 0, 2)
	d := dep(1000, 5, monday)
	d.EndTime = &end

	got, err := accrual.AccruedProfit(d, monday.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(100)), "got %s", got)
}

func TestAccruedProfit_Idempotent(t *testing.T) {
	d := dep(750, 6, monday)
	asOf := monday.AddDate(0, 0, 13).Add(7 * time.Hour)

	first, err := accrual.AccruedProfit(d, asOf)
	require.NoError(t, err)
	second, err := accrual.AccruedProfit(d, asOf)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestAccruedProfit_InvalidDeposit(t *testing.T) {
	bad := dep(0, 5, monday)
	_, err := accrual.AccruedProfit(bad, monday.AddDate(0, 0, 1))
	assert.Error(t, err)

	negRate := dep(100, -1, monday)
	_, err = accrual.AccruedProfit(negRate, monday.AddDate(0, 0, 1))
	assert.Error(t, err)
}
