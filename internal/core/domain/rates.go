package domain

import "github.com/shopspring/decimal"

// RateTier maps a principal threshold to the daily rate it earns.
type RateTier struct {
	Threshold        decimal.Decimal `json:"threshold"`
	DailyRatePercent decimal.Decimal `json:"dailyRatePercent"`
}

// RateTable is a fixed ascending tier table used to resolve a daily rate when
// a deposit carries no explicit rate. Static configuration data, injected at
// call time.
type RateTable []RateTier

// Resolve returns the daily rate percent for the given principal: the highest
// tier whose threshold does not exceed the amount (an exact match therefore
// wins), with amounts below the lowest tier earning the lowest tier's rate.
func (t RateTable) Resolve(amount decimal.Decimal) decimal.Decimal {
	if len(t) == 0 {
		return decimal.Zero
	}
	rate := t[0].DailyRatePercent
	for _, tier := range t {
		if amount.GreaterThanOrEqual(tier.Threshold) {
			rate = tier.DailyRatePercent
		} else {
			break
		}
	}
	return rate
}

// DefaultRateTable is the product's standard tier schedule.
func DefaultRateTable() RateTable {
	return RateTable{
		{Threshold: decimal.NewFromInt(20), DailyRatePercent: decimal.NewFromInt(5)},
		{Threshold: decimal.NewFromInt(100), DailyRatePercent: decimal.NewFromInt(6)},
		{Threshold: decimal.NewFromInt(1000), DailyRatePercent: decimal.NewFromInt(7)},
		{Threshold: decimal.NewFromInt(5000), DailyRatePercent: decimal.NewFromFloat(7.5)},
		{Threshold: decimal.NewFromInt(10000), DailyRatePercent: decimal.NewFromInt(8)},
	}
}
