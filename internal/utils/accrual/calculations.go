package accrual

import (
	"fmt"
	"time"

	"github.com/finovest/invest_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// minutesPerDay is the pro-ration base for one full day of profit.
const minutesPerDay = 1440

// BusinessMinutes counts the minutes between start and end that fall on a
// Monday-Friday, clipping the first and last partial day to the actual
// interval bounds. Weekend time contributes nothing.
func BusinessMinutes(start, end time.Time) int64 {
	if !end.After(start) {
		return 0
	}

	var total int64
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	for cur := dayStart; cur.Before(end); cur = cur.AddDate(0, 0, 1) {
		wd := cur.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		from := cur
		if start.After(from) {
			from = start
		}
		to := cur.AddDate(0, 0, 1)
		if end.Before(to) {
			to = end
		}
		if to.After(from) {
			total += int64(to.Sub(from) / time.Minute)
		}
	}
	return total
}

// AccruedProfit computes the profit a deposit has earned as of the given
// instant: simple non-compounding daily interest, pro-rated over business
// minutes, capped at the deposit's explicit end time and the hard maturity
// window. Pure: re-callable any number of times for the same inputs.
func AccruedProfit(dep domain.Deposit, asOf time.Time) (decimal.Decimal, error) {
	if dep.Amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("deposit %s has non-positive amount %s", dep.DepositID, dep.Amount)
	}
	if dep.DailyRatePercent.IsNegative() {
		return decimal.Zero, fmt.Errorf("deposit %s has negative daily rate %s", dep.DepositID, dep.DailyRatePercent)
	}

	start := dep.StartTime
	end := asOf
	if maturity := dep.MaturityTime(); end.After(maturity) {
		end = maturity
	}
	if dep.EndTime != nil && end.After(*dep.EndTime) {
		end = *dep.EndTime
	}
	if !end.After(start) {
		return decimal.Zero, nil
	}

	minutes := BusinessMinutes(start, end)
	if minutes == 0 {
		return decimal.Zero, nil
	}

	dailyProfit := dep.Amount.Mul(dep.DailyRatePercent).Div(decimal.NewFromInt(100))
	profit := dailyProfit.Mul(decimal.NewFromInt(minutes)).Div(decimal.NewFromInt(minutesPerDay))
	return domain.RoundMoney(profit), nil
}
