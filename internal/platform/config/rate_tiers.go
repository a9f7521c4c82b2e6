package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/finovest/invest_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ParseRateTiers parses a "threshold:rate,threshold:rate" string into an
// ascending rate table.
func ParseRateTiers(raw string) (domain.RateTable, error) {
	parts := strings.Split(raw, ",")
	table := make(domain.RateTable, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pair := strings.SplitN(part, ":", 2)
		if len(pair) != 2 {
			return nil, fmt.Errorf("tier %q is not threshold:rate", part)
		}
		threshold, err := decimal.NewFromString(strings.TrimSpace(pair[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid tier threshold %q: %w", pair[0], err)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(pair[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid tier rate %q: %w", pair[1], err)
		}
		if rate.IsNegative() {
			return nil, fmt.Errorf("tier rate %s must not be negative", rate)
		}
		table = append(table, domain.RateTier{Threshold: threshold, DailyRatePercent: rate})
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("no tiers present")
	}
	sort.Slice(table, func(i, j int) bool {
		return table[i].Threshold.LessThan(table[j].Threshold)
	})
	return table, nil
}
