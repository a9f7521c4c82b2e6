package services

import (
	"context"

	"github.com/finovest/invest_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SettlementConfig is the configuration data settlements depend on.
type SettlementConfig struct {
	// ReferralRate is the fraction of an approved deposit credited to the
	// referrer, in [0,1].
	ReferralRate decimal.Decimal
	// RateTable resolves a daily rate for deposits without explicit terms.
	RateTable domain.RateTable
	// DefaultWindowDays is the deposit term recorded when none is supplied.
	DefaultWindowDays int
	// MinTransactionAmount is the smallest deposit/withdrawal a user may file.
	MinTransactionAmount decimal.Decimal
}

// ConfigSource supplies settlement configuration. Read once per operation
// rather than cached indefinitely, so operators can adjust rates without a
// restart.
type ConfigSource interface {
	SettlementConfig(ctx context.Context) SettlementConfig
}
