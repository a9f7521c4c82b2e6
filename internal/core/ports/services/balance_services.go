package services

import (
	"context"

	"github.com/finovest/invest_ledger_app/internal/core/domain"
)

// BalanceSvcFacade exposes the refreshed ledger view of an account.
type BalanceSvcFacade interface {
	// GetBalanceOverview finalizes matured deposits, recomputes the available
	// net profit, persists both, and returns the refreshed account. Safe to
	// run concurrently: it is an idempotent function of persisted history.
	GetBalanceOverview(ctx context.Context, accountID string) (*domain.Account, error)
}

// ReferralSvcFacade exposes the merged referral ledger of a referrer.
type ReferralSvcFacade interface {
	// GetReferralOverview returns the referrer's snapshot entries merged
	// against live referred-account records.
	GetReferralOverview(ctx context.Context, accountID string) ([]domain.ReferralEntry, error)
}
