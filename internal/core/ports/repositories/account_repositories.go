package repositories

import (
	"context"
	"time"

	"github.com/finovest/invest_ledger_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BalanceDeltas describes signed changes to an account's three monetary
// fields, applied atomically inside a settlement transaction. Resulting
// balances are rounded to two decimals and floored at zero.
type BalanceDeltas struct {
	Principal          decimal.Decimal
	AvailableProfit    decimal.Decimal
	ReferralCommission decimal.Decimal
}

// AccountReader defines read operations for account aggregates.
type AccountReader interface {
	// FindAccountByID retrieves an account together with its deposits and
	// referral entries.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts (without child rows) by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// FindReferrerOfAccount finds the account holding a referral entry that
	// references the given account, by identity or by email for legacy
	// entries. Returns apperrors.ErrNotFound when no referrer exists.
	FindReferrerOfAccount(ctx context.Context, referredAccountID, referredEmail string) (*domain.Account, error)
}

// AccountWriter defines write operations for account aggregates.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// FinalizeDeposits transitions the given deposits to COMPLETED with their
	// computed end times and sets the account principal, as one unit. Deposit
	// updates are guarded on the ACTIVE status so repeated invocation is a no-op.
	FinalizeDeposits(ctx context.Context, accountID string, matured []domain.Deposit, principal decimal.Decimal, updatedBy string, now time.Time) error

	// UpdateAvailableProfit persists a recomputed net profit figure.
	UpdateAvailableProfit(ctx context.Context, accountID string, availableProfit decimal.Decimal, updatedBy string, now time.Time) error
}

// AccountSettlementSupport defines account operations used inside a settlement
// database transaction.
type AccountSettlementSupport interface {
	// FindAccountByIDForUpdate selects an account row and locks it for update.
	FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error)

	// ApplyBalanceDeltasInTx applies balance deltas to an account within the
	// given transaction.
	ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, accountID string, deltas BalanceDeltas, updatedBy string, now time.Time) error

	// InsertDepositInTx persists a newly created deposit within the given transaction.
	InsertDepositInTx(ctx context.Context, tx pgx.Tx, deposit domain.Deposit) error

	// UpsertReferralEntryInTx merges a referral entry by (referrer, referred)
	// identity: commission accumulates and the capital snapshot is replaced.
	UpsertReferralEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.ReferralEntry) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountSettlementSupport
}
