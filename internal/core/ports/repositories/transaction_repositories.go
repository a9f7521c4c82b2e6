package repositories

import (
	"context"

	"github.com/finovest/invest_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReferralCredit carries the referrer-side effects of an approved deposit:
// the commission added to the referrer's balance and the snapshot entry to
// merge into their referral ledger.
type ReferralCredit struct {
	ReferrerAccountID string
	Commission        decimal.Decimal
	Entry             domain.ReferralEntry
}

// TransactionReader defines read operations for settlement transactions.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by its ID.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListApprovedWithdrawals retrieves the approved withdrawal transactions
	// of an account, oldest first. Feeds the net-profit reconciliation.
	ListApprovedWithdrawals(ctx context.Context, accountID string) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for settlement transactions.
type TransactionWriter interface {
	// SaveTransaction persists a new pending transaction.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
}

// BalanceSnapshot carries the withdrawable balances a settlement decision was
// computed from, so the repository can verify them against the locked row.
type BalanceSnapshot struct {
	AvailableProfit    decimal.Decimal
	ReferralCommission decimal.Decimal
}

// SettlementSupport executes terminal transitions as single atomic units over
// the Transaction + Account + Audit triple. Every method re-checks the PENDING
// guard inside its database transaction: a concurrent settlement of the same
// transaction observes the already-terminal state and fails with
// apperrors.ErrConflict, never double-applying balance effects.
type SettlementSupport interface {
	// SettleWithdrawal marks the withdrawal approved (status, approval
	// snapshot, remarks taken from txn), applies the balance deltas to the
	// owning account, and writes the audit entry. The locked account row must
	// still match expected, otherwise nothing is committed and the call fails
	// with apperrors.ErrStaleBalance so the caller can recompute the deltas
	// from fresh balances.
	SettleWithdrawal(ctx context.Context, txn domain.Transaction, expected BalanceSnapshot, deltas BalanceDeltas, audit domain.AuditEntry) error

	// SettleDeposit marks the deposit transaction approved, inserts the new
	// deposit, credits the principal, and, when credit is non-nil, credits the
	// referrer's commission and merges their referral entry — all in one unit.
	SettleDeposit(ctx context.Context, txn domain.Transaction, deposit domain.Deposit, deltas BalanceDeltas, credit *ReferralCredit, audit domain.AuditEntry) error

	// RejectTransaction marks the transaction rejected with remarks and writes
	// the audit entry. No balance mutation.
	RejectTransaction(ctx context.Context, txn domain.Transaction, audit domain.AuditEntry) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
	SettlementSupport
}
