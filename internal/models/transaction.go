package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind distinguishes deposit from withdrawal requests.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "DEPOSIT"
	KindWithdrawal TransactionKind = "WITHDRAWAL"
)

// TransactionStatus mirrors the settlement state machine in the DB.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "PENDING"
	StatusApproved TransactionStatus = "APPROVED"
	StatusRejected TransactionStatus = "REJECTED"
)

// Transaction is the transactions table row. The method union, plan terms and
// approval snapshot live in JSONB columns; their shape is fixed at write time.
type Transaction struct {
	TransactionID              string            `db:"transaction_id"`
	AccountID                  string            `db:"account_id"`
	Kind                       TransactionKind   `db:"kind"`
	Amount                     decimal.Decimal   `db:"amount"`
	Status                     TransactionStatus `db:"status"`
	Method                     []byte            `db:"method"` // JSONB
	ProfitBalanceAtRequest     decimal.Decimal   `db:"profit_balance_at_request"`
	CommissionBalanceAtRequest decimal.Decimal   `db:"commission_balance_at_request"`
	Plan                       []byte            `db:"plan"`     // JSONB, nullable
	Approval                   []byte            `db:"approval"` // JSONB, nullable
	AdminRemarks               string            `db:"admin_remarks"`
	AuditFields
}

// AuditLog is the audit_log table row: append-only operator/action records.
type AuditLog struct {
	AuditID       string    `db:"audit_id"`
	ActorID       string    `db:"actor_id"`
	Action        string    `db:"action"`
	AccountID     string    `db:"account_id"`     // Nullable
	TransactionID string    `db:"transaction_id"` // Nullable
	Metadata      []byte    `db:"metadata"`       // JSONB
	CreatedAt     time.Time `db:"created_at"`
}
