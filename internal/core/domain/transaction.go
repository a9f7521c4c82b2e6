package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind distinguishes deposit requests from withdrawal requests.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "DEPOSIT"
	KindWithdrawal TransactionKind = "WITHDRAWAL"
)

// TransactionStatus tracks the settlement state machine. A transaction is
// created PENDING and moves to a terminal state exactly once.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "PENDING"
	StatusApproved TransactionStatus = "APPROVED"
	StatusRejected TransactionStatus = "REJECTED"
)

// MethodType tags the payout/funding method union.
type MethodType string

const (
	MethodBank   MethodType = "BANK"
	MethodCrypto MethodType = "CRYPTO"
	MethodOther  MethodType = "OTHER"
)

// BankDetails is the bank variant of a settlement method.
type BankDetails struct {
	HolderName    string `json:"holderName"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	RoutingCode   string `json:"routingCode,omitempty"`
}

// CryptoDetails is the crypto variant of a settlement method.
type CryptoDetails struct {
	Network string `json:"network"`
	Address string `json:"address"`
}

// SettlementMethod is the tagged union describing how funds move for a
// transaction. The shape is resolved once at transaction-creation time and
// never re-interpreted at read time; unrecognized legacy payloads are carried
// verbatim under Other.
type SettlementMethod struct {
	Type   MethodType      `json:"type"`
	Bank   *BankDetails    `json:"bank,omitempty"`
	Crypto *CryptoDetails  `json:"crypto,omitempty"`
	Other  json.RawMessage `json:"other,omitempty"`
}

// PlanTerms are the optional rate/window terms attached to a deposit
// transaction by the plan reference resolver. Either field may be absent, in
// which case the settlement falls back to transaction-level terms and finally
// to the tiered rate table / default window.
type PlanTerms struct {
	RatePercent *decimal.Decimal `json:"ratePercent,omitempty"`
	WindowDays  *int             `json:"windowDays,omitempty"`
	PlanRef     string           `json:"planRef,omitempty"` // Opaque plan/receipt descriptor
}

// ApprovalSnapshot records what an administrator actually approved, for audit
// reproducibility independent of later account mutation.
type ApprovalSnapshot struct {
	Amount           decimal.Decimal `json:"amount"`
	RatePercent      decimal.Decimal `json:"ratePercent,omitempty"`
	WindowDays       int             `json:"windowDays,omitempty"`
	ProfitTaken      decimal.Decimal `json:"profitTaken"`
	CommissionTaken  decimal.Decimal `json:"commissionTaken"`
	Shortfall        decimal.Decimal `json:"shortfall"`
	ApprovedBy       string          `json:"approvedBy"`
	ApprovedAt       time.Time       `json:"approvedAt"`
}

// Transaction is a user-initiated deposit or withdrawal request awaiting an
// administrator decision. It references its account by identity but is stored
// independently, so the audit trail survives account mutation.
type Transaction struct {
	TransactionID string            `json:"transactionID"` // Primary Key (e.g., UUID)
	AccountID     string            `json:"accountID"`     // FK -> Account.accountID
	Kind          TransactionKind   `json:"kind"`
	Amount        decimal.Decimal   `json:"amount"`
	Status        TransactionStatus `json:"status"`
	Method        SettlementMethod  `json:"method"`

	// Withdrawal request snapshot, captured at creation time.
	ProfitBalanceAtRequest     decimal.Decimal `json:"profitBalanceAtRequest"`
	CommissionBalanceAtRequest decimal.Decimal `json:"commissionBalanceAtRequest"`

	// Deposit plan terms, captured at creation time.
	Plan PlanTerms `json:"plan,omitempty"`

	// Transaction-level terms, used when the plan carries none. A deposit with
	// neither falls back to the tiered rate table and the default window.
	RatePercent *decimal.Decimal `json:"ratePercent,omitempty"`
	WindowDays  *int             `json:"windowDays,omitempty"`

	// Set on terminal transition.
	Approval     *ApprovalSnapshot `json:"approval,omitempty"`
	AdminRemarks string            `json:"adminRemarks,omitempty"`
	AuditFields
}

// IsPending reports whether the transaction can still accept a terminal
// transition.
func (t Transaction) IsPending() bool {
	return t.Status == StatusPending
}

// ProfitTaken returns the recorded amount this withdrawal removed from
// available profit, preferring the explicit approval breakdown and inferring
// min(profit snapshot, amount) for legacy rows without one (profit is always
// drawn before referral commission).
func (t Transaction) ProfitTaken() decimal.Decimal {
	if t.Approval != nil {
		return t.Approval.ProfitTaken
	}
	if t.ProfitBalanceAtRequest.LessThan(t.Amount) {
		return t.ProfitBalanceAtRequest
	}
	return t.Amount
}
