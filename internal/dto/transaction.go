package dto

import (
	"encoding/json"
	"time"

	"github.com/finovest/invest_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BankMethodRequest carries bank payout/funding details.
type BankMethodRequest struct {
	HolderName    string `json:"holderName" binding:"required"`
	BankName      string `json:"bankName" binding:"required"`
	AccountNumber string `json:"accountNumber" binding:"required"`
	RoutingCode   string `json:"routingCode"`
}

// CryptoMethodRequest carries crypto payout/funding details.
type CryptoMethodRequest struct {
	Network string `json:"network" binding:"required"`
	Address string `json:"address" binding:"required"`
}

// MethodRequest is the wire shape of the settlement method union. The variant
// matching Type must be present; it is resolved once at creation time.
type MethodRequest struct {
	Type   string               `json:"type" binding:"required,oneof=BANK CRYPTO OTHER"`
	Bank   *BankMethodRequest   `json:"bank,omitempty"`
	Crypto *CryptoMethodRequest `json:"crypto,omitempty"`
	Other  json.RawMessage      `json:"other,omitempty"`
}

// CreateDepositRequest defines the data needed to file a deposit request.
type CreateDepositRequest struct {
	Amount         decimal.Decimal  `json:"amount" binding:"required"`
	Method         MethodRequest    `json:"method" binding:"required"`
	PlanRef        string           `json:"planRef,omitempty"`
	PlanRate       *decimal.Decimal `json:"planRatePercent,omitempty"`
	PlanWindowDays *int             `json:"planWindowDays,omitempty"`
}

// CreateWithdrawalRequest defines the data needed to file a withdrawal request.
type CreateWithdrawalRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Method MethodRequest   `json:"method" binding:"required"`
}

// SettleRequest is an administrator approval. Amount optionally overrides the
// requested amount; when absent the transaction's own amount is approved.
type SettleRequest struct {
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	Remarks string           `json:"remarks,omitempty"`
}

// RejectRequest is an administrator rejection with mandatory remarks.
type RejectRequest struct {
	Remarks string `json:"remarks" binding:"required"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	MethodType    string          `json:"methodType"`
	AdminRemarks  string          `json:"adminRemarks,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// WithdrawalSettlementResult reports the outcome of an approved withdrawal,
// including the cascading deduction breakdown. A non-zero shortfall is the
// portion the account balances could not cover; it is surfaced here and
// flagged to operators rather than silently stored.
type WithdrawalSettlementResult struct {
	Transaction     TransactionResponse `json:"transaction"`
	ProfitTaken     decimal.Decimal     `json:"profitTaken"`
	CommissionTaken decimal.Decimal     `json:"commissionTaken"`
	Shortfall       decimal.Decimal     `json:"shortfall"`
}

// DepositSettlementResult reports the outcome of an approved deposit.
type DepositSettlementResult struct {
	Transaction        TransactionResponse `json:"transaction"`
	Deposit            DepositResponse     `json:"deposit"`
	ReferrerAccountID  string              `json:"referrerAccountID,omitempty"`
	ReferralCommission decimal.Decimal     `json:"referralCommission"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		AccountID:     t.AccountID,
		Kind:          string(t.Kind),
		Amount:        t.Amount,
		Status:        string(t.Status),
		MethodType:    string(t.Method.Type),
		AdminRemarks:  t.AdminRemarks,
		CreatedAt:     t.CreatedAt,
		LastUpdatedAt: t.LastUpdatedAt,
	}
}
