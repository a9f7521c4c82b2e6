package domain

import (
	"github.com/shopspring/decimal"
)

// Account represents an investor's ledger within the core domain.
// This is the primary representation used by services. The account exclusively
// owns its deposits and referral entries; they have no independent lifecycle.
type Account struct {
	AccountID          string          `json:"accountID"` // Primary Key (e.g., UUID)
	Email              string          `json:"email"`
	ReferrerID         string          `json:"referrerID,omitempty"` // Nullable FK -> accounts.account_id
	Principal          decimal.Decimal `json:"principal"`            // Active capital
	AvailableProfit    decimal.Decimal `json:"availableProfit"`      // Net accrued profit, recomputed on read
	ReferralCommission decimal.Decimal `json:"referralCommission"`
	IsActive           bool            `json:"isActive"`
	Deposits           []Deposit       `json:"deposits,omitempty"`
	ReferralEntries    []ReferralEntry `json:"referralEntries,omitempty"`
	AuditFields
}

// TotalWithdrawable is the balance an approved withdrawal may draw from:
// available profit plus referral commission.
func (a Account) TotalWithdrawable() decimal.Decimal {
	return a.AvailableProfit.Add(a.ReferralCommission)
}

// ActiveDeposits returns the deposits still accruing profit.
func (a Account) ActiveDeposits() []Deposit {
	active := make([]Deposit, 0, len(a.Deposits))
	for _, d := range a.Deposits {
		if d.Status == DepositActive {
			active = append(active, d)
		}
	}
	return active
}
