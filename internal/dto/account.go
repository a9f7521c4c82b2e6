package dto

import (
	"time"

	"github.com/finovest/invest_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DepositResponse defines the data returned for a single deposit.
type DepositResponse struct {
	DepositID        string          `json:"depositID"`
	Amount           decimal.Decimal `json:"amount"`
	DailyRatePercent decimal.Decimal `json:"dailyRatePercent"`
	WindowDays       int             `json:"windowDays"`
	StartTime        time.Time       `json:"startTime"`
	EndTime          *time.Time      `json:"endTime,omitempty"`
	Status           string          `json:"status"`
}

// BalanceOverviewResponse is the refreshed ledger view returned by a balance
// read: matured deposits are finalized and net profit recomputed before the
// figures are reported.
type BalanceOverviewResponse struct {
	AccountID          string            `json:"accountID"`
	Email              string            `json:"email"`
	Principal          decimal.Decimal   `json:"principal"`
	AvailableProfit    decimal.Decimal   `json:"availableProfit"`
	ReferralCommission decimal.Decimal   `json:"referralCommission"`
	TotalBalance       decimal.Decimal   `json:"totalBalance"`
	Deposits           []DepositResponse `json:"deposits"`
}

// ReferralEntryResponse is one row of the referral overview.
type ReferralEntryResponse struct {
	ReferredAccountID string          `json:"referredAccountID"`
	Email             string          `json:"email"`
	CapitalSnapshot   decimal.Decimal `json:"capitalSnapshot"`
	CommissionEarned  decimal.Decimal `json:"commissionEarned"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// ToDepositResponse converts a domain.Deposit to DepositResponse DTO.
func ToDepositResponse(d domain.Deposit) DepositResponse {
	return DepositResponse{
		DepositID:        d.DepositID,
		Amount:           d.Amount,
		DailyRatePercent: d.DailyRatePercent,
		WindowDays:       d.WindowDays,
		StartTime:        d.StartTime,
		EndTime:          d.EndTime,
		Status:           string(d.Status),
	}
}

// ToBalanceOverviewResponse converts a refreshed domain.Account to the
// overview DTO.
func ToBalanceOverviewResponse(acc *domain.Account) BalanceOverviewResponse {
	deposits := make([]DepositResponse, len(acc.Deposits))
	for i, d := range acc.Deposits {
		deposits[i] = ToDepositResponse(d)
	}
	return BalanceOverviewResponse{
		AccountID:          acc.AccountID,
		Email:              acc.Email,
		Principal:          acc.Principal,
		AvailableProfit:    acc.AvailableProfit,
		ReferralCommission: acc.ReferralCommission,
		TotalBalance:       acc.Principal.Add(acc.AvailableProfit).Add(acc.ReferralCommission),
		Deposits:           deposits,
	}
}

// ToReferralEntryResponses converts merged referral entries to DTOs.
func ToReferralEntryResponses(entries []domain.ReferralEntry) []ReferralEntryResponse {
	out := make([]ReferralEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = ReferralEntryResponse{
			ReferredAccountID: e.ReferredAccountID,
			Email:             e.Email,
			CapitalSnapshot:   e.CapitalSnapshot,
			CommissionEarned:  e.CommissionEarned,
			CreatedAt:         e.CreatedAt,
		}
	}
	return out
}
