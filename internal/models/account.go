package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the accounts table row: one investor ledger.
type Account struct {
	AccountID          string          `db:"account_id"`
	Email              string          `db:"email"`
	ReferrerID         string          `db:"referrer_id"` // Nullable
	Principal          decimal.Decimal `db:"principal"`
	AvailableProfit    decimal.Decimal `db:"available_profit"`
	ReferralCommission decimal.Decimal `db:"referral_commission"`
	IsActive           bool            `db:"is_active"`
	AuditFields
}

// DepositStatus mirrors the deposit lifecycle states persisted in the DB.
type DepositStatus string

const (
	DepositActive    DepositStatus = "ACTIVE"
	DepositCompleted DepositStatus = "COMPLETED"
)

// Deposit is the deposits table row. Owned by its account; never deleted.
type Deposit struct {
	DepositID        string          `db:"deposit_id"`
	AccountID        string          `db:"account_id"`
	Amount           decimal.Decimal `db:"amount"`
	DailyRatePercent decimal.Decimal `db:"daily_rate_percent"`
	WindowDays       int             `db:"window_days"`
	StartTime        time.Time       `db:"start_time"`
	EndTime          *time.Time      `db:"end_time"` // Nullable
	Status           DepositStatus   `db:"status"`
	AuditFields
}

// ReferralEntry is the referral_entries table row: one per (referrer,
// referred) pair, merged on conflict. ReferredAccountID is nullable for
// legacy rows keyed only by email.
type ReferralEntry struct {
	ReferrerAccountID string          `db:"referrer_account_id"`
	ReferredAccountID string          `db:"referred_account_id"`
	Email             string          `db:"email"`
	CapitalSnapshot   decimal.Decimal `db:"capital_snapshot"`
	CommissionEarned  decimal.Decimal `db:"commission_earned"`
	CreatedAt         time.Time       `db:"created_at"`
}
