package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositStatus indicates the lifecycle state of a deposit.
type DepositStatus string

const (
	DepositActive    DepositStatus = "ACTIVE"
	DepositCompleted DepositStatus = "COMPLETED"
)

// AccrualCapDays is the hard maturity window in calendar days. Accrual never
// extends past it regardless of the deposit's own WindowDays, and deposits are
// finalized once it elapses. WindowDays is display-only.
const AccrualCapDays = 60

// Deposit represents an approved principal placement earning daily profit.
// Created only by an approved deposit transaction; mutated only by the
// lifecycle finalization (status transition) thereafter. Never deleted.
type Deposit struct {
	DepositID        string          `json:"depositID"` // Primary Key (e.g., UUID)
	AccountID        string          `json:"accountID"` // FK -> Account.accountID
	Amount           decimal.Decimal `json:"amount"`
	DailyRatePercent decimal.Decimal `json:"dailyRatePercent"`
	WindowDays       int             `json:"windowDays"` // Recorded term; display-only (see AccrualCapDays)
	StartTime        time.Time       `json:"startTime"`  // Approval instant; profit accrues from here
	EndTime          *time.Time      `json:"endTime,omitempty"`
	Status           DepositStatus   `json:"status"`
	AuditFields
}

// MaturityTime returns the instant at which the deposit matures and accrual
// freezes.
func (d Deposit) MaturityTime() time.Time {
	return d.StartTime.AddDate(0, 0, AccrualCapDays)
}

// IsMatured reports whether the hard maturity window has elapsed at the given
// instant.
func (d Deposit) IsMatured(now time.Time) bool {
	return !now.Before(d.MaturityTime())
}
