package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralEntry is a denormalized snapshot of commission earned by a referrer
// from one referred account. One entry per referred account per referrer;
// entries are merged by referred-account identity, falling back to email for
// legacy rows that predate the identity link. The referred account holds no
// reciprocal pointer; this is a one-directional lookup relation.
type ReferralEntry struct {
	ReferrerAccountID string          `json:"referrerAccountID"`
	ReferredAccountID string          `json:"referredAccountID"`
	Email             string          `json:"email"` // Denormalized from the referred account
	CapitalSnapshot   decimal.Decimal `json:"capitalSnapshot"`
	CommissionEarned  decimal.Decimal `json:"commissionEarned"`
	CreatedAt         time.Time       `json:"createdAt"`
}
