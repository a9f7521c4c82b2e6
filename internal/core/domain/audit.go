package domain

import "time"

// AuditEntry is an append-only record of an administrator action. Settlement
// entries are written inside the settlement's database transaction so the
// Account + Transaction + Audit triple never diverges.
type AuditEntry struct {
	AuditID       string            `json:"auditID"` // Primary Key (e.g., UUID)
	ActorID       string            `json:"actorID"`
	Action        string            `json:"action"`
	AccountID     string            `json:"accountID,omitempty"`
	TransactionID string            `json:"transactionID,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}
