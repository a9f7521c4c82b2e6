package services

import "context"

// Notifier dispatches best-effort notifications after a settlement commits.
// Implementations log failures; they are never propagated as settlement errors.
type Notifier interface {
	NotifyAccount(ctx context.Context, address, subject, body string)
	NotifyOperators(ctx context.Context, subject, body string)
}

// AuditSink records administrator actions outside the settlement transaction
// boundary. Append-only, best-effort.
type AuditSink interface {
	Record(ctx context.Context, actorID, action string, metadata map[string]string)
}
