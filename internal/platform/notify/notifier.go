// Package notify holds the best-effort side-effect adapters run after a
// settlement commits: user/operator notifications and the out-of-transaction
// audit sink. Nothing here can fail a settlement.
package notify

import (
	"context"
	"log/slog"

	portssvc "github.com/finovest/invest_ledger_app/internal/core/ports/services"
	"github.com/finovest/invest_ledger_app/internal/middleware"
)

// LogNotifier emits notifications as structured log records. Stands in for a
// mail/webhook integration; the settlement pipeline only sees the Notifier
// port either way.
type LogNotifier struct{}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

var _ portssvc.Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) NotifyAccount(ctx context.Context, address, subject, body string) {
	middleware.GetLoggerFromCtx(ctx).Info("Account notification",
		slog.String("to", address),
		slog.String("subject", subject),
		slog.String("body", body),
	)
}

func (n *LogNotifier) NotifyOperators(ctx context.Context, subject, body string) {
	middleware.GetLoggerFromCtx(ctx).Warn("Operator notification",
		slog.String("subject", subject),
		slog.String("body", body),
	)
}
