package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	portssvc "github.com/finovest/invest_ledger_app/internal/core/ports/services"
	"github.com/finovest/invest_ledger_app/internal/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBAuditSink appends action records to the audit_log table outside any
// settlement transaction. A failed write is logged and dropped; audit rows
// that must not be lost are written inside the settlement unit instead.
type DBAuditSink struct {
	pool *pgxpool.Pool
}

// NewDBAuditSink creates a new DBAuditSink.
func NewDBAuditSink(pool *pgxpool.Pool) *DBAuditSink {
	return &DBAuditSink{pool: pool}
}

var _ portssvc.AuditSink = (*DBAuditSink)(nil)

func (s *DBAuditSink) Record(ctx context.Context, actorID, action string, metadata map[string]string) {
	logger := middleware.GetLoggerFromCtx(ctx)

	payload, err := json.Marshal(metadata)
	if err != nil {
		logger.Error("Failed to marshal audit metadata",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		return
	}
	query := `
		INSERT INTO audit_log (audit_id, actor_id, action, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	if _, err := s.pool.Exec(ctx, query, uuid.NewString(), actorID, action, payload, time.Now().UTC()); err != nil {
		logger.Error("Failed to record audit entry",
			slog.String("action", action),
			slog.String("actor_id", actorID),
			slog.String("error", err.Error()),
		)
	}
}
