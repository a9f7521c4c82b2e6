package pgsql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/finovest/invest_ledger_app/internal/apperrors"
	"github.com/finovest/invest_ledger_app/internal/core/domain"
	portsrepo "github.com/finovest/invest_ledger_app/internal/core/ports/repositories"
	"github.com/finovest/invest_ledger_app/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTransactionRepository struct {
	BaseRepository
	accountRepo *PgxAccountRepository
}

// newPgxTransactionRepository creates a new repository for settlement
// transactions. It holds the account repository so settlements can lock and
// mutate account rows inside their own database transaction.
func newPgxTransactionRepository(pool *pgxpool.Pool, accountRepo *PgxAccountRepository) *PgxTransactionRepository {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func toModelTransaction(d domain.Transaction) (models.Transaction, error) {
	method, err := json.Marshal(d.Method)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to marshal method payload: %w", err)
	}
	m := models.Transaction{
		TransactionID:              d.TransactionID,
		AccountID:                  d.AccountID,
		Kind:                       models.TransactionKind(d.Kind),
		Amount:                     d.Amount,
		Status:                     models.TransactionStatus(d.Status),
		Method:                     method,
		ProfitBalanceAtRequest:     d.ProfitBalanceAtRequest,
		CommissionBalanceAtRequest: d.CommissionBalanceAtRequest,
		AdminRemarks:               d.AdminRemarks,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
	if d.Plan != (domain.PlanTerms{}) {
		plan, err := json.Marshal(d.Plan)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("failed to marshal plan terms: %w", err)
		}
		m.Plan = plan
	}
	if d.Approval != nil {
		approval, err := json.Marshal(d.Approval)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("failed to marshal approval snapshot: %w", err)
		}
		m.Approval = approval
	}
	return m, nil
}

func toDomainTransaction(m models.Transaction) (domain.Transaction, error) {
	d := domain.Transaction{
		TransactionID:              m.TransactionID,
		AccountID:                  m.AccountID,
		Kind:                       domain.TransactionKind(m.Kind),
		Amount:                     m.Amount,
		Status:                     domain.TransactionStatus(m.Status),
		ProfitBalanceAtRequest:     m.ProfitBalanceAtRequest,
		CommissionBalanceAtRequest: m.CommissionBalanceAtRequest,
		AdminRemarks:               m.AdminRemarks,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	if len(m.Method) > 0 {
		if err := json.Unmarshal(m.Method, &d.Method); err != nil {
			return d, fmt.Errorf("failed to unmarshal method payload for transaction %s: %w", m.TransactionID, err)
		}
	}
	if len(m.Plan) > 0 {
		if err := json.Unmarshal(m.Plan, &d.Plan); err != nil {
			return d, fmt.Errorf("failed to unmarshal plan terms for transaction %s: %w", m.TransactionID, err)
		}
	}
	if len(m.Approval) > 0 {
		var approval domain.ApprovalSnapshot
		if err := json.Unmarshal(m.Approval, &approval); err != nil {
			return d, fmt.Errorf("failed to unmarshal approval snapshot for transaction %s: %w", m.TransactionID, err)
		}
		d.Approval = &approval
	}
	return d, nil
}

const transactionColumns = `transaction_id, account_id, kind, amount, status, method, profit_balance_at_request, commission_balance_at_request, plan, approval, admin_remarks, created_at, created_by, last_updated_at, last_updated_by`

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	var remarks sql.NullString
	err := row.Scan(
		&m.TransactionID,
		&m.AccountID,
		&m.Kind,
		&m.Amount,
		&m.Status,
		&m.Method,
		&m.ProfitBalanceAtRequest,
		&m.CommissionBalanceAtRequest,
		&m.Plan,
		&m.Approval,
		&remarks,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return m, err
	}
	if remarks.Valid {
		m.AdminRemarks = remarks.String
	}
	return m, nil
}

// SaveTransaction persists a new pending transaction.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m, err := toModelTransaction(txn)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = r.Pool.Exec(ctx, query,
		m.TransactionID,
		m.AccountID,
		m.Kind,
		m.Amount,
		m.Status,
		m.Method,
		m.ProfitBalanceAtRequest,
		m.CommissionBalanceAtRequest,
		m.Plan,
		m.Approval,
		m.AdminRemarks,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("transaction " + transactionID + " not found")
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	d, err := toDomainTransaction(m)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListApprovedWithdrawals retrieves the approved withdrawals of an account,
// oldest first.
func (r *PgxTransactionRepository) ListApprovedWithdrawals(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 AND kind = $2 AND status = $3
		ORDER BY created_at ASC, transaction_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, models.KindWithdrawal, models.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved withdrawals for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		d, err := toDomainTransaction(m)
		if err != nil {
			return nil, err
		}
		txns = append(txns, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txns, nil
}

// markTerminalInTx flips the pending guard inside tx. RowsAffected 0 means
// either the transaction vanished or someone else already settled it; the
// follow-up read disambiguates NotFound from Conflict.
func (r *PgxTransactionRepository) markTerminalInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m, err := toModelTransaction(txn)
	if err != nil {
		return err
	}
	query := `
		UPDATE transactions
		SET status = $1, approval = $2, admin_remarks = $3, last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = $6 AND status = $7;
	`
	tag, err := tx.Exec(ctx, query,
		m.Status,
		m.Approval,
		m.AdminRemarks,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.TransactionID,
		models.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", m.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		var status models.TransactionStatus
		err := tx.QueryRow(ctx, `SELECT status FROM transactions WHERE transaction_id = $1;`, m.TransactionID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError("transaction " + m.TransactionID + " not found")
		}
		if err != nil {
			return fmt.Errorf("failed to re-read transaction %s: %w", m.TransactionID, err)
		}
		return apperrors.NewConflictError("transaction " + m.TransactionID + " already processed")
	}
	return nil
}

func (r *PgxTransactionRepository) insertAuditInTx(ctx context.Context, tx pgx.Tx, audit domain.AuditEntry) error {
	metadata, err := json.Marshal(audit.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal audit metadata: %w", err)
	}
	auditID := audit.AuditID
	if auditID == "" {
		auditID = uuid.NewString()
	}
	query := `
		INSERT INTO audit_log (audit_id, actor_id, action, account_id, transaction_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = tx.Exec(ctx, query,
		auditID,
		audit.ActorID,
		audit.Action,
		audit.AccountID,
		audit.TransactionID,
		metadata,
		audit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// SettleWithdrawal executes the withdrawal approval as one atomic unit:
// pending-guard flip, locked balance deduction, audit entry. The deltas were
// derived from the expected balances outside this transaction, so the locked
// row is checked against them first; any drift means another settlement got in
// between and the caller has to recompute.
func (r *PgxTransactionRepository) SettleWithdrawal(ctx context.Context, txn domain.Transaction, expected portsrepo.BalanceSnapshot, deltas portsrepo.BalanceDeltas, audit domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	locked, err := r.accountRepo.FindAccountByIDForUpdate(ctx, tx, txn.AccountID)
	if err != nil {
		return err
	}
	if !locked.AvailableProfit.Equal(expected.AvailableProfit) || !locked.ReferralCommission.Equal(expected.ReferralCommission) {
		return apperrors.NewStaleBalanceError("account " + txn.AccountID + " balances changed during settlement")
	}
	if err := r.markTerminalInTx(ctx, tx, txn); err != nil {
		return err
	}
	if err := r.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, txn.AccountID, deltas, txn.LastUpdatedBy, txn.LastUpdatedAt); err != nil {
		return err
	}
	if err := r.insertAuditInTx(ctx, tx, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// SettleDeposit executes the deposit approval as one atomic unit: pending
// guard flip, deposit insert, principal credit, and, when present, the
// referrer's commission credit and referral-entry merge.
func (r *PgxTransactionRepository) SettleDeposit(ctx context.Context, txn domain.Transaction, deposit domain.Deposit, deltas portsrepo.BalanceDeltas, credit *portsrepo.ReferralCredit, audit domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := r.accountRepo.FindAccountByIDForUpdate(ctx, tx, txn.AccountID); err != nil {
		return err
	}
	if err := r.markTerminalInTx(ctx, tx, txn); err != nil {
		return err
	}
	if err := r.accountRepo.InsertDepositInTx(ctx, tx, deposit); err != nil {
		return err
	}
	if err := r.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, txn.AccountID, deltas, txn.LastUpdatedBy, txn.LastUpdatedAt); err != nil {
		return err
	}
	if credit != nil {
		if _, err := r.accountRepo.FindAccountByIDForUpdate(ctx, tx, credit.ReferrerAccountID); err != nil {
			return err
		}
		commissionDeltas := portsrepo.BalanceDeltas{ReferralCommission: credit.Commission}
		if err := r.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, credit.ReferrerAccountID, commissionDeltas, txn.LastUpdatedBy, txn.LastUpdatedAt); err != nil {
			return err
		}
		if err := r.accountRepo.UpsertReferralEntryInTx(ctx, tx, credit.Entry); err != nil {
			return err
		}
	}
	if err := r.insertAuditInTx(ctx, tx, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// RejectTransaction marks the transaction rejected with its audit entry; no
// balance mutation.
func (r *PgxTransactionRepository) RejectTransaction(ctx context.Context, txn domain.Transaction, audit domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.markTerminalInTx(ctx, tx, txn); err != nil {
		return err
	}
	if err := r.insertAuditInTx(ctx, tx, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}
