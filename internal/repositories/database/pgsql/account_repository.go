package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/finovest/invest_ledger_app/internal/apperrors"
	"github.com/finovest/invest_ledger_app/internal/core/domain"
	portsrepo "github.com/finovest/invest_ledger_app/internal/core/ports/repositories"
	"github.com/finovest/invest_ledger_app/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// Helper to convert models.Account from DB to domain.Account
func toDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:          m.AccountID,
		Email:              m.Email,
		ReferrerID:         m.ReferrerID,
		Principal:          m.Principal,
		AvailableProfit:    m.AvailableProfit,
		ReferralCommission: m.ReferralCommission,
		IsActive:           m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func toDomainDeposit(m models.Deposit) domain.Deposit {
	return domain.Deposit{
		DepositID:        m.DepositID,
		AccountID:        m.AccountID,
		Amount:           m.Amount,
		DailyRatePercent: m.DailyRatePercent,
		WindowDays:       m.WindowDays,
		StartTime:        m.StartTime,
		EndTime:          m.EndTime,
		Status:           domain.DepositStatus(m.Status),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const accountColumns = `account_id, email, referrer_id, principal, available_profit, referral_commission, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	var referrerID sql.NullString
	err := row.Scan(
		&m.AccountID,
		&m.Email,
		&referrerID,
		&m.Principal,
		&m.AvailableProfit,
		&m.ReferralCommission,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return m, err
	}
	if referrerID.Valid {
		m.ReferrerID = referrerID.String
	}
	return m, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (account_id, email, referrer_id, principal, available_profit, referral_commission, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	var referrerID sql.NullString
	if account.ReferrerID != "" {
		referrerID = sql.NullString{String: account.ReferrerID, Valid: true}
	}

	_, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.Email,
		referrerID,
		account.Principal,
		account.AvailableProfit,
		account.ReferralCommission,
		account.IsActive,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, account.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account aggregate: the account row plus its
// deposits (oldest first) and referral entries.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account " + accountID + " not found")
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	account := toDomainAccount(m)

	deposits, err := r.findDepositsByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	account.Deposits = deposits

	entries, err := r.findReferralEntriesByReferrer(ctx, accountID)
	if err != nil {
		return nil, err
	}
	account.ReferralEntries = entries

	return &account, nil
}

func (r *PgxAccountRepository) findDepositsByAccountID(ctx context.Context, accountID string) ([]domain.Deposit, error) {
	query := `
		SELECT deposit_id, account_id, amount, daily_rate_percent, window_days, start_time, end_time, status, created_at, created_by, last_updated_at, last_updated_by
		FROM deposits
		WHERE account_id = $1
		ORDER BY start_time ASC, deposit_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deposits for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var deposits []domain.Deposit
	for rows.Next() {
		var m models.Deposit
		var endTime sql.NullTime
		if err := rows.Scan(
			&m.DepositID,
			&m.AccountID,
			&m.Amount,
			&m.DailyRatePercent,
			&m.WindowDays,
			&m.StartTime,
			&endTime,
			&m.Status,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan deposit row: %w", err)
		}
		if endTime.Valid {
			t := endTime.Time
			m.EndTime = &t
		}
		deposits = append(deposits, toDomainDeposit(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deposit rows: %w", err)
	}
	return deposits, nil
}

func (r *PgxAccountRepository) findReferralEntriesByReferrer(ctx context.Context, referrerID string) ([]domain.ReferralEntry, error) {
	query := `
		SELECT referrer_account_id, referred_account_id, email, capital_snapshot, commission_earned, created_at
		FROM referral_entries
		WHERE referrer_account_id = $1
		ORDER BY created_at ASC;
	`
	rows, err := r.Pool.Query(ctx, query, referrerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query referral entries for account %s: %w", referrerID, err)
	}
	defer rows.Close()

	var entries []domain.ReferralEntry
	for rows.Next() {
		var m models.ReferralEntry
		var referredID sql.NullString
		if err := rows.Scan(
			&m.ReferrerAccountID,
			&referredID,
			&m.Email,
			&m.CapitalSnapshot,
			&m.CommissionEarned,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan referral entry row: %w", err)
		}
		if referredID.Valid {
			m.ReferredAccountID = referredID.String
		}
		entries = append(entries, domain.ReferralEntry{
			ReferrerAccountID: m.ReferrerAccountID,
			ReferredAccountID: m.ReferredAccountID,
			Email:             m.Email,
			CapitalSnapshot:   m.CapitalSnapshot,
			CommissionEarned:  m.CommissionEarned,
			CreatedAt:         m.CreatedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating referral entry rows: %w", err)
	}
	return entries, nil
}

// FindAccountsByIDs retrieves multiple account rows (no child rows) keyed by ID.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(accountIDs))
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts[m.AccountID] = toDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// FindReferrerOfAccount resolves the referrer of an account: the explicit
// referrer link wins, else the account holding a referral entry that
// references it by identity or, for legacy entries, by email.
func (r *PgxAccountRepository) FindReferrerOfAccount(ctx context.Context, referredAccountID, referredEmail string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = (SELECT referrer_id FROM accounts WHERE account_id = $1)
		   OR account_id IN (
			SELECT referrer_account_id FROM referral_entries
			WHERE referred_account_id = $1
			   OR (referred_account_id IS NULL AND email = $2)
		   )
		LIMIT 1;
	`
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, referredAccountID, referredEmail))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no referrer for account " + referredAccountID)
		}
		return nil, fmt.Errorf("failed to find referrer of account %s: %w", referredAccountID, err)
	}
	account := toDomainAccount(m)
	return &account, nil
}

// FinalizeDeposits transitions matured deposits to COMPLETED and sets the new
// principal, as one unit. Deposit updates are guarded on ACTIVE status so a
// concurrent finalization of the same deposit is a no-op.
func (r *PgxAccountRepository) FinalizeDeposits(ctx context.Context, accountID string, matured []domain.Deposit, principal decimal.Decimal, updatedBy string, now time.Time) error {
	if len(matured) == 0 {
		return nil
	}
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	batch := &pgx.Batch{}
	depositQuery := `
		UPDATE deposits
		SET status = $1, end_time = $2, last_updated_at = $3, last_updated_by = $4
		WHERE deposit_id = $5 AND status = $6;
	`
	for _, dep := range matured {
		batch.Queue(depositQuery,
			models.DepositCompleted,
			dep.EndTime,
			now,
			updatedBy,
			dep.DepositID,
			models.DepositActive,
		)
	}
	principalQuery := `
		UPDATE accounts
		SET principal = $1, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $4;
	`
	batch.Queue(principalQuery, principal, now, updatedBy, accountID)

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to finalize deposits for account %s: %w", accountID, err)
	}
	return r.Commit(ctx, tx)
}

// UpdateAvailableProfit persists a recomputed net profit figure.
func (r *PgxAccountRepository) UpdateAvailableProfit(ctx context.Context, accountID string, availableProfit decimal.Decimal, updatedBy string, now time.Time) error {
	query := `
		UPDATE accounts
		SET available_profit = $1, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $4;
	`
	tag, err := r.Pool.Exec(ctx, query, availableProfit, now, updatedBy, accountID)
	if err != nil {
		return fmt.Errorf("failed to update available profit for account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account " + accountID + " not found")
	}
	return nil
}

// FindAccountByIDForUpdate selects an account row FOR UPDATE within tx.
func (r *PgxAccountRepository) FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 FOR UPDATE;`
	m, err := scanAccount(tx.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account " + accountID + " not found")
		}
		return nil, fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	account := toDomainAccount(m)
	return &account, nil
}

// ApplyBalanceDeltasInTx applies signed deltas to the three monetary fields
// within tx. Results are rounded to cents and floored at zero in SQL so no
// code path can persist a negative balance.
func (r *PgxAccountRepository) ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, accountID string, deltas portsrepo.BalanceDeltas, updatedBy string, now time.Time) error {
	query := `
		UPDATE accounts
		SET principal = GREATEST(0, ROUND(principal + $1, 2)),
		    available_profit = GREATEST(0, ROUND(available_profit + $2, 2)),
		    referral_commission = GREATEST(0, ROUND(referral_commission + $3, 2)),
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE account_id = $6;
	`
	tag, err := tx.Exec(ctx, query,
		deltas.Principal,
		deltas.AvailableProfit,
		deltas.ReferralCommission,
		now,
		updatedBy,
		accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to apply balance deltas to account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account " + accountID + " not found")
	}
	return nil
}

// InsertDepositInTx persists a newly created deposit within tx.
func (r *PgxAccountRepository) InsertDepositInTx(ctx context.Context, tx pgx.Tx, deposit domain.Deposit) error {
	query := `
		INSERT INTO deposits (deposit_id, account_id, amount, daily_rate_percent, window_days, start_time, end_time, status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := tx.Exec(ctx, query,
		deposit.DepositID,
		deposit.AccountID,
		deposit.Amount,
		deposit.DailyRatePercent,
		deposit.WindowDays,
		deposit.StartTime,
		deposit.EndTime,
		deposit.Status,
		deposit.CreatedAt,
		deposit.CreatedBy,
		deposit.LastUpdatedAt,
		deposit.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert deposit %s: %w", deposit.DepositID, err)
	}
	return nil
}

// UpsertReferralEntryInTx merges a referral entry by (referrer, referred)
// identity: commission accumulates, the capital snapshot is replaced.
func (r *PgxAccountRepository) UpsertReferralEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.ReferralEntry) error {
	// Adopt a legacy email-keyed row first so the upsert below merges into it
	// instead of duplicating the referred account.
	adoptQuery := `
		UPDATE referral_entries
		SET referred_account_id = $1
		WHERE referrer_account_id = $2 AND referred_account_id IS NULL AND email = $3;
	`
	if _, err := tx.Exec(ctx, adoptQuery, entry.ReferredAccountID, entry.ReferrerAccountID, entry.Email); err != nil {
		return fmt.Errorf("failed to adopt legacy referral entry for referrer %s: %w", entry.ReferrerAccountID, err)
	}

	query := `
		INSERT INTO referral_entries (referrer_account_id, referred_account_id, email, capital_snapshot, commission_earned, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (referrer_account_id, referred_account_id)
		DO UPDATE SET
			commission_earned = ROUND(referral_entries.commission_earned + EXCLUDED.commission_earned, 2),
			capital_snapshot = EXCLUDED.capital_snapshot,
			email = EXCLUDED.email;
	`
	_, err := tx.Exec(ctx, query,
		entry.ReferrerAccountID,
		entry.ReferredAccountID,
		entry.Email,
		entry.CapitalSnapshot,
		entry.CommissionEarned,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert referral entry for referrer %s: %w", entry.ReferrerAccountID, err)
	}
	return nil
}
