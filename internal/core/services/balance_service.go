package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finovest/invest_ledger_app/internal/core/domain"
	portsrepo "github.com/finovest/invest_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finovest/invest_ledger_app/internal/core/ports/services"
	"github.com/finovest/invest_ledger_app/internal/middleware"
	"github.com/finovest/invest_ledger_app/internal/utils/accrual"
	"github.com/shopspring/decimal"
)

// balanceService refreshes an account's ledger on read: matured deposits are
// finalized first and the available net profit is recomputed afterwards, so a
// deposit is never counted on both sides of the active/completed boundary.
type balanceService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	txnRepo     portsrepo.TransactionRepositoryFacade
	audit       portssvc.AuditSink
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(accountRepo portsrepo.AccountRepositoryFacade, txnRepo portsrepo.TransactionRepositoryFacade, audit portssvc.AuditSink) portssvc.BalanceSvcFacade {
	return &balanceService{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		audit:       audit,
	}
}

var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

// GetBalanceOverview implements portssvc.BalanceSvcFacade. Both stages are
// idempotent functions of persisted history, so concurrent invocation by
// multiple readers is safe; last write is equivalent to any other.
func (s *balanceService) GetBalanceOverview(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", accountID, err)
	}

	now := time.Now().UTC()

	if err := s.finalizeMaturedDeposits(ctx, account, now); err != nil {
		return nil, err
	}

	if err := s.recalculateNetProfit(ctx, account, now); err != nil {
		return nil, err
	}

	return account, nil
}

// finalizeMaturedDeposits transitions every active deposit past the hard
// maturity window to COMPLETED, freezes its end time at the maturity instant,
// and deducts its principal from the account's capital, clamped at zero.
// Persisted before any profit recomputation. Repeat invocation is a no-op:
// the status guard prevents reprocessing.
func (s *balanceService) finalizeMaturedDeposits(ctx context.Context, account *domain.Account, now time.Time) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	matured := make([]domain.Deposit, 0)
	principal := account.Principal
	for i := range account.Deposits {
		dep := &account.Deposits[i]
		if dep.Status != domain.DepositActive || !dep.IsMatured(now) {
			continue
		}

		maturity := dep.MaturityTime()
		dep.Status = domain.DepositCompleted
		dep.EndTime = &maturity
		dep.LastUpdatedAt = now
		principal = principal.Sub(dep.Amount)
		matured = append(matured, *dep)
	}

	if len(matured) == 0 {
		return nil
	}

	principal = domain.ClampMoney(principal)
	if err := s.accountRepo.FinalizeDeposits(ctx, account.AccountID, matured, principal, account.AccountID, now); err != nil {
		return fmt.Errorf("failed to finalize matured deposits for account %s: %w", account.AccountID, err)
	}
	account.Principal = principal

	logger.Info("Matured deposits finalized",
		slog.String("account_id", account.AccountID),
		slog.Int("count", len(matured)),
		slog.String("principal", principal.String()),
	)
	for _, dep := range matured {
		s.audit.Record(ctx, account.AccountID, "deposit.matured", map[string]string{
			"deposit_id": dep.DepositID,
			"amount":     dep.Amount.String(),
		})
	}
	return nil
}

// recalculateNetProfit recomputes the authoritative available net profit:
// gross accrual over the active deposits, reconciled against the profit
// already removed by approved withdrawals, clamped at zero. A deposit whose
// accrual cannot be computed contributes zero and is logged; one bad record
// never aborts the whole balance read.
func (s *balanceService) recalculateNetProfit(ctx context.Context, account *domain.Account, now time.Time) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	gross := decimal.Zero
	for _, dep := range account.ActiveDeposits() {
		profit, err := accrual.AccruedProfit(dep, now)
		if err != nil {
			logger.Warn("Skipping deposit with failed accrual calculation",
				slog.String("account_id", account.AccountID),
				slog.String("deposit_id", dep.DepositID),
				slog.String("error", err.Error()),
			)
			continue
		}
		gross = gross.Add(profit)
	}

	withdrawals, err := s.txnRepo.ListApprovedWithdrawals(ctx, account.AccountID)
	if err != nil {
		return fmt.Errorf("failed to list approved withdrawals for account %s: %w", account.AccountID, err)
	}

	withdrawnFromProfit := decimal.Zero
	for _, txn := range withdrawals {
		withdrawnFromProfit = withdrawnFromProfit.Add(txn.ProfitTaken())
	}

	available := domain.ClampMoney(gross.Sub(withdrawnFromProfit))
	if err := s.accountRepo.UpdateAvailableProfit(ctx, account.AccountID, available, account.AccountID, now); err != nil {
		return fmt.Errorf("failed to persist recomputed profit for account %s: %w", account.AccountID, err)
	}
	account.AvailableProfit = available

	logger.Debug("Net profit recomputed",
		slog.String("account_id", account.AccountID),
		slog.String("gross", gross.String()),
		slog.String("withdrawn", withdrawnFromProfit.String()),
		slog.String("available", available.String()),
	)
	return nil
}
