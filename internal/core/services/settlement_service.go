package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/finovest/invest_ledger_app/internal/apperrors"
	"github.com/finovest/invest_ledger_app/internal/core/domain"
	portsrepo "github.com/finovest/invest_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finovest/invest_ledger_app/internal/core/ports/services"
	"github.com/finovest/invest_ledger_app/internal/dto"
	"github.com/finovest/invest_ledger_app/internal/middleware"
	"github.com/shopspring/decimal"
)

// settlementService finalizes pending transactions. Each settlement is a
// single atomic unit in the repository layer: the pending guard is re-checked
// inside the transaction, so two admins racing on the same request leaves
// exactly one winner and the loser receives a conflict error.
type settlementService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	txnRepo     portsrepo.TransactionRepositoryFacade
	balance     portssvc.BalanceSvcFacade
	config      portssvc.ConfigSource
	notifier    portssvc.Notifier
}

// NewSettlementService creates a new SettlementService. The balance facade is
// used to refresh an account's ledger before validating a withdrawal, so the
// decision is made against recomputed figures rather than stale stored ones.
func NewSettlementService(
	accountRepo portsrepo.AccountRepositoryFacade,
	txnRepo portsrepo.TransactionRepositoryFacade,
	balance portssvc.BalanceSvcFacade,
	config portssvc.ConfigSource,
	notifier portssvc.Notifier,
) portssvc.SettlementSvcFacade {
	return &settlementService{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		balance:     balance,
		config:      config,
		notifier:    notifier,
	}
}

var _ portssvc.SettlementSvcFacade = (*settlementService)(nil)

// maxSettlementAttempts bounds the recompute-and-retry loop when concurrent
// settlements keep moving the account balances.
const maxSettlementAttempts = 3

// CascadeDeduction removes amount from the profit balance first, then from
// the commission balance. Whatever neither balance can cover comes back as
// shortfall. All inputs are treated as non-negative; results are rounded to
// cents.
func CascadeDeduction(amount, profit, commission decimal.Decimal) (profitTaken, commissionTaken, shortfall decimal.Decimal) {
	profitTaken = decimal.Min(amount, profit)
	remaining := amount.Sub(profitTaken)
	commissionTaken = decimal.Min(remaining, commission)
	shortfall = remaining.Sub(commissionTaken)
	return domain.RoundMoney(profitTaken), domain.RoundMoney(commissionTaken), domain.RoundMoney(shortfall)
}

// ApproveWithdrawal implements portssvc.SettlementSvcFacade.
func (s *settlementService) ApproveWithdrawal(ctx context.Context, actor domain.Actor, transactionID string, req dto.SettleRequest) (*dto.WithdrawalSettlementResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only administrators can settle withdrawals")
	}

	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
	}
	if txn.Kind != domain.KindWithdrawal {
		return nil, apperrors.NewNotFoundError("withdrawal " + transactionID + " not found")
	}
	if !txn.IsPending() {
		return nil, apperrors.NewConflictError("transaction already processed")
	}

	// Refresh the ledger first: finalize maturities and recompute net profit
	// so the validation below runs against current figures.
	account, err := s.balance.GetBalanceOverview(ctx, txn.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh account %s: %w", txn.AccountID, err)
	}

	amount := txn.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}
	if !amount.IsPositive() {
		return nil, apperrors.NewValidationError("settlement amount must be positive")
	}
	withdrawable := account.TotalWithdrawable()
	if amount.GreaterThan(withdrawable) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("approved amount %s exceeds withdrawable balance %s", amount.String(), withdrawable.String()))
	}

	// The cascade is computed from the balances the decision was validated
	// against; the repository verifies those balances on the locked row and
	// commits the exact deltas, so the stored snapshot always reflects what
	// was actually deducted. When another settlement slips in between, the
	// stale signal triggers a recompute from fresh balances and a retry. A
	// shortfall can only appear on such a retry.
	var profitTaken, commissionTaken, shortfall decimal.Decimal
	for attempt := 1; ; attempt++ {
		profitTaken, commissionTaken, shortfall = CascadeDeduction(amount, account.AvailableProfit, account.ReferralCommission)

		now := time.Now().UTC()
		txn.Status = domain.StatusApproved
		txn.AdminRemarks = req.Remarks
		txn.Approval = &domain.ApprovalSnapshot{
			Amount:          amount,
			ProfitTaken:     profitTaken,
			CommissionTaken: commissionTaken,
			Shortfall:       shortfall,
			ApprovedBy:      actor.AccountID,
			ApprovedAt:      now,
		}
		txn.LastUpdatedAt = now
		txn.LastUpdatedBy = actor.AccountID

		expected := portsrepo.BalanceSnapshot{
			AvailableProfit:    account.AvailableProfit,
			ReferralCommission: account.ReferralCommission,
		}
		deltas := portsrepo.BalanceDeltas{
			AvailableProfit:    profitTaken.Neg(),
			ReferralCommission: commissionTaken.Neg(),
		}
		audit := domain.AuditEntry{
			ActorID:       actor.AccountID,
			Action:        "withdrawal.approved",
			AccountID:     account.AccountID,
			TransactionID: txn.TransactionID,
			Metadata: map[string]string{
				"amount":           amount.String(),
				"profit_taken":     profitTaken.String(),
				"commission_taken": commissionTaken.String(),
				"shortfall":        shortfall.String(),
			},
			CreatedAt: now,
		}

		err = s.txnRepo.SettleWithdrawal(ctx, *txn, expected, deltas, audit)
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrStaleBalance) {
			return nil, fmt.Errorf("failed to settle withdrawal %s: %w", transactionID, err)
		}
		if attempt >= maxSettlementAttempts {
			return nil, apperrors.NewConflictError("account balances kept changing, settlement not applied")
		}
		logger.Warn("Account balances changed during settlement, recomputing",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("account_id", txn.AccountID),
			slog.Int("attempt", attempt),
		)
		account, err = s.balance.GetBalanceOverview(ctx, txn.AccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh account %s: %w", txn.AccountID, err)
		}
	}

	logger.Info("Withdrawal approved",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("account_id", account.AccountID),
		slog.String("amount", amount.String()),
		slog.String("shortfall", shortfall.String()),
	)

	if shortfall.IsPositive() {
		// A concurrent settlement drained the balances after the up-front
		// validation. The settlement stands with the shortfall on record, and
		// the gap needs a human decision.
		logger.Warn("Withdrawal settled with uncovered shortfall",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("shortfall", shortfall.String()),
		)
		s.notifier.NotifyOperators(ctx,
			"Withdrawal shortfall detected",
			fmt.Sprintf("transaction %s for account %s settled with shortfall %s", txn.TransactionID, account.AccountID, shortfall.String()),
		)
	}
	s.notifier.NotifyAccount(ctx, account.Email,
		"Withdrawal approved",
		fmt.Sprintf("your withdrawal of %s has been approved", amount.String()),
	)

	return &dto.WithdrawalSettlementResult{
		Transaction:     dto.ToTransactionResponse(txn),
		ProfitTaken:     profitTaken,
		CommissionTaken: commissionTaken,
		Shortfall:       shortfall,
	}, nil
}

// RejectWithdrawal implements portssvc.SettlementSvcFacade.
func (s *settlementService) RejectWithdrawal(ctx context.Context, actor domain.Actor, transactionID string, req dto.RejectRequest) (*dto.TransactionResponse, error) {
	return s.reject(ctx, actor, transactionID, domain.KindWithdrawal, req)
}

// RejectDeposit implements portssvc.SettlementSvcFacade.
func (s *settlementService) RejectDeposit(ctx context.Context, actor domain.Actor, transactionID string, req dto.RejectRequest) (*dto.TransactionResponse, error) {
	return s.reject(ctx, actor, transactionID, domain.KindDeposit, req)
}

// reject marks a pending transaction REJECTED with no balance movement.
func (s *settlementService) reject(ctx context.Context, actor domain.Actor, transactionID string, kind domain.TransactionKind, req dto.RejectRequest) (*dto.TransactionResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only administrators can reject transactions")
	}

	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
	}
	if txn.Kind != kind {
		return nil, apperrors.NewNotFoundError(
			fmt.Sprintf("%s %s not found", strings.ToLower(string(kind)), transactionID))
	}
	if !txn.IsPending() {
		return nil, apperrors.NewConflictError("transaction already processed")
	}

	now := time.Now().UTC()
	txn.Status = domain.StatusRejected
	txn.AdminRemarks = req.Remarks
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = actor.AccountID

	audit := domain.AuditEntry{
		ActorID:       actor.AccountID,
		Action:        fmt.Sprintf("%s.rejected", strings.ToLower(string(txn.Kind))),
		AccountID:     txn.AccountID,
		TransactionID: txn.TransactionID,
		Metadata:      map[string]string{"remarks": req.Remarks},
		CreatedAt:     now,
	}
	if err := s.txnRepo.RejectTransaction(ctx, *txn, audit); err != nil {
		return nil, fmt.Errorf("failed to reject transaction %s: %w", transactionID, err)
	}

	logger.Info("Transaction rejected",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("kind", string(txn.Kind)),
		slog.String("rejected_by", actor.AccountID),
	)

	resp := dto.ToTransactionResponse(txn)
	return &resp, nil
}
