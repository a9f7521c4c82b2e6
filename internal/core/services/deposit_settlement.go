package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finovest/invest_ledger_app/internal/apperrors"
	"github.com/finovest/invest_ledger_app/internal/core/domain"
	portsrepo "github.com/finovest/invest_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finovest/invest_ledger_app/internal/core/ports/services"
	"github.com/finovest/invest_ledger_app/internal/dto"
	"github.com/finovest/invest_ledger_app/internal/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// resolveDepositTerms picks the daily rate and window for a new deposit.
// Plan terms win, then transaction-level terms, then the tiered rate table
// and the configured default window.
func resolveDepositTerms(txn *domain.Transaction, amount decimal.Decimal, cfg portssvc.SettlementConfig) (rate decimal.Decimal, windowDays int) {
	switch {
	case txn.Plan.RatePercent != nil:
		rate = *txn.Plan.RatePercent
	case txn.RatePercent != nil:
		rate = *txn.RatePercent
	default:
		rate = cfg.RateTable.Resolve(amount)
	}

	switch {
	case txn.Plan.WindowDays != nil:
		windowDays = *txn.Plan.WindowDays
	case txn.WindowDays != nil:
		windowDays = *txn.WindowDays
	default:
		windowDays = cfg.DefaultWindowDays
	}
	return rate, windowDays
}

// ApproveDeposit implements portssvc.SettlementSvcFacade. On success the
// pending transaction is approved, a new active deposit starts accruing from
// the approval instant, the principal is credited, and, when the account was
// referred, the referrer's commission ledger is credited — all in one atomic
// unit.
func (s *settlementService) ApproveDeposit(ctx context.Context, actor domain.Actor, transactionID string, req dto.SettleRequest) (*dto.DepositSettlementResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only administrators can settle deposits")
	}

	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
	}
	if txn.Kind != domain.KindDeposit {
		return nil, apperrors.NewNotFoundError("deposit " + transactionID + " not found")
	}
	if !txn.IsPending() {
		return nil, apperrors.NewConflictError("transaction already processed")
	}

	account, err := s.accountRepo.FindAccountByID(ctx, txn.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", txn.AccountID, err)
	}

	amount := txn.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}
	amount = domain.RoundMoney(amount)
	if !amount.IsPositive() {
		return nil, apperrors.NewValidationError("settlement amount must be positive")
	}

	cfg := s.config.SettlementConfig(ctx)
	rate, windowDays := resolveDepositTerms(txn, amount, cfg)
	if rate.IsNegative() {
		return nil, apperrors.NewValidationError("resolved daily rate must not be negative")
	}

	now := time.Now().UTC()
	deposit := domain.Deposit{
		DepositID:        uuid.NewString(),
		AccountID:        account.AccountID,
		Amount:           amount,
		DailyRatePercent: rate,
		WindowDays:       windowDays,
		StartTime:        now,
		Status:           domain.DepositActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.AccountID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.AccountID,
		},
	}

	txn.Status = domain.StatusApproved
	txn.AdminRemarks = req.Remarks
	txn.Approval = &domain.ApprovalSnapshot{
		Amount:      amount,
		RatePercent: rate,
		WindowDays:  windowDays,
		ApprovedBy:  actor.AccountID,
		ApprovedAt:  now,
	}
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = actor.AccountID

	credit := s.buildReferralCredit(ctx, account, amount, cfg.ReferralRate, now)

	deltas := portsrepo.BalanceDeltas{Principal: amount}
	audit := domain.AuditEntry{
		ActorID:       actor.AccountID,
		Action:        "deposit.approved",
		AccountID:     account.AccountID,
		TransactionID: txn.TransactionID,
		Metadata: map[string]string{
			"amount":       amount.String(),
			"rate_percent": rate.String(),
			"deposit_id":   deposit.DepositID,
		},
		CreatedAt: now,
	}

	if err := s.txnRepo.SettleDeposit(ctx, *txn, deposit, deltas, credit, audit); err != nil {
		return nil, fmt.Errorf("failed to settle deposit %s: %w", transactionID, err)
	}

	logger.Info("Deposit approved",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("account_id", account.AccountID),
		slog.String("deposit_id", deposit.DepositID),
		slog.String("amount", amount.String()),
		slog.String("rate_percent", rate.String()),
	)

	s.notifier.NotifyAccount(ctx, account.Email,
		"Deposit approved",
		fmt.Sprintf("your deposit of %s has been approved and is now accruing", amount.String()),
	)

	result := &dto.DepositSettlementResult{
		Transaction: dto.ToTransactionResponse(txn),
		Deposit:     dto.ToDepositResponse(deposit),
	}
	if credit != nil {
		result.ReferrerAccountID = credit.ReferrerAccountID
		result.ReferralCommission = credit.Commission
	}
	return result, nil
}

// buildReferralCredit looks up the referrer of the depositing account and
// computes their commission. A missing referrer is the normal case and yields
// nil; a lookup failure is logged and also yields nil rather than blocking the
// deposit itself.
func (s *settlementService) buildReferralCredit(ctx context.Context, account *domain.Account, amount, referralRate decimal.Decimal, now time.Time) *portsrepo.ReferralCredit {
	logger := middleware.GetLoggerFromCtx(ctx)

	referrer, err := s.accountRepo.FindReferrerOfAccount(ctx, account.AccountID, account.Email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Referrer lookup failed, skipping commission",
				slog.String("account_id", account.AccountID),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	commission := domain.RoundMoney(amount.Mul(referralRate))
	if !commission.IsPositive() {
		return nil
	}
	return &portsrepo.ReferralCredit{
		ReferrerAccountID: referrer.AccountID,
		Commission:        commission,
		Entry: domain.ReferralEntry{
			ReferrerAccountID: referrer.AccountID,
			ReferredAccountID: account.AccountID,
			Email:             account.Email,
			CapitalSnapshot:   amount,
			CommissionEarned:  commission,
			CreatedAt:         now,
		},
	}
}
