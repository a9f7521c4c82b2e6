package services

import (
	"context"
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
)

// transactionService files user deposit/withdrawal requests. Requests are
// created PENDING; balance effects happen only at settlement.
type transactionService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	txnRepo     portsrepo.TransactionRepositoryFacade
	balance     portssvc.BalanceSvcFacade
	config      portssvc.ConfigSource
	audit       portssvc.AuditSink
}

// NewTransactionService creates a new TransactionService. The balance facade
// refreshes the ledger before a withdrawal snapshot is taken, so the recorded
// figures are the ones the user actually saw.
func NewTransactionService(
	accountRepo portsrepo.AccountRepositoryFacade,
	txnRepo portsrepo.TransactionRepositoryFacade,
	balance portssvc.BalanceSvcFacade,
	config portssvc.ConfigSource,
	audit portssvc.AuditSink,
) portssvc.TransactionSvcFacade {
	return &transactionService{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		balance:     balance,
		config:      config,
		audit:       audit,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// resolveMethod validates the request-side method union and converts it to
// the stored shape. The variant is fixed here; reads never re-interpret it.
func resolveMethod(req dto.MethodRequest) (domain.SettlementMethod, error) {
	method := domain.SettlementMethod{Type: domain.MethodType(req.Type)}
	switch method.Type {
	case domain.MethodBank:
		if req.Bank == nil {
			return method, apperrors.NewValidationError("bank details are required for BANK method")
		}
		method.Bank = &domain.BankDetails{
			HolderName:    req.Bank.HolderName,
			BankName:      req.Bank.BankName,
			AccountNumber: req.Bank.AccountNumber,
			RoutingCode:   req.Bank.RoutingCode,
		}
	case domain.MethodCrypto:
		if req.Crypto == nil {
			return method, apperrors.NewValidationError("crypto details are required for CRYPTO method")
		}
		method.Crypto = &domain.CryptoDetails{
			Network: req.Crypto.Network,
			Address: req.Crypto.Address,
		}
	case domain.MethodOther:
		method.Other = req.Other
	default:
		return method, apperrors.NewValidationError(fmt.Sprintf("unsupported method type %q", req.Type))
	}
	return method, nil
}

// CreateDepositRequest implements portssvc.TransactionSvcFacade.
func (s *transactionService) CreateDepositRequest(ctx context.Context, accountID string, req dto.CreateDepositRequest) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	cfg := s.config.SettlementConfig(ctx)
	if req.Amount.LessThan(cfg.MinTransactionAmount) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("deposit amount must be at least %s", cfg.MinTransactionAmount.String()))
	}
	method, err := resolveMethod(req.Method)
	if err != nil {
		return nil, err
	}
	if req.PlanRate != nil && req.PlanRate.IsNegative() {
		return nil, apperrors.NewValidationError("plan rate must not be negative")
	}
	if req.PlanWindowDays != nil && *req.PlanWindowDays <= 0 {
		return nil, apperrors.NewValidationError("plan window must be positive")
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", accountID, err)
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		AccountID:     account.AccountID,
		Kind:          domain.KindDeposit,
		Amount:        domain.RoundMoney(req.Amount),
		Status:        domain.StatusPending,
		Method:        method,
		Plan: domain.PlanTerms{
			RatePercent: req.PlanRate,
			WindowDays:  req.PlanWindowDays,
			PlanRef:     req.PlanRef,
		},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     account.AccountID,
			LastUpdatedAt: now,
			LastUpdatedBy: account.AccountID,
		},
	}
	if err := s.txnRepo.SaveTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to save deposit request: %w", err)
	}

	logger.Info("Deposit request filed",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("account_id", account.AccountID),
		slog.String("amount", txn.Amount.String()),
	)
	s.audit.Record(ctx, account.AccountID, "deposit.requested", map[string]string{
		"transaction_id": txn.TransactionID,
		"amount":         txn.Amount.String(),
	})
	return &txn, nil
}

// CreateWithdrawalRequest implements portssvc.TransactionSvcFacade. The
// account's profit and commission balances are snapshotted on the request so
// the admin reviews the figures the user saw when filing.
func (s *transactionService) CreateWithdrawalRequest(ctx context.Context, accountID string, req dto.CreateWithdrawalRequest) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	cfg := s.config.SettlementConfig(ctx)
	if req.Amount.LessThan(cfg.MinTransactionAmount) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("withdrawal amount must be at least %s", cfg.MinTransactionAmount.String()))
	}
	method, err := resolveMethod(req.Method)
	if err != nil {
		return nil, err
	}

	account, err := s.balance.GetBalanceOverview(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh account %s: %w", accountID, err)
	}
	amount := domain.RoundMoney(req.Amount)
	if amount.GreaterThan(account.TotalWithdrawable()) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("requested amount %s exceeds withdrawable balance %s", amount.String(), account.TotalWithdrawable().String()))
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID:              uuid.NewString(),
		AccountID:                  account.AccountID,
		Kind:                       domain.KindWithdrawal,
		Amount:                     amount,
		Status:                     domain.StatusPending,
		Method:                     method,
		ProfitBalanceAtRequest:     account.AvailableProfit,
		CommissionBalanceAtRequest: account.ReferralCommission,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     account.AccountID,
			LastUpdatedAt: now,
			LastUpdatedBy: account.AccountID,
		},
	}
	if err := s.txnRepo.SaveTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to save withdrawal request: %w", err)
	}

	logger.Info("Withdrawal request filed",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("account_id", account.AccountID),
		slog.String("amount", txn.Amount.String()),
	)
	s.audit.Record(ctx, account.AccountID, "withdrawal.requested", map[string]string{
		"transaction_id": txn.TransactionID,
		"amount":         txn.Amount.String(),
	})
	return &txn, nil
}
