package services

import (
	"context"

	"github.com/finovest/invest_ledger_app/internal/core/domain"
	"github.com/finovest/invest_ledger_app/internal/dto"
)

// TransactionSvcFacade files user deposit/withdrawal requests in PENDING state.
type TransactionSvcFacade interface {
	CreateDepositRequest(ctx context.Context, accountID string, req dto.CreateDepositRequest) (*domain.Transaction, error)
	CreateWithdrawalRequest(ctx context.Context, accountID string, req dto.CreateWithdrawalRequest) (*domain.Transaction, error)
}

// SettlementSvcFacade applies administrator approve/reject decisions. Each
// operation validates the actor's role, enforces the single terminal
// transition, and executes its ledger effects atomically.
type SettlementSvcFacade interface {
	ApproveWithdrawal(ctx context.Context, actor domain.Actor, transactionID string, req dto.SettleRequest) (*dto.WithdrawalSettlementResult, error)
	RejectWithdrawal(ctx context.Context, actor domain.Actor, transactionID string, req dto.RejectRequest) (*dto.TransactionResponse, error)
	ApproveDeposit(ctx context.Context, actor domain.Actor, transactionID string, req dto.SettleRequest) (*dto.DepositSettlementResult, error)
	RejectDeposit(ctx context.Context, actor domain.Actor, transactionID string, req dto.RejectRequest) (*dto.TransactionResponse, error)
}
