package services_test

import (
	"context"
	"time"

	"github.com/finovest/invest_ledger_app/internal/core/domain"
	portsrepo "github.com/finovest/invest_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finovest/invest_ledger_app/internal/core/ports/services"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindReferrerOfAccount(ctx context.Context, referredAccountID, referredEmail string) (*domain.Account, error) {
	args := m.Called(ctx, referredAccountID, referredEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FinalizeDeposits(ctx context.Context, accountID string, matured []domain.Deposit, principal decimal.Decimal, updatedBy string, now time.Time) error {
	args := m.Called(ctx, accountID, matured, principal, updatedBy, now)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAvailableProfit(ctx context.Context, accountID string, availableProfit decimal.Decimal, updatedBy string, now time.Time) error {
	args := m.Called(ctx, accountID, availableProfit, updatedBy, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, accountID string, deltas portsrepo.BalanceDeltas, updatedBy string, now time.Time) error {
	args := m.Called(ctx, tx, accountID, deltas, updatedBy, now)
	return args.Error(0)
}

func (m *MockAccountRepository) InsertDepositInTx(ctx context.Context, tx pgx.Tx, deposit domain.Deposit) error {
	args := m.Called(ctx, tx, deposit)
	return args.Error(0)
}

func (m *MockAccountRepository) UpsertReferralEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.ReferralEntry) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

var _ portsrepo.TransactionRepositoryFacade = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListApprovedWithdrawals(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) SettleWithdrawal(ctx context.Context, txn domain.Transaction, expected portsrepo.BalanceSnapshot, deltas portsrepo.BalanceDeltas, audit domain.AuditEntry) error {
	args := m.Called(ctx, txn, expected, deltas, audit)
	return args.Error(0)
}

func (m *MockTransactionRepository) SettleDeposit(ctx context.Context, txn domain.Transaction, deposit domain.Deposit, deltas portsrepo.BalanceDeltas, credit *portsrepo.ReferralCredit, audit domain.AuditEntry) error {
	args := m.Called(ctx, txn, deposit, deltas, credit, audit)
	return args.Error(0)
}

func (m *MockTransactionRepository) RejectTransaction(ctx context.Context, txn domain.Transaction, audit domain.AuditEntry) error {
	args := m.Called(ctx, txn, audit)
	return args.Error(0)
}

// --- Mock BalanceService ---
type MockBalanceService struct {
	mock.Mock
}

var _ portssvc.BalanceSvcFacade = (*MockBalanceService)(nil)

func (m *MockBalanceService) GetBalanceOverview(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// --- Fixed-config source ---
type staticConfigSource struct {
	cfg portssvc.SettlementConfig
}

func (s staticConfigSource) SettlementConfig(ctx context.Context) portssvc.SettlementConfig {
	return s.cfg
}

func testSettlementConfig() portssvc.SettlementConfig {
	return portssvc.SettlementConfig{
		ReferralRate:         decimal.RequireFromString("0.05"),
		RateTable:            domain.DefaultRateTable(),
		DefaultWindowDays:    domain.AccrualCapDays,
		MinTransactionAmount: decimal.NewFromInt(10),
	}
}

// --- Mock Notifier ---
type MockNotifier struct {
	mock.Mock
}

var _ portssvc.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) NotifyAccount(ctx context.Context, address, subject, body string) {
	m.Called(ctx, address, subject, body)
}

func (m *MockNotifier) NotifyOperators(ctx context.Context, subject, body string) {
	m.Called(ctx, subject, body)
}

// --- Mock AuditSink ---
type MockAuditSink struct {
	mock.Mock
}

var _ portssvc.AuditSink = (*MockAuditSink)(nil)

func (m *MockAuditSink) Record(ctx context.Context, actorID, action string, metadata map[string]string) {
	m.Called(ctx, actorID, action, metadata)
}
