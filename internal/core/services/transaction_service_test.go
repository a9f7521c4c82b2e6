package services_test

import (
	"context"
	"testing"

	"github.com/finovest/invest_ledger_app/internal/apperrors"
	"github.com/finovest/invest_ledger_app/internal/core/domain"
	portssvc "github.com/finovest/invest_ledger_app/internal/core/ports/services"
	"github.com/finovest/invest_ledger_app/internal/core/services"
	"github.com/finovest/invest_ledger_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockTxnRepo     *MockTransactionRepository
	mockBalance     *MockBalanceService
	mockAudit       *MockAuditSink
	service         portssvc.TransactionSvcFacade
	account         domain.Account
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockBalance = new(MockBalanceService)
	suite.mockAudit = new(MockAuditSink)
	suite.service = services.NewTransactionService(
		suite.mockAccountRepo,
		suite.mockTxnRepo,
		suite.mockBalance,
		staticConfigSource{cfg: testSettlementConfig()},
		suite.mockAudit,
	)
	suite.account = domain.Account{
		AccountID:          uuid.NewString(),
		Email:              "investor@example.com",
		AvailableProfit:    decimal.NewFromInt(80),
		ReferralCommission: decimal.NewFromInt(20),
		IsActive:           true,
	}
}

func bankMethod() dto.MethodRequest {
	return dto.MethodRequest{
		Type: "BANK",
		Bank: &dto.BankMethodRequest{HolderName: "J Doe", BankName: "First National", AccountNumber: "12345678"},
	}
}

func (suite *TransactionServiceTestSuite) TestCreateDepositRequest() {
	ctx := context.Background()
	req := dto.CreateDepositRequest{
		Amount: decimal.NewFromInt(250),
		Method: bankMethod(),
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.account.AccountID).Return(&suite.account, nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Run(func(args mock.Arguments) {
			txn := args.Get(1).(domain.Transaction)
			suite.Equal(domain.KindDeposit, txn.Kind)
			suite.Equal(domain.StatusPending, txn.Status)
			suite.True(txn.Amount.Equal(decimal.NewFromInt(250)))
			suite.Equal(domain.MethodBank, txn.Method.Type)
			suite.Require().NotNil(txn.Method.Bank)
			suite.Equal("12345678", txn.Method.Bank.AccountNumber)
		}).Return(nil).Once()
	suite.mockAudit.On("Record", ctx, suite.account.AccountID, "deposit.requested", mock.Anything).Once()

	txn, err := suite.service.CreateDepositRequest(ctx, suite.account.AccountID, req)

	suite.Require().NoError(err)
	suite.NotEmpty(txn.TransactionID)
	suite.Equal(domain.StatusPending, txn.Status)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateDepositRequest_BelowMinimum() {
	ctx := context.Background()
	req := dto.CreateDepositRequest{
		Amount: decimal.NewFromInt(5),
		Method: bankMethod(),
	}

	_, err := suite.service.CreateDepositRequest(ctx, suite.account.AccountID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCreateDepositRequest_MissingBankDetails() {
	ctx := context.Background()
	req := dto.CreateDepositRequest{
		Amount: decimal.NewFromInt(100),
		Method: dto.MethodRequest{Type: "BANK"},
	}

	_, err := suite.service.CreateDepositRequest(ctx, suite.account.AccountID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransactionServiceTestSuite) TestCreateWithdrawalRequest_SnapshotsBalances() {
	ctx := context.Background()
	req := dto.CreateWithdrawalRequest{
		Amount: decimal.NewFromInt(50),
		Method: dto.MethodRequest{Type: "CRYPTO", Crypto: &dto.CryptoMethodRequest{Network: "ERC20", Address: "0xabc"}},
	}

	suite.mockBalance.On("GetBalanceOverview", ctx, suite.account.AccountID).Return(&suite.account, nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Run(func(args mock.Arguments) {
			txn := args.Get(1).(domain.Transaction)
			suite.Equal(domain.KindWithdrawal, txn.Kind)
			suite.True(txn.ProfitBalanceAtRequest.Equal(decimal.NewFromInt(80)))
			suite.True(txn.CommissionBalanceAtRequest.Equal(decimal.NewFromInt(20)))
		}).Return(nil).Once()
	suite.mockAudit.On("Record", ctx, suite.account.AccountID, "withdrawal.requested", mock.Anything).Once()

	txn, err := suite.service.CreateWithdrawalRequest(ctx, suite.account.AccountID, req)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusPending, txn.Status)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateWithdrawalRequest_ExceedsWithdrawable() {
	ctx := context.Background()
	req := dto.CreateWithdrawalRequest{
		Amount: decimal.NewFromInt(500),
		Method: bankMethod(),
	}

	suite.mockBalance.On("GetBalanceOverview", ctx, suite.account.AccountID).Return(&suite.account, nil).Once()

	_, err := suite.service.CreateWithdrawalRequest(ctx, suite.account.AccountID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
