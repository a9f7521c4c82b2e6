package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finovest/invest_ledger_app/internal/core/domain"
	portssvc "github.com/finovest/invest_ledger_app/internal/core/ports/services"
	"github.com/finovest/invest_ledger_app/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type BalanceServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockTxnRepo     *MockTransactionRepository
	mockAudit       *MockAuditSink
	service         portssvc.BalanceSvcFacade
	accountID       string
}

func (suite *BalanceServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAudit = new(MockAuditSink)
	suite.service = services.NewBalanceService(suite.mockAccountRepo, suite.mockTxnRepo, suite.mockAudit)
	suite.accountID = uuid.NewString()
}

func (suite *BalanceServiceTestSuite) account(deposits ...domain.Deposit) *domain.Account {
	principal := decimal.Zero
	for _, d := range deposits {
		if d.Status == domain.DepositActive {
			principal = principal.Add(d.Amount)
		}
	}
	return &domain.Account{
		AccountID: suite.accountID,
		Email:     "investor@example.com",
		Principal: principal,
		IsActive:  true,
		Deposits:  deposits,
	}
}

func deposit(amount int64, start time.Time) domain.Deposit {
	return domain.Deposit{
		DepositID:        uuid.NewString(),
		Amount:           decimal.NewFromInt(amount),
		DailyRatePercent: decimal.NewFromInt(5),
		WindowDays:       domain.AccrualCapDays,
		StartTime:        start,
		Status:           domain.DepositActive,
	}
}

func (suite *BalanceServiceTestSuite) TestGetBalanceOverview_FinalizesMaturedDeposit() {
	ctx := context.Background()
	now := time.Now().UTC()
	matured := deposit(500, now.AddDate(0, 0, -(domain.AccrualCapDays+1)))
	fresh := deposit(200, now.Add(-24*time.Hour))
	acc := suite.account(matured, fresh)

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.accountID).Return(acc, nil).Once()
	suite.mockAccountRepo.On("FinalizeDeposits", ctx, suite.accountID, mock.AnythingOfType("[]domain.Deposit"), mock.AnythingOfType("decimal.Decimal"), suite.accountID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			finalized := args.Get(2).([]domain.Deposit)
			principal := args.Get(3).(decimal.Decimal)
			suite.Require().Len(finalized, 1)
			suite.Equal(matured.DepositID, finalized[0].DepositID)
			suite.Equal(domain.DepositCompleted, finalized[0].Status)
			suite.Require().NotNil(finalized[0].EndTime)
			suite.True(finalized[0].EndTime.Equal(matured.MaturityTime()))
			// 700 - 500
			suite.True(principal.Equal(decimal.NewFromInt(200)))
		}).Return(nil).Once()
	suite.mockAudit.On("Record", ctx, suite.accountID, "deposit.matured", mock.Anything).Once()
	suite.mockTxnRepo.On("ListApprovedWithdrawals", ctx, suite.accountID).Return([]domain.Transaction{}, nil).Once()
	suite.mockAccountRepo.On("UpdateAvailableProfit", ctx, suite.accountID, mock.AnythingOfType("decimal.Decimal"), suite.accountID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	result, err := suite.service.GetBalanceOverview(ctx, suite.accountID)

	suite.Require().NoError(err)
	suite.True(result.Principal.Equal(decimal.NewFromInt(200)))
	suite.Equal(domain.DepositCompleted, result.Deposits[0].Status)
	suite.Equal(domain.DepositActive, result.Deposits[1].Status)
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockAudit.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestGetBalanceOverview_NoMaturedDeposits() {
	ctx := context.Background()
	now := time.Now().UTC()
	acc := suite.account(deposit(300, now.Add(-48*time.Hour)))

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.accountID).Return(acc, nil).Once()
	suite.mockTxnRepo.On("ListApprovedWithdrawals", ctx, suite.accountID).Return([]domain.Transaction{}, nil).Once()
	suite.mockAccountRepo.On("UpdateAvailableProfit", ctx, suite.accountID, mock.AnythingOfType("decimal.Decimal"), suite.accountID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	result, err := suite.service.GetBalanceOverview(ctx, suite.accountID)

	suite.Require().NoError(err)
	suite.True(result.AvailableProfit.GreaterThanOrEqual(decimal.Zero))
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "FinalizeDeposits", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BalanceServiceTestSuite) TestGetBalanceOverview_SubtractsApprovedWithdrawals() {
	// A deposit that started 7 full days ago earns over 5 business days; an
	// approved withdrawal that drew from profit reduces the available figure.
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // Monday
	dep := deposit(1000, start)
	acc := suite.account(dep)
	acc.Deposits[0].StartTime = time.Now().UTC().Add(-7 * 24 * time.Hour).Truncate(time.Minute)

	withdrawal := domain.Transaction{
		TransactionID:          uuid.NewString(),
		AccountID:              suite.accountID,
		Kind:                   domain.KindWithdrawal,
		Amount:                 decimal.NewFromInt(40),
		Status:                 domain.StatusApproved,
		ProfitBalanceAtRequest: decimal.NewFromInt(100),
		Approval: &domain.ApprovalSnapshot{
			Amount:      decimal.NewFromInt(40),
			ProfitTaken: decimal.NewFromInt(40),
		},
	}

	var persisted decimal.Decimal
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.accountID).Return(acc, nil).Once()
	suite.mockTxnRepo.On("ListApprovedWithdrawals", ctx, suite.accountID).Return([]domain.Transaction{withdrawal}, nil).Once()
	suite.mockAccountRepo.On("UpdateAvailableProfit", ctx, suite.accountID, mock.AnythingOfType("decimal.Decimal"), suite.accountID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			persisted = args.Get(2).(decimal.Decimal)
		}).Return(nil).Once()

	result, err := suite.service.GetBalanceOverview(ctx, suite.accountID)

	suite.Require().NoError(err)
	suite.True(result.AvailableProfit.Equal(persisted))
	// Gross accrual over ~5 business days at 50/day is ~250; minus 40.
	suite.True(result.AvailableProfit.GreaterThan(decimal.NewFromInt(150)))
	suite.True(result.AvailableProfit.LessThan(decimal.NewFromInt(300)))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestGetBalanceOverview_NeverNegative() {
	ctx := context.Background()
	now := time.Now().UTC()
	acc := suite.account(deposit(100, now.Add(-time.Hour)))

	// Withdrawal history exceeds anything this young deposit has earned.
	withdrawal := domain.Transaction{
		Kind:   domain.KindWithdrawal,
		Status: domain.StatusApproved,
		Amount: decimal.NewFromInt(500),
		Approval: &domain.ApprovalSnapshot{
			Amount:      decimal.NewFromInt(500),
			ProfitTaken: decimal.NewFromInt(500),
		},
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.accountID).Return(acc, nil).Once()
	suite.mockTxnRepo.On("ListApprovedWithdrawals", ctx, suite.accountID).Return([]domain.Transaction{withdrawal}, nil).Once()
	suite.mockAccountRepo.On("UpdateAvailableProfit", ctx, suite.accountID, mock.AnythingOfType("decimal.Decimal"), suite.accountID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			suite.True(args.Get(2).(decimal.Decimal).IsZero())
		}).Return(nil).Once()

	result, err := suite.service.GetBalanceOverview(ctx, suite.accountID)

	suite.Require().NoError(err)
	suite.True(result.AvailableProfit.IsZero())
}

func (suite *BalanceServiceTestSuite) TestGetBalanceOverview_CorruptDepositContributesZero() {
	ctx := context.Background()
	now := time.Now().UTC()
	bad := deposit(0, now.Add(-48*time.Hour)) // zero amount fails accrual
	good := deposit(1000, now.Add(-48*time.Hour))
	acc := suite.account(bad, good)

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.accountID).Return(acc, nil).Once()
	suite.mockTxnRepo.On("ListApprovedWithdrawals", ctx, suite.accountID).Return([]domain.Transaction{}, nil).Once()
	suite.mockAccountRepo.On("UpdateAvailableProfit", ctx, suite.accountID, mock.AnythingOfType("decimal.Decimal"), suite.accountID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	result, err := suite.service.GetBalanceOverview(ctx, suite.accountID)

	suite.Require().NoError(err)
	suite.True(result.AvailableProfit.GreaterThanOrEqual(decimal.Zero))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestGetBalanceOverview_RepeatInvocationStable() {
	// Running the refresh twice over the same persisted state produces the
	// same figures; the second pass finds nothing left to finalize.
	ctx := context.Background()
	now := time.Now().UTC()
	completed := deposit(500, now.AddDate(0, 0, -(domain.AccrualCapDays+5)))
	completed.Status = domain.DepositCompleted
	maturity := completed.MaturityTime()
	completed.EndTime = &maturity
	acc := suite.account(completed)

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.accountID).Return(acc, nil).Twice()
	suite.mockTxnRepo.On("ListApprovedWithdrawals", ctx, suite.accountID).Return([]domain.Transaction{}, nil).Twice()
	suite.mockAccountRepo.On("UpdateAvailableProfit", ctx, suite.accountID, mock.AnythingOfType("decimal.Decimal"), suite.accountID, mock.AnythingOfType("time.Time")).Return(nil).Twice()

	first, err := suite.service.GetBalanceOverview(ctx, suite.accountID)
	suite.Require().NoError(err)
	second, err := suite.service.GetBalanceOverview(ctx, suite.accountID)
	suite.Require().NoError(err)

	suite.True(first.Principal.Equal(second.Principal))
	suite.True(first.AvailableProfit.Equal(second.AvailableProfit))
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "FinalizeDeposits", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBalanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BalanceServiceTestSuite))
}
