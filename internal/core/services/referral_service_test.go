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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReferralServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	service         portssvc.ReferralSvcFacade
	referrerID      string
}

func (suite *ReferralServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewReferralService(suite.mockAccountRepo)
	suite.referrerID = uuid.NewString()
}

func (suite *ReferralServiceTestSuite) TestGetReferralOverview_OverlaysLiveData() {
	ctx := context.Background()
	referredID := uuid.NewString()
	account := &domain.Account{
		AccountID: suite.referrerID,
		ReferralEntries: []domain.ReferralEntry{
			{
				ReferrerAccountID: suite.referrerID,
				ReferredAccountID: referredID,
				Email:             "old@example.com",
				CapitalSnapshot:   decimal.NewFromInt(1000),
				CommissionEarned:  decimal.NewFromInt(50),
				CreatedAt:         time.Now().UTC(),
			},
		},
	}
	live := domain.Account{
		AccountID: referredID,
		Email:     "renamed@example.com",
		Principal: decimal.NewFromInt(2500),
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.referrerID).Return(account, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{referredID}).Return(map[string]domain.Account{referredID: live}, nil).Once()

	entries, err := suite.service.GetReferralOverview(ctx, suite.referrerID)

	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	suite.Equal("renamed@example.com", entries[0].Email)
	suite.True(entries[0].CapitalSnapshot.Equal(decimal.NewFromInt(2500)))
	// Earned commission is history, not live state.
	suite.True(entries[0].CommissionEarned.Equal(decimal.NewFromInt(50)))
}

func (suite *ReferralServiceTestSuite) TestGetReferralOverview_LegacyEntryKeptAsSnapshot() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID: suite.referrerID,
		ReferralEntries: []domain.ReferralEntry{
			{
				ReferrerAccountID: suite.referrerID,
				Email:             "legacy@example.com", // no recorded identity
				CapitalSnapshot:   decimal.NewFromInt(300),
				CommissionEarned:  decimal.NewFromInt(15),
			},
		},
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.referrerID).Return(account, nil).Once()

	entries, err := suite.service.GetReferralOverview(ctx, suite.referrerID)

	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	suite.Equal("legacy@example.com", entries[0].Email)
	suite.True(entries[0].CapitalSnapshot.Equal(decimal.NewFromInt(300)))
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "FindAccountsByIDs", mock.Anything, mock.Anything)
}

func (suite *ReferralServiceTestSuite) TestGetReferralOverview_LookupFailureServesSnapshots() {
	ctx := context.Background()
	referredID := uuid.NewString()
	account := &domain.Account{
		AccountID: suite.referrerID,
		ReferralEntries: []domain.ReferralEntry{
			{
				ReferrerAccountID: suite.referrerID,
				ReferredAccountID: referredID,
				Email:             "snap@example.com",
				CapitalSnapshot:   decimal.NewFromInt(700),
				CommissionEarned:  decimal.NewFromInt(35),
			},
		},
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.referrerID).Return(account, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{referredID}).Return(nil, assert.AnError).Once()

	entries, err := suite.service.GetReferralOverview(ctx, suite.referrerID)

	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	suite.Equal("snap@example.com", entries[0].Email)
}

func (suite *ReferralServiceTestSuite) TestGetReferralOverview_NoEntries() {
	ctx := context.Background()
	account := &domain.Account{AccountID: suite.referrerID}

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.referrerID).Return(account, nil).Once()

	entries, err := suite.service.GetReferralOverview(ctx, suite.referrerID)

	suite.Require().NoError(err)
	suite.Empty(entries)
}

func TestReferralServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReferralServiceTestSuite))
}
