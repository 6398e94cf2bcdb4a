package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
	portssvc "github.com/ecovilla/exchange_backend/internal/core/ports/services"
	"github.com/ecovilla/exchange_backend/internal/core/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MaintenanceServiceTestSuite struct {
	suite.Suite
	mockTxnRepo  *MockTransactionRepository
	mockNotifier *MockNotifier
	service      portssvc.MaintenanceSvcFacade
}

func (suite *MaintenanceServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockNotifier = new(MockNotifier)
	suite.service = services.NewMaintenanceService(suite.mockTxnRepo, suite.mockNotifier)
}

func awaitingReturn(due time.Time) domain.Transaction {
	return domain.Transaction{
		TransactionID:      uuid.NewString(),
		TenantID:           uuid.NewString(),
		ListingID:          uuid.NewString(),
		BorrowerID:         uuid.NewString(),
		LenderID:           uuid.NewString(),
		Quantity:           1,
		Status:             domain.StatusPickedUp,
		ExpectedReturnDate: &due,
	}
}

func (suite *MaintenanceServiceTestSuite) TestRunReturnDateCheck_SortsIntoBuckets() {
	ctx := context.Background()
	overdue := awaitingReturn(time.Now().Add(-72 * time.Hour))
	dueSoon := awaitingReturn(time.Now().Add(24 * time.Hour))
	farOut := awaitingReturn(time.Now().Add(240 * time.Hour))

	suite.mockTxnRepo.On("ListAwaitingReturn", ctx).Return([]domain.Transaction{overdue, dueSoon, farOut}, nil).Once()

	// Overdue notices go to both parties.
	suite.mockNotifier.On("DispatchOnce", ctx, mock.MatchedBy(func(e portssvc.ExchangeEvent) bool {
		return e.Type == domain.NotifyExchangeOverdue && e.RecipientID == overdue.BorrowerID
	})).Return(true).Once()
	suite.mockNotifier.On("DispatchOnce", ctx, mock.MatchedBy(func(e portssvc.ExchangeEvent) bool {
		return e.Type == domain.NotifyExchangeOverdue && e.RecipientID == overdue.LenderID
	})).Return(true).Once()
	// The reminder goes to the borrower only.
	suite.mockNotifier.On("DispatchOnce", ctx, mock.MatchedBy(func(e portssvc.ExchangeEvent) bool {
		return e.Type == domain.NotifyExchangeReminder && e.RecipientID == dueSoon.BorrowerID
	})).Return(true).Once()

	result, err := suite.service.RunReturnDateCheck(ctx)

	suite.Require().NoError(err)
	suite.Equal(3, result.Processed)
	suite.Equal(1, result.RemindersSent)
	suite.Equal(2, result.OverdueNoticesSent)
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *MaintenanceServiceTestSuite) TestRunReturnDateCheck_RepeatSweepSendsNothing() {
	ctx := context.Background()
	overdue := awaitingReturn(time.Now().Add(-72 * time.Hour))
	dueSoon := awaitingReturn(time.Now().Add(24 * time.Hour))

	suite.mockTxnRepo.On("ListAwaitingReturn", ctx).Return([]domain.Transaction{overdue, dueSoon}, nil).Once()
	suite.mockNotifier.On("DispatchOnce", ctx, mock.Anything).Return(false).Times(3)

	result, err := suite.service.RunReturnDateCheck(ctx)

	suite.Require().NoError(err)
	suite.Equal(2, result.Processed)
	suite.Equal(0, result.RemindersSent)
	suite.Equal(0, result.OverdueNoticesSent)
}

func (suite *MaintenanceServiceTestSuite) TestRunReturnDateCheck_NoEventsSystemGenerated() {
	ctx := context.Background()
	overdue := awaitingReturn(time.Now().Add(-72 * time.Hour))

	suite.mockTxnRepo.On("ListAwaitingReturn", ctx).Return([]domain.Transaction{overdue}, nil).Once()
	suite.mockNotifier.On("DispatchOnce", ctx, mock.MatchedBy(func(e portssvc.ExchangeEvent) bool {
		return e.ActorID == nil && e.TransactionID != nil && *e.TransactionID == overdue.TransactionID
	})).Return(true).Twice()

	_, err := suite.service.RunReturnDateCheck(ctx)

	suite.Require().NoError(err)
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *MaintenanceServiceTestSuite) TestRunReturnDateCheck_RepoError() {
	ctx := context.Background()
	repoErr := errors.New("connection refused")

	suite.mockTxnRepo.On("ListAwaitingReturn", ctx).Return(nil, repoErr).Once()

	result, err := suite.service.RunReturnDateCheck(ctx)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.mockNotifier.AssertNotCalled(suite.T(), "DispatchOnce", mock.Anything, mock.Anything)
}

func (suite *MaintenanceServiceTestSuite) TestRunReturnDateCheck_EmptySweep() {
	ctx := context.Background()

	suite.mockTxnRepo.On("ListAwaitingReturn", ctx).Return([]domain.Transaction{}, nil).Once()

	result, err := suite.service.RunReturnDateCheck(ctx)

	suite.Require().NoError(err)
	suite.Equal(0, result.Processed)
}

func TestMaintenanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MaintenanceServiceTestSuite))
}
