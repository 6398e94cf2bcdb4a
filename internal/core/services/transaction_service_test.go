package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ecovilla/exchange_backend/internal/apperrors"
	"github.com/ecovilla/exchange_backend/internal/core/domain"
	portsrepo "github.com/ecovilla/exchange_backend/internal/core/ports/repositories"
	portssvc "github.com/ecovilla/exchange_backend/internal/core/ports/services"
	"github.com/ecovilla/exchange_backend/internal/core/services"
	"github.com/ecovilla/exchange_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) TransitionStatus(ctx context.Context, transactionID string, expected domain.TransactionStatus, patch portsrepo.TransactionPatch) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, expected, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) RequestExtension(ctx context.Context, transactionID string, newDate time.Time, message *string, updatedAt time.Time) error {
	args := m.Called(ctx, transactionID, newDate, message, updatedAt)
	return args.Error(0)
}

func (m *MockTransactionRepository) ResolveExtension(ctx context.Context, transactionID string, approve bool, updatedAt time.Time) error {
	args := m.Called(ctx, transactionID, approve, updatedAt)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, tenantID, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, tenantID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsForUser(ctx context.Context, tenantID, userID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, tenantID, userID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.Transaction), token, args.Error(2)
}

func (m *MockTransactionRepository) FindPendingRequest(ctx context.Context, tenantID, listingID, borrowerID string) (*domain.Transaction, error) {
	args := m.Called(ctx, tenantID, listingID, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListCompletedByListing(ctx context.Context, tenantID, listingID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, tenantID, listingID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.Transaction), token, args.Error(2)
}

func (m *MockTransactionRepository) ListAwaitingReturn(ctx context.Context) ([]domain.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// --- Mock ListingReader ---
type MockListingReader struct {
	mock.Mock
}

func (m *MockListingReader) FindListingByID(ctx context.Context, tenantID, listingID string) (*domain.Listing, error) {
	args := m.Called(ctx, tenantID, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingReader) ListListingsByTenant(ctx context.Context, tenantID string, params portsrepo.ListListingsParams) ([]domain.Listing, *string, error) {
	args := m.Called(ctx, tenantID, params)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.Listing), token, args.Error(2)
}

func (m *MockListingReader) ListListingsByCreator(ctx context.Context, tenantID, creatorID string) ([]domain.Listing, error) {
	args := m.Called(ctx, tenantID, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *MockListingReader) CountFlags(ctx context.Context, listingID string) (int, error) {
	args := m.Called(ctx, listingID)
	return args.Int(0), args.Error(1)
}

// --- Mock CategoryPolicySvc ---
type MockCategoryPolicy struct {
	mock.Mock
}

func (m *MockCategoryPolicy) GetReturnPolicy(ctx context.Context, tenantID, categoryID string) (domain.ReturnPolicy, error) {
	args := m.Called(ctx, tenantID, categoryID)
	return args.Get(0).(domain.ReturnPolicy), args.Error(1)
}

// --- Mock ListingInventorySvc ---
type MockInventory struct {
	mock.Mock
}

func (m *MockInventory) ReserveQuantity(ctx context.Context, tenantID, listingID string, quantity int) error {
	args := m.Called(ctx, tenantID, listingID, quantity)
	return args.Error(0)
}

func (m *MockInventory) ReleaseQuantity(ctx context.Context, tenantID, listingID string, quantity int) error {
	args := m.Called(ctx, tenantID, listingID, quantity)
	return args.Error(0)
}

// --- Mock NotificationDispatcherSvc ---
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Dispatch(ctx context.Context, event portssvc.ExchangeEvent) {
	m.Called(ctx, event)
}

func (m *MockNotifier) DispatchOnce(ctx context.Context, event portssvc.ExchangeEvent) bool {
	args := m.Called(ctx, event)
	return args.Bool(0)
}

// --- Mock TenantAuthorizerSvc ---
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) AuthorizeUserAction(ctx context.Context, userID, tenantID string, requiredRole domain.TenantRole) error {
	args := m.Called(ctx, userID, tenantID, requiredRole)
	return args.Error(0)
}

// --- Test Suite ---
type TransactionServiceTestSuite struct {
	suite.Suite
	mockTxnRepo    *MockTransactionRepository
	mockListings   *MockListingReader
	mockPolicy     *MockCategoryPolicy
	mockInventory  *MockInventory
	mockNotifier   *MockNotifier
	mockAuthorizer *MockAuthorizer
	service        portssvc.TransactionSvcFacade

	tenantID   string
	borrowerID string
	lenderID   string
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockListings = new(MockListingReader)
	suite.mockPolicy = new(MockCategoryPolicy)
	suite.mockInventory = new(MockInventory)
	suite.mockNotifier = new(MockNotifier)
	suite.mockAuthorizer = new(MockAuthorizer)
	suite.service = services.NewTransactionService(
		suite.mockTxnRepo,
		suite.mockListings,
		suite.mockPolicy,
		suite.mockInventory,
		suite.mockNotifier,
		suite.mockAuthorizer,
	)

	suite.tenantID = uuid.NewString()
	suite.borrowerID = uuid.NewString()
	suite.lenderID = uuid.NewString()
}

func (suite *TransactionServiceTestSuite) publishedListing(quantity int) *domain.Listing {
	listing := &domain.Listing{
		ListingID:         uuid.NewString(),
		TenantID:          suite.tenantID,
		CategoryID:        uuid.NewString(),
		Title:             "Cordless drill",
		Status:            domain.ListingPublished,
		IsAvailable:       quantity > 0,
		PricingType:       domain.PricingFree,
		AvailableQuantity: quantity,
		VisibilityScope:   domain.VisibilityCommunity,
	}
	listing.CreatedBy = suite.lenderID
	return listing
}

func (suite *TransactionServiceTestSuite) transaction(status domain.TransactionStatus) *domain.Transaction {
	return &domain.Transaction{
		TransactionID: uuid.NewString(),
		TenantID:      suite.tenantID,
		ListingID:     uuid.NewString(),
		BorrowerID:    suite.borrowerID,
		LenderID:      suite.lenderID,
		Quantity:      2,
		Status:        status,
		CreatedAt:     time.Now().Add(-time.Hour),
		UpdatedAt:     time.Now().Add(-time.Hour),
	}
}

// --- RequestTransaction ---

func (suite *TransactionServiceTestSuite) TestRequestTransaction_Success() {
	ctx := context.Background()
	listing := suite.publishedListing(5)
	req := dto.CreateTransactionRequest{ListingID: listing.ListingID, Quantity: 2}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.borrowerID, suite.tenantID, domain.RoleResident).Return(nil).Once()
	suite.mockListings.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Once()
	suite.mockTxnRepo.On("FindPendingRequest", ctx, suite.tenantID, listing.ListingID, suite.borrowerID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockTxnRepo.On("CreateTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Status == domain.StatusRequested &&
			txn.BorrowerID == suite.borrowerID &&
			txn.LenderID == suite.lenderID &&
			txn.Quantity == 2
	})).Return(nil).Once()
	suite.mockNotifier.On("Dispatch", ctx, mock.MatchedBy(func(e portssvc.ExchangeEvent) bool {
		return e.Type == domain.NotifyExchangeRequest && e.RecipientID == suite.lenderID
	})).Once()

	txn, err := suite.service.RequestTransaction(ctx, suite.tenantID, req, suite.borrowerID)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Equal(domain.StatusRequested, txn.Status)
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestRequestTransaction_OwnListing() {
	ctx := context.Background()
	listing := suite.publishedListing(5)
	req := dto.CreateTransactionRequest{ListingID: listing.ListingID, Quantity: 1}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.lenderID, suite.tenantID, domain.RoleResident).Return(nil).Once()
	suite.mockListings.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Once()

	txn, err := suite.service.RequestTransaction(ctx, suite.tenantID, req, suite.lenderID)

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestRequestTransaction_UnpublishedListing() {
	ctx := context.Background()
	listing := suite.publishedListing(5)
	listing.Status = domain.ListingPaused
	req := dto.CreateTransactionRequest{ListingID: listing.ListingID, Quantity: 1}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.borrowerID, suite.tenantID, domain.RoleResident).Return(nil).Once()
	suite.mockListings.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Once()

	_, err := suite.service.RequestTransaction(ctx, suite.tenantID, req, suite.borrowerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *TransactionServiceTestSuite) TestRequestTransaction_QuantityOverAvailability() {
	ctx := context.Background()
	listing := suite.publishedListing(1)
	req := dto.CreateTransactionRequest{ListingID: listing.ListingID, Quantity: 3}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.borrowerID, suite.tenantID, domain.RoleResident).Return(nil).Once()
	suite.mockListings.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Once()

	_, err := suite.service.RequestTransaction(ctx, suite.tenantID, req, suite.borrowerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestRequestTransaction_ZeroQuantity() {
	ctx := context.Background()
	listing := suite.publishedListing(5)
	req := dto.CreateTransactionRequest{ListingID: listing.ListingID, Quantity: 0}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.borrowerID, suite.tenantID, domain.RoleResident).Return(nil).Once()
	suite.mockListings.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Once()

	_, err := suite.service.RequestTransaction(ctx, suite.tenantID, req, suite.borrowerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestRequestTransaction_DuplicatePending() {
	ctx := context.Background()
	listing := suite.publishedListing(5)
	req := dto.CreateTransactionRequest{ListingID: listing.ListingID, Quantity: 1}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.borrowerID, suite.tenantID, domain.RoleResident).Return(nil).Once()
	suite.mockListings.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Once()
	suite.mockTxnRepo.On("FindPendingRequest", ctx, suite.tenantID, listing.ListingID, suite.borrowerID).Return(suite.transaction(domain.StatusRequested), nil).Once()

	_, err := suite.service.RequestTransaction(ctx, suite.tenantID, req, suite.borrowerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything)
}

// --- ConfirmRequest ---

func (suite *TransactionServiceTestSuite) TestConfirmRequest_ReservesBeforeTransition() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusRequested)
	confirmed := *txn
	confirmed.Status = domain.StatusConfirmed

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockInventory.On("ReserveQuantity", ctx, suite.tenantID, txn.ListingID, txn.Quantity).Return(nil).Once()
	suite.mockTxnRepo.On("TransitionStatus", ctx, txn.TransactionID, domain.StatusRequested, mock.MatchedBy(func(p portsrepo.TransactionPatch) bool {
		return p.Status == domain.StatusConfirmed && p.ConfirmedAt != nil
	})).Return(&confirmed, nil).Once()
	suite.mockNotifier.On("Dispatch", ctx, mock.MatchedBy(func(e portssvc.ExchangeEvent) bool {
		return e.Type == domain.NotifyExchangeConfirmed && e.RecipientID == suite.borrowerID
	})).Once()

	result, err := suite.service.ConfirmRequest(ctx, suite.tenantID, txn.TransactionID, dto.ConfirmTransactionRequest{}, suite.lenderID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusConfirmed, result.Status)
	suite.mockInventory.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestConfirmRequest_ReleasesOnLostRace() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusRequested)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockInventory.On("ReserveQuantity", ctx, suite.tenantID, txn.ListingID, txn.Quantity).Return(nil).Once()
	suite.mockTxnRepo.On("TransitionStatus", ctx, txn.TransactionID, domain.StatusRequested, mock.Anything).Return(nil, apperrors.ErrInvalidState).Once()
	suite.mockInventory.On("ReleaseQuantity", ctx, suite.tenantID, txn.ListingID, txn.Quantity).Return(nil).Once()

	_, err := suite.service.ConfirmRequest(ctx, suite.tenantID, txn.TransactionID, dto.ConfirmTransactionRequest{}, suite.lenderID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockInventory.AssertExpectations(suite.T())
	suite.mockNotifier.AssertNotCalled(suite.T(), "Dispatch", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestConfirmRequest_BorrowerForbidden() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusRequested)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()

	_, err := suite.service.ConfirmRequest(ctx, suite.tenantID, txn.TransactionID, dto.ConfirmTransactionRequest{}, suite.borrowerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockInventory.AssertNotCalled(suite.T(), "ReserveQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestConfirmRequest_InsufficientInventory() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusRequested)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockInventory.On("ReserveQuantity", ctx, suite.tenantID, txn.ListingID, txn.Quantity).Return(apperrors.ErrInsufficientInventory).Once()

	_, err := suite.service.ConfirmRequest(ctx, suite.tenantID, txn.TransactionID, dto.ConfirmTransactionRequest{}, suite.lenderID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientInventory)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- RejectRequest ---

func (suite *TransactionServiceTestSuite) TestRejectRequest_Success() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusRequested)
	rejected := *txn
	rejected.Status = domain.StatusRejected

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockTxnRepo.On("TransitionStatus", ctx, txn.TransactionID, domain.StatusRequested, mock.MatchedBy(func(p portsrepo.TransactionPatch) bool {
		return p.Status == domain.StatusRejected && p.RejectionReason != nil && *p.RejectionReason == "not available this week" && p.RejectedAt != nil
	})).Return(&rejected, nil).Once()
	suite.mockNotifier.On("Dispatch", ctx, mock.MatchedBy(func(e portssvc.ExchangeEvent) bool {
		return e.Type == domain.NotifyExchangeRejected && e.RecipientID == suite.borrowerID
	})).Once()

	result, err := suite.service.RejectRequest(ctx, suite.tenantID, txn.TransactionID, dto.RejectTransactionRequest{Reason: "not available this week"}, suite.lenderID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusRejected, result.Status)
	suite.mockInventory.AssertNotCalled(suite.T(), "ReleaseQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- MarkPickedUp ---

func (suite *TransactionServiceTestSuite) TestMarkPickedUp_ReturnRequiredStaysOut() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusConfirmed)
	pickedUp := *txn
	pickedUp.Status = domain.StatusPickedUp
	listing := suite.publishedListing(3)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockTxnRepo.On("TransitionStatus", ctx, txn.TransactionID, domain.StatusConfirmed, mock.MatchedBy(func(p portsrepo.TransactionPatch) bool {
		return p.Status == domain.StatusPickedUp && p.ActualPickupDate != nil
	})).Return(&pickedUp, nil).Once()
	suite.mockListings.On("FindListingByID", ctx, suite.tenantID, pickedUp.ListingID).Return(listing, nil).Once()
	suite.mockPolicy.On("GetReturnPolicy", ctx, suite.tenantID, listing.CategoryID).Return(domain.ReturnRequired, nil).Once()
	suite.mockNotifier.On("Dispatch", ctx, mock.MatchedBy(func(e portssvc.ExchangeEvent) bool {
		return e.Type == domain.NotifyExchangePickedUp
	})).Once()

	result, err := suite.service.MarkPickedUp(ctx, suite.tenantID, txn.TransactionID, suite.borrowerID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusPickedUp, result.Status)
	suite.mockInventory.AssertNotCalled(suite.T(), "ReleaseQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestMarkPickedUp_ReusableAutoCompletesAndRestocks() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusConfirmed)
	pickedUp := *txn
	pickedUp.Status = domain.StatusPickedUp
	completed := pickedUp
	completed.Status = domain.StatusCompleted
	listing := suite.publishedListing(3)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockTxnRepo.On("TransitionStatus", ctx, txn.TransactionID, domain.StatusConfirmed, mock.Anything).Return(&pickedUp, nil).Once()
	suite.mockListings.On("FindListingByID", ctx, suite.tenantID, pickedUp.ListingID).Return(listing, nil).Once()
	suite.mockPolicy.On("GetReturnPolicy", ctx, suite.tenantID, listing.CategoryID).Return(domain.Reusable, nil).Once()
	suite.mockTxnRepo.On("TransitionStatus", ctx, txn.TransactionID, domain.StatusPickedUp, mock.MatchedBy(func(p portsrepo.TransactionPatch) bool {
		return p.Status == domain.StatusCompleted && p.CompletedAt != nil
	})).Return(&completed, nil).Once()
	suite.mockInventory.On("ReleaseQuantity", ctx, suite.tenantID, pickedUp.ListingID, pickedUp.Quantity).Return(nil).Once()
	suite.mockNotifier.On("Dispatch", ctx, mock.MatchedBy(func(e portssvc.ExchangeEvent) bool {
		return e.Type == domain.NotifyExchangeCompleted
	})).Once()

	result, err := suite.service.MarkPickedUp(ctx, suite.tenantID, txn.TransactionID, suite.lenderID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCompleted, result.Status)
	suite.mockInventory.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestMarkPickedUp_ConsumableCompletesAndRestocks() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusConfirmed)
	pickedUp := *txn
	pickedUp.Status = domain.StatusPickedUp
	completed := pickedUp
	completed.Status = domain.StatusCompleted
	listing := suite.publishedListing(3)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockListings.On("FindListingByID", ctx, suite.tenantID, txn.ListingID).Return(listing, nil).Once()
	suite.mockPolicy.On("GetReturnPolicy", ctx, suite.tenantID, listing.CategoryID).Return(domain.Consumable, nil).Once()
	suite.mockTxnRepo.On("TransitionStatus", ctx, txn.TransactionID, domain.StatusConfirmed, mock.Anything).Return(&pickedUp, nil).Once()
	suite.mockTxnRepo.On("TransitionStatus", ctx, txn.TransactionID, domain.StatusPickedUp, mock.Anything).Return(&completed, nil).Once()
	suite.mockInventory.On("ReleaseQuantity", ctx, suite.tenantID, pickedUp.ListingID, pickedUp.Quantity).Return(nil).Once()
	suite.mockNotifier.On("Dispatch", ctx, mock.Anything).Once()

	result, err := suite.service.MarkPickedUp(ctx, suite.tenantID, txn.TransactionID, suite.borrowerID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCompleted, result.Status)
	suite.mockInventory.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestMarkPickedUp_PolicyLookupFailureLeavesConfirmed() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusConfirmed)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockListings.On("FindListingByID", ctx, suite.tenantID, txn.ListingID).Return(nil, errors.New("connection refused")).Once()

	_, err := suite.service.MarkPickedUp(ctx, suite.tenantID, txn.TransactionID, suite.borrowerID)

	suite.Require().Error(err)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestMarkPickedUp_NonPartyForbidden() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusConfirmed)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()

	_, err := suite.service.MarkPickedUp(ctx, suite.tenantID, txn.TransactionID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

// --- MarkReturned ---

func (suite *TransactionServiceTestSuite) TestMarkReturned_Success() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusPickedUp)
	returned := *txn
	returned.Status = domain.StatusReturned
	listing := suite.publishedListing(3)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockListings.On("FindListingByID", ctx, suite.tenantID, txn.ListingID).Return(listing, nil).Once()
	suite.mockPolicy.On("GetReturnPolicy", ctx, suite.tenantID, listing.CategoryID).Return(domain.ReturnRequired, nil).Once()
	suite.mockTxnRepo.On("TransitionStatus", ctx, txn.TransactionID, domain.StatusPickedUp, mock.MatchedBy(func(p portsrepo.TransactionPatch) bool {
		return p.Status == domain.StatusReturned &&
			p.ActualReturnDate != nil &&
			p.ReturnCondition != nil && *p.ReturnCondition == domain.ReturnGood
	})).Return(&returned, nil).Once()
	suite.mockNotifier.On("Dispatch", ctx, mock.MatchedBy(func(e portssvc.ExchangeEvent) bool {
		return e.Type == domain.NotifyExchangeReturned && e.RecipientID == suite.borrowerID
	})).Once()

	result, err := suite.service.MarkReturned(ctx, suite.tenantID, txn.TransactionID, dto.ReturnTransactionRequest{Condition: "good"}, suite.lenderID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusReturned, result.Status)
}

func (suite *TransactionServiceTestSuite) TestMarkReturned_BorrowerForbidden() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusPickedUp)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()

	_, err := suite.service.MarkReturned(ctx, suite.tenantID, txn.TransactionID, dto.ReturnTransactionRequest{Condition: "good"}, suite.borrowerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *TransactionServiceTestSuite) TestMarkReturned_DamagedRequiresEvidence() {
	ctx := context.Background()
	emptyNotes := ""
	blankNotes := "   "
	notes := "Scratched surface"
	photo := "https://cdn.example.com/damage.jpg"

	requests := []dto.ReturnTransactionRequest{
		{Condition: "damaged"},
		{Condition: "damaged", Notes: &emptyNotes, DamagePhotoURL: &photo},
		{Condition: "damaged", Notes: &blankNotes, DamagePhotoURL: &photo},
		{Condition: "broken", Notes: &notes},
		{Condition: "broken", Notes: &notes, DamagePhotoURL: &emptyNotes},
	}

	for _, req := range requests {
		txn := suite.transaction(domain.StatusPickedUp)
		listing := suite.publishedListing(3)

		suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()
		suite.mockListings.On("FindListingByID", ctx, suite.tenantID, txn.ListingID).Return(listing, nil).Once()
		suite.mockPolicy.On("GetReturnPolicy", ctx, suite.tenantID, listing.CategoryID).Return(domain.ReturnRequired, nil).Once()

		_, err := suite.service.MarkReturned(ctx, suite.tenantID, txn.TransactionID, req, suite.lenderID)

		suite.Require().Error(err)
		suite.ErrorIs(err, apperrors.ErrValidation)
	}
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestMarkReturned_NoReturnStepForReusable() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusPickedUp)
	listing := suite.publishedListing(3)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockListings.On("FindListingByID", ctx, suite.tenantID, txn.ListingID).Return(listing, nil).Once()
	suite.mockPolicy.On("GetReturnPolicy", ctx, suite.tenantID, listing.CategoryID).Return(domain.Reusable, nil).Once()

	_, err := suite.service.MarkReturned(ctx, suite.tenantID, txn.TransactionID, dto.ReturnTransactionRequest{Condition: "good"}, suite.lenderID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

// --- MarkCompleted ---

func (suite *TransactionServiceTestSuite) TestMarkCompleted_RestocksReturnRequired() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusReturned)
	completed := *txn
	completed.Status = domain.StatusCompleted
	listing := suite.publishedListing(3)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockListings.On("FindListingByID", ctx, suite.tenantID, txn.ListingID).Return(listing, nil).Once()
	suite.mockPolicy.On("GetReturnPolicy", ctx, suite.tenantID, listing.CategoryID).Return(domain.ReturnRequired, nil).Once()
	suite.mockTxnRepo.On("TransitionStatus", ctx, txn.TransactionID, domain.StatusReturned, mock.MatchedBy(func(p portsrepo.TransactionPatch) bool {
		return p.Status == domain.StatusCompleted && p.CompletedAt != nil
	})).Return(&completed, nil).Once()
	suite.mockInventory.On("ReleaseQuantity", ctx, suite.tenantID, txn.ListingID, txn.Quantity).Return(nil).Once()
	suite.mockNotifier.On("Dispatch", ctx, mock.MatchedBy(func(e portssvc.ExchangeEvent) bool {
		return e.Type == domain.NotifyExchangeCompleted
	})).Once()

	result, err := suite.service.MarkCompleted(ctx, suite.tenantID, txn.TransactionID, suite.borrowerID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCompleted, result.Status)
	suite.mockInventory.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestMarkCompleted_FinishesStrandedHandoff() {
	// A no-return-step exchange whose auto-complete cascade did not run can
	// still be completed directly from picked_up.
	ctx := context.Background()
	txn := suite.transaction(domain.StatusPickedUp)
	completed := *txn
	completed.Status = domain.StatusCompleted
	listing := suite.publishedListing(3)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockListings.On("FindListingByID", ctx, suite.tenantID, txn.ListingID).Return(listing, nil).Once()
	suite.mockPolicy.On("GetReturnPolicy", ctx, suite.tenantID, listing.CategoryID).Return(domain.Reusable, nil).Once()
	suite.mockTxnRepo.On("TransitionStatus", ctx, txn.TransactionID, domain.StatusPickedUp, mock.MatchedBy(func(p portsrepo.TransactionPatch) bool {
		return p.Status == domain.StatusCompleted && p.CompletedAt != nil
	})).Return(&completed, nil).Once()
	suite.mockInventory.On("ReleaseQuantity", ctx, suite.tenantID, txn.ListingID, txn.Quantity).Return(nil).Once()
	suite.mockNotifier.On("Dispatch", ctx, mock.Anything).Once()

	result, err := suite.service.MarkCompleted(ctx, suite.tenantID, txn.TransactionID, suite.lenderID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCompleted, result.Status)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

// --- CancelTransaction ---

func (suite *TransactionServiceTestSuite) TestCancelTransaction_FromRequestedNoRelease() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusRequested)
	cancelled := *txn
	cancelled.Status = domain.StatusCancelled

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockTxnRepo.On("TransitionStatus", ctx, txn.TransactionID, domain.StatusRequested, mock.MatchedBy(func(p portsrepo.TransactionPatch) bool {
		return p.Status == domain.StatusCancelled
	})).Return(&cancelled, nil).Once()
	suite.mockNotifier.On("Dispatch", ctx, mock.Anything).Once()

	result, err := suite.service.CancelTransaction(ctx, suite.tenantID, txn.TransactionID, dto.CancelTransactionRequest{}, suite.borrowerID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCancelled, result.Status)
	suite.mockInventory.AssertNotCalled(suite.T(), "ReleaseQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCancelTransaction_FromConfirmedReleases() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusConfirmed)
	cancelled := *txn
	cancelled.Status = domain.StatusCancelled

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockTxnRepo.On("TransitionStatus", ctx, txn.TransactionID, domain.StatusConfirmed, mock.Anything).Return(&cancelled, nil).Once()
	suite.mockInventory.On("ReleaseQuantity", ctx, suite.tenantID, txn.ListingID, txn.Quantity).Return(nil).Once()
	suite.mockNotifier.On("Dispatch", ctx, mock.MatchedBy(func(e portssvc.ExchangeEvent) bool {
		return e.Type == domain.NotifyExchangeCancelled && e.RecipientID == suite.borrowerID
	})).Once()

	result, err := suite.service.CancelTransaction(ctx, suite.tenantID, txn.TransactionID, dto.CancelTransactionRequest{}, suite.lenderID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCancelled, result.Status)
	suite.mockInventory.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCancelTransaction_PickedUpRejected() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusPickedUp)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()

	_, err := suite.service.CancelTransaction(ctx, suite.tenantID, txn.TransactionID, dto.CancelTransactionRequest{}, suite.borrowerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Extensions ---

func (suite *TransactionServiceTestSuite) TestRequestExtension_Success() {
	ctx := context.Background()
	due := time.Now().Add(24 * time.Hour)
	txn := suite.transaction(domain.StatusPickedUp)
	txn.ExpectedReturnDate = &due
	updated := *txn
	updated.ExtensionRequested = true

	newDate := due.Add(72 * time.Hour)
	req := dto.RequestExtensionRequest{NewReturnDate: newDate}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockTxnRepo.On("RequestExtension", ctx, txn.TransactionID, newDate, (*string)(nil), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(&updated, nil).Once()
	suite.mockNotifier.On("Dispatch", ctx, mock.MatchedBy(func(e portssvc.ExchangeEvent) bool {
		return e.Type == domain.NotifyExtensionRequested && e.RecipientID == suite.lenderID
	})).Once()

	result, err := suite.service.RequestExtension(ctx, suite.tenantID, txn.TransactionID, req, suite.borrowerID)

	suite.Require().NoError(err)
	suite.True(result.ExtensionRequested)
}

func (suite *TransactionServiceTestSuite) TestRequestExtension_MustBeLater() {
	ctx := context.Background()
	due := time.Now().Add(72 * time.Hour)
	txn := suite.transaction(domain.StatusPickedUp)
	txn.ExpectedReturnDate = &due

	req := dto.RequestExtensionRequest{NewReturnDate: due.Add(-24 * time.Hour)}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()

	_, err := suite.service.RequestExtension(ctx, suite.tenantID, txn.TransactionID, req, suite.borrowerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransactionServiceTestSuite) TestRespondToExtension_Approve() {
	ctx := context.Background()
	newDate := time.Now().Add(96 * time.Hour)
	txn := suite.transaction(domain.StatusPickedUp)
	txn.ExtensionRequested = true
	txn.ExtensionNewDate = &newDate
	resolved := *txn
	resolved.ExtensionRequested = false
	resolved.ExpectedReturnDate = &newDate

	approve := true

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockTxnRepo.On("ResolveExtension", ctx, txn.TransactionID, true, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(&resolved, nil).Once()
	suite.mockNotifier.On("Dispatch", ctx, mock.MatchedBy(func(e portssvc.ExchangeEvent) bool {
		return e.Type == domain.NotifyExtensionAnswered && e.RecipientID == suite.borrowerID
	})).Once()

	result, err := suite.service.RespondToExtension(ctx, suite.tenantID, txn.TransactionID, dto.RespondExtensionRequest{Approve: &approve}, suite.lenderID)

	suite.Require().NoError(err)
	suite.False(result.ExtensionRequested)
	suite.Equal(&newDate, result.ExpectedReturnDate)
}

// --- Readers ---

func (suite *TransactionServiceTestSuite) TestGetTransactionByID_PartiesOnly() {
	ctx := context.Background()
	txn := suite.transaction(domain.StatusConfirmed)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.tenantID, txn.TransactionID).Return(txn, nil).Twice()

	result, err := suite.service.GetTransactionByID(ctx, suite.tenantID, txn.TransactionID, suite.borrowerID)
	suite.Require().NoError(err)
	suite.Equal(txn.TransactionID, result.TransactionID)

	_, err = suite.service.GetTransactionByID(ctx, suite.tenantID, txn.TransactionID, uuid.NewString())
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *TransactionServiceTestSuite) TestListMyTransactions_ComputesDueFlags() {
	ctx := context.Background()
	overdue := time.Now().Add(-72 * time.Hour)
	txn := suite.transaction(domain.StatusPickedUp)
	txn.ExpectedReturnDate = &overdue
	params := dto.ListTransactionsParams{Limit: 20}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.borrowerID, suite.tenantID, domain.RoleResident).Return(nil).Once()
	suite.mockTxnRepo.On("ListTransactionsForUser", ctx, suite.tenantID, suite.borrowerID, 20, (*string)(nil)).Return([]domain.Transaction{*txn}, nil, nil).Once()

	resp, err := suite.service.ListMyTransactions(ctx, suite.tenantID, suite.borrowerID, params)

	suite.Require().NoError(err)
	suite.Require().Len(resp.Transactions, 1)
	suite.True(resp.Transactions[0].IsOverdue)
	suite.False(resp.Transactions[0].IsDueSoon)
}

func (suite *TransactionServiceTestSuite) TestListListingHistory_OwnerOrAdmin() {
	ctx := context.Background()
	listing := suite.publishedListing(2)
	outsider := uuid.NewString()
	params := dto.ListTransactionsParams{Limit: 20}

	suite.mockListings.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Twice()
	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, outsider, suite.tenantID, domain.RoleAdmin).Return(apperrors.ErrForbidden).Once()
	suite.mockTxnRepo.On("ListCompletedByListing", ctx, suite.tenantID, listing.ListingID, 20, (*string)(nil)).Return([]domain.Transaction{}, nil, nil).Once()

	resp, err := suite.service.ListListingHistory(ctx, suite.tenantID, listing.ListingID, suite.lenderID, params)
	suite.Require().NoError(err)
	suite.Empty(resp.Transactions)

	_, err = suite.service.ListListingHistory(ctx, suite.tenantID, listing.ListingID, outsider, params)
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
