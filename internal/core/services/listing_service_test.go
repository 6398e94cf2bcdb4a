package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/ecovilla/exchange_backend/internal/apperrors"
	"github.com/ecovilla/exchange_backend/internal/core/domain"
	portssvc "github.com/ecovilla/exchange_backend/internal/core/ports/services"
	"github.com/ecovilla/exchange_backend/internal/core/services"
	"github.com/ecovilla/exchange_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockListingRepository extends the reader mock with the writer methods so one
// mock backs the full repository facade.
type MockListingRepository struct {
	MockListingReader
}

func (m *MockListingRepository) SaveListing(ctx context.Context, listing domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) UpdateListing(ctx context.Context, listing domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) UpdateListingStatus(ctx context.Context, listingID string, expected, next domain.ListingStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, listingID, expected, next, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockListingRepository) CancelListing(ctx context.Context, listingID string, expected domain.ListingStatus, reason, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, listingID, expected, reason, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockListingRepository) AdjustAvailableQuantity(ctx context.Context, listingID string, delta int) error {
	args := m.Called(ctx, listingID, delta)
	return args.Error(0)
}

func (m *MockListingRepository) SetArchived(ctx context.Context, listingID string, archivedBy *string, archivedAt *time.Time) error {
	args := m.Called(ctx, listingID, archivedBy, archivedAt)
	return args.Error(0)
}

func (m *MockListingRepository) SaveFlag(ctx context.Context, flag domain.Flag) error {
	args := m.Called(ctx, flag)
	return args.Error(0)
}

// MockCategoryReader mocks the category read port.
type MockCategoryReader struct {
	mock.Mock
}

func (m *MockCategoryReader) FindCategoryByID(ctx context.Context, tenantID, categoryID string) (*domain.Category, error) {
	args := m.Called(ctx, tenantID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryReader) ListCategoriesByTenant(ctx context.Context, tenantID string) ([]domain.Category, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

type ListingServiceTestSuite struct {
	suite.Suite
	mockRepo       *MockListingRepository
	mockCategories *MockCategoryReader
	mockAuthorizer *MockAuthorizer
	service        portssvc.ListingSvcFacade

	tenantID string
	ownerID  string
}

func (suite *ListingServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockListingRepository)
	suite.mockCategories = new(MockCategoryReader)
	suite.mockAuthorizer = new(MockAuthorizer)
	suite.service = services.NewListingService(suite.mockRepo, suite.mockCategories, suite.mockAuthorizer)

	suite.tenantID = uuid.NewString()
	suite.ownerID = uuid.NewString()
}

func (suite *ListingServiceTestSuite) ownedListing(status domain.ListingStatus) *domain.Listing {
	listing := &domain.Listing{
		ListingID:         uuid.NewString(),
		TenantID:          suite.tenantID,
		CategoryID:        uuid.NewString(),
		Title:             "Ladder",
		Status:            status,
		IsAvailable:       true,
		PricingType:       domain.PricingFree,
		AvailableQuantity: 1,
		VisibilityScope:   domain.VisibilityCommunity,
	}
	listing.CreatedBy = suite.ownerID
	return listing
}

func (suite *ListingServiceTestSuite) TestCreateListing_StartsAsDraft() {
	ctx := context.Background()
	categoryID := uuid.NewString()
	req := dto.CreateListingRequest{
		CategoryID:        categoryID,
		Title:             "Pressure washer",
		Description:       "Ask before weekends.",
		PricingType:       "free",
		AvailableQuantity: 2,
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.ownerID, suite.tenantID, domain.RoleResident).Return(nil).Once()
	suite.mockCategories.On("FindCategoryByID", ctx, suite.tenantID, categoryID).Return(&domain.Category{CategoryID: categoryID, TenantID: suite.tenantID}, nil).Once()
	suite.mockRepo.On("SaveListing", ctx, mock.MatchedBy(func(l domain.Listing) bool {
		return l.Status == domain.ListingDraft && l.AvailableQuantity == 2 && l.IsAvailable && l.CreatedBy == suite.ownerID
	})).Return(nil).Once()

	listing, err := suite.service.CreateListing(ctx, suite.tenantID, req, suite.ownerID)

	suite.Require().NoError(err)
	suite.Equal(domain.ListingDraft, listing.Status)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ListingServiceTestSuite) TestCreateListing_UnknownCategory() {
	ctx := context.Background()
	categoryID := uuid.NewString()
	req := dto.CreateListingRequest{CategoryID: categoryID, Title: "x", Description: "y", PricingType: "free", AvailableQuantity: 1}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.ownerID, suite.tenantID, domain.RoleResident).Return(nil).Once()
	suite.mockCategories.On("FindCategoryByID", ctx, suite.tenantID, categoryID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreateListing(ctx, suite.tenantID, req, suite.ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveListing", mock.Anything, mock.Anything)
}

func (suite *ListingServiceTestSuite) TestCreateListing_PricedWithoutPrice() {
	ctx := context.Background()
	categoryID := uuid.NewString()
	req := dto.CreateListingRequest{CategoryID: categoryID, Title: "x", Description: "y", PricingType: "fixed_price", AvailableQuantity: 1}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.ownerID, suite.tenantID, domain.RoleResident).Return(nil).Once()
	suite.mockCategories.On("FindCategoryByID", ctx, suite.tenantID, categoryID).Return(&domain.Category{CategoryID: categoryID}, nil).Once()

	_, err := suite.service.CreateListing(ctx, suite.tenantID, req, suite.ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ListingServiceTestSuite) TestPublishListing_FromDraft() {
	ctx := context.Background()
	listing := suite.ownedListing(domain.ListingDraft)

	suite.mockRepo.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Once()
	suite.mockRepo.On("UpdateListingStatus", ctx, listing.ListingID, domain.ListingDraft, domain.ListingPublished, suite.ownerID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.PublishListing(ctx, suite.tenantID, listing.ListingID, suite.ownerID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ListingServiceTestSuite) TestPublishListing_FromCancelledRejected() {
	ctx := context.Background()
	listing := suite.ownedListing(domain.ListingCancelled)

	suite.mockRepo.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Once()

	err := suite.service.PublishListing(ctx, suite.tenantID, listing.ListingID, suite.ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateListingStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ListingServiceTestSuite) TestPublishListing_NonOwnerForbidden() {
	ctx := context.Background()
	listing := suite.ownedListing(domain.ListingDraft)

	suite.mockRepo.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Once()

	err := suite.service.PublishListing(ctx, suite.tenantID, listing.ListingID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *ListingServiceTestSuite) TestUpdateListing_CannotDropPriceFromPriced() {
	ctx := context.Background()
	listing := suite.ownedListing(domain.ListingPublished)
	listing.PricingType = domain.PricingFree

	pricingType := "fixed_price"
	req := dto.UpdateListingRequest{PricingType: &pricingType}

	suite.mockRepo.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Once()

	_, err := suite.service.UpdateListing(ctx, suite.tenantID, listing.ListingID, req, suite.ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateListing", mock.Anything, mock.Anything)
}

func (suite *ListingServiceTestSuite) TestUpdateListing_Success() {
	ctx := context.Background()
	listing := suite.ownedListing(domain.ListingPublished)
	price := decimal.NewFromInt(15)
	pricingType := "fixed_price"
	title := "Ladder, 3m"
	req := dto.UpdateListingRequest{Title: &title, PricingType: &pricingType, Price: &price}

	suite.mockRepo.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Once()
	suite.mockRepo.On("UpdateListing", ctx, mock.MatchedBy(func(l domain.Listing) bool {
		return l.Title == title && l.PricingType == domain.PricingFixed && l.Price != nil
	})).Return(nil).Once()

	updated, err := suite.service.UpdateListing(ctx, suite.tenantID, listing.ListingID, req, suite.ownerID)

	suite.Require().NoError(err)
	suite.Equal(title, updated.Title)
}

func (suite *ListingServiceTestSuite) TestArchiveListing_AdminCanArchive() {
	ctx := context.Background()
	listing := suite.ownedListing(domain.ListingPublished)
	adminID := uuid.NewString()

	suite.mockRepo.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Once()
	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, adminID, suite.tenantID, domain.RoleAdmin).Return(nil).Once()
	suite.mockRepo.On("SetArchived", ctx, listing.ListingID, &adminID, mock.AnythingOfType("*time.Time")).Return(nil).Once()

	err := suite.service.ArchiveListing(ctx, suite.tenantID, listing.ListingID, adminID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ListingServiceTestSuite) TestArchiveListing_AlreadyArchived() {
	ctx := context.Background()
	listing := suite.ownedListing(domain.ListingPublished)
	archivedAt := time.Now().Add(-time.Hour)
	listing.ArchivedAt = &archivedAt

	suite.mockRepo.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Once()

	err := suite.service.ArchiveListing(ctx, suite.tenantID, listing.ListingID, suite.ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *ListingServiceTestSuite) TestFlagListing_OwnListingRejected() {
	ctx := context.Background()
	listing := suite.ownedListing(domain.ListingPublished)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.ownerID, suite.tenantID, domain.RoleResident).Return(nil).Once()
	suite.mockRepo.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Once()

	err := suite.service.FlagListing(ctx, suite.tenantID, listing.ListingID, dto.FlagListingRequest{Reason: "spam"}, suite.ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveFlag", mock.Anything, mock.Anything)
}

func (suite *ListingServiceTestSuite) TestFlagListing_RepeatFlagIsDuplicate() {
	ctx := context.Background()
	listing := suite.ownedListing(domain.ListingPublished)
	reporterID := uuid.NewString()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, reporterID, suite.tenantID, domain.RoleResident).Return(nil).Once()
	suite.mockRepo.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Once()
	suite.mockRepo.On("SaveFlag", ctx, mock.MatchedBy(func(f domain.Flag) bool {
		return f.ListingID == listing.ListingID && f.FlaggedBy == reporterID
	})).Return(apperrors.ErrDuplicate).Once()

	err := suite.service.FlagListing(ctx, suite.tenantID, listing.ListingID, dto.FlagListingRequest{Reason: "misleading"}, reporterID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *ListingServiceTestSuite) TestReserveQuantity_DelegatesNegativeDelta() {
	ctx := context.Background()
	listing := suite.ownedListing(domain.ListingPublished)

	suite.mockRepo.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Once()
	suite.mockRepo.On("AdjustAvailableQuantity", ctx, listing.ListingID, -3).Return(nil).Once()

	err := suite.service.ReserveQuantity(ctx, suite.tenantID, listing.ListingID, 3)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ListingServiceTestSuite) TestReserveQuantity_SurfacesInsufficientInventory() {
	ctx := context.Background()
	listing := suite.ownedListing(domain.ListingPublished)

	suite.mockRepo.On("FindListingByID", ctx, suite.tenantID, listing.ListingID).Return(listing, nil).Once()
	suite.mockRepo.On("AdjustAvailableQuantity", ctx, listing.ListingID, -2).Return(apperrors.ErrInsufficientInventory).Once()

	err := suite.service.ReserveQuantity(ctx, suite.tenantID, listing.ListingID, 2)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientInventory)
}

func (suite *ListingServiceTestSuite) TestReleaseQuantity_RejectsNonPositive() {
	ctx := context.Background()

	err := suite.service.ReleaseQuantity(ctx, suite.tenantID, uuid.NewString(), 0)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "AdjustAvailableQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestListingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ListingServiceTestSuite))
}
