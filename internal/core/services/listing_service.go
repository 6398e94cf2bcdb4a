package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ecovilla/exchange_backend/internal/apperrors"
	"github.com/ecovilla/exchange_backend/internal/core/domain"
	portsrepo "github.com/ecovilla/exchange_backend/internal/core/ports/repositories"
	portssvc "github.com/ecovilla/exchange_backend/internal/core/ports/services"
	"github.com/ecovilla/exchange_backend/internal/dto"
	"github.com/google/uuid"
)

// listingService implements the ListingSvcFacade interface
type listingService struct {
	BaseService
	listingRepo  portsrepo.ListingRepositoryFacade
	categoryRepo portsrepo.CategoryReader
}

// NewListingService creates a new listing service with the provided dependencies
func NewListingService(
	listingRepo portsrepo.ListingRepositoryFacade,
	categoryRepo portsrepo.CategoryReader,
	authorizer portssvc.TenantAuthorizerSvc,
) portssvc.ListingSvcFacade {
	return &listingService{
		BaseService:  BaseService{TenantAuthorizer: authorizer},
		listingRepo:  listingRepo,
		categoryRepo: categoryRepo,
	}
}

// Ensure listingService implements the ListingSvcFacade interface
var _ portssvc.ListingSvcFacade = (*listingService)(nil)

// CreateListing persists a new draft listing owned by the creator.
func (s *listingService) CreateListing(ctx context.Context, tenantID string, req dto.CreateListingRequest, creatorUserID string) (*domain.Listing, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, tenantID, domain.RoleResident); err != nil {
		return nil, err
	}

	// The category must exist in this tenant; it decides the return policy
	// of every transaction on the listing.
	if _, err := s.categoryRepo.FindCategoryByID(ctx, tenantID, req.CategoryID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: category %s not found", apperrors.ErrValidation, req.CategoryID)
		}
		return nil, err
	}

	pricingType := domain.PricingType(req.PricingType)
	if pricingType != domain.PricingFree && req.Price == nil {
		return nil, fmt.Errorf("%w: price is required for pricing type %s", apperrors.ErrValidation, pricingType)
	}

	visibility := domain.VisibilityCommunity
	if req.VisibilityScope != "" {
		visibility = domain.VisibilityScope(req.VisibilityScope)
	}

	var condition *domain.ListingCondition
	if req.Condition != nil {
		c := domain.ListingCondition(*req.Condition)
		condition = &c
	}

	now := time.Now()
	listing := domain.Listing{
		ListingID:         uuid.NewString(),
		TenantID:          tenantID,
		CategoryID:        req.CategoryID,
		Title:             req.Title,
		Description:       req.Description,
		Status:            domain.ListingDraft,
		IsAvailable:       req.AvailableQuantity > 0,
		PricingType:       pricingType,
		Price:             req.Price,
		Condition:         condition,
		AvailableQuantity: req.AvailableQuantity,
		VisibilityScope:   visibility,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.listingRepo.SaveListing(ctx, listing); err != nil {
		s.LogError(ctx, err, "Failed to save listing",
			slog.String("listing_id", listing.ListingID))
		return nil, err
	}

	s.LogInfo(ctx, "Listing created successfully",
		slog.String("listing_id", listing.ListingID),
		slog.String("tenant_id", tenantID))
	return &listing, nil
}

// GetListingByID retrieves a listing. Tenant members only.
func (s *listingService) GetListingByID(ctx context.Context, tenantID, listingID string, requestingUserID string) (*domain.Listing, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, tenantID, domain.RoleResident); err != nil {
		return nil, err
	}

	listing, err := s.listingRepo.FindListingByID(ctx, tenantID, listingID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find listing by ID",
				slog.String("listing_id", listingID))
		}
		return nil, err
	}
	return listing, nil
}

// ListListings retrieves a page of a tenant's listings. Tenant members only.
func (s *listingService) ListListings(ctx context.Context, tenantID string, params dto.ListListingsParams, requestingUserID string) (*dto.ListListingsResponse, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, tenantID, domain.RoleResident); err != nil {
		return nil, err
	}

	repoParams := portsrepo.ListListingsParams{
		CategoryID: params.CategoryID,
		Archived:   params.Archived,
		Limit:      params.Limit,
		NextToken:  params.NextToken,
	}
	if params.Status != nil {
		status := domain.ListingStatus(*params.Status)
		repoParams.Status = &status
	}

	listings, nextToken, err := s.listingRepo.ListListingsByTenant(ctx, tenantID, repoParams)
	if err != nil {
		s.LogError(ctx, err, "Failed to list listings",
			slog.String("tenant_id", tenantID))
		return nil, err
	}

	resp := dto.ToListListingsResponse(listings, nextToken)
	return &resp, nil
}

// ListMyListings retrieves the requesting user's own listings.
func (s *listingService) ListMyListings(ctx context.Context, tenantID, requestingUserID string) ([]domain.Listing, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, tenantID, domain.RoleResident); err != nil {
		return nil, err
	}

	listings, err := s.listingRepo.ListListingsByCreator(ctx, tenantID, requestingUserID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list listings for creator",
			slog.String("user_id", requestingUserID))
		return nil, err
	}
	if listings == nil {
		return []domain.Listing{}, nil
	}
	return listings, nil
}

// UpdateListing updates mutable fields of a listing. Owner only.
func (s *listingService) UpdateListing(ctx context.Context, tenantID, listingID string, req dto.UpdateListingRequest, requestingUserID string) (*domain.Listing, error) {
	listing, err := s.ownedListing(ctx, tenantID, listingID, requestingUserID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.PricingType != nil {
		listing.PricingType = domain.PricingType(*req.PricingType)
	}
	if req.Price != nil {
		listing.Price = req.Price
	}
	if req.Condition != nil {
		c := domain.ListingCondition(*req.Condition)
		listing.Condition = &c
	}
	if req.AvailableQuantity != nil {
		listing.AvailableQuantity = *req.AvailableQuantity
		listing.IsAvailable = *req.AvailableQuantity > 0
	}
	if req.VisibilityScope != nil {
		listing.VisibilityScope = domain.VisibilityScope(*req.VisibilityScope)
	}
	if listing.PricingType != domain.PricingFree && listing.Price == nil {
		return nil, fmt.Errorf("%w: price is required for pricing type %s", apperrors.ErrValidation, listing.PricingType)
	}
	listing.LastUpdatedAt = time.Now()
	listing.LastUpdatedBy = requestingUserID

	if err := s.listingRepo.UpdateListing(ctx, *listing); err != nil {
		s.LogError(ctx, err, "Failed to update listing",
			slog.String("listing_id", listingID))
		return nil, err
	}

	s.LogInfo(ctx, "Listing updated successfully",
		slog.String("listing_id", listingID))
	return listing, nil
}

// PublishListing moves a draft or paused listing to published. Owner only.
func (s *listingService) PublishListing(ctx context.Context, tenantID, listingID, requestingUserID string) error {
	listing, err := s.ownedListing(ctx, tenantID, listingID, requestingUserID)
	if err != nil {
		return err
	}

	if listing.Status != domain.ListingDraft && listing.Status != domain.ListingPaused {
		return fmt.Errorf("%w: listing %s cannot be published from %s", apperrors.ErrInvalidState, listingID, listing.Status)
	}

	if err := s.listingRepo.UpdateListingStatus(ctx, listingID, listing.Status, domain.ListingPublished, requestingUserID, time.Now()); err != nil {
		return err
	}

	s.LogInfo(ctx, "Listing published", slog.String("listing_id", listingID))
	return nil
}

// PauseListing moves a published listing to paused. Owner only.
func (s *listingService) PauseListing(ctx context.Context, tenantID, listingID, requestingUserID string) error {
	if _, err := s.ownedListing(ctx, tenantID, listingID, requestingUserID); err != nil {
		return err
	}

	if err := s.listingRepo.UpdateListingStatus(ctx, listingID, domain.ListingPublished, domain.ListingPaused, requestingUserID, time.Now()); err != nil {
		return err
	}

	s.LogInfo(ctx, "Listing paused", slog.String("listing_id", listingID))
	return nil
}

// CancelListing cancels a listing with a reason. Owner only.
func (s *listingService) CancelListing(ctx context.Context, tenantID, listingID string, req dto.CancelListingRequest, requestingUserID string) error {
	listing, err := s.ownedListing(ctx, tenantID, listingID, requestingUserID)
	if err != nil {
		return err
	}

	if listing.Status == domain.ListingCancelled {
		return fmt.Errorf("%w: listing %s is already cancelled", apperrors.ErrInvalidState, listingID)
	}

	if err := s.listingRepo.CancelListing(ctx, listingID, listing.Status, req.Reason, requestingUserID, time.Now()); err != nil {
		return err
	}

	s.LogInfo(ctx, "Listing cancelled", slog.String("listing_id", listingID))
	return nil
}

// ArchiveListing moves a listing into the archive. Owner or tenant admin.
func (s *listingService) ArchiveListing(ctx context.Context, tenantID, listingID, requestingUserID string) error {
	listing, err := s.ownedOrAdminListing(ctx, tenantID, listingID, requestingUserID)
	if err != nil {
		return err
	}
	if listing.IsArchived() {
		return fmt.Errorf("%w: listing %s is already archived", apperrors.ErrInvalidState, listingID)
	}

	now := time.Now()
	if err := s.listingRepo.SetArchived(ctx, listingID, &requestingUserID, &now); err != nil {
		s.LogError(ctx, err, "Failed to archive listing",
			slog.String("listing_id", listingID))
		return err
	}

	s.LogInfo(ctx, "Listing archived", slog.String("listing_id", listingID))
	return nil
}

// UnarchiveListing restores a listing from the archive. Owner or tenant admin.
func (s *listingService) UnarchiveListing(ctx context.Context, tenantID, listingID, requestingUserID string) error {
	listing, err := s.ownedOrAdminListing(ctx, tenantID, listingID, requestingUserID)
	if err != nil {
		return err
	}
	if !listing.IsArchived() {
		return fmt.Errorf("%w: listing %s is not archived", apperrors.ErrInvalidState, listingID)
	}

	if err := s.listingRepo.SetArchived(ctx, listingID, nil, nil); err != nil {
		s.LogError(ctx, err, "Failed to unarchive listing",
			slog.String("listing_id", listingID))
		return err
	}

	s.LogInfo(ctx, "Listing unarchived", slog.String("listing_id", listingID))
	return nil
}

// FlagListing files a resident's report against a listing.
func (s *listingService) FlagListing(ctx context.Context, tenantID, listingID string, req dto.FlagListingRequest, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, tenantID, domain.RoleResident); err != nil {
		return err
	}

	listing, err := s.listingRepo.FindListingByID(ctx, tenantID, listingID)
	if err != nil {
		return err
	}
	if listing.LenderID() == requestingUserID {
		return fmt.Errorf("%w: cannot flag your own listing", apperrors.ErrValidation)
	}

	flag := domain.Flag{
		FlagID:    uuid.NewString(),
		TenantID:  tenantID,
		ListingID: listingID,
		FlaggedBy: requestingUserID,
		Reason:    req.Reason,
		CreatedAt: time.Now(),
	}

	if err := s.listingRepo.SaveFlag(ctx, flag); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save flag",
				slog.String("listing_id", listingID))
		}
		return err
	}

	s.LogInfo(ctx, "Listing flagged",
		slog.String("listing_id", listingID),
		slog.String("flagged_by", requestingUserID))
	return nil
}

// GetFlagCount returns the number of flags against a listing. Admins only.
func (s *listingService) GetFlagCount(ctx context.Context, tenantID, listingID, requestingUserID string) (int, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, tenantID, domain.RoleAdmin); err != nil {
		return 0, err
	}

	if _, err := s.listingRepo.FindListingByID(ctx, tenantID, listingID); err != nil {
		return 0, err
	}

	return s.listingRepo.CountFlags(ctx, listingID)
}

// ReserveQuantity decrements the listing's available quantity.
func (s *listingService) ReserveQuantity(ctx context.Context, tenantID, listingID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}
	// Confirm tenant scope before touching the row.
	if _, err := s.listingRepo.FindListingByID(ctx, tenantID, listingID); err != nil {
		return err
	}
	return s.listingRepo.AdjustAvailableQuantity(ctx, listingID, -quantity)
}

// ReleaseQuantity returns previously reserved quantity to the listing.
func (s *listingService) ReleaseQuantity(ctx context.Context, tenantID, listingID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}
	if _, err := s.listingRepo.FindListingByID(ctx, tenantID, listingID); err != nil {
		return err
	}
	return s.listingRepo.AdjustAvailableQuantity(ctx, listingID, quantity)
}

// ownedListing fetches the listing and requires requestingUserID to be its
// creator.
func (s *listingService) ownedListing(ctx context.Context, tenantID, listingID, requestingUserID string) (*domain.Listing, error) {
	listing, err := s.listingRepo.FindListingByID(ctx, tenantID, listingID)
	if err != nil {
		return nil, err
	}
	if listing.LenderID() != requestingUserID {
		return nil, apperrors.ErrForbidden
	}
	return listing, nil
}

// ownedOrAdminListing fetches the listing and requires requestingUserID to be
// its creator or a tenant admin.
func (s *listingService) ownedOrAdminListing(ctx context.Context, tenantID, listingID, requestingUserID string) (*domain.Listing, error) {
	listing, err := s.listingRepo.FindListingByID(ctx, tenantID, listingID)
	if err != nil {
		return nil, err
	}
	if listing.LenderID() == requestingUserID {
		return listing, nil
	}
	if err := s.AuthorizeUser(ctx, requestingUserID, tenantID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return listing, nil
}
