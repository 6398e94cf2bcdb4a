package services

import (
	"context"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
	"github.com/ecovilla/exchange_backend/internal/dto"
)

// ListingInventorySvc is the narrow surface the transaction engine uses to
// reserve and release listing quantity. Both operations are atomic
// conditional updates at the persistence layer, never read-modify-write.
type ListingInventorySvc interface {
	// ReserveQuantity decrements the listing's available quantity. Returns
	// apperrors.ErrInsufficientInventory when availability cannot cover it.
	ReserveQuantity(ctx context.Context, tenantID, listingID string, quantity int) error

	// ReleaseQuantity returns previously reserved quantity to the listing.
	ReleaseQuantity(ctx context.Context, tenantID, listingID string, quantity int) error
}

// ListingReaderSvc defines read operations for listings
type ListingReaderSvc interface {
	// GetListingByID retrieves a listing by ID within a tenant.
	GetListingByID(ctx context.Context, tenantID, listingID string, requestingUserID string) (*domain.Listing, error)

	// ListListings retrieves a page of a tenant's listings.
	ListListings(ctx context.Context, tenantID string, params dto.ListListingsParams, requestingUserID string) (*dto.ListListingsResponse, error)

	// ListMyListings retrieves the requesting user's own listings.
	ListMyListings(ctx context.Context, tenantID, requestingUserID string) ([]domain.Listing, error)

	// GetFlagCount returns the number of flags against a listing. Admins only.
	GetFlagCount(ctx context.Context, tenantID, listingID, requestingUserID string) (int, error)
}

// ListingWriterSvc defines write operations for listings
type ListingWriterSvc interface {
	// CreateListing persists a new draft listing owned by the creator.
	CreateListing(ctx context.Context, tenantID string, req dto.CreateListingRequest, creatorUserID string) (*domain.Listing, error)

	// UpdateListing updates mutable fields of a listing. Owner only.
	UpdateListing(ctx context.Context, tenantID, listingID string, req dto.UpdateListingRequest, requestingUserID string) (*domain.Listing, error)

	// PublishListing moves a draft or paused listing to published. Owner only.
	PublishListing(ctx context.Context, tenantID, listingID, requestingUserID string) error

	// PauseListing moves a published listing to paused. Owner only.
	PauseListing(ctx context.Context, tenantID, listingID, requestingUserID string) error

	// CancelListing cancels a listing with a reason. Owner only.
	CancelListing(ctx context.Context, tenantID, listingID string, req dto.CancelListingRequest, requestingUserID string) error

	// ArchiveListing moves a listing into the archive. Owner or tenant admin.
	ArchiveListing(ctx context.Context, tenantID, listingID, requestingUserID string) error

	// UnarchiveListing restores a listing from the archive. Owner or tenant admin.
	UnarchiveListing(ctx context.Context, tenantID, listingID, requestingUserID string) error

	// FlagListing files a resident's report against a listing.
	FlagListing(ctx context.Context, tenantID, listingID string, req dto.FlagListingRequest, requestingUserID string) error
}

// ListingSvcFacade combines all listing-related service interfaces
type ListingSvcFacade interface {
	ListingInventorySvc
	ListingReaderSvc
	ListingWriterSvc
}
