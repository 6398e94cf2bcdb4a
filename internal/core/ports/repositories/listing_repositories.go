package repositories

import (
	"context"
	"time"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
)

// ListListingsParams narrows a listing listing query.
type ListListingsParams struct {
	CategoryID *string
	Status     *domain.ListingStatus
	Archived   bool
	Limit      int
	NextToken  *string
}

// ListingReader defines read operations for exchange listings
type ListingReader interface {
	// FindListingByID retrieves a listing by ID within a tenant.
	FindListingByID(ctx context.Context, tenantID, listingID string) (*domain.Listing, error)

	// ListListingsByTenant retrieves a page of listings for a tenant, newest
	// first, using token-based pagination.
	ListListingsByTenant(ctx context.Context, tenantID string, params ListListingsParams) ([]domain.Listing, *string, error)

	// ListListingsByCreator retrieves all non-archived listings created by a user.
	ListListingsByCreator(ctx context.Context, tenantID, creatorID string) ([]domain.Listing, error)

	// CountFlags returns the number of flags filed against a listing.
	CountFlags(ctx context.Context, listingID string) (int, error)
}

// ListingWriter defines write operations for exchange listings
type ListingWriter interface {
	// SaveListing persists a new listing.
	SaveListing(ctx context.Context, listing domain.Listing) error

	// UpdateListing updates mutable listing fields (title, description,
	// pricing, condition, quantity, visibility).
	UpdateListing(ctx context.Context, listing domain.Listing) error

	// UpdateListingStatus flips the listing's publication status only when it
	// currently has the expected status. Returns apperrors.ErrInvalidState
	// when the guard matches no row.
	UpdateListingStatus(ctx context.Context, listingID string, expected, next domain.ListingStatus, updatedBy string, updatedAt time.Time) error

	// CancelListing moves the listing to cancelled with a reason, guarded on
	// the expected current status. Returns apperrors.ErrInvalidState when
	// the guard matches no row.
	CancelListing(ctx context.Context, listingID string, expected domain.ListingStatus, reason, updatedBy string, updatedAt time.Time) error

	// AdjustAvailableQuantity atomically applies delta to the listing's
	// available quantity, refusing to drive it negative. Returns
	// apperrors.ErrInsufficientInventory when the conditional update matches
	// no row.
	AdjustAvailableQuantity(ctx context.Context, listingID string, delta int) error

	// SetArchived sets or clears the archive marker on a listing.
	SetArchived(ctx context.Context, listingID string, archivedBy *string, archivedAt *time.Time) error

	// SaveFlag records a flag against a listing and marks it flagged.
	// Returns apperrors.ErrDuplicate when the user already flagged it.
	SaveFlag(ctx context.Context, flag domain.Flag) error
}

// ListingRepositoryFacade combines all listing-related repository interfaces
type ListingRepositoryFacade interface {
	ListingReader
	ListingWriter
}
