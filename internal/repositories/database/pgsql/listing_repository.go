package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecovilla/exchange_backend/internal/apperrors"
	"github.com/ecovilla/exchange_backend/internal/core/domain"
	portsrepo "github.com/ecovilla/exchange_backend/internal/core/ports/repositories"
	"github.com/ecovilla/exchange_backend/internal/models"
	"github.com/ecovilla/exchange_backend/internal/utils/mapping"
	"github.com/ecovilla/exchange_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const listingColumns = `listing_id, tenant_id, category_id, title, description, status, is_available, pricing_type, price, condition, available_quantity, visibility_scope, is_flagged, flagged_at, cancelled_at, cancellation_reason, archived_at, archived_by, published_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxListingRepository struct {
	pool *pgxpool.Pool
}

// newPgxListingRepository creates a new repository for listing data.
func newPgxListingRepository(pool *pgxpool.Pool) portsrepo.ListingRepositoryFacade {
	return &PgxListingRepository{pool: pool}
}

// Ensure PgxListingRepository implements portsrepo.ListingRepositoryFacade
var _ portsrepo.ListingRepositoryFacade = (*PgxListingRepository)(nil)

func scanListing(row pgx.Row) (*models.Listing, error) {
	var m models.Listing
	err := row.Scan(
		&m.ListingID,
		&m.TenantID,
		&m.CategoryID,
		&m.Title,
		&m.Description,
		&m.Status,
		&m.IsAvailable,
		&m.PricingType,
		&m.Price,
		&m.Condition,
		&m.AvailableQuantity,
		&m.VisibilityScope,
		&m.IsFlagged,
		&m.FlaggedAt,
		&m.CancelledAt,
		&m.CancellationReason,
		&m.ArchivedAt,
		&m.ArchivedBy,
		&m.PublishedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveListing inserts a new listing.
func (r *PgxListingRepository) SaveListing(ctx context.Context, listing domain.Listing) error {
	m := mapping.ToModelListing(listing)

	query := `
		INSERT INTO listings (listing_id, tenant_id, category_id, title, description, status, is_available, pricing_type, price, condition, available_quantity, visibility_scope, published_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.pool.Exec(ctx, query,
		m.ListingID,
		m.TenantID,
		m.CategoryID,
		m.Title,
		m.Description,
		m.Status,
		m.IsAvailable,
		m.PricingType,
		m.Price,
		m.Condition,
		m.AvailableQuantity,
		m.VisibilityScope,
		m.PublishedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: listing with ID %s already exists", apperrors.ErrDuplicate, m.ListingID)
		}
		return fmt.Errorf("failed to save listing %s: %w", m.ListingID, err)
	}
	return nil
}

// FindListingByID retrieves a listing by ID within a tenant.
func (r *PgxListingRepository) FindListingByID(ctx context.Context, tenantID, listingID string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE listing_id = $1 AND tenant_id = $2;`

	m, err := scanListing(r.pool.QueryRow(ctx, query, listingID, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find listing by ID %s: %w", listingID, err)
	}

	listing := mapping.ToDomainListing(*m)
	return &listing, nil
}

// ListListingsByTenant retrieves a page of listings for a tenant, newest
// first, using keyset pagination on (created_at, listing_id).
func (r *PgxListingRepository) ListListingsByTenant(ctx context.Context, tenantID string, params portsrepo.ListListingsParams) ([]domain.Listing, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + listingColumns + ` FROM listings WHERE tenant_id = $1`
	args := []any{tenantID}

	if params.Archived {
		query += ` AND archived_at IS NOT NULL`
	} else {
		query += ` AND archived_at IS NULL`
	}
	if params.CategoryID != nil {
		args = append(args, *params.CategoryID)
		query += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}
	if params.Status != nil {
		args = append(args, string(*params.Status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if params.NextToken != nil {
		createdAt, listingID, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		args = append(args, createdAt, listingID)
		query += fmt.Sprintf(` AND (created_at, listing_id) < ($%d, $%d)`, len(args)-1, len(args))
	}

	// Fetch one extra row to know whether another page exists.
	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY created_at DESC, listing_id DESC LIMIT $%d;`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query listings for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		m, err := scanListing(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		listings = append(listings, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating listing rows: %w", err)
	}

	var nextToken *string
	if len(listings) > limit {
		listings = listings[:limit]
		last := listings[len(listings)-1]
		token := pagination.EncodeToken(last.CreatedAt, last.ListingID)
		nextToken = &token
	}

	return mapping.ToDomainListingSlice(listings), nextToken, nil
}

// ListListingsByCreator retrieves all non-archived listings created by a user.
func (r *PgxListingRepository) ListListingsByCreator(ctx context.Context, tenantID, creatorID string) ([]domain.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE tenant_id = $1 AND created_by = $2 AND archived_at IS NULL
		ORDER BY created_at DESC;
	`
	rows, err := r.pool.Query(ctx, query, tenantID, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings for creator %s: %w", creatorID, err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		m, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		listings = append(listings, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing rows: %w", err)
	}

	return mapping.ToDomainListingSlice(listings), nil
}

// UpdateListing updates the mutable fields of a listing.
func (r *PgxListingRepository) UpdateListing(ctx context.Context, listing domain.Listing) error {
	m := mapping.ToModelListing(listing)

	query := `
		UPDATE listings
		SET title = $2, description = $3, category_id = $4, pricing_type = $5, price = $6, condition = $7, available_quantity = $8, visibility_scope = $9, is_available = $10, last_updated_at = $11, last_updated_by = $12
		WHERE listing_id = $1 AND archived_at IS NULL;
	`
	tag, err := r.pool.Exec(ctx, query,
		m.ListingID,
		m.Title,
		m.Description,
		m.CategoryID,
		m.PricingType,
		m.Price,
		m.Condition,
		m.AvailableQuantity,
		m.VisibilityScope,
		m.IsAvailable,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update listing %s: %w", m.ListingID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateListingStatus flips the listing status only when the row still holds
// the expected status. Zero rows affected means a concurrent writer got there
// first or the caller's view was stale; both surface as ErrInvalidState.
func (r *PgxListingRepository) UpdateListingStatus(ctx context.Context, listingID string, expected, next domain.ListingStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE listings
		SET status = $3,
		    published_at = CASE WHEN $3 = 'published' AND published_at IS NULL THEN $5 ELSE published_at END,
		    cancelled_at = CASE WHEN $3 = 'cancelled' THEN $5 ELSE cancelled_at END,
		    last_updated_at = $5,
		    last_updated_by = $4
		WHERE listing_id = $1 AND status = $2 AND archived_at IS NULL;
	`
	tag, err := r.pool.Exec(ctx, query, listingID, string(expected), string(next), updatedBy, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update status of listing %s: %w", listingID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: listing %s is not %s", apperrors.ErrInvalidState, listingID, expected)
	}
	return nil
}

// CancelListing moves the listing to cancelled with a reason, guarded on the
// expected current status.
func (r *PgxListingRepository) CancelListing(ctx context.Context, listingID string, expected domain.ListingStatus, reason, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE listings
		SET status = 'cancelled', cancelled_at = $5, cancellation_reason = $3, last_updated_at = $5, last_updated_by = $4
		WHERE listing_id = $1 AND status = $2 AND archived_at IS NULL;
	`
	tag, err := r.pool.Exec(ctx, query, listingID, string(expected), reason, updatedBy, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to cancel listing %s: %w", listingID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: listing %s is not %s", apperrors.ErrInvalidState, listingID, expected)
	}
	return nil
}

// AdjustAvailableQuantity atomically applies delta to the available quantity.
// The predicate refuses updates that would drive the quantity negative, so a
// reservation race cannot oversell the listing.
func (r *PgxListingRepository) AdjustAvailableQuantity(ctx context.Context, listingID string, delta int) error {
	query := `
		UPDATE listings
		SET available_quantity = available_quantity + $2,
		    is_available = (available_quantity + $2) > 0
		WHERE listing_id = $1 AND available_quantity + $2 >= 0;
	`
	tag, err := r.pool.Exec(ctx, query, listingID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust quantity of listing %s: %w", listingID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: listing %s cannot reserve %d", apperrors.ErrInsufficientInventory, listingID, -delta)
	}
	return nil
}

// SetArchived sets or clears the archive marker on a listing.
func (r *PgxListingRepository) SetArchived(ctx context.Context, listingID string, archivedBy *string, archivedAt *time.Time) error {
	query := `
		UPDATE listings
		SET archived_at = $2, archived_by = $3
		WHERE listing_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, listingID, archivedAt, archivedBy)
	if err != nil {
		return fmt.Errorf("failed to archive listing %s: %w", listingID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SaveFlag records a flag against a listing and marks the listing flagged,
// in one transaction.
func (r *PgxListingRepository) SaveFlag(ctx context.Context, flag domain.Flag) error {
	m := mapping.ToModelFlag(flag)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin flag insert: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	insertQuery := `
		INSERT INTO listing_flags (flag_id, tenant_id, listing_id, flagged_by, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	if _, err := tx.Exec(ctx, insertQuery, m.FlagID, m.TenantID, m.ListingID, m.FlaggedBy, m.Reason, m.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: user %s already flagged listing %s", apperrors.ErrDuplicate, m.FlaggedBy, m.ListingID)
		}
		return fmt.Errorf("failed to save flag for listing %s: %w", m.ListingID, err)
	}

	markQuery := `
		UPDATE listings
		SET is_flagged = TRUE, flagged_at = COALESCE(flagged_at, $2)
		WHERE listing_id = $1;
	`
	if _, err := tx.Exec(ctx, markQuery, m.ListingID, m.CreatedAt); err != nil {
		return fmt.Errorf("failed to mark listing %s flagged: %w", m.ListingID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit flag insert: %w", err)
	}
	return nil
}

// CountFlags returns the number of flags filed against a listing.
func (r *PgxListingRepository) CountFlags(ctx context.Context, listingID string) (int, error) {
	query := `SELECT COUNT(*) FROM listing_flags WHERE listing_id = $1;`

	var count int
	if err := r.pool.QueryRow(ctx, query, listingID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count flags for listing %s: %w", listingID, err)
	}
	return count, nil
}
