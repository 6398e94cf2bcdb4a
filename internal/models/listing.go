package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing represents an exchange listing row.
type Listing struct {
	ListingID  string `db:"listing_id"`
	TenantID   string `db:"tenant_id"`
	CategoryID string `db:"category_id"`

	Title       string `db:"title"`
	Description string `db:"description"`
	Status      string `db:"status"`
	IsAvailable bool   `db:"is_available"`

	PricingType string           `db:"pricing_type"`
	Price       *decimal.Decimal `db:"price"`

	Condition         *string `db:"condition"`
	AvailableQuantity int     `db:"available_quantity"`
	VisibilityScope   string  `db:"visibility_scope"`

	IsFlagged bool       `db:"is_flagged"`
	FlaggedAt *time.Time `db:"flagged_at"`

	CancelledAt        *time.Time `db:"cancelled_at"`
	CancellationReason *string    `db:"cancellation_reason"`

	ArchivedAt *time.Time `db:"archived_at"`
	ArchivedBy *string    `db:"archived_by"`

	PublishedAt *time.Time `db:"published_at"`
	AuditFields
}

// Flag records a resident's report against a listing.
type Flag struct {
	FlagID    string    `db:"flag_id"`
	TenantID  string    `db:"tenant_id"`
	ListingID string    `db:"listing_id"`
	FlaggedBy string    `db:"flagged_by"`
	Reason    string    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}
