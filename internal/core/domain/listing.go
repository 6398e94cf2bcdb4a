package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListingStatus indicates the publication state of an exchange listing.
type ListingStatus string

const (
	ListingDraft     ListingStatus = "draft"
	ListingPublished ListingStatus = "published"
	ListingPaused    ListingStatus = "paused"
	ListingCancelled ListingStatus = "cancelled"
)

// PricingType indicates how a listing is priced.
type PricingType string

const (
	PricingFree           PricingType = "free"
	PricingFixed          PricingType = "fixed_price"
	PricingPayWhatYouWant PricingType = "pay_what_you_want"
)

// ListingCondition describes the physical state of an offered item.
type ListingCondition string

const (
	ConditionNew             ListingCondition = "new"
	ConditionSlightlyUsed    ListingCondition = "slightly_used"
	ConditionUsed            ListingCondition = "used"
	ConditionSlightlyDamaged ListingCondition = "slightly_damaged"
	ConditionMaintenance     ListingCondition = "maintenance"
)

// VisibilityScope restricts who can see a listing.
type VisibilityScope string

const (
	VisibilityCommunity    VisibilityScope = "community"
	VisibilityNeighborhood VisibilityScope = "neighborhood"
)

// Listing is an item or service offered for lending/borrowing within the
// exchange marketplace. The creator is the lender for every transaction on
// the listing.
type Listing struct {
	ListingID  string `json:"listingID"` // Primary Key (e.g., UUID)
	TenantID   string `json:"tenantID"`  // FK -> tenants.tenant_id
	CategoryID string `json:"categoryID"`

	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      ListingStatus `json:"status"`
	IsAvailable bool          `json:"isAvailable"`

	PricingType PricingType      `json:"pricingType"`
	Price       *decimal.Decimal `json:"price,omitempty"` // Set for fixed_price, suggested for pay_what_you_want

	Condition         *ListingCondition `json:"condition,omitempty"`
	AvailableQuantity int               `json:"availableQuantity"`
	VisibilityScope   VisibilityScope   `json:"visibilityScope"`

	IsFlagged bool       `json:"isFlagged"`
	FlaggedAt *time.Time `json:"flaggedAt,omitempty"`

	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`

	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
	ArchivedBy *string    `json:"archivedBy,omitempty"`

	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	AuditFields
}

// IsArchived reports whether the listing has been moved to the archive.
func (l *Listing) IsArchived() bool {
	return l.ArchivedAt != nil
}

// LenderID returns the owner of the listing. Kept as a method so callers
// read as intent rather than reaching for the audit field.
func (l *Listing) LenderID() string {
	return l.CreatedBy
}

// Flag records a resident's report against a listing.
type Flag struct {
	FlagID    string    `json:"flagID"`
	TenantID  string    `json:"tenantID"`
	ListingID string    `json:"listingID"`
	FlaggedBy string    `json:"flaggedBy"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}
