package models

import "time"

// Transaction represents a borrow/lend exchange row. Rows are append-mostly:
// status and the stage-specific columns change, nothing is ever deleted.
type Transaction struct {
	TransactionID string `db:"transaction_id"`
	TenantID      string `db:"tenant_id"`
	ListingID     string `db:"listing_id"`
	BorrowerID    string `db:"borrower_id"`
	LenderID      string `db:"lender_id"`

	Quantity int    `db:"quantity"`
	Status   string `db:"status"`

	ProposedPickupDate  *time.Time `db:"proposed_pickup_date"`
	ProposedReturnDate  *time.Time `db:"proposed_return_date"`
	ConfirmedPickupDate *time.Time `db:"confirmed_pickup_date"`
	ExpectedReturnDate  *time.Time `db:"expected_return_date"`
	ActualPickupDate    *time.Time `db:"actual_pickup_date"`
	ActualReturnDate    *time.Time `db:"actual_return_date"`

	BorrowerMessage *string `db:"borrower_message"`
	LenderMessage   *string `db:"lender_message"`
	RejectionReason *string `db:"rejection_reason"`

	ExtensionRequested bool       `db:"extension_requested"`
	ExtensionNewDate   *time.Time `db:"extension_new_date"`
	ExtensionMessage   *string    `db:"extension_message"`

	ReturnCondition      *string `db:"return_condition"`
	ReturnNotes          *string `db:"return_notes"`
	ReturnDamagePhotoURL *string `db:"return_damage_photo_url"`

	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	ConfirmedAt *time.Time `db:"confirmed_at"`
	RejectedAt  *time.Time `db:"rejected_at"`
	CompletedAt *time.Time `db:"completed_at"`
}
