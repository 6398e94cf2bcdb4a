package models

import "time"

// Notification represents a per-recipient message row.
type Notification struct {
	NotificationID string     `db:"notification_id"`
	TenantID       string     `db:"tenant_id"`
	RecipientID    string     `db:"recipient_id"`
	Type           string     `db:"type"`
	Title          string     `db:"title"`
	Message        string     `db:"message"`
	ActorID        *string    `db:"actor_id"`
	TransactionID  *string    `db:"transaction_id"`
	ListingID      *string    `db:"listing_id"`
	ActionURL      *string    `db:"action_url"`
	IsRead         bool       `db:"is_read"`
	ReadAt         *time.Time `db:"read_at"`
	IsArchived     bool       `db:"is_archived"`
	CreatedAt      time.Time  `db:"created_at"`
}
