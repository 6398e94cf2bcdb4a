package domain

import "time"

// NotificationType enumerates the exchange events a notification can carry.
type NotificationType string

const (
	NotifyExchangeRequest    NotificationType = "exchange_request"
	NotifyExchangeConfirmed  NotificationType = "exchange_confirmed"
	NotifyExchangeRejected   NotificationType = "exchange_rejected"
	NotifyExchangePickedUp   NotificationType = "exchange_picked_up"
	NotifyExchangeReturned   NotificationType = "exchange_returned"
	NotifyExchangeCompleted  NotificationType = "exchange_completed"
	NotifyExchangeCancelled  NotificationType = "exchange_cancelled"
	NotifyExchangeReminder   NotificationType = "exchange_reminder"
	NotifyExchangeOverdue    NotificationType = "exchange_overdue"
	NotifyExtensionRequested NotificationType = "exchange_extension_requested"
	NotifyExtensionAnswered  NotificationType = "exchange_extension_answered"
)

// Notification is a best-effort message to a single recipient about an
// exchange event. Delivery failures never roll back the state transition
// that produced them.
type Notification struct {
	NotificationID string           `json:"notificationID"`
	TenantID       string           `json:"tenantID"`
	RecipientID    string           `json:"recipientID"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	ActorID        *string          `json:"actorID,omitempty"`
	TransactionID  *string          `json:"transactionID,omitempty"`
	ListingID      *string          `json:"listingID,omitempty"`
	ActionURL      *string          `json:"actionURL,omitempty"`
	IsRead         bool             `json:"isRead"`
	ReadAt         *time.Time       `json:"readAt,omitempty"`
	IsArchived     bool             `json:"isArchived"`
	CreatedAt      time.Time        `json:"createdAt"`
}
