package services

import (
	"context"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
	"github.com/ecovilla/exchange_backend/internal/dto"
)

// ExchangeEvent describes a lifecycle event the dispatcher turns into a
// notification for one recipient.
type ExchangeEvent struct {
	TenantID      string
	RecipientID   string
	Type          domain.NotificationType
	Title         string
	Message       string
	ActorID       *string
	TransactionID *string
	ListingID     *string
	ActionURL     *string
}

// NotificationDispatcherSvc is the fire-and-forget side of notifications.
// Dispatch failures are logged and swallowed; they must never roll back the
// state transition that produced the event.
type NotificationDispatcherSvc interface {
	// Dispatch persists a notification for the event, best-effort.
	Dispatch(ctx context.Context, event ExchangeEvent)

	// DispatchOnce persists a notification unless one of the same type
	// already exists for the recipient and transaction. Returns whether a
	// notification was sent.
	DispatchOnce(ctx context.Context, event ExchangeEvent) bool
}

// NotificationReaderSvc defines read operations for notifications
type NotificationReaderSvc interface {
	// ListNotifications retrieves the user's notifications, newest first.
	ListNotifications(ctx context.Context, tenantID, userID string, params dto.ListNotificationsParams) ([]domain.Notification, error)

	// CountUnread returns the user's unread notification count.
	CountUnread(ctx context.Context, tenantID, userID string) (int, error)
}

// NotificationWriterSvc defines write operations for notifications
type NotificationWriterSvc interface {
	// MarkRead marks one of the user's notifications as read.
	MarkRead(ctx context.Context, notificationID, userID string) error

	// MarkAllRead marks all of the user's notifications in a tenant as read.
	MarkAllRead(ctx context.Context, tenantID, userID string) error

	// ArchiveNotification archives one of the user's notifications.
	ArchiveNotification(ctx context.Context, notificationID, userID string) error
}

// NotificationSvcFacade combines all notification-related service interfaces
type NotificationSvcFacade interface {
	NotificationDispatcherSvc
	NotificationReaderSvc
	NotificationWriterSvc
}
