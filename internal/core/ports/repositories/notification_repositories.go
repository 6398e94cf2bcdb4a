package repositories

import (
	"context"
	"time"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
)

// NotificationFilters narrows a notification listing query.
type NotificationFilters struct {
	UnreadOnly      bool
	IncludeArchived bool
	Type            *domain.NotificationType
	Limit           int
	Offset          int
}

// NotificationReader defines read operations for notifications
type NotificationReader interface {
	// FindNotificationByID retrieves a notification by ID.
	FindNotificationByID(ctx context.Context, notificationID string) (*domain.Notification, error)

	// ListNotifications retrieves a recipient's notifications, newest first.
	ListNotifications(ctx context.Context, tenantID, recipientID string, filters NotificationFilters) ([]domain.Notification, error)

	// CountUnread returns the recipient's unread, unarchived notification count.
	CountUnread(ctx context.Context, tenantID, recipientID string) (int, error)

	// HasNotification reports whether a notification of the given type already
	// exists for the recipient and transaction. Used to send reminders once.
	HasNotification(ctx context.Context, transactionID, recipientID string, notifType domain.NotificationType) (bool, error)
}

// NotificationWriter defines write operations for notifications
type NotificationWriter interface {
	// SaveNotification persists a new notification.
	SaveNotification(ctx context.Context, notification domain.Notification) error

	// MarkRead marks a single notification as read.
	MarkRead(ctx context.Context, notificationID string, readAt time.Time) error

	// MarkAllRead marks all of a recipient's notifications in a tenant as read.
	MarkAllRead(ctx context.Context, tenantID, recipientID string, readAt time.Time) error

	// SetArchived sets the archived flag on a notification.
	SetArchived(ctx context.Context, notificationID string, archived bool) error
}

// NotificationRepositoryFacade combines all notification-related repository interfaces
type NotificationRepositoryFacade interface {
	NotificationReader
	NotificationWriter
}
