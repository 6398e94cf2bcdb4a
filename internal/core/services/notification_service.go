package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ecovilla/exchange_backend/internal/apperrors"
	"github.com/ecovilla/exchange_backend/internal/core/domain"
	portsrepo "github.com/ecovilla/exchange_backend/internal/core/ports/repositories"
	portssvc "github.com/ecovilla/exchange_backend/internal/core/ports/services"
	"github.com/ecovilla/exchange_backend/internal/dto"
	"github.com/google/uuid"
)

// notificationService implements the NotificationSvcFacade interface
type notificationService struct {
	BaseService
	notificationRepo portsrepo.NotificationRepositoryFacade
}

// NewNotificationService creates a new notification service with the provided
// dependencies
func NewNotificationService(notificationRepo portsrepo.NotificationRepositoryFacade) portssvc.NotificationSvcFacade {
	return &notificationService{notificationRepo: notificationRepo}
}

// Ensure notificationService implements the NotificationSvcFacade interface
var _ portssvc.NotificationSvcFacade = (*notificationService)(nil)

// Dispatch persists a notification for the event, best-effort. Failures are
// logged and swallowed; a missed notification must never roll back the state
// transition that produced it.
func (s *notificationService) Dispatch(ctx context.Context, event portssvc.ExchangeEvent) {
	notification := s.fromEvent(event)

	if err := s.notificationRepo.SaveNotification(ctx, notification); err != nil {
		s.LogError(ctx, err, "Failed to dispatch notification",
			slog.String("recipient_id", event.RecipientID),
			slog.String("type", string(event.Type)))
		return
	}

	s.LogDebug(ctx, "Notification dispatched",
		slog.String("notification_id", notification.NotificationID),
		slog.String("type", string(event.Type)))
}

// DispatchOnce persists a notification unless one of the same type already
// exists for the recipient and transaction. Returns whether a notification
// was sent.
func (s *notificationService) DispatchOnce(ctx context.Context, event portssvc.ExchangeEvent) bool {
	if event.TransactionID == nil {
		s.Dispatch(ctx, event)
		return true
	}

	exists, err := s.notificationRepo.HasNotification(ctx, *event.TransactionID, event.RecipientID, event.Type)
	if err != nil {
		s.LogError(ctx, err, "Failed to check notification dedup",
			slog.String("transaction_id", *event.TransactionID),
			slog.String("type", string(event.Type)))
		return false
	}
	if exists {
		return false
	}

	notification := s.fromEvent(event)
	if err := s.notificationRepo.SaveNotification(ctx, notification); err != nil {
		s.LogError(ctx, err, "Failed to dispatch notification",
			slog.String("recipient_id", event.RecipientID),
			slog.String("type", string(event.Type)))
		return false
	}
	return true
}

func (s *notificationService) fromEvent(event portssvc.ExchangeEvent) domain.Notification {
	return domain.Notification{
		NotificationID: uuid.NewString(),
		TenantID:       event.TenantID,
		RecipientID:    event.RecipientID,
		Type:           event.Type,
		Title:          event.Title,
		Message:        event.Message,
		ActorID:        event.ActorID,
		TransactionID:  event.TransactionID,
		ListingID:      event.ListingID,
		ActionURL:      event.ActionURL,
		CreatedAt:      time.Now(),
	}
}

// ListNotifications retrieves the user's notifications, newest first.
func (s *notificationService) ListNotifications(ctx context.Context, tenantID, userID string, params dto.ListNotificationsParams) ([]domain.Notification, error) {
	filters := portsrepo.NotificationFilters{
		UnreadOnly:      params.UnreadOnly,
		IncludeArchived: params.IncludeArchived,
		Limit:           params.Limit,
		Offset:          params.Offset,
	}
	if params.Type != nil {
		notifType := domain.NotificationType(*params.Type)
		filters.Type = &notifType
	}

	notifications, err := s.notificationRepo.ListNotifications(ctx, tenantID, userID, filters)
	if err != nil {
		s.LogError(ctx, err, "Failed to list notifications",
			slog.String("user_id", userID))
		return nil, err
	}
	if notifications == nil {
		return []domain.Notification{}, nil
	}
	return notifications, nil
}

// CountUnread returns the user's unread notification count.
func (s *notificationService) CountUnread(ctx context.Context, tenantID, userID string) (int, error) {
	count, err := s.notificationRepo.CountUnread(ctx, tenantID, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count unread notifications",
			slog.String("user_id", userID))
		return 0, err
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	notification, err := s.ownedNotification(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if notification.IsRead {
		return nil
	}
	return s.notificationRepo.MarkRead(ctx, notificationID, time.Now())
}

// MarkAllRead marks all of the user's notifications in a tenant as read.
func (s *notificationService) MarkAllRead(ctx context.Context, tenantID, userID string) error {
	if err := s.notificationRepo.MarkAllRead(ctx, tenantID, userID, time.Now()); err != nil {
		s.LogError(ctx, err, "Failed to mark all notifications read",
			slog.String("user_id", userID))
		return err
	}
	return nil
}

// ArchiveNotification archives one of the user's notifications.
func (s *notificationService) ArchiveNotification(ctx context.Context, notificationID, userID string) error {
	if _, err := s.ownedNotification(ctx, notificationID, userID); err != nil {
		return err
	}
	return s.notificationRepo.SetArchived(ctx, notificationID, true)
}

// ownedNotification fetches the notification and requires userID to be its
// recipient.
func (s *notificationService) ownedNotification(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	notification, err := s.notificationRepo.FindNotificationByID(ctx, notificationID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find notification",
				slog.String("notification_id", notificationID))
		}
		return nil, err
	}
	if notification.RecipientID != userID {
		return nil, apperrors.ErrForbidden
	}
	return notification, nil
}
