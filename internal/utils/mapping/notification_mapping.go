package mapping

import (
	"github.com/ecovilla/exchange_backend/internal/core/domain"
	"github.com/ecovilla/exchange_backend/internal/models"
)

// ToModelNotification converts a domain Notification to a model Notification
func ToModelNotification(d domain.Notification) models.Notification {
	return models.Notification{
		NotificationID: d.NotificationID,
		TenantID:       d.TenantID,
		RecipientID:    d.RecipientID,
		Type:           string(d.Type),
		Title:          d.Title,
		Message:        d.Message,
		ActorID:        d.ActorID,
		TransactionID:  d.TransactionID,
		ListingID:      d.ListingID,
		ActionURL:      d.ActionURL,
		IsRead:         d.IsRead,
		ReadAt:         d.ReadAt,
		IsArchived:     d.IsArchived,
		CreatedAt:      d.CreatedAt,
	}
}

// ToDomainNotification converts a model Notification to a domain Notification
func ToDomainNotification(m models.Notification) domain.Notification {
	return domain.Notification{
		NotificationID: m.NotificationID,
		TenantID:       m.TenantID,
		RecipientID:    m.RecipientID,
		Type:           domain.NotificationType(m.Type),
		Title:          m.Title,
		Message:        m.Message,
		ActorID:        m.ActorID,
		TransactionID:  m.TransactionID,
		ListingID:      m.ListingID,
		ActionURL:      m.ActionURL,
		IsRead:         m.IsRead,
		ReadAt:         m.ReadAt,
		IsArchived:     m.IsArchived,
		CreatedAt:      m.CreatedAt,
	}
}

// ToDomainNotificationSlice converts a slice of model Notifications to domain Notifications
func ToDomainNotificationSlice(ms []models.Notification) []domain.Notification {
	ds := make([]domain.Notification, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainNotification(m)
	}
	return ds
}
