package dto

import (
	"time"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
)

// ListNotificationsParams defines query parameters for listing notifications.
type ListNotificationsParams struct {
	UnreadOnly      bool    `form:"unreadOnly,default=false"`
	IncludeArchived bool    `form:"includeArchived,default=false"`
	Type            *string `form:"type"`
	Limit           int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	Offset          int     `form:"offset,default=0" binding:"omitempty,min=0"`
}

// NotificationResponse defines the data returned for a notification.
type NotificationResponse struct {
	NotificationID string     `json:"notificationID"`
	Type           string     `json:"type"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	ActorID        *string    `json:"actorID,omitempty"`
	TransactionID  *string    `json:"transactionID,omitempty"`
	ListingID      *string    `json:"listingID,omitempty"`
	ActionURL      *string    `json:"actionURL,omitempty"`
	IsRead         bool       `json:"isRead"`
	ReadAt         *time.Time `json:"readAt,omitempty"`
	IsArchived     bool       `json:"isArchived"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// UnreadCountResponse wraps the unread notification count.
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// ToNotificationResponse converts a domain.Notification to NotificationResponse DTO.
func ToNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		NotificationID: n.NotificationID,
		Type:           string(n.Type),
		Title:          n.Title,
		Message:        n.Message,
		ActorID:        n.ActorID,
		TransactionID:  n.TransactionID,
		ListingID:      n.ListingID,
		ActionURL:      n.ActionURL,
		IsRead:         n.IsRead,
		ReadAt:         n.ReadAt,
		IsArchived:     n.IsArchived,
		CreatedAt:      n.CreatedAt,
	}
}

// ToNotificationResponses converts a slice of domain notifications to DTOs.
func ToNotificationResponses(notifications []domain.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, len(notifications))
	for i, notification := range notifications {
		responses[i] = ToNotificationResponse(&notification)
	}
	return responses
}
