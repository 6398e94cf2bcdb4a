package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ecovilla/exchange_backend/internal/apperrors"
	portssvc "github.com/ecovilla/exchange_backend/internal/core/ports/services"
	"github.com/ecovilla/exchange_backend/internal/dto"
	"github.com/ecovilla/exchange_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// notificationHandler handles HTTP requests related to notifications.
type notificationHandler struct {
	notificationService portssvc.NotificationSvcFacade
}

// registerNotificationRoutes registers notification routes nested under a tenant.
func registerNotificationRoutes(rg *gin.RouterGroup, notificationService portssvc.NotificationSvcFacade) {
	h := &notificationHandler{notificationService: notificationService}

	notifications := rg.Group("/notifications")
	{
		notifications.GET("", h.listNotifications)
		notifications.GET("/unread-count", h.countUnread)
		notifications.POST("/read-all", h.markAllRead)
		notifications.POST("/:notification_id/read", h.markRead)
		notifications.POST("/:notification_id/archive", h.archiveNotification)
	}
}

// listNotifications godoc
// @Summary List notifications
// @Description Retrieves the caller's notifications in a tenant, newest first.
// @Tags notifications
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param unreadOnly query bool false "Only unread notifications"
// @Param includeArchived query bool false "Include archived notifications"
// @Param type query string false "Filter by notification type"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} dto.NotificationResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/notifications [get]
func (h *notificationHandler) listNotifications(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListNotificationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	notifications, err := h.notificationService.ListNotifications(c.Request.Context(), tenantID, userID, params)
	if err != nil {
		logger.Error("Failed to list notifications", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list notifications"})
		return
	}

	c.JSON(http.StatusOK, dto.ToNotificationResponses(notifications))
}

// countUnread godoc
// @Summary Count unread notifications
// @Description Returns the caller's unread notification count in a tenant.
// @Tags notifications
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Success 200 {object} dto.UnreadCountResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/notifications/unread-count [get]
func (h *notificationHandler) countUnread(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	count, err := h.notificationService.CountUnread(c.Request.Context(), tenantID, userID)
	if err != nil {
		logger.Error("Failed to count unread notifications", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to count notifications"})
		return
	}

	c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: count})
}

// markRead godoc
// @Summary Mark notification read
// @Description Marks one of the caller's notifications as read. Idempotent.
// @Tags notifications
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param notification_id path string true "Notification ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/notifications/{notification_id}/read [post]
func (h *notificationHandler) markRead(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	err := h.notificationService.MarkRead(c.Request.Context(), c.Param("notification_id"), userID)
	h.respondNotificationResult(c, err, "Failed to mark notification read")
}

// markAllRead godoc
// @Summary Mark all notifications read
// @Description Marks all of the caller's notifications in a tenant as read.
// @Tags notifications
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/notifications/read-all [post]
func (h *notificationHandler) markAllRead(c *gin.Context) {
	tenantID := c.Param("tenant_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	err := h.notificationService.MarkAllRead(c.Request.Context(), tenantID, userID)
	h.respondNotificationResult(c, err, "Failed to mark notifications read")
}

// archiveNotification godoc
// @Summary Archive notification
// @Description Archives one of the caller's notifications.
// @Tags notifications
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param notification_id path string true "Notification ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/notifications/{notification_id}/archive [post]
func (h *notificationHandler) archiveNotification(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	err := h.notificationService.ArchiveNotification(c.Request.Context(), c.Param("notification_id"), userID)
	h.respondNotificationResult(c, err, "Failed to archive notification")
}

func (h *notificationHandler) respondNotificationResult(c *gin.Context, err error, failureMsg string) {
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Notification not found"})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "This notification does not belong to you"})
		} else {
			middleware.GetLoggerFromCtx(c.Request.Context()).Error(failureMsg, slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: failureMsg})
		}
		return
	}
	c.Status(http.StatusNoContent)
}
