package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/ecovilla/exchange_backend/internal/core/ports/services"
	"github.com/ecovilla/exchange_backend/internal/middleware"
	"github.com/ecovilla/exchange_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// maintenanceHandler handles externally triggered housekeeping requests.
type maintenanceHandler struct {
	maintenanceService portssvc.MaintenanceSvcFacade
}

// registerMaintenanceRoutes registers housekeeping routes guarded by the
// shared maintenance secret.
func registerMaintenanceRoutes(r *gin.Engine, cfg *config.Config, maintenanceService portssvc.MaintenanceSvcFacade) {
	h := &maintenanceHandler{maintenanceService: maintenanceService}

	maintenance := r.Group("/api/v1/maintenance", middleware.MaintenanceAuthMiddleware(cfg.MaintenanceSecret))
	{
		maintenance.POST("/return-date-check", h.runReturnDateCheck)
	}
}

// runReturnDateCheck godoc
// @Summary Run return-date sweep
// @Description Scans every borrowed item awaiting return and sends due-soon reminders and overdue notices. Called by an external scheduler.
// @Tags maintenance
// @Produce json
// @Success 200 {object} dto.ReturnDateCheckResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /maintenance/return-date-check [post]
func (h *maintenanceHandler) runReturnDateCheck(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	result, err := h.maintenanceService.RunReturnDateCheck(c.Request.Context())
	if err != nil {
		logger.Error("Return date check failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Return date check failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}
