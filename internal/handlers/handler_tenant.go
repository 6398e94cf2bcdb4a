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

// tenantHandler handles HTTP requests related to tenants (communities).
type tenantHandler struct {
	tenantService portssvc.TenantSvcFacade
}

// registerTenantRoutes registers routes related to tenants and their members.
// It also registers the tenant-scoped CATEGORY, LISTING, TRANSACTION and
// NOTIFICATION routes nested under a specific tenant.
func registerTenantRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := &tenantHandler{tenantService: services.Tenant}

	tenantsTopLevel := rg.Group("/tenants")
	{
		tenantsTopLevel.POST("", h.createTenant)
		tenantsTopLevel.GET("", h.listUserTenants) // List tenants the calling user belongs to
		tenantsTopLevel.GET("/by-slug/:slug", h.getTenantBySlug)
	}

	// Routes specific to a single tenant (identified by tenant_id)
	tenantSpecific := rg.Group("/tenants/:tenant_id")
	{
		tenantSpecific.GET("", h.getTenantByID)

		// Manage members within a tenant
		tenantMembers := tenantSpecific.Group("/members")
		{
			tenantMembers.GET("", h.listTenantMembers)
			tenantMembers.POST("", h.addMember)
		}

		// -- NESTED TENANT-SCOPED ROUTES --
		registerCategoryRoutes(tenantSpecific, services.Category)
		registerListingRoutes(tenantSpecific, services.Listing, services.Transaction)
		registerTransactionRoutes(tenantSpecific, services.Transaction)
		registerNotificationRoutes(tenantSpecific, services.Notification)
	}
}

// createTenant godoc
// @Summary Create a new tenant
// @Description Creates a new community tenant, makes the creator its admin and seeds the default exchange categories.
// @Tags tenants
// @Accept json
// @Produce json
// @Param tenant body dto.CreateTenantRequest true "Tenant details"
// @Success 201 {object} dto.TenantResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants [post]
func (h *tenantHandler) createTenant(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	tenant, err := h.tenantService.CreateTenant(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Tenant slug already taken", slog.String("slug", req.Slug))
			c.JSON(http.StatusConflict, ErrorResponse{Error: "A tenant with this slug already exists"})
		} else {
			logger.Error("Failed to create tenant", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create tenant"})
		}
		return
	}

	logger.Info("Tenant created successfully", slog.String("tenant_id", tenant.TenantID))
	c.JSON(http.StatusCreated, dto.ToTenantResponse(tenant))
}

// listUserTenants godoc
// @Summary List tenants for current user
// @Description Retrieves the tenants the authenticated user belongs to.
// @Tags tenants
// @Produce json
// @Success 200 {array} dto.TenantResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants [get]
func (h *tenantHandler) listUserTenants(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	tenants, err := h.tenantService.ListUserTenants(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list user tenants", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list tenants"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTenantResponses(tenants))
}

// getTenantByID godoc
// @Summary Get tenant
// @Description Retrieves a tenant by its ID.
// @Tags tenants
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Success 200 {object} dto.TenantResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id} [get]
func (h *tenantHandler) getTenantByID(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenant, err := h.tenantService.GetTenantByID(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Tenant not found"})
		} else {
			logger.Error("Failed to get tenant", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve tenant"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTenantResponse(tenant))
}

// getTenantBySlug godoc
// @Summary Get tenant by slug
// @Description Retrieves a tenant by its URL slug.
// @Tags tenants
// @Produce json
// @Param slug path string true "Tenant slug"
// @Success 200 {object} dto.TenantResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/by-slug/{slug} [get]
func (h *tenantHandler) getTenantBySlug(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenant, err := h.tenantService.GetTenantBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Tenant not found"})
		} else {
			logger.Error("Failed to get tenant by slug", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve tenant"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTenantResponse(tenant))
}

// listTenantMembers godoc
// @Summary List tenant members
// @Description Retrieves all members of a tenant. Members only.
// @Tags tenants
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Success 200 {array} dto.MemberResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/members [get]
func (h *tenantHandler) listTenantMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	members, err := h.tenantService.ListTenantMembers(c.Request.Context(), tenantID, requestingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "You are not a member of this tenant"})
		} else {
			logger.Error("Failed to list tenant members", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list members"})
		}
		return
	}

	responses := make([]dto.MemberResponse, len(members))
	for i, member := range members {
		responses[i] = dto.ToMemberResponse(&member)
	}
	c.JSON(http.StatusOK, responses)
}

// addMember godoc
// @Summary Add tenant member
// @Description Adds a user to a tenant with a role. Admins only.
// @Tags tenants
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param member body dto.AddMemberRequest true "Member details"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/members [post]
func (h *tenantHandler) addMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	addingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	if err := h.tenantService.AddMember(c.Request.Context(), tenantID, req, addingUserID); err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			logger.Warn("Add member forbidden", slog.String("tenant_id", tenantID))
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only tenant admins can add members"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Tenant or user not found"})
		} else if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "User is already a member of this tenant"})
		} else {
			logger.Error("Failed to add member", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to add member"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
