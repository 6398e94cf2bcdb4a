package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ecovilla/exchange_backend/internal/apperrors"
	portssvc "github.com/ecovilla/exchange_backend/internal/core/ports/services"
	"github.com/ecovilla/exchange_backend/internal/dto"
	"github.com/ecovilla/exchange_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// listingHandler handles HTTP requests related to listings.
type listingHandler struct {
	listingService     portssvc.ListingSvcFacade
	transactionService portssvc.TransactionSvcFacade
}

// registerListingRoutes registers listing routes nested under a tenant. The
// transaction service backs the listing-scoped exchange views (pending
// request, completed history).
func registerListingRoutes(rg *gin.RouterGroup, listingService portssvc.ListingSvcFacade, transactionService portssvc.TransactionSvcFacade) {
	h := &listingHandler{listingService: listingService, transactionService: transactionService}

	listings := rg.Group("/listings")
	{
		listings.GET("", h.listListings)
		listings.POST("", h.createListing)
		listings.GET("/mine", h.listMyListings)
	}

	listingSpecific := rg.Group("/listings/:listing_id")
	{
		listingSpecific.GET("", h.getListingByID)
		listingSpecific.PUT("", h.updateListing)
		listingSpecific.POST("/publish", h.publishListing)
		listingSpecific.POST("/pause", h.pauseListing)
		listingSpecific.POST("/cancel", h.cancelListing)
		listingSpecific.POST("/archive", h.archiveListing)
		listingSpecific.POST("/unarchive", h.unarchiveListing)
		listingSpecific.POST("/flags", h.flagListing)
		listingSpecific.GET("/flags/count", h.getFlagCount)
		listingSpecific.GET("/pending-request", h.getPendingRequest)
		listingSpecific.GET("/history", h.listListingHistory)
	}
}

// createListing godoc
// @Summary Create listing
// @Description Creates a new listing in draft status owned by the caller.
// @Tags listings
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param listing body dto.CreateListingRequest true "Listing details"
// @Success 201 {object} dto.ListingResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/listings [post]
func (h *listingHandler) createListing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	listing, err := h.listingService.CreateListing(c.Request.Context(), tenantID, req, creatorUserID)
	if err != nil {
		h.respondListingError(c, err, "Failed to create listing")
		return
	}

	logger.Info("Listing created successfully", slog.String("listing_id", listing.ListingID))
	c.JSON(http.StatusCreated, dto.ToListingResponse(listing))
}

// listListings godoc
// @Summary List listings
// @Description Retrieves a page of a tenant's listings, newest first.
// @Tags listings
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param categoryID query string false "Filter by category"
// @Param status query string false "Filter by status"
// @Param archived query bool false "Include only archived listings"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListListingsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/listings [get]
func (h *listingHandler) listListings(c *gin.Context) {
	tenantID := c.Param("tenant_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListListingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.listingService.ListListings(c.Request.Context(), tenantID, params, requestingUserID)
	if err != nil {
		h.respondListingError(c, err, "Failed to list listings")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// listMyListings godoc
// @Summary List own listings
// @Description Retrieves the caller's own listings in a tenant, including drafts.
// @Tags listings
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Success 200 {array} dto.ListingResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/listings/mine [get]
func (h *listingHandler) listMyListings(c *gin.Context) {
	tenantID := c.Param("tenant_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	listings, err := h.listingService.ListMyListings(c.Request.Context(), tenantID, requestingUserID)
	if err != nil {
		h.respondListingError(c, err, "Failed to list own listings")
		return
	}

	responses := make([]dto.ListingResponse, len(listings))
	for i, listing := range listings {
		responses[i] = dto.ToListingResponse(&listing)
	}
	c.JSON(http.StatusOK, responses)
}

// getListingByID godoc
// @Summary Get listing
// @Description Retrieves a listing by ID.
// @Tags listings
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param listing_id path string true "Listing ID"
// @Success 200 {object} dto.ListingResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/listings/{listing_id} [get]
func (h *listingHandler) getListingByID(c *gin.Context) {
	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	listing, err := h.listingService.GetListingByID(c.Request.Context(), c.Param("tenant_id"), c.Param("listing_id"), requestingUserID)
	if err != nil {
		h.respondListingError(c, err, "Failed to get listing")
		return
	}

	c.JSON(http.StatusOK, dto.ToListingResponse(listing))
}

// updateListing godoc
// @Summary Update listing
// @Description Updates mutable fields of a listing. Owner only.
// @Tags listings
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param listing_id path string true "Listing ID"
// @Param listing body dto.UpdateListingRequest true "Fields to update"
// @Success 200 {object} dto.ListingResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/listings/{listing_id} [put]
func (h *listingHandler) updateListing(c *gin.Context) {
	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	listing, err := h.listingService.UpdateListing(c.Request.Context(), c.Param("tenant_id"), c.Param("listing_id"), req, requestingUserID)
	if err != nil {
		h.respondListingError(c, err, "Failed to update listing")
		return
	}

	c.JSON(http.StatusOK, dto.ToListingResponse(listing))
}

// publishListing godoc
// @Summary Publish listing
// @Description Moves a draft or paused listing to published. Owner only.
// @Tags listings
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param listing_id path string true "Listing ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/listings/{listing_id}/publish [post]
func (h *listingHandler) publishListing(c *gin.Context) {
	h.lifecycleAction(c, h.listingService.PublishListing, "Failed to publish listing")
}

// pauseListing godoc
// @Summary Pause listing
// @Description Moves a published listing to paused. Owner only.
// @Tags listings
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param listing_id path string true "Listing ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/listings/{listing_id}/pause [post]
func (h *listingHandler) pauseListing(c *gin.Context) {
	h.lifecycleAction(c, h.listingService.PauseListing, "Failed to pause listing")
}

// archiveListing godoc
// @Summary Archive listing
// @Description Moves a listing into the archive. Owner or tenant admin.
// @Tags listings
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param listing_id path string true "Listing ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/listings/{listing_id}/archive [post]
func (h *listingHandler) archiveListing(c *gin.Context) {
	h.lifecycleAction(c, h.listingService.ArchiveListing, "Failed to archive listing")
}

// unarchiveListing godoc
// @Summary Unarchive listing
// @Description Restores a listing from the archive. Owner or tenant admin.
// @Tags listings
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param listing_id path string true "Listing ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/listings/{listing_id}/unarchive [post]
func (h *listingHandler) unarchiveListing(c *gin.Context) {
	h.lifecycleAction(c, h.listingService.UnarchiveListing, "Failed to unarchive listing")
}

// lifecycleAction runs one of the parameterless owner-gated listing
// transitions and maps the outcome to an HTTP response.
func (h *listingHandler) lifecycleAction(c *gin.Context, action func(ctx context.Context, tenantID, listingID, requestingUserID string) error, failureMsg string) {
	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := action(c.Request.Context(), c.Param("tenant_id"), c.Param("listing_id"), requestingUserID); err != nil {
		h.respondListingError(c, err, failureMsg)
		return
	}

	c.Status(http.StatusNoContent)
}

// cancelListing godoc
// @Summary Cancel listing
// @Description Cancels a listing with a reason. Owner only.
// @Tags listings
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param listing_id path string true "Listing ID"
// @Param cancellation body dto.CancelListingRequest true "Cancellation reason"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/listings/{listing_id}/cancel [post]
func (h *listingHandler) cancelListing(c *gin.Context) {
	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CancelListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	if err := h.listingService.CancelListing(c.Request.Context(), c.Param("tenant_id"), c.Param("listing_id"), req, requestingUserID); err != nil {
		h.respondListingError(c, err, "Failed to cancel listing")
		return
	}

	c.Status(http.StatusNoContent)
}

// flagListing godoc
// @Summary Flag listing
// @Description Files a report against a listing. One flag per resident per listing.
// @Tags listings
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param listing_id path string true "Listing ID"
// @Param flag body dto.FlagListingRequest true "Flag reason"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/listings/{listing_id}/flags [post]
func (h *listingHandler) flagListing(c *gin.Context) {
	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.FlagListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	if err := h.listingService.FlagListing(c.Request.Context(), c.Param("tenant_id"), c.Param("listing_id"), req, requestingUserID); err != nil {
		h.respondListingError(c, err, "Failed to flag listing")
		return
	}

	c.Status(http.StatusNoContent)
}

// getFlagCount godoc
// @Summary Get listing flag count
// @Description Returns the number of flags against a listing. Tenant admins only.
// @Tags listings
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param listing_id path string true "Listing ID"
// @Success 200 {object} map[string]int
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/listings/{listing_id}/flags/count [get]
func (h *listingHandler) getFlagCount(c *gin.Context) {
	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	count, err := h.listingService.GetFlagCount(c.Request.Context(), c.Param("tenant_id"), c.Param("listing_id"), requestingUserID)
	if err != nil {
		h.respondListingError(c, err, "Failed to get flag count")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// getPendingRequest godoc
// @Summary Get pending request
// @Description Retrieves the caller's open borrow request on a listing, if any.
// @Tags listings
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param listing_id path string true "Listing ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/listings/{listing_id}/pending-request [get]
func (h *listingHandler) getPendingRequest(c *gin.Context) {
	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	txn, err := h.transactionService.GetPendingRequest(c.Request.Context(), c.Param("tenant_id"), c.Param("listing_id"), requestingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "No pending request on this listing"})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "You are not a member of this tenant"})
		} else {
			middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to get pending request", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get pending request"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn, time.Now()))
}

// listListingHistory godoc
// @Summary List listing exchange history
// @Description Retrieves a listing's completed exchanges. Owner or tenant admin.
// @Tags listings
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param listing_id path string true "Listing ID"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/listings/{listing_id}/history [get]
func (h *listingHandler) listListingHistory(c *gin.Context) {
	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.transactionService.ListListingHistory(c.Request.Context(), c.Param("tenant_id"), c.Param("listing_id"), requestingUserID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only the owner or a tenant admin can view listing history"})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Listing not found"})
		} else {
			middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to list listing history", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list listing history"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// respondListingError maps service errors from listing operations to HTTP
// responses.
func (h *listingHandler) respondListingError(c *gin.Context, err error, failureMsg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Listing not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "You do not have permission to perform this action"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrInvalidState):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrInsufficientInventory):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		logger.Error(failureMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: failureMsg})
	}
}
