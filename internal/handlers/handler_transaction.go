package handlers

import (
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

// transactionHandler handles HTTP requests related to exchange transactions.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

// registerTransactionRoutes registers transaction routes nested under a tenant.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := &transactionHandler{transactionService: transactionService}

	transactions := rg.Group("/transactions")
	{
		transactions.GET("", h.listMyTransactions)
		transactions.POST("", h.requestTransaction)
	}

	transactionSpecific := rg.Group("/transactions/:transaction_id")
	{
		transactionSpecific.GET("", h.getTransactionByID)
		transactionSpecific.POST("/confirm", h.confirmRequest)
		transactionSpecific.POST("/reject", h.rejectRequest)
		transactionSpecific.POST("/pickup", h.markPickedUp)
		transactionSpecific.POST("/return", h.markReturned)
		transactionSpecific.POST("/complete", h.markCompleted)
		transactionSpecific.POST("/cancel", h.cancelTransaction)
		transactionSpecific.POST("/extension", h.requestExtension)
		transactionSpecific.PUT("/extension", h.respondToExtension)
	}
}

// requestTransaction godoc
// @Summary Request an exchange
// @Description Creates a borrow request against a published listing.
// @Tags transactions
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param request body dto.CreateTransactionRequest true "Request details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/transactions [post]
func (h *transactionHandler) requestTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	borrowerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.transactionService.RequestTransaction(c.Request.Context(), tenantID, req, borrowerID)
	if err != nil {
		h.respondTransactionError(c, err, "Failed to request exchange")
		return
	}

	logger.Info("Exchange requested", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn, time.Now()))
}

// listMyTransactions godoc
// @Summary List own transactions
// @Description Retrieves a page of the caller's transactions as borrower or lender, newest first.
// @Tags transactions
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/transactions [get]
func (h *transactionHandler) listMyTransactions(c *gin.Context) {
	tenantID := c.Param("tenant_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.transactionService.ListMyTransactions(c.Request.Context(), tenantID, userID, params)
	if err != nil {
		h.respondTransactionError(c, err, "Failed to list transactions")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getTransactionByID godoc
// @Summary Get transaction
// @Description Retrieves a transaction by ID. Parties only.
// @Tags transactions
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param transaction_id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/transactions/{transaction_id} [get]
func (h *transactionHandler) getTransactionByID(c *gin.Context) {
	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), c.Param("tenant_id"), c.Param("transaction_id"), requestingUserID)
	if err != nil {
		h.respondTransactionError(c, err, "Failed to get transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn, time.Now()))
}

// confirmRequest godoc
// @Summary Confirm request
// @Description Confirms a borrow request and reserves the quantity. Lender only.
// @Tags transactions
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param transaction_id path string true "Transaction ID"
// @Param confirmation body dto.ConfirmTransactionRequest true "Confirmation details"
// @Success 200 {object} dto.TransactionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/transactions/{transaction_id}/confirm [post]
func (h *transactionHandler) confirmRequest(c *gin.Context) {
	lenderID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.ConfirmTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.transactionService.ConfirmRequest(c.Request.Context(), c.Param("tenant_id"), c.Param("transaction_id"), req, lenderID)
	if err != nil {
		h.respondTransactionError(c, err, "Failed to confirm request")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn, time.Now()))
}

// rejectRequest godoc
// @Summary Reject request
// @Description Rejects a borrow request with a reason. Lender only.
// @Tags transactions
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param transaction_id path string true "Transaction ID"
// @Param rejection body dto.RejectTransactionRequest true "Rejection reason"
// @Success 200 {object} dto.TransactionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/transactions/{transaction_id}/reject [post]
func (h *transactionHandler) rejectRequest(c *gin.Context) {
	lenderID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.RejectTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.transactionService.RejectRequest(c.Request.Context(), c.Param("tenant_id"), c.Param("transaction_id"), req, lenderID)
	if err != nil {
		h.respondTransactionError(c, err, "Failed to reject request")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn, time.Now()))
}

// markPickedUp godoc
// @Summary Mark picked up
// @Description Records the physical handoff of a confirmed exchange. Either party.
// @Tags transactions
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param transaction_id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/transactions/{transaction_id}/pickup [post]
func (h *transactionHandler) markPickedUp(c *gin.Context) {
	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	txn, err := h.transactionService.MarkPickedUp(c.Request.Context(), c.Param("tenant_id"), c.Param("transaction_id"), actorID)
	if err != nil {
		h.respondTransactionError(c, err, "Failed to mark pickup")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn, time.Now()))
}

// markReturned godoc
// @Summary Mark returned
// @Description Records the return of a borrowed item with its condition. Lender only.
// @Tags transactions
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param transaction_id path string true "Transaction ID"
// @Param return body dto.ReturnTransactionRequest true "Return details"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/transactions/{transaction_id}/return [post]
func (h *transactionHandler) markReturned(c *gin.Context) {
	lenderID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.ReturnTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.transactionService.MarkReturned(c.Request.Context(), c.Param("tenant_id"), c.Param("transaction_id"), req, lenderID)
	if err != nil {
		h.respondTransactionError(c, err, "Failed to mark return")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn, time.Now()))
}

// markCompleted godoc
// @Summary Mark completed
// @Description Completes a returned exchange and restocks per the category policy. Either party.
// @Tags transactions
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param transaction_id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/transactions/{transaction_id}/complete [post]
func (h *transactionHandler) markCompleted(c *gin.Context) {
	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	txn, err := h.transactionService.MarkCompleted(c.Request.Context(), c.Param("tenant_id"), c.Param("transaction_id"), actorID)
	if err != nil {
		h.respondTransactionError(c, err, "Failed to complete exchange")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn, time.Now()))
}

// cancelTransaction godoc
// @Summary Cancel transaction
// @Description Cancels a requested or confirmed exchange. Either party.
// @Tags transactions
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param transaction_id path string true "Transaction ID"
// @Param cancellation body dto.CancelTransactionRequest true "Optional reason"
// @Success 200 {object} dto.TransactionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/transactions/{transaction_id}/cancel [post]
func (h *transactionHandler) cancelTransaction(c *gin.Context) {
	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CancelTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.transactionService.CancelTransaction(c.Request.Context(), c.Param("tenant_id"), c.Param("transaction_id"), req, actorID)
	if err != nil {
		h.respondTransactionError(c, err, "Failed to cancel exchange")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn, time.Now()))
}

// requestExtension godoc
// @Summary Request return-date extension
// @Description Asks the lender for a later return date while the item is out. Borrower only.
// @Tags transactions
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param transaction_id path string true "Transaction ID"
// @Param extension body dto.RequestExtensionRequest true "Extension details"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/transactions/{transaction_id}/extension [post]
func (h *transactionHandler) requestExtension(c *gin.Context) {
	borrowerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.RequestExtensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.transactionService.RequestExtension(c.Request.Context(), c.Param("tenant_id"), c.Param("transaction_id"), req, borrowerID)
	if err != nil {
		h.respondTransactionError(c, err, "Failed to request extension")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn, time.Now()))
}

// respondToExtension godoc
// @Summary Respond to extension request
// @Description Approves or declines an outstanding extension request. Lender only.
// @Tags transactions
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param transaction_id path string true "Transaction ID"
// @Param response body dto.RespondExtensionRequest true "Approve or decline"
// @Success 200 {object} dto.TransactionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/transactions/{transaction_id}/extension [put]
func (h *transactionHandler) respondToExtension(c *gin.Context) {
	lenderID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.RespondExtensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.transactionService.RespondToExtension(c.Request.Context(), c.Param("tenant_id"), c.Param("transaction_id"), req, lenderID)
	if err != nil {
		h.respondTransactionError(c, err, "Failed to respond to extension")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn, time.Now()))
}

// respondTransactionError maps service errors from lifecycle operations to
// HTTP responses. Lost races and stale actions surface as 409.
func (h *transactionHandler) respondTransactionError(c *gin.Context, err error, failureMsg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Transaction not found"})
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
