package services

import (
	"context"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
	"github.com/ecovilla/exchange_backend/internal/dto"
)

// TransactionReaderSvc defines read operations for exchange transactions
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves a transaction. Parties only.
	GetTransactionByID(ctx context.Context, tenantID, transactionID, requestingUserID string) (*domain.Transaction, error)

	// ListMyTransactions retrieves a page of the user's transactions, as
	// borrower or lender, newest first.
	ListMyTransactions(ctx context.Context, tenantID, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

	// GetPendingRequest retrieves the user's open requested transaction on a
	// listing, if any. Returns apperrors.ErrNotFound when there is none.
	GetPendingRequest(ctx context.Context, tenantID, listingID, userID string) (*domain.Transaction, error)

	// ListListingHistory retrieves a listing's completed exchanges. Owner or
	// tenant admin.
	ListListingHistory(ctx context.Context, tenantID, listingID, requestingUserID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// TransactionLifecycleSvc owns the borrow/lend state machine. Every mutating
// operation re-checks the current status through a guarded conditional update
// and fails with apperrors.ErrInvalidState when the transaction has already
// moved on.
type TransactionLifecycleSvc interface {
	// RequestTransaction creates a transaction in requested status. Nothing
	// is reserved yet; reservation happens at confirmation.
	RequestTransaction(ctx context.Context, tenantID string, req dto.CreateTransactionRequest, borrowerID string) (*domain.Transaction, error)

	// ConfirmRequest moves requested -> confirmed and reserves the quantity
	// against the listing. Lender only.
	ConfirmRequest(ctx context.Context, tenantID, transactionID string, req dto.ConfirmTransactionRequest, lenderID string) (*domain.Transaction, error)

	// RejectRequest moves requested -> rejected. Lender only. No inventory
	// change; nothing was reserved.
	RejectRequest(ctx context.Context, tenantID, transactionID string, req dto.RejectTransactionRequest, lenderID string) (*domain.Transaction, error)

	// MarkPickedUp moves confirmed -> picked_up. Either party may record the
	// handoff. Categories without a return step cascade straight to
	// completed in the same call.
	MarkPickedUp(ctx context.Context, tenantID, transactionID, actorID string) (*domain.Transaction, error)

	// MarkReturned moves picked_up -> returned with condition capture.
	// Lender only; only for return-requiring categories.
	MarkReturned(ctx context.Context, tenantID, transactionID string, req dto.ReturnTransactionRequest, lenderID string) (*domain.Transaction, error)

	// MarkCompleted moves returned -> completed and restocks the listing.
	MarkCompleted(ctx context.Context, tenantID, transactionID, actorID string) (*domain.Transaction, error)

	// CancelTransaction cancels a requested or confirmed transaction. Either
	// party. Restores quantity only when it had been reserved.
	CancelTransaction(ctx context.Context, tenantID, transactionID string, req dto.CancelTransactionRequest, actorID string) (*domain.Transaction, error)

	// RequestExtension records the borrower's request for a later return
	// date while the item is out.
	RequestExtension(ctx context.Context, tenantID, transactionID string, req dto.RequestExtensionRequest, borrowerID string) (*domain.Transaction, error)

	// RespondToExtension answers an outstanding extension request. Lender
	// only. Approval moves the expected return date.
	RespondToExtension(ctx context.Context, tenantID, transactionID string, req dto.RespondExtensionRequest, lenderID string) (*domain.Transaction, error)
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionLifecycleSvc
}
