package repositories

import (
	"context"
	"time"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
)

// TransactionPatch carries the column changes a single lifecycle transition
// applies alongside the status flip. Nil fields are left untouched, so each
// timestamp column is written exactly once, by the transition that owns it.
type TransactionPatch struct {
	Status domain.TransactionStatus

	ConfirmedPickupDate *time.Time
	ExpectedReturnDate  *time.Time
	ActualPickupDate    *time.Time
	ActualReturnDate    *time.Time

	LenderMessage   *string
	RejectionReason *string

	ReturnCondition      *domain.ReturnCondition
	ReturnNotes          *string
	ReturnDamagePhotoURL *string

	ConfirmedAt *time.Time
	RejectedAt  *time.Time
	CompletedAt *time.Time

	UpdatedAt time.Time
}

// TransactionReader defines read operations for exchange transactions
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by ID within a tenant.
	FindTransactionByID(ctx context.Context, tenantID, transactionID string) (*domain.Transaction, error)

	// ListTransactionsForUser retrieves a page of transactions where the user
	// is borrower or lender, newest first, using token-based pagination.
	ListTransactionsForUser(ctx context.Context, tenantID, userID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// FindPendingRequest retrieves the borrower's open requested transaction
	// on a listing, if any.
	FindPendingRequest(ctx context.Context, tenantID, listingID, borrowerID string) (*domain.Transaction, error)

	// ListCompletedByListing retrieves the completed exchange history of a listing.
	ListCompletedByListing(ctx context.Context, tenantID, listingID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// ListAwaitingReturn retrieves picked_up transactions with an expected
	// return date, across all tenants. Used by the return-date sweep.
	ListAwaitingReturn(ctx context.Context) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for exchange transactions.
// Transactions are never deleted; they are the permanent audit record of an
// exchange.
type TransactionWriter interface {
	// CreateTransaction persists a new transaction in requested status.
	CreateTransaction(ctx context.Context, txn domain.Transaction) error

	// TransitionStatus applies patch to the transaction only when its current
	// status equals expected. The guard lives in the UPDATE's predicate, so
	// two concurrent attempts resolve to one winner; the loser receives
	// apperrors.ErrInvalidState. Returns the updated row on success.
	TransitionStatus(ctx context.Context, transactionID string, expected domain.TransactionStatus, patch TransactionPatch) (*domain.Transaction, error)

	// RequestExtension records an outstanding extension request, guarded on
	// status picked_up and no extension already pending. Returns
	// apperrors.ErrInvalidState when the guard matches no row.
	RequestExtension(ctx context.Context, transactionID string, newDate time.Time, message *string, updatedAt time.Time) error

	// ResolveExtension clears the outstanding extension request, moving the
	// expected return date to the requested date when approved. Guarded on an
	// extension actually being pending.
	ResolveExtension(ctx context.Context, transactionID string, approve bool, updatedAt time.Time) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
