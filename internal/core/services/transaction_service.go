package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ecovilla/exchange_backend/internal/apperrors"
	"github.com/ecovilla/exchange_backend/internal/core/domain"
	portsrepo "github.com/ecovilla/exchange_backend/internal/core/ports/repositories"
	portssvc "github.com/ecovilla/exchange_backend/internal/core/ports/services"
	"github.com/ecovilla/exchange_backend/internal/dto"
	"github.com/google/uuid"
)

// transactionService implements the TransactionSvcFacade interface. It owns
// the borrow/lend lifecycle: every status flip goes through a guarded
// conditional update in the repository, so concurrent actors race to a
// single winner and the loser sees ErrInvalidState.
type transactionService struct {
	BaseService
	transactionRepo portsrepo.TransactionRepositoryFacade
	listingRepo     portsrepo.ListingReader
	categoryPolicy  portssvc.CategoryPolicySvc
	inventory       portssvc.ListingInventorySvc
	notifier        portssvc.NotificationDispatcherSvc
}

// NewTransactionService creates a new transaction service with the provided
// dependencies
func NewTransactionService(
	transactionRepo portsrepo.TransactionRepositoryFacade,
	listingRepo portsrepo.ListingReader,
	categoryPolicy portssvc.CategoryPolicySvc,
	inventory portssvc.ListingInventorySvc,
	notifier portssvc.NotificationDispatcherSvc,
	authorizer portssvc.TenantAuthorizerSvc,
) portssvc.TransactionSvcFacade {
	return &transactionService{
		BaseService:     BaseService{TenantAuthorizer: authorizer},
		transactionRepo: transactionRepo,
		listingRepo:     listingRepo,
		categoryPolicy:  categoryPolicy,
		inventory:       inventory,
		notifier:        notifier,
	}
}

// Ensure transactionService implements the TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// RequestTransaction creates a transaction in requested status. Nothing is
// reserved yet; the quantity check here is advisory and the binding
// reservation happens at confirmation.
func (s *transactionService) RequestTransaction(ctx context.Context, tenantID string, req dto.CreateTransactionRequest, borrowerID string) (*domain.Transaction, error) {
	if err := s.AuthorizeUser(ctx, borrowerID, tenantID, domain.RoleResident); err != nil {
		return nil, err
	}

	listing, err := s.listingRepo.FindListingByID(ctx, tenantID, req.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.LenderID() == borrowerID {
		return nil, fmt.Errorf("%w: cannot borrow your own listing", apperrors.ErrValidation)
	}
	if listing.Status != domain.ListingPublished || listing.IsArchived() {
		return nil, fmt.Errorf("%w: listing %s is not open for requests", apperrors.ErrInvalidState, req.ListingID)
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", apperrors.ErrValidation)
	}
	if req.Quantity > listing.AvailableQuantity {
		return nil, fmt.Errorf("%w: requested %d of %d available", apperrors.ErrValidation, req.Quantity, listing.AvailableQuantity)
	}

	// One open request per borrower per listing.
	if _, err := s.transactionRepo.FindPendingRequest(ctx, tenantID, req.ListingID, borrowerID); err == nil {
		return nil, fmt.Errorf("%w: you already have a pending request on this listing", apperrors.ErrDuplicate)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	txn := domain.Transaction{
		TransactionID:      uuid.NewString(),
		TenantID:           tenantID,
		ListingID:          req.ListingID,
		BorrowerID:         borrowerID,
		LenderID:           listing.LenderID(),
		Quantity:           req.Quantity,
		Status:             domain.StatusRequested,
		ProposedPickupDate: req.ProposedPickupDate,
		ProposedReturnDate: req.ProposedReturnDate,
		BorrowerMessage:    req.Message,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.transactionRepo.CreateTransaction(ctx, txn); err != nil {
		s.LogError(ctx, err, "Failed to create transaction",
			slog.String("listing_id", req.ListingID))
		return nil, err
	}

	s.notifier.Dispatch(ctx, s.event(&txn, txn.LenderID, borrowerID, domain.NotifyExchangeRequest,
		"New borrow request",
		fmt.Sprintf("You have a new request for %q.", listing.Title)))

	s.LogInfo(ctx, "Transaction requested",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("listing_id", req.ListingID))
	return &txn, nil
}

// ConfirmRequest moves requested -> confirmed and reserves the quantity
// against the listing. The reservation happens first; if the status flip then
// loses a race the reservation is rolled back.
func (s *transactionService) ConfirmRequest(ctx context.Context, tenantID, transactionID string, req dto.ConfirmTransactionRequest, lenderID string) (*domain.Transaction, error) {
	txn, err := s.partyTransaction(ctx, tenantID, transactionID, lenderID)
	if err != nil {
		return nil, err
	}
	if txn.LenderID != lenderID {
		return nil, apperrors.ErrForbidden
	}

	if err := s.inventory.ReserveQuantity(ctx, tenantID, txn.ListingID, txn.Quantity); err != nil {
		return nil, err
	}

	now := time.Now()
	pickupDate := req.ConfirmedPickupDate
	if pickupDate == nil {
		pickupDate = txn.ProposedPickupDate
	}
	returnDate := req.ExpectedReturnDate
	if returnDate == nil {
		returnDate = txn.ProposedReturnDate
	}

	updated, err := s.transactionRepo.TransitionStatus(ctx, transactionID, domain.StatusRequested, portsrepo.TransactionPatch{
		Status:              domain.StatusConfirmed,
		ConfirmedPickupDate: pickupDate,
		ExpectedReturnDate:  returnDate,
		LenderMessage:       req.Message,
		ConfirmedAt:         &now,
		UpdatedAt:           now,
	})
	if err != nil {
		if releaseErr := s.inventory.ReleaseQuantity(ctx, tenantID, txn.ListingID, txn.Quantity); releaseErr != nil {
			s.LogError(ctx, releaseErr, "Failed to roll back reservation after lost confirm race",
				slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	s.notifier.Dispatch(ctx, s.event(updated, updated.BorrowerID, lenderID, domain.NotifyExchangeConfirmed,
		"Request confirmed",
		"Your borrow request was confirmed."))

	s.LogInfo(ctx, "Transaction confirmed",
		slog.String("transaction_id", transactionID))
	return updated, nil
}

// RejectRequest moves requested -> rejected. Nothing was reserved, so there
// is no inventory to release.
func (s *transactionService) RejectRequest(ctx context.Context, tenantID, transactionID string, req dto.RejectTransactionRequest, lenderID string) (*domain.Transaction, error) {
	txn, err := s.partyTransaction(ctx, tenantID, transactionID, lenderID)
	if err != nil {
		return nil, err
	}
	if txn.LenderID != lenderID {
		return nil, apperrors.ErrForbidden
	}

	now := time.Now()
	updated, err := s.transactionRepo.TransitionStatus(ctx, transactionID, domain.StatusRequested, portsrepo.TransactionPatch{
		Status:          domain.StatusRejected,
		RejectionReason: &req.Reason,
		RejectedAt:      &now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, s.event(updated, updated.BorrowerID, lenderID, domain.NotifyExchangeRejected,
		"Request declined",
		"Your borrow request was declined."))

	s.LogInfo(ctx, "Transaction rejected",
		slog.String("transaction_id", transactionID))
	return updated, nil
}

// MarkPickedUp moves confirmed -> picked_up. Either party may record the
// handoff. Categories without a return step cascade straight to completed in
// the same call.
func (s *transactionService) MarkPickedUp(ctx context.Context, tenantID, transactionID, actorID string) (*domain.Transaction, error) {
	txn, err := s.partyTransaction(ctx, tenantID, transactionID, actorID)
	if err != nil {
		return nil, err
	}

	// Resolve the policy before flipping the status, so a failed lookup
	// leaves the transaction in confirmed and the call retryable.
	policy, err := s.returnPolicy(ctx, tenantID, txn.ListingID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updated, err := s.transactionRepo.TransitionStatus(ctx, transactionID, domain.StatusConfirmed, portsrepo.TransactionPatch{
		Status:           domain.StatusPickedUp,
		ActualPickupDate: &now,
		UpdatedAt:        now,
	})
	if err != nil {
		return nil, err
	}

	if !policy.RequiresReturn() {
		// No physical return step: the exchange completes at handoff.
		completed, err := s.complete(ctx, tenantID, updated, domain.StatusPickedUp, actorID)
		if err != nil {
			return nil, err
		}
		return completed, nil
	}

	s.notifier.Dispatch(ctx, s.event(updated, updated.OtherParty(actorID), actorID, domain.NotifyExchangePickedUp,
		"Item picked up",
		"The exchange was marked as picked up."))

	s.LogInfo(ctx, "Transaction picked up",
		slog.String("transaction_id", transactionID))
	return updated, nil
}

// MarkReturned moves picked_up -> returned with condition capture. Lender
// only; only categories with a physical return step pass through here.
func (s *transactionService) MarkReturned(ctx context.Context, tenantID, transactionID string, req dto.ReturnTransactionRequest, lenderID string) (*domain.Transaction, error) {
	txn, err := s.partyTransaction(ctx, tenantID, transactionID, lenderID)
	if err != nil {
		return nil, err
	}
	if txn.LenderID != lenderID {
		return nil, apperrors.ErrForbidden
	}

	policy, err := s.returnPolicy(ctx, tenantID, txn.ListingID)
	if err != nil {
		return nil, err
	}
	if !policy.RequiresReturn() {
		return nil, fmt.Errorf("%w: this category has no return step", apperrors.ErrInvalidState)
	}

	condition := domain.ReturnCondition(req.Condition)
	if !condition.IsValid() {
		return nil, apperrors.ErrValidation
	}
	if condition.NeedsEvidence() && (isBlank(req.Notes) || isBlank(req.DamagePhotoURL)) {
		return nil, fmt.Errorf("%w: notes and a damage photo are required when the item came back %s", apperrors.ErrValidation, condition)
	}

	now := time.Now()
	updated, err := s.transactionRepo.TransitionStatus(ctx, transactionID, domain.StatusPickedUp, portsrepo.TransactionPatch{
		Status:               domain.StatusReturned,
		ActualReturnDate:     &now,
		ReturnCondition:      &condition,
		ReturnNotes:          req.Notes,
		ReturnDamagePhotoURL: req.DamagePhotoURL,
		UpdatedAt:            now,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, s.event(updated, updated.BorrowerID, lenderID, domain.NotifyExchangeReturned,
		"Return recorded",
		fmt.Sprintf("The item was returned in %s condition.", condition)))

	s.LogInfo(ctx, "Transaction returned",
		slog.String("transaction_id", transactionID),
		slog.String("condition", string(condition)))
	return updated, nil
}

// MarkCompleted moves returned -> completed and restocks the listing. For a
// category with no return step it also accepts picked_up, so a handoff whose
// auto-complete cascade failed mid-way can be finished by hand.
func (s *transactionService) MarkCompleted(ctx context.Context, tenantID, transactionID, actorID string) (*domain.Transaction, error) {
	txn, err := s.partyTransaction(ctx, tenantID, transactionID, actorID)
	if err != nil {
		return nil, err
	}

	policy, err := s.returnPolicy(ctx, tenantID, txn.ListingID)
	if err != nil {
		return nil, err
	}

	expected := domain.StatusReturned
	if !policy.RequiresReturn() {
		expected = domain.StatusPickedUp
	}
	return s.complete(ctx, tenantID, txn, expected, actorID)
}

// complete performs the final transition from expected to completed, restores
// the reserved quantity to the listing, and notifies the counterparty.
func (s *transactionService) complete(ctx context.Context, tenantID string, txn *domain.Transaction, expected domain.TransactionStatus, actorID string) (*domain.Transaction, error) {
	now := time.Now()
	updated, err := s.transactionRepo.TransitionStatus(ctx, txn.TransactionID, expected, portsrepo.TransactionPatch{
		Status:      domain.StatusCompleted,
		CompletedAt: &now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.inventory.ReleaseQuantity(ctx, tenantID, updated.ListingID, updated.Quantity); err != nil {
		// The transaction is already completed; a failed restock is an
		// inventory drift to flag, not a reason to fail the call.
		s.LogError(ctx, err, "Failed to restock listing after completion",
			slog.String("transaction_id", updated.TransactionID),
			slog.String("listing_id", updated.ListingID))
	}

	s.notifier.Dispatch(ctx, s.event(updated, updated.OtherParty(actorID), actorID, domain.NotifyExchangeCompleted,
		"Exchange completed",
		"The exchange was completed."))

	s.LogInfo(ctx, "Transaction completed",
		slog.String("transaction_id", updated.TransactionID))
	return updated, nil
}

// CancelTransaction cancels a requested or confirmed transaction. Either
// party may cancel. Quantity flows back only when it had been reserved.
func (s *transactionService) CancelTransaction(ctx context.Context, tenantID, transactionID string, req dto.CancelTransactionRequest, actorID string) (*domain.Transaction, error) {
	txn, err := s.partyTransaction(ctx, tenantID, transactionID, actorID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.StatusRequested && txn.Status != domain.StatusConfirmed {
		return nil, fmt.Errorf("%w: transaction %s cannot be cancelled from %s", apperrors.ErrInvalidState, transactionID, txn.Status)
	}

	wasConfirmed := txn.Status == domain.StatusConfirmed

	now := time.Now()
	updated, err := s.transactionRepo.TransitionStatus(ctx, transactionID, txn.Status, portsrepo.TransactionPatch{
		Status:          domain.StatusCancelled,
		RejectionReason: req.Reason,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, err
	}

	if wasConfirmed {
		if err := s.inventory.ReleaseQuantity(ctx, tenantID, updated.ListingID, updated.Quantity); err != nil {
			s.LogError(ctx, err, "Failed to release reservation after cancel",
				slog.String("transaction_id", transactionID),
				slog.String("listing_id", updated.ListingID))
		}
	}

	s.notifier.Dispatch(ctx, s.event(updated, updated.OtherParty(actorID), actorID, domain.NotifyExchangeCancelled,
		"Exchange cancelled",
		"The exchange was cancelled."))

	s.LogInfo(ctx, "Transaction cancelled",
		slog.String("transaction_id", transactionID),
		slog.Bool("was_confirmed", wasConfirmed))
	return updated, nil
}

// RequestExtension records the borrower's request for a later return date
// while the item is out.
func (s *transactionService) RequestExtension(ctx context.Context, tenantID, transactionID string, req dto.RequestExtensionRequest, borrowerID string) (*domain.Transaction, error) {
	txn, err := s.partyTransaction(ctx, tenantID, transactionID, borrowerID)
	if err != nil {
		return nil, err
	}
	if txn.BorrowerID != borrowerID {
		return nil, apperrors.ErrForbidden
	}
	if txn.ExpectedReturnDate != nil && !req.NewReturnDate.After(*txn.ExpectedReturnDate) {
		return nil, fmt.Errorf("%w: the new return date must be after the current one", apperrors.ErrValidation)
	}

	if err := s.transactionRepo.RequestExtension(ctx, transactionID, req.NewReturnDate, req.Message, time.Now()); err != nil {
		return nil, err
	}

	updated, err := s.transactionRepo.FindTransactionByID(ctx, tenantID, transactionID)
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, s.event(updated, updated.LenderID, borrowerID, domain.NotifyExtensionRequested,
		"Extension requested",
		fmt.Sprintf("The borrower asked to keep the item until %s.", req.NewReturnDate.Format("Jan 2, 2006"))))

	s.LogInfo(ctx, "Extension requested",
		slog.String("transaction_id", transactionID))
	return updated, nil
}

// RespondToExtension answers an outstanding extension request. Approval moves
// the expected return date to the requested one.
func (s *transactionService) RespondToExtension(ctx context.Context, tenantID, transactionID string, req dto.RespondExtensionRequest, lenderID string) (*domain.Transaction, error) {
	txn, err := s.partyTransaction(ctx, tenantID, transactionID, lenderID)
	if err != nil {
		return nil, err
	}
	if txn.LenderID != lenderID {
		return nil, apperrors.ErrForbidden
	}

	approve := req.Approve != nil && *req.Approve
	if err := s.transactionRepo.ResolveExtension(ctx, transactionID, approve, time.Now()); err != nil {
		return nil, err
	}

	updated, err := s.transactionRepo.FindTransactionByID(ctx, tenantID, transactionID)
	if err != nil {
		return nil, err
	}

	verdict := "declined"
	if approve {
		verdict = "approved"
	}
	s.notifier.Dispatch(ctx, s.event(updated, updated.BorrowerID, lenderID, domain.NotifyExtensionAnswered,
		"Extension "+verdict,
		fmt.Sprintf("Your extension request was %s.", verdict)))

	s.LogInfo(ctx, "Extension resolved",
		slog.String("transaction_id", transactionID),
		slog.Bool("approved", approve))
	return updated, nil
}

// GetTransactionByID retrieves a transaction. Parties only.
func (s *transactionService) GetTransactionByID(ctx context.Context, tenantID, transactionID, requestingUserID string) (*domain.Transaction, error) {
	return s.partyTransaction(ctx, tenantID, transactionID, requestingUserID)
}

// ListMyTransactions retrieves a page of the user's transactions.
func (s *transactionService) ListMyTransactions(ctx context.Context, tenantID, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, tenantID, domain.RoleResident); err != nil {
		return nil, err
	}

	txns, nextToken, err := s.transactionRepo.ListTransactionsForUser(ctx, tenantID, userID, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions for user",
			slog.String("user_id", userID))
		return nil, err
	}

	resp := dto.ToListTransactionsResponse(txns, nextToken, time.Now())
	return &resp, nil
}

// GetPendingRequest retrieves the user's open requested transaction on a
// listing, if any.
func (s *transactionService) GetPendingRequest(ctx context.Context, tenantID, listingID, userID string) (*domain.Transaction, error) {
	if err := s.AuthorizeUser(ctx, userID, tenantID, domain.RoleResident); err != nil {
		return nil, err
	}
	return s.transactionRepo.FindPendingRequest(ctx, tenantID, listingID, userID)
}

// ListListingHistory retrieves a listing's completed exchanges. Owner or
// tenant admin.
func (s *transactionService) ListListingHistory(ctx context.Context, tenantID, listingID, requestingUserID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	listing, err := s.listingRepo.FindListingByID(ctx, tenantID, listingID)
	if err != nil {
		return nil, err
	}
	if listing.LenderID() != requestingUserID {
		if err := s.AuthorizeUser(ctx, requestingUserID, tenantID, domain.RoleAdmin); err != nil {
			return nil, err
		}
	}

	txns, nextToken, err := s.transactionRepo.ListCompletedByListing(ctx, tenantID, listingID, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list listing history",
			slog.String("listing_id", listingID))
		return nil, err
	}

	resp := dto.ToListTransactionsResponse(txns, nextToken, time.Now())
	return &resp, nil
}

// isBlank reports whether s is nil, empty or whitespace only.
func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// partyTransaction fetches the transaction and requires userID to be the
// borrower or the lender.
func (s *transactionService) partyTransaction(ctx context.Context, tenantID, transactionID, userID string) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, tenantID, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transaction",
				slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	if !txn.IsParty(userID) {
		return nil, apperrors.ErrForbidden
	}
	return txn, nil
}

// returnPolicy resolves the category return policy of a transaction's listing.
func (s *transactionService) returnPolicy(ctx context.Context, tenantID, listingID string) (domain.ReturnPolicy, error) {
	listing, err := s.listingRepo.FindListingByID(ctx, tenantID, listingID)
	if err != nil {
		return "", err
	}
	return s.categoryPolicy.GetReturnPolicy(ctx, tenantID, listing.CategoryID)
}

// event assembles the dispatcher payload for a transaction notification.
func (s *transactionService) event(txn *domain.Transaction, recipientID, actorID string, notifType domain.NotificationType, title, message string) portssvc.ExchangeEvent {
	actionURL := "/exchanges/" + txn.TransactionID
	return portssvc.ExchangeEvent{
		TenantID:      txn.TenantID,
		RecipientID:   recipientID,
		Type:          notifType,
		Title:         title,
		Message:       message,
		ActorID:       &actorID,
		TransactionID: &txn.TransactionID,
		ListingID:     &txn.ListingID,
		ActionURL:     &actionURL,
	}
}
