package dto

import (
	"time"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
)

// CreateTransactionRequest defines the data a borrower submits to request an
// exchange.
type CreateTransactionRequest struct {
	ListingID          string     `json:"listingID" binding:"required,uuid"`
	Quantity           int        `json:"quantity" binding:"required,min=1"`
	ProposedPickupDate *time.Time `json:"proposedPickupDate"`
	ProposedReturnDate *time.Time `json:"proposedReturnDate"`
	Message            *string    `json:"message" binding:"omitempty,max=1000"`
}

// ConfirmTransactionRequest defines the lender's confirmation payload.
type ConfirmTransactionRequest struct {
	ConfirmedPickupDate *time.Time `json:"confirmedPickupDate"`
	ExpectedReturnDate  *time.Time `json:"expectedReturnDate"`
	Message             *string    `json:"message" binding:"omitempty,max=1000"`
}

// RejectTransactionRequest defines the lender's rejection payload.
type RejectTransactionRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=1000"`
}

// ReturnTransactionRequest defines the lender's return-condition capture.
type ReturnTransactionRequest struct {
	Condition      string  `json:"condition" binding:"required,oneof=good minor_wear damaged broken"`
	Notes          *string `json:"notes" binding:"omitempty,max=2000"`
	DamagePhotoURL *string `json:"damagePhotoURL" binding:"omitempty,url"`
}

// CancelTransactionRequest carries an optional cancellation reason.
type CancelTransactionRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=1000"`
}

// RequestExtensionRequest defines a borrower's return-date extension request.
type RequestExtensionRequest struct {
	NewReturnDate time.Time `json:"newReturnDate" binding:"required"`
	Message       *string   `json:"message" binding:"omitempty,max=1000"`
}

// RespondExtensionRequest defines the lender's answer to an extension request.
type RespondExtensionRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID string `json:"transactionID"`
	ListingID     string `json:"listingID"`
	BorrowerID    string `json:"borrowerID"`
	LenderID      string `json:"lenderID"`
	Quantity      int    `json:"quantity"`
	Status        string `json:"status"`

	ProposedPickupDate  *time.Time `json:"proposedPickupDate,omitempty"`
	ProposedReturnDate  *time.Time `json:"proposedReturnDate,omitempty"`
	ConfirmedPickupDate *time.Time `json:"confirmedPickupDate,omitempty"`
	ExpectedReturnDate  *time.Time `json:"expectedReturnDate,omitempty"`
	ActualPickupDate    *time.Time `json:"actualPickupDate,omitempty"`
	ActualReturnDate    *time.Time `json:"actualReturnDate,omitempty"`

	BorrowerMessage *string `json:"borrowerMessage,omitempty"`
	LenderMessage   *string `json:"lenderMessage,omitempty"`
	RejectionReason *string `json:"rejectionReason,omitempty"`

	ExtensionRequested bool       `json:"extensionRequested"`
	ExtensionNewDate   *time.Time `json:"extensionNewDate,omitempty"`
	ExtensionMessage   *string    `json:"extensionMessage,omitempty"`

	ReturnCondition      *string `json:"returnCondition,omitempty"`
	ReturnNotes          *string `json:"returnNotes,omitempty"`
	ReturnDamagePhotoURL *string `json:"returnDamagePhotoURL,omitempty"`

	IsOverdue bool `json:"isOverdue"`
	IsDueSoon bool `json:"isDueSoon"`

	CreatedAt   time.Time  `json:"createdAt"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	RejectedAt  *time.Time `json:"rejectedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse
// DTO. Overdue/due-soon are computed at read time, never stored.
func ToTransactionResponse(t *domain.Transaction, now time.Time) TransactionResponse {
	var condition *string
	if t.ReturnCondition != nil {
		c := string(*t.ReturnCondition)
		condition = &c
	}
	return TransactionResponse{
		TransactionID:        t.TransactionID,
		ListingID:            t.ListingID,
		BorrowerID:           t.BorrowerID,
		LenderID:             t.LenderID,
		Quantity:             t.Quantity,
		Status:               string(t.Status),
		ProposedPickupDate:   t.ProposedPickupDate,
		ProposedReturnDate:   t.ProposedReturnDate,
		ConfirmedPickupDate:  t.ConfirmedPickupDate,
		ExpectedReturnDate:   t.ExpectedReturnDate,
		ActualPickupDate:     t.ActualPickupDate,
		ActualReturnDate:     t.ActualReturnDate,
		BorrowerMessage:      t.BorrowerMessage,
		LenderMessage:        t.LenderMessage,
		RejectionReason:      t.RejectionReason,
		ExtensionRequested:   t.ExtensionRequested,
		ExtensionNewDate:     t.ExtensionNewDate,
		ExtensionMessage:     t.ExtensionMessage,
		ReturnCondition:      condition,
		ReturnNotes:          t.ReturnNotes,
		ReturnDamagePhotoURL: t.ReturnDamagePhotoURL,
		IsOverdue:            t.IsOverdue(now),
		IsDueSoon:            t.IsDueSoon(now),
		CreatedAt:            t.CreatedAt,
		ConfirmedAt:          t.ConfirmedAt,
		RejectedAt:           t.RejectedAt,
		CompletedAt:          t.CompletedAt,
	}
}

// ToListTransactionsResponse converts a page of domain transactions to the
// response DTO.
func ToListTransactionsResponse(txns []domain.Transaction, nextToken *string, now time.Time) ListTransactionsResponse {
	responses := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = ToTransactionResponse(&txn, now)
	}
	return ListTransactionsResponse{Transactions: responses, NextToken: nextToken}
}
