package mapping

import (
	"github.com/ecovilla/exchange_backend/internal/core/domain"
	"github.com/ecovilla/exchange_backend/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	var returnCondition *string
	if d.ReturnCondition != nil {
		c := string(*d.ReturnCondition)
		returnCondition = &c
	}
	return models.Transaction{
		TransactionID:        d.TransactionID,
		TenantID:             d.TenantID,
		ListingID:            d.ListingID,
		BorrowerID:           d.BorrowerID,
		LenderID:             d.LenderID,
		Quantity:             d.Quantity,
		Status:               string(d.Status),
		ProposedPickupDate:   d.ProposedPickupDate,
		ProposedReturnDate:   d.ProposedReturnDate,
		ConfirmedPickupDate:  d.ConfirmedPickupDate,
		ExpectedReturnDate:   d.ExpectedReturnDate,
		ActualPickupDate:     d.ActualPickupDate,
		ActualReturnDate:     d.ActualReturnDate,
		BorrowerMessage:      d.BorrowerMessage,
		LenderMessage:        d.LenderMessage,
		RejectionReason:      d.RejectionReason,
		ExtensionRequested:   d.ExtensionRequested,
		ExtensionNewDate:     d.ExtensionNewDate,
		ExtensionMessage:     d.ExtensionMessage,
		ReturnCondition:      returnCondition,
		ReturnNotes:          d.ReturnNotes,
		ReturnDamagePhotoURL: d.ReturnDamagePhotoURL,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
		ConfirmedAt:          d.ConfirmedAt,
		RejectedAt:           d.RejectedAt,
		CompletedAt:          d.CompletedAt,
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	var returnCondition *domain.ReturnCondition
	if m.ReturnCondition != nil {
		c := domain.ReturnCondition(*m.ReturnCondition)
		returnCondition = &c
	}
	return domain.Transaction{
		TransactionID:        m.TransactionID,
		TenantID:             m.TenantID,
		ListingID:            m.ListingID,
		BorrowerID:           m.BorrowerID,
		LenderID:             m.LenderID,
		Quantity:             m.Quantity,
		Status:               domain.TransactionStatus(m.Status),
		ProposedPickupDate:   m.ProposedPickupDate,
		ProposedReturnDate:   m.ProposedReturnDate,
		ConfirmedPickupDate:  m.ConfirmedPickupDate,
		ExpectedReturnDate:   m.ExpectedReturnDate,
		ActualPickupDate:     m.ActualPickupDate,
		ActualReturnDate:     m.ActualReturnDate,
		BorrowerMessage:      m.BorrowerMessage,
		LenderMessage:        m.LenderMessage,
		RejectionReason:      m.RejectionReason,
		ExtensionRequested:   m.ExtensionRequested,
		ExtensionNewDate:     m.ExtensionNewDate,
		ExtensionMessage:     m.ExtensionMessage,
		ReturnCondition:      returnCondition,
		ReturnNotes:          m.ReturnNotes,
		ReturnDamagePhotoURL: m.ReturnDamagePhotoURL,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
		ConfirmedAt:          m.ConfirmedAt,
		RejectedAt:           m.RejectedAt,
		CompletedAt:          m.CompletedAt,
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
