package mapping

import (
	"github.com/ecovilla/exchange_backend/internal/core/domain"
	"github.com/ecovilla/exchange_backend/internal/models"
)

// ToModelListing converts a domain Listing to a model Listing
func ToModelListing(d domain.Listing) models.Listing {
	var condition *string
	if d.Condition != nil {
		c := string(*d.Condition)
		condition = &c
	}
	return models.Listing{
		ListingID:          d.ListingID,
		TenantID:           d.TenantID,
		CategoryID:         d.CategoryID,
		Title:              d.Title,
		Description:        d.Description,
		Status:             string(d.Status),
		IsAvailable:        d.IsAvailable,
		PricingType:        string(d.PricingType),
		Price:              d.Price,
		Condition:          condition,
		AvailableQuantity:  d.AvailableQuantity,
		VisibilityScope:    string(d.VisibilityScope),
		IsFlagged:          d.IsFlagged,
		FlaggedAt:          d.FlaggedAt,
		CancelledAt:        d.CancelledAt,
		CancellationReason: d.CancellationReason,
		ArchivedAt:         d.ArchivedAt,
		ArchivedBy:         d.ArchivedBy,
		PublishedAt:        d.PublishedAt,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainListing converts a model Listing to a domain Listing
func ToDomainListing(m models.Listing) domain.Listing {
	var condition *domain.ListingCondition
	if m.Condition != nil {
		c := domain.ListingCondition(*m.Condition)
		condition = &c
	}
	return domain.Listing{
		ListingID:          m.ListingID,
		TenantID:           m.TenantID,
		CategoryID:         m.CategoryID,
		Title:              m.Title,
		Description:        m.Description,
		Status:             domain.ListingStatus(m.Status),
		IsAvailable:        m.IsAvailable,
		PricingType:        domain.PricingType(m.PricingType),
		Price:              m.Price,
		Condition:          condition,
		AvailableQuantity:  m.AvailableQuantity,
		VisibilityScope:    domain.VisibilityScope(m.VisibilityScope),
		IsFlagged:          m.IsFlagged,
		FlaggedAt:          m.FlaggedAt,
		CancelledAt:        m.CancelledAt,
		CancellationReason: m.CancellationReason,
		ArchivedAt:         m.ArchivedAt,
		ArchivedBy:         m.ArchivedBy,
		PublishedAt:        m.PublishedAt,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainListingSlice converts a slice of model Listings to domain Listings
func ToDomainListingSlice(ms []models.Listing) []domain.Listing {
	ds := make([]domain.Listing, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainListing(m)
	}
	return ds
}

// ToModelFlag converts a domain Flag to a model Flag
func ToModelFlag(d domain.Flag) models.Flag {
	return models.Flag{
		FlagID:    d.FlagID,
		TenantID:  d.TenantID,
		ListingID: d.ListingID,
		FlaggedBy: d.FlaggedBy,
		Reason:    d.Reason,
		CreatedAt: d.CreatedAt,
	}
}

// ToDomainFlag converts a model Flag to a domain Flag
func ToDomainFlag(m models.Flag) domain.Flag {
	return domain.Flag{
		FlagID:    m.FlagID,
		TenantID:  m.TenantID,
		ListingID: m.ListingID,
		FlaggedBy: m.FlaggedBy,
		Reason:    m.Reason,
		CreatedAt: m.CreatedAt,
	}
}
