package mapping

import (
	"github.com/ecovilla/exchange_backend/internal/core/domain"
	"github.com/ecovilla/exchange_backend/internal/models"
)

// ToModelTenant converts a domain Tenant to a model Tenant
func ToModelTenant(d domain.Tenant) models.Tenant {
	return models.Tenant{
		TenantID:    d.TenantID,
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTenant converts a model Tenant to a domain Tenant
func ToDomainTenant(m models.Tenant) domain.Tenant {
	return domain.Tenant{
		TenantID:    m.TenantID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTenantSlice converts a slice of model Tenants to domain Tenants
func ToDomainTenantSlice(ms []models.Tenant) []domain.Tenant {
	ds := make([]domain.Tenant, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTenant(m)
	}
	return ds
}

// ToModelTenantMembership converts a domain membership to a model membership
func ToModelTenantMembership(d domain.TenantMembership) models.TenantMembership {
	return models.TenantMembership{
		UserID:   d.UserID,
		TenantID: d.TenantID,
		Role:     string(d.Role),
		JoinedAt: d.JoinedAt,
	}
}

// ToDomainTenantMembership converts a model membership to a domain membership.
// UserName is joined in by the repository, not stored on the row.
func ToDomainTenantMembership(m models.TenantMembership) domain.TenantMembership {
	return domain.TenantMembership{
		UserID:   m.UserID,
		TenantID: m.TenantID,
		Role:     domain.TenantRole(m.Role),
		JoinedAt: m.JoinedAt,
	}
}
