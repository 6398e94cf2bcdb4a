package services

import (
	"context"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
	"github.com/ecovilla/exchange_backend/internal/dto"
)

// TenantAuthorizerSvc gates every tenant-scoped mutation. Callers pass
// identity explicitly; there is no ambient session state.
type TenantAuthorizerSvc interface {
	// AuthorizeUserAction checks that userID holds at least requiredRole in
	// the tenant. Returns apperrors.ErrForbidden otherwise.
	AuthorizeUserAction(ctx context.Context, userID, tenantID string, requiredRole domain.TenantRole) error
}

// TenantReaderSvc defines read operations for tenant data
type TenantReaderSvc interface {
	// GetTenantByID retrieves a specific tenant by its ID.
	GetTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error)

	// GetTenantBySlug retrieves a tenant by its URL slug.
	GetTenantBySlug(ctx context.Context, slug string) (*domain.Tenant, error)

	// ListUserTenants retrieves the tenants a user belongs to.
	ListUserTenants(ctx context.Context, userID string) ([]domain.Tenant, error)

	// ListTenantMembers retrieves all members of a tenant. Members only.
	ListTenantMembers(ctx context.Context, tenantID, requestingUserID string) ([]domain.TenantMembership, error)
}

// TenantWriterSvc defines write operations for tenant data
type TenantWriterSvc interface {
	// CreateTenant persists a new tenant; the creator becomes its admin and
	// the default exchange categories are seeded.
	CreateTenant(ctx context.Context, req dto.CreateTenantRequest, creatorUserID string) (*domain.Tenant, error)

	// AddMember adds a user to a tenant with a role. Admins only.
	AddMember(ctx context.Context, tenantID string, req dto.AddMemberRequest, addingUserID string) error
}

// TenantSvcFacade combines all tenant-related service interfaces
type TenantSvcFacade interface {
	TenantAuthorizerSvc
	TenantReaderSvc
	TenantWriterSvc
}
