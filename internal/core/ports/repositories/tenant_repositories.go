package repositories

import (
	"context"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
)

// TenantReader defines read operations for tenant data
type TenantReader interface {
	// FindTenantByID retrieves a specific tenant by its ID.
	FindTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error)

	// FindTenantBySlug retrieves a tenant by its URL slug.
	FindTenantBySlug(ctx context.Context, slug string) (*domain.Tenant, error)

	// ListTenantsByUser retrieves all tenants the user is a member of.
	ListTenantsByUser(ctx context.Context, userID string) ([]domain.Tenant, error)
}

// TenantWriter defines write operations for tenant data
type TenantWriter interface {
	// SaveTenant persists a new tenant.
	SaveTenant(ctx context.Context, tenant domain.Tenant) error
}

// TenantMembershipManager defines operations on tenant memberships
type TenantMembershipManager interface {
	// AddUserToTenant creates a membership row.
	AddUserToTenant(ctx context.Context, membership domain.TenantMembership) error

	// FindUserTenantRole retrieves the membership of a user in a tenant.
	// Returns apperrors.ErrNotFound when the user is not a member.
	FindUserTenantRole(ctx context.Context, userID, tenantID string) (*domain.TenantMembership, error)

	// ListTenantMembers retrieves all memberships of a tenant.
	ListTenantMembers(ctx context.Context, tenantID string) ([]domain.TenantMembership, error)

	// UpdateUserTenantRole changes a member's role.
	UpdateUserTenantRole(ctx context.Context, userID, tenantID string, role domain.TenantRole) error
}

// TenantRepositoryFacade combines all tenant-related repository interfaces
type TenantRepositoryFacade interface {
	TenantReader
	TenantWriter
	TenantMembershipManager
}
