package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ecovilla/exchange_backend/internal/apperrors"
	"github.com/ecovilla/exchange_backend/internal/core/domain"
	portsrepo "github.com/ecovilla/exchange_backend/internal/core/ports/repositories"
	portssvc "github.com/ecovilla/exchange_backend/internal/core/ports/services"
	"github.com/ecovilla/exchange_backend/internal/dto"
	"github.com/google/uuid"
)

// tenantService implements the TenantSvcFacade interface
type tenantService struct {
	BaseService
	tenantRepo   portsrepo.TenantRepositoryFacade
	categoryRepo portsrepo.CategoryWriter
}

// NewTenantService creates a new tenant service with the provided dependencies
func NewTenantService(
	tenantRepo portsrepo.TenantRepositoryFacade,
	categoryRepo portsrepo.CategoryWriter,
) portssvc.TenantSvcFacade {
	return &tenantService{
		tenantRepo:   tenantRepo,
		categoryRepo: categoryRepo,
	}
}

// Ensure tenantService implements the TenantSvcFacade interface
var _ portssvc.TenantSvcFacade = (*tenantService)(nil)

// GetTenantByID retrieves a tenant by its ID
func (s *tenantService) GetTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	tenant, err := s.tenantRepo.FindTenantByID(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find tenant by ID",
				slog.String("tenant_id", tenantID))
		}
		return nil, err
	}
	return tenant, nil
}

// GetTenantBySlug retrieves a tenant by its URL slug
func (s *tenantService) GetTenantBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	tenant, err := s.tenantRepo.FindTenantBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find tenant by slug",
				slog.String("slug", slug))
		}
		return nil, err
	}
	return tenant, nil
}

// ListUserTenants retrieves all tenants a user belongs to
func (s *tenantService) ListUserTenants(ctx context.Context, userID string) ([]domain.Tenant, error) {
	tenants, err := s.tenantRepo.ListTenantsByUser(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list tenants for user",
			slog.String("user_id", userID))
		return nil, err
	}
	if tenants == nil {
		return []domain.Tenant{}, nil
	}
	return tenants, nil
}

// ListTenantMembers retrieves all members of a tenant. The caller must be a
// member themselves.
func (s *tenantService) ListTenantMembers(ctx context.Context, tenantID, requestingUserID string) ([]domain.TenantMembership, error) {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, tenantID, domain.RoleResident); err != nil {
		return nil, err
	}

	members, err := s.tenantRepo.ListTenantMembers(ctx, tenantID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list tenant members",
			slog.String("tenant_id", tenantID))
		return nil, err
	}
	return members, nil
}

// CreateTenant creates a new tenant, makes the creator its admin and seeds
// the default exchange categories.
func (s *tenantService) CreateTenant(ctx context.Context, req dto.CreateTenantRequest, creatorUserID string) (*domain.Tenant, error) {
	now := time.Now()
	tenantID := uuid.NewString()

	tenant := domain.Tenant{
		TenantID:    tenantID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.tenantRepo.SaveTenant(ctx, tenant); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save tenant",
				slog.String("tenant_id", tenantID))
		}
		return nil, err
	}

	membership := domain.TenantMembership{
		UserID:   creatorUserID,
		TenantID: tenantID,
		Role:     domain.RoleAdmin,
		JoinedAt: now,
	}
	if err := s.tenantRepo.AddUserToTenant(ctx, membership); err != nil {
		s.LogError(ctx, err, "Failed to add creator as admin to new tenant",
			slog.String("tenant_id", tenantID),
			slog.String("user_id", creatorUserID))
		return nil, err
	}

	if err := s.seedDefaultCategories(ctx, tenantID, creatorUserID, now); err != nil {
		// The tenant exists and is usable; categories can be created by
		// hand, so log and carry on.
		s.LogError(ctx, err, "Failed to seed default categories for new tenant",
			slog.String("tenant_id", tenantID))
	}

	s.LogInfo(ctx, "Tenant created successfully",
		slog.String("tenant_id", tenantID),
		slog.String("creator_id", creatorUserID))
	return &tenant, nil
}

func (s *tenantService) seedDefaultCategories(ctx context.Context, tenantID, creatorUserID string, now time.Time) error {
	categories := make([]domain.Category, 0, len(domain.DefaultCategories))
	for _, seed := range domain.DefaultCategories {
		categories = append(categories, domain.Category{
			CategoryID:   uuid.NewString(),
			TenantID:     tenantID,
			Name:         seed.Name,
			ReturnPolicy: seed.ReturnPolicy,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		})
	}
	return s.categoryRepo.SaveCategories(ctx, categories)
}

// AddMember adds a user to a tenant with a role. Admins only, except a user
// adding themselves as the tenant's creator.
func (s *tenantService) AddMember(ctx context.Context, tenantID string, req dto.AddMemberRequest, addingUserID string) error {
	if addingUserID != req.UserID {
		if err := s.AuthorizeUserAction(ctx, addingUserID, tenantID, domain.RoleAdmin); err != nil {
			s.LogDebug(ctx, "User not authorized to add members",
				slog.String("adding_user_id", addingUserID),
				slog.String("tenant_id", tenantID))
			return err
		}
	}

	membership := domain.TenantMembership{
		UserID:   req.UserID,
		TenantID: tenantID,
		Role:     domain.TenantRole(req.Role),
		JoinedAt: time.Now(),
	}

	if err := s.tenantRepo.AddUserToTenant(ctx, membership); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to add user to tenant",
				slog.String("target_user_id", req.UserID),
				slog.String("tenant_id", tenantID))
		}
		return err
	}

	s.LogInfo(ctx, "User added to tenant successfully",
		slog.String("target_user_id", req.UserID),
		slog.String("tenant_id", tenantID),
		slog.String("role", req.Role))
	return nil
}

// AuthorizeUserAction checks if a user has required permissions for a tenant
func (s *tenantService) AuthorizeUserAction(ctx context.Context, userID, tenantID string, requiredRole domain.TenantRole) error {
	membership, err := s.tenantRepo.FindUserTenantRole(ctx, userID, tenantID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "User not a member of tenant",
				slog.String("user_id", userID),
				slog.String("tenant_id", tenantID))
			return apperrors.ErrForbidden
		}
		s.LogError(ctx, err, "Failed to find user tenant role",
			slog.String("user_id", userID),
			slog.String("tenant_id", tenantID))
		return err
	}

	if !hasRequiredRole(membership.Role, requiredRole) {
		s.LogDebug(ctx, "User does not have required role",
			slog.String("user_id", userID),
			slog.String("tenant_id", tenantID),
			slog.String("user_role", string(membership.Role)),
			slog.String("required_role", string(requiredRole)))
		return apperrors.ErrForbidden
	}

	return nil
}

// hasRequiredRole checks if the user's role meets or exceeds the required role
func hasRequiredRole(userRole, requiredRole domain.TenantRole) bool {
	switch requiredRole {
	case domain.RoleResident:
		return userRole == domain.RoleResident || userRole == domain.RoleAdmin
	case domain.RoleAdmin:
		return userRole == domain.RoleAdmin
	default:
		return false
	}
}
