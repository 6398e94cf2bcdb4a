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

// categoryService implements the CategorySvcFacade interface
type categoryService struct {
	BaseService
	categoryRepo portsrepo.CategoryRepositoryFacade
}

// NewCategoryService creates a new category service with the provided dependencies
func NewCategoryService(
	categoryRepo portsrepo.CategoryRepositoryFacade,
	authorizer portssvc.TenantAuthorizerSvc,
) portssvc.CategorySvcFacade {
	return &categoryService{
		BaseService:  BaseService{TenantAuthorizer: authorizer},
		categoryRepo: categoryRepo,
	}
}

// Ensure categoryService implements the CategorySvcFacade interface
var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

// GetReturnPolicy retrieves the return policy of a category.
func (s *categoryService) GetReturnPolicy(ctx context.Context, tenantID, categoryID string) (domain.ReturnPolicy, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, tenantID, categoryID)
	if err != nil {
		return "", err
	}
	return category.ReturnPolicy, nil
}

// GetCategoryByID retrieves a category by ID within a tenant.
func (s *categoryService) GetCategoryByID(ctx context.Context, tenantID, categoryID string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, tenantID, categoryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find category by ID",
				slog.String("category_id", categoryID))
		}
		return nil, err
	}
	return category, nil
}

// ListCategories retrieves all categories of a tenant.
func (s *categoryService) ListCategories(ctx context.Context, tenantID string) ([]domain.Category, error) {
	categories, err := s.categoryRepo.ListCategoriesByTenant(ctx, tenantID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list categories",
			slog.String("tenant_id", tenantID))
		return nil, err
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}

// CreateCategory persists a new category. Tenant admins only.
func (s *categoryService) CreateCategory(ctx context.Context, tenantID string, req dto.CreateCategoryRequest, creatorUserID string) (*domain.Category, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, tenantID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	policy := domain.ReturnPolicy(req.ReturnPolicy)
	if !policy.IsValid() {
		return nil, apperrors.ErrValidation
	}

	now := time.Now()
	category := domain.Category{
		CategoryID:   uuid.NewString(),
		TenantID:     tenantID,
		Name:         req.Name,
		Description:  req.Description,
		ReturnPolicy: policy,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save category",
				slog.String("category_id", category.CategoryID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Category created successfully",
		slog.String("category_id", category.CategoryID),
		slog.String("tenant_id", tenantID))
	return &category, nil
}

// SeedDefaultCategories creates the default category set for a tenant.
func (s *categoryService) SeedDefaultCategories(ctx context.Context, tenantID, creatorUserID string) error {
	if err := s.AuthorizeUser(ctx, creatorUserID, tenantID, domain.RoleAdmin); err != nil {
		return err
	}

	now := time.Now()
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

	if err := s.categoryRepo.SaveCategories(ctx, categories); err != nil {
		s.LogError(ctx, err, "Failed to seed default categories",
			slog.String("tenant_id", tenantID))
		return err
	}

	s.LogInfo(ctx, "Default categories seeded",
		slog.String("tenant_id", tenantID),
		slog.Int("count", len(categories)))
	return nil
}
