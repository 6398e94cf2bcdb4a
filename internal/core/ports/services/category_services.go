package services

import (
	"context"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
	"github.com/ecovilla/exchange_backend/internal/dto"
)

// CategoryPolicySvc answers the single classification question the
// transaction engine needs: does an exchange in this category route through
// the returned status? Keeping it behind an interface means new categories
// never touch transition logic.
type CategoryPolicySvc interface {
	// GetReturnPolicy retrieves the return policy of a category.
	GetReturnPolicy(ctx context.Context, tenantID, categoryID string) (domain.ReturnPolicy, error)
}

// CategoryReaderSvc defines read operations for exchange categories
type CategoryReaderSvc interface {
	// GetCategoryByID retrieves a category by ID within a tenant.
	GetCategoryByID(ctx context.Context, tenantID, categoryID string) (*domain.Category, error)

	// ListCategories retrieves all categories of a tenant.
	ListCategories(ctx context.Context, tenantID string) ([]domain.Category, error)
}

// CategoryWriterSvc defines write operations for exchange categories
type CategoryWriterSvc interface {
	// CreateCategory persists a new category. Tenant admins only.
	CreateCategory(ctx context.Context, tenantID string, req dto.CreateCategoryRequest, creatorUserID string) (*domain.Category, error)

	// SeedDefaultCategories creates the default category set for a tenant.
	SeedDefaultCategories(ctx context.Context, tenantID, creatorUserID string) error
}

// CategorySvcFacade combines all category-related service interfaces
type CategorySvcFacade interface {
	CategoryPolicySvc
	CategoryReaderSvc
	CategoryWriterSvc
}
