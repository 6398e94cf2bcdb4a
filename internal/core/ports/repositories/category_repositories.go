package repositories

import (
	"context"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
)

// CategoryReader defines read operations for exchange categories
type CategoryReader interface {
	// FindCategoryByID retrieves a category by ID within a tenant.
	FindCategoryByID(ctx context.Context, tenantID, categoryID string) (*domain.Category, error)

	// ListCategoriesByTenant retrieves all categories of a tenant.
	ListCategoriesByTenant(ctx context.Context, tenantID string) ([]domain.Category, error)
}

// CategoryWriter defines write operations for exchange categories
type CategoryWriter interface {
	// SaveCategory persists a new category.
	SaveCategory(ctx context.Context, category domain.Category) error

	// SaveCategories persists a batch of categories (tenant seeding).
	SaveCategories(ctx context.Context, categories []domain.Category) error
}

// CategoryRepositoryFacade combines all category-related repository interfaces
type CategoryRepositoryFacade interface {
	CategoryReader
	CategoryWriter
}
