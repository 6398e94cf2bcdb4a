package services

import (
	portsrepo "github.com/ecovilla/exchange_backend/internal/core/ports/repositories"
	portssvc "github.com/ecovilla/exchange_backend/internal/core/ports/services"
	"github.com/ecovilla/exchange_backend/internal/platform/config"
)

// NewContainer creates a new service container with properly initialized
// dependencies
func NewContainer(cfg *config.Config, repos *portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Tenant service comes first: it is the TenantAuthorizerSvc every
	// tenant-scoped service consults.
	container.Tenant = NewTenantService(
		repos.TenantRepo,
		repos.CategoryRepo,
	)
	authorizer := container.Tenant.(portssvc.TenantAuthorizerSvc)

	container.User = NewUserService(repos.UserRepo)
	container.Token = NewTokenService(cfg)

	container.Category = NewCategoryService(
		repos.CategoryRepo,
		authorizer,
	)

	container.Listing = NewListingService(
		repos.ListingRepo,
		repos.CategoryRepo,
		authorizer,
	)

	container.Notification = NewNotificationService(repos.NotificationRepo)

	container.Transaction = NewTransactionService(
		repos.TransactionRepo,
		repos.ListingRepo,
		container.Category.(portssvc.CategoryPolicySvc),
		container.Listing.(portssvc.ListingInventorySvc),
		container.Notification.(portssvc.NotificationDispatcherSvc),
		authorizer,
	)

	container.Maintenance = NewMaintenanceService(
		repos.TransactionRepo,
		container.Notification.(portssvc.NotificationDispatcherSvc),
	)

	return container
}
