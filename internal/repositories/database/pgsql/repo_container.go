package pgsql

import (
	portsrepo "github.com/ecovilla/exchange_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	tenantRepo := newPgxTenantRepository(dbPool)
	categoryRepo := newPgxCategoryRepository(dbPool)
	listingRepo := newPgxListingRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool)
	notificationRepo := newPgxNotificationRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo:         userRepo,
		TenantRepo:       tenantRepo,
		CategoryRepo:     categoryRepo,
		ListingRepo:      listingRepo,
		TransactionRepo:  transactionRepo,
		NotificationRepo: notificationRepo,
	}
}
