package services

import (
	"context"
	"time"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
)

// TokenSvcFacade defines JWT issuing for authenticated users.
type TokenSvcFacade interface {
	// GenerateAccessToken creates a new JWT access token for the given user.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
}
