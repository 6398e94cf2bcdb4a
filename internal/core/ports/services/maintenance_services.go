package services

import (
	"context"

	"github.com/ecovilla/exchange_backend/internal/dto"
)

// MaintenanceSvcFacade holds externally triggered housekeeping. The engine
// itself runs no timers; an external scheduler calls these over HTTP.
type MaintenanceSvcFacade interface {
	// RunReturnDateCheck scans picked_up transactions and sends due-soon
	// reminders and overdue notices, each at most once per recipient.
	RunReturnDateCheck(ctx context.Context) (*dto.ReturnDateCheckResponse, error)
}
