package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
	portsrepo "github.com/ecovilla/exchange_backend/internal/core/ports/repositories"
	portssvc "github.com/ecovilla/exchange_backend/internal/core/ports/services"
	"github.com/ecovilla/exchange_backend/internal/dto"
)

// maintenanceService implements the MaintenanceSvcFacade interface. It runs
// no timers of its own; an external scheduler triggers each run over HTTP.
type maintenanceService struct {
	BaseService
	transactionRepo portsrepo.TransactionReader
	notifier        portssvc.NotificationDispatcherSvc
}

// NewMaintenanceService creates a new maintenance service with the provided
// dependencies
func NewMaintenanceService(transactionRepo portsrepo.TransactionReader, notifier portssvc.NotificationDispatcherSvc) portssvc.MaintenanceSvcFacade {
	return &maintenanceService{
		transactionRepo: transactionRepo,
		notifier:        notifier,
	}
}

// Ensure maintenanceService implements the MaintenanceSvcFacade interface
var _ portssvc.MaintenanceSvcFacade = (*maintenanceService)(nil)

// RunReturnDateCheck scans every picked_up transaction with an expected
// return date, across all tenants, and sends due-soon reminders and overdue
// notices. DispatchOnce dedupes per recipient, transaction and type, so
// repeated sweeps never double-notify.
func (s *maintenanceService) RunReturnDateCheck(ctx context.Context) (*dto.ReturnDateCheckResponse, error) {
	txns, err := s.transactionRepo.ListAwaitingReturn(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load transactions awaiting return")
		return nil, err
	}

	now := time.Now()
	result := dto.ReturnDateCheckResponse{Processed: len(txns)}

	for i := range txns {
		txn := &txns[i]
		switch {
		case txn.IsOverdue(now):
			if s.notifier.DispatchOnce(ctx, s.sweepEvent(txn, txn.BorrowerID, domain.NotifyExchangeOverdue,
				"Item overdue",
				fmt.Sprintf("The item you borrowed was due back on %s.", txn.ExpectedReturnDate.Format("Jan 2, 2006")))) {
				result.OverdueNoticesSent++
			}
			// The lender gets one notice too, so they know to follow up.
			if s.notifier.DispatchOnce(ctx, s.sweepEvent(txn, txn.LenderID, domain.NotifyExchangeOverdue,
				"Your item is overdue",
				fmt.Sprintf("The item you lent was due back on %s.", txn.ExpectedReturnDate.Format("Jan 2, 2006")))) {
				result.OverdueNoticesSent++
			}
		case txn.IsDueSoon(now):
			if s.notifier.DispatchOnce(ctx, s.sweepEvent(txn, txn.BorrowerID, domain.NotifyExchangeReminder,
				"Return reminder",
				fmt.Sprintf("The item you borrowed is due back on %s.", txn.ExpectedReturnDate.Format("Jan 2, 2006")))) {
				result.RemindersSent++
			}
		}
	}

	s.LogInfo(ctx, "Return date check completed",
		slog.Int("processed", result.Processed),
		slog.Int("reminders_sent", result.RemindersSent),
		slog.Int("overdue_notices_sent", result.OverdueNoticesSent))
	return &result, nil
}

// sweepEvent assembles the dispatcher payload for a sweep notification. No
// actor: these are system-generated.
func (s *maintenanceService) sweepEvent(txn *domain.Transaction, recipientID string, notifType domain.NotificationType, title, message string) portssvc.ExchangeEvent {
	actionURL := "/exchanges/" + txn.TransactionID
	return portssvc.ExchangeEvent{
		TenantID:      txn.TenantID,
		RecipientID:   recipientID,
		Type:          notifType,
		Title:         title,
		Message:       message,
		TransactionID: &txn.TransactionID,
		ListingID:     &txn.ListingID,
		ActionURL:     &actionURL,
	}
}
