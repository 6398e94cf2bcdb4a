package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecovilla/exchange_backend/internal/apperrors"
	"github.com/ecovilla/exchange_backend/internal/core/domain"
	portsrepo "github.com/ecovilla/exchange_backend/internal/core/ports/repositories"
	"github.com/ecovilla/exchange_backend/internal/models"
	"github.com/ecovilla/exchange_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notificationColumns = `notification_id, tenant_id, recipient_id, type, title, message, actor_id, transaction_id, listing_id, action_url, is_read, read_at, is_archived, created_at`

type PgxNotificationRepository struct {
	pool *pgxpool.Pool
}

// newPgxNotificationRepository creates a new repository for notification data.
func newPgxNotificationRepository(pool *pgxpool.Pool) portsrepo.NotificationRepositoryFacade {
	return &PgxNotificationRepository{pool: pool}
}

// Ensure PgxNotificationRepository implements portsrepo.NotificationRepositoryFacade
var _ portsrepo.NotificationRepositoryFacade = (*PgxNotificationRepository)(nil)

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var m models.Notification
	err := row.Scan(
		&m.NotificationID,
		&m.TenantID,
		&m.RecipientID,
		&m.Type,
		&m.Title,
		&m.Message,
		&m.ActorID,
		&m.TransactionID,
		&m.ListingID,
		&m.ActionURL,
		&m.IsRead,
		&m.ReadAt,
		&m.IsArchived,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveNotification inserts a new notification.
func (r *PgxNotificationRepository) SaveNotification(ctx context.Context, notification domain.Notification) error {
	m := mapping.ToModelNotification(notification)

	query := `
		INSERT INTO notifications (notification_id, tenant_id, recipient_id, type, title, message, actor_id, transaction_id, listing_id, action_url, is_read, is_archived, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.pool.Exec(ctx, query,
		m.NotificationID,
		m.TenantID,
		m.RecipientID,
		m.Type,
		m.Title,
		m.Message,
		m.ActorID,
		m.TransactionID,
		m.ListingID,
		m.ActionURL,
		m.IsRead,
		m.IsArchived,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save notification %s: %w", m.NotificationID, err)
	}
	return nil
}

// FindNotificationByID retrieves a notification by ID.
func (r *PgxNotificationRepository) FindNotificationByID(ctx context.Context, notificationID string) (*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE notification_id = $1;`

	m, err := scanNotification(r.pool.QueryRow(ctx, query, notificationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find notification by ID %s: %w", notificationID, err)
	}

	notification := mapping.ToDomainNotification(*m)
	return &notification, nil
}

// ListNotifications retrieves a recipient's notifications, newest first.
func (r *PgxNotificationRepository) ListNotifications(ctx context.Context, tenantID, recipientID string, filters portsrepo.NotificationFilters) ([]domain.Notification, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE tenant_id = $1 AND recipient_id = $2`
	args := []any{tenantID, recipientID}

	if filters.UnreadOnly {
		query += ` AND is_read = FALSE`
	}
	if !filters.IncludeArchived {
		query += ` AND is_archived = FALSE`
	}
	if filters.Type != nil {
		args = append(args, string(*filters.Type))
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}

	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications for recipient %s: %w", recipientID, err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		m, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		notifications = append(notifications, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}

	return mapping.ToDomainNotificationSlice(notifications), nil
}

// CountUnread returns the recipient's unread, unarchived notification count.
func (r *PgxNotificationRepository) CountUnread(ctx context.Context, tenantID, recipientID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE tenant_id = $1 AND recipient_id = $2 AND is_read = FALSE AND is_archived = FALSE;
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, tenantID, recipientID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for recipient %s: %w", recipientID, err)
	}
	return count, nil
}

// HasNotification reports whether a notification of the given type already
// exists for the recipient and transaction.
func (r *PgxNotificationRepository) HasNotification(ctx context.Context, transactionID, recipientID string, notifType domain.NotificationType) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE transaction_id = $1 AND recipient_id = $2 AND type = $3
		);
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, transactionID, recipientID, string(notifType)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check notification existence for transaction %s: %w", transactionID, err)
	}
	return exists, nil
}

// MarkRead marks a single notification as read.
func (r *PgxNotificationRepository) MarkRead(ctx context.Context, notificationID string, readAt time.Time) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, $2)
		WHERE notification_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, notificationID, readAt)
	if err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", notificationID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkAllRead marks all of a recipient's notifications in a tenant as read.
func (r *PgxNotificationRepository) MarkAllRead(ctx context.Context, tenantID, recipientID string, readAt time.Time) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, $3)
		WHERE tenant_id = $1 AND recipient_id = $2 AND is_read = FALSE;
	`
	if _, err := r.pool.Exec(ctx, query, tenantID, recipientID, readAt); err != nil {
		return fmt.Errorf("failed to mark notifications read for recipient %s: %w", recipientID, err)
	}
	return nil
}

// SetArchived sets the archived flag on a notification.
func (r *PgxNotificationRepository) SetArchived(ctx context.Context, notificationID string, archived bool) error {
	query := `
		UPDATE notifications
		SET is_archived = $2
		WHERE notification_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, notificationID, archived)
	if err != nil {
		return fmt.Errorf("failed to archive notification %s: %w", notificationID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
