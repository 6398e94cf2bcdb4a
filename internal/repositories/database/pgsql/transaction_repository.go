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
	"github.com/ecovilla/exchange_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `transaction_id, tenant_id, listing_id, borrower_id, lender_id, quantity, status, proposed_pickup_date, proposed_return_date, confirmed_pickup_date, expected_return_date, actual_pickup_date, actual_return_date, borrower_message, lender_message, rejection_reason, extension_requested, extension_new_date, extension_message, return_condition, return_notes, return_damage_photo_url, created_at, updated_at, confirmed_at, rejected_at, completed_at`

type PgxTransactionRepository struct {
	pool *pgxpool.Pool
}

// newPgxTransactionRepository creates a new repository for exchange
// transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{pool: pool}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.TenantID,
		&m.ListingID,
		&m.BorrowerID,
		&m.LenderID,
		&m.Quantity,
		&m.Status,
		&m.ProposedPickupDate,
		&m.ProposedReturnDate,
		&m.ConfirmedPickupDate,
		&m.ExpectedReturnDate,
		&m.ActualPickupDate,
		&m.ActualReturnDate,
		&m.BorrowerMessage,
		&m.LenderMessage,
		&m.RejectionReason,
		&m.ExtensionRequested,
		&m.ExtensionNewDate,
		&m.ExtensionMessage,
		&m.ReturnCondition,
		&m.ReturnNotes,
		&m.ReturnDamagePhotoURL,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.ConfirmedAt,
		&m.RejectedAt,
		&m.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateTransaction persists a new transaction in requested status.
func (r *PgxTransactionRepository) CreateTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)

	query := `
		INSERT INTO transactions (transaction_id, tenant_id, listing_id, borrower_id, lender_id, quantity, status, proposed_pickup_date, proposed_return_date, borrower_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.pool.Exec(ctx, query,
		m.TransactionID,
		m.TenantID,
		m.ListingID,
		m.BorrowerID,
		m.LenderID,
		m.Quantity,
		m.Status,
		m.ProposedPickupDate,
		m.ProposedReturnDate,
		m.BorrowerMessage,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: transaction with ID %s already exists", apperrors.ErrDuplicate, m.TransactionID)
		}
		return fmt.Errorf("failed to save transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// FindTransactionByID retrieves a transaction by ID within a tenant.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, tenantID, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 AND tenant_id = $2;`

	m, err := scanTransaction(r.pool.QueryRow(ctx, query, transactionID, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}

	txn := mapping.ToDomainTransaction(*m)
	return &txn, nil
}

// TransitionStatus applies patch to the transaction only when its current
// status equals expected. The status predicate makes the flip a compare-and-
// swap: of two concurrent attempts exactly one matches the row, the other
// affects zero rows and gets ErrInvalidState. Nil patch fields keep the
// stored value via COALESCE, so each stage column is written exactly once.
func (r *PgxTransactionRepository) TransitionStatus(ctx context.Context, transactionID string, expected domain.TransactionStatus, patch portsrepo.TransactionPatch) (*domain.Transaction, error) {
	var returnCondition *string
	if patch.ReturnCondition != nil {
		c := string(*patch.ReturnCondition)
		returnCondition = &c
	}

	query := `
		UPDATE transactions
		SET status = $3,
		    confirmed_pickup_date = COALESCE($4, confirmed_pickup_date),
		    expected_return_date = COALESCE($5, expected_return_date),
		    actual_pickup_date = COALESCE($6, actual_pickup_date),
		    actual_return_date = COALESCE($7, actual_return_date),
		    lender_message = COALESCE($8, lender_message),
		    rejection_reason = COALESCE($9, rejection_reason),
		    return_condition = COALESCE($10, return_condition),
		    return_notes = COALESCE($11, return_notes),
		    return_damage_photo_url = COALESCE($12, return_damage_photo_url),
		    confirmed_at = COALESCE($13, confirmed_at),
		    rejected_at = COALESCE($14, rejected_at),
		    completed_at = COALESCE($15, completed_at),
		    updated_at = $16
		WHERE transaction_id = $1 AND status = $2
		RETURNING ` + transactionColumns + `;
	`
	m, err := scanTransaction(r.pool.QueryRow(ctx, query,
		transactionID,
		string(expected),
		string(patch.Status),
		patch.ConfirmedPickupDate,
		patch.ExpectedReturnDate,
		patch.ActualPickupDate,
		patch.ActualReturnDate,
		patch.LenderMessage,
		patch.RejectionReason,
		returnCondition,
		patch.ReturnNotes,
		patch.ReturnDamagePhotoURL,
		patch.ConfirmedAt,
		patch.RejectedAt,
		patch.CompletedAt,
		patch.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s is not %s", apperrors.ErrInvalidState, transactionID, expected)
		}
		return nil, fmt.Errorf("failed to transition transaction %s to %s: %w", transactionID, patch.Status, err)
	}

	txn := mapping.ToDomainTransaction(*m)
	return &txn, nil
}

// RequestExtension records an outstanding extension request. The predicate
// requires status picked_up and no extension already pending.
func (r *PgxTransactionRepository) RequestExtension(ctx context.Context, transactionID string, newDate time.Time, message *string, updatedAt time.Time) error {
	query := `
		UPDATE transactions
		SET extension_requested = TRUE, extension_new_date = $2, extension_message = $3, updated_at = $4
		WHERE transaction_id = $1 AND status = 'picked_up' AND extension_requested = FALSE;
	`
	tag, err := r.pool.Exec(ctx, query, transactionID, newDate, message, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to request extension on transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s has no extendable return date", apperrors.ErrInvalidState, transactionID)
	}
	return nil
}

// ResolveExtension clears the outstanding extension request. When approved
// the expected return date moves to the requested date.
func (r *PgxTransactionRepository) ResolveExtension(ctx context.Context, transactionID string, approve bool, updatedAt time.Time) error {
	query := `
		UPDATE transactions
		SET expected_return_date = CASE WHEN $2 THEN extension_new_date ELSE expected_return_date END,
		    extension_requested = FALSE,
		    extension_new_date = NULL,
		    extension_message = NULL,
		    updated_at = $3
		WHERE transaction_id = $1 AND extension_requested = TRUE;
	`
	tag, err := r.pool.Exec(ctx, query, transactionID, approve, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to resolve extension on transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s has no pending extension", apperrors.ErrInvalidState, transactionID)
	}
	return nil
}

// ListTransactionsForUser retrieves a page of transactions where the user is
// borrower or lender, newest first, using keyset pagination on
// (created_at, transaction_id).
func (r *PgxTransactionRepository) ListTransactionsForUser(ctx context.Context, tenantID, userID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE tenant_id = $1 AND (borrower_id = $2 OR lender_id = $2)
	`
	args := []any{tenantID, userID}

	if nextToken != nil {
		createdAt, transactionID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		args = append(args, createdAt, transactionID)
		query += fmt.Sprintf(` AND (created_at, transaction_id) < ($%d, $%d)`, len(args)-1, len(args))
	}

	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY created_at DESC, transaction_id DESC LIMIT $%d;`, len(args))

	return r.queryTransactionPage(ctx, query, args, limit)
}

// ListCompletedByListing retrieves the completed exchange history of a listing.
func (r *PgxTransactionRepository) ListCompletedByListing(ctx context.Context, tenantID, listingID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE tenant_id = $1 AND listing_id = $2 AND status = 'completed'
	`
	args := []any{tenantID, listingID}

	if nextToken != nil {
		createdAt, transactionID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		args = append(args, createdAt, transactionID)
		query += fmt.Sprintf(` AND (created_at, transaction_id) < ($%d, $%d)`, len(args)-1, len(args))
	}

	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY created_at DESC, transaction_id DESC LIMIT $%d;`, len(args))

	return r.queryTransactionPage(ctx, query, args, limit)
}

func (r *PgxTransactionRepository) queryTransactionPage(ctx context.Context, query string, args []any, limit int) ([]domain.Transaction, *string, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	var nextToken *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		nextToken = &token
	}

	return mapping.ToDomainTransactionSlice(txns), nextToken, nil
}

// FindPendingRequest retrieves the borrower's open requested transaction on a
// listing, if any.
func (r *PgxTransactionRepository) FindPendingRequest(ctx context.Context, tenantID, listingID, borrowerID string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE tenant_id = $1 AND listing_id = $2 AND borrower_id = $3 AND status = 'requested'
		ORDER BY created_at DESC
		LIMIT 1;
	`
	m, err := scanTransaction(r.pool.QueryRow(ctx, query, tenantID, listingID, borrowerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find pending request on listing %s: %w", listingID, err)
	}

	txn := mapping.ToDomainTransaction(*m)
	return &txn, nil
}

// ListAwaitingReturn retrieves picked_up transactions with an expected return
// date, across all tenants. The return-date sweep walks this set.
func (r *PgxTransactionRepository) ListAwaitingReturn(ctx context.Context) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = 'picked_up' AND expected_return_date IS NOT NULL
		ORDER BY expected_return_date;
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions awaiting return: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return mapping.ToDomainTransactionSlice(txns), nil
}
