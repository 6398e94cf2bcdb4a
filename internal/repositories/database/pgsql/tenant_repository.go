package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecovilla/exchange_backend/internal/apperrors"
	"github.com/ecovilla/exchange_backend/internal/core/domain"
	portsrepo "github.com/ecovilla/exchange_backend/internal/core/ports/repositories"
	"github.com/ecovilla/exchange_backend/internal/models"
	"github.com/ecovilla/exchange_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const tenantColumns = `tenant_id, name, slug, description, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxTenantRepository struct {
	pool *pgxpool.Pool
}

// newPgxTenantRepository creates a new repository for tenant data.
func newPgxTenantRepository(pool *pgxpool.Pool) portsrepo.TenantRepositoryFacade {
	return &PgxTenantRepository{pool: pool}
}

// Ensure PgxTenantRepository implements portsrepo.TenantRepositoryFacade
var _ portsrepo.TenantRepositoryFacade = (*PgxTenantRepository)(nil)

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var m models.Tenant
	err := row.Scan(
		&m.TenantID,
		&m.Name,
		&m.Slug,
		&m.Description,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveTenant inserts a new tenant.
func (r *PgxTenantRepository) SaveTenant(ctx context.Context, tenant domain.Tenant) error {
	m := mapping.ToModelTenant(tenant)

	query := `
		INSERT INTO tenants (tenant_id, name, slug, description, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.pool.Exec(ctx, query,
		m.TenantID,
		m.Name,
		m.Slug,
		m.Description,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: tenant with slug %s already exists", apperrors.ErrDuplicate, m.Slug)
		}
		return fmt.Errorf("failed to save tenant %s: %w", m.TenantID, err)
	}
	return nil
}

// FindTenantByID retrieves a tenant by its ID.
func (r *PgxTenantRepository) FindTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE tenant_id = $1;`

	m, err := scanTenant(r.pool.QueryRow(ctx, query, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tenant by ID %s: %w", tenantID, err)
	}

	tenant := mapping.ToDomainTenant(*m)
	return &tenant, nil
}

// FindTenantBySlug retrieves a tenant by its URL slug.
func (r *PgxTenantRepository) FindTenantBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE slug = $1;`

	m, err := scanTenant(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tenant by slug %s: %w", slug, err)
	}

	tenant := mapping.ToDomainTenant(*m)
	return &tenant, nil
}

// ListTenantsByUser retrieves all active tenants the user is a member of.
func (r *PgxTenantRepository) ListTenantsByUser(ctx context.Context, userID string) ([]domain.Tenant, error) {
	query := `
		SELECT t.tenant_id, t.name, t.slug, t.description, t.is_active, t.created_at, t.created_by, t.last_updated_at, t.last_updated_by
		FROM tenants t
		JOIN tenant_memberships tm ON tm.tenant_id = t.tenant_id
		WHERE tm.user_id = $1 AND tm.role != $2 AND t.is_active = TRUE
		ORDER BY t.name;
	`
	rows, err := r.pool.Query(ctx, query, userID, string(domain.RoleRemoved))
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants for user %s: %w", userID, err)
	}
	defer rows.Close()

	var tenants []models.Tenant
	for rows.Next() {
		m, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant row: %w", err)
		}
		tenants = append(tenants, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenant rows: %w", err)
	}

	return mapping.ToDomainTenantSlice(tenants), nil
}

// AddUserToTenant creates a membership row.
func (r *PgxTenantRepository) AddUserToTenant(ctx context.Context, membership domain.TenantMembership) error {
	m := mapping.ToModelTenantMembership(membership)

	query := `
		INSERT INTO tenant_memberships (user_id, tenant_id, role, joined_at)
		VALUES ($1, $2, $3, $4);
	`
	_, err := r.pool.Exec(ctx, query, m.UserID, m.TenantID, m.Role, m.JoinedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: user %s is already a member of tenant %s", apperrors.ErrDuplicate, m.UserID, m.TenantID)
		}
		return fmt.Errorf("failed to add user %s to tenant %s: %w", m.UserID, m.TenantID, err)
	}
	return nil
}

// FindUserTenantRole retrieves the membership of a user in a tenant, joined
// with the user's name.
func (r *PgxTenantRepository) FindUserTenantRole(ctx context.Context, userID, tenantID string) (*domain.TenantMembership, error) {
	query := `
		SELECT tm.user_id, u.name, tm.tenant_id, tm.role, tm.joined_at
		FROM tenant_memberships tm
		JOIN users u ON u.user_id = tm.user_id
		WHERE tm.user_id = $1 AND tm.tenant_id = $2;
	`
	var membership domain.TenantMembership
	var role string
	err := r.pool.QueryRow(ctx, query, userID, tenantID).Scan(
		&membership.UserID,
		&membership.UserName,
		&membership.TenantID,
		&role,
		&membership.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find membership of user %s in tenant %s: %w", userID, tenantID, err)
	}
	membership.Role = domain.TenantRole(role)
	return &membership, nil
}

// ListTenantMembers retrieves all non-removed memberships of a tenant.
func (r *PgxTenantRepository) ListTenantMembers(ctx context.Context, tenantID string) ([]domain.TenantMembership, error) {
	query := `
		SELECT tm.user_id, u.name, tm.tenant_id, tm.role, tm.joined_at
		FROM tenant_memberships tm
		JOIN users u ON u.user_id = tm.user_id
		WHERE tm.tenant_id = $1 AND tm.role != $2
		ORDER BY tm.joined_at;
	`
	rows, err := r.pool.Query(ctx, query, tenantID, string(domain.RoleRemoved))
	if err != nil {
		return nil, fmt.Errorf("failed to query members of tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	members := []domain.TenantMembership{}
	for rows.Next() {
		var membership domain.TenantMembership
		var role string
		if err := rows.Scan(&membership.UserID, &membership.UserName, &membership.TenantID, &role, &membership.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", err)
		}
		membership.Role = domain.TenantRole(role)
		members = append(members, membership)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating membership rows: %w", err)
	}

	return members, nil
}

// UpdateUserTenantRole changes a member's role.
func (r *PgxTenantRepository) UpdateUserTenantRole(ctx context.Context, userID, tenantID string, role domain.TenantRole) error {
	query := `
		UPDATE tenant_memberships
		SET role = $3
		WHERE user_id = $1 AND tenant_id = $2;
	`
	tag, err := r.pool.Exec(ctx, query, userID, tenantID, string(role))
	if err != nil {
		return fmt.Errorf("failed to update role of user %s in tenant %s: %w", userID, tenantID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
