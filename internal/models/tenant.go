package models

import "time"

// Tenant represents a community row.
type Tenant struct {
	TenantID    string `db:"tenant_id"`
	Name        string `db:"name"`
	Slug        string `db:"slug"`
	Description string `db:"description"`
	IsActive    bool   `db:"is_active"`
	AuditFields
}

// TenantMembership joins a user to a tenant with a role.
type TenantMembership struct {
	UserID   string    `db:"user_id"`
	TenantID string    `db:"tenant_id"`
	Role     string    `db:"role"`
	JoinedAt time.Time `db:"joined_at"`
}
