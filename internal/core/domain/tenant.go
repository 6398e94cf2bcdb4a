package domain

import "time"

// Tenant represents an isolated community (HOA / neighborhood) containing
// listings, transactions and notifications.
type Tenant struct {
	TenantID    string `json:"tenantID"` // Primary Key (e.g., UUID)
	Name        string `json:"name"`
	Slug        string `json:"slug"` // URL-safe identifier, unique
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}

// TenantRole defines the possible roles a user can have within a tenant.
type TenantRole string

const (
	RoleAdmin    TenantRole = "ADMIN"
	RoleResident TenantRole = "RESIDENT"
	RoleRemoved  TenantRole = "REMOVED" // For users who have been removed from the tenant
)

// TenantMembership represents the membership of a User in a Tenant.
type TenantMembership struct {
	UserID   string     `json:"userID"`   // FK -> users.user_id
	UserName string     `json:"userName"` // Name of the user
	TenantID string     `json:"tenantID"` // FK -> tenants.tenant_id
	Role     TenantRole `json:"role"`
	JoinedAt time.Time  `json:"joinedAt"`
}
