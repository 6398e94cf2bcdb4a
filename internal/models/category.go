package models

// Category classifies listings within a tenant.
type Category struct {
	CategoryID   string `db:"category_id"`
	TenantID     string `db:"tenant_id"`
	Name         string `db:"name"`
	Description  string `db:"description"`
	ReturnPolicy string `db:"return_policy"`
	AuditFields
}
