package domain

import "time"

// AuditFields carries the creation and last-update trail embedded in every
// audited entity. CreatedBy and LastUpdatedBy hold user IDs; for listings
// the creator doubles as the lender.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}
