package domain

import "time"

// User represents a resident account in the domain.
type User struct {
	UserID            string  `json:"userID"` // Primary Key (e.g., UUID)
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	ProfilePictureURL *string `json:"profilePictureURL,omitempty"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"` // Used for soft delete
}
