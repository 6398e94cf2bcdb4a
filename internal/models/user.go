package models

import (
	"time"
)

// User represents a resident account row.
type User struct {
	UserID            string  `db:"user_id"`
	Name              string  `db:"name"`
	Email             string  `db:"email"`
	PasswordHash      string  `db:"password_hash"`
	ProfilePictureURL *string `db:"profile_picture_url"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}
