package models

import "time"

// User is the DB representation of an individual account.
type User struct {
	UserID       string `db:"user_id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Balance      int64  `db:"balance"` // Minor units
	IsActive     bool   `db:"is_active"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"` // Soft delete marker
}
