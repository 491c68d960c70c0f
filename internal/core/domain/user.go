package domain

import "time"

// User represents an individual account holding a minor-unit balance.
type User struct {
	UserID       string `json:"userID"` // Primary Key (UUID)
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`       // Never serialized
	Balance      int64  `json:"balance"` // Minor units; mutated only via the transfer engine
	IsActive     bool   `json:"isActive"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Used for soft delete
}
