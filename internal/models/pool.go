package models

import "time"

// Pool is the DB representation of a shared group account.
type Pool struct {
	PoolID      string `db:"pool_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Balance     int64  `db:"balance"` // Minor units
	IsActive    bool   `db:"is_active"`
	AuditFields
}

// PoolMember is the DB representation of a pool membership row.
type PoolMember struct {
	PoolID       string    `db:"pool_id"`
	UserID       string    `db:"user_id"`
	Role         string    `db:"role"`
	Contribution int64     `db:"contribution"` // Minor units
	JoinedAt     time.Time `db:"joined_at"`
}
