package domain

import "time"

// Pool represents a shared group account holding a minor-unit balance.
type Pool struct {
	PoolID      string `json:"poolID"` // Primary Key (UUID)
	Name        string `json:"name"`
	Description string `json:"description"`
	Balance     int64  `json:"balance"` // Minor units; mutated only via the transfer engine
	IsActive    bool   `json:"isActive"`
	AuditFields
}

// PoolRole defines the possible roles a user can have within a pool.
type PoolRole string

const (
	RoleAdmin  PoolRole = "ADMIN"
	RoleMember PoolRole = "MEMBER"
)

// IsValid reports whether the role is one of the recognized pool roles.
func (r PoolRole) IsValid() bool {
	return r == RoleAdmin || r == RoleMember
}

// PoolMember represents the membership of a User in a Pool.
type PoolMember struct {
	PoolID       string    `json:"poolID"`
	UserID       string    `json:"userID"`
	UserName     string    `json:"userName,omitempty"`
	Email        string    `json:"email,omitempty"`
	Role         PoolRole  `json:"role"`
	Contribution int64     `json:"contribution"` // Total contributed to the pool, minor units
	JoinedAt     time.Time `json:"joinedAt"`
}
