package dto

import (
	"time"

	"github.com/moneypools/money_pools_app/internal/core/domain"
)

// CreatePoolRequest is the payload for creating a pool. MemberEmails may
// list users to enroll immediately; unknown emails are reported back, not
// treated as an error.
type CreatePoolRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	MemberEmails []string `json:"memberEmails" binding:"omitempty,dive,email"`
}

// UpdatePoolRequest is the payload for updating pool details.
type UpdatePoolRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// AddPoolMemberRequest is the payload for enrolling a user into a pool.
type AddPoolMemberRequest struct {
	Email string          `json:"email" binding:"required,email"`
	Role  domain.PoolRole `json:"role" binding:"required,oneof=ADMIN MEMBER"`
}

// ChangeMemberRoleRequest is the payload for changing a member's role.
type ChangeMemberRoleRequest struct {
	Role domain.PoolRole `json:"role" binding:"required,oneof=ADMIN MEMBER"`
}

// PoolResponse is the API representation of a pool.
type PoolResponse struct {
	PoolID           string    `json:"poolID"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Balance          int64     `json:"balance"`
	BalanceFormatted string    `json:"balanceFormatted"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	CreatedBy        string    `json:"createdBy"`
}

// PoolMemberResponse is the API representation of a pool membership.
type PoolMemberResponse struct {
	UserID       string          `json:"userID"`
	UserName     string          `json:"userName,omitempty"`
	Email        string          `json:"email,omitempty"`
	Role         domain.PoolRole `json:"role"`
	Contribution int64           `json:"contribution"`
	JoinedAt     time.Time       `json:"joinedAt"`
}

// PoolWithMembersResponse is a pool together with its memberships.
type PoolWithMembersResponse struct {
	Pool    PoolResponse         `json:"pool"`
	Members []PoolMemberResponse `json:"members"`
}

// ListPoolsResponse wraps the pools the caller belongs to.
type ListPoolsResponse struct {
	Pools []PoolResponse `json:"pools"`
}

// CreatePoolResponse reports the created pool plus any requested member
// emails that did not resolve to existing users.
type CreatePoolResponse struct {
	Pool               PoolResponse `json:"pool"`
	NonExistentMembers []string     `json:"nonExistentMembers,omitempty"`
}

// ToPoolResponse maps a domain pool to its API representation.
func ToPoolResponse(p domain.Pool, formatBalance func(int64) string) PoolResponse {
	return PoolResponse{
		PoolID:           p.PoolID,
		Name:             p.Name,
		Description:      p.Description,
		Balance:          p.Balance,
		BalanceFormatted: formatBalance(p.Balance),
		IsActive:         p.IsActive,
		CreatedAt:        p.CreatedAt,
		CreatedBy:        p.CreatedBy,
	}
}

// ToPoolMemberResponse maps a domain membership to its API representation.
func ToPoolMemberResponse(m domain.PoolMember) PoolMemberResponse {
	return PoolMemberResponse{
		UserID:       m.UserID,
		UserName:     m.UserName,
		Email:        m.Email,
		Role:         m.Role,
		Contribution: m.Contribution,
		JoinedAt:     m.JoinedAt,
	}
}
