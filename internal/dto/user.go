package dto

import (
	"time"

	"github.com/moneypools/money_pools_app/internal/core/domain"
)

// CreateUserRequest is the service-level payload for creating a user.
// The password arrives pre-hashed; handlers never pass plaintext down.
type CreateUserRequest struct {
	Name         string
	Email        string
	PasswordHash string
}

// UpdateUserRequest is the payload for updating a user's profile.
// Nil fields are left unchanged. Balance is deliberately absent: balances
// move only through the transfer engine.
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty" binding:"omitempty,email"`
}

// UserResponse is the API representation of a user.
type UserResponse struct {
	UserID           string    `json:"userID"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Balance          int64     `json:"balance"`
	BalanceFormatted string    `json:"balanceFormatted"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ListUsersResponse wraps a page of users.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// ToUserResponse maps a domain user to its API representation.
func ToUserResponse(u domain.User, formatBalance func(int64) string) UserResponse {
	return UserResponse{
		UserID:           u.UserID,
		Name:             u.Name,
		Email:            u.Email,
		Balance:          u.Balance,
		BalanceFormatted: formatBalance(u.Balance),
		IsActive:         u.IsActive,
		CreatedAt:        u.CreatedAt,
	}
}
