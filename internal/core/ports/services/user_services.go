package services

import (
	"context"

	"github.com/moneypools/money_pools_app/internal/core/domain"
	"github.com/moneypools/money_pools_app/internal/dto"
)

// UserSvcFacade defines the operations for managing individual accounts.
type UserSvcFacade interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	// GetUserByEmail returns the user including its password hash; used by
	// the auth handler for credential checks.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, updaterUserID string) (*domain.User, error)
	DeleteUser(ctx context.Context, userID string, deleterUserID string) error
}
