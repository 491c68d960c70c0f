package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/moneypools/money_pools_app/internal/apperrors"
	"github.com/moneypools/money_pools_app/internal/core/domain"
	portsrepo "github.com/moneypools/money_pools_app/internal/core/ports/repositories"
	portssvc "github.com/moneypools/money_pools_app/internal/core/ports/services"
	"github.com/moneypools/money_pools_app/internal/dto"
)

// userService implements user account management.
type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// CreateUser registers a new user with a zero starting balance.
func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	now := time.Now().UTC()
	userID := uuid.NewString()

	user := domain.User{
		UserID:       userID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		Balance:      0,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID, // Self-registration
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save user", slog.String("user_id", userID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "User created", slog.String("user_id", userID))
	return &user, nil
}

// GetUserByID retrieves a user by its ID.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find user", slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email, including the password hash
// for credential checks.
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find user by email")
		}
		return nil, err
	}
	return user, nil
}

// ListUsers retrieves a paginated list of active users.
func (s *userService) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	users, err := s.userRepo.ListUsers(ctx, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list users")
		return nil, err
	}
	return users, nil
}

// UpdateUser applies profile changes to a user. Only the user themselves
// may update their profile.
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, updaterUserID string) (*domain.User, error) {
	if userID != updaterUserID {
		return nil, apperrors.ErrForbidden
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	user.LastUpdatedAt = time.Now().UTC()
	user.LastUpdatedBy = updaterUserID

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to update user", slog.String("user_id", userID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "User updated", slog.String("user_id", userID))
	return user, nil
}

// DeleteUser soft-deletes a user. Only the user themselves may delete
// their account.
func (s *userService) DeleteUser(ctx context.Context, userID string, deleterUserID string) error {
	if userID != deleterUserID {
		return apperrors.ErrForbidden
	}

	if err := s.userRepo.DeleteUser(ctx, userID, deleterUserID, time.Now().UTC()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to delete user", slog.String("user_id", userID))
		}
		return err
	}

	s.LogInfo(ctx, "User deleted", slog.String("user_id", userID))
	return nil
}
