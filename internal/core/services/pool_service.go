package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/moneypools/money_pools_app/internal/apperrors"
	"github.com/moneypools/money_pools_app/internal/core/domain"
	portsrepo "github.com/moneypools/money_pools_app/internal/core/ports/repositories"
	portssvc "github.com/moneypools/money_pools_app/internal/core/ports/services"
	"github.com/moneypools/money_pools_app/internal/dto"
)

var (
	ErrLastAdmin = errors.New("cannot remove the only admin of a pool with no other members")
)

// poolService implements pool and membership management.
type poolService struct {
	BaseService
	poolRepo portsrepo.PoolRepositoryFacade
	userRepo portsrepo.UserReader
}

// NewPoolService creates a new pool service.
func NewPoolService(poolRepo portsrepo.PoolRepositoryFacade, userRepo portsrepo.UserReader) portssvc.PoolSvcFacade {
	return &poolService{poolRepo: poolRepo, userRepo: userRepo}
}

var _ portssvc.PoolSvcFacade = (*poolService)(nil)

// AuthorizePoolAction returns nil when userID holds at least requiredRole
// in the pool. Non-members are rejected with ErrForbidden.
func (s *poolService) AuthorizePoolAction(ctx context.Context, userID string, poolID string, requiredRole domain.PoolRole) error {
	member, err := s.poolRepo.FindPoolMember(ctx, poolID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: user is not a member of pool %s", apperrors.ErrForbidden, poolID)
		}
		return err
	}

	if requiredRole == domain.RoleAdmin && member.Role != domain.RoleAdmin {
		return fmt.Errorf("%w: action requires pool admin role", apperrors.ErrForbidden)
	}
	return nil
}

// CreatePool creates a new pool with a zero balance, enrolls the creator as
// admin, and enrolls any requested member emails that resolve to existing
// users. Unresolvable emails are returned, not treated as an error.
func (s *poolService) CreatePool(ctx context.Context, req dto.CreatePoolRequest, creatorUserID string) (*domain.Pool, []string, error) {
	now := time.Now().UTC()
	poolID := uuid.NewString()

	pool := domain.Pool{
		PoolID:      poolID,
		Name:        req.Name,
		Description: req.Description,
		Balance:     0,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	creatorMembership := domain.PoolMember{
		PoolID:   poolID,
		UserID:   creatorUserID,
		Role:     domain.RoleAdmin,
		JoinedAt: now,
	}

	if err := s.poolRepo.SavePool(ctx, pool, creatorMembership); err != nil {
		s.LogError(ctx, err, "Failed to save pool", slog.String("pool_id", poolID))
		return nil, nil, err
	}

	nonExistent := []string{}
	if len(req.MemberEmails) > 0 {
		usersByEmail, err := s.userRepo.FindUsersByEmails(ctx, req.MemberEmails)
		if err != nil {
			s.LogError(ctx, err, "Failed to resolve member emails", slog.String("pool_id", poolID))
			return nil, nil, err
		}

		for _, email := range req.MemberEmails {
			user, found := usersByEmail[email]
			if !found {
				nonExistent = append(nonExistent, email)
				continue
			}
			if user.UserID == creatorUserID {
				continue // Creator is already enrolled as admin
			}
			membership := domain.PoolMember{
				PoolID:   poolID,
				UserID:   user.UserID,
				Role:     domain.RoleMember,
				JoinedAt: now,
			}
			if err := s.poolRepo.AddPoolMember(ctx, membership); err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
				s.LogError(ctx, err, "Failed to enroll member", slog.String("pool_id", poolID), slog.String("member_user_id", user.UserID))
				return nil, nil, err
			}
		}
	}

	s.LogInfo(ctx, "Pool created", slog.String("pool_id", poolID), slog.String("creator_id", creatorUserID))
	return &pool, nonExistent, nil
}

// ListUserPools retrieves all active pools the user belongs to.
func (s *poolService) ListUserPools(ctx context.Context, userID string) ([]domain.Pool, error) {
	pools, err := s.poolRepo.ListPoolsByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list pools for user", slog.String("user_id", userID))
		return nil, err
	}
	return pools, nil
}

// GetPoolWithMembers retrieves a pool and its memberships. The requesting
// user must be a member.
func (s *poolService) GetPoolWithMembers(ctx context.Context, poolID string, requestingUserID string) (*domain.Pool, []domain.PoolMember, error) {
	if err := s.AuthorizePoolAction(ctx, requestingUserID, poolID, domain.RoleMember); err != nil {
		return nil, nil, err
	}

	pool, err := s.poolRepo.FindPoolByID(ctx, poolID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find pool", slog.String("pool_id", poolID))
		}
		return nil, nil, err
	}

	members, err := s.poolRepo.ListPoolMembers(ctx, poolID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list pool members", slog.String("pool_id", poolID))
		return nil, nil, err
	}

	return pool, members, nil
}

// UpdatePool applies name/description changes. Requires admin role.
func (s *poolService) UpdatePool(ctx context.Context, poolID string, req dto.UpdatePoolRequest, updaterUserID string) (*domain.Pool, error) {
	if err := s.AuthorizePoolAction(ctx, updaterUserID, poolID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	pool, err := s.poolRepo.FindPoolByID(ctx, poolID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		pool.Name = *req.Name
	}
	if req.Description != nil {
		pool.Description = *req.Description
	}
	pool.LastUpdatedAt = time.Now().UTC()
	pool.LastUpdatedBy = updaterUserID

	if err := s.poolRepo.UpdatePool(ctx, *pool); err != nil {
		s.LogError(ctx, err, "Failed to update pool", slog.String("pool_id", poolID))
		return nil, err
	}

	s.LogInfo(ctx, "Pool updated", slog.String("pool_id", poolID))
	return pool, nil
}

// DeactivatePool soft-deletes a pool. Requires admin role.
func (s *poolService) DeactivatePool(ctx context.Context, poolID string, requestingUserID string) error {
	if err := s.AuthorizePoolAction(ctx, requestingUserID, poolID, domain.RoleAdmin); err != nil {
		return err
	}

	if err := s.poolRepo.DeactivatePool(ctx, poolID, requestingUserID, time.Now().UTC()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to deactivate pool", slog.String("pool_id", poolID))
		}
		return err
	}

	s.LogInfo(ctx, "Pool deactivated", slog.String("pool_id", poolID))
	return nil
}

// AddMember enrolls the user with the given email into the pool. Requires
// admin role.
func (s *poolService) AddMember(ctx context.Context, poolID string, req dto.AddPoolMemberRequest, addingUserID string) (*domain.PoolMember, error) {
	if err := s.AuthorizePoolAction(ctx, addingUserID, poolID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	if _, err := s.poolRepo.FindPoolByID(ctx, poolID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no user with the given email", apperrors.ErrNotFound)
		}
		return nil, err
	}

	membership := domain.PoolMember{
		PoolID:   poolID,
		UserID:   user.UserID,
		UserName: user.Name,
		Email:    user.Email,
		Role:     req.Role,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.poolRepo.AddPoolMember(ctx, membership); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to add pool member", slog.String("pool_id", poolID), slog.String("member_user_id", user.UserID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Pool member added", slog.String("pool_id", poolID), slog.String("member_user_id", user.UserID))
	return &membership, nil
}

// RemoveMember removes a member from the pool. Requires admin role. When
// the removed member is the last admin, the admin role is handed to another
// member first; removing the only member of a pool is rejected so no active
// pool is left without an admin.
func (s *poolService) RemoveMember(ctx context.Context, poolID string, targetUserID string, requestingUserID string) error {
	if err := s.AuthorizePoolAction(ctx, requestingUserID, poolID, domain.RoleAdmin); err != nil {
		return err
	}

	target, err := s.poolRepo.FindPoolMember(ctx, poolID, targetUserID)
	if err != nil {
		return err
	}

	if target.Role == domain.RoleAdmin {
		members, err := s.poolRepo.ListPoolMembers(ctx, poolID)
		if err != nil {
			return err
		}

		var successor *domain.PoolMember
		hasOtherAdmin := false
		for i := range members {
			if members[i].UserID == targetUserID {
				continue
			}
			if members[i].Role == domain.RoleAdmin {
				hasOtherAdmin = true
				break
			}
			if successor == nil {
				successor = &members[i]
			}
		}

		if !hasOtherAdmin {
			if successor == nil {
				return fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrLastAdmin)
			}
			if err := s.poolRepo.UpdatePoolMemberRole(ctx, poolID, successor.UserID, domain.RoleAdmin); err != nil {
				return err
			}
			s.LogInfo(ctx, "Admin role handed over", slog.String("pool_id", poolID), slog.String("new_admin_user_id", successor.UserID))
		}
	}

	if err := s.poolRepo.RemovePoolMember(ctx, poolID, targetUserID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to remove pool member", slog.String("pool_id", poolID), slog.String("member_user_id", targetUserID))
		}
		return err
	}

	s.LogInfo(ctx, "Pool member removed", slog.String("pool_id", poolID), slog.String("member_user_id", targetUserID))
	return nil
}

// ChangeMemberRole changes a member's role. Requires admin role.
func (s *poolService) ChangeMemberRole(ctx context.Context, poolID string, targetUserID string, newRole domain.PoolRole, requestingUserID string) error {
	if !newRole.IsValid() {
		return fmt.Errorf("%w: invalid pool role %q", apperrors.ErrValidation, newRole)
	}

	if err := s.AuthorizePoolAction(ctx, requestingUserID, poolID, domain.RoleAdmin); err != nil {
		return err
	}

	if _, err := s.poolRepo.FindPoolMember(ctx, poolID, targetUserID); err != nil {
		return err
	}

	if err := s.poolRepo.UpdatePoolMemberRole(ctx, poolID, targetUserID, newRole); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to change member role", slog.String("pool_id", poolID), slog.String("member_user_id", targetUserID))
		}
		return err
	}

	s.LogInfo(ctx, "Pool member role changed", slog.String("pool_id", poolID), slog.String("member_user_id", targetUserID), slog.String("new_role", string(newRole)))
	return nil
}
