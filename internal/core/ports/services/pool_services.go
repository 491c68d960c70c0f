package services

import (
	"context"

	"github.com/moneypools/money_pools_app/internal/core/domain"
	"github.com/moneypools/money_pools_app/internal/dto"
)

// PoolAuthorizerSvc checks whether a user may act on a pool.
type PoolAuthorizerSvc interface {
	// AuthorizePoolAction returns nil when userID holds at least
	// requiredRole in the pool, apperrors.ErrForbidden otherwise.
	AuthorizePoolAction(ctx context.Context, userID string, poolID string, requiredRole domain.PoolRole) error
}

// PoolSvcFacade defines the operations for managing shared pools and their
// memberships.
type PoolSvcFacade interface {
	PoolAuthorizerSvc

	// CreatePool creates a pool with the creator enrolled as admin and any
	// resolvable member emails enrolled as members. The second return value
	// lists requested emails that matched no existing user.
	CreatePool(ctx context.Context, req dto.CreatePoolRequest, creatorUserID string) (*domain.Pool, []string, error)
	ListUserPools(ctx context.Context, userID string) ([]domain.Pool, error)
	GetPoolWithMembers(ctx context.Context, poolID string, requestingUserID string) (*domain.Pool, []domain.PoolMember, error)
	UpdatePool(ctx context.Context, poolID string, req dto.UpdatePoolRequest, updaterUserID string) (*domain.Pool, error)
	DeactivatePool(ctx context.Context, poolID string, requestingUserID string) error
	AddMember(ctx context.Context, poolID string, req dto.AddPoolMemberRequest, addingUserID string) (*domain.PoolMember, error)
	RemoveMember(ctx context.Context, poolID string, targetUserID string, requestingUserID string) error
	ChangeMemberRole(ctx context.Context, poolID string, targetUserID string, newRole domain.PoolRole, requestingUserID string) error
}
