package repositories

import (
	"context"
	"time"

	"github.com/moneypools/money_pools_app/internal/core/domain"
)

// PoolReader provides read-only access to pool records and memberships.
type PoolReader interface {
	FindPoolByID(ctx context.Context, poolID string) (*domain.Pool, error)
	ListPoolsByUserID(ctx context.Context, userID string) ([]domain.Pool, error)
	FindPoolMember(ctx context.Context, poolID string, userID string) (*domain.PoolMember, error)
	ListPoolMembers(ctx context.Context, poolID string) ([]domain.PoolMember, error)
}

// PoolWriter provides mutation access to pool records and memberships.
// Pool balance columns change only through the transfer repository.
type PoolWriter interface {
	// SavePool persists a new pool together with its creator's admin
	// membership in a single transaction.
	SavePool(ctx context.Context, pool domain.Pool, creatorMembership domain.PoolMember) error
	UpdatePool(ctx context.Context, pool domain.Pool) error
	DeactivatePool(ctx context.Context, poolID string, userID string, now time.Time) error
	AddPoolMember(ctx context.Context, membership domain.PoolMember) error
	UpdatePoolMemberRole(ctx context.Context, poolID string, userID string, role domain.PoolRole) error
	RemovePoolMember(ctx context.Context, poolID string, userID string) error
}

// PoolRepositoryFacade combines all pool repository capabilities.
type PoolRepositoryFacade interface {
	PoolReader
	PoolWriter
}
