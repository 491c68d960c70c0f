package repositories

import (
	"context"

	"github.com/moneypools/money_pools_app/internal/core/domain"
)

// TransferRepositoryFacade persists transfer records and applies their
// balance adjustments. SaveTransfer is the system's single atomic unit of
// work: the record append and every balance increment commit together or
// not at all, and account balances are never written outside of it.
type TransferRepositoryFacade interface {
	// SaveTransfer appends the transfer record and applies its balance
	// deltas inside one database transaction. It returns the post-commit
	// balances of every affected account. A missing party account maps to
	// apperrors.ErrNotFound, an overdraw with negative balances disabled to
	// apperrors.ErrInsufficientFunds; in both cases nothing is persisted.
	SaveTransfer(ctx context.Context, transfer domain.Transfer) ([]domain.AccountBalance, error)

	FindTransferByID(ctx context.Context, transferID string) (*domain.Transfer, error)
	// FindTransferByIdempotencyKey returns the committed transfer recorded
	// under the given caller-supplied key, or apperrors.ErrNotFound.
	FindTransferByIdempotencyKey(ctx context.Context, key string) (*domain.Transfer, error)
	ListTransfersByUserID(ctx context.Context, userID string, limit int, offset int) ([]domain.Transfer, error)
	ListTransfersByPoolID(ctx context.Context, poolID string, limit int, offset int) ([]domain.Transfer, error)
}
