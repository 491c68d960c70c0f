package services

import (
	"context"

	"github.com/moneypools/money_pools_app/internal/core/domain"
	"github.com/moneypools/money_pools_app/internal/dto"
)

// TransferSvcFacade defines the ledger transfer engine and its read side.
type TransferSvcFacade interface {
	// CreateTransfer validates the request and executes it as one atomic
	// unit of work. On success it returns the committed transfer record and
	// the post-commit balances of every affected account. On any failure
	// nothing is persisted.
	CreateTransfer(ctx context.Context, req dto.CreateTransferRequest, creatorUserID string) (*domain.Transfer, []domain.AccountBalance, error)

	GetTransferByID(ctx context.Context, transferID string) (*domain.Transfer, error)
	ListTransfersByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Transfer, error)
	ListTransfersByPool(ctx context.Context, poolID string, limit int, offset int) ([]domain.Transfer, error)
}
