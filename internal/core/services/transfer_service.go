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
	ErrSelfTransfer = errors.New("source and destination must be different accounts")
)

// transferService implements the ledger transfer engine: it validates
// transfer requests and executes them through the repository's atomic unit
// of work.
type transferService struct {
	BaseService
	transferRepo portsrepo.TransferRepositoryFacade
}

// NewTransferService creates a new transfer service.
func NewTransferService(transferRepo portsrepo.TransferRepositoryFacade) portssvc.TransferSvcFacade {
	return &transferService{transferRepo: transferRepo}
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

// validateTransfer checks the request's shape and business rules. It is
// purely functional over the input; no state is touched before it passes.
func (s *transferService) validateTransfer(req dto.CreateTransferRequest) error {
	if req.Amount <= 0 {
		return fmt.Errorf("%w: amount must be a positive number of minor units", apperrors.ErrValidation)
	}

	kind := domain.TransferKind(req.Kind)
	if !kind.IsValid() {
		return fmt.Errorf("%w: %s: %q", apperrors.ErrValidation, domain.ErrInvalidKind, req.Kind)
	}

	if err := req.Parties().Validate(kind); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}

	if req.FromUserID != nil && req.ToUserID != nil && *req.FromUserID == *req.ToUserID {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrSelfTransfer)
	}
	if req.FromPoolID != nil && req.ToPoolID != nil && *req.FromPoolID == *req.ToPoolID {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrSelfTransfer)
	}

	return nil
}

// checkDeltaInvariant verifies that the expanded balance deltas conserve
// money: sources lose exactly the amount destinations gain, and the total
// sums to zero. A failure here means a bug in the party signature logic; it
// aborts before any storage work.
func checkDeltaInvariant(transfer domain.Transfer) error {
	var total, debited, credited int64
	for _, d := range transfer.BalanceDeltas() {
		total += d.Delta
		if d.Delta < 0 {
			debited -= d.Delta
		} else {
			credited += d.Delta
		}
	}
	if total != 0 || debited != transfer.Amount || credited != transfer.Amount {
		return fmt.Errorf("%w: transfer %s deltas sum to %d (debited %d, credited %d, amount %d)",
			apperrors.ErrInvariantViolation, transfer.TransferID, total, debited, credited, transfer.Amount)
	}
	return nil
}

// CreateTransfer validates the request and executes it as one atomic unit:
// the transfer record is appended and every affected balance adjusted
// together, or nothing persists at all.
func (s *transferService) CreateTransfer(ctx context.Context, req dto.CreateTransferRequest, creatorUserID string) (*domain.Transfer, []domain.AccountBalance, error) {
	if err := s.validateTransfer(req); err != nil {
		return nil, nil, err
	}

	// Idempotency fast path: a replayed key returns the transfer that was
	// already committed instead of moving money twice.
	if req.IdempotencyKey != nil && *req.IdempotencyKey != "" {
		existing, err := s.transferRepo.FindTransferByIdempotencyKey(ctx, *req.IdempotencyKey)
		if err == nil {
			s.LogInfo(ctx, "Idempotent transfer replay detected", slog.String("transfer_id", existing.TransferID))
			return existing, nil, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, err
		}
	}

	transfer := domain.Transfer{
		TransferID:      uuid.NewString(),
		TransferParties: req.Parties(),
		Amount:          req.Amount,
		Description:     req.Description,
		Kind:            domain.TransferKind(req.Kind),
		IdempotencyKey:  req.IdempotencyKey,
		CreatedAt:       time.Now().UTC(),
		CreatedBy:       creatorUserID,
	}

	if err := checkDeltaInvariant(transfer); err != nil {
		s.LogError(ctx, err, "Transfer delta invariant check failed", slog.String("transfer_id", transfer.TransferID))
		return nil, nil, err
	}

	balances, err := s.transferRepo.SaveTransfer(ctx, transfer)
	if err != nil {
		// A duplicate on the idempotency index means a concurrent request
		// with the same key won the race; return its committed transfer.
		if errors.Is(err, apperrors.ErrDuplicate) && transfer.IdempotencyKey != nil {
			existing, findErr := s.transferRepo.FindTransferByIdempotencyKey(ctx, *transfer.IdempotencyKey)
			if findErr == nil {
				s.LogInfo(ctx, "Idempotent transfer replay detected after conflict", slog.String("transfer_id", existing.TransferID))
				return existing, nil, nil
			}
		}
		s.LogError(ctx, err, "Failed to execute transfer", slog.String("transfer_id", transfer.TransferID), slog.String("kind", string(transfer.Kind)))
		return nil, nil, err
	}

	s.LogInfo(ctx, "Transfer committed",
		slog.String("transfer_id", transfer.TransferID),
		slog.String("kind", string(transfer.Kind)),
		slog.Int64("amount", transfer.Amount))
	return &transfer, balances, nil
}

// GetTransferByID retrieves a single committed transfer.
func (s *transferService) GetTransferByID(ctx context.Context, transferID string) (*domain.Transfer, error) {
	transfer, err := s.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transfer", slog.String("transfer_id", transferID))
		}
		return nil, err
	}
	return transfer, nil
}

// ListTransfersByUser returns the user's committed transfer history, most
// recent first.
func (s *transferService) ListTransfersByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Transfer, error) {
	transfers, err := s.transferRepo.ListTransfersByUserID(ctx, userID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transfers for user", slog.String("user_id", userID))
		return nil, err
	}
	return transfers, nil
}

// ListTransfersByPool returns the pool's committed transfer history, most
// recent first.
func (s *transferService) ListTransfersByPool(ctx context.Context, poolID string, limit int, offset int) ([]domain.Transfer, error) {
	transfers, err := s.transferRepo.ListTransfersByPoolID(ctx, poolID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transfers for pool", slog.String("pool_id", poolID))
		return nil, err
	}
	return transfers, nil
}
