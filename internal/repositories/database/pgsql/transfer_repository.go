package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moneypools/money_pools_app/internal/apperrors"
	"github.com/moneypools/money_pools_app/internal/core/domain"
	portsrepo "github.com/moneypools/money_pools_app/internal/core/ports/repositories"
	"github.com/moneypools/money_pools_app/internal/models"
)

type PgxTransferRepository struct {
	BaseRepository
	// allowNegativeBalance is the overdraft policy fixed at construction.
	// When false, source balance updates carry a guard clause so an
	// overdraw fails instead of committing a negative balance.
	allowNegativeBalance bool
}

// NewPgxTransferRepository creates the repository backing the ledger
// transfer engine. All balance mutation in the system goes through it.
func NewPgxTransferRepository(pool *pgxpool.Pool, allowNegativeBalance bool) portsrepo.TransferRepositoryFacade {
	return &PgxTransferRepository{
		BaseRepository:       BaseRepository{Pool: pool},
		allowNegativeBalance: allowNegativeBalance,
	}
}

var _ portsrepo.TransferRepositoryFacade = (*PgxTransferRepository)(nil)

func toModelTransfer(d domain.Transfer) models.Transfer {
	return models.Transfer{
		TransferID:     d.TransferID,
		FromUserID:     d.FromUserID,
		FromPoolID:     d.FromPoolID,
		ToUserID:       d.ToUserID,
		ToPoolID:       d.ToPoolID,
		Amount:         d.Amount,
		Description:    d.Description,
		Kind:           string(d.Kind),
		IdempotencyKey: d.IdempotencyKey,
		CreatedAt:      d.CreatedAt,
		CreatedBy:      d.CreatedBy,
	}
}

func toDomainTransfer(m models.Transfer) domain.Transfer {
	return domain.Transfer{
		TransferID: m.TransferID,
		TransferParties: domain.TransferParties{
			FromUserID: m.FromUserID,
			FromPoolID: m.FromPoolID,
			ToUserID:   m.ToUserID,
			ToPoolID:   m.ToPoolID,
		},
		Amount:         m.Amount,
		Description:    m.Description,
		Kind:           domain.TransferKind(m.Kind),
		IdempotencyKey: m.IdempotencyKey,
		CreatedAt:      m.CreatedAt,
		CreatedBy:      m.CreatedBy,
	}
}

const transferColumns = `transfer_id, from_user_id, from_pool_id, to_user_id, to_pool_id, amount, description, kind, idempotency_key, created_at, created_by`

func scanTransfer(row pgx.Row) (models.Transfer, error) {
	var m models.Transfer
	err := row.Scan(
		&m.TransferID,
		&m.FromUserID,
		&m.FromPoolID,
		&m.ToUserID,
		&m.ToPoolID,
		&m.Amount,
		&m.Description,
		&m.Kind,
		&m.IdempotencyKey,
		&m.CreatedAt,
		&m.CreatedBy,
	)
	return m, err
}

// SaveTransfer appends the transfer record and applies its balance deltas
// inside one database transaction. Steps: insert the record, apply every
// relative balance UPDATE, bump the contribution counter for contribution
// transfers, commit. Any failure rolls the whole unit back; a transfer row
// is only ever observable together with its balance adjustments.
func (r *PgxTransferRepository) SaveTransfer(ctx context.Context, transfer domain.Transfer) ([]domain.AccountBalance, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	m := toModelTransfer(transfer)
	insertQuery := `
		INSERT INTO transfers (transfer_id, from_user_id, from_pool_id, to_user_id, to_pool_id, amount, description, kind, idempotency_key, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = tx.Exec(ctx, insertQuery,
		m.TransferID,
		m.FromUserID,
		m.FromPoolID,
		m.ToUserID,
		m.ToPoolID,
		m.Amount,
		m.Description,
		m.Kind,
		m.IdempotencyKey,
		m.CreatedAt,
		m.CreatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // Unique violation: idempotency key replay
				return nil, fmt.Errorf("%w: transfer with idempotency key already recorded", apperrors.ErrDuplicate)
			case "23503": // FK violation: a party account does not exist
				return nil, fmt.Errorf("%w: transfer references a missing account", apperrors.ErrNotFound)
			}
		}
		return nil, fmt.Errorf("%w: failed to insert transfer %s: %v", apperrors.ErrStorageFailure, m.TransferID, err)
	}

	// Balance changes are expressed as relative increments executed by the
	// database, never as read-modify-write in application memory, so two
	// concurrent transfers on the same account cannot lose an update.
	balances := make([]domain.AccountBalance, 0, 2)
	for _, delta := range transfer.BalanceDeltas() {
		balance, err := r.applyDelta(ctx, tx, delta)
		if err != nil {
			return nil, err
		}
		balances = append(balances, domain.AccountBalance{
			AccountKind: delta.AccountKind,
			AccountID:   delta.AccountID,
			Balance:     balance,
		})
	}

	if transfer.Kind == domain.Contribution {
		if err := r.bumpContribution(ctx, tx, transfer); err != nil {
			return nil, err
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return balances, nil
}

// applyDelta applies one relative balance adjustment and returns the
// resulting balance. A zero-row update means the account is missing, or,
// for guarded decrements, that the overdraft guard blocked the change.
func (r *PgxTransferRepository) applyDelta(ctx context.Context, tx pgx.Tx, delta domain.BalanceDelta) (int64, error) {
	var table, idColumn string
	switch delta.AccountKind {
	case domain.AccountUser:
		table, idColumn = "users", "user_id"
	case domain.AccountPool:
		table, idColumn = "pools", "pool_id"
	default:
		return 0, fmt.Errorf("%w: unknown account kind %q", apperrors.ErrInvariantViolation, delta.AccountKind)
	}

	guarded := delta.Delta < 0 && !r.allowNegativeBalance
	query := fmt.Sprintf(`UPDATE %s SET balance = balance + $1 WHERE %s = $2`, table, idColumn)
	if guarded {
		query += ` AND balance + $1 >= 0`
	}
	query += ` RETURNING balance;`

	var balance int64
	err := tx.QueryRow(ctx, query, delta.Delta, delta.AccountID).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: failed to adjust balance of %s %s: %v", apperrors.ErrStorageFailure, idColumn, delta.AccountID, err)
	}

	if guarded {
		// Distinguish a missing account from a blocked overdraw.
		var exists bool
		existsQuery := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1);`, table, idColumn)
		if err := tx.QueryRow(ctx, existsQuery, delta.AccountID).Scan(&exists); err != nil {
			return 0, fmt.Errorf("%w: failed to check existence of %s %s: %v", apperrors.ErrStorageFailure, idColumn, delta.AccountID, err)
		}
		if exists {
			return 0, fmt.Errorf("%w: %s %s", apperrors.ErrInsufficientFunds, idColumn, delta.AccountID)
		}
	}
	return 0, fmt.Errorf("%w: %s %s", apperrors.ErrNotFound, idColumn, delta.AccountID)
}

// bumpContribution increments the contributing member's running total on
// the membership row, inside the same transaction as the transfer itself.
func (r *PgxTransferRepository) bumpContribution(ctx context.Context, tx pgx.Tx, transfer domain.Transfer) error {
	if transfer.FromUserID == nil || transfer.ToPoolID == nil {
		return fmt.Errorf("%w: contribution transfer without user source and pool destination", apperrors.ErrInvariantViolation)
	}

	query := `
		UPDATE pool_members
		SET contribution = contribution + $1
		WHERE pool_id = $2 AND user_id = $3;
	`
	cmdTag, err := tx.Exec(ctx, query, transfer.Amount, *transfer.ToPoolID, *transfer.FromUserID)
	if err != nil {
		return fmt.Errorf("%w: failed to record contribution for pool %s: %v", apperrors.ErrStorageFailure, *transfer.ToPoolID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s is not a member of pool %s", apperrors.ErrNotFound, *transfer.FromUserID, *transfer.ToPoolID)
	}
	return nil
}

// FindTransferByID retrieves a committed transfer by its ID.
func (r *PgxTransferRepository) FindTransferByID(ctx context.Context, transferID string) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE transfer_id = $1;`

	m, err := scanTransfer(r.Pool.QueryRow(ctx, query, transferID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transfer by ID %s: %w", transferID, err)
	}

	d := toDomainTransfer(m)
	return &d, nil
}

// FindTransferByIdempotencyKey retrieves the committed transfer recorded
// under the given caller-supplied key.
func (r *PgxTransferRepository) FindTransferByIdempotencyKey(ctx context.Context, key string) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE idempotency_key = $1;`

	m, err := scanTransfer(r.Pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transfer by idempotency key: %w", err)
	}

	d := toDomainTransfer(m)
	return &d, nil
}

// ListTransfersByUserID retrieves all committed transfers where the user
// appears as source or destination, most recent first.
func (r *PgxTransferRepository) ListTransfersByUserID(ctx context.Context, userID string, limit int, offset int) ([]domain.Transfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC, transfer_id DESC
		LIMIT $2 OFFSET $3;
	`
	return r.listTransfers(ctx, query, userID, limit, offset)
}

// ListTransfersByPoolID retrieves all committed transfers where the pool
// appears as source or destination, most recent first.
func (r *PgxTransferRepository) ListTransfersByPoolID(ctx context.Context, poolID string, limit int, offset int) ([]domain.Transfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE from_pool_id = $1 OR to_pool_id = $1
		ORDER BY created_at DESC, transfer_id DESC
		LIMIT $2 OFFSET $3;
	`
	return r.listTransfers(ctx, query, poolID, limit, offset)
}

func (r *PgxTransferRepository) listTransfers(ctx context.Context, query string, accountID string, limit int, offset int) ([]domain.Transfer, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.Pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers for account %s: %w", accountID, err)
	}
	defer rows.Close()

	transfers := []domain.Transfer{}
	for rows.Next() {
		m, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer row for account %s: %w", accountID, err)
		}
		transfers = append(transfers, toDomainTransfer(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer rows for account %s: %w", accountID, err)
	}

	return transfers, nil
}
