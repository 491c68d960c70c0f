package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moneypools/money_pools_app/internal/apperrors"
	"github.com/moneypools/money_pools_app/internal/core/domain"
	portsrepo "github.com/moneypools/money_pools_app/internal/core/ports/repositories"
	"github.com/moneypools/money_pools_app/internal/models"
)

type PgxPoolRepository struct {
	BaseRepository
}

// NewPgxPoolRepository creates a new repository for pool and membership data.
func NewPgxPoolRepository(pool *pgxpool.Pool) portsrepo.PoolRepositoryFacade {
	return &PgxPoolRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PoolRepositoryFacade = (*PgxPoolRepository)(nil)

func toModelPool(d domain.Pool) models.Pool {
	return models.Pool{
		PoolID:      d.PoolID,
		Name:        d.Name,
		Description: d.Description,
		Balance:     d.Balance,
		IsActive:    d.IsActive,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainPool(m models.Pool) domain.Pool {
	return domain.Pool{
		PoolID:      m.PoolID,
		Name:        m.Name,
		Description: m.Description,
		Balance:     m.Balance,
		IsActive:    m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const poolColumns = `pool_id, name, description, balance, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanPool(row pgx.Row) (models.Pool, error) {
	var m models.Pool
	err := row.Scan(
		&m.PoolID,
		&m.Name,
		&m.Description,
		&m.Balance,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SavePool inserts a new pool and its creator's membership in one
// transaction, so a pool can never exist without at least one admin.
func (r *PgxPoolRepository) SavePool(ctx context.Context, pool domain.Pool, creatorMembership domain.PoolMember) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	m := toModelPool(pool)
	poolQuery := `
		INSERT INTO pools (pool_id, name, description, balance, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, poolQuery,
		m.PoolID,
		m.Name,
		m.Description,
		m.Balance,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: pool with ID %s already exists", apperrors.ErrDuplicate, m.PoolID)
		}
		return fmt.Errorf("failed to insert pool %s: %w", m.PoolID, err)
	}

	memberQuery := `
		INSERT INTO pool_members (pool_id, user_id, role, contribution, joined_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err = tx.Exec(ctx, memberQuery,
		creatorMembership.PoolID,
		creatorMembership.UserID,
		string(creatorMembership.Role),
		creatorMembership.Contribution,
		creatorMembership.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert creator membership for pool %s: %w", m.PoolID, err)
	}

	return r.Commit(ctx, tx)
}

// FindPoolByID retrieves an active pool by its ID.
func (r *PgxPoolRepository) FindPoolByID(ctx context.Context, poolID string) (*domain.Pool, error) {
	query := `SELECT ` + poolColumns + ` FROM pools WHERE pool_id = $1 AND is_active = TRUE;`

	m, err := scanPool(r.Pool.QueryRow(ctx, query, poolID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find pool by ID %s: %w", poolID, err)
	}

	d := toDomainPool(m)
	return &d, nil
}

// ListPoolsByUserID retrieves all active pools the user is a member of.
func (r *PgxPoolRepository) ListPoolsByUserID(ctx context.Context, userID string) ([]domain.Pool, error) {
	query := `
		SELECT p.pool_id, p.name, p.description, p.balance, p.is_active, p.created_at, p.created_by, p.last_updated_at, p.last_updated_by
		FROM pools p
		JOIN pool_members pm ON p.pool_id = pm.pool_id
		WHERE pm.user_id = $1 AND p.is_active = TRUE
		ORDER BY p.name;
	`

	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pools for user %s: %w", userID, err)
	}
	defer rows.Close()

	pools := []domain.Pool{}
	for rows.Next() {
		m, err := scanPool(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pool row for user %s: %w", userID, err)
		}
		pools = append(pools, toDomainPool(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pool rows for user %s: %w", userID, err)
	}

	return pools, nil
}

// FindPoolMember retrieves a single membership row.
func (r *PgxPoolRepository) FindPoolMember(ctx context.Context, poolID string, userID string) (*domain.PoolMember, error) {
	query := `
		SELECT pool_id, user_id, role, contribution, joined_at
		FROM pool_members
		WHERE pool_id = $1 AND user_id = $2;
	`

	var m models.PoolMember
	err := r.Pool.QueryRow(ctx, query, poolID, userID).Scan(
		&m.PoolID,
		&m.UserID,
		&m.Role,
		&m.Contribution,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find member %s of pool %s: %w", userID, poolID, err)
	}

	d := domain.PoolMember{
		PoolID:       m.PoolID,
		UserID:       m.UserID,
		Role:         domain.PoolRole(m.Role),
		Contribution: m.Contribution,
		JoinedAt:     m.JoinedAt,
	}
	return &d, nil
}

// ListPoolMembers retrieves all memberships of a pool, enriched with each
// member's name and email.
func (r *PgxPoolRepository) ListPoolMembers(ctx context.Context, poolID string) ([]domain.PoolMember, error) {
	query := `
		SELECT pm.pool_id, pm.user_id, pm.role, pm.contribution, pm.joined_at, u.name, u.email
		FROM pool_members pm
		JOIN users u ON pm.user_id = u.user_id
		WHERE pm.pool_id = $1
		ORDER BY pm.joined_at;
	`

	rows, err := r.Pool.Query(ctx, query, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members for pool %s: %w", poolID, err)
	}
	defer rows.Close()

	members := []domain.PoolMember{}
	for rows.Next() {
		var m models.PoolMember
		var userName, email string
		if err := rows.Scan(&m.PoolID, &m.UserID, &m.Role, &m.Contribution, &m.JoinedAt, &userName, &email); err != nil {
			return nil, fmt.Errorf("failed to scan member row for pool %s: %w", poolID, err)
		}
		members = append(members, domain.PoolMember{
			PoolID:       m.PoolID,
			UserID:       m.UserID,
			UserName:     userName,
			Email:        email,
			Role:         domain.PoolRole(m.Role),
			Contribution: m.Contribution,
			JoinedAt:     m.JoinedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows for pool %s: %w", poolID, err)
	}

	return members, nil
}

// UpdatePool updates a pool's name and description.
func (r *PgxPoolRepository) UpdatePool(ctx context.Context, pool domain.Pool) error {
	m := toModelPool(pool)

	query := `
		UPDATE pools
		SET name = $2, description = $3, last_updated_at = $4, last_updated_by = $5
		WHERE pool_id = $1 AND is_active = TRUE;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.PoolID,
		m.Name,
		m.Description,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update pool %s: %w", m.PoolID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivatePool marks a pool as inactive (soft delete).
func (r *PgxPoolRepository) DeactivatePool(ctx context.Context, poolID string, userID string, now time.Time) error {
	query := `
		UPDATE pools
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE pool_id = $1 AND is_active = TRUE;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, poolID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate pool %s: %w", poolID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AddPoolMember inserts a new membership row.
func (r *PgxPoolRepository) AddPoolMember(ctx context.Context, membership domain.PoolMember) error {
	query := `
		INSERT INTO pool_members (pool_id, user_id, role, contribution, joined_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.Pool.Exec(ctx, query,
		membership.PoolID,
		membership.UserID,
		string(membership.Role),
		membership.Contribution,
		membership.JoinedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // Unique violation
				return fmt.Errorf("%w: user %s is already a member of pool %s", apperrors.ErrDuplicate, membership.UserID, membership.PoolID)
			case "23503": // FK violation
				return fmt.Errorf("%w: pool %s or user %s", apperrors.ErrNotFound, membership.PoolID, membership.UserID)
			}
		}
		return fmt.Errorf("failed to add member %s to pool %s: %w", membership.UserID, membership.PoolID, err)
	}
	return nil
}

// UpdatePoolMemberRole changes the role on an existing membership row.
func (r *PgxPoolRepository) UpdatePoolMemberRole(ctx context.Context, poolID string, userID string, role domain.PoolRole) error {
	query := `UPDATE pool_members SET role = $3 WHERE pool_id = $1 AND user_id = $2;`

	cmdTag, err := r.Pool.Exec(ctx, query, poolID, userID, string(role))
	if err != nil {
		return fmt.Errorf("failed to update role of member %s in pool %s: %w", userID, poolID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RemovePoolMember deletes a membership row.
func (r *PgxPoolRepository) RemovePoolMember(ctx context.Context, poolID string, userID string) error {
	query := `DELETE FROM pool_members WHERE pool_id = $1 AND user_id = $2;`

	cmdTag, err := r.Pool.Exec(ctx, query, poolID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member %s from pool %s: %w", userID, poolID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
