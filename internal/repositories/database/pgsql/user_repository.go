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

type PgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgxUserRepository creates a new repository for user data.
func NewPgxUserRepository(pool *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{pool: pool}
}

var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

func toModelUser(d domain.User) models.User {
	return models.User{
		UserID:       d.UserID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Balance:      d.Balance,
		IsActive:     d.IsActive,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
		DeletedAt: d.DeletedAt,
	}
}

func toDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:       m.UserID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Balance:      m.Balance,
		IsActive:     m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
		DeletedAt: m.DeletedAt,
	}
}

const userColumns = `user_id, name, email, password_hash, balance, is_active, created_at, created_by, last_updated_at, last_updated_by, deleted_at`

func scanUser(row pgx.Row) (models.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID,
		&m.Name,
		&m.Email,
		&m.PasswordHash,
		&m.Balance,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.DeletedAt,
	)
	return m, err
}

// SaveUser inserts a new user. The balance column is inserted as-is and is
// thereafter only mutated through the transfer repository.
func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	m := toModelUser(user)

	query := `
		INSERT INTO users (user_id, name, email, password_hash, balance, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.pool.Exec(ctx, query,
		m.UserID,
		m.Name,
		m.Email,
		m.PasswordHash,
		m.Balance,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: user with email %s already exists", apperrors.ErrDuplicate, m.Email)
		}
		return fmt.Errorf("failed to save user %s: %w", m.UserID, err)
	}
	return nil
}

// FindUserByID retrieves a user by ID, excluding soft-deleted users.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 AND deleted_at IS NULL;`

	m, err := scanUser(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID %s: %w", userID, err)
	}

	d := toDomainUser(m)
	return &d, nil
}

// FindUserByEmail retrieves a user by email, excluding soft-deleted users.
func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL;`

	m, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	d := toDomainUser(m)
	return &d, nil
}

// FindUsersByEmails retrieves multiple users keyed by email. Emails with no
// matching user are simply absent from the result map.
func (r *PgxUserRepository) FindUsersByEmails(ctx context.Context, emails []string) (map[string]domain.User, error) {
	if len(emails) == 0 {
		return map[string]domain.User{}, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = ANY($1) AND deleted_at IS NULL;`

	rows, err := r.pool.Query(ctx, query, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by emails: %w", err)
	}
	defer rows.Close()

	usersMap := make(map[string]domain.User)
	for rows.Next() {
		m, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row during batch fetch: %w", err)
		}
		usersMap[m.Email] = toDomainUser(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows during batch fetch: %w", err)
	}

	return usersMap, nil
}

// ListUsers retrieves a paginated list of active users.
func (r *PgxUserRepository) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE is_active = TRUE AND deleted_at IS NULL
		ORDER BY name
		LIMIT $1 OFFSET $2;
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		m, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, toDomainUser(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// UpdateUser updates a user's profile fields. Balance is never written here.
func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	m := toModelUser(user)

	query := `
		UPDATE users
		SET name = $2, email = $3, last_updated_at = $4, last_updated_by = $5
		WHERE user_id = $1 AND deleted_at IS NULL;
	`
	cmdTag, err := r.pool.Exec(ctx, query,
		m.UserID,
		m.Name,
		m.Email,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: email %s already in use", apperrors.ErrDuplicate, m.Email)
		}
		return fmt.Errorf("failed to update user %s: %w", m.UserID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteUser soft-deletes a user by setting deleted_at and deactivating it.
func (r *PgxUserRepository) DeleteUser(ctx context.Context, userID string, deletedBy string, now time.Time) error {
	query := `
		UPDATE users
		SET deleted_at = $2, is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE user_id = $1 AND deleted_at IS NULL;
	`
	cmdTag, err := r.pool.Exec(ctx, query, userID, now, deletedBy)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
