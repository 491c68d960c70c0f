package repositories

import (
	"context"
	"time"

	"github.com/moneypools/money_pools_app/internal/core/domain"
)

// UserReader provides read-only access to user records.
type UserReader interface {
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUsersByEmails(ctx context.Context, emails []string) (map[string]domain.User, error)
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
}

// UserWriter provides mutation access to user records.
// Balance columns are excluded on purpose: they change only through the
// transfer repository's atomic path.
type UserWriter interface {
	SaveUser(ctx context.Context, user domain.User) error
	UpdateUser(ctx context.Context, user domain.User) error
	DeleteUser(ctx context.Context, userID string, deletedBy string, now time.Time) error
}

// UserRepositoryFacade combines all user repository capabilities.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
