package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/moneypools/money_pools_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all pgx-backed repositories onto one shared
// connection pool. The pool's lifecycle stays with the caller.
func NewRepositoryProvider(pool *pgxpool.Pool, allowNegativeBalance bool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		UserRepo:     NewPgxUserRepository(pool),
		PoolRepo:     NewPgxPoolRepository(pool),
		TransferRepo: NewPgxTransferRepository(pool, allowNegativeBalance),
	}
}
