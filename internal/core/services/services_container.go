package services

import (
	portsrepo "github.com/moneypools/money_pools_app/internal/core/ports/repositories"
	portssvc "github.com/moneypools/money_pools_app/internal/core/ports/services"
)

// NewServiceContainer builds the full service graph from the repository
// provider.
func NewServiceContainer(repos *portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	userSvc := NewUserService(repos.UserRepo)
	poolSvc := NewPoolService(repos.PoolRepo, repos.UserRepo)
	transferSvc := NewTransferService(repos.TransferRepo)

	return &portssvc.ServiceContainer{
		User:     userSvc,
		Pool:     poolSvc,
		Transfer: transferSvc,
	}
}
