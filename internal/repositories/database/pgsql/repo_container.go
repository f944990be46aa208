package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/sunucar/sunucar_backend/internal/core/ports/repositories"
)

// NewRepositoryContainer wires all pgsql-backed repositories.
func NewRepositoryContainer(pool *pgxpool.Pool) *portsrepo.RepositoryContainer {
	return &portsrepo.RepositoryContainer{
		Wallet: NewWalletRepository(pool),
		User:   NewUserRepository(pool),
	}
}
