package services

import (
	portsrepo "github.com/sunucar/sunucar_backend/internal/core/ports/repositories"
	portssvc "github.com/sunucar/sunucar_backend/internal/core/ports/services"
)

// NewServiceContainer wires the services over the repository container.
// The user and wallet services reference each other (driver registration
// provisions a wallet; the wallet consumes the verification flag), so the
// provisioner is attached after both exist.
func NewServiceContainer(repos *portsrepo.RepositoryContainer, walletCfg WalletConfig) *portssvc.ServiceContainer {
	userSvc := NewUserService(repos.User)
	walletSvc := NewWalletService(repos.Wallet, userSvc, walletCfg)
	userSvc.AttachWalletProvisioner(walletSvc)

	return &portssvc.ServiceContainer{
		Wallet: walletSvc,
		User:   userSvc,
	}
}
