package services

import (
	"context"

	"github.com/sunucar/sunucar_backend/internal/core/domain"
	"github.com/sunucar/sunucar_backend/internal/dto"
)

// DriverStatusSvc exposes the external collaborator flags the wallet
// consumes: identity verification and suspension. The wallet never computes
// these itself.
type DriverStatusSvc interface {
	IsVerified(ctx context.Context, userID string) (bool, error)
	IsSuspended(ctx context.Context, userID string) (bool, error)
}

// WalletProvisioner creates a wallet when a user is provisioned as a driver.
type WalletProvisioner interface {
	CreateWallet(ctx context.Context, userID string, creatorUserID string) (*domain.Wallet, error)
}

// UserSvcFacade manages platform users and authentication.
type UserSvcFacade interface {
	DriverStatusSvc

	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	// AuthenticateExternal upserts a user from an external identity
	// provider (Google OAuth) and returns it.
	AuthenticateExternal(ctx context.Context, provider, email, name string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, updaterUserID string) (*domain.User, error)
	SetVerificationStatus(ctx context.Context, userID string, status domain.VerificationStatus, updaterUserID string) error
}
