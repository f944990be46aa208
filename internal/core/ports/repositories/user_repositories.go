package repositories

import (
	"context"
	"time"

	"github.com/sunucar/sunucar_backend/internal/core/domain"
)

// UserReader exposes read-only user lookups.
type UserReader interface {
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserRepositoryFacade combines user reads and writes.
type UserRepositoryFacade interface {
	UserReader
	SaveUser(ctx context.Context, user domain.User) error
	UpdateUser(ctx context.Context, user domain.User) error
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
	SetVerificationStatus(ctx context.Context, userID string, status domain.VerificationStatus, updatedBy string, now time.Time) error
}
