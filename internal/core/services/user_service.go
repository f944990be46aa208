package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sunucar/sunucar_backend/internal/apperrors"
	"github.com/sunucar/sunucar_backend/internal/core/domain"
	portsrepo "github.com/sunucar/sunucar_backend/internal/core/ports/repositories"
	portssvc "github.com/sunucar/sunucar_backend/internal/core/ports/services"
	"github.com/sunucar/sunucar_backend/internal/dto"
	"github.com/sunucar/sunucar_backend/internal/utils"
)

// userService implements UserSvcFacade. Identity verification itself
// happens in the document subsystem; this service only stores the flag the
// wallet consumes.
type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
	wallets  portssvc.WalletProvisioner
}

// NewUserService creates a new user service. The wallet provisioner is
// attached after construction because the wallet service depends on user
// lookups in turn.
func NewUserService(repo portsrepo.UserRepositoryFacade) *userService {
	return &userService{userRepo: repo}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// AttachWalletProvisioner wires the wallet service used to provision
// driver wallets at registration.
func (s *userService) AttachWalletProvisioner(p portssvc.WalletProvisioner) {
	s.wallets = p
}

// Register creates a new user. Drivers get an empty wallet immediately.
func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	if existing, err := s.userRepo.FindUserByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email %s is already registered", apperrors.ErrDuplicate, req.Email)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check existing email")
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, apperrors.NewAppError(500, "failed to hash password", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		UserID:       uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         req.Role,
		Verification: domain.VerificationPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "self",
			LastUpdatedAt: now,
			LastUpdatedBy: "self",
		},
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		s.LogError(ctx, err, "Failed to save user", slog.String("user_id", user.UserID))
		return nil, err
	}

	if user.Role == domain.RoleDriver && s.wallets != nil {
		if _, err := s.wallets.CreateWallet(ctx, user.UserID, user.UserID); err != nil {
			s.LogError(ctx, err, "Failed to provision driver wallet", slog.String("user_id", user.UserID))
			return nil, err
		}
	}

	s.LogInfo(ctx, "User registered", slog.String("user_id", user.UserID), slog.String("role", string(user.Role)))
	return &user, nil
}

// Authenticate validates an email/password pair.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to look up user for login")
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrForbidden
	}
	return user, nil
}

// AuthenticateExternal upserts a user authenticated by an external identity
// provider and returns it. External users have no password.
func (s *userService) AuthenticateExternal(ctx context.Context, provider, email, name string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up external user")
		return nil, err
	}

	now := time.Now().UTC()
	newUser := domain.User{
		UserID:       uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         domain.RoleRider,
		Verification: domain.VerificationPending,
		AuthProvider: provider,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     provider,
			LastUpdatedAt: now,
			LastUpdatedBy: provider,
		},
	}
	if err := s.userRepo.SaveUser(ctx, newUser); err != nil {
		s.LogError(ctx, err, "Failed to save external user")
		return nil, err
	}
	s.LogInfo(ctx, "External user registered", slog.String("user_id", newUser.UserID), slog.String("provider", provider))
	return &newUser, nil
}

// GetUserByID retrieves a single user.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find user", slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

// ListUsers returns a page of users.
func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.userRepo.ListUsers(ctx, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list users")
		return nil, err
	}
	if users == nil {
		return []domain.User{}, nil
	}
	return users, nil
}

// UpdateUser applies profile changes.
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, updaterUserID string) (*domain.User, error) {
	if userID != updaterUserID {
		return nil, fmt.Errorf("%w: users may only update their own profile", apperrors.ErrForbidden)
	}
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		user.Name = *req.Name
		updated = true
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
		updated = true
	}
	if !updated {
		return user, nil
	}

	user.LastUpdatedAt = time.Now().UTC()
	user.LastUpdatedBy = updaterUserID
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		s.LogError(ctx, err, "Failed to update user", slog.String("user_id", userID))
		return nil, err
	}
	return user, nil
}

// SetVerificationStatus records the outcome of an identity-document review.
func (s *userService) SetVerificationStatus(ctx context.Context, userID string, status domain.VerificationStatus, updaterUserID string) error {
	if _, err := s.GetUserByID(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.SetVerificationStatus(ctx, userID, status, updaterUserID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to set verification status", slog.String("user_id", userID))
		return err
	}
	s.LogInfo(ctx, "Verification status updated",
		slog.String("user_id", userID),
		slog.String("status", string(status)))
	return nil
}

// IsVerified reports whether identity verification is approved for a user.
func (s *userService) IsVerified(ctx context.Context, userID string) (bool, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsVerified(), nil
}

// IsSuspended reports whether a user account is suspended.
func (s *userService) IsSuspended(ctx context.Context, userID string) (bool, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.Suspended, nil
}
