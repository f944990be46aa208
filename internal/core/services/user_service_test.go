package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sunucar/sunucar_backend/internal/apperrors"
	"github.com/sunucar/sunucar_backend/internal/core/domain"
	portssvc "github.com/sunucar/sunucar_backend/internal/core/ports/services"
	"github.com/sunucar/sunucar_backend/internal/core/services"
	"github.com/sunucar/sunucar_backend/internal/dto"
	"github.com/sunucar/sunucar_backend/internal/utils"
)

// --- Mocks ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) SetVerificationStatus(ctx context.Context, userID string, status domain.VerificationStatus, updatedBy string, now time.Time) error {
	args := m.Called(ctx, userID, status, updatedBy, now)
	return args.Error(0)
}

type MockWalletProvisioner struct {
	mock.Mock
}

func (m *MockWalletProvisioner) CreateWallet(ctx context.Context, userID string, creatorUserID string) (*domain.Wallet, error) {
	args := m.Called(ctx, userID, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

// --- Test Suite ---

type UserServiceTestSuite struct {
	suite.Suite
	mockRepo    *MockUserRepository
	mockWallets *MockWalletProvisioner
	service     portssvc.UserSvcFacade
	ctx         context.Context
}

func (s *UserServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockUserRepository)
	s.mockWallets = new(MockWalletProvisioner)
	svc := services.NewUserService(s.mockRepo)
	svc.AttachWalletProvisioner(s.mockWallets)
	s.service = svc
	s.ctx = context.Background()
}

func (s *UserServiceTestSuite) TestRegister_Driver() {
	req := dto.RegisterRequest{
		Name:     "Abdou Diop",
		Email:    "abdou@example.sn",
		Phone:    "771234567",
		Password: "s3cret-pass",
		Role:     domain.RoleDriver,
	}

	s.mockRepo.On("FindUserByEmail", s.ctx, req.Email).Return(nil, apperrors.ErrNotFound).Once()
	s.mockRepo.On("SaveUser", s.ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == req.Email &&
			u.Role == domain.RoleDriver &&
			u.Verification == domain.VerificationPending &&
			u.PasswordHash != "" && u.PasswordHash != req.Password
	})).Return(nil).Once()
	s.mockWallets.On("CreateWallet", s.ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string")).
		Return(&domain.Wallet{WalletID: "wallet-1"}, nil).Once()

	user, err := s.service.Register(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(req.Email, user.Email)
	s.NotEmpty(user.UserID)

	s.mockRepo.AssertExpectations(s.T())
	s.mockWallets.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestRegister_RiderGetsNoWallet() {
	req := dto.RegisterRequest{
		Name:     "Awa Ndiaye",
		Email:    "awa@example.sn",
		Phone:    "781234567",
		Password: "s3cret-pass",
		Role:     domain.RoleRider,
	}

	s.mockRepo.On("FindUserByEmail", s.ctx, req.Email).Return(nil, apperrors.ErrNotFound).Once()
	s.mockRepo.On("SaveUser", s.ctx, mock.AnythingOfType("domain.User")).Return(nil).Once()

	_, err := s.service.Register(s.ctx, req)
	s.Require().NoError(err)

	s.mockWallets.AssertNotCalled(s.T(), "CreateWallet", mock.Anything, mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestRegister_DuplicateEmail() {
	req := dto.RegisterRequest{
		Name:     "Abdou Diop",
		Email:    "abdou@example.sn",
		Phone:    "771234567",
		Password: "s3cret-pass",
		Role:     domain.RoleDriver,
	}
	s.mockRepo.On("FindUserByEmail", s.ctx, req.Email).
		Return(&domain.User{UserID: "user-1", Email: req.Email}, nil).Once()

	_, err := s.service.Register(s.ctx, req)
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *UserServiceTestSuite) TestAuthenticate() {
	hash, err := utils.HashPassword("s3cret-pass")
	s.Require().NoError(err)
	stored := &domain.User{UserID: "user-1", Email: "abdou@example.sn", PasswordHash: hash}

	s.mockRepo.On("FindUserByEmail", s.ctx, stored.Email).Return(stored, nil)

	user, err := s.service.Authenticate(s.ctx, stored.Email, "s3cret-pass")
	s.Require().NoError(err)
	s.Equal("user-1", user.UserID)

	_, err = s.service.Authenticate(s.ctx, stored.Email, "wrong-pass")
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *UserServiceTestSuite) TestAuthenticateExternal_UpsertsNewUser() {
	s.mockRepo.On("FindUserByEmail", s.ctx, "new@example.sn").Return(nil, apperrors.ErrNotFound).Once()
	s.mockRepo.On("SaveUser", s.ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == "new@example.sn" && u.AuthProvider == "google" && u.PasswordHash == ""
	})).Return(nil).Once()

	user, err := s.service.AuthenticateExternal(s.ctx, "google", "new@example.sn", "New User")
	s.Require().NoError(err)
	s.Equal(domain.RoleRider, user.Role)

	s.mockRepo.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestAuthenticateExternal_ExistingUser() {
	stored := &domain.User{UserID: "user-1", Email: "abdou@example.sn"}
	s.mockRepo.On("FindUserByEmail", s.ctx, stored.Email).Return(stored, nil).Once()

	user, err := s.service.AuthenticateExternal(s.ctx, "google", stored.Email, "Abdou")
	s.Require().NoError(err)
	s.Equal("user-1", user.UserID)
	s.mockRepo.AssertNotCalled(s.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestUpdateUser_SelfOnly() {
	name := "New Name"
	_, err := s.service.UpdateUser(s.ctx, "user-1", dto.UpdateUserRequest{Name: &name}, "user-2")
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.mockRepo.AssertNotCalled(s.T(), "UpdateUser", mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestUpdateUser() {
	stored := &domain.User{UserID: "user-1", Name: "Old Name", Phone: "770000000"}
	name := "New Name"

	s.mockRepo.On("FindUserByID", s.ctx, "user-1").Return(stored, nil).Once()
	s.mockRepo.On("UpdateUser", s.ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Name == "New Name" && u.Phone == "770000000" && u.LastUpdatedBy == "user-1"
	})).Return(nil).Once()

	user, err := s.service.UpdateUser(s.ctx, "user-1", dto.UpdateUserRequest{Name: &name}, "user-1")
	s.Require().NoError(err)
	s.Equal("New Name", user.Name)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestSetVerificationStatus() {
	stored := &domain.User{UserID: "user-1"}
	s.mockRepo.On("FindUserByID", s.ctx, "user-1").Return(stored, nil).Once()
	s.mockRepo.On("SetVerificationStatus", s.ctx, "user-1", domain.VerificationApproved, "admin-1", mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := s.service.SetVerificationStatus(s.ctx, "user-1", domain.VerificationApproved, "admin-1")
	s.Require().NoError(err)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestVerificationFlags() {
	approved := &domain.User{UserID: "user-1", Verification: domain.VerificationApproved}
	suspended := &domain.User{UserID: "user-2", Verification: domain.VerificationPending, Suspended: true}

	s.mockRepo.On("FindUserByID", s.ctx, "user-1").Return(approved, nil)
	s.mockRepo.On("FindUserByID", s.ctx, "user-2").Return(suspended, nil)

	ok, err := s.service.IsVerified(s.ctx, "user-1")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.service.IsVerified(s.ctx, "user-2")
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.service.IsSuspended(s.ctx, "user-2")
	s.Require().NoError(err)
	s.True(ok)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
