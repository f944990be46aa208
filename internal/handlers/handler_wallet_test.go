package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sunucar/sunucar_backend/internal/apperrors"
	"github.com/sunucar/sunucar_backend/internal/core/domain"
	portssvc "github.com/sunucar/sunucar_backend/internal/core/ports/services"
	"github.com/sunucar/sunucar_backend/internal/dto"
	"github.com/sunucar/sunucar_backend/internal/handlers"
	"github.com/sunucar/sunucar_backend/internal/middleware"
)

// --- Mock WalletService ---

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) CreateWallet(ctx context.Context, userID string, creatorUserID string) (*domain.Wallet, error) {
	args := m.Called(ctx, userID, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletService) GetWallet(ctx context.Context, walletID string) (*domain.Wallet, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletService) GetWalletByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletService) GetSummary(ctx context.Context, walletID string) (*domain.WalletSummary, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletSummary), args.Error(1)
}

func (m *MockWalletService) ListEntries(ctx context.Context, walletID string, params dto.ListEntriesParams) ([]domain.LedgerEntry, *string, error) {
	args := m.Called(ctx, walletID, params)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.LedgerEntry), next, args.Error(2)
}

func (m *MockWalletService) CanWithdraw(ctx context.Context, walletID string, amount int64) (*domain.WithdrawalDecision, error) {
	args := m.Called(ctx, walletID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WithdrawalDecision), args.Error(1)
}

func (m *MockWalletService) CanAcceptRide(ctx context.Context, walletID string, mode domain.PaymentMode) (*domain.RideEligibility, error) {
	args := m.Called(ctx, walletID, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RideEligibility), args.Error(1)
}

func (m *MockWalletService) RequestRecharge(ctx context.Context, walletID string, req dto.RechargeRequest, requesterUserID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, walletID, req, requesterUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockWalletService) ConfirmRecharge(ctx context.Context, entryID string, succeeded bool) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID, succeeded)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockWalletService) ChargeCommission(ctx context.Context, walletID string, amount int64, rideRef string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, walletID, amount, rideRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockWalletService) RequestWithdrawal(ctx context.Context, walletID string, amount int64, requesterUserID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, walletID, amount, requesterUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockWalletService) ConfirmWithdrawal(ctx context.Context, entryID string, succeeded bool) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID, succeeded)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockWalletService) EvaluateAutoRecharge(ctx context.Context, walletID string) (*domain.AutoRechargeOutcome, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AutoRechargeOutcome), args.Error(1)
}

func (m *MockWalletService) ConfigureAutoRecharge(ctx context.Context, walletID string, req dto.AutoRechargeRequest, userID string) (*domain.Wallet, error) {
	args := m.Called(ctx, walletID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletService) DisableAutoRecharge(ctx context.Context, walletID string, userID string) (*domain.Wallet, error) {
	args := m.Called(ctx, walletID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletService) ConfigurePayout(ctx context.Context, walletID string, req dto.PayoutSettingsRequest, userID string) (*domain.Wallet, error) {
	args := m.Called(ctx, walletID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

var _ portssvc.WalletSvcFacade = (*MockWalletService)(nil)

// --- Test Suite ---

type WalletHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockWalletService
	jwtSecret   string
}

func (suite *WalletHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "sunucar-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *WalletHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockService = new(MockWalletService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterWalletRoutes(v1, suite.mockService)
}

// doRequest serves an authenticated request and returns the recorder.
func (suite *WalletHandlerTestSuite) doRequest(method, url, userID string, body any) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		buf = bytes.NewBuffer(raw)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, url, buf)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *WalletHandlerTestSuite) TestGetWallet_Success() {
	walletID := uuid.NewString()
	userID := uuid.NewString()
	wallet := domain.NewWallet(walletID, userID, 1000, 10000, 100000, userID, time.Now())
	suite.mockService.On("GetWallet", mock.Anything, walletID).Return(wallet, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/wallets/"+walletID, userID, nil)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.WalletResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(walletID, body.WalletID)
	suite.EqualValues(0, body.Balance)
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *WalletHandlerTestSuite) TestGetWallet_NotFound() {
	walletID := uuid.NewString()
	suite.mockService.On("GetWallet", mock.Anything, walletID).Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/wallets/"+walletID, uuid.NewString(), nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *WalletHandlerTestSuite) TestGetWallet_Unauthorized() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/wallets/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "GetWallet", mock.Anything, mock.Anything)
}

func (suite *WalletHandlerTestSuite) TestRequestRecharge_Accepted() {
	walletID := uuid.NewString()
	userID := uuid.NewString()
	req := dto.RechargeRequest{Amount: 5000, Method: domain.MethodWave, IdempotencyKey: "key-1"}
	entry := &domain.LedgerEntry{
		EntryID:  uuid.NewString(),
		WalletID: walletID,
		Type:     domain.EntryRecharge,
		Amount:   5000,
		Status:   domain.StatusPending,
		Method:   domain.MethodWave,
	}
	suite.mockService.On("RequestRecharge", mock.Anything, walletID, req, userID).Return(entry, nil).Once()

	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/wallets/%s/recharges", walletID), userID, req)

	suite.Equal(http.StatusAccepted, w.Code)
	var body dto.EntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(entry.EntryID, body.EntryID)
	suite.Equal(domain.StatusPending, body.Status)
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *WalletHandlerTestSuite) TestRequestRecharge_InvalidBody() {
	walletID := uuid.NewString()
	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/wallets/%s/recharges", walletID), uuid.NewString(),
		map[string]any{"amount": -5, "method": "WAVE"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "RequestRecharge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WalletHandlerTestSuite) TestChargeCommission_InsufficientFunds() {
	walletID := uuid.NewString()
	req := dto.CommissionRequest{Amount: 5000, RideRef: "ride-9"}
	suite.mockService.On("ChargeCommission", mock.Anything, walletID, int64(5000), "ride-9").
		Return(nil, &apperrors.InsufficientFundsError{Balance: 600, Required: 5000}).Once()

	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/wallets/%s/commissions", walletID), uuid.NewString(), req)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *WalletHandlerTestSuite) TestRequestWithdrawal_LimitExceeded() {
	walletID := uuid.NewString()
	userID := uuid.NewString()
	req := dto.WithdrawalRequest{Amount: 9000}
	limitErr := &apperrors.LimitExceededError{
		Scope:     apperrors.LimitDaily,
		Cap:       10000,
		Remaining: 1000,
		ResetsAt:  time.Now().Add(6 * time.Hour),
	}
	suite.mockService.On("RequestWithdrawal", mock.Anything, walletID, int64(9000), userID).
		Return(nil, limitErr).Once()

	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/wallets/%s/withdrawals", walletID), userID, req)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	var body map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("DAILY", body["scope"])
}

func (suite *WalletHandlerTestSuite) TestRequestWithdrawal_MissingPreconditions() {
	walletID := uuid.NewString()
	userID := uuid.NewString()
	suite.mockService.On("RequestWithdrawal", mock.Anything, walletID, int64(500), userID).
		Return(nil, &apperrors.PreconditionError{Missing: apperrors.PreconditionPayoutSettings}).Once()

	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/wallets/%s/withdrawals", walletID), userID,
		dto.WithdrawalRequest{Amount: 500})

	suite.Equal(http.StatusPreconditionFailed, w.Code)
}

func (suite *WalletHandlerTestSuite) TestConfirmWithdrawal_Forbidden() {
	entryID := uuid.NewString()
	suite.mockService.On("ConfirmWithdrawal", mock.Anything, entryID, true).
		Return(nil, apperrors.ErrForbidden).Once()

	succeeded := true
	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/wallets/withdrawals/%s/confirm", entryID),
		uuid.NewString(), dto.ConfirmRequest{Succeeded: &succeeded})

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *WalletHandlerTestSuite) TestListEntries_Success() {
	walletID := uuid.NewString()
	entries := []domain.LedgerEntry{
		{EntryID: uuid.NewString(), WalletID: walletID, Type: domain.EntryRecharge, Amount: 5000, Status: domain.StatusSucceeded},
		{EntryID: uuid.NewString(), WalletID: walletID, Type: domain.EntryCommission, Amount: 400, Status: domain.StatusCharged},
	}
	next := "token-next"
	suite.mockService.On("ListEntries", mock.Anything, walletID, mock.MatchedBy(func(p dto.ListEntriesParams) bool {
		return p.Limit == 10 && p.Type == "RECHARGE"
	})).Return(entries, &next, nil).Once()

	w := suite.doRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/wallets/%s/entries?limit=10&type=RECHARGE", walletID), uuid.NewString(), nil)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.ListEntriesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Len(body.Entries, 2)
	suite.Require().NotNil(body.NextToken)
	suite.Equal("token-next", *body.NextToken)
}

func (suite *WalletHandlerTestSuite) TestListEntries_InvalidType() {
	walletID := uuid.NewString()
	w := suite.doRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/wallets/%s/entries?type=BOGUS", walletID), uuid.NewString(), nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "ListEntries", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WalletHandlerTestSuite) TestRideEligibility_BadMode() {
	walletID := uuid.NewString()
	w := suite.doRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/wallets/%s/ride-eligibility?paymentMode=CRYPTO", walletID), uuid.NewString(), nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "CanAcceptRide", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WalletHandlerTestSuite) TestWithdrawalEligibility_Success() {
	walletID := uuid.NewString()
	decision := &domain.WithdrawalDecision{Allowed: false, Reasons: []string{"precondition not met: payout settings not configured"}}
	suite.mockService.On("CanWithdraw", mock.Anything, walletID, int64(2500)).Return(decision, nil).Once()

	w := suite.doRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/wallets/%s/withdrawal-eligibility?amount=2500", walletID), uuid.NewString(), nil)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.WithdrawalDecisionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.False(body.Allowed)
	suite.Len(body.Reasons, 1)
}

func (suite *WalletHandlerTestSuite) TestEvaluateAutoRecharge_Triggered() {
	walletID := uuid.NewString()
	entry := &domain.LedgerEntry{
		EntryID:  uuid.NewString(),
		WalletID: walletID,
		Type:     domain.EntryRecharge,
		Amount:   500,
		Status:   domain.StatusPending,
		Origin:   domain.OriginSystem,
	}
	suite.mockService.On("EvaluateAutoRecharge", mock.Anything, walletID).
		Return(&domain.AutoRechargeOutcome{Triggered: true, Entry: entry}, nil).Once()

	w := suite.doRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/wallets/%s/auto-recharge/evaluate", walletID), uuid.NewString(), nil)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.AutoRechargeOutcomeResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.True(body.Triggered)
	suite.Require().NotNil(body.Entry)
	suite.Equal(entry.EntryID, body.Entry.EntryID)
}

func TestWalletHandler(t *testing.T) {
	suite.Run(t, new(WalletHandlerTestSuite))
}
