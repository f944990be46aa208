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
)

// WalletConfig carries the platform defaults applied to new wallets.
type WalletConfig struct {
	MinimumThreshold int64
	DailyCap         int64
	MonthlyCap       int64
}

// walletService implements the WalletSvcFacade: recharge processing,
// commission debits, the withdrawal gatekeeper, the auto-recharge policy
// engine, and read-side projections over the ledger store.
type walletService struct {
	BaseService
	walletRepo portsrepo.WalletRepositoryFacade
	users      portssvc.DriverStatusSvc
	cfg        WalletConfig
}

// NewWalletService creates the wallet service.
func NewWalletService(repo portsrepo.WalletRepositoryFacade, users portssvc.DriverStatusSvc, cfg WalletConfig) portssvc.WalletSvcFacade {
	return &walletService{
		walletRepo: repo,
		users:      users,
		cfg:        cfg,
	}
}

var _ portssvc.WalletSvcFacade = (*walletService)(nil)
var _ portssvc.WalletProvisioner = (*walletService)(nil)

// CreateWallet provisions an empty wallet for a user: zero balance, no
// policy, no payout settings.
func (s *walletService) CreateWallet(ctx context.Context, userID string, creatorUserID string) (*domain.Wallet, error) {
	existing, err := s.walletRepo.FindWalletByUserID(ctx, userID)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("%w: user %s already has a wallet", apperrors.ErrDuplicate, userID)
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check for existing wallet", slog.String("user_id", userID))
		return nil, err
	}

	wallet := domain.NewWallet(uuid.NewString(), userID,
		s.cfg.MinimumThreshold, s.cfg.DailyCap, s.cfg.MonthlyCap,
		creatorUserID, time.Now())

	if err := s.walletRepo.SaveWallet(ctx, *wallet); err != nil {
		s.LogError(ctx, err, "Failed to save wallet", slog.String("wallet_id", wallet.WalletID))
		return nil, err
	}

	s.LogInfo(ctx, "Wallet created",
		slog.String("wallet_id", wallet.WalletID),
		slog.String("user_id", userID))
	return wallet, nil
}

// GetWallet loads a wallet snapshot.
func (s *walletService) GetWallet(ctx context.Context, walletID string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.FindWalletByID(ctx, walletID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find wallet", slog.String("wallet_id", walletID))
		}
		return nil, err
	}
	return wallet, nil
}

// GetWalletByUserID loads the wallet owned by a user.
func (s *walletService) GetWalletByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.FindWalletByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find wallet by user", slog.String("user_id", userID))
		}
		return nil, err
	}
	return wallet, nil
}

// GetSummary builds the read-only wallet summary from a snapshot.
func (s *walletService) GetSummary(ctx context.Context, walletID string) (*domain.WalletSummary, error) {
	wallet, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	verified, err := s.users.IsVerified(ctx, wallet.UserID)
	if err != nil {
		s.LogError(ctx, err, "Failed to read verification status", slog.String("user_id", wallet.UserID))
		return nil, err
	}
	return domain.BuildSummary(wallet, verified, time.Now()), nil
}

// ListEntries returns a filtered page of the wallet history.
func (s *walletService) ListEntries(ctx context.Context, walletID string, params dto.ListEntriesParams) ([]domain.LedgerEntry, *string, error) {
	if _, err := s.GetWallet(ctx, walletID); err != nil {
		return nil, nil, err
	}
	filter := portsrepo.EntryFilter{From: params.From, To: params.To}
	if params.Type != "" {
		t := domain.EntryType(params.Type)
		filter.Type = &t
	}
	if params.Status != "" {
		st := domain.EntryStatus(params.Status)
		filter.Status = &st
	}
	entries, next, err := s.walletRepo.ListEntries(ctx, walletID, filter, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list wallet entries", slog.String("wallet_id", walletID))
		return nil, nil, err
	}
	return entries, next, nil
}

// CanWithdraw runs the gatekeeper checks without mutating anything.
func (s *walletService) CanWithdraw(ctx context.Context, walletID string, amount int64) (*domain.WithdrawalDecision, error) {
	wallet, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	verified, err := s.users.IsVerified(ctx, wallet.UserID)
	if err != nil {
		return nil, err
	}
	// Check against a copy; RollIfStale must not touch the snapshot.
	probe := *wallet
	failures := probe.CheckWithdrawal(amount, verified, time.Now())
	decision := &domain.WithdrawalDecision{Allowed: len(failures) == 0}
	for _, f := range failures {
		decision.Reasons = append(decision.Reasons, f.Error())
	}
	return decision, nil
}

// CanAcceptRide is the acceptance gate consulted before a driver takes a
// ride in a given payment mode. Fail-closed: wallet-paid rides require the
// wallet to be funded so the later commission debit cannot overdraw.
func (s *walletService) CanAcceptRide(ctx context.Context, walletID string, mode domain.PaymentMode) (*domain.RideEligibility, error) {
	wallet, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	verified, err := s.users.IsVerified(ctx, wallet.UserID)
	if err != nil {
		return nil, err
	}
	suspended, err := s.users.IsSuspended(ctx, wallet.UserID)
	if err != nil {
		return nil, err
	}
	return domain.CheckRideEligibility(wallet, mode, verified, suspended), nil
}
