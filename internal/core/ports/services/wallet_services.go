package services

import (
	"context"

	"github.com/sunucar/sunucar_backend/internal/core/domain"
	"github.com/sunucar/sunucar_backend/internal/dto"
)

// WalletReaderSvc is the read side of the wallet: summaries, history, and
// eligibility checks. Safe to call concurrently with writers.
type WalletReaderSvc interface {
	GetWallet(ctx context.Context, walletID string) (*domain.Wallet, error)
	GetWalletByUserID(ctx context.Context, userID string) (*domain.Wallet, error)
	GetSummary(ctx context.Context, walletID string) (*domain.WalletSummary, error)
	ListEntries(ctx context.Context, walletID string, params dto.ListEntriesParams) ([]domain.LedgerEntry, *string, error)
	CanWithdraw(ctx context.Context, walletID string, amount int64) (*domain.WithdrawalDecision, error)
	CanAcceptRide(ctx context.Context, walletID string, mode domain.PaymentMode) (*domain.RideEligibility, error)
}

// WalletSvcFacade is the full wallet service: the recharge processor,
// commission debit engine, withdrawal gatekeeper, and auto-recharge policy
// engine over the ledger store.
type WalletSvcFacade interface {
	WalletReaderSvc

	CreateWallet(ctx context.Context, userID string, creatorUserID string) (*domain.Wallet, error)

	RequestRecharge(ctx context.Context, walletID string, req dto.RechargeRequest, requesterUserID string) (*domain.LedgerEntry, error)
	ConfirmRecharge(ctx context.Context, entryID string, succeeded bool) (*domain.LedgerEntry, error)

	ChargeCommission(ctx context.Context, walletID string, amount int64, rideRef string) (*domain.LedgerEntry, error)

	RequestWithdrawal(ctx context.Context, walletID string, amount int64, requesterUserID string) (*domain.LedgerEntry, error)
	ConfirmWithdrawal(ctx context.Context, entryID string, succeeded bool) (*domain.LedgerEntry, error)

	EvaluateAutoRecharge(ctx context.Context, walletID string) (*domain.AutoRechargeOutcome, error)
	ConfigureAutoRecharge(ctx context.Context, walletID string, req dto.AutoRechargeRequest, userID string) (*domain.Wallet, error)
	DisableAutoRecharge(ctx context.Context, walletID string, userID string) (*domain.Wallet, error)
	ConfigurePayout(ctx context.Context, walletID string, req dto.PayoutSettingsRequest, userID string) (*domain.Wallet, error)
}
