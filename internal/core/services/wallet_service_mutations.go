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
	"github.com/sunucar/sunucar_backend/internal/dto"
)

// RequestRecharge validates and records a funding request as a PENDING
// recharge entry. A retried request with a known idempotency key returns
// the original entry.
func (s *walletService) RequestRecharge(ctx context.Context, walletID string, req dto.RechargeRequest, requesterUserID string) (*domain.LedgerEntry, error) {
	_, entry, err := s.walletRepo.ApplyEntry(ctx, walletID, func(w *domain.Wallet) (*domain.LedgerEntry, error) {
		if err := s.authorizeOwner(w, requesterUserID); err != nil {
			return nil, err
		}
		return w.RequestRecharge(uuid.NewString(), req.Amount, req.Method, req.IdempotencyKey, domain.OriginUser, time.Now())
	})
	if err != nil {
		s.logRejection(ctx, err, "Recharge request rejected", walletID)
		return nil, err
	}
	s.LogInfo(ctx, "Recharge requested",
		slog.String("wallet_id", walletID),
		slog.String("entry_id", entry.EntryID),
		slog.Int64("amount", entry.Amount))
	return entry, nil
}

// ConfirmRecharge settles a PENDING recharge from a payment-gateway
// callback. Redelivered callbacks are no-ops returning the settled entry.
func (s *walletService) ConfirmRecharge(ctx context.Context, entryID string, succeeded bool) (*domain.LedgerEntry, error) {
	walletID, err := s.walletRepo.FindWalletIDByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	wallet, entry, err := s.walletRepo.ApplyEntry(ctx, walletID, func(w *domain.Wallet) (*domain.LedgerEntry, error) {
		return w.SettleRecharge(entryID, succeeded, time.Now())
	})
	if err != nil {
		s.logRejection(ctx, err, "Recharge confirmation rejected", walletID)
		return nil, err
	}
	s.LogInfo(ctx, "Recharge settled",
		slog.String("wallet_id", walletID),
		slog.String("entry_id", entryID),
		slog.String("status", string(entry.Status)),
		slog.Int64("balance", wallet.Balance))
	return entry, nil
}

// ChargeCommission debits the platform fee for a completed ride.
// Fail-closed: if the balance cannot cover the fee nothing is recorded and
// a typed InsufficientFunds error is returned. Repeat calls with the same
// rideRef return the existing CHARGED entry.
func (s *walletService) ChargeCommission(ctx context.Context, walletID string, amount int64, rideRef string) (*domain.LedgerEntry, error) {
	wallet, entry, err := s.walletRepo.ApplyEntry(ctx, walletID, func(w *domain.Wallet) (*domain.LedgerEntry, error) {
		return w.ChargeCommission(uuid.NewString(), amount, rideRef, time.Now())
	})
	if err != nil {
		s.logRejection(ctx, err, "Commission charge rejected", walletID)
		return nil, err
	}
	s.LogInfo(ctx, "Commission charged",
		slog.String("wallet_id", walletID),
		slog.String("ride_ref", rideRef),
		slog.Int64("amount", amount),
		slog.Int64("balance", wallet.Balance))
	return entry, nil
}

// RequestWithdrawal runs the gatekeeper checks and, if they pass, records a
// PENDING withdrawal and reserves the amount against the daily and monthly
// counters. The balance is debited only on confirmation.
func (s *walletService) RequestWithdrawal(ctx context.Context, walletID string, amount int64, requesterUserID string) (*domain.LedgerEntry, error) {
	verified, err := s.verifiedForWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	_, entry, err := s.walletRepo.ApplyEntry(ctx, walletID, func(w *domain.Wallet) (*domain.LedgerEntry, error) {
		if err := s.authorizeOwner(w, requesterUserID); err != nil {
			return nil, err
		}
		return w.RequestWithdrawal(uuid.NewString(), amount, verified, time.Now())
	})
	if err != nil {
		s.logRejection(ctx, err, "Withdrawal request rejected", walletID)
		return nil, err
	}
	s.LogInfo(ctx, "Withdrawal requested",
		slog.String("wallet_id", walletID),
		slog.String("entry_id", entry.EntryID),
		slog.Int64("amount", amount))
	return entry, nil
}

// ConfirmWithdrawal finalizes a PENDING withdrawal: SUCCEEDED debits the
// balance, FAILED releases the reserved counters. Idempotent on settled
// entries.
func (s *walletService) ConfirmWithdrawal(ctx context.Context, entryID string, succeeded bool) (*domain.LedgerEntry, error) {
	walletID, err := s.walletRepo.FindWalletIDByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	wallet, entry, err := s.walletRepo.ApplyEntry(ctx, walletID, func(w *domain.Wallet) (*domain.LedgerEntry, error) {
		return w.SettleWithdrawal(entryID, succeeded, time.Now())
	})
	if err != nil {
		s.logRejection(ctx, err, "Withdrawal confirmation rejected", walletID)
		return nil, err
	}
	s.LogInfo(ctx, "Withdrawal settled",
		slog.String("wallet_id", walletID),
		slog.String("entry_id", entryID),
		slog.String("status", string(entry.Status)),
		slog.Int64("balance", wallet.Balance))
	return entry, nil
}

// EvaluateAutoRecharge applies the auto-recharge policy once. The pending
// auto-recharge entry debounces repeat evaluations until it settles.
func (s *walletService) EvaluateAutoRecharge(ctx context.Context, walletID string) (*domain.AutoRechargeOutcome, error) {
	triggered := false
	_, entry, err := s.walletRepo.ApplyEntry(ctx, walletID, func(w *domain.Wallet) (*domain.LedgerEntry, error) {
		e, fired, err := w.EvaluateAutoRecharge(uuid.NewString(), time.Now())
		triggered = fired
		return e, err
	})
	if err != nil {
		s.logRejection(ctx, err, "Auto-recharge evaluation failed", walletID)
		return nil, err
	}
	if triggered {
		s.LogInfo(ctx, "Auto-recharge triggered",
			slog.String("wallet_id", walletID),
			slog.String("entry_id", entry.EntryID),
			slog.Int64("amount", entry.Amount))
	}
	return &domain.AutoRechargeOutcome{Triggered: triggered, Entry: entry}, nil
}

// ConfigureAutoRecharge installs or replaces the wallet's auto-recharge
// policy.
func (s *walletService) ConfigureAutoRecharge(ctx context.Context, walletID string, req dto.AutoRechargeRequest, userID string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.UpdateSettings(ctx, walletID, func(w *domain.Wallet) error {
		if err := s.authorizeOwner(w, userID); err != nil {
			return err
		}
		return w.ConfigureAutoRecharge(req.Threshold, req.Amount, req.Method, userID, time.Now())
	})
	if err != nil {
		s.logRejection(ctx, err, "Auto-recharge configuration rejected", walletID)
		return nil, err
	}
	s.LogInfo(ctx, "Auto-recharge configured",
		slog.String("wallet_id", walletID),
		slog.Int64("threshold", req.Threshold),
		slog.Int64("amount", req.Amount))
	return wallet, nil
}

// DisableAutoRecharge removes the auto-recharge policy.
func (s *walletService) DisableAutoRecharge(ctx context.Context, walletID string, userID string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.UpdateSettings(ctx, walletID, func(w *domain.Wallet) error {
		if err := s.authorizeOwner(w, userID); err != nil {
			return err
		}
		w.DisableAutoRecharge(userID, time.Now())
		return nil
	})
	if err != nil {
		s.logRejection(ctx, err, "Auto-recharge removal rejected", walletID)
		return nil, err
	}
	s.LogInfo(ctx, "Auto-recharge disabled", slog.String("wallet_id", walletID))
	return wallet, nil
}

// ConfigurePayout sets the mobile-money payout destination required before
// any withdrawal.
func (s *walletService) ConfigurePayout(ctx context.Context, walletID string, req dto.PayoutSettingsRequest, userID string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.UpdateSettings(ctx, walletID, func(w *domain.Wallet) error {
		if err := s.authorizeOwner(w, userID); err != nil {
			return err
		}
		return w.ConfigurePayout(req.MobileNumber, req.Operator, req.HolderName, userID, time.Now())
	})
	if err != nil {
		s.logRejection(ctx, err, "Payout configuration rejected", walletID)
		return nil, err
	}
	s.LogInfo(ctx, "Payout settings configured", slog.String("wallet_id", walletID))
	return wallet, nil
}

func (s *walletService) authorizeOwner(w *domain.Wallet, requesterUserID string) error {
	if requesterUserID != "" && w.UserID != requesterUserID {
		return fmt.Errorf("%w: wallet %s does not belong to user %s", apperrors.ErrForbidden, w.WalletID, requesterUserID)
	}
	return nil
}

func (s *walletService) verifiedForWallet(ctx context.Context, walletID string) (bool, error) {
	wallet, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return false, err
	}
	return s.users.IsVerified(ctx, wallet.UserID)
}

// logRejection logs business rejections at warn level and infrastructure
// failures at error level.
func (s *walletService) logRejection(ctx context.Context, err error, msg string, walletID string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		s.LogError(ctx, err, msg, slog.String("wallet_id", walletID))
		return
	}
	s.GetLogger(ctx).Warn(msg, slog.String("wallet_id", walletID), slog.String("reason", err.Error()))
}
