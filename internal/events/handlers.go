package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/sunucar/sunucar_backend/internal/apperrors"
	portssvc "github.com/sunucar/sunucar_backend/internal/core/ports/services"
)

// Routing keys consumed by the wallet service.
const (
	RideCompletedKey    = "ride.completed"
	PaymentConfirmedKey = "payment.confirmed"
)

// Payment confirmation kinds.
const (
	KindRecharge   = "RECHARGE"
	KindWithdrawal = "WITHDRAWAL"
)

const handlerTimeout = 30 * time.Second

// RideCompletedEvent is published by the ride service when a trip ends.
type RideCompletedEvent struct {
	RideRef          string `json:"ride_ref"`
	DriverWalletID   string `json:"driver_wallet_id"`
	CommissionAmount int64  `json:"commission_amount"`
}

// PaymentConfirmedEvent is published by the payment gateway callback
// processor once a mobile money operation settles.
type PaymentConfirmedEvent struct {
	EntryID   string `json:"entry_id"`
	Kind      string `json:"kind"`
	Succeeded bool   `json:"succeeded"`
}

// WalletEventHandlers consumes platform events and drives the wallet
// service: commissions on ride completion, settlement on payment
// confirmation.
type WalletEventHandlers struct {
	wallet portssvc.WalletSvcFacade
	logger *slog.Logger
}

// NewWalletEventHandlers creates the event handler set.
func NewWalletEventHandlers(wallet portssvc.WalletSvcFacade, logger *slog.Logger) *WalletEventHandlers {
	return &WalletEventHandlers{wallet: wallet, logger: logger}
}

// Bindings returns the routing-key to handler map for ConsumeWithBindings.
func (h *WalletEventHandlers) Bindings() map[string]func([]byte) bool {
	return map[string]func([]byte) bool{
		RideCompletedKey:    h.HandleRideCompleted,
		PaymentConfirmedKey: h.HandlePaymentConfirmed,
	}
}

// HandleRideCompleted charges the platform commission for a completed ride,
// then evaluates the driver's auto-recharge policy against the new balance.
// Re-delivery of the same event is safe: the commission is deduplicated on
// the ride reference.
func (h *WalletEventHandlers) HandleRideCompleted(body []byte) bool {
	var evt RideCompletedEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		h.logger.Error("malformed ride.completed payload, dropping", slog.String("error", err.Error()))
		return true
	}
	if evt.RideRef == "" || evt.DriverWalletID == "" {
		h.logger.Error("ride.completed missing ride_ref or driver_wallet_id, dropping",
			slog.String("ride_ref", evt.RideRef))
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	_, err := h.wallet.ChargeCommission(ctx, evt.DriverWalletID, evt.CommissionAmount, evt.RideRef)
	var insufficient *apperrors.InsufficientFundsError
	switch {
	case err == nil:
	case errors.As(err, &insufficient):
		// Fail-closed: the debit was refused, nothing was recorded. Leave
		// the balance low and let the auto-recharge evaluation below top
		// the wallet up for the next attempt.
		h.logger.Warn("commission refused for insufficient funds",
			slog.String("wallet_id", evt.DriverWalletID),
			slog.String("ride_ref", evt.RideRef),
			slog.Int64("balance", insufficient.Balance),
			slog.Int64("required", insufficient.Required))
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrValidation):
		h.logger.Error("commission rejected, dropping event",
			slog.String("wallet_id", evt.DriverWalletID),
			slog.String("ride_ref", evt.RideRef),
			slog.String("error", err.Error()))
		return true
	default:
		h.logger.Error("commission failed, re-queuing",
			slog.String("wallet_id", evt.DriverWalletID),
			slog.String("ride_ref", evt.RideRef),
			slog.String("error", err.Error()))
		return false
	}

	outcome, err := h.wallet.EvaluateAutoRecharge(ctx, evt.DriverWalletID)
	if err != nil {
		// The commission already landed; do not re-queue and double-process.
		h.logger.Error("auto-recharge evaluation failed",
			slog.String("wallet_id", evt.DriverWalletID),
			slog.String("error", err.Error()))
		return true
	}
	if outcome.Triggered {
		h.logger.Info("auto-recharge triggered",
			slog.String("wallet_id", evt.DriverWalletID),
			slog.String("entry_id", outcome.Entry.EntryID),
			slog.Int64("amount", outcome.Entry.Amount))
	}
	return true
}

// HandlePaymentConfirmed settles a pending recharge or withdrawal once the
// mobile money operator reports the outcome. Settlement is idempotent, so
// re-delivery is harmless.
func (h *WalletEventHandlers) HandlePaymentConfirmed(body []byte) bool {
	var evt PaymentConfirmedEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		h.logger.Error("malformed payment.confirmed payload, dropping", slog.String("error", err.Error()))
		return true
	}
	if evt.EntryID == "" {
		h.logger.Error("payment.confirmed missing entry_id, dropping")
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	var err error
	switch evt.Kind {
	case KindRecharge:
		_, err = h.wallet.ConfirmRecharge(ctx, evt.EntryID, evt.Succeeded)
	case KindWithdrawal:
		_, err = h.wallet.ConfirmWithdrawal(ctx, evt.EntryID, evt.Succeeded)
	default:
		h.logger.Error("payment.confirmed with unknown kind, dropping",
			slog.String("entry_id", evt.EntryID),
			slog.String("kind", evt.Kind))
		return true
	}

	var insufficient *apperrors.InsufficientFundsError
	switch {
	case err == nil:
		return true
	case errors.As(err, &insufficient):
		// Settling this withdrawal would overdraw the wallet. The entry
		// stays pending; re-queuing would just spin, so flag it for ops.
		h.logger.Error("withdrawal settlement refused, would overdraw wallet",
			slog.String("entry_id", evt.EntryID),
			slog.Int64("balance", insufficient.Balance),
			slog.Int64("required", insufficient.Required))
		return true
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrValidation):
		h.logger.Error("settlement rejected, dropping event",
			slog.String("entry_id", evt.EntryID),
			slog.String("error", err.Error()))
		return true
	default:
		h.logger.Error("settlement failed, re-queuing",
			slog.String("entry_id", evt.EntryID),
			slog.String("error", err.Error()))
		return false
	}
}
