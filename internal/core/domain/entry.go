package domain

import (
	"fmt"
	"time"
)

// EntryType tags a ledger entry variant.
type EntryType string

const (
	EntryRecharge   EntryType = "RECHARGE"
	EntryCommission EntryType = "COMMISSION"
	EntryWithdrawal EntryType = "WITHDRAWAL"
)

// EntryStatus is the lifecycle state of a ledger entry. Which values are
// legal depends on the entry type: recharges and withdrawals settle to
// SUCCEEDED or FAILED, commissions to CHARGED or CANCELLED.
type EntryStatus string

const (
	StatusPending   EntryStatus = "PENDING"
	StatusSucceeded EntryStatus = "SUCCEEDED"
	StatusFailed    EntryStatus = "FAILED"
	StatusCharged   EntryStatus = "CHARGED"
	StatusCancelled EntryStatus = "CANCELLED"
)

// EntryOrigin records whether an entry was requested by the user or
// synthesized by the auto-recharge policy.
type EntryOrigin string

const (
	OriginUser   EntryOrigin = "USER"
	OriginSystem EntryOrigin = "SYSTEM"
)

// PaymentMethod is the mobile-money channel used for recharges and payouts.
type PaymentMethod string

const (
	MethodWave        PaymentMethod = "WAVE"
	MethodOrangeMoney PaymentMethod = "ORANGE_MONEY"
	MethodFreeMoney   PaymentMethod = "FREE_MONEY"
)

// LedgerEntry is one line of a wallet's append-only history. Amounts are
// integer FCFA. Exactly one of IdempotencyKey (recharges) or RideRef
// (commissions) is set; withdrawals carry neither.
type LedgerEntry struct {
	EntryID        string        `json:"entryID"`
	WalletID       string        `json:"walletID"`
	Type           EntryType     `json:"type"`
	Amount         int64         `json:"amount"`
	Status         EntryStatus   `json:"status"`
	Method         PaymentMethod `json:"method,omitempty"`
	IdempotencyKey string        `json:"idempotencyKey,omitempty"`
	RideRef        string        `json:"rideRef,omitempty"`
	Origin         EntryOrigin   `json:"origin"`
	CreatedAt      time.Time     `json:"createdAt"`
	SettledAt      *time.Time    `json:"settledAt,omitempty"`
}

// Settled reports whether the entry reached a terminal status. Settled
// entries are immutable.
func (e *LedgerEntry) Settled() bool {
	switch e.Status {
	case StatusSucceeded, StatusFailed, StatusCharged, StatusCancelled:
		return true
	case StatusPending:
		return false
	}
	return false
}

// BalanceEffect is the signed contribution of this entry to the wallet
// balance, per the reconciliation rule: succeeded recharges add, charged
// commissions and succeeded withdrawals subtract, everything else is zero.
func (e *LedgerEntry) BalanceEffect() int64 {
	switch e.Type {
	case EntryRecharge:
		if e.Status == StatusSucceeded {
			return e.Amount
		}
	case EntryCommission:
		if e.Status == StatusCharged {
			return -e.Amount
		}
	case EntryWithdrawal:
		if e.Status == StatusSucceeded {
			return -e.Amount
		}
	}
	return 0
}

// settledStatus maps a confirmation outcome to the terminal status for the
// entry type.
func (e *LedgerEntry) settledStatus(succeeded bool) EntryStatus {
	if e.Type == EntryCommission {
		if succeeded {
			return StatusCharged
		}
		return StatusCancelled
	}
	if succeeded {
		return StatusSucceeded
	}
	return StatusFailed
}

// validateStatus rejects status values that are illegal for the entry type.
func (e *LedgerEntry) validateStatus() error {
	switch e.Type {
	case EntryRecharge, EntryWithdrawal:
		switch e.Status {
		case StatusPending, StatusSucceeded, StatusFailed:
			return nil
		}
	case EntryCommission:
		switch e.Status {
		case StatusPending, StatusCharged, StatusCancelled:
			return nil
		}
	default:
		return fmt.Errorf("unknown entry type %q", e.Type)
	}
	return fmt.Errorf("status %q is not valid for %s entries", e.Status, e.Type)
}
