package models

import (
	"time"
)

// Wallet is the database representation of a driver wallet. Optional
// groups (auto-recharge policy, payout settings) are flattened into
// nullable columns.
type Wallet struct {
	WalletID         string `db:"wallet_id"`
	UserID           string `db:"user_id"`
	Balance          int64  `db:"balance"`
	MinimumThreshold int64  `db:"minimum_threshold"`

	AutoRechargeActive    *bool   `db:"auto_recharge_active"`
	AutoRechargeThreshold *int64  `db:"auto_recharge_threshold"`
	AutoRechargeAmount    *int64  `db:"auto_recharge_amount"`
	AutoRechargeMethod    *string `db:"auto_recharge_method"`

	PayoutMobileNumber *string `db:"payout_mobile_number"`
	PayoutOperator     *string `db:"payout_operator"`
	PayoutHolderName   *string `db:"payout_holder_name"`

	DailyCap           int64     `db:"daily_cap"`
	MonthlyCap         int64     `db:"monthly_cap"`
	WithdrawnToday     int64     `db:"withdrawn_today"`
	WithdrawnThisMonth int64     `db:"withdrawn_this_month"`
	DayAnchor          time.Time `db:"day_anchor"`
	MonthAnchor        time.Time `db:"month_anchor"`

	AuditFields
}

// WalletEntry is the database representation of a ledger entry.
type WalletEntry struct {
	EntryID        string     `db:"entry_id"`
	WalletID       string     `db:"wallet_id"`
	EntryType      string     `db:"entry_type"`
	Amount         int64      `db:"amount"`
	Status         string     `db:"status"`
	Method         *string    `db:"method"`
	IdempotencyKey *string    `db:"idempotency_key"`
	RideRef        *string    `db:"ride_ref"`
	Origin         string     `db:"origin"`
	CreatedAt      time.Time  `db:"created_at"`
	SettledAt      *time.Time `db:"settled_at"`
}
