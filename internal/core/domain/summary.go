package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletSummary is a read-only projection of a wallet: totals, eligibility
// flags, and time-windowed aggregates. Built from a snapshot; never mutates
// the wallet.
type WalletSummary struct {
	WalletID             string          `json:"walletID"`
	Balance              int64           `json:"balance"`
	Funded               bool            `json:"funded"`
	WithdrawalEligible   bool            `json:"withdrawalEligible"`
	IneligibilityReasons []string        `json:"ineligibilityReasons,omitempty"`
	TotalRecharged       int64           `json:"totalRecharged"`
	TotalCommissions     int64           `json:"totalCommissions"`
	TotalWithdrawn       int64           `json:"totalWithdrawn"`
	Net                  int64           `json:"net"`
	AverageRecharge      decimal.Decimal `json:"averageRecharge"`
	RechargedThisMonth   int64           `json:"rechargedThisMonth"`
	CommissionsThisMonth int64           `json:"commissionsThisMonth"`
	RechargedThisYear    int64           `json:"rechargedThisYear"`
	CommissionsThisYear  int64           `json:"commissionsThisYear"`
	EntryCount           int             `json:"entryCount"`
}

// BuildSummary computes the summary for a wallet snapshot. Withdrawal
// eligibility tests only the configuration preconditions (amount 0), per
// the gatekeeper contract.
func BuildSummary(w *Wallet, verified bool, now time.Time) *WalletSummary {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)

	s := &WalletSummary{
		WalletID:   w.WalletID,
		Balance:    w.Balance,
		Funded:     w.IsFunded(),
		EntryCount: len(w.Entries),
	}

	var rechargeCount int64
	for i := range w.Entries {
		e := &w.Entries[i]
		switch {
		case e.Type == EntryRecharge && e.Status == StatusSucceeded:
			s.TotalRecharged += e.Amount
			rechargeCount++
			if !e.CreatedAt.Before(monthStart) {
				s.RechargedThisMonth += e.Amount
			}
			if !e.CreatedAt.Before(yearStart) {
				s.RechargedThisYear += e.Amount
			}
		case e.Type == EntryCommission && e.Status == StatusCharged:
			s.TotalCommissions += e.Amount
			if !e.CreatedAt.Before(monthStart) {
				s.CommissionsThisMonth += e.Amount
			}
			if !e.CreatedAt.Before(yearStart) {
				s.CommissionsThisYear += e.Amount
			}
		case e.Type == EntryWithdrawal && e.Status == StatusSucceeded:
			s.TotalWithdrawn += e.Amount
		}
	}
	s.Net = s.TotalRecharged - s.TotalCommissions - s.TotalWithdrawn

	if rechargeCount > 0 {
		s.AverageRecharge = decimal.NewFromInt(s.TotalRecharged).
			DivRound(decimal.NewFromInt(rechargeCount), 2)
	} else {
		s.AverageRecharge = decimal.Zero
	}

	// Eligibility from a copy so the snapshot's limit anchors stay untouched.
	probe := *w
	failures := probe.CheckWithdrawal(0, verified, now)
	s.WithdrawalEligible = len(failures) == 0
	for _, f := range failures {
		s.IneligibilityReasons = append(s.IneligibilityReasons, f.Error())
	}
	return s
}

// PaymentMode is how a rider pays for a trip; wallet mode requires the
// driver's wallet to be funded so commission can be charged at settlement.
type PaymentMode string

const (
	PaymentModeWallet PaymentMode = "WALLET"
	PaymentModeCash   PaymentMode = "CASH"
)

// RideEligibility is the acceptance gate consulted before a driver may take
// a ride in a given payment mode.
type RideEligibility struct {
	WalletID  string      `json:"walletID"`
	Mode      PaymentMode `json:"paymentMode"`
	Eligible  bool        `json:"eligible"`
	Funded    bool        `json:"funded"`
	Verified  bool        `json:"verified"`
	Suspended bool        `json:"suspended"`
	Reasons   []string    `json:"reasons,omitempty"`
}

// CheckRideEligibility decides whether a ride may be accepted. Commission
// charging is fail-closed, so wallet-paid rides require a funded wallet up
// front; cash rides only need a verified, non-suspended driver.
func CheckRideEligibility(w *Wallet, mode PaymentMode, verified, suspended bool) *RideEligibility {
	e := &RideEligibility{
		WalletID:  w.WalletID,
		Mode:      mode,
		Funded:    w.IsFunded(),
		Verified:  verified,
		Suspended: suspended,
	}
	if suspended {
		e.Reasons = append(e.Reasons, "driver account is suspended")
	}
	if !verified {
		e.Reasons = append(e.Reasons, "identity verification not approved")
	}
	if mode == PaymentModeWallet && !e.Funded {
		e.Reasons = append(e.Reasons, "wallet balance at or below minimum threshold")
	}
	e.Eligible = len(e.Reasons) == 0
	return e
}
