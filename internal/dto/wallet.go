package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sunucar/sunucar_backend/internal/core/domain"
	"github.com/sunucar/sunucar_backend/internal/utils"
)

// RechargeRequest defines a funding request. The idempotency key is
// supplied by the caller so retried gateway callbacks do not credit twice.
type RechargeRequest struct {
	Amount         int64                `json:"amount" binding:"required,gt=0"`
	Method         domain.PaymentMethod `json:"method" binding:"required,oneof=WAVE ORANGE_MONEY FREE_MONEY"`
	IdempotencyKey string               `json:"idempotencyKey" binding:"required"`
}

// ConfirmRequest settles a PENDING recharge or withdrawal.
// Succeeded is a pointer so `false` survives binding.
type ConfirmRequest struct {
	Succeeded *bool `json:"succeeded" binding:"required"`
}

// CommissionRequest is the platform-fee debit for a completed ride.
type CommissionRequest struct {
	Amount  int64  `json:"amount" binding:"required,gt=0"`
	RideRef string `json:"rideRef" binding:"required"`
}

// WithdrawalRequest asks for a payout to the configured mobile-money
// destination.
type WithdrawalRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// AutoRechargeRequest configures the auto-recharge policy.
type AutoRechargeRequest struct {
	Threshold int64                `json:"threshold" binding:"required,gt=0"`
	Amount    int64                `json:"amount" binding:"required,gt=0"`
	Method    domain.PaymentMethod `json:"method" binding:"required,oneof=WAVE ORANGE_MONEY FREE_MONEY"`
}

// PayoutSettingsRequest configures the withdrawal destination.
type PayoutSettingsRequest struct {
	MobileNumber string               `json:"mobileNumber" binding:"required"`
	Operator     domain.PaymentMethod `json:"operator" binding:"required,oneof=WAVE ORANGE_MONEY FREE_MONEY"`
	HolderName   string               `json:"holderName" binding:"required"`
}

// ListEntriesParams are the history query parameters.
type ListEntriesParams struct {
	Type      string     `form:"type" binding:"omitempty,oneof=RECHARGE COMMISSION WITHDRAWAL"`
	Status    string     `form:"status" binding:"omitempty,oneof=PENDING SUCCEEDED FAILED CHARGED CANCELLED"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Limit     int        `form:"limit,default=20" binding:"omitempty,gt=0,lte=100"`
	NextToken *string    `form:"nextToken"`
}

// EntryResponse mirrors domain.LedgerEntry for API responses.
type EntryResponse struct {
	EntryID   string               `json:"entryID"`
	WalletID  string               `json:"walletID"`
	Type      domain.EntryType     `json:"type"`
	Amount    int64                `json:"amount"`
	Status    domain.EntryStatus   `json:"status"`
	Method    domain.PaymentMethod `json:"method,omitempty"`
	RideRef   string               `json:"rideRef,omitempty"`
	Origin    domain.EntryOrigin   `json:"origin"`
	CreatedAt time.Time            `json:"createdAt"`
	SettledAt *time.Time           `json:"settledAt,omitempty"`
}

// ToEntryResponse converts a domain.LedgerEntry to its response DTO.
func ToEntryResponse(e *domain.LedgerEntry) EntryResponse {
	return EntryResponse{
		EntryID:   e.EntryID,
		WalletID:  e.WalletID,
		Type:      e.Type,
		Amount:    e.Amount,
		Status:    e.Status,
		Method:    e.Method,
		RideRef:   e.RideRef,
		Origin:    e.Origin,
		CreatedAt: e.CreatedAt,
		SettledAt: e.SettledAt,
	}
}

// ToEntryResponseList converts a slice of entries.
func ToEntryResponseList(entries []domain.LedgerEntry) []EntryResponse {
	res := make([]EntryResponse, len(entries))
	for i := range entries {
		res[i] = ToEntryResponse(&entries[i])
	}
	return res
}

// ListEntriesResponse wraps a history page.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// WalletResponse exposes wallet configuration without the entry history.
type WalletResponse struct {
	WalletID         string                     `json:"walletID"`
	UserID           string                     `json:"userID"`
	Balance          int64                      `json:"balance"`
	MinimumThreshold int64                      `json:"minimumThreshold"`
	Funded           bool                       `json:"funded"`
	AutoRecharge     *domain.AutoRechargePolicy `json:"autoRecharge,omitempty"`
	PayoutSettings   *domain.PayoutSettings     `json:"payoutSettings,omitempty"`
	Limits           domain.WithdrawalLimits    `json:"limits"`
	CreatedAt        time.Time                  `json:"createdAt"`
}

// ToWalletResponse converts a domain.Wallet to its response DTO.
func ToWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		WalletID:         w.WalletID,
		UserID:           w.UserID,
		Balance:          w.Balance,
		MinimumThreshold: w.MinimumThreshold,
		Funded:           w.IsFunded(),
		AutoRecharge:     w.AutoRecharge,
		PayoutSettings:   w.Payout,
		Limits:           w.Limits,
		CreatedAt:        w.CreatedAt,
	}
}

// SummaryResponse mirrors domain.WalletSummary.
type SummaryResponse struct {
	WalletID             string          `json:"walletID"`
	Balance              int64           `json:"balance"`
	BalanceDisplay       string          `json:"balanceDisplay"`
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

// ToSummaryResponse converts a domain.WalletSummary to its response DTO.
func ToSummaryResponse(s *domain.WalletSummary) SummaryResponse {
	return SummaryResponse{
		WalletID:             s.WalletID,
		Balance:              s.Balance,
		BalanceDisplay:       utils.FormatFCFA(s.Balance),
		Funded:               s.Funded,
		WithdrawalEligible:   s.WithdrawalEligible,
		IneligibilityReasons: s.IneligibilityReasons,
		TotalRecharged:       s.TotalRecharged,
		TotalCommissions:     s.TotalCommissions,
		TotalWithdrawn:       s.TotalWithdrawn,
		Net:                  s.Net,
		AverageRecharge:      s.AverageRecharge,
		RechargedThisMonth:   s.RechargedThisMonth,
		CommissionsThisMonth: s.CommissionsThisMonth,
		RechargedThisYear:    s.RechargedThisYear,
		CommissionsThisYear:  s.CommissionsThisYear,
		EntryCount:           s.EntryCount,
	}
}

// WithdrawalDecisionResponse mirrors the gatekeeper decision.
type WithdrawalDecisionResponse struct {
	Allowed bool     `json:"allowed"`
	Reasons []string `json:"reasons,omitempty"`
}

// RideEligibilityResponse mirrors domain.RideEligibility.
type RideEligibilityResponse struct {
	WalletID    string             `json:"walletID"`
	PaymentMode domain.PaymentMode `json:"paymentMode"`
	Eligible    bool               `json:"eligible"`
	Funded      bool               `json:"funded"`
	Verified    bool               `json:"verified"`
	Suspended   bool               `json:"suspended"`
	Reasons     []string           `json:"reasons,omitempty"`
}

// AutoRechargeOutcomeResponse reports an auto-recharge evaluation.
type AutoRechargeOutcomeResponse struct {
	Triggered bool           `json:"triggered"`
	Entry     *EntryResponse `json:"entry,omitempty"`
}
