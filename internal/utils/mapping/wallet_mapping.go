package mapping

import (
	"github.com/sunucar/sunucar_backend/internal/core/domain"
	"github.com/sunucar/sunucar_backend/internal/models"
)

// ToModelWallet converts a domain.Wallet to its database model. Entries are
// persisted separately.
func ToModelWallet(w domain.Wallet) models.Wallet {
	m := models.Wallet{
		WalletID:           w.WalletID,
		UserID:             w.UserID,
		Balance:            w.Balance,
		MinimumThreshold:   w.MinimumThreshold,
		DailyCap:           w.Limits.DailyCap,
		MonthlyCap:         w.Limits.MonthlyCap,
		WithdrawnToday:     w.Limits.WithdrawnToday,
		WithdrawnThisMonth: w.Limits.WithdrawnThisMonth,
		DayAnchor:          w.Limits.DayAnchor,
		MonthAnchor:        w.Limits.MonthAnchor,
		AuditFields:        toModelAudit(w.AuditFields),
	}
	if w.AutoRecharge != nil {
		active := w.AutoRecharge.Active
		threshold := w.AutoRecharge.Threshold
		amount := w.AutoRecharge.Amount
		method := string(w.AutoRecharge.Method)
		m.AutoRechargeActive = &active
		m.AutoRechargeThreshold = &threshold
		m.AutoRechargeAmount = &amount
		m.AutoRechargeMethod = &method
	}
	if w.Payout != nil {
		mobile := w.Payout.MobileNumber
		operator := string(w.Payout.Operator)
		holder := w.Payout.HolderName
		m.PayoutMobileNumber = &mobile
		m.PayoutOperator = &operator
		m.PayoutHolderName = &holder
	}
	return m
}

// ToDomainWallet converts a database model to a domain.Wallet. The entry
// history is attached by the repository.
func ToDomainWallet(m models.Wallet) domain.Wallet {
	w := domain.Wallet{
		WalletID:         m.WalletID,
		UserID:           m.UserID,
		Balance:          m.Balance,
		MinimumThreshold: m.MinimumThreshold,
		Limits: domain.WithdrawalLimits{
			DailyCap:           m.DailyCap,
			MonthlyCap:         m.MonthlyCap,
			WithdrawnToday:     m.WithdrawnToday,
			WithdrawnThisMonth: m.WithdrawnThisMonth,
			DayAnchor:          m.DayAnchor.UTC(),
			MonthAnchor:        m.MonthAnchor.UTC(),
		},
		AuditFields: toDomainAudit(m.AuditFields),
	}
	if m.AutoRechargeActive != nil && m.AutoRechargeThreshold != nil && m.AutoRechargeAmount != nil && m.AutoRechargeMethod != nil {
		w.AutoRecharge = &domain.AutoRechargePolicy{
			Active:    *m.AutoRechargeActive,
			Threshold: *m.AutoRechargeThreshold,
			Amount:    *m.AutoRechargeAmount,
			Method:    domain.PaymentMethod(*m.AutoRechargeMethod),
		}
	}
	if m.PayoutMobileNumber != nil && m.PayoutOperator != nil && m.PayoutHolderName != nil {
		w.Payout = &domain.PayoutSettings{
			MobileNumber: *m.PayoutMobileNumber,
			Operator:     domain.PaymentMethod(*m.PayoutOperator),
			HolderName:   *m.PayoutHolderName,
		}
	}
	return w
}

// ToModelWalletEntry converts a domain.LedgerEntry to its database model.
func ToModelWalletEntry(e domain.LedgerEntry) models.WalletEntry {
	m := models.WalletEntry{
		EntryID:   e.EntryID,
		WalletID:  e.WalletID,
		EntryType: string(e.Type),
		Amount:    e.Amount,
		Status:    string(e.Status),
		Origin:    string(e.Origin),
		CreatedAt: e.CreatedAt,
		SettledAt: e.SettledAt,
	}
	if e.Method != "" {
		method := string(e.Method)
		m.Method = &method
	}
	if e.IdempotencyKey != "" {
		key := e.IdempotencyKey
		m.IdempotencyKey = &key
	}
	if e.RideRef != "" {
		ref := e.RideRef
		m.RideRef = &ref
	}
	return m
}

// ToDomainWalletEntry converts a database model to a domain.LedgerEntry.
func ToDomainWalletEntry(m models.WalletEntry) domain.LedgerEntry {
	e := domain.LedgerEntry{
		EntryID:   m.EntryID,
		WalletID:  m.WalletID,
		Type:      domain.EntryType(m.EntryType),
		Amount:    m.Amount,
		Status:    domain.EntryStatus(m.Status),
		Origin:    domain.EntryOrigin(m.Origin),
		CreatedAt: m.CreatedAt.UTC(),
		SettledAt: m.SettledAt,
	}
	if m.Method != nil {
		e.Method = domain.PaymentMethod(*m.Method)
	}
	if m.IdempotencyKey != nil {
		e.IdempotencyKey = *m.IdempotencyKey
	}
	if m.RideRef != nil {
		e.RideRef = *m.RideRef
	}
	return e
}

// ToDomainWalletEntrySlice converts a slice of entry models.
func ToDomainWalletEntrySlice(ms []models.WalletEntry) []domain.LedgerEntry {
	entries := make([]domain.LedgerEntry, len(ms))
	for i, m := range ms {
		entries[i] = ToDomainWalletEntry(m)
	}
	return entries
}

func toModelAudit(a domain.AuditFields) models.AuditFields {
	return models.AuditFields{
		CreatedAt:     a.CreatedAt,
		CreatedBy:     a.CreatedBy,
		LastUpdatedAt: a.LastUpdatedAt,
		LastUpdatedBy: a.LastUpdatedBy,
	}
}

func toDomainAudit(a models.AuditFields) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     a.CreatedAt.UTC(),
		CreatedBy:     a.CreatedBy,
		LastUpdatedAt: a.LastUpdatedAt.UTC(),
		LastUpdatedBy: a.LastUpdatedBy,
	}
}
