package domain

import (
	"fmt"
	"time"

	"github.com/sunucar/sunucar_backend/internal/apperrors"
)

// AutoRechargePolicy triggers a system-originated recharge when the balance
// falls below Threshold. At most one auto-recharge may be in flight per
// breach; a new trigger waits for the previous entry to settle.
type AutoRechargePolicy struct {
	Active    bool          `json:"active"`
	Threshold int64         `json:"threshold"`
	Amount    int64         `json:"amount"`
	Method    PaymentMethod `json:"paymentMethod"`
}

// PayoutSettings is the mobile-money destination for withdrawals. Required
// before any withdrawal may proceed.
type PayoutSettings struct {
	MobileNumber string        `json:"mobileNumber"`
	Operator     PaymentMethod `json:"operator"`
	HolderName   string        `json:"holderName"`
}

// Wallet is the compte covoiturage aggregate: one per user, balance in
// integer FCFA, with an append-only entry history. Entries are never
// reordered or deleted; insertion order is chronological order.
type Wallet struct {
	WalletID         string              `json:"walletID"`
	UserID           string              `json:"userID"`
	Balance          int64               `json:"balance"`
	MinimumThreshold int64               `json:"minimumThreshold"`
	AutoRecharge     *AutoRechargePolicy `json:"autoRecharge,omitempty"`
	Payout           *PayoutSettings     `json:"payoutSettings,omitempty"`
	Limits           WithdrawalLimits    `json:"limits"`
	Entries          []LedgerEntry       `json:"entries"`
	AuditFields
}

// NewWallet creates an empty wallet for a user: zero balance, no policy, no
// payout settings, caps taken from platform configuration.
func NewWallet(walletID, userID string, minimumThreshold, dailyCap, monthlyCap int64, creatorUserID string, now time.Time) *Wallet {
	now = now.UTC()
	return &Wallet{
		WalletID:         walletID,
		UserID:           userID,
		MinimumThreshold: minimumThreshold,
		Limits: WithdrawalLimits{
			DailyCap:    dailyCap,
			MonthlyCap:  monthlyCap,
			DayAnchor:   now.Truncate(24 * time.Hour),
			MonthAnchor: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		},
		AuditFields: AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
}

// IsFunded reports whether the wallet balance is above the minimum
// threshold.
func (w *Wallet) IsFunded() bool {
	return w.Balance > w.MinimumThreshold
}

// FindEntry returns the entry with the given ID, or nil.
func (w *Wallet) FindEntry(entryID string) *LedgerEntry {
	for i := range w.Entries {
		if w.Entries[i].EntryID == entryID {
			return &w.Entries[i]
		}
	}
	return nil
}

// findRechargeByKey returns an existing recharge entry holding the
// idempotency key in PENDING or SUCCEEDED state, or nil. FAILED entries do
// not block a retry with the same key.
func (w *Wallet) findRechargeByKey(key string) *LedgerEntry {
	for i := range w.Entries {
		e := &w.Entries[i]
		if e.Type == EntryRecharge && e.IdempotencyKey == key &&
			(e.Status == StatusPending || e.Status == StatusSucceeded) {
			return e
		}
	}
	return nil
}

// findChargedCommission returns the CHARGED commission entry for rideRef, or nil.
func (w *Wallet) findChargedCommission(rideRef string) *LedgerEntry {
	for i := range w.Entries {
		e := &w.Entries[i]
		if e.Type == EntryCommission && e.RideRef == rideRef && e.Status == StatusCharged {
			return e
		}
	}
	return nil
}

// PendingSystemRecharge returns the unsettled auto-recharge entry, if any.
// Its presence debounces the auto-recharge policy.
func (w *Wallet) PendingSystemRecharge() *LedgerEntry {
	for i := range w.Entries {
		e := &w.Entries[i]
		if e.Type == EntryRecharge && e.Origin == OriginSystem && e.Status == StatusPending {
			return e
		}
	}
	return nil
}

// RequestRecharge appends a PENDING recharge entry. A retry carrying an
// idempotency key already seen in PENDING or SUCCEEDED state returns the
// original entry unchanged.
func (w *Wallet) RequestRecharge(entryID string, amount int64, method PaymentMethod, idempotencyKey string, origin EntryOrigin, now time.Time) (*LedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: recharge amount must be positive, got %d", apperrors.ErrValidation, amount)
	}
	if idempotencyKey == "" {
		return nil, fmt.Errorf("%w: idempotency key is required", apperrors.ErrValidation)
	}
	if existing := w.findRechargeByKey(idempotencyKey); existing != nil {
		return existing, nil
	}
	entry := LedgerEntry{
		EntryID:        entryID,
		WalletID:       w.WalletID,
		Type:           EntryRecharge,
		Amount:         amount,
		Status:         StatusPending,
		Method:         method,
		IdempotencyKey: idempotencyKey,
		Origin:         origin,
		CreatedAt:      now.UTC(),
	}
	return w.append(entry, now)
}

// SettleRecharge transitions a PENDING recharge to SUCCEEDED (crediting the
// balance) or FAILED (no balance change). Settling an already-settled entry
// is a no-op returning the entry as it stands.
func (w *Wallet) SettleRecharge(entryID string, succeeded bool, now time.Time) (*LedgerEntry, error) {
	entry := w.FindEntry(entryID)
	if entry == nil {
		return nil, apperrors.ErrNotFound
	}
	if entry.Type != EntryRecharge {
		return nil, fmt.Errorf("%w: entry %s is a %s, not a recharge", apperrors.ErrValidation, entryID, entry.Type)
	}
	if entry.Settled() {
		return entry, nil
	}
	return w.settle(entry, succeeded, now)
}

// ChargeCommission appends a CHARGED commission entry and debits the
// balance, atomically from the caller's point of view. Fail-closed: if the
// balance cannot cover the amount, nothing is recorded. A repeat call with
// an already-charged rideRef returns the existing entry.
func (w *Wallet) ChargeCommission(entryID string, amount int64, rideRef string, now time.Time) (*LedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: commission amount must be positive, got %d", apperrors.ErrValidation, amount)
	}
	if rideRef == "" {
		return nil, fmt.Errorf("%w: ride reference is required", apperrors.ErrValidation)
	}
	if existing := w.findChargedCommission(rideRef); existing != nil {
		return existing, nil
	}
	if w.Balance < amount {
		return nil, &apperrors.InsufficientFundsError{Balance: w.Balance, Required: amount}
	}
	entry := LedgerEntry{
		EntryID:   entryID,
		WalletID:  w.WalletID,
		Type:      EntryCommission,
		Amount:    amount,
		Status:    StatusCharged,
		RideRef:   rideRef,
		Origin:    OriginSystem,
		CreatedAt: now.UTC(),
	}
	settledAt := now.UTC()
	entry.SettledAt = &settledAt
	w.Balance -= amount
	return w.append(entry, now)
}

// CheckWithdrawal runs the gatekeeper checks for a withdrawal of amount and
// returns every failed check as a typed error. With amount == 0 only the
// configuration preconditions are tested (used for the eligibility flag).
// Rolls stale limit windows before checking.
func (w *Wallet) CheckWithdrawal(amount int64, verified bool, now time.Time) []error {
	var failures []error
	if w.Payout == nil {
		failures = append(failures, &apperrors.PreconditionError{Missing: apperrors.PreconditionPayoutSettings})
	}
	if !verified {
		failures = append(failures, &apperrors.PreconditionError{Missing: apperrors.PreconditionVerified})
	}
	if amount == 0 {
		return failures
	}
	if amount < 0 {
		failures = append(failures, fmt.Errorf("%w: withdrawal amount must be positive, got %d", apperrors.ErrValidation, amount))
		return failures
	}
	if amount > w.Balance {
		failures = append(failures, &apperrors.InsufficientFundsError{Balance: w.Balance, Required: amount})
	}
	w.Limits.RollIfStale(now)
	if w.Limits.WithdrawnToday+amount > w.Limits.DailyCap {
		failures = append(failures, &apperrors.LimitExceededError{
			Scope:     apperrors.LimitDaily,
			Cap:       w.Limits.DailyCap,
			Remaining: w.Limits.RemainingToday(),
			ResetsAt:  w.Limits.NextDayReset(),
		})
	}
	if w.Limits.WithdrawnThisMonth+amount > w.Limits.MonthlyCap {
		failures = append(failures, &apperrors.LimitExceededError{
			Scope:     apperrors.LimitMonthly,
			Cap:       w.Limits.MonthlyCap,
			Remaining: w.Limits.RemainingThisMonth(),
			ResetsAt:  w.Limits.NextMonthReset(),
		})
	}
	return failures
}

// RequestWithdrawal appends a PENDING withdrawal and reserves the amount
// against the daily and monthly counters. The balance is not debited until
// the payout is confirmed.
func (w *Wallet) RequestWithdrawal(entryID string, amount int64, verified bool, now time.Time) (*LedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive, got %d", apperrors.ErrValidation, amount)
	}
	if failures := w.CheckWithdrawal(amount, verified, now); len(failures) > 0 {
		return nil, failures[0]
	}
	entry := LedgerEntry{
		EntryID:   entryID,
		WalletID:  w.WalletID,
		Type:      EntryWithdrawal,
		Amount:    amount,
		Status:    StatusPending,
		Method:    w.Payout.Operator,
		Origin:    OriginUser,
		CreatedAt: now.UTC(),
	}
	w.Limits.Reserve(amount)
	return w.append(entry, now)
}

// SettleWithdrawal finalizes a PENDING withdrawal: SUCCEEDED debits the
// balance, FAILED releases the reserved counters. Idempotent on settled
// entries. A success that would overdraw the balance (commission charged
// between request and confirmation) is refused and the entry stays PENDING.
func (w *Wallet) SettleWithdrawal(entryID string, succeeded bool, now time.Time) (*LedgerEntry, error) {
	entry := w.FindEntry(entryID)
	if entry == nil {
		return nil, apperrors.ErrNotFound
	}
	if entry.Type != EntryWithdrawal {
		return nil, fmt.Errorf("%w: entry %s is a %s, not a withdrawal", apperrors.ErrValidation, entryID, entry.Type)
	}
	if entry.Settled() {
		return entry, nil
	}
	if succeeded && w.Balance < entry.Amount {
		return nil, &apperrors.InsufficientFundsError{Balance: w.Balance, Required: entry.Amount}
	}
	if !succeeded {
		w.Limits.RollIfStale(now)
		w.Limits.Release(entry.Amount)
	}
	return w.settle(entry, succeeded, now)
}

// EvaluateAutoRecharge applies the auto-recharge policy: if active, the
// balance is below the threshold, and no auto-recharge is already in
// flight, it synthesizes a PENDING recharge for the configured amount.
// The returned bool reports whether a new entry was triggered.
func (w *Wallet) EvaluateAutoRecharge(entryID string, now time.Time) (*LedgerEntry, bool, error) {
	if w.AutoRecharge == nil || !w.AutoRecharge.Active {
		return nil, false, nil
	}
	if w.Balance >= w.AutoRecharge.Threshold {
		return nil, false, nil
	}
	if pending := w.PendingSystemRecharge(); pending != nil {
		return pending, false, nil
	}
	key := fmt.Sprintf("AUTO-%s", entryID)
	entry, err := w.RequestRecharge(entryID, w.AutoRecharge.Amount, w.AutoRecharge.Method, key, OriginSystem, now)
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// ConfigureAutoRecharge installs or replaces the auto-recharge policy.
func (w *Wallet) ConfigureAutoRecharge(threshold, amount int64, method PaymentMethod, userID string, now time.Time) error {
	if threshold <= 0 {
		return fmt.Errorf("%w: auto-recharge threshold must be positive, got %d", apperrors.ErrValidation, threshold)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: auto-recharge amount must be positive, got %d", apperrors.ErrValidation, amount)
	}
	w.AutoRecharge = &AutoRechargePolicy{
		Active:    true,
		Threshold: threshold,
		Amount:    amount,
		Method:    method,
	}
	w.touch(userID, now)
	return nil
}

// DisableAutoRecharge removes the auto-recharge policy. An auto-recharge
// already in flight still settles normally.
func (w *Wallet) DisableAutoRecharge(userID string, now time.Time) {
	w.AutoRecharge = nil
	w.touch(userID, now)
}

// ConfigurePayout sets the mobile-money payout destination.
func (w *Wallet) ConfigurePayout(mobileNumber string, operator PaymentMethod, holderName, userID string, now time.Time) error {
	if mobileNumber == "" || holderName == "" {
		return fmt.Errorf("%w: payout mobile number and holder name are required", apperrors.ErrValidation)
	}
	w.Payout = &PayoutSettings{
		MobileNumber: mobileNumber,
		Operator:     operator,
		HolderName:   holderName,
	}
	w.touch(userID, now)
	return nil
}

// WithdrawalDecision is the gatekeeper verdict for a prospective payout.
type WithdrawalDecision struct {
	Allowed bool     `json:"allowed"`
	Reasons []string `json:"reasons,omitempty"`
}

// AutoRechargeOutcome reports one policy evaluation. Entry is the in-flight
// auto-recharge, whether this evaluation created it or an earlier one did.
type AutoRechargeOutcome struct {
	Triggered bool         `json:"triggered"`
	Entry     *LedgerEntry `json:"entry,omitempty"`
}

// Reconcile verifies the balance invariant: the balance must equal the sum
// of entry effects, and must never be negative. Called by the store before
// every commit; a violation aborts the mutation.
func (w *Wallet) Reconcile() error {
	if w.Balance < 0 {
		return fmt.Errorf("wallet %s balance is negative: %d", w.WalletID, w.Balance)
	}
	var sum int64
	for i := range w.Entries {
		sum += w.Entries[i].BalanceEffect()
	}
	if sum != w.Balance {
		return fmt.Errorf("wallet %s balance %d does not reconcile with entries sum %d", w.WalletID, w.Balance, sum)
	}
	return nil
}

func (w *Wallet) append(entry LedgerEntry, now time.Time) (*LedgerEntry, error) {
	if err := entry.validateStatus(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	w.Entries = append(w.Entries, entry)
	w.touch("", now)
	return &w.Entries[len(w.Entries)-1], nil
}

func (w *Wallet) settle(entry *LedgerEntry, succeeded bool, now time.Time) (*LedgerEntry, error) {
	entry.Status = entry.settledStatus(succeeded)
	settledAt := now.UTC()
	entry.SettledAt = &settledAt
	if succeeded {
		switch entry.Type {
		case EntryRecharge:
			w.Balance += entry.Amount
		case EntryWithdrawal:
			w.Balance -= entry.Amount
		}
	}
	w.touch("", now)
	return entry, nil
}

func (w *Wallet) touch(updatedBy string, now time.Time) {
	w.LastUpdatedAt = now.UTC()
	if updatedBy != "" {
		w.LastUpdatedBy = updatedBy
	}
}
