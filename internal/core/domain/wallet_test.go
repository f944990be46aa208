package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunucar/sunucar_backend/internal/apperrors"
	"github.com/sunucar/sunucar_backend/internal/core/domain"
)

var testNow = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestWallet() *domain.Wallet {
	return domain.NewWallet("wallet-1", "user-1", 1000, 10000, 100000, "user-1", testNow)
}

// fundedTestWallet returns a wallet with a settled recharge of amount.
func fundedTestWallet(t *testing.T, amount int64) *domain.Wallet {
	t.Helper()
	w := newTestWallet()
	entry, err := w.RequestRecharge("seed-recharge", amount, domain.MethodWave, "seed-key", domain.OriginUser, testNow)
	require.NoError(t, err)
	_, err = w.SettleRecharge(entry.EntryID, true, testNow)
	require.NoError(t, err)
	return w
}

func TestWallet_RequestRecharge(t *testing.T) {
	w := newTestWallet()

	entry, err := w.RequestRecharge("entry-1", 5000, domain.MethodWave, "key-a", domain.OriginUser, testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, entry.Status)
	assert.Equal(t, int64(5000), entry.Amount)
	assert.Equal(t, domain.MethodWave, entry.Method)
	assert.EqualValues(t, 0, w.Balance, "pending recharge must not credit the balance")
	assert.NoError(t, w.Reconcile())

	t.Run("duplicate key returns original entry", func(t *testing.T) {
		dup, err := w.RequestRecharge("entry-2", 9999, domain.MethodOrangeMoney, "key-a", domain.OriginUser, testNow)
		require.NoError(t, err)
		assert.Equal(t, "entry-1", dup.EntryID)
		assert.Equal(t, int64(5000), dup.Amount)
		assert.Len(t, w.Entries, 1)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := w.RequestRecharge("entry-3", 0, domain.MethodWave, "key-b", domain.OriginUser, testNow)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("rejects missing idempotency key", func(t *testing.T) {
		_, err := w.RequestRecharge("entry-4", 100, domain.MethodWave, "", domain.OriginUser, testNow)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestWallet_SettleRecharge(t *testing.T) {
	w := newTestWallet()
	entry, err := w.RequestRecharge("entry-1", 5000, domain.MethodWave, "key-a", domain.OriginUser, testNow)
	require.NoError(t, err)

	settled, err := w.SettleRecharge(entry.EntryID, true, testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, settled.Status)
	assert.NotNil(t, settled.SettledAt)
	assert.EqualValues(t, 5000, w.Balance)
	assert.NoError(t, w.Reconcile())

	t.Run("settling twice is a no-op", func(t *testing.T) {
		again, err := w.SettleRecharge(entry.EntryID, false, testNow.Add(2*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSucceeded, again.Status)
		assert.EqualValues(t, 5000, w.Balance, "second settlement must not credit again")
	})

	t.Run("unknown entry", func(t *testing.T) {
		_, err := w.SettleRecharge("no-such-entry", true, testNow)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("failed recharge frees the key for retry", func(t *testing.T) {
		w := newTestWallet()
		first, err := w.RequestRecharge("entry-1", 2000, domain.MethodFreeMoney, "key-r", domain.OriginUser, testNow)
		require.NoError(t, err)
		_, err = w.SettleRecharge(first.EntryID, false, testNow)
		require.NoError(t, err)
		assert.EqualValues(t, 0, w.Balance)

		retry, err := w.RequestRecharge("entry-2", 2000, domain.MethodFreeMoney, "key-r", domain.OriginUser, testNow)
		require.NoError(t, err)
		assert.Equal(t, "entry-2", retry.EntryID, "a failed attempt must not block the key")
		assert.Len(t, w.Entries, 2)
	})
}

func TestWallet_ChargeCommission(t *testing.T) {
	w := fundedTestWallet(t, 1000)

	entry, err := w.ChargeCommission("comm-1", 400, "ride-r1", testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCharged, entry.Status)
	assert.NotNil(t, entry.SettledAt)
	assert.Equal(t, domain.OriginSystem, entry.Origin)
	assert.EqualValues(t, 600, w.Balance)
	assert.NoError(t, w.Reconcile())

	t.Run("duplicate ride reference is a no-op", func(t *testing.T) {
		dup, err := w.ChargeCommission("comm-2", 400, "ride-r1", testNow)
		require.NoError(t, err)
		assert.Equal(t, "comm-1", dup.EntryID)
		assert.EqualValues(t, 600, w.Balance, "balance must not be debited twice")
	})

	t.Run("insufficient funds records nothing", func(t *testing.T) {
		entriesBefore := len(w.Entries)
		_, err := w.ChargeCommission("comm-3", 5000, "ride-r2", testNow)
		var insufficient *apperrors.InsufficientFundsError
		require.ErrorAs(t, err, &insufficient)
		assert.EqualValues(t, 600, insufficient.Balance)
		assert.EqualValues(t, 5000, insufficient.Required)
		assert.EqualValues(t, 600, w.Balance)
		assert.Len(t, w.Entries, entriesBefore, "a refused commission must leave no trace")
		assert.NoError(t, w.Reconcile())
	})

	t.Run("rejects non-positive amount and missing ride ref", func(t *testing.T) {
		_, err := w.ChargeCommission("comm-4", 0, "ride-r3", testNow)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		_, err = w.ChargeCommission("comm-5", 100, "", testNow)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestWallet_CheckWithdrawal(t *testing.T) {
	t.Run("preconditions only with amount zero", func(t *testing.T) {
		w := fundedTestWallet(t, 20000)
		failures := w.CheckWithdrawal(0, false, testNow)
		require.Len(t, failures, 2)

		var precondition *apperrors.PreconditionError
		require.ErrorAs(t, failures[0], &precondition)
		assert.Equal(t, apperrors.PreconditionPayoutSettings, precondition.Missing)
		require.ErrorAs(t, failures[1], &precondition)
		assert.Equal(t, apperrors.PreconditionVerified, precondition.Missing)
	})

	t.Run("daily cap reports remaining headroom", func(t *testing.T) {
		w := fundedTestWallet(t, 50000)
		require.NoError(t, w.ConfigurePayout("771234567", domain.MethodWave, "Abdou Diop", "user-1", testNow))
		w.Limits.WithdrawnToday = 9000
		w.Limits.WithdrawnThisMonth = 9000

		failures := w.CheckWithdrawal(2000, true, testNow)
		require.Len(t, failures, 1)

		var limit *apperrors.LimitExceededError
		require.ErrorAs(t, failures[0], &limit)
		assert.Equal(t, apperrors.LimitDaily, limit.Scope)
		assert.EqualValues(t, 10000, limit.Cap)
		assert.EqualValues(t, 1000, limit.Remaining)
		assert.Equal(t, w.Limits.NextDayReset(), limit.ResetsAt)
	})

	t.Run("counters reset on the next day", func(t *testing.T) {
		w := fundedTestWallet(t, 50000)
		require.NoError(t, w.ConfigurePayout("771234567", domain.MethodWave, "Abdou Diop", "user-1", testNow))
		w.Limits.WithdrawnToday = 9000
		w.Limits.WithdrawnThisMonth = 9000

		nextDay := testNow.Add(24 * time.Hour)
		failures := w.CheckWithdrawal(2000, true, nextDay)
		assert.Empty(t, failures, "daily counter must reset across the UTC day boundary")
		assert.EqualValues(t, 0, w.Limits.WithdrawnToday)
		assert.EqualValues(t, 9000, w.Limits.WithdrawnThisMonth, "month window is still the same")
	})

	t.Run("insufficient balance", func(t *testing.T) {
		w := fundedTestWallet(t, 500)
		require.NoError(t, w.ConfigurePayout("771234567", domain.MethodWave, "Abdou Diop", "user-1", testNow))

		failures := w.CheckWithdrawal(800, true, testNow)
		require.Len(t, failures, 1)
		var insufficient *apperrors.InsufficientFundsError
		assert.ErrorAs(t, failures[0], &insufficient)
	})
}

func TestWallet_WithdrawalLifecycle(t *testing.T) {
	w := fundedTestWallet(t, 20000)
	require.NoError(t, w.ConfigurePayout("771234567", domain.MethodOrangeMoney, "Abdou Diop", "user-1", testNow))

	entry, err := w.RequestWithdrawal("wd-1", 5000, true, testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, entry.Status)
	assert.Equal(t, domain.MethodOrangeMoney, entry.Method)
	assert.EqualValues(t, 20000, w.Balance, "balance is debited only at settlement")
	assert.EqualValues(t, 5000, w.Limits.WithdrawnToday, "counters are reserved at request time")
	assert.EqualValues(t, 5000, w.Limits.WithdrawnThisMonth)
	assert.NoError(t, w.Reconcile())

	t.Run("success debits the balance", func(t *testing.T) {
		settled, err := w.SettleWithdrawal(entry.EntryID, true, testNow.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSucceeded, settled.Status)
		assert.EqualValues(t, 15000, w.Balance)
		assert.NoError(t, w.Reconcile())

		again, err := w.SettleWithdrawal(entry.EntryID, true, testNow.Add(2*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSucceeded, again.Status)
		assert.EqualValues(t, 15000, w.Balance, "settlement is idempotent")
	})

	t.Run("failure releases the reserved counters", func(t *testing.T) {
		failed, err := w.RequestWithdrawal("wd-2", 3000, true, testNow)
		require.NoError(t, err)
		assert.EqualValues(t, 8000, w.Limits.WithdrawnToday)

		_, err = w.SettleWithdrawal(failed.EntryID, false, testNow)
		require.NoError(t, err)
		assert.EqualValues(t, 5000, w.Limits.WithdrawnToday)
		assert.EqualValues(t, 15000, w.Balance, "failed payout must not touch the balance")
		assert.NoError(t, w.Reconcile())
	})

	t.Run("settlement that would overdraw is refused", func(t *testing.T) {
		pending, err := w.RequestWithdrawal("wd-3", 2000, true, testNow)
		require.NoError(t, err)

		// Commission lands between request and confirmation.
		_, err = w.ChargeCommission("comm-late", 14000, "ride-late", testNow)
		require.NoError(t, err)
		assert.EqualValues(t, 1000, w.Balance)

		_, err = w.SettleWithdrawal(pending.EntryID, true, testNow)
		var insufficient *apperrors.InsufficientFundsError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, domain.StatusPending, w.FindEntry(pending.EntryID).Status, "entry stays pending")
		assert.NoError(t, w.Reconcile())
	})
}

func TestWallet_RequestWithdrawal_Preconditions(t *testing.T) {
	w := fundedTestWallet(t, 20000)

	_, err := w.RequestWithdrawal("wd-1", 1000, true, testNow)
	var precondition *apperrors.PreconditionError
	require.ErrorAs(t, err, &precondition)
	assert.Equal(t, apperrors.PreconditionPayoutSettings, precondition.Missing)
	assert.EqualValues(t, 0, w.Limits.WithdrawnToday, "nothing may be reserved on rejection")
	assert.Len(t, w.Entries, 1)
}

func TestWallet_EvaluateAutoRecharge(t *testing.T) {
	setup := func(t *testing.T) *domain.Wallet {
		w := fundedTestWallet(t, 1200)
		require.NoError(t, w.ConfigureAutoRecharge(1000, 500, domain.MethodWave, "user-1", testNow))
		return w
	}

	t.Run("triggers once the balance drops below the threshold", func(t *testing.T) {
		w := setup(t)
		_, err := w.ChargeCommission("comm-1", 500, "ride-1", testNow)
		require.NoError(t, err)
		assert.EqualValues(t, 700, w.Balance)

		entry, triggered, err := w.EvaluateAutoRecharge("auto-1", testNow)
		require.NoError(t, err)
		assert.True(t, triggered)
		require.NotNil(t, entry)
		assert.Equal(t, domain.StatusPending, entry.Status)
		assert.Equal(t, domain.OriginSystem, entry.Origin)
		assert.Equal(t, int64(500), entry.Amount)
		assert.Equal(t, "AUTO-auto-1", entry.IdempotencyKey)
		assert.EqualValues(t, 700, w.Balance, "auto-recharge is pending until confirmed")
	})

	t.Run("does not trigger while one is in flight", func(t *testing.T) {
		w := setup(t)
		_, err := w.ChargeCommission("comm-1", 500, "ride-1", testNow)
		require.NoError(t, err)

		first, triggered, err := w.EvaluateAutoRecharge("auto-1", testNow)
		require.NoError(t, err)
		require.True(t, triggered)

		second, triggered, err := w.EvaluateAutoRecharge("auto-2", testNow)
		require.NoError(t, err)
		assert.False(t, triggered)
		assert.Equal(t, first.EntryID, second.EntryID, "the in-flight entry debounces the policy")
	})

	t.Run("re-arms after the pending recharge settles", func(t *testing.T) {
		w := setup(t)
		_, err := w.ChargeCommission("comm-1", 500, "ride-1", testNow)
		require.NoError(t, err)

		first, _, err := w.EvaluateAutoRecharge("auto-1", testNow)
		require.NoError(t, err)
		_, err = w.SettleRecharge(first.EntryID, true, testNow)
		require.NoError(t, err)
		assert.EqualValues(t, 1200, w.Balance)

		_, triggered, err := w.EvaluateAutoRecharge("auto-2", testNow)
		require.NoError(t, err)
		assert.False(t, triggered, "balance is back above the threshold")
	})

	t.Run("no trigger at exactly the threshold", func(t *testing.T) {
		w := setup(t)
		_, err := w.ChargeCommission("comm-1", 200, "ride-1", testNow)
		require.NoError(t, err)
		assert.EqualValues(t, 1000, w.Balance)

		_, triggered, err := w.EvaluateAutoRecharge("auto-1", testNow)
		require.NoError(t, err)
		assert.False(t, triggered)
	})

	t.Run("no trigger when disabled", func(t *testing.T) {
		w := setup(t)
		_, err := w.ChargeCommission("comm-1", 500, "ride-1", testNow)
		require.NoError(t, err)
		w.DisableAutoRecharge("user-1", testNow)

		_, triggered, err := w.EvaluateAutoRecharge("auto-1", testNow)
		require.NoError(t, err)
		assert.False(t, triggered)
	})
}

func TestWallet_Reconcile(t *testing.T) {
	w := fundedTestWallet(t, 10000)
	_, err := w.ChargeCommission("comm-1", 1500, "ride-1", testNow)
	require.NoError(t, err)
	require.NoError(t, w.ConfigurePayout("771234567", domain.MethodWave, "Abdou Diop", "user-1", testNow))
	wd, err := w.RequestWithdrawal("wd-1", 2000, true, testNow)
	require.NoError(t, err)
	_, err = w.SettleWithdrawal(wd.EntryID, true, testNow)
	require.NoError(t, err)

	assert.EqualValues(t, 6500, w.Balance)
	assert.NoError(t, w.Reconcile())

	t.Run("detects a drifted balance", func(t *testing.T) {
		w.Balance += 1
		assert.Error(t, w.Reconcile())
		w.Balance -= 1
	})

	t.Run("detects a negative balance", func(t *testing.T) {
		probe := *w
		probe.Balance = -1
		assert.Error(t, probe.Reconcile())
	})
}
