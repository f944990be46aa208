package domain

import "time"

// WithdrawalLimits tracks rolling daily and monthly payout caps with
// anchored counters. Counters are only meaningful after RollIfStale has run
// for the current instant; every limit check must roll first.
type WithdrawalLimits struct {
	DailyCap           int64     `json:"dailyCap"`
	MonthlyCap         int64     `json:"monthlyCap"`
	WithdrawnToday     int64     `json:"withdrawnToday"`
	WithdrawnThisMonth int64     `json:"withdrawnThisMonth"`
	DayAnchor          time.Time `json:"dayAnchor"`
	MonthAnchor        time.Time `json:"monthAnchor"`
}

// RollIfStale resets the counters whose anchor no longer matches the
// calendar window containing now (UTC), and advances the anchors.
func (l *WithdrawalLimits) RollIfStale(now time.Time) {
	now = now.UTC()
	day := now.Truncate(24 * time.Hour)
	if !l.DayAnchor.Equal(day) {
		l.WithdrawnToday = 0
		l.DayAnchor = day
	}
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if !l.MonthAnchor.Equal(month) {
		l.WithdrawnThisMonth = 0
		l.MonthAnchor = month
	}
}

// RemainingToday is the headroom left under the daily cap.
func (l *WithdrawalLimits) RemainingToday() int64 {
	remaining := l.DailyCap - l.WithdrawnToday
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RemainingThisMonth is the headroom left under the monthly cap.
func (l *WithdrawalLimits) RemainingThisMonth() int64 {
	remaining := l.MonthlyCap - l.WithdrawnThisMonth
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reserve provisionally counts amount against both windows. Callers must
// have checked the caps first.
func (l *WithdrawalLimits) Reserve(amount int64) {
	l.WithdrawnToday += amount
	l.WithdrawnThisMonth += amount
}

// Release rolls back a reservation made for a withdrawal that failed.
func (l *WithdrawalLimits) Release(amount int64) {
	l.WithdrawnToday -= amount
	if l.WithdrawnToday < 0 {
		l.WithdrawnToday = 0
	}
	l.WithdrawnThisMonth -= amount
	if l.WithdrawnThisMonth < 0 {
		l.WithdrawnThisMonth = 0
	}
}

// NextDayReset is the next daily window boundary after the current anchor.
func (l *WithdrawalLimits) NextDayReset() time.Time {
	return l.DayAnchor.Add(24 * time.Hour)
}

// NextMonthReset is the next monthly window boundary after the current anchor.
func (l *WithdrawalLimits) NextMonthReset() time.Time {
	return l.MonthAnchor.AddDate(0, 1, 0)
}
