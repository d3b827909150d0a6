package service

import (
	"time"

	"github.com/recouphq/recoup/internal/domain/dunning"
	"github.com/recouphq/recoup/internal/types"
)

// ShouldRetryNow reports whether the next retry for a subscription is due.
// The wait before attempt N is RetryIntervalDays[N-2], counted from the last
// attempt; indexes past the end of the schedule clamp to the last interval.
// With no prior attempt the first retry is always eligible immediately.
//
// The comparison is inclusive: a retry is due at exactly the interval
// boundary.
func ShouldRetryNow(lastAttempt *dunning.Attempt, nextAttemptNumber int, cfg types.DunningConfig, now time.Time) bool {
	if lastAttempt == nil {
		return true
	}
	dueDate := lastAttempt.AttemptedAt.Add(cfg.RetryIntervalFor(nextAttemptNumber - 2))
	return !now.Before(dueDate)
}

// NextRetryDate returns when the attempt after currentAttemptNumber becomes
// due, counted from the given time. Used for notification payloads so the
// customer sees the same schedule the policy enforces.
func NextRetryDate(currentAttemptNumber int, cfg types.DunningConfig, from time.Time) time.Time {
	return from.Add(cfg.RetryIntervalFor(currentAttemptNumber - 1))
}
