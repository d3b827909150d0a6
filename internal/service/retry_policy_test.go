package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/recouphq/recoup/internal/domain/dunning"
	"github.com/recouphq/recoup/internal/types"
)

func TestShouldRetryNow(t *testing.T) {
	cfg := types.DefaultDunningConfig() // intervals 1, 3, 5, 7 days
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	attemptAt := func(ts time.Time, number int) *dunning.Attempt {
		return &dunning.Attempt{
			SubscriptionID: "subs_1",
			AttemptNumber:  number,
			AttemptedAt:    ts,
			Outcome:        types.AttemptOutcomeFailed,
		}
	}

	t.Run("first attempt is always due", func(t *testing.T) {
		assert.True(t, ShouldRetryNow(nil, 1, cfg, base))
	})

	t.Run("second attempt waits one day", func(t *testing.T) {
		last := attemptAt(base, 1)

		assert.False(t, ShouldRetryNow(last, 2, cfg, base))
		assert.False(t, ShouldRetryNow(last, 2, cfg, base.Add(23*time.Hour)))
		assert.True(t, ShouldRetryNow(last, 2, cfg, base.Add(25*time.Hour)))
	})

	t.Run("due exactly at the interval boundary", func(t *testing.T) {
		last := attemptAt(base, 1)

		assert.True(t, ShouldRetryNow(last, 2, cfg, base.Add(24*time.Hour)))
	})

	t.Run("one second before the boundary is not due", func(t *testing.T) {
		last := attemptAt(base, 1)

		assert.False(t, ShouldRetryNow(last, 2, cfg, base.Add(24*time.Hour-time.Second)))
	})

	t.Run("third attempt waits three days", func(t *testing.T) {
		last := attemptAt(base, 2)

		assert.False(t, ShouldRetryNow(last, 3, cfg, base.Add(2*24*time.Hour)))
		assert.True(t, ShouldRetryNow(last, 3, cfg, base.Add(3*24*time.Hour)))
	})

	t.Run("attempts past the schedule clamp to the last interval", func(t *testing.T) {
		short := cfg
		short.RetryIntervalDays = []int{1, 3}
		last := attemptAt(base, 5)

		// Attempt 6 is past the two-entry schedule; waits 3 days.
		assert.False(t, ShouldRetryNow(last, 6, cfg, base.Add(24*time.Hour)))
		assert.True(t, ShouldRetryNow(last, 6, short, base.Add(3*24*time.Hour)))
	})
}

func TestNextRetryDate(t *testing.T) {
	cfg := types.DefaultDunningConfig()
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	// After attempt 1 the next retry waits RetryIntervalDays[0] = 1 day.
	assert.Equal(t, base.Add(24*time.Hour), NextRetryDate(1, cfg, base))
	// After attempt 2 it waits RetryIntervalDays[1] = 3 days.
	assert.Equal(t, base.Add(3*24*time.Hour), NextRetryDate(2, cfg, base))
	// Past the end of the schedule the last interval repeats.
	assert.Equal(t, base.Add(7*24*time.Hour), NextRetryDate(10, cfg, base))
}

func TestEscalationTemplate(t *testing.T) {
	cfg := types.DefaultDunningConfig()

	assert.Equal(t, types.TemplateDunningFirstReminder, EscalationTemplate(1, cfg))
	assert.Equal(t, types.TemplateDunningSecondReminder, EscalationTemplate(2, cfg))
	assert.Equal(t, types.TemplateDunningFinalWarning, EscalationTemplate(3, cfg))
	assert.Equal(t, types.TemplateDunningFinalWarning, EscalationTemplate(4, cfg))
	assert.Equal(t, types.TemplateDunningFinalWarning, EscalationTemplate(9, cfg))
}
