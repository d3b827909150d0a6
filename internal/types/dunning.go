package types

import (
	"time"

	ierr "github.com/recouphq/recoup/internal/errors"
)

// AttemptOutcome is the result of a single payment recovery attempt.
type AttemptOutcome string

const (
	AttemptOutcomePending   AttemptOutcome = "pending"
	AttemptOutcomeSuccess   AttemptOutcome = "success"
	AttemptOutcomeFailed    AttemptOutcome = "failed"
	AttemptOutcomeAbandoned AttemptOutcome = "abandoned"
)

func (o AttemptOutcome) String() string {
	return string(o)
}

// Validate checks that the outcome is one of the known values.
func (o AttemptOutcome) Validate() error {
	switch o {
	case AttemptOutcomePending, AttemptOutcomeSuccess, AttemptOutcomeFailed, AttemptOutcomeAbandoned:
		return nil
	default:
		return ierr.NewErrorf("invalid attempt outcome: %s", o).
			WithHint("Outcome must be one of: pending, success, failed, abandoned").
			Mark(ierr.ErrValidation)
	}
}

// NotificationChannel is the delivery channel for customer notifications.
type NotificationChannel string

const (
	NotificationChannelEmail NotificationChannel = "email"
)

// Notification template identifiers used by the dunning escalation ladder.
const (
	TemplateDunningFirstReminder  = "dunning-first-reminder"
	TemplateDunningSecondReminder = "dunning-second-reminder"
	TemplateDunningFinalWarning   = "dunning-final-warning"
	TemplateDunningSuspended      = "dunning-suspended"
	TemplatePaymentSuccess        = "payment-success"
)

// DunningTemplates holds the template identifiers for each escalation step.
type DunningTemplates struct {
	FirstReminder  string `mapstructure:"first_reminder" json:"first_reminder"`
	SecondReminder string `mapstructure:"second_reminder" json:"second_reminder"`
	FinalWarning   string `mapstructure:"final_warning" json:"final_warning"`
	Suspended      string `mapstructure:"suspended" json:"suspended"`
}

// DunningConfig is the process wide retry configuration. It is immutable at
// runtime; services receive it by value.
type DunningConfig struct {
	// MaxAttempts is the maximum number of retries per dunning episode.
	MaxAttempts int `mapstructure:"max_attempts" json:"max_attempts"`
	// RetryIntervalDays holds the wait between attempts, indexed by attempt
	// number. Attempts past the end of the list reuse the last interval.
	RetryIntervalDays []int `mapstructure:"retry_interval_days" json:"retry_interval_days"`
	// GracePeriodDays is the grace window before a subscription enters
	// past_due. Entry into past_due happens upstream; the value is carried
	// here so notifications can report it.
	GracePeriodDays int              `mapstructure:"grace_period_days" json:"grace_period_days"`
	Templates       DunningTemplates `mapstructure:"templates" json:"templates"`
}

// DefaultDunningConfig returns the stock 4-attempt, [1,3,5,7] day schedule.
func DefaultDunningConfig() DunningConfig {
	return DunningConfig{
		MaxAttempts:       4,
		RetryIntervalDays: []int{1, 3, 5, 7},
		GracePeriodDays:   3,
		Templates: DunningTemplates{
			FirstReminder:  TemplateDunningFirstReminder,
			SecondReminder: TemplateDunningSecondReminder,
			FinalWarning:   TemplateDunningFinalWarning,
			Suspended:      TemplateDunningSuspended,
		},
	}
}

// Validate checks the config for values the retry policy cannot work with.
func (c DunningConfig) Validate() error {
	if c.MaxAttempts <= 0 {
		return ierr.NewError("dunning max_attempts must be positive").
			WithHint("Set dunning.max_attempts to at least 1").
			Mark(ierr.ErrValidation)
	}
	if len(c.RetryIntervalDays) == 0 {
		return ierr.NewError("dunning retry_interval_days must not be empty").
			WithHint("Provide at least one retry interval in days").
			Mark(ierr.ErrValidation)
	}
	for _, d := range c.RetryIntervalDays {
		if d < 0 {
			return ierr.NewErrorf("invalid retry interval: %d days", d).
				WithHint("Retry intervals must be 0 or greater").
				Mark(ierr.ErrValidation)
		}
	}
	if c.GracePeriodDays < 0 {
		return ierr.NewError("dunning grace_period_days cannot be negative").
			WithHint("Grace period must be 0 or greater").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RetryIntervalFor returns the wait, as a duration, before the attempt with
// the given interval index. Indexes past the end clamp to the last interval.
func (c DunningConfig) RetryIntervalFor(index int) time.Duration {
	if index < 0 {
		index = 0
	}
	if index > len(c.RetryIntervalDays)-1 {
		index = len(c.RetryIntervalDays) - 1
	}
	return time.Duration(c.RetryIntervalDays[index]) * 24 * time.Hour
}
