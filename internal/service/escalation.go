package service

import (
	"time"

	"github.com/recouphq/recoup/internal/domain/notification"
	"github.com/recouphq/recoup/internal/domain/subscription"
	"github.com/recouphq/recoup/internal/types"
)

// EscalationTemplate maps an attempt number to the notification template for
// that escalation step: attempt 1 gets the first reminder, attempt 2 the
// second, everything after that the final warning. The suspension template
// is not part of this ladder; it is sent by the suspension transition.
func EscalationTemplate(attemptNumber int, cfg types.DunningConfig) string {
	switch {
	case attemptNumber <= 1:
		return cfg.Templates.FirstReminder
	case attemptNumber == 2:
		return cfg.Templates.SecondReminder
	default:
		return cfg.Templates.FinalWarning
	}
}

// escalationPayload builds the template data for a failed-attempt
// notification. next_retry_date mirrors the retry policy math so the
// customer sees the actual schedule.
func escalationPayload(sub *subscription.Subscription, attemptNumber int, cfg types.DunningConfig, now time.Time) notification.Payload {
	return notification.Payload{
		"subscription_id": sub.ID,
		"customer_email":  sub.CustomerEmail,
		"tier":            sub.Tier,
		"attempt_number":  attemptNumber,
		"max_attempts":    cfg.MaxAttempts,
		"next_retry_date": NextRetryDate(attemptNumber, cfg, now).Format(time.RFC3339),
	}
}

// suspensionPayload builds the template data for the terminal suspension
// notification.
func suspensionPayload(sub *subscription.Subscription, attemptCount int, cfg types.DunningConfig, now time.Time) notification.Payload {
	return notification.Payload{
		"subscription_id": sub.ID,
		"customer_email":  sub.CustomerEmail,
		"tier":            sub.Tier,
		"attempt_count":   attemptCount,
		"max_attempts":    cfg.MaxAttempts,
		"suspended_at":    now.Format(time.RFC3339),
	}
}

// recoveryPayload builds the template data for a payment-success receipt.
func recoveryPayload(sub *subscription.Subscription, attemptNumber int, invoiceID *string) notification.Payload {
	p := notification.Payload{
		"subscription_id": sub.ID,
		"customer_email":  sub.CustomerEmail,
		"tier":            sub.Tier,
		"attempt_number":  attemptNumber,
	}
	if invoiceID != nil {
		p["invoice_id"] = *invoiceID
	}
	return p
}
