package types

import ierr "github.com/recouphq/recoup/internal/errors"

// SubscriptionStatus is the billing state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusUnpaid   SubscriptionStatus = "unpaid"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// Validate checks that the status is one of the known values.
func (s SubscriptionStatus) Validate() error {
	switch s {
	case SubscriptionStatusActive,
		SubscriptionStatusTrialing,
		SubscriptionStatusPastDue,
		SubscriptionStatusCanceled,
		SubscriptionStatusUnpaid:
		return nil
	default:
		return ierr.NewErrorf("invalid subscription status: %s", s).
			WithHint("Subscription status must be one of: active, trialing, past_due, canceled, unpaid").
			Mark(ierr.ErrValidation)
	}
}

// IsTerminalForDunning reports whether the payment recovery process must
// never touch a subscription in this status. Once unpaid or canceled, only
// an external reactivation flow can bring the subscription back.
func (s SubscriptionStatus) IsTerminalForDunning() bool {
	return s == SubscriptionStatusUnpaid || s == SubscriptionStatusCanceled
}
