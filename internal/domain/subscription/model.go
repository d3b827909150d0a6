package subscription

import (
	"time"

	"github.com/samber/lo"

	ierr "github.com/recouphq/recoup/internal/errors"
	"github.com/recouphq/recoup/internal/types"
)

// Subscription represents a customer's recurring billing relationship.
// Gateway references point at the external payment provider; they are
// nullable because a subscription can exist before checkout completes.
type Subscription struct {
	ID                    string                   `json:"id"`
	UserID                string                   `json:"user_id"`
	CustomerEmail         string                   `json:"customer_email"`
	GatewayCustomerID     string                   `json:"gateway_customer_id"`
	GatewaySubscriptionID *string                  `json:"gateway_subscription_id,omitempty"`
	Tier                  string                   `json:"tier"`
	SubscriptionStatus    types.SubscriptionStatus `json:"subscription_status"`
	CurrentPeriodStart    time.Time                `json:"current_period_start"`
	CurrentPeriodEnd      time.Time                `json:"current_period_end"`
	CancelAtPeriodEnd     bool                     `json:"cancel_at_period_end"`
	CanceledAt            *time.Time               `json:"canceled_at,omitempty"`
	EnvironmentID         string                   `json:"environment_id"`
	types.BaseModel
}

// Validate validates the subscription
func (s *Subscription) Validate() error {
	if s.ID == "" {
		return ierr.NewError("subscription id is required").
			WithHint("Subscription ID is required").
			Mark(ierr.ErrValidation)
	}
	if s.UserID == "" {
		return ierr.NewError("user id is required").
			WithHint("User ID is required").
			Mark(ierr.ErrValidation)
	}
	return s.SubscriptionStatus.Validate()
}

// IsDunnable reports whether the recovery process may act on this
// subscription. Terminal statuses are owned by external reactivation flows.
func (s *Subscription) IsDunnable() bool {
	return s.SubscriptionStatus == types.SubscriptionStatusPastDue
}

// MarkActive applies the past_due -> active transition after a successful
// retry. Only the dunning service calls this.
func (s *Subscription) MarkActive(now time.Time) {
	s.SubscriptionStatus = types.SubscriptionStatusActive
	s.CanceledAt = nil
	s.UpdatedAt = now
}

// MarkUnpaid applies the past_due -> unpaid transition once the retry budget
// is exhausted. Sets canceled-at as the suspension timestamp. Only the
// dunning service calls this.
func (s *Subscription) MarkUnpaid(now time.Time) {
	s.SubscriptionStatus = types.SubscriptionStatusUnpaid
	s.CanceledAt = lo.ToPtr(now)
	s.UpdatedAt = now
}
