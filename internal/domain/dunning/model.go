package dunning

import (
	"time"

	ierr "github.com/recouphq/recoup/internal/errors"
	"github.com/recouphq/recoup/internal/types"
)

// Attempt is one payment recovery event for one subscription. Attempts are
// append only: once recorded they are never mutated. Attempt numbers within
// an episode are gapless and start at 1.
type Attempt struct {
	ID             string               `json:"id"`
	SubscriptionID string               `json:"subscription_id"`
	UserID         string               `json:"user_id"`
	AttemptNumber  int                  `json:"attempt_number"`
	AttemptedAt    time.Time            `json:"attempted_at"`
	Outcome        types.AttemptOutcome `json:"outcome"`
	// FailureReason is present iff Outcome is failed.
	FailureReason *string `json:"failure_reason,omitempty"`
	// InvoiceID is the gateway invoice this attempt tried to settle, if any.
	InvoiceID     *string `json:"invoice_id,omitempty"`
	EnvironmentID string  `json:"environment_id"`
	types.BaseModel
}

// Validate validates the attempt
func (a *Attempt) Validate() error {
	if a.SubscriptionID == "" {
		return ierr.NewError("subscription id is required").
			WithHint("Subscription ID is required").
			Mark(ierr.ErrValidation)
	}
	if a.AttemptNumber < 1 {
		return ierr.NewError("attempt number must be 1 or greater").
			WithHint("Attempt numbers are 1-based").
			WithReportableDetails(map[string]interface{}{
				"attempt_number": a.AttemptNumber,
			}).
			Mark(ierr.ErrValidation)
	}
	if err := a.Outcome.Validate(); err != nil {
		return err
	}
	if a.Outcome == types.AttemptOutcomeFailed && (a.FailureReason == nil || *a.FailureReason == "") {
		return ierr.NewError("failed attempts require a failure reason").
			WithHint("Provide the failure reason for failed attempts").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsSuccess reports whether the attempt recovered the payment.
func (a *Attempt) IsSuccess() bool {
	return a.Outcome == types.AttemptOutcomeSuccess
}
