package dto

import (
	"time"

	"github.com/recouphq/recoup/internal/domain/dunning"
	"github.com/recouphq/recoup/internal/validator"
)

// ProcessDunningRequest represents the request to run a dunning sweep.
// When SubscriptionIDs is empty the sweep covers every past_due
// subscription.
type ProcessDunningRequest struct {
	SubscriptionIDs []string `json:"subscription_ids,omitempty" validate:"omitempty,max=100,dive,required"`
}

// Validate validates the process dunning request
func (r *ProcessDunningRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// DunningSweepResponse summarizes one sweep run.
type DunningSweepResponse struct {
	// Candidates is the number of past_due subscriptions loaded
	Candidates int `json:"candidates"`
	// Attempted is the number of payment retries executed
	Attempted int `json:"attempted"`
	// Recovered is the number of retries that succeeded
	Recovered int `json:"recovered"`
	// Failed is the number of retries that failed
	Failed int `json:"failed"`
	// Suspended is the number of subscriptions moved to unpaid
	Suspended int `json:"suspended"`
	// Skipped is the number of subscriptions not yet due this sweep
	Skipped int `json:"skipped"`
	// Errored is the number of subscriptions whose processing hit a
	// storage error; they will be picked up again next sweep
	Errored int `json:"errored"`
}

// DunningStatsResponse represents recovery analytics over the attempt ledger.
type DunningStatsResponse struct {
	// TotalPastDue is the live count of subscriptions currently past_due
	TotalPastDue int `json:"total_past_due"`
	// TotalAttempts is the number of attempts across all tracked episodes
	TotalAttempts int `json:"total_attempts"`
	// RecoveredCount is the number of attempts with outcome success
	RecoveredCount int `json:"recovered_count"`
	// RecoveryRate is successes / total attempts * 100; 0 when no attempts
	RecoveryRate float64 `json:"recovery_rate"`
	// AverageAttemptsToRecover is the mean attempt number at which
	// successful episodes resolved; 0 when no successes
	AverageAttemptsToRecover float64 `json:"average_attempts_to_recover"`
}

// AttemptResponse represents one dunning attempt
type AttemptResponse struct {
	ID             string     `json:"id"`
	SubscriptionID string     `json:"subscription_id"`
	AttemptNumber  int        `json:"attempt_number"`
	AttemptedAt    time.Time  `json:"attempted_at"`
	Outcome        string     `json:"outcome"`
	FailureReason  *string    `json:"failure_reason,omitempty"`
	InvoiceID      *string    `json:"invoice_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewAttemptResponse converts a domain attempt to its API representation
func NewAttemptResponse(a *dunning.Attempt) *AttemptResponse {
	if a == nil {
		return nil
	}
	return &AttemptResponse{
		ID:             a.ID,
		SubscriptionID: a.SubscriptionID,
		AttemptNumber:  a.AttemptNumber,
		AttemptedAt:    a.AttemptedAt,
		Outcome:        a.Outcome.String(),
		FailureReason:  a.FailureReason,
		InvoiceID:      a.InvoiceID,
		CreatedAt:      a.CreatedAt,
	}
}

// ListAttemptsResponse represents the open episode for one subscription
type ListAttemptsResponse struct {
	Items []*AttemptResponse `json:"items"`
	Total int                `json:"total"`
}

// NewListAttemptsResponse converts domain attempts to the API representation
func NewListAttemptsResponse(attempts []*dunning.Attempt) *ListAttemptsResponse {
	items := make([]*AttemptResponse, len(attempts))
	for i, a := range attempts {
		items[i] = NewAttemptResponse(a)
	}
	return &ListAttemptsResponse{Items: items, Total: len(items)}
}
