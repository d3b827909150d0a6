package subscription

import (
	"context"

	"github.com/recouphq/recoup/internal/types"
)

// Repository defines the interface for subscription persistence operations.
// The dunning process only ever loads past_due candidates and writes status
// transitions back; creation and deletion happen in checkout flows elsewhere.
type Repository interface {
	// Get retrieves a subscription by ID
	Get(ctx context.Context, id string) (*Subscription, error)

	// ListByStatus returns all subscriptions currently in the given status
	ListByStatus(ctx context.Context, status types.SubscriptionStatus) ([]*Subscription, error)

	// Update persists changes to an existing subscription
	Update(ctx context.Context, sub *Subscription) error

	// CountByStatus returns the number of subscriptions in the given status
	CountByStatus(ctx context.Context, status types.SubscriptionStatus) (int, error)
}
