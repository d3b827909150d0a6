package dunning

import "context"

// Repository is the attempt ledger: a per-subscription, append-only history
// of recovery attempts. An episode is the open attempt list for one
// subscription; clearing an episode ends it without destroying the rows, so
// recovery analytics can still see closed episodes.
//
// The ledger does not serialize writers. The scheduler guarantees a single
// writer per subscription per sweep; attempt numbers rely on that.
type Repository interface {
	// RecordAttempt appends an attempt to the subscription's open episode.
	RecordAttempt(ctx context.Context, attempt *Attempt) error

	// GetAttempts returns the open episode's attempts for the subscription,
	// ordered by attempt number. Empty slice when no episode is open.
	GetAttempts(ctx context.Context, subscriptionID string) ([]*Attempt, error)

	// ClearAttempts closes the subscription's open episode. Called on full
	// recovery and on terminal suspension.
	ClearAttempts(ctx context.Context, subscriptionID string) error

	// ListAll returns every recorded attempt, open and closed episodes
	// alike, for analytics.
	ListAll(ctx context.Context) ([]*Attempt, error)
}
