package testutil

import (
	"context"

	"github.com/recouphq/recoup/internal/domain/subscription"
	ierr "github.com/recouphq/recoup/internal/errors"
	"github.com/recouphq/recoup/internal/types"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
}

// NewInMemorySubscriptionStore creates a new in-memory subscription store
func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

// Helper to copy subscription
func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	if sub == nil {
		return nil
	}

	copied := &subscription.Subscription{
		ID:                 sub.ID,
		UserID:             sub.UserID,
		CustomerEmail:      sub.CustomerEmail,
		GatewayCustomerID:  sub.GatewayCustomerID,
		Tier:               sub.Tier,
		SubscriptionStatus: sub.SubscriptionStatus,
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		EnvironmentID:      sub.EnvironmentID,
		BaseModel: types.BaseModel{
			TenantID:  sub.TenantID,
			Status:    sub.Status,
			CreatedAt: sub.CreatedAt,
			UpdatedAt: sub.UpdatedAt,
			CreatedBy: sub.CreatedBy,
			UpdatedBy: sub.UpdatedBy,
		},
	}

	if sub.GatewaySubscriptionID != nil {
		id := *sub.GatewaySubscriptionID
		copied.GatewaySubscriptionID = &id
	}
	if sub.CanceledAt != nil {
		t := *sub.CanceledAt
		copied.CanceledAt = &t
	}
	return copied
}

// Create seeds a subscription into the store. Test setup helper; the
// repository interface itself has no create because checkout owns creation.
func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").
			WithHint("Subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}

	if sub.EnvironmentID == "" {
		sub.EnvironmentID = types.GetEnvironmentID(ctx)
	}

	err := s.InMemoryStore.Create(ctx, sub.ID, copySubscription(sub))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			WithReportableDetails(map[string]interface{}{
				"id": sub.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) ListByStatus(ctx context.Context, status types.SubscriptionStatus) ([]*subscription.Subscription, error) {
	subs, err := s.InMemoryStore.List(ctx, status, subscriptionStatusFilterFn, subscriptionSortFn)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscriptions").
			Mark(ierr.ErrDatabase)
	}

	result := make([]*subscription.Subscription, 0, len(subs))
	for _, sub := range subs {
		result = append(result, copySubscription(sub))
	}
	return result, nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").
			WithHint("Subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}

	err := s.InMemoryStore.Update(ctx, sub.ID, copySubscription(sub))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			WithReportableDetails(map[string]interface{}{
				"id": sub.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (s *InMemorySubscriptionStore) CountByStatus(ctx context.Context, status types.SubscriptionStatus) (int, error) {
	count, err := s.InMemoryStore.Count(ctx, status, subscriptionStatusFilterFn)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count subscriptions").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func subscriptionStatusFilterFn(ctx context.Context, sub *subscription.Subscription, filter interface{}) bool {
	if sub == nil || sub.Status == types.StatusDeleted {
		return false
	}

	status, ok := filter.(types.SubscriptionStatus)
	if !ok {
		return true
	}
	return sub.SubscriptionStatus == status
}

func subscriptionSortFn(i, j *subscription.Subscription) bool {
	if i == nil || j == nil {
		return false
	}
	return i.CreatedAt.Before(j.CreatedAt)
}

// Clear clears the subscription store
func (s *InMemorySubscriptionStore) Clear() {
	s.InMemoryStore.Clear()
}
