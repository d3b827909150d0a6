package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/recouphq/recoup/internal/domain/dunning"
	ierr "github.com/recouphq/recoup/internal/errors"
)

// InMemoryAttemptStore implements dunning.Repository. Episodes mirror the
// Postgres behavior: clearing flips attempts into closed history instead of
// deleting them, so ListAll keeps seeing them.
type InMemoryAttemptStore struct {
	mu sync.RWMutex
	// open attempts by subscription ID, ordered by attempt number
	open map[string][]*dunning.Attempt
	// closed episodes, flattened
	closed []*dunning.Attempt

	// RecordErr, when set, is returned by RecordAttempt to simulate a
	// storage failure.
	RecordErr error
}

// NewInMemoryAttemptStore creates a new in-memory attempt store
func NewInMemoryAttemptStore() *InMemoryAttemptStore {
	return &InMemoryAttemptStore{
		open: make(map[string][]*dunning.Attempt),
	}
}

func copyAttempt(a *dunning.Attempt) *dunning.Attempt {
	if a == nil {
		return nil
	}

	copied := *a
	if a.FailureReason != nil {
		reason := *a.FailureReason
		copied.FailureReason = &reason
	}
	if a.InvoiceID != nil {
		id := *a.InvoiceID
		copied.InvoiceID = &id
	}
	return &copied
}

func (s *InMemoryAttemptStore) RecordAttempt(ctx context.Context, attempt *dunning.Attempt) error {
	if attempt == nil {
		return ierr.NewError("attempt cannot be nil").
			WithHint("Attempt cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := attempt.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.RecordErr != nil {
		return s.RecordErr
	}

	s.open[attempt.SubscriptionID] = append(s.open[attempt.SubscriptionID], copyAttempt(attempt))
	return nil
}

func (s *InMemoryAttemptStore) GetAttempts(ctx context.Context, subscriptionID string) ([]*dunning.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attempts := make([]*dunning.Attempt, 0, len(s.open[subscriptionID]))
	for _, a := range s.open[subscriptionID] {
		attempts = append(attempts, copyAttempt(a))
	}
	sort.Slice(attempts, func(i, j int) bool {
		return attempts[i].AttemptNumber < attempts[j].AttemptNumber
	})
	return attempts, nil
}

func (s *InMemoryAttemptStore) ClearAttempts(ctx context.Context, subscriptionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = append(s.closed, s.open[subscriptionID]...)
	delete(s.open, subscriptionID)
	return nil
}

func (s *InMemoryAttemptStore) ListAll(ctx context.Context) ([]*dunning.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*dunning.Attempt
	for _, attempts := range s.open {
		for _, a := range attempts {
			all = append(all, copyAttempt(a))
		}
	}
	for _, a := range s.closed {
		all = append(all, copyAttempt(a))
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].AttemptedAt.Before(all[j].AttemptedAt)
	})
	return all, nil
}

// Clear resets the store, open and closed episodes alike.
func (s *InMemoryAttemptStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = make(map[string][]*dunning.Attempt)
	s.closed = nil
	s.RecordErr = nil
}
