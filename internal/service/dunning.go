package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"

	"github.com/recouphq/recoup/internal/api/dto"
	"github.com/recouphq/recoup/internal/cache"
	"github.com/recouphq/recoup/internal/domain/dunning"
	"github.com/recouphq/recoup/internal/domain/subscription"
	ierr "github.com/recouphq/recoup/internal/errors"
	"github.com/recouphq/recoup/internal/types"
)

const (
	// sweepWorkers bounds per-subscription parallelism within one sweep.
	// Each subscription is handled by exactly one worker.
	sweepWorkers = 8

	// gatewayCallsPerSecond rate limits outbound gateway traffic so a large
	// sweep cannot trip the provider's rate limiter.
	gatewayCallsPerSecond = 5

	// Cache key and TTL for dunning stats. The dashboard polls stats far
	// more often than the ledger changes between sweeps.
	cacheKeyDunningStats = "dunning:stats"
	statsCacheTTL        = 1 * time.Minute
)

// DunningService drives automated payment recovery: retrying failed charges
// on a schedule, escalating customer notifications and suspending
// subscriptions whose retry budget is exhausted.
type DunningService interface {
	// ProcessPastDueSubscriptions runs one sweep over all past_due
	// subscriptions. An error loading the candidate list aborts the sweep;
	// errors processing one subscription never abort the others.
	ProcessPastDueSubscriptions(ctx context.Context) (*dto.DunningSweepResponse, error)

	// ProcessSubscription drives a single subscription through the retry
	// policy: suspend when over budget, skip when not yet due, retry
	// otherwise.
	ProcessSubscription(ctx context.Context, sub *subscription.Subscription) error

	// RetryPayment executes one payment retry for the subscription and
	// records the attempt. Gateway failures never propagate; they become a
	// failed attempt. Callers must serialize per subscription.
	RetryPayment(ctx context.Context, sub *subscription.Subscription, attemptNumber int) (*dunning.Attempt, error)

	// GetSubscription loads a subscription by ID.
	GetSubscription(ctx context.Context, id string) (*subscription.Subscription, error)

	// GetAttempts returns the subscription's open dunning episode.
	GetAttempts(ctx context.Context, subscriptionID string) ([]*dunning.Attempt, error)

	// GetDunningStats computes recovery analytics over the attempt ledger.
	GetDunningStats(ctx context.Context) (*dto.DunningStatsResponse, error)
}

type dunningService struct {
	ServiceParams
	gatewayLimiter *rate.Limiter
}

// NewDunningService creates a new dunning service
func NewDunningService(params ServiceParams) DunningService {
	return &dunningService{
		ServiceParams:  params,
		gatewayLimiter: rate.NewLimiter(rate.Limit(gatewayCallsPerSecond), 1),
	}
}

// sweepAction classifies what one sweep did with one subscription.
type sweepAction int

const (
	sweepActionSkipped sweepAction = iota
	sweepActionRecovered
	sweepActionFailedAttempt
	sweepActionSuspended
)

func (s *dunningService) ProcessPastDueSubscriptions(ctx context.Context) (*dto.DunningSweepResponse, error) {
	started := time.Now().UTC()

	subs, err := s.SubRepo.ListByStatus(ctx, types.SubscriptionStatusPastDue)
	if err != nil {
		// Aborts the whole sweep; the next scheduled tick retries.
		return nil, ierr.WithError(err).
			WithHint("Failed to load past due subscriptions").
			Mark(ierr.ErrDatabase)
	}

	result := &dto.DunningSweepResponse{Candidates: len(subs)}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(sweepWorkers)
	for _, sub := range subs {
		sub := sub
		p.Go(func() {
			action, perr := s.processOne(ctx, sub)

			mu.Lock()
			defer mu.Unlock()
			if perr != nil {
				result.Errored++
				return
			}
			switch action {
			case sweepActionSkipped:
				result.Skipped++
			case sweepActionRecovered:
				result.Attempted++
				result.Recovered++
			case sweepActionFailedAttempt:
				result.Attempted++
				result.Failed++
			case sweepActionSuspended:
				result.Suspended++
			}
		})
	}
	p.Wait()

	if s.Cache != nil {
		s.Cache.Delete(ctx, cacheKeyDunningStats)
	}

	s.Logger.Infow("completed dunning sweep",
		"candidates", result.Candidates,
		"attempted", result.Attempted,
		"recovered", result.Recovered,
		"failed", result.Failed,
		"suspended", result.Suspended,
		"skipped", result.Skipped,
		"errored", result.Errored,
		"duration_ms", time.Since(started).Milliseconds())

	return result, nil
}

// processOne isolates a single subscription: storage errors and panics are
// contained here so the rest of the sweep keeps going.
func (s *dunningService) processOne(ctx context.Context, sub *subscription.Subscription) (action sweepAction, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Errorw("panic while processing subscription",
				"subscription_id", sub.ID,
				"panic", r)
			err = ierr.NewErrorf("panic processing subscription: %v", r).
				Mark(ierr.ErrInternal)
		}
	}()

	// Lease the subscription so concurrent scheduler instances cannot
	// process it twice in overlapping sweeps.
	if s.Locker != nil {
		release, acquired, lerr := s.Locker.TryLock(ctx, "dunning:subscription:"+sub.ID)
		if lerr != nil {
			return sweepActionSkipped, lerr
		}
		if !acquired {
			s.Logger.Debugw("subscription leased by another instance, skipping",
				"subscription_id", sub.ID)
			return sweepActionSkipped, nil
		}
		defer release()
	}

	action, err = s.process(ctx, sub)
	if err != nil {
		s.Logger.Errorw("failed to process subscription",
			"subscription_id", sub.ID,
			"error", err)
	}
	return action, err
}

func (s *dunningService) ProcessSubscription(ctx context.Context, sub *subscription.Subscription) error {
	_, err := s.process(ctx, sub)
	return err
}

func (s *dunningService) process(ctx context.Context, sub *subscription.Subscription) (sweepAction, error) {
	if sub == nil {
		return sweepActionSkipped, ierr.NewError("subscription cannot be nil").
			WithHint("Subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if !sub.IsDunnable() {
		// unpaid and canceled are terminal for dunning; active needs nothing
		s.Logger.Debugw("subscription not eligible for dunning",
			"subscription_id", sub.ID,
			"subscription_status", sub.SubscriptionStatus)
		return sweepActionSkipped, nil
	}

	cfg := s.Config.Dunning

	attempts, err := s.AttemptRepo.GetAttempts(ctx, sub.ID)
	if err != nil {
		return sweepActionSkipped, ierr.WithError(err).
			WithHint("Failed to load dunning attempts").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": sub.ID,
			}).
			Mark(ierr.ErrDatabase)
	}

	attemptNumber := len(attempts) + 1

	// Retry budget exhausted: suspend without touching the gateway.
	if attemptNumber > cfg.MaxAttempts {
		if err := s.suspend(ctx, sub, len(attempts)); err != nil {
			return sweepActionSkipped, err
		}
		return sweepActionSuspended, nil
	}

	// Not yet due this sweep.
	if len(attempts) > 0 {
		last := attempts[len(attempts)-1]
		if !ShouldRetryNow(last, attemptNumber, cfg, time.Now().UTC()) {
			return sweepActionSkipped, nil
		}
	}

	attempt, err := s.RetryPayment(ctx, sub, attemptNumber)
	if err != nil {
		return sweepActionSkipped, err
	}
	if attempt.IsSuccess() {
		return sweepActionRecovered, nil
	}
	return sweepActionFailedAttempt, nil
}

func (s *dunningService) RetryPayment(ctx context.Context, sub *subscription.Subscription, attemptNumber int) (*dunning.Attempt, error) {
	now := time.Now().UTC()

	outcome, failureReason, invoiceID := s.executeRetry(ctx, sub)

	attempt := &dunning.Attempt{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DUNNING_ATTEMPT),
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		AttemptNumber:  attemptNumber,
		AttemptedAt:    now,
		Outcome:        outcome,
		FailureReason:  failureReason,
		InvoiceID:      invoiceID,
		EnvironmentID:  sub.EnvironmentID,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	if err := s.AttemptRepo.RecordAttempt(ctx, attempt); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to record dunning attempt").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": sub.ID,
				"attempt_number":  attemptNumber,
			}).
			Mark(ierr.ErrDatabase)
	}

	s.Logger.Infow("recorded dunning attempt",
		"subscription_id", sub.ID,
		"attempt_number", attemptNumber,
		"outcome", outcome,
		"failure_reason", lo.FromPtr(failureReason))

	if attempt.IsSuccess() {
		if err := s.recover(ctx, sub, attempt); err != nil {
			return nil, err
		}
		return attempt, nil
	}

	// Failed attempt: escalate the notification, status stays past_due.
	templateID := EscalationTemplate(attemptNumber, s.Config.Dunning)
	payload := escalationPayload(sub, attemptNumber, s.Config.Dunning, now)
	payload["failure_reason"] = lo.FromPtr(failureReason)
	s.notify(ctx, sub.UserID, templateID, payload)

	return attempt, nil
}

// executeRetry performs the gateway interaction and classifies the outcome.
// Every gateway error is converted into a failed outcome; nothing thrown by
// the gateway escapes this method.
func (s *dunningService) executeRetry(ctx context.Context, sub *subscription.Subscription) (types.AttemptOutcome, *string, *string) {
	// Configuration failure on our side: no gateway call is made.
	if sub.GatewaySubscriptionID == nil || *sub.GatewaySubscriptionID == "" {
		return types.AttemptOutcomeFailed, lo.ToPtr("No gateway subscription reference"), nil
	}

	if err := s.gatewayLimiter.Wait(ctx); err != nil {
		return types.AttemptOutcomeFailed, lo.ToPtr(err.Error()), nil
	}

	invoices, err := s.Gateway.ListOpenInvoices(ctx, *sub.GatewaySubscriptionID, 1)
	if err != nil {
		return types.AttemptOutcomeFailed, lo.ToPtr(err.Error()), nil
	}

	// Nothing owed: the subscription recovered out of band.
	if len(invoices) == 0 {
		return types.AttemptOutcomeSuccess, nil, nil
	}

	inv := invoices[0]
	captured, err := s.Gateway.CaptureInvoice(ctx, inv.ID)
	if err != nil {
		return types.AttemptOutcomeFailed, lo.ToPtr(err.Error()), lo.ToPtr(inv.ID)
	}

	if captured.IsPaid() {
		return types.AttemptOutcomeSuccess, nil, lo.ToPtr(captured.ID)
	}
	return types.AttemptOutcomeFailed,
		lo.ToPtr(fmt.Sprintf("invoice not paid, gateway status: %s", captured.Status)),
		lo.ToPtr(captured.ID)
}

// recover applies the past_due -> active transition, closes the episode and
// sends the payment-success receipt.
func (s *dunningService) recover(ctx context.Context, sub *subscription.Subscription, attempt *dunning.Attempt) error {
	sub.MarkActive(time.Now().UTC())
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to reactivate subscription").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": sub.ID,
			}).
			Mark(ierr.ErrDatabase)
	}

	if err := s.AttemptRepo.ClearAttempts(ctx, sub.ID); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to clear dunning episode").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": sub.ID,
			}).
			Mark(ierr.ErrDatabase)
	}

	s.notify(ctx, sub.UserID, types.TemplatePaymentSuccess,
		recoveryPayload(sub, attempt.AttemptNumber, attempt.InvoiceID))

	s.Logger.Infow("subscription recovered",
		"subscription_id", sub.ID,
		"attempt_number", attempt.AttemptNumber)

	return nil
}

// suspend applies the past_due -> unpaid transition once the retry budget is
// exhausted, sends the terminal notification and closes the episode.
func (s *dunningService) suspend(ctx context.Context, sub *subscription.Subscription, attemptCount int) error {
	now := time.Now().UTC()

	sub.MarkUnpaid(now)
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to suspend subscription").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": sub.ID,
			}).
			Mark(ierr.ErrDatabase)
	}

	s.notify(ctx, sub.UserID, s.Config.Dunning.Templates.Suspended,
		suspensionPayload(sub, attemptCount, s.Config.Dunning, now))

	if err := s.AttemptRepo.ClearAttempts(ctx, sub.ID); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to clear dunning episode").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": sub.ID,
			}).
			Mark(ierr.ErrDatabase)
	}

	s.Logger.Infow("subscription suspended after exhausting retries",
		"subscription_id", sub.ID,
		"attempt_count", attemptCount)

	return nil
}

// notify dispatches a notification and swallows any dispatch error; a failed
// notification must never abort the retry flow.
func (s *dunningService) notify(ctx context.Context, userID, templateID string, payload map[string]interface{}) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Send(ctx, userID, templateID, payload, types.NotificationChannelEmail); err != nil {
		s.Logger.Errorw("failed to send dunning notification",
			"user_id", userID,
			"template_id", templateID,
			"error", err)
	}
}

func (s *dunningService) GetSubscription(ctx context.Context, id string) (*subscription.Subscription, error) {
	if id == "" {
		return nil, ierr.NewError("subscription id is required").
			WithHint("Subscription ID is required").
			Mark(ierr.ErrValidation)
	}
	return s.SubRepo.Get(ctx, id)
}

func (s *dunningService) GetAttempts(ctx context.Context, subscriptionID string) ([]*dunning.Attempt, error) {
	if subscriptionID == "" {
		return nil, ierr.NewError("subscription id is required").
			WithHint("Subscription ID is required").
			Mark(ierr.ErrValidation)
	}
	return s.AttemptRepo.GetAttempts(ctx, subscriptionID)
}

func (s *dunningService) GetDunningStats(ctx context.Context) (*dto.DunningStatsResponse, error) {
	if s.Cache != nil {
		if val, found := s.Cache.Get(ctx, cacheKeyDunningStats); found {
			if stats, ok := cache.UnmarshalCacheValue[dto.DunningStatsResponse](val); ok {
				return stats, nil
			}
		}
	}

	totalPastDue, err := s.SubRepo.CountByStatus(ctx, types.SubscriptionStatusPastDue)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to count past due subscriptions").
			Mark(ierr.ErrDatabase)
	}

	attempts, err := s.AttemptRepo.ListAll(ctx)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load dunning attempts").
			Mark(ierr.ErrDatabase)
	}

	stats := &dto.DunningStatsResponse{
		TotalPastDue:  totalPastDue,
		TotalAttempts: len(attempts),
	}

	var successNumbersSum int
	for _, a := range attempts {
		if a.IsSuccess() {
			stats.RecoveredCount++
			successNumbersSum += a.AttemptNumber
		}
	}

	// Guard both divisions; zero attempts or zero successes yield 0, not an
	// error.
	if stats.TotalAttempts > 0 {
		stats.RecoveryRate = float64(stats.RecoveredCount) / float64(stats.TotalAttempts) * 100
	}
	if stats.RecoveredCount > 0 {
		stats.AverageAttemptsToRecover = float64(successNumbersSum) / float64(stats.RecoveredCount)
	}

	if s.Cache != nil {
		s.Cache.Set(ctx, cacheKeyDunningStats, stats, statsCacheTTL)
	}

	return stats, nil
}
