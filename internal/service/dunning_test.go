package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/recouphq/recoup/internal/domain/dunning"
	"github.com/recouphq/recoup/internal/domain/payment"
	"github.com/recouphq/recoup/internal/domain/subscription"
	ierr "github.com/recouphq/recoup/internal/errors"
	"github.com/recouphq/recoup/internal/testutil"
	"github.com/recouphq/recoup/internal/types"
)

type DunningServiceSuite struct {
	testutil.BaseServiceTestSuite
	service DunningService
}

func TestDunningService(t *testing.T) {
	suite.Run(t, new(DunningServiceSuite))
}

func (s *DunningServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.service = NewDunningService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		SubRepo:     stores.SubscriptionRepo,
		AttemptRepo: stores.AttemptRepo,
		Gateway:     stores.Gateway,
		Notifier:    stores.Notifier,
		Cache:       s.GetCache(),
	})
}

func (s *DunningServiceSuite) newPastDueSubscription(id string) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:                    id,
		UserID:                "user_1",
		CustomerEmail:         "customer@example.com",
		GatewayCustomerID:     "cus_123",
		GatewaySubscriptionID: lo.ToPtr("sub_stripe_" + id),
		Tier:                  "pro",
		SubscriptionStatus:    types.SubscriptionStatusPastDue,
		CurrentPeriodStart:    time.Now().UTC().Add(-30 * 24 * time.Hour),
		CurrentPeriodEnd:      time.Now().UTC(),
		EnvironmentID:         "env_test",
		BaseModel:             types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))
	return sub
}

func (s *DunningServiceSuite) openInvoice(gatewaySubID, invoiceID string) *payment.Invoice {
	inv := &payment.Invoice{
		ID:        invoiceID,
		Status:    payment.InvoiceStatusOpen,
		AmountDue: decimal.NewFromInt(29),
		Currency:  "usd",
		CreatedAt: time.Now().UTC(),
	}
	gw := s.GetStores().Gateway
	gw.OpenInvoices[gatewaySubID] = append(gw.OpenInvoices[gatewaySubID], inv)
	return inv
}

func (s *DunningServiceSuite) seedAttempts(subID string, count int, lastAt time.Time) {
	for i := 1; i <= count; i++ {
		attempt := &dunning.Attempt{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DUNNING_ATTEMPT),
			SubscriptionID: subID,
			UserID:         "user_1",
			AttemptNumber:  i,
			AttemptedAt:    lastAt.Add(-time.Duration(count-i) * 24 * time.Hour),
			Outcome:        types.AttemptOutcomeFailed,
			FailureReason:  lo.ToPtr("card_declined"),
			BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
		}
		s.Require().NoError(s.GetStores().AttemptRepo.RecordAttempt(s.GetContext(), attempt))
	}
}

func (s *DunningServiceSuite) TestRetrySucceedsAndReactivates() {
	sub := s.newPastDueSubscription("subs_ok")
	inv := s.openInvoice(*sub.GatewaySubscriptionID, "in_1")
	s.GetStores().Gateway.CaptureResults["in_1"] = &payment.Invoice{
		ID:         inv.ID,
		Status:     payment.InvoiceStatusPaid,
		AmountDue:  inv.AmountDue,
		AmountPaid: inv.AmountDue,
		Currency:   inv.Currency,
	}

	s.NoError(s.service.ProcessSubscription(s.GetContext(), sub))

	// Subscription reactivated.
	updated, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, updated.SubscriptionStatus)
	s.Nil(updated.CanceledAt)

	// Episode closed: the open ledger is empty, history keeps the attempt.
	open, err := s.GetStores().AttemptRepo.GetAttempts(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Empty(open)

	all, err := s.GetStores().AttemptRepo.ListAll(s.GetContext())
	s.NoError(err)
	s.Len(all, 1)
	s.Equal(types.AttemptOutcomeSuccess, all[0].Outcome)

	// Payment success receipt sent.
	last := s.GetStores().Notifier.LastSent()
	s.Require().NotNil(last)
	s.Equal(types.TemplatePaymentSuccess, last.TemplateID)
	s.Equal("customer@example.com", last.Payload["customer_email"])
}

func (s *DunningServiceSuite) TestRetryFailsAndEscalates() {
	sub := s.newPastDueSubscription("subs_fail")
	inv := s.openInvoice(*sub.GatewaySubscriptionID, "in_2")
	s.GetStores().Gateway.CaptureErr = ierr.NewError("card declined").
		WithHint("Card was declined").
		Mark(ierr.ErrGateway)
	_ = inv

	s.NoError(s.service.ProcessSubscription(s.GetContext(), sub))

	// Status unchanged, attempt recorded with a failure reason.
	updated, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusPastDue, updated.SubscriptionStatus)

	open, err := s.GetStores().AttemptRepo.GetAttempts(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Require().Len(open, 1)
	s.Equal(types.AttemptOutcomeFailed, open[0].Outcome)
	s.Require().NotNil(open[0].FailureReason)
	s.NotEmpty(*open[0].FailureReason)

	// First attempt escalates with the first reminder.
	last := s.GetStores().Notifier.LastSent()
	s.Require().NotNil(last)
	s.Equal(types.TemplateDunningFirstReminder, last.TemplateID)
	s.Equal(1, last.Payload["attempt_number"])
}

func (s *DunningServiceSuite) TestNoOpenInvoicesCountsAsRecovered() {
	sub := s.newPastDueSubscription("subs_none")

	s.NoError(s.service.ProcessSubscription(s.GetContext(), sub))

	updated, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, updated.SubscriptionStatus)
	s.Empty(s.GetStores().Gateway.CaptureCalls)
}

func (s *DunningServiceSuite) TestMissingGatewayReferenceFailsWithoutGatewayCall() {
	sub := s.newPastDueSubscription("subs_noref")
	sub.GatewaySubscriptionID = nil
	s.Require().NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), sub))

	s.NoError(s.service.ProcessSubscription(s.GetContext(), sub))

	open, err := s.GetStores().AttemptRepo.GetAttempts(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Require().Len(open, 1)
	s.Equal(types.AttemptOutcomeFailed, open[0].Outcome)
	s.Equal("No gateway subscription reference", *open[0].FailureReason)
	s.Empty(s.GetStores().Gateway.ListCalls)
	s.Empty(s.GetStores().Gateway.CaptureCalls)
}

func (s *DunningServiceSuite) TestRetryNotDueIsSkipped() {
	sub := s.newPastDueSubscription("subs_wait")
	// One attempt moments ago; the next retry waits a full day.
	s.seedAttempts(sub.ID, 1, time.Now().UTC().Add(-time.Minute))

	s.NoError(s.service.ProcessSubscription(s.GetContext(), sub))

	open, err := s.GetStores().AttemptRepo.GetAttempts(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Len(open, 1)
	s.Empty(s.GetStores().Gateway.ListCalls)
	s.Nil(s.GetStores().Notifier.LastSent())
}

func (s *DunningServiceSuite) TestExhaustedBudgetSuspends() {
	sub := s.newPastDueSubscription("subs_done")
	// MaxAttempts failed attempts already recorded.
	s.seedAttempts(sub.ID, s.GetConfig().Dunning.MaxAttempts, time.Now().UTC().Add(-8*24*time.Hour))

	s.NoError(s.service.ProcessSubscription(s.GetContext(), sub))

	updated, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusUnpaid, updated.SubscriptionStatus)
	s.NotNil(updated.CanceledAt)

	// No gateway traffic on suspension.
	s.Empty(s.GetStores().Gateway.ListCalls)
	s.Empty(s.GetStores().Gateway.CaptureCalls)

	// Episode closed and terminal notification sent.
	open, err := s.GetStores().AttemptRepo.GetAttempts(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Empty(open)

	last := s.GetStores().Notifier.LastSent()
	s.Require().NotNil(last)
	s.Equal(types.TemplateDunningSuspended, last.TemplateID)
	s.Equal(s.GetConfig().Dunning.MaxAttempts, last.Payload["attempt_count"])
}

func (s *DunningServiceSuite) TestNonDunnableStatusIsIgnored() {
	sub := s.newPastDueSubscription("subs_active")
	sub.SubscriptionStatus = types.SubscriptionStatusActive
	s.Require().NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), sub))

	s.NoError(s.service.ProcessSubscription(s.GetContext(), sub))

	open, err := s.GetStores().AttemptRepo.GetAttempts(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Empty(open)
	s.Empty(s.GetStores().Gateway.ListCalls)
}

func (s *DunningServiceSuite) TestNotificationFailureDoesNotAbortRetry() {
	sub := s.newPastDueSubscription("subs_notif")
	s.openInvoice(*sub.GatewaySubscriptionID, "in_3")
	s.GetStores().Gateway.CaptureErr = ierr.NewError("card declined").Mark(ierr.ErrGateway)
	s.GetStores().Notifier.SendErr = ierr.NewError("smtp down").Mark(ierr.ErrGateway)

	s.NoError(s.service.ProcessSubscription(s.GetContext(), sub))

	open, err := s.GetStores().AttemptRepo.GetAttempts(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Len(open, 1)
}

func (s *DunningServiceSuite) TestStorageErrorRecordingAttemptPropagates() {
	sub := s.newPastDueSubscription("subs_store")
	s.openInvoice(*sub.GatewaySubscriptionID, "in_4")
	s.GetStores().AttemptRepo.RecordErr = ierr.NewError("connection reset").Mark(ierr.ErrDatabase)

	err := s.service.ProcessSubscription(s.GetContext(), sub)
	s.Error(err)
	s.True(ierr.IsDatabase(err))
}

func (s *DunningServiceSuite) TestSweepCountsOutcomes() {
	// One recovers, one fails, one suspends, one is not yet due.
	recovering := s.newPastDueSubscription("subs_r")
	inv := s.openInvoice(*recovering.GatewaySubscriptionID, "in_r")
	s.GetStores().Gateway.CaptureResults["in_r"] = &payment.Invoice{
		ID:         inv.ID,
		Status:     payment.InvoiceStatusPaid,
		AmountPaid: inv.AmountDue,
	}

	failing := s.newPastDueSubscription("subs_f")
	s.openInvoice(*failing.GatewaySubscriptionID, "in_f")

	exhausted := s.newPastDueSubscription("subs_s")
	s.seedAttempts(exhausted.ID, s.GetConfig().Dunning.MaxAttempts, time.Now().UTC().Add(-8*24*time.Hour))

	waiting := s.newPastDueSubscription("subs_w")
	s.seedAttempts(waiting.ID, 1, time.Now().UTC().Add(-time.Minute))

	result, err := s.service.ProcessPastDueSubscriptions(s.GetContext())
	s.Require().NoError(err)

	s.Equal(4, result.Candidates)
	s.Equal(2, result.Attempted)
	s.Equal(1, result.Recovered)
	s.Equal(1, result.Failed)
	s.Equal(1, result.Suspended)
	s.Equal(1, result.Skipped)
	s.Equal(0, result.Errored)
}

func (s *DunningServiceSuite) TestSweepIsolatesPerSubscriptionErrors() {
	broken := s.newPastDueSubscription("subs_broken")
	_ = broken
	healthy := s.newPastDueSubscription("subs_healthy")
	inv := s.openInvoice(*healthy.GatewaySubscriptionID, "in_h")
	s.GetStores().Gateway.CaptureResults["in_h"] = &payment.Invoice{
		ID:         inv.ID,
		Status:     payment.InvoiceStatusPaid,
		AmountPaid: inv.AmountDue,
	}

	// Recording attempts fails for everyone; both error, neither recovers,
	// and the sweep itself still returns a summary.
	s.GetStores().AttemptRepo.RecordErr = ierr.NewError("disk full").Mark(ierr.ErrDatabase)

	result, err := s.service.ProcessPastDueSubscriptions(s.GetContext())
	s.Require().NoError(err)
	s.Equal(2, result.Candidates)
	s.Equal(2, result.Errored)
}

func (s *DunningServiceSuite) TestGetDunningStats() {
	sub := s.newPastDueSubscription("subs_stats")

	// Two failed attempts and a success on the third.
	s.seedAttempts(sub.ID, 2, time.Now().UTC().Add(-24*time.Hour))
	success := &dunning.Attempt{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DUNNING_ATTEMPT),
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		AttemptNumber:  3,
		AttemptedAt:    time.Now().UTC(),
		Outcome:        types.AttemptOutcomeSuccess,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().AttemptRepo.RecordAttempt(s.GetContext(), success))

	stats, err := s.service.GetDunningStats(s.GetContext())
	s.Require().NoError(err)

	s.Equal(1, stats.TotalPastDue)
	s.Equal(3, stats.TotalAttempts)
	s.Equal(1, stats.RecoveredCount)
	s.InDelta(33.33, stats.RecoveryRate, 0.01)
	s.InDelta(3.0, stats.AverageAttemptsToRecover, 0.001)
}

func (s *DunningServiceSuite) TestGetDunningStatsEmptyLedger() {
	stats, err := s.service.GetDunningStats(s.GetContext())
	s.Require().NoError(err)

	s.Zero(stats.TotalAttempts)
	s.Zero(stats.RecoveredCount)
	s.Zero(stats.RecoveryRate)
	s.Zero(stats.AverageAttemptsToRecover)
}
