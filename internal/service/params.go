package service

import (
	"context"

	"github.com/recouphq/recoup/internal/cache"
	"github.com/recouphq/recoup/internal/config"
	"github.com/recouphq/recoup/internal/domain/dunning"
	"github.com/recouphq/recoup/internal/domain/notification"
	"github.com/recouphq/recoup/internal/domain/payment"
	"github.com/recouphq/recoup/internal/domain/subscription"
	"github.com/recouphq/recoup/internal/logger"
)

// Locker serializes per-subscription sweep work across scheduler instances.
// A nil Locker disables leasing, which is fine for single instance
// deployments and tests.
type Locker interface {
	TryLock(ctx context.Context, key string) (release func(), acquired bool, err error)
}

// ServiceParams bundles the dependencies shared by all services. Services
// embed it and pick what they need.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	SubRepo     subscription.Repository
	AttemptRepo dunning.Repository

	Gateway  payment.Gateway
	Notifier notification.Dispatcher
	Cache    cache.Cache
	Locker   Locker
}
