package testutil

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/recouphq/recoup/internal/cache"
	"github.com/recouphq/recoup/internal/config"
	"github.com/recouphq/recoup/internal/logger"
	"github.com/recouphq/recoup/internal/types"
)

// Stores bundles the in-memory stores and fakes used by service tests.
type Stores struct {
	SubscriptionRepo *InMemorySubscriptionStore
	AttemptRepo      *InMemoryAttemptStore
	Gateway          *FakeGateway
	Notifier         *FakeNotifier
}

// BaseServiceTestSuite provides common setup for service layer tests: a
// context with tenant and environment, a logger, the default configuration,
// and in-memory stores.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	cfg    *config.Configuration
	logger *logger.Logger
	stores Stores
	cache  cache.Cache
}

// SetupTest initializes fresh state before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctx = types.SetTenantID(s.ctx, types.DefaultTenantID)
	s.ctx = types.SetEnvironmentID(s.ctx, "env_test")
	s.ctx = context.WithValue(s.ctx, types.CtxUserID, types.DefaultUserID)

	s.cfg = config.GetDefaultConfig()

	log, err := logger.NewLogger(s.cfg)
	s.Require().NoError(err)
	s.logger = log

	s.stores = Stores{
		SubscriptionRepo: NewInMemorySubscriptionStore(),
		AttemptRepo:      NewInMemoryAttemptStore(),
		Gateway:          NewFakeGateway(),
		Notifier:         NewFakeNotifier(),
	}

	s.cache = cache.NewInMemoryCache(s.cfg)
}

// TearDownTest clears stores after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.stores.SubscriptionRepo.Clear()
	s.stores.AttemptRepo.Clear()
	s.stores.Gateway.Clear()
	s.stores.Notifier.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.cfg
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetStores returns the test stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}
