package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/recouphq/recoup/internal/cache"
	"github.com/recouphq/recoup/internal/config"
	"github.com/recouphq/recoup/internal/domain/payment"
	"github.com/recouphq/recoup/internal/email"
	stripegw "github.com/recouphq/recoup/internal/integration/stripe"
	"github.com/recouphq/recoup/internal/logger"
	"github.com/recouphq/recoup/internal/postgres"
	pgrepo "github.com/recouphq/recoup/internal/repository/postgres"
	"github.com/recouphq/recoup/internal/rest"
	"github.com/recouphq/recoup/internal/service"
	"github.com/recouphq/recoup/internal/testutil"
	"github.com/recouphq/recoup/internal/types"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logger.GetLogger().Fatalw("failed to load configuration", "error", err)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		logger.GetLogger().Fatalw("failed to initialize logger", "error", err)
	}

	cache.InitializeInMemoryCache(cfg)

	params := service.ServiceParams{
		Logger: log,
		Config: cfg,
		Cache:  cache.GetInMemoryCache(),
	}

	var pgClient *postgres.Client
	if cfg.Postgres.DSN != "" {
		pgClient, err = postgres.NewClient(cfg, log)
		if err != nil {
			log.Fatalw("failed to connect to postgres", "error", err)
		}
		defer pgClient.Close()

		params.SubRepo = pgrepo.NewSubscriptionRepository(pgClient, log)
		params.AttemptRepo = pgrepo.NewAttemptRepository(pgClient, log)
		params.Locker = pgClient
	} else {
		// In-memory stores for local development only; state is lost on
		// restart and leasing is unavailable.
		log.Warnw("no postgres DSN configured, using in-memory stores")
		params.SubRepo = testutil.NewInMemorySubscriptionStore()
		params.AttemptRepo = testutil.NewInMemoryAttemptStore()
	}

	params.Gateway = newGateway(cfg, log)
	params.Notifier = email.NewDispatcher(email.NewEmailClient(cfg), log)

	dunningService := service.NewDunningService(params)

	handlers := rest.NewHandlers(dunningService, log)
	router := rest.NewRouter(handlers, cfg.Deployment.Mode, log)

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	// In-process scheduler for the hourly dunning sweep. The cron endpoint
	// stays available for manual and external triggering.
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Server.SweepSchedule, func() {
		ctx := types.SetTenantID(context.Background(), types.DefaultTenantID)
		if _, err := dunningService.ProcessPastDueSubscriptions(ctx); err != nil {
			log.Errorw("scheduled dunning sweep failed", "error", err)
		}
	})
	if err != nil {
		log.Fatalw("failed to register dunning sweep schedule",
			"schedule", cfg.Server.SweepSchedule,
			"error", err)
	}
	scheduler.Start()

	go func() {
		log.Infow("starting server", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("shutting down")

	// Stop scheduling new sweeps and wait for a running one to finish.
	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("forced shutdown", "error", err)
	}
	log.Infow("server stopped")
}

// newGateway returns the Stripe gateway when configured, otherwise a fake
// that reports every subscription as having nothing owed. Keeps local
// development runnable without credentials.
func newGateway(cfg *config.Configuration, log *logger.Logger) payment.Gateway {
	if cfg.Stripe.SecretKey != "" {
		gw, err := stripegw.NewClient(cfg, log)
		if err != nil {
			log.Fatalw("failed to initialize stripe gateway", "error", err)
		}
		return gw
	}
	log.Warnw("no stripe secret key configured, using fake gateway")
	return testutil.NewFakeGateway()
}
