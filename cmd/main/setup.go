package main

import (
	"math/rand/v2"
	"time"

	"token-pulse/src/analysis"
	"token-pulse/src/config"
	"token-pulse/src/dashboard"
	"token-pulse/src/data_source/mock"
	"token-pulse/src/grpc_control"
	"token-pulse/src/logger"
	"token-pulse/src/observability"
	"token-pulse/src/server"
	"token-pulse/src/store"
	"token-pulse/src/utils"
)

// app holds the wired components
type app struct {
	metrics *observability.Metrics
	store   *store.Store
	feed    *mock.UpdateFeed
	listing *mock.ListingJob
	server  *server.FastAPIServer
	health  *grpc_control.HealthReporter
	session *dashboard.Session
}

// -----------------------------------------------------------------------------

func setupApp(conf *config.Config, configPath string, appLogger *logger.Logger) *app {
	clock := utils.NewRealClock()
	metrics := observability.NewMetrics("token_pulse")

	history := utils.NewHistoryManager(conf.History.MaxPoints)
	st := store.NewStore(clock, history, appLogger.Named("Store"), metrics)

	seed := uint64(time.Now().UnixNano())
	factory := mock.NewTokenFactory(rand.New(rand.NewPCG(seed, seed>>7)), clock)

	feed := mock.NewUpdateFeed(
		factory,
		clock,
		rand.New(rand.NewPCG(seed^0x9e3779b97f4a7c15, seed)),
		mock.FeedOptionsFromConfig(conf.Feed),
		appLogger.Named("UpdateFeed"),
		metrics,
	)
	generator := mock.NewProgressiveGenerator(factory, clock, staggerOffsets(conf.Feed.StaggerOffsetsMs), appLogger.Named("Generator"), metrics)
	listing := mock.NewListingJob(factory, conf.Listing.Schedule, appLogger.Named("Listing"), metrics)

	srv := server.NewFastAPIServer(conf, configPath, st, analysis.NewSortedView(st), metrics, appLogger.Named("Server"))
	health := grpc_control.NewHealthReporter(appLogger.Named("Health"))

	session := dashboard.NewSession(conf.MConfig, st, generator, feed, listing, srv, clock, appLogger.Named("Session"))
	session.AddStatusObserver(health)
	srv.AttachSession(session)

	return &app{
		metrics: metrics,
		store:   st,
		feed:    feed,
		listing: listing,
		server:  srv,
		health:  health,
		session: session,
	}
}

// -----------------------------------------------------------------------------

func staggerOffsets(ms []int) []time.Duration {
	out := make([]time.Duration, len(ms))
	for i, v := range ms {
		out[i] = utils.Milliseconds(v)
	}
	return out
}
