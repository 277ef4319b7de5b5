package dashboard

import (
	"sync"
	"time"

	"token-pulse/src/helpers"
	"token-pulse/src/interfaces"
	"token-pulse/src/logger"
	"token-pulse/src/models"
	"token-pulse/src/store"
	"token-pulse/src/utils"
)

// -----------------------------------------------------------------------------
// Session drives one dashboard lifecycle: progressive load into the store,
// then live price updates, optional listings, and status propagation.
// -----------------------------------------------------------------------------

type Session struct {
	feedCfg    models.MFeedConfig
	listingCfg models.MListingConfig

	store     *store.Store
	generator interfaces.ITokenGenerator
	feed      interfaces.IPriceFeed
	listing   interfaces.IListingSource
	exchanger interfaces.IDataExchanger
	clock     utils.Clock
	Logger    *logger.Logger
	errors    *helpers.ErrorHandler

	mu          sync.Mutex
	observers   []interfaces.IStatusObserver
	running     bool
	epoch       uint64
	loadTimer   utils.Timer
	cancelGen   func()
	unsubscribe func()
	completed   map[models.TokenCategory]bool
}

// -----------------------------------------------------------------------------

// NewSession wires the collaborators. listing and exchanger may be nil.
func NewSession(
	cfg *models.MConfig,
	st *store.Store,
	generator interfaces.ITokenGenerator,
	feed interfaces.IPriceFeed,
	listing interfaces.IListingSource,
	exchanger interfaces.IDataExchanger,
	clock utils.Clock,
	log *logger.Logger,
) *Session {
	return &Session{
		feedCfg:    cfg.Feed,
		listingCfg: cfg.Listing,
		store:      st,
		generator:  generator,
		feed:       feed,
		listing:    listing,
		exchanger:  exchanger,
		clock:      clock,
		Logger:     log,
		errors:     helpers.NewErrorHandler(log),
	}
}

// -----------------------------------------------------------------------------

func (s *Session) AddStatusObserver(o interfaces.IStatusObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Start begins the initial load. It is a no-op on a running session.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.epoch++
	epoch := s.epoch
	s.completed = make(map[models.TokenCategory]bool)

	s.store.SetLoading(true)
	s.setStatusLocked(models.StatusConnecting)

	delay := utils.Milliseconds(s.feedCfg.InitialLoadDelayMs)
	s.loadTimer = s.clock.AfterFunc(delay, func() { s.beginLoad(epoch) })
	s.Logger.Info("Session started, loading %d tokens per category in %v", s.feedCfg.TokensPerCategory, delay)
}

// -----------------------------------------------------------------------------

// Stop cancels any pending load, halts the feed and listings and reports
// the session as disconnected.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.epoch++

	if s.loadTimer != nil {
		s.loadTimer.Stop()
		s.loadTimer = nil
	}
	if s.cancelGen != nil {
		s.cancelGen()
		s.cancelGen = nil
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.feed.Stop()
	if s.listing != nil {
		s.listing.Stop()
	}
	s.setStatusLocked(models.StatusDisconnected)
	s.mu.Unlock()

	s.Logger.Info("Session stopped")
}

// -----------------------------------------------------------------------------

// Reload discards all state and loads from scratch
func (s *Session) Reload() {
	s.Stop()
	s.store.Reset()
	s.Start()
}

// -----------------------------------------------------------------------------

func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// -----------------------------------------------------------------------------

// SetUpdateFrequency changes the live feed period
func (s *Session) SetUpdateFrequency(d time.Duration) {
	s.feed.SetUpdateFrequency(d)
}

// -----------------------------------------------------------------------------
// Initial Load
// -----------------------------------------------------------------------------

func (s *Session) beginLoad(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return
	}
	s.loadTimer = nil
	s.cancelGen = s.generator.Start(
		s.feedCfg.TokensPerCategory,
		s.feedCfg.BatchSize,
		utils.Milliseconds(s.feedCfg.InterBatchDelayMs),
		func(category models.TokenCategory, tokens []models.Token, isLast bool) {
			s.onBatch(epoch, category, tokens, isLast)
		},
	)
}

// -----------------------------------------------------------------------------

// onBatch holds s.mu throughout so a batch from a stopped run can never
// land in the store after Stop or Reset.
func (s *Session) onBatch(epoch uint64, category models.TokenCategory, tokens []models.Token, isLast bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return
	}

	s.store.SetTokens(category, tokens)
	s.broadcastSnapshot()

	if !isLast {
		return
	}
	s.store.SetCategoryLoading(category, false)
	s.Logger.Info("Loaded %d %s tokens", len(tokens), category)

	s.completed[category] = true
	if len(s.completed) == len(models.Categories) {
		s.goLiveLocked()
	}
}

// -----------------------------------------------------------------------------

// goLiveLocked starts live updates once every category has loaded.
// Caller holds s.mu.
func (s *Session) goLiveLocked() {
	s.setStatusLocked(models.StatusConnected)
	s.cancelGen = nil

	s.unsubscribe = s.feed.Subscribe(s.onPriceBatch)
	s.feed.Start(s.store.AllTokens())

	if s.listing != nil && s.listingCfg.Enabled {
		if err := s.listing.Start(s.onListing); err != nil {
			s.errors.Handle(err, "listing start")
		}
	}
}

// -----------------------------------------------------------------------------
// Live Updates
// -----------------------------------------------------------------------------

func (s *Session) onPriceBatch(updates []models.PriceUpdate) {
	env, err := models.NewEnvelope(models.MessageBatchUpdate, updates)
	if err != nil {
		s.errors.Handle(err, "batch encode")
		return
	}
	s.apply(env)
}

// -----------------------------------------------------------------------------

func (s *Session) onListing(token models.Token) {
	env, err := models.NewEnvelope(models.MessageNewToken, token)
	if err != nil {
		s.errors.Handle(err, "listing encode")
		return
	}
	if !s.apply(env) {
		return
	}
	s.feed.Track(token)

	// Keep new-pairs bounded, oldest entries sit at the end
	limit := s.listingCfg.MaxNewPairs
	if limit <= 0 {
		return
	}
	tokens := s.store.Tokens(models.CategoryNewPairs)
	for i := len(tokens) - 1; i >= limit; i-- {
		s.store.RemoveToken(models.CategoryNewPairs, tokens[i].ID)
		s.feed.Untrack(tokens[i].ID)
	}
}

// -----------------------------------------------------------------------------

// apply dispatches env into the store and forwards it to clients
func (s *Session) apply(env models.Envelope) bool {
	if err := s.store.Dispatch(env); err != nil {
		s.errors.Handle(err, "dispatch")
		return false
	}
	if s.exchanger != nil {
		s.exchanger.Broadcast(env)
	}
	return true
}

// -----------------------------------------------------------------------------
// Status
// -----------------------------------------------------------------------------

// setStatusLocked publishes status to the store, clients and observers.
// Caller holds s.mu, so a status never outlives the run that set it.
func (s *Session) setStatusLocked(status models.ConnectionStatus) {
	env, err := models.NewEnvelope(models.MessageConnectionStatus, status)
	if err != nil {
		s.errors.Handle(err, "status encode")
		return
	}
	s.apply(env)

	for _, o := range s.observers {
		o.OnConnectionStatus(status)
	}
}

// -----------------------------------------------------------------------------

func (s *Session) broadcastSnapshot() {
	if s.exchanger == nil {
		return
	}
	env, err := models.NewEnvelope(models.MessageSnapshot, s.store.Snapshot())
	if err != nil {
		s.errors.Handle(err, "snapshot encode")
		return
	}
	s.exchanger.Broadcast(env)
}
