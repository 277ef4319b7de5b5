package mock

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"token-pulse/src/helpers"
	"token-pulse/src/logger"
	"token-pulse/src/models"
	"token-pulse/src/observability"
	"token-pulse/src/utils"
)

type BatchHandler = models.BatchHandler

// FeedOptions tunes the tick period and tick size.
type FeedOptions struct {
	UpdateFrequency time.Duration
	MinUpdates      int
	MaxUpdates      int
}

// FeedOptionsFromConfig maps the feed section of the config.
func FeedOptionsFromConfig(cfg models.MFeedConfig) FeedOptions {
	lo, hi := cfg.UpdatesPerTickBounds()
	return FeedOptions{
		UpdateFrequency: utils.Milliseconds(cfg.UpdateFrequencyMs),
		MinUpdates:      lo,
		MaxUpdates:      hi,
	}
}

// -----------------------------------------------------------------------------
// UpdateFeed is the mock real-time price service
// -----------------------------------------------------------------------------

type UpdateFeed struct {
	factory *TokenFactory
	clock   utils.Clock
	rng     *rand.Rand
	Logger  *logger.Logger
	metrics *observability.Metrics

	mu         sync.Mutex
	opts       FeedOptions
	tokens     []models.Token
	handlers   []subscription
	nextID     uint64
	running    bool
	generation uint64
	timer      utils.Timer
}

type subscription struct {
	id      uint64
	handler BatchHandler
}

// -----------------------------------------------------------------------------

func NewUpdateFeed(factory *TokenFactory, clock utils.Clock, rng *rand.Rand, opts FeedOptions, log *logger.Logger, metrics *observability.Metrics) *UpdateFeed {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &UpdateFeed{
		factory: factory,
		clock:   clock,
		rng:     rng,
		opts:    normalizeOptions(opts),
		Logger:  log,
		metrics: metrics,
	}
}

func normalizeOptions(opts FeedOptions) FeedOptions {
	if opts.UpdateFrequency <= 0 {
		opts.UpdateFrequency = utils.DefaultUpdateFrequency
	}
	if opts.MinUpdates <= 0 {
		opts.MinUpdates = 3
	}
	if opts.MaxUpdates < opts.MinUpdates {
		opts.MaxUpdates = opts.MinUpdates
	}
	return opts
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Start replaces the working set and begins ticking if not already running
func (f *UpdateFeed) Start(tokens []models.Token) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tokens = cloneTokens(tokens)
	if f.running {
		return
	}
	f.running = true
	f.generation++
	f.arm()
	f.Logger.Info("Feed started with %d tokens every %v", len(f.tokens), f.opts.UpdateFrequency)
}

// -----------------------------------------------------------------------------

// Stop halts emission. No tick starts after Stop returns.
func (f *UpdateFeed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running {
		return
	}
	f.running = false
	f.generation++
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.Logger.Info("Feed stopped")
}

// -----------------------------------------------------------------------------

// Dispose stops the feed and drops every subscriber
func (f *UpdateFeed) Dispose() {
	f.Stop()

	f.mu.Lock()
	f.handlers = nil
	f.tokens = nil
	f.mu.Unlock()
}

// -----------------------------------------------------------------------------

func (f *UpdateFeed) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// -----------------------------------------------------------------------------

// SetUpdateFrequency changes the tick period, re-arming a running feed
func (f *UpdateFeed) SetUpdateFrequency(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if d <= 0 {
		return
	}
	f.opts.UpdateFrequency = d
	if !f.running {
		return
	}
	if f.timer != nil {
		f.timer.Stop()
	}
	f.generation++
	f.arm()
	f.Logger.Info("Feed frequency set to %v", d)
}

// -----------------------------------------------------------------------------

func (f *UpdateFeed) UpdateFrequency() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opts.UpdateFrequency
}

// -----------------------------------------------------------------------------
// Working set
// -----------------------------------------------------------------------------

// UpdateTokens replaces the working set without touching the lifecycle
func (f *UpdateFeed) UpdateTokens(tokens []models.Token) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = cloneTokens(tokens)
}

// Track adds one token to the working set
func (f *UpdateFeed) Track(token models.Token) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
}

// Untrack removes a token id from the working set
func (f *UpdateFeed) Untrack(tokenID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.tokens[:0]
	for _, t := range f.tokens {
		if t.ID != tokenID {
			kept = append(kept, t)
		}
	}
	f.tokens = kept
}

func (f *UpdateFeed) TrackedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

// -----------------------------------------------------------------------------
// Subscriptions
// -----------------------------------------------------------------------------

// Subscribe registers handler and returns an idempotent unsubscribe function
func (f *UpdateFeed) Subscribe(handler BatchHandler) (unsubscribe func()) {
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.handlers = append(f.handlers, subscription{id: id, handler: handler})
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, s := range f.handlers {
			if s.id == id {
				f.handlers = append(f.handlers[:i:i], f.handlers[i+1:]...)
				return
			}
		}
	}
}

func (f *UpdateFeed) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

// -----------------------------------------------------------------------------
// Tick
// -----------------------------------------------------------------------------

// arm schedules the next tick. Caller holds f.mu.
func (f *UpdateFeed) arm() {
	gen := f.generation
	f.timer = f.clock.AfterFunc(f.opts.UpdateFrequency, func() {
		f.tick(gen)
	})
}

// -----------------------------------------------------------------------------

func (f *UpdateFeed) tick(gen uint64) {
	f.mu.Lock()
	if !f.running || gen != f.generation {
		f.mu.Unlock()
		return
	}
	f.timer = nil

	var batch []models.PriceUpdate
	if len(f.tokens) > 0 {
		batch = f.buildBatch()
	}
	handlers := make([]subscription, len(f.handlers))
	copy(handlers, f.handlers)
	f.mu.Unlock()

	if len(batch) > 0 {
		f.deliver(handlers, batch)
	}

	// Re-arm only after delivery so ticks never overlap
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running && gen == f.generation {
		f.arm()
	}
}

// -----------------------------------------------------------------------------

// buildBatch samples targets with repeats and folds each update back into
// the working set, so a token picked twice moves from its newest price.
// Caller holds f.mu.
func (f *UpdateFeed) buildBatch() []models.PriceUpdate {
	count := f.opts.MinUpdates + f.rng.IntN(f.opts.MaxUpdates-f.opts.MinUpdates+1)
	if count > len(f.tokens) {
		count = len(f.tokens)
	}

	batch := make([]models.PriceUpdate, count)
	for i := range batch {
		idx := f.rng.IntN(len(f.tokens))
		update := f.factory.GeneratePriceUpdate(f.tokens[idx])
		f.tokens[idx] = update.Apply(f.tokens[idx])
		batch[i] = update
	}
	return batch
}

// -----------------------------------------------------------------------------

func (f *UpdateFeed) deliver(handlers []subscription, batch []models.PriceUpdate) {
	f.metrics.ObserveTick(len(batch))

	for _, s := range handlers {
		name := fmt.Sprintf("feed subscriber #%d", s.id)
		if err := helpers.SafeInvoke(name, func() { s.handler(batch) }); err != nil {
			f.Logger.Error("%v", err)
			f.metrics.ObserveHandlerFault("feed")
		}
	}
}

// -----------------------------------------------------------------------------

func cloneTokens(tokens []models.Token) []models.Token {
	out := make([]models.Token, len(tokens))
	copy(out, tokens)
	return out
}
