package mock

import (
	"sync"
	"time"

	"token-pulse/src/logger"
	"token-pulse/src/models"
	"token-pulse/src/observability"
	"token-pulse/src/utils"
)

type BatchFunc = models.BatchFunc

// DefaultStaggerOffsets are the first-batch delays per category, in models.Categories order.
var DefaultStaggerOffsets = []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

// -----------------------------------------------------------------------------
// ProgressiveGenerator emits tokens in staggered batches per category
// -----------------------------------------------------------------------------

type ProgressiveGenerator struct {
	factory  *TokenFactory
	clock    utils.Clock
	staggers []time.Duration
	Logger   *logger.Logger
	metrics  *observability.Metrics
}

// generation is the state of one Start call
type generation struct {
	mu       sync.Mutex
	canceled bool
	timers   map[models.TokenCategory]utils.Timer
}

type categoryRun struct {
	category  models.TokenCategory
	remaining int
	batchSize int
	batches   int
	fired     int
	tokens    []models.Token
}

// -----------------------------------------------------------------------------

func NewProgressiveGenerator(factory *TokenFactory, clock utils.Clock, staggers []time.Duration, log *logger.Logger, metrics *observability.Metrics) *ProgressiveGenerator {
	if len(staggers) != len(models.Categories) {
		staggers = DefaultStaggerOffsets
	}
	return &ProgressiveGenerator{
		factory:  factory,
		clock:    clock,
		staggers: staggers,
		Logger:   log,
		metrics:  metrics,
	}
}

// -----------------------------------------------------------------------------

// Start schedules ceil(countPerCategory/batchSize) batches for every category.
// A category's first batch fires after its stagger offset and each following
// batch interBatchDelay after the previous one. The returned cancel function
// prevents any batch that has not fired yet from running.
func (g *ProgressiveGenerator) Start(countPerCategory, batchSize int, interBatchDelay time.Duration, onBatch BatchFunc) (cancel func()) {
	if countPerCategory < 0 {
		countPerCategory = 0
	}
	if batchSize <= 0 {
		batchSize = countPerCategory
	}

	batches := 1
	if countPerCategory > 0 {
		batches = (countPerCategory + batchSize - 1) / batchSize
	}

	gen := &generation{timers: make(map[models.TokenCategory]utils.Timer)}

	gen.mu.Lock()
	for i, category := range models.Categories {
		run := &categoryRun{
			category:  category,
			remaining: countPerCategory,
			batchSize: batchSize,
			batches:   batches,
			tokens:    make([]models.Token, 0, countPerCategory),
		}
		gen.timers[category] = g.clock.AfterFunc(g.staggers[i], func() {
			g.fire(gen, run, interBatchDelay, onBatch)
		})
	}
	gen.mu.Unlock()

	g.Logger.Debug("Scheduled %d batches of %d for %d categories", batches, batchSize, len(models.Categories))

	return func() {
		gen.mu.Lock()
		defer gen.mu.Unlock()

		if gen.canceled {
			return
		}
		gen.canceled = true
		for category, timer := range gen.timers {
			timer.Stop()
			delete(gen.timers, category)
		}
	}
}

// -----------------------------------------------------------------------------

func (g *ProgressiveGenerator) fire(gen *generation, run *categoryRun, delay time.Duration, onBatch BatchFunc) {
	gen.mu.Lock()
	if gen.canceled {
		gen.mu.Unlock()
		return
	}
	delete(gen.timers, run.category)

	n := run.batchSize
	if n > run.remaining {
		n = run.remaining
	}
	run.tokens = append(run.tokens, g.factory.GenerateInitialTokens(run.category, n)...)
	run.remaining -= n
	run.fired++
	isLast := run.fired >= run.batches

	snapshot := make([]models.Token, len(run.tokens))
	copy(snapshot, run.tokens)
	gen.mu.Unlock()

	g.metrics.ObserveBatch(string(run.category))
	onBatch(run.category, snapshot, isLast)

	if isLast {
		g.Logger.Debug("Category %s complete with %d tokens", run.category, len(snapshot))
		return
	}

	gen.mu.Lock()
	defer gen.mu.Unlock()
	if gen.canceled {
		return
	}
	gen.timers[run.category] = g.clock.AfterFunc(delay, func() {
		g.fire(gen, run, delay, onBatch)
	})
}
