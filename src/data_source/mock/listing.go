package mock

import (
	"fmt"
	"sync"

	"token-pulse/src/helpers"
	"token-pulse/src/logger"
	"token-pulse/src/models"
	"token-pulse/src/observability"

	"github.com/robfig/cron/v3"
)

type ListingFunc = models.ListingFunc

// -----------------------------------------------------------------------------
// ListingJob periodically lists a new token into new-pairs
// -----------------------------------------------------------------------------

type ListingJob struct {
	factory  *TokenFactory
	schedule string
	Logger   *logger.Logger
	metrics  *observability.Metrics

	mu        sync.Mutex
	scheduler *cron.Cron
	onListing ListingFunc
}

// -----------------------------------------------------------------------------

func NewListingJob(factory *TokenFactory, schedule string, log *logger.Logger, metrics *observability.Metrics) *ListingJob {
	return &ListingJob{
		factory:  factory,
		schedule: schedule,
		Logger:   log,
		metrics:  metrics,
	}
}

// -----------------------------------------------------------------------------

// Start registers the cron entry. Calling Start on a running job is a no-op.
func (j *ListingJob) Start(onListing ListingFunc) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.scheduler != nil {
		return nil
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(j.schedule, func() { j.Emit() }); err != nil {
		return helpers.NewValidationError(fmt.Sprintf("invalid listing schedule %q", j.schedule), err)
	}

	j.onListing = onListing
	j.scheduler = c
	c.Start()
	j.Logger.Info("Listing job scheduled (%s)", j.schedule)
	return nil
}

// -----------------------------------------------------------------------------

// Stop removes the schedule. A job already running is allowed to finish.
func (j *ListingJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.scheduler == nil {
		return
	}
	j.scheduler.Stop()
	j.scheduler = nil
	j.onListing = nil
	j.Logger.Info("Listing job stopped")
}

// -----------------------------------------------------------------------------

func (j *ListingJob) Running() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.scheduler != nil
}

// -----------------------------------------------------------------------------

// Emit lists one token now. It returns false when the job is not running.
func (j *ListingJob) Emit() (models.Token, bool) {
	j.mu.Lock()
	onListing := j.onListing
	j.mu.Unlock()

	if onListing == nil {
		return models.Token{}, false
	}

	token := j.factory.GenerateToken(models.CategoryNewPairs)
	if err := helpers.SafeInvoke("listing handler", func() { onListing(token) }); err != nil {
		j.Logger.Error("%v", err)
		j.metrics.ObserveHandlerFault("listing")
		return token, false
	}

	j.metrics.ObserveListing()
	j.Logger.Debug("Listed %s (%s)", token.Name, token.ID)
	return token, true
}
