package interfaces

import (
	"time"

	"token-pulse/src/models"
)

// -----------------------------------------------------------------------------
// IPriceFeed is a source of periodic price update batches.
// -----------------------------------------------------------------------------

type IPriceFeed interface {

	// Start replaces the working set and begins emission if idle
	Start(tokens []models.Token)

	// -----------------------------------------------------------------------------

	// Stop halts emission; no tick begins after it returns
	Stop()

	// -----------------------------------------------------------------------------

	// Subscribe registers a batch handler and returns its unsubscribe function
	Subscribe(handler models.BatchHandler) (unsubscribe func())

	// -----------------------------------------------------------------------------

	// Track and Untrack adjust the working set of a running feed
	Track(token models.Token)
	Untrack(tokenID string)

	// -----------------------------------------------------------------------------

	IsConnected() bool
	SetUpdateFrequency(d time.Duration)
	UpdateFrequency() time.Duration
}

// -----------------------------------------------------------------------------
// ITokenGenerator produces the initial token collections in batches.
// -----------------------------------------------------------------------------

type ITokenGenerator interface {
	Start(countPerCategory, batchSize int, interBatchDelay time.Duration, onBatch models.BatchFunc) (cancel func())
}

// -----------------------------------------------------------------------------
// IListingSource emits newly listed tokens on a schedule.
// -----------------------------------------------------------------------------

type IListingSource interface {
	Start(onListing models.ListingFunc) error
	Stop()
}
