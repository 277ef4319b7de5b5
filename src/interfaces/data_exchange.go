package interfaces

import (
	"context"

	"token-pulse/src/models"
)

// -----------------------------------------------------------------------------
// IDataExchanger defines the interface for pushing feed envelopes to external
// listeners (websocket dashboards).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast queues an envelope for every connected client.
	Broadcast(msg models.Envelope)

	// -----------------------------------------------------------------------------
	// Start serves until ctx is cancelled.
	Start(ctx context.Context) error

	// -----------------------------------------------------------------------------
	// ClientCount returns the number of connected clients.
	ClientCount() int
}

// -----------------------------------------------------------------------------
// IStatusObserver is notified of every connection status change.
// -----------------------------------------------------------------------------

type IStatusObserver interface {
	OnConnectionStatus(status models.ConnectionStatus)
}
