package models

import (
	"encoding/json"
	"fmt"
)

// -----------------------------------------------------------------------------
// Feed Envelope
// -----------------------------------------------------------------------------

type MessageType string

const (
	MessagePriceUpdate      MessageType = "price_update"
	MessageBatchUpdate      MessageType = "batch_update"
	MessageNewToken         MessageType = "new_token"
	MessageConnectionStatus MessageType = "connection_status"

	// Sent by the websocket hub only, never dispatched into the store.
	MessageSnapshot MessageType = "snapshot"
)

// Envelope is the message shape shared by the feed, the store dispatcher
// and websocket clients: {type, payload}.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload into an envelope of type t.
func NewEnvelope(t MessageType, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s payload: %w", t, err)
	}
	return Envelope{Type: t, Payload: raw}, nil
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v interface{}) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("empty %s payload", e.Type)
	}
	return json.Unmarshal(e.Payload, v)
}

// -----------------------------------------------------------------------------
// Client Command
// -----------------------------------------------------------------------------

type MClientCommand struct {
	Command string `json:"command"`
}
