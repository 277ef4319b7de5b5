package store

import (
	"fmt"

	"token-pulse/src/helpers"
	"token-pulse/src/models"
)

// -----------------------------------------------------------------------------

// Dispatch applies one feed envelope to the store. Unknown types and
// undecodable payloads return a *helpers.DispatchError and change nothing.
func (s *Store) Dispatch(msg models.Envelope) error {
	switch msg.Type {
	case models.MessagePriceUpdate:
		var update models.PriceUpdate
		if err := msg.Decode(&update); err != nil {
			return decodeError(msg.Type, err)
		}
		s.ApplyPriceUpdate(update)

	case models.MessageBatchUpdate:
		var updates []models.PriceUpdate
		if err := msg.Decode(&updates); err != nil {
			return decodeError(msg.Type, err)
		}
		s.ApplyPriceUpdates(updates)

	case models.MessageNewToken:
		var token models.Token
		if err := msg.Decode(&token); err != nil {
			return decodeError(msg.Type, err)
		}
		if !token.Category.IsValid() {
			return helpers.NewDispatchError(fmt.Sprintf("new_token %s", token.ID), helpers.ErrInvalidCategory)
		}
		s.AddToken(token.Category, token)

	case models.MessageConnectionStatus:
		var status models.ConnectionStatus
		if err := msg.Decode(&status); err != nil {
			return decodeError(msg.Type, err)
		}
		s.SetConnectionStatus(status)

	default:
		return helpers.NewDispatchError(fmt.Sprintf("cannot dispatch %q", msg.Type), helpers.ErrUnknownMessage)
	}
	return nil
}

func decodeError(t models.MessageType, err error) error {
	return helpers.NewDispatchError(fmt.Sprintf("invalid %s payload", t), err)
}
