package store

import (
	"encoding/json"
	"errors"
	"testing"

	"token-pulse/src/helpers"
	"token-pulse/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(t *testing.T, typ models.MessageType, payload interface{}) models.Envelope {
	t.Helper()
	env, err := models.NewEnvelope(typ, payload)
	require.NoError(t, err)
	return env
}

func TestDispatchRoutesEachMessageType(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetTokens(models.CategoryNewPairs, []models.Token{token("a", models.CategoryNewPairs, 1)})

	require.NoError(t, s.Dispatch(envelope(t, models.MessagePriceUpdate,
		models.PriceUpdate{TokenID: "a", Price: 2, PriceChange1m: 1, PriceChange5m: 1})))
	assert.Equal(t, 2.0, s.Tokens(models.CategoryNewPairs)[0].Price)

	require.NoError(t, s.Dispatch(envelope(t, models.MessageBatchUpdate, []models.PriceUpdate{
		{TokenID: "a", Price: 3}, {TokenID: "a", Price: 4},
	})))
	assert.Equal(t, 4.0, s.Tokens(models.CategoryNewPairs)[0].Price)

	listed := token("n", models.CategoryMigrated, 5)
	require.NoError(t, s.Dispatch(envelope(t, models.MessageNewToken, listed)))
	migrated := s.Tokens(models.CategoryMigrated)
	require.Len(t, migrated, 1)
	assert.Equal(t, "n", migrated[0].ID)
	assert.True(t, migrated[0].CreatedAt.Equal(listed.CreatedAt))

	require.NoError(t, s.Dispatch(envelope(t, models.MessageConnectionStatus, models.StatusError)))
	assert.Equal(t, models.StatusError, s.ConnectionStatus())
}

func TestDispatchFromWireBytes(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetTokens(models.CategoryFinalStretch, []models.Token{token("f", models.CategoryFinalStretch, 1)})

	raw := []byte(`{"type":"batch_update","payload":[{"tokenId":"f","price":1.25,"priceChange1m":0.5,"priceChange5m":-0.8,"timestamp":1700000000000}]}`)
	var env models.Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	require.NoError(t, s.Dispatch(env))

	got := s.Tokens(models.CategoryFinalStretch)[0]
	assert.Equal(t, 1.25, got.Price)
	assert.Equal(t, -0.8, got.PriceChange5m)
}

func TestDispatchRejectsBadMessages(t *testing.T) {
	s, _ := newTestStore(t)
	before := s.Snapshot()

	err := s.Dispatch(models.Envelope{Type: "price_tick", Payload: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, helpers.ErrUnknownMessage)

	err = s.Dispatch(models.Envelope{Type: models.MessageBatchUpdate, Payload: json.RawMessage(`{"not":"a list"}`)})
	var derr *helpers.DispatchError
	assert.True(t, errors.As(err, &derr))

	err = s.Dispatch(models.Envelope{Type: models.MessagePriceUpdate})
	assert.Error(t, err)

	err = s.Dispatch(envelope(t, models.MessageNewToken, models.Token{ID: "x", Category: "pending"}))
	assert.ErrorIs(t, err, helpers.ErrInvalidCategory)

	assert.Equal(t, before, s.Snapshot())
}
